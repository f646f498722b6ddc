// Package rest provides a minimal client for the Pollbase data API: table
// reads through a chainable query builder and row inserts, both executed
// with the caller's HTTP client so session credentials attach transparently.
package rest
