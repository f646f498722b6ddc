// Package mock provides an in-memory fake of the Pollbase authentication
// service for unit tests.
//
// The mock signs RS256 access tokens with a generated RSA key, rotates
// refresh tokens on every grant and publishes its verification keys at
// /.well-known/jwks.json, so tests can exercise the full sign-up, sign-in,
// refresh and revocation paths without network access to a real project.
package mock
