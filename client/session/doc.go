// Package session provides a process-wide view of the current
// authentication session.
//
// A Store is constructed once, resolves the persisted session
// asynchronously and then tracks every change pushed by the auth client.
// Readers call Current for a consistent (session, loading) pair; loading is
// true only until the first resolution completes and never reverts.
package session
