// Package store provides persistent session storage for the parent `auth`
// package.
//
// File keeps the session as a JSON document behind a viant/afs storage URL,
// so the same implementation serves the local file system (file://) and the
// in-memory file system used by tests (mem://). The in-memory default that
// needs no persistence lives in the parent package.
package store
