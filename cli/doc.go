// Package cli implements the pollbase command line tool: account
// registration and sign-in, session inspection, a live session-change
// watcher and a local development fake of the auth stack.
package cli
