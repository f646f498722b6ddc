// Package auth implements the client side of the Pollbase authentication
// service: credential verification, session issuance and rotation, and
// push-based change notification.
//
// The Client signs users in with the OAuth 2.0 password grant, keeps the
// issued session in a pluggable SessionStore and notifies registered
// callbacks about every session change (sign-in, sign-out, token refresh,
// user update). The `transport` sub-package turns a Client into an
// http.RoundTripper that authorizes arbitrary HTTP traffic; the `store`
// sub-package persists sessions across process restarts.
package auth
