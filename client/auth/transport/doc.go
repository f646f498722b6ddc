// Package transport implements an http.RoundTripper that injects the
// current session's bearer token and the project API key into outgoing
// requests, rotating credentials and retrying once when the service
// challenges with `401 Unauthorized`.
//
// Wrap it in an http.Client to authorize arbitrary HTTP traffic, e.g. the
// data-API client in the rest package.
package transport
