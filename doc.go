// Package pollbase provides high-level helpers for working with a Pollbase
// backend.
//
// The package glues the authentication client, the data API client and the
// session store into a single entry point. NewClient accepts an option
// structure that can be populated from CLI flags or configuration files and
// returns a fully wired client: credential verification and rotation, a
// PostgREST-style data API bound to the authorizing transport, and a
// process-wide session store that tracks "who is signed in right now"
// without polling.
//
// Example:
//
//	client, _ := pollbase.NewClient(ctx, &pollbase.ClientOptions{
//		URL:    "https://myproject.pollbase.io",
//		APIKey: os.Getenv("POLLBASE_API_KEY"),
//	})
//	defer client.Close()
//	session, _ := client.Auth.SignInWithPassword(ctx, email, password)
//
// See the individual client packages for the finer-grained building blocks.
package pollbase
