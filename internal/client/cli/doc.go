// Package cli provides the interactive gophauth command-line client.
//
// It talks to the auth service over gRPC, keeps the token pair of the
// signed-in user in memory and runs a small REPL: sign up, sign in, show
// the current user, refresh the access token, confirm an account and reset
// a password. A background watcher pings the server and reports when it
// goes offline or comes back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
