// Package auth provides session-based authentication: bcrypt credentials,
// SQLite-backed sessions via scs, CSRF protection, and the middleware that
// turns a request into an explicit Session value.
//
// Nothing downstream reads ambient user state. The middleware materializes a
// Session once per request and every controller and adapter call receives it
// as an argument, which keeps the reconciliation paths deterministic under
// test.
package auth
