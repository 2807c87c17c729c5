// Package server provides HTTP routing, middleware, and the OAuth callback
// handling used by the Google sign-in flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `s2s auth google`, a temporary HTTP server starts on
// localhost:3000, handles the Google callback, and shuts down after the
// token arrives. The resulting ID token is then exchanged with the styling
// backend for a session cookie.
package server
