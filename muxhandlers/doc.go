// Package muxhandlers provides HTTP middleware for the mux router.
//
// # Request ID Middleware
//
// RequestIDMiddleware generates or propagates an X-Request-ID header and
// stores the ID in the request context. When a Logger is configured, a
// child logger carrying a request_id attribute is stored as well and is
// returned by LoggerFromContext.
//
//	r.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
//	    GenerateFunc: muxhandlers.GenerateUUIDv7,
//	    Logger:       logger,
//	}))
//
// # Access Log Middleware
//
// AccessLogMiddleware writes one slog record per request with the method,
// path, matched route template, status, body size and duration.
//
// # Recovery Middleware
//
// RecoveryMiddleware turns handler panics into 500 responses and logs the
// panic value. http.ErrAbortHandler is re-panicked.
//
// # Authentication
//
// BasicAuth (RFC 7617) and BearerAuth (RFC 6750) build Authenticators.
// AuthMiddleware accepts a request when any of its Authenticators does and
// stores the principal, see PrincipalFromContext. Rejected requests get a
// 401 with one WWW-Authenticate challenge per Authenticator.
//
// ProtectRouter binds Authenticators to the provider names recorded by
// mux Authenticate groups, so the names used for documentation are also
// the ones enforced:
//
//	admin := r.PathPrefix("/admin").Authenticate("basic")
//	admin.HandleFunc("/stats", stats).Methods(http.MethodGet)
//
//	basic, err := muxhandlers.BasicAuth(muxhandlers.BasicAuthConfig{
//	    Credentials: map[string]string{"admin": "secret"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := muxhandlers.ProtectRouter(r, map[string]muxhandlers.Authenticator{"basic": basic}); err != nil {
//	    log.Fatal(err)
//	}
package muxhandlers
