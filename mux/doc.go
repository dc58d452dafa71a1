// Package mux implements a request router and dispatcher for matching
// incoming HTTP requests to their respective handler functions.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//
// Routes form a tree: a route whose handler is a Router (a subrouter) is a
// group that forwards matching to its own routes. The tree can be walked,
// which is how the openapi package documents it.
//
// # Router
//
// Create a new router and register handlers:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/articles/{category}/{id:int}", ArticleHandler).Methods(http.MethodGet)
//	r.HandleFunc("/products/{key}", ProductHandler)
//	http.Handle("/", r)
//
// # Path Variables
//
// Routes can have variables enclosed in curly braces, optionally followed
// by a colon and a macro name or a regular expression:
//
//	r.HandleFunc("/users/{id:uuid}", handler)
//	r.HandleFunc("/files/{name:[a-z]+\\.txt}", handler)
//
// Variables are stored in the request context:
//
//	vars := mux.Vars(r)
//	id, ok := mux.VarGet(r, "id")
//
// Available macros:
//
//	uuid     - RFC 9562 UUID (e.g. 550e8400-e29b-41d4-a716-446655440000)
//	int      - unsigned integer (e.g. 42)
//	float    - decimal number (e.g. 3.14, 42, .5)
//	slug     - URL-safe slug (e.g. my-post-title)
//	alpha    - alphabetic characters (e.g. hello)
//	alphanum - alphanumeric characters (e.g. abc123)
//	date     - ISO 8601 date (e.g. 2024-01-15)
//	hex      - hexadecimal string (e.g. deadBEEF)
//	domain   - domain name per RFC 1123 (e.g. example.com)
//
// # Matchers
//
//	r.HandleFunc("/users", handler).Methods(http.MethodGet, http.MethodPost)
//	r.HandleFunc("/api", handler).Headers("X-Api-Version", "2")
//	r.HandleFunc("/api", handler).HeadersRegexp("Content-Type", "application/.*")
//	r.HandleFunc("/custom", handler).MatcherFunc(func(r *http.Request, rm *mux.RouteMatch) bool {
//	    return r.Header.Get("X-Custom") != ""
//	})
//
// # Subrouters
//
// Subrouters group routes under a common path prefix or matcher. Their
// routes inherit the prefix:
//
//	api := r.PathPrefix("/api").Subrouter()
//	api.HandleFunc("/users", UsersHandler) // matches /api/users
//
// A group without a path only scopes matchers and middleware:
//
//	v2 := r.Headers("X-Api-Version", "2").Subrouter()
//
// # Authentication Groups
//
// Authenticate creates a group guarded by named authentication providers.
// The router only records the names; middleware installed on the returned
// subrouter enforces them:
//
//	admin := r.PathPrefix("/admin").Subrouter().Authenticate("basic")
//	admin.HandleFunc("/stats", Stats).Methods(http.MethodGet)
//
// # Error Handling
//
// NotFoundHandler is called when no route matches a request (404).
// MethodNotAllowedHandler is called when a route matches the path but not
// the method (405); the Allow header is set before it runs, per RFC 9110
// Section 15.5.6.
//
// # Middleware
//
// Middleware added to a router wraps the handlers matched through it.
// Parent router middleware runs before subrouter middleware:
//
//	r.Use(loggingMiddleware)
//	admin.Use(authMiddleware)
//
// CORSMethodMiddleware sets Access-Control-Allow-Methods from the methods
// registered at the request path:
//
//	r.Use(mux.CORSMethodMiddleware(r))
//
// # Route Inspection
//
//	tpl, _ := route.GetPathTemplate()  // e.g. "/api/users/{id:uuid}"
//	methods, _ := route.GetMethods()   // e.g. ["GET", "POST"]
//	vars, _ := route.GetVarNames()     // e.g. ["id"]
//	route.IsPathPrefix()
//	route.Providers()
//	route.GetSubrouter()
//
// # Path Cleaning
//
// By default, the router cleans request paths by removing dot segments per
// RFC 3986 Section 5.2.4. SkipClean disables this behavior:
//
//	r.SkipClean(true)
//
// # Request Binding
//
// BindJSON decodes a request body, rejecting unknown fields and trailing
// data. ResponseJSON encodes a value with the given status code.
//
// # Walking Routes
//
//	r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
//	    tpl, _ := route.GetPathTemplate()
//	    fmt.Println(tpl)
//	    return nil
//	})
//
// Return SkipRouter from the walk function to skip descending into a
// subrouter.
package mux
