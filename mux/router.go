package mux

import (
	"net/http"
	"strings"
	"sync"
)

// Router registers routes to be matched and dispatches a handler.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/", handler)
//	http.ListenAndServe(":8080", r)
type Router struct {
	// NotFoundHandler is called when no route matches.
	// If nil, http.NotFoundHandler() is used.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// The Allow header is always set before this handler is invoked.
	MethodNotAllowedHandler http.Handler

	parent      parentRoute
	routes      []*Route
	middlewares []MiddlewareFunc

	// handlerCache holds the middleware-wrapped handler per route.
	handlerCache sync.Map // map[*Route]http.Handler

	skipClean bool
}

// NewRouter returns a new router instance.
func NewRouter() *Router {
	return &Router{}
}

// ServeHTTP dispatches the handler registered in the matched route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Remove dot segments per RFC 3986 Section 5.2.4 unless SkipClean is set.
	if !r.skipClean {
		if cleaned := cleanPath(req.URL.Path); cleaned != req.URL.Path {
			u := *req.URL
			u.Path = cleaned
			u.RawPath = ""
			req = req.Clone(req.Context())
			req.URL = &u
		}
	}

	var match RouteMatch
	var handler http.Handler

	switch {
	case r.Match(req, &match):
		handler = match.Handler
		if handler == nil {
			handler = http.NotFoundHandler()
		}
		req = setRouteContext(req, match.Route, match.Vars)

	case match.MatchErr == ErrMethodMismatch:
		// RFC 9110 Section 15.5.6: a 405 response MUST carry Allow.
		w.Header().Set("Allow", strings.Join(allowedMethods(r, req), ", "))
		handler = r.MethodNotAllowedHandler
		if handler == nil {
			handler = http.HandlerFunc(methodNotAllowed)
		}

	default:
		handler = r.NotFoundHandler
		if handler == nil {
			handler = http.NotFoundHandler()
		}
	}

	handler.ServeHTTP(w, req)
}

// Match attempts to match the given request against the router's routes.
// A path that matches with the wrong method leaves ErrMethodMismatch in
// match.MatchErr, any other miss leaves ErrNotFound.
func (r *Router) Match(req *http.Request, match *RouteMatch) bool {
	var methodMismatch bool

	for _, route := range r.routes {
		match.MatchErr = nil
		if route.Match(req, match) {
			match.MatchErr = nil
			if match.Handler != nil && len(r.middlewares) > 0 {
				match.Handler = r.wrap(match.Route, match.Handler)
			}
			return true
		}
		if match.MatchErr == ErrMethodMismatch {
			methodMismatch = true
		}
	}

	if methodMismatch {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	match.MatchErr = ErrNotFound
	return false
}

// wrap returns handler wrapped in the middleware of r. The result is
// cached per matched route; an inner router wraps before an outer one, so
// the outermost middleware runs first.
func (r *Router) wrap(route *Route, handler http.Handler) http.Handler {
	if cached, ok := r.handlerCache.Load(route); ok {
		return cached.(http.Handler)
	}

	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i].Middleware(wrapped)
	}

	actual, _ := r.handlerCache.LoadOrStore(route, wrapped)
	return actual.(http.Handler)
}

// SkipClean disables the removal of dot segments from request paths.
func (r *Router) SkipClean(value bool) *Router {
	r.skipClean = value
	return r
}

// NewRoute creates an empty route for configuration.
func (r *Router) NewRoute() *Route {
	route := &Route{parent: r}
	r.routes = append(r.routes, route)
	return route
}

// Handle registers a new route with a matcher for the URL path and handler.
func (r *Router) Handle(path string, handler http.Handler) *Route {
	return r.NewRoute().Path(path).Handler(handler)
}

// HandleFunc registers a new route with a matcher for the URL path and
// handler function.
func (r *Router) HandleFunc(path string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.NewRoute().Path(path).HandlerFunc(f)
}

// Path registers a new route with a matcher for the URL path.
func (r *Router) Path(tpl string) *Route {
	return r.NewRoute().Path(tpl)
}

// PathPrefix registers a new route with a matcher for the URL path prefix.
func (r *Router) PathPrefix(tpl string) *Route {
	return r.NewRoute().PathPrefix(tpl)
}

// Methods registers a new route with a matcher for HTTP methods.
func (r *Router) Methods(methods ...string) *Route {
	return r.NewRoute().Methods(methods...)
}

// Headers registers a new route with a matcher for request header values.
func (r *Router) Headers(pairs ...string) *Route {
	return r.NewRoute().Headers(pairs...)
}

// MatcherFunc registers a new route with a custom matcher function.
func (r *Router) MatcherFunc(f MatcherFunc) *Route {
	return r.NewRoute().MatcherFunc(f)
}

// Authenticate registers a group guarded by the named authentication
// providers and returns its subrouter.
func (r *Router) Authenticate(providers ...string) *Router {
	return r.NewRoute().Authenticate(providers...)
}

// Walk walks the router and all its subrouters, calling walkFn for each route
// in the tree.
func (r *Router) Walk(walkFn WalkFunc) error {
	return r.walk(walkFn, nil)
}

func (r *Router) walk(walkFn WalkFunc, ancestors []*Route) error {
	for _, route := range r.routes {
		err := walkFn(route, r, ancestors)
		if err == SkipRouter {
			continue
		}
		if err != nil {
			return err
		}
		if sr := route.GetSubrouter(); sr != nil {
			next := make([]*Route, len(ancestors), len(ancestors)+1)
			copy(next, ancestors)
			if err := sr.walk(walkFn, append(next, route)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Use appends a MiddlewareFunc to the chain. Middleware is applied to
// matched handlers only.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
}

func (r *Router) getPathRegexp() *routeRegexp {
	if r.parent != nil {
		return r.parent.getPathRegexp()
	}
	return nil
}
