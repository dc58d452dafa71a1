package mux

import (
	"net/http"
	"slices"
	"strings"
)

// CORSMethodMiddleware sets the Access-Control-Allow-Methods response
// header (Fetch Standard, CORS protocol) to every method registered for the
// request path, subrouters included.
func CORSMethodMiddleware(r *Router) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if methods := methodsForPath(r, req); len(methods) > 0 {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
			}
			next.ServeHTTP(w, req)
		})
	}
}

// methodsForPath returns the methods of every route matching the request
// path, in registration order.
func methodsForPath(router *Router, req *http.Request) []string {
	var all []string

	_ = router.Walk(func(route *Route, _ *Router, _ []*Route) error {
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, method := range methods {
			if slices.Contains(all, method) {
				continue
			}
			trial := req.Clone(req.Context())
			trial.Method = method
			if router.Match(trial, &RouteMatch{}) {
				all = append(all, method)
			}
		}
		return nil
	})

	return all
}
