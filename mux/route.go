package mux

import (
	"errors"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// matcher is the interface implemented by route matchers.
type matcher interface {
	Match(*http.Request, *RouteMatch) bool
}

// parentRoute is implemented by the Router and Route a route hangs off.
type parentRoute interface {
	getPathRegexp() *routeRegexp
}

// Route stores the matchers and the handler of one registered route. A
// route whose handler is a Router is a group: it forwards matching to the
// routes of that subrouter.
type Route struct {
	parent    parentRoute
	handler   http.Handler
	matchers  []matcher
	path      *routeRegexp
	providers []string
	guarded   bool
	err       error

	// staticCtx is the request context value shared by every match of a
	// route without variables.
	staticCtxOnce sync.Once
	staticCtx     *routeContext
}

// Match matches this route against the request.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil {
		return false
	}

	var methodMismatch bool

	for _, m := range r.matchers {
		if !m.Match(req, match) {
			if _, ok := m.(methodMatcher); ok {
				methodMismatch = true
				continue
			}
			return false
		}
	}

	if r.path != nil && !r.path.Match(req, match) {
		return false
	}

	// Everything but the method matched: remember it for the 405 answer.
	if methodMismatch {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	if router, ok := r.handler.(*Router); ok {
		return router.Match(req, match)
	}

	match.Route = r
	match.Handler = r.handler
	if r.path != nil && len(r.path.varsN) > 0 {
		match.Vars = make(map[string]string, len(r.path.varsN))
		r.path.setVars(req, match.Vars)
	}

	return true
}

func (r *Route) addMatcher(m matcher) *Route {
	if r.err == nil {
		r.matchers = append(r.matchers, m)
	}
	return r
}

// addPathMatcher sets the path template of the route. The template of the
// nearest parent with a path is prepended.
func (r *Route) addPathMatcher(tpl string, prefix bool) *Route {
	if r.err != nil {
		return r
	}

	if r.parent != nil {
		if parent := r.parent.getPathRegexp(); parent != nil {
			tpl = strings.TrimRight(parent.template, "/") + tpl
		}
	}

	r.path, r.err = newRouteRegexp(tpl, prefix)
	return r
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.handler = handler
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// GetHandler returns the handler for the route, if any.
func (r *Route) GetHandler() http.Handler {
	return r.handler
}

// Path adds a path matcher to the route per RFC 3986 Section 3.3.
func (r *Route) Path(tpl string) *Route {
	return r.addPathMatcher(tpl, false)
}

// PathPrefix adds a path prefix matcher to the route per RFC 3986
// Section 3.3.
func (r *Route) PathPrefix(tpl string) *Route {
	return r.addPathMatcher(tpl, true)
}

// Methods adds a method matcher to the route. Calling Methods again
// replaces the previous method matcher.
func (r *Route) Methods(methods ...string) *Route {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}

	r.matchers = slices.DeleteFunc(r.matchers, func(m matcher) bool {
		_, ok := m.(methodMatcher)
		return ok
	})
	return r.addMatcher(methodMatcher(upper))
}

// Headers adds a matcher for request header values per RFC 9110
// Section 5. It accepts pairs of header names and values; an empty value
// only checks that the header is present.
func (r *Route) Headers(pairs ...string) *Route {
	if r.err != nil {
		return r
	}
	m, err := mapFromPairsToString(pairs...)
	if err != nil {
		r.err = err
		return r
	}
	return r.addMatcher(headerMatcher(m))
}

// HeadersRegexp adds a matcher for request header values using regexps.
func (r *Route) HeadersRegexp(pairs ...string) *Route {
	if r.err != nil {
		return r
	}
	m, err := mapFromPairsToRegex(pairs...)
	if err != nil {
		r.err = err
		return r
	}
	return r.addMatcher(headerRegexMatcher(m))
}

// MatcherFunc adds a custom matcher function to the route.
func (r *Route) MatcherFunc(f MatcherFunc) *Route {
	return r.addMatcher(f)
}

// Subrouter turns the route into a group and returns the router holding
// its routes.
func (r *Route) Subrouter() *Router {
	router := &Router{parent: r}
	r.handler = router
	return router
}

// Authenticate marks the route as guarded by the named authentication
// providers and returns the subrouter it guards. The route itself matches
// every request; enforcement is left to middleware installed on the
// subrouter.
func (r *Route) Authenticate(providers ...string) *Router {
	r.providers = append(r.providers[:0:0], providers...)
	r.guarded = true
	return r.Subrouter()
}

// IsAuthenticated reports whether Authenticate was called on the route.
func (r *Route) IsAuthenticated() bool {
	return r.guarded
}

// Providers returns the authentication providers set by Authenticate.
func (r *Route) Providers() []string {
	return slices.Clone(r.providers)
}

// GetSubrouter returns the router of a group route, or nil.
func (r *Route) GetSubrouter() *Router {
	router, _ := r.handler.(*Router)
	return router
}

// GetPathTemplate returns the full path template of the route, including
// the templates of its parents.
func (r *Route) GetPathTemplate() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.path == nil {
		return "", errors.New("mux: route doesn't have a path")
	}
	return r.path.template, nil
}

// IsPathPrefix reports whether the route path was set with PathPrefix.
func (r *Route) IsPathPrefix() bool {
	return r.path != nil && r.path.prefix
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, m := range r.matchers {
		if methods, ok := m.(methodMatcher); ok {
			return slices.Clone([]string(methods)), nil
		}
	}
	return nil, errors.New("mux: route doesn't have methods")
}

// GetVarNames returns the variable names of the path template.
func (r *Route) GetVarNames() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.path == nil {
		return nil, nil
	}
	return slices.Clone(r.path.varsN), nil
}

// GetError returns any error that was set on the route.
func (r *Route) GetError() error {
	return r.err
}

func (r *Route) getPathRegexp() *routeRegexp {
	if r.path != nil {
		return r.path
	}
	if r.parent != nil {
		return r.parent.getPathRegexp()
	}
	return nil
}

// methodMatcher matches the request method token (RFC 9110 Section 9)
// against a list of allowed methods.
type methodMatcher []string

func (m methodMatcher) Match(r *http.Request, _ *RouteMatch) bool {
	return slices.Contains(m, r.Method)
}

// headerMatcher matches request headers against expected values.
// Header names are case-insensitive per RFC 9110 Section 5.1.
type headerMatcher map[string]string

func (m headerMatcher) Match(r *http.Request, _ *RouteMatch) bool {
	return matchMapWithString(m, r.Header)
}

// headerRegexMatcher matches request headers against regexp patterns.
type headerRegexMatcher map[string]*regexp.Regexp

func (m headerRegexMatcher) Match(r *http.Request, _ *RouteMatch) bool {
	return matchMapWithRegex(m, r.Header)
}
