package mux

import (
	"fmt"
	"net/http"
	"path"
	"regexp"
	"slices"
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// mapFromPairsToString converts variadic string parameters to a string map.
func mapFromPairsToString(pairs ...string) (map[string]string, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("mux: number of parameters must be multiple of 2, got %v", pairs)
	}
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m, nil
}

// mapFromPairsToRegex converts variadic string parameters to a map of
// compiled regular expressions.
func mapFromPairsToRegex(pairs ...string) (map[string]*regexp.Regexp, error) {
	raw, err := mapFromPairsToString(pairs...)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*regexp.Regexp, len(raw))
	for k, v := range raw {
		re, err := regexp.Compile(v)
		if err != nil {
			return nil, err
		}
		m[k] = re
	}
	return m, nil
}

// matchMapWithString reports whether every expected header is present and,
// when a value is given, carries it.
func matchMapWithString(toCheck map[string]string, header http.Header) bool {
	for k, v := range toCheck {
		values, ok := header[http.CanonicalHeaderKey(k)]
		if !ok {
			return false
		}
		if v != "" && !slices.Contains(values, v) {
			return false
		}
	}
	return true
}

// matchMapWithRegex reports whether every expected header has a value
// matching its regexp.
func matchMapWithRegex(toCheck map[string]*regexp.Regexp, header http.Header) bool {
	for k, re := range toCheck {
		values, ok := header[http.CanonicalHeaderKey(k)]
		if !ok {
			return false
		}
		if !slices.ContainsFunc(values, re.MatchString) {
			return false
		}
	}
	return true
}

// candidateMethods are tried when listing the methods allowed at a path.
var candidateMethods = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

// allowedMethods returns the methods other than the request's own that
// match the request path, sorted alphabetically.
func allowedMethods(router *Router, req *http.Request) []string {
	var allowed []string
	for _, method := range candidateMethods {
		if method == req.Method {
			continue
		}
		trial := req.Clone(req.Context())
		trial.Method = method
		if router.Match(trial, &RouteMatch{}) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// methodNotAllowed replies with 405. The Allow header is set by the caller.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
