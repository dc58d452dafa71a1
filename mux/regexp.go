package mux

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
)

// routeRegexp is a compiled path template.
type routeRegexp struct {
	// template is the full template, including every parent prefix.
	template string
	// prefix marks a PathPrefix template, matched without the $ anchor.
	prefix bool
	regexp *regexp.Regexp
	// varsN are the variable names in order.
	varsN []string
	// varsR validate each variable value on its own.
	varsR []varMatcher
}

// newRouteRegexp parses a path template such as "/pets/{id:uuid}" into a
// compiled matcher. A variable is written {name} or {name:pattern}, where
// pattern is a macro name or a regular expression.
func newRouteRegexp(tpl string, prefix bool) (*routeRegexp, error) {
	idxs, err := braceIndices(tpl)
	if err != nil {
		return nil, err
	}

	var (
		pattern bytes.Buffer
		varsN   []string
		varsR   []varMatcher
		end     int
	)

	pattern.WriteByte('^')

	for i := 0; i < len(idxs); i += 2 {
		raw := tpl[end:idxs[i]]
		end = idxs[i+1]

		name, patt, _ := strings.Cut(tpl[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, fmt.Errorf("mux: missing name in %q from %q", tpl[idxs[i]:end], tpl)
		}

		var matcher varMatcher
		if patt == "" {
			patt = defaultPattern
		} else {
			patt, matcher = expandMacro(patt)
		}
		if matcher == nil {
			re, err := compileRegexp("^" + patt + "$")
			if err != nil {
				return nil, fmt.Errorf("mux: invalid pattern %q in variable %q: %w", patt, name, err)
			}
			matcher = re
		}

		fmt.Fprintf(&pattern, "%s(%s)", regexp.QuoteMeta(raw), patt)
		varsN = append(varsN, name)
		varsR = append(varsR, matcher)
	}

	pattern.WriteString(regexp.QuoteMeta(tpl[end:]))
	if !prefix {
		pattern.WriteByte('$')
	}

	if err := checkDuplicateVars(varsN); err != nil {
		return nil, err
	}

	reg, err := compileRegexp(pattern.String())
	if err != nil {
		return nil, err
	}

	return &routeRegexp{
		template: tpl,
		prefix:   prefix,
		regexp:   reg,
		varsN:    varsN,
		varsR:    varsR,
	}, nil
}

// defaultPattern matches one path segment.
const defaultPattern = "[^/]+"

// Match reports whether the request path matches the template and every
// variable passes its own validator.
func (r *routeRegexp) Match(req *http.Request, _ *RouteMatch) bool {
	matches := r.regexp.FindStringSubmatch(req.URL.Path)
	if matches == nil {
		return false
	}
	for i, v := range r.varsR {
		if i+1 < len(matches) && !v.MatchString(matches[i+1]) {
			return false
		}
	}
	return true
}

// setVars extracts the variables of the request path into dst.
func (r *routeRegexp) setVars(req *http.Request, dst map[string]string) {
	matches := r.regexp.FindStringSubmatch(req.URL.Path)
	for i, name := range r.varsN {
		if i+1 < len(matches) {
			dst[name] = matches[i+1]
		}
	}
}

// braceIndices returns the start and end+1 indices of each top-level
// {...} pair in s. Returns an error if braces are unbalanced.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
	}
	return idxs, nil
}

// checkDuplicateVars returns an error if any variable name is repeated.
func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("mux: duplicated route variable %q", v)
		}
		seen[v] = true
	}
	return nil
}

// regexpCache holds compiled patterns. Its size is bounded by the number
// of registered templates.
var regexpCache sync.Map

func compileRegexp(pattern string) (*regexp.Regexp, error) {
	if v, ok := regexpCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	actual, _ := regexpCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
