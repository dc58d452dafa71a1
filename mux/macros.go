package mux

import (
	"maps"
	"regexp"
	"slices"
)

// varMatcher validates a single route variable value.
// *regexp.Regexp satisfies this interface.
type varMatcher interface {
	MatchString(string) bool
	String() string
}

// lengthMatcher wraps a regexp with an additional maximum length constraint.
type lengthMatcher struct {
	re     *regexp.Regexp
	maxLen int
}

func (m *lengthMatcher) MatchString(s string) bool {
	return len(s) <= m.maxLen && m.re.MatchString(s)
}

func (m *lengthMatcher) String() string {
	return m.re.String()
}

type macro struct {
	pattern string
	matcher varMatcher
}

// patternMacros maps the names usable as {name:macro} to their patterns.
var patternMacros = func() map[string]macro {
	raw := map[string]string{
		"uuid":     `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
		"int":      `[0-9]+`,
		"float":    `[0-9]*\.?[0-9]+`,
		"slug":     `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`,
		"alpha":    `[a-zA-Z]+`,
		"alphanum": `[a-zA-Z0-9]+`,
		"date":     `[0-9]{4}-[0-9]{2}-[0-9]{2}`,
		"hex":      `[0-9a-fA-F]+`,
		// RFC 1035/1123: labels 1-63 chars, total up to 253 chars.
		"domain": `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`,
	}

	maxLengths := map[string]int{
		"domain": 253,
	}

	m := make(map[string]macro, len(raw))
	for name, pattern := range raw {
		re := regexp.MustCompile("^" + pattern + "$")

		var matcher varMatcher = re
		if maxLen, ok := maxLengths[name]; ok {
			matcher = &lengthMatcher{re: re, maxLen: maxLen}
		}

		m[name] = macro{pattern: pattern, matcher: matcher}
	}
	return m
}()

// expandMacro returns the pattern and validator of a macro name. Any other
// input is returned unchanged with a nil validator and is treated as a
// regular expression.
func expandMacro(pattern string) (string, varMatcher) {
	if m, ok := patternMacros[pattern]; ok {
		return m.pattern, m.matcher
	}
	return pattern, nil
}

// IsMacro reports whether name is a known variable macro.
func IsMacro(name string) bool {
	_, ok := patternMacros[name]
	return ok
}

// Macros returns the known macro names in sorted order.
func Macros() []string {
	return slices.Sorted(maps.Keys(patternMacros))
}
