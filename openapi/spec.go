package openapi

import (
	"strings"

	"github.com/vitalvas/routedoc/mux"
)

// Spec attaches documentation to the routes and subrouters of a mux
// router and builds the OpenAPI document describing it.
//
// Documentation must be attached before the first Build. Build itself may
// be called any number of times; every call is an independent generation
// pass.
type Spec struct {
	cfg Config

	// docs is keyed by *mux.Route or *mux.Router.
	docs map[any]*RouteDocumentation
}

// NewSpec creates a spec with the given configuration.
func NewSpec(cfg Config) *Spec {
	return &Spec{
		cfg:  cfg,
		docs: make(map[any]*RouteDocumentation),
	}
}

// Config returns the configuration the Spec was created with.
func (s *Spec) Config() Config {
	return s.cfg
}

// Route returns the documentation builder of route. Calling Route again
// for the same route continues the same documentation. Documentation of a
// group route is inherited by every route of its subrouter.
//
//	spec.Route(r.HandleFunc("/pets", list).Methods(http.MethodGet)).
//		Summary("List pets").
//		Response(http.StatusOK, []Pet{})
func (s *Spec) Route(route *mux.Route) *RouteBuilder {
	return NewRouteBuilder(s.doc(route))
}

// Router returns the documentation builder of a router. Its documentation
// is inherited by every route registered on it.
//
//	pets := r.PathPrefix("/pets").Subrouter()
//	spec.Router(pets).Tags("pets")
func (s *Spec) Router(r *mux.Router) *RouteBuilder {
	return NewRouteBuilder(s.doc(r))
}

func (s *Spec) doc(key any) *RouteDocumentation {
	doc, ok := s.docs[key]
	if !ok {
		doc = &RouteDocumentation{}
		s.docs[key] = doc
	}
	return doc
}

// Routes collects the documented routes of r.
func (s *Spec) Routes(r *mux.Router) []RouteMeta {
	return NewRouteCollector(s.cfg).Collect(s.tree(r))
}

// Build walks the routes of r and builds the complete document.
func (s *Spec) Build(r *mux.Router) (*Document, error) {
	return NewDocumentBuilder(s.cfg).Build(s.Routes(r))
}

// tree converts the routes of r into the node tree the collector walks.
func (s *Spec) tree(r *mux.Router) RouteNode {
	return &treeNode{
		doc:      s.docs[r],
		children: s.routerChildren(r, ""),
	}
}

// routerChildren returns one subtree per route registered directly on r.
// prefix is the template already consumed by the enclosing groups.
func (s *Spec) routerChildren(r *mux.Router, prefix string) []RouteNode {
	var out []RouteNode

	_ = r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if node := s.routeNode(route, prefix); node != nil {
			out = append(out, node)
		}
		return mux.SkipRouter
	})

	return out
}

// routeNode converts a route into a chain of path nodes ending in either
// the subtree of its subrouter or one method node per method. Routes that
// failed to build, and terminal routes without methods, are skipped.
func (s *Spec) routeNode(route *mux.Route, prefix string) RouteNode {
	if route.GetError() != nil {
		return nil
	}

	own := ""
	tpl, err := route.GetPathTemplate()
	if err == nil {
		own = strings.TrimPrefix(tpl, prefix)
	} else {
		tpl = prefix
	}

	head := &treeNode{}
	tail := head
	for _, sel := range templateSelectors(own) {
		next := &treeNode{sel: sel}
		tail.children = []RouteNode{next}
		tail = next
	}

	doc := s.docs[route]

	if sub := route.GetSubrouter(); sub != nil {
		tail.children = []RouteNode{&treeNode{
			sel: NodeSelector{Kind: NodeTransparent, Authenticated: route.IsAuthenticated()},
			doc: doc,
			children: []RouteNode{&treeNode{
				doc:      s.docs[sub],
				children: s.routerChildren(sub, strings.TrimRight(tpl, "/")),
			}},
		}}
		return head
	}

	methods, err := route.GetMethods()
	if err != nil {
		return nil
	}

	if route.IsPathPrefix() {
		next := &treeNode{sel: NodeSelector{Kind: NodeWildcard}}
		tail.children = []RouteNode{next}
		tail = next
	}

	for _, method := range methods {
		tail.children = append(tail.children, &treeNode{
			sel: NodeSelector{Kind: NodeMethod, Value: method},
			doc: doc,
		})
	}

	return head
}

// templateSelectors splits a path template into selectors. A segment that
// is a single {name} or {name:pattern} variable becomes a parameter; any
// other segment is literal text, with embedded variables reduced to
// {name}.
func templateSelectors(tpl string) []NodeSelector {
	var sels []NodeSelector

	for _, part := range splitTemplate(tpl) {
		if part == "" {
			continue
		}

		if name, pattern, ok := wholeVariable(part); ok {
			sels = append(sels, NodeSelector{Kind: NodeParameter, Value: name, Macro: pattern})
			continue
		}

		sels = append(sels, NodeSelector{Kind: NodeLiteral, Value: stripPatterns(part)})
	}

	return sels
}

// splitTemplate splits tpl on slashes outside of braces.
func splitTemplate(tpl string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(tpl); i++ {
		switch tpl[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '/':
			if depth == 0 {
				parts = append(parts, tpl[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, tpl[start:])
}

// wholeVariable reports whether part is exactly one variable.
func wholeVariable(part string) (name, pattern string, ok bool) {
	if len(part) < 2 || part[0] != '{' || part[len(part)-1] != '}' {
		return "", "", false
	}
	inner := part[1 : len(part)-1]
	if strings.ContainsAny(inner, "{}") && !balanced(inner) {
		return "", "", false
	}
	name, pattern, _ = strings.Cut(inner, ":")
	return name, pattern, name != ""
}

// balanced reports whether the braces of s pair up without the depth
// dropping below zero, i.e. part is a single top-level {...}.
func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth--; depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// stripPatterns rewrites {name:pattern} to {name}.
func stripPatterns(part string) string {
	if !strings.Contains(part, ":") {
		return part
	}

	var (
		b     strings.Builder
		depth int
		skip  bool
	)
	for i := 0; i < len(part); i++ {
		c := part[i]
		switch c {
		case '{':
			depth++
			if depth == 1 {
				skip = false
			}
		case '}':
			depth--
			if depth == 0 {
				skip = false
			}
		case ':':
			if depth == 1 {
				skip = true
			}
		}
		if skip && depth >= 1 {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// treeNode is the collector view of part of a mux router.
type treeNode struct {
	sel      NodeSelector
	doc      *RouteDocumentation
	children []RouteNode
}

func (n *treeNode) Selector() NodeSelector { return n.sel }

func (n *treeNode) Children() []RouteNode { return n.children }

func (n *treeNode) Documentation() *RouteDocumentation { return n.doc }
