package openapi

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// NodeKind identifies what a route tree node contributes to the URL.
type NodeKind uint8

const (
	// NodeTransparent adds no path segment.
	NodeTransparent NodeKind = iota
	// NodeLiteral adds its value as fixed text.
	NodeLiteral
	// NodeParameter adds a path parameter.
	NodeParameter
	// NodeWildcard adds a wildcard segment.
	NodeWildcard
	// NodeMethod terminates a route with an HTTP method.
	NodeMethod
)

func (k NodeKind) String() string {
	switch k {
	case NodeTransparent:
		return "transparent"
	case NodeLiteral:
		return "literal"
	case NodeParameter:
		return "parameter"
	case NodeWildcard:
		return "wildcard"
	case NodeMethod:
		return "method"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// NodeSelector describes one route tree node.
type NodeSelector struct {
	Kind NodeKind

	// Value is the literal text, the parameter name or the HTTP method.
	Value string

	// Macro is the value constraint of a parameter, e.g. "uuid" or "int".
	Macro string

	// Authenticated marks a transparent node that guards its subtree.
	Authenticated bool
}

// RouteNode is the read-only view of a route tree the collector walks.
type RouteNode interface {
	Selector() NodeSelector
	Children() []RouteNode
	// Documentation returns the documentation attached to the node, or nil.
	Documentation() *RouteDocumentation
}

// SegmentKind identifies a path template segment.
type SegmentKind uint8

const (
	SegmentLiteral SegmentKind = iota
	SegmentParameter
	SegmentWildcard
)

// Segment is one element of a path template.
type Segment struct {
	Kind  SegmentKind
	Value string
	Macro string
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentParameter:
		return "{" + s.Value + "}"
	case SegmentWildcard:
		return "*"
	}
	return s.Value
}

// PathTemplate is the ordered list of segments of a route URL.
type PathTemplate []Segment

// Segments returns the rendered segments.
func (p PathTemplate) Segments() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.String()
	}
	return out
}

// String renders the template with a single leading slash and no trailing
// slash. The empty template renders as "/".
func (p PathTemplate) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.Segments(), "/")
}

// Parameters returns the parameter segments in order.
func (p PathTemplate) Parameters() []Segment {
	var params []Segment
	for _, s := range p {
		if s.Kind == SegmentParameter {
			params = append(params, s)
		}
	}
	return params
}

// RouteMeta is one documented endpoint.
type RouteMeta struct {
	// Method is the upper-case HTTP method.
	Method string

	Path PathTemplate

	// Documentation is the effective, merged documentation.
	Documentation RouteDocumentation

	// Protected is set for routes below an authenticating node.
	Protected bool
}

// RouteCollector walks a route tree and produces one RouteMeta per
// endpoint.
type RouteCollector struct {
	merger *RouteMerger
	filter func(method string, path []string) bool
	logger *slog.Logger
}

// NewRouteCollector returns a collector for cfg.
func NewRouteCollector(cfg Config) *RouteCollector {
	return &RouteCollector{
		merger: NewRouteMerger(cfg),
		filter: cfg.PathFilter,
		logger: cfg.logger(),
	}
}

// Collect walks the tree below root in pre-order. Routes are returned in
// discovery order. Hidden routes and routes rejected by the path filter are
// skipped. When two routes share method and path, the later one replaces
// the earlier in place and a warning is logged.
func (c *RouteCollector) Collect(root RouteNode) []RouteMeta {
	var routes []RouteMeta
	index := make(map[string]int)

	emit := func(meta RouteMeta) {
		if meta.Documentation.IsHidden() {
			return
		}
		if c.filter != nil && !c.filter(meta.Method, meta.Path.Segments()) {
			return
		}

		key := meta.Method + " " + meta.Path.String()
		if i, ok := index[key]; ok {
			c.logger.Warn("duplicate route, keeping the last one",
				slog.String("method", meta.Method),
				slog.String("path", meta.Path.String()),
			)
			routes[i] = meta
			return
		}

		index[key] = len(routes)
		routes = append(routes, meta)
	}

	if root != nil {
		c.walk(root, nil, nil, false, emit)
	}
	return routes
}

func (c *RouteCollector) walk(n RouteNode, path PathTemplate, docs []*RouteDocumentation, protected bool, emit func(RouteMeta)) {
	sel := n.Selector()

	switch sel.Kind {
	case NodeMethod:
		method := strings.ToUpper(sel.Value)
		emit(RouteMeta{
			Method:        method,
			Path:          slices.Clone(path),
			Documentation: c.merger.Merge(path, docs, n.Documentation(), protected),
			Protected:     protected,
		})
		return

	case NodeLiteral:
		for part := range strings.SplitSeq(sel.Value, "/") {
			if part != "" {
				path = append(slices.Clip(path), Segment{Kind: SegmentLiteral, Value: part})
			}
		}

	case NodeParameter:
		path = append(slices.Clip(path), Segment{Kind: SegmentParameter, Value: sel.Value, Macro: sel.Macro})

	case NodeWildcard:
		path = append(slices.Clip(path), Segment{Kind: SegmentWildcard})

	case NodeTransparent:
		if sel.Authenticated {
			protected = true
		}
	}

	if doc := n.Documentation(); doc != nil {
		docs = append(slices.Clip(docs), doc)
	}

	for _, child := range n.Children() {
		c.walk(child, path, docs, protected, emit)
	}
}
