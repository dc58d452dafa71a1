package openapi

import (
	"maps"
	"net/http"
	"slices"
	"strconv"
)

var unauthorizedKey = strconv.Itoa(http.StatusUnauthorized)

// RouteMerger computes the effective documentation of a route from the
// global defaults, the documentation of its ancestors and its own.
type RouteMerger struct {
	defaults        RouteDocumentation
	defaultSecurity []string
	unauthorized    *ResponseDoc
	tagGenerator    func(path []string) []string
}

// NewRouteMerger returns a merger for cfg.
func NewRouteMerger(cfg Config) *RouteMerger {
	return &RouteMerger{
		defaults:        cfg.Defaults,
		defaultSecurity: cfg.DefaultSecuritySchemes,
		unauthorized:    cfg.DefaultUnauthorizedResponse,
		tagGenerator:    cfg.TagGenerator,
	}
}

// Merge applies, nearest last: the defaults, every ancestor from the root
// down, and the route's own documentation. A field overrides only when it
// is set. Responses are merged per status key. Afterwards the default
// security and the default unauthorized response are filled in where the
// route lacks them.
func (m *RouteMerger) Merge(path PathTemplate, ancestors []*RouteDocumentation, own *RouteDocumentation, protected bool) RouteDocumentation {
	eff := m.defaults.Clone()
	for _, doc := range ancestors {
		overlay(&eff, doc)
	}
	overlay(&eff, own)

	if eff.Security == nil && len(m.defaultSecurity) > 0 {
		req := make(SecurityRequirement, len(m.defaultSecurity))
		for _, name := range m.defaultSecurity {
			req[name] = []string{}
		}
		eff.Security = []SecurityRequirement{req}
	}

	if m.unauthorized != nil && (protected || len(eff.Security) > 0) {
		if _, ok := eff.Responses[unauthorizedKey]; !ok {
			if eff.Responses == nil {
				eff.Responses = make(map[string]ResponseDoc)
			}
			eff.Responses[unauthorizedKey] = *m.unauthorized
		}
	}

	if len(eff.Tags) == 0 && m.tagGenerator != nil {
		eff.Tags = m.tagGenerator(path.Segments())
	}

	return eff
}

func overlay(dst *RouteDocumentation, src *RouteDocumentation) {
	if src == nil {
		return
	}

	if src.OperationID != "" {
		dst.OperationID = src.OperationID
	}
	if src.Summary != "" {
		dst.Summary = src.Summary
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Tags != nil {
		dst.Tags = slices.Clone(src.Tags)
	}
	if src.Deprecated != nil {
		dst.Deprecated = src.Deprecated
	}
	if src.Hidden != nil {
		dst.Hidden = src.Hidden
	}
	if src.ExternalDocs != nil {
		dst.ExternalDocs = src.ExternalDocs
	}
	if src.Security != nil {
		dst.Security = slices.Clone(src.Security)
	}
	if src.Parameters != nil {
		dst.Parameters = slices.Clone(src.Parameters)
	}
	if src.Request != nil {
		dst.Request = src.Request
	}
	if len(src.Responses) > 0 {
		if dst.Responses == nil {
			dst.Responses = make(map[string]ResponseDoc, len(src.Responses))
		}
		maps.Copy(dst.Responses, src.Responses)
	}
}

// TagFromFirstSegment is a Config.TagGenerator that tags a route with the
// first literal segment of its path.
func TagFromFirstSegment(path []string) []string {
	for _, seg := range path {
		if seg != "" && seg[0] != '{' && seg != "*" {
			return []string{seg}
		}
	}
	return nil
}
