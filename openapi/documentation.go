package openapi

import (
	"maps"
	"slices"
)

// ParameterLocation is where a parameter is carried.
type ParameterLocation string

const (
	InQuery  ParameterLocation = "query"
	InHeader ParameterLocation = "header"
	InPath   ParameterLocation = "path"
)

// ParameterDoc documents one request parameter.
type ParameterDoc struct {
	Name            string
	In              ParameterLocation
	Description     string
	Schema          SchemaSource
	Required        bool
	Deprecated      bool
	AllowEmptyValue bool
	AllowReserved   bool
	Explode         *bool
	Example         any
}

// HeaderDoc documents a response header or a multipart part header.
type HeaderDoc struct {
	Description string
	Schema      SchemaSource
	Required    bool
	Deprecated  bool
	Explode     *bool
}

// PartDoc documents one part of a multipart body.
type PartDoc struct {
	Name         string
	Schema       SchemaSource
	Required     bool
	ContentTypes []string
	Headers      map[string]HeaderDoc
}

// ExampleDoc is either an inline example or a reference to a shared one.
type ExampleDoc struct {
	// Shared names an entry of Config.Examples. When set, the remaining
	// fields are ignored.
	Shared string

	Summary     string
	Description string
	Value       any
}

// BodyDoc documents a request or response body. A body with parts is
// a multipart body and its Schema is ignored.
type BodyDoc struct {
	Description string

	// Required defaults to true for request bodies.
	Required *bool

	// ContentTypes defaults to application/json, or multipart/form-data
	// for multipart bodies.
	ContentTypes []string

	Schema   SchemaSource
	Parts    []PartDoc
	Examples map[string]ExampleDoc
}

// Multipart reports whether the body is made of parts.
func (b *BodyDoc) Multipart() bool {
	return len(b.Parts) > 0
}

// ResponseDoc documents the response for one status key.
type ResponseDoc struct {
	// Description defaults to the HTTP status text.
	Description string

	Body    *BodyDoc
	Headers map[string]HeaderDoc
}

// RouteDocumentation is the documentation attached to a route or to a group
// of routes. Every field is optional: a zero field inherits the value of the
// enclosing group.
type RouteDocumentation struct {
	OperationID  string
	Summary      string
	Description  string
	Tags         []string
	Deprecated   *bool
	Hidden       *bool
	ExternalDocs *ExternalDocs

	// Security is nil when unset. A non-nil empty slice marks the route
	// public.
	Security []SecurityRequirement

	Parameters []ParameterDoc
	Request    *BodyDoc

	// Responses are keyed by status code ("200") or "default".
	Responses map[string]ResponseDoc
}

// IsHidden reports whether the route is excluded from the document.
func (d *RouteDocumentation) IsHidden() bool {
	return d.Hidden != nil && *d.Hidden
}

// IsDeprecated reports whether the route is marked deprecated.
func (d *RouteDocumentation) IsDeprecated() bool {
	return d.Deprecated != nil && *d.Deprecated
}

// Clone returns a copy that shares no slices or maps with d.
func (d RouteDocumentation) Clone() RouteDocumentation {
	d.Tags = slices.Clone(d.Tags)
	d.Security = slices.Clone(d.Security)
	d.Parameters = slices.Clone(d.Parameters)
	d.Responses = maps.Clone(d.Responses)
	return d
}
