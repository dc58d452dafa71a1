package openapi

import (
	"strconv"
)

// RouteBuilder provides a fluent API for documenting a route tree node.
// Documentation attached to an inner node applies to every route below it
// unless a nearer node overrides the field.
//
// Bodies accept a SchemaSource or any Go value, whose dynamic type is
// used. A nil body documents a response without content.
type RouteBuilder struct {
	doc *RouteDocumentation
}

// NewRouteBuilder returns a builder writing into doc.
func NewRouteBuilder(doc *RouteDocumentation) *RouteBuilder {
	return &RouteBuilder{doc: doc}
}

// Documentation returns the documentation being built.
func (b *RouteBuilder) Documentation() *RouteDocumentation {
	return b.doc
}

// OperationID sets the operation ID.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (operationId)
func (b *RouteBuilder) OperationID(id string) *RouteBuilder {
	b.doc.OperationID = id
	return b
}

// Summary sets the operation summary.
func (b *RouteBuilder) Summary(s string) *RouteBuilder {
	b.doc.Summary = s
	return b
}

// Description sets the operation description.
func (b *RouteBuilder) Description(d string) *RouteBuilder {
	b.doc.Description = d
	return b
}

// Tags adds one or more tags.
func (b *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	b.doc.Tags = append(b.doc.Tags, tags...)
	return b
}

// Deprecated marks the routes as deprecated.
func (b *RouteBuilder) Deprecated() *RouteBuilder {
	b.doc.Deprecated = ptr(true)
	return b
}

// Hidden excludes the routes from the document.
func (b *RouteBuilder) Hidden() *RouteBuilder {
	b.doc.Hidden = ptr(true)
	return b
}

// Visible includes routes that an enclosing node hid.
func (b *RouteBuilder) Visible() *RouteBuilder {
	b.doc.Hidden = ptr(false)
	return b
}

// ExternalDocs sets the external documentation link.
func (b *RouteBuilder) ExternalDocs(url, description string) *RouteBuilder {
	b.doc.ExternalDocs = &ExternalDocs{URL: url, Description: description}
	return b
}

// Security adds security requirements. Each requirement is an alternative.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-requirement-object
func (b *RouteBuilder) Security(reqs ...SecurityRequirement) *RouteBuilder {
	b.doc.Security = append(b.doc.Security, reqs...)
	return b
}

// Public marks the routes as requiring no security, overriding the
// default security schemes and any enclosing requirement.
func (b *RouteBuilder) Public() *RouteBuilder {
	b.doc.Security = []SecurityRequirement{}
	return b
}

// Parameter adds a parameter.
func (b *RouteBuilder) Parameter(p ParameterDoc) *RouteBuilder {
	b.doc.Parameters = append(b.doc.Parameters, p)
	return b
}

// QueryParam adds an optional query parameter.
func (b *RouteBuilder) QueryParam(name string, schema any, description string) *RouteBuilder {
	return b.Parameter(ParameterDoc{Name: name, In: InQuery, Schema: ValueOf(schema), Description: description})
}

// HeaderParam adds a request header parameter.
func (b *RouteBuilder) HeaderParam(name string, schema any, required bool, description string) *RouteBuilder {
	return b.Parameter(ParameterDoc{Name: name, In: InHeader, Schema: ValueOf(schema), Required: required, Description: description})
}

// PathParam documents a path parameter. Path parameters are derived from
// the route path; this replaces the derived schema and adds a description.
func (b *RouteBuilder) PathParam(name string, schema any, description string) *RouteBuilder {
	return b.Parameter(ParameterDoc{Name: name, In: InPath, Schema: ValueOf(schema), Required: true, Description: description})
}

// Request sets an application/json request body.
//
// See: https://spec.openapis.org/oas/v3.1.0#request-body-object
func (b *RouteBuilder) Request(body any) *RouteBuilder {
	b.request().Schema = ValueOf(body)
	return b
}

// RequestContent sets the request body with the given content types.
func (b *RouteBuilder) RequestContent(body any, contentTypes ...string) *RouteBuilder {
	req := b.request()
	req.Schema = ValueOf(body)
	req.ContentTypes = contentTypes
	return b
}

// RequestDescription sets the description of the request body.
func (b *RouteBuilder) RequestDescription(desc string) *RouteBuilder {
	b.request().Description = desc
	return b
}

// RequestRequired sets whether the request body is required. By default,
// request bodies are required.
func (b *RouteBuilder) RequestRequired(required bool) *RouteBuilder {
	b.request().Required = ptr(required)
	return b
}

// RequestExample adds a named example to the request body.
func (b *RouteBuilder) RequestExample(name string, ex ExampleDoc) *RouteBuilder {
	req := b.request()
	if req.Examples == nil {
		req.Examples = make(map[string]ExampleDoc)
	}
	req.Examples[name] = ex
	return b
}

// Multipart sets a multipart/form-data request body made of parts.
//
// See: https://spec.openapis.org/oas/v3.1.0#encoding-object
func (b *RouteBuilder) Multipart(parts ...PartDoc) *RouteBuilder {
	req := b.request()
	req.Schema = SchemaSource{}
	req.Parts = append(req.Parts, parts...)
	return b
}

func (b *RouteBuilder) request() *BodyDoc {
	if b.doc.Request == nil {
		b.doc.Request = &BodyDoc{}
	}
	return b.doc.Request
}

// Response sets an application/json response for statusCode. A nil body
// documents a response without content, e.g. 204.
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object
func (b *RouteBuilder) Response(statusCode int, body any) *RouteBuilder {
	return b.response(strconv.Itoa(statusCode), body)
}

// ResponseContent sets the response for statusCode with the given content
// types.
func (b *RouteBuilder) ResponseContent(statusCode int, body any, contentTypes ...string) *RouteBuilder {
	b.Response(statusCode, body)
	b.updateResponse(strconv.Itoa(statusCode), func(r *ResponseDoc) {
		if r.Body == nil {
			r.Body = &BodyDoc{}
		}
		r.Body.ContentTypes = contentTypes
	})
	return b
}

// ResponseDescription sets the description of the response for
// statusCode.
func (b *RouteBuilder) ResponseDescription(statusCode int, desc string) *RouteBuilder {
	b.updateResponse(strconv.Itoa(statusCode), func(r *ResponseDoc) {
		r.Description = desc
	})
	return b
}

// ResponseHeader adds a header to the response for statusCode.
func (b *RouteBuilder) ResponseHeader(statusCode int, name string, h HeaderDoc) *RouteBuilder {
	b.updateResponse(strconv.Itoa(statusCode), func(r *ResponseDoc) {
		headers := make(map[string]HeaderDoc, len(r.Headers)+1)
		for k, v := range r.Headers {
			headers[k] = v
		}
		headers[name] = h
		r.Headers = headers
	})
	return b
}

// ResponseExample adds a named example to the response body for
// statusCode.
func (b *RouteBuilder) ResponseExample(statusCode int, name string, ex ExampleDoc) *RouteBuilder {
	b.updateResponse(strconv.Itoa(statusCode), func(r *ResponseDoc) {
		body := &BodyDoc{}
		if r.Body != nil {
			*body = *r.Body
		}
		examples := make(map[string]ExampleDoc, len(body.Examples)+1)
		for k, v := range body.Examples {
			examples[k] = v
		}
		examples[name] = ex
		body.Examples = examples
		r.Body = body
	})
	return b
}

// DefaultResponse sets the application/json response for the "default"
// status key.
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object (default)
func (b *RouteBuilder) DefaultResponse(body any) *RouteBuilder {
	return b.response(defaultResponseKey, body)
}

func (b *RouteBuilder) response(key string, body any) *RouteBuilder {
	b.updateResponse(key, func(r *ResponseDoc) {
		src := ValueOf(body)
		if src.IsZero() {
			r.Body = nil
			return
		}
		r.Body = &BodyDoc{Schema: src}
	})
	return b
}

// updateResponse applies fn to the response stored under key. Responses
// are stored by value so the map entry is replaced as a whole.
func (b *RouteBuilder) updateResponse(key string, fn func(*ResponseDoc)) {
	if b.doc.Responses == nil {
		b.doc.Responses = make(map[string]ResponseDoc)
	}
	r := b.doc.Responses[key]
	fn(&r)
	b.doc.Responses[key] = r
}

func ptr[T any](v T) *T {
	return &v
}
