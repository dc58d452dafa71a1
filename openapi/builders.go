package openapi

import (
	"fmt"
	"maps"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

const (
	openAPIVersion         = "3.1.0"
	componentExamplePrefix = "#/components/examples/"
	defaultResponseKey     = "default"
	contentTypeJSON        = "application/json"
	contentTypeMultipart   = "multipart/form-data"
)

// macroTypeMap maps route parameter macros to OpenAPI type and format.
var macroTypeMap = map[string][2]string{
	"uuid":     {"string", "uuid"},
	"int":      {"integer", ""},
	"float":    {"number", ""},
	"slug":     {"string", ""},
	"alpha":    {"string", ""},
	"alphanum": {"string", ""},
	"date":     {"string", "date"},
	"hex":      {"string", ""},
	"domain":   {"string", "hostname"},
}

// DocumentBuilder assembles a Document from collected routes.
type DocumentBuilder struct {
	cfg Config
}

// NewDocumentBuilder returns a builder for cfg.
func NewDocumentBuilder(cfg Config) *DocumentBuilder {
	return &DocumentBuilder{cfg: cfg}
}

// Build resolves every schema the routes use and maps the routes onto
// paths and components. A fresh SchemaContext is used per call.
func (b *DocumentBuilder) Build(routes []RouteMeta) (*Document, error) {
	schemas := NewSchemaContext(b.cfg)
	schemas.Initialize(routes, b.cfg.DefaultUnauthorizedResponse)

	fb := &fragmentBuilder{schemas: schemas}

	paths := make(map[string]*PathItem)
	for _, route := range routes {
		op, err := fb.operation(route)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", route.Method, route.Path, err)
		}

		key := route.Path.String()
		item, ok := paths[key]
		if !ok {
			item = &PathItem{}
			paths[key] = item
		}
		assignOperation(item, route.Method, op)
	}

	doc := &Document{
		OpenAPI:      openAPIVersion,
		Info:         buildInfo(b.cfg.Info),
		Servers:      b.cfg.Servers,
		Paths:        paths,
		ExternalDocs: b.cfg.ExternalDocs,
		Tags:         buildTags(b.cfg.Tags, routes),
		Components:   buildComponents(schemas, b.cfg),
	}

	return doc, nil
}

// buildInfo fills in the default title and version.
func buildInfo(info Info) Info {
	if info.Title == "" {
		info.Title = defaultTitle
	}
	if info.Version == "" {
		info.Version = defaultVersion
	}
	return info
}

// buildTags combines the tags used by routes with the configured ones.
// Configured tags win on description and external docs and are kept even
// when unused. The result is sorted by name.
func buildTags(configured []Tag, routes []RouteMeta) []Tag {
	byName := make(map[string]Tag, len(configured))
	for _, tag := range configured {
		byName[tag.Name] = tag
	}

	for _, route := range routes {
		for _, name := range route.Documentation.Tags {
			if _, ok := byName[name]; !ok {
				byName[name] = Tag{Name: name}
			}
		}
	}

	if len(byName) == 0 {
		return nil
	}

	tags := make([]Tag, 0, len(byName))
	for _, tag := range byName {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// buildComponents returns nil when there is nothing to publish.
func buildComponents(schemas *SchemaContext, cfg Config) *Components {
	comp := &Components{}

	if section := schemas.ComponentSection(); len(section) > 0 {
		comp.Schemas = section
	}
	if len(cfg.SecuritySchemes) > 0 {
		comp.SecuritySchemes = maps.Clone(cfg.SecuritySchemes)
	}
	if len(cfg.Examples) > 0 {
		comp.Examples = maps.Clone(cfg.Examples)
	}

	if comp.Schemas == nil && comp.SecuritySchemes == nil && comp.Examples == nil {
		return nil
	}
	return comp
}

// fragmentBuilder maps documentation records onto OpenAPI objects.
type fragmentBuilder struct {
	schemas *SchemaContext
}

func (b *fragmentBuilder) operation(route RouteMeta) (*Operation, error) {
	doc := route.Documentation

	op := &Operation{
		OperationID:  doc.OperationID,
		Summary:      doc.Summary,
		Description:  doc.Description,
		Tags:         doc.Tags,
		Deprecated:   doc.IsDeprecated(),
		Security:     doc.Security,
		ExternalDocs: doc.ExternalDocs,
	}

	declared := make([]*Parameter, 0, len(doc.Parameters))
	for _, p := range doc.Parameters {
		param, err := b.parameter(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		declared = append(declared, param)
	}
	op.Parameters = mergeParameters(pathParameters(route.Path), declared)

	if doc.Request != nil {
		body, err := b.requestBody(doc.Request)
		if err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
		op.RequestBody = body
	}

	if len(doc.Responses) > 0 {
		op.Responses = make(map[string]*Response, len(doc.Responses))
		for key, r := range doc.Responses {
			resp, err := b.response(key, r)
			if err != nil {
				return nil, fmt.Errorf("response %s: %w", key, err)
			}
			op.Responses[key] = resp
		}
	}

	return op, nil
}

func (b *fragmentBuilder) parameter(p ParameterDoc) (*Parameter, error) {
	schema, err := b.schemas.SchemaForUseSite(p.Schema)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		schema = &Schema{Type: TypeString("string")}
	}

	return &Parameter{
		Name:            p.Name,
		In:              string(p.In),
		Description:     p.Description,
		Required:        p.Required || p.In == InPath,
		Deprecated:      p.Deprecated,
		AllowEmptyValue: p.AllowEmptyValue,
		AllowReserved:   p.AllowReserved,
		Explode:         p.Explode,
		Schema:          schema,
		Example:         p.Example,
	}, nil
}

func (b *fragmentBuilder) header(h HeaderDoc) (*Header, error) {
	schema, err := b.schemas.SchemaForUseSite(h.Schema)
	if err != nil {
		return nil, err
	}
	return &Header{
		Description: h.Description,
		Required:    h.Required,
		Deprecated:  h.Deprecated,
		Explode:     h.Explode,
		Schema:      schema,
	}, nil
}

func (b *fragmentBuilder) headers(docs map[string]HeaderDoc) (map[string]*Header, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make(map[string]*Header, len(docs))
	for name, h := range docs {
		header, err := b.header(h)
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", name, err)
		}
		out[name] = header
	}
	return out, nil
}

func (b *fragmentBuilder) requestBody(body *BodyDoc) (*RequestBody, error) {
	content, err := b.content(body)
	if err != nil {
		return nil, err
	}

	required := true
	if body.Required != nil {
		required = *body.Required
	}

	return &RequestBody{
		Description: body.Description,
		Required:    required,
		Content:     content,
	}, nil
}

func (b *fragmentBuilder) response(key string, r ResponseDoc) (*Response, error) {
	desc := r.Description
	if desc == "" {
		desc = responseDescription(key)
	}
	resp := &Response{Description: desc}

	headers, err := b.headers(r.Headers)
	if err != nil {
		return nil, err
	}
	resp.Headers = headers

	if r.Body != nil {
		content, err := b.content(r.Body)
		if err != nil {
			return nil, err
		}
		resp.Content = content
	}

	return resp, nil
}

// content builds one media type per content type of body. Multipart
// bodies become an object with one property per part and an encoding entry
// for parts with content types or headers.
func (b *fragmentBuilder) content(body *BodyDoc) (map[string]*MediaType, error) {
	mt := &MediaType{Examples: buildExamples(body.Examples)}
	defaultType := contentTypeJSON

	if body.Multipart() {
		defaultType = contentTypeMultipart
		schema, encoding, err := b.multipart(body.Parts)
		if err != nil {
			return nil, err
		}
		mt.Schema = schema
		mt.Encoding = encoding
	} else {
		schema, err := b.schemas.SchemaForUseSite(body.Schema)
		if err != nil {
			return nil, err
		}
		mt.Schema = schema
	}

	types := body.ContentTypes
	if len(types) == 0 {
		types = []string{defaultType}
	}

	content := make(map[string]*MediaType, len(types))
	for _, ct := range types {
		cp := *mt
		content[ct] = &cp
	}
	return content, nil
}

func (b *fragmentBuilder) multipart(parts []PartDoc) (*Schema, map[string]*Encoding, error) {
	schema := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema, len(parts)),
	}
	var encoding map[string]*Encoding

	for _, part := range parts {
		ps, err := b.schemas.SchemaForUseSite(part.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("part %q: %w", part.Name, err)
		}
		if ps == nil {
			ps = &Schema{}
		}
		schema.Properties[part.Name] = ps

		if part.Required {
			schema.Required = append(schema.Required, part.Name)
		}

		if len(part.ContentTypes) == 0 && len(part.Headers) == 0 {
			continue
		}

		headers, err := b.headers(part.Headers)
		if err != nil {
			return nil, nil, fmt.Errorf("part %q: %w", part.Name, err)
		}
		if encoding == nil {
			encoding = make(map[string]*Encoding)
		}
		encoding[part.Name] = &Encoding{
			ContentType: strings.Join(part.ContentTypes, ", "),
			Headers:     headers,
		}
	}

	return schema, encoding, nil
}

func buildExamples(docs map[string]ExampleDoc) map[string]*Example {
	if len(docs) == 0 {
		return nil
	}
	out := make(map[string]*Example, len(docs))
	for name, ex := range docs {
		if ex.Shared != "" {
			out[name] = &Example{Ref: componentExamplePrefix + ex.Shared}
			continue
		}
		out[name] = &Example{
			Summary:     ex.Summary,
			Description: ex.Description,
			Value:       ex.Value,
		}
	}
	return out
}

// pathParameters derives a required path parameter for every parameter
// segment, typed from its macro.
func pathParameters(path PathTemplate) []*Parameter {
	var params []*Parameter
	for _, seg := range path.Parameters() {
		schema := &Schema{Type: TypeString("string")}
		if info, ok := macroTypeMap[seg.Macro]; ok {
			schema = &Schema{Type: TypeString(info[0]), Format: info[1]}
		}
		params = append(params, &Parameter{
			Name:     seg.Value,
			In:       string(InPath),
			Required: true,
			Schema:   schema,
		})
	}
	return params
}

// mergeParameters combines derived path parameters with declared ones.
// A declared parameter replaces the derived one with the same name and
// location.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (parameters)
func mergeParameters(auto, declared []*Parameter) []*Parameter {
	if len(auto) == 0 && len(declared) == 0 {
		return nil
	}

	overrides := make(map[[2]string]struct{}, len(declared))
	for _, p := range declared {
		overrides[[2]string{p.Name, p.In}] = struct{}{}
	}

	var merged []*Parameter
	for _, p := range auto {
		if _, ok := overrides[[2]string{p.Name, p.In}]; !ok {
			merged = append(merged, p)
		}
	}

	return append(merged, declared...)
}

// responseDescription returns the default description for a response key.
func responseDescription(key string) string {
	if key == defaultResponseKey {
		return "Default response"
	}
	if code, err := strconv.Atoi(key); err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}

// assignOperation stores op under the field of the path item matching
// method. Unknown methods are dropped.
func assignOperation(item *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodHead:
		item.Head = op
	case http.MethodOptions:
		item.Options = op
	case http.MethodTrace:
		item.Trace = op
	}
}
