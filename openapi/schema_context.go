package openapi

import (
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ResolvedSchema is the cached outcome of resolving one schema identity.
type ResolvedSchema struct {
	Source SchemaSource

	// Name is the key of the schema in the components section.
	Name string

	Root        *Schema
	Definitions map[string]*Schema
}

// SchemaContext resolves schema sources once per identity and decides how
// every use site embeds them. A context serves exactly one generation pass:
// Initialize registers everything the routes use, then builders read
// through SchemaForUseSite and ComponentSection.
type SchemaContext struct {
	generator Generator
	providers map[string]SchemaProvider
	overrides map[reflect.Type]SchemaSource
	logger    *slog.Logger

	entries map[schemaKey]*ResolvedSchema
	order   []schemaKey

	// layout is computed from entries on first read and dropped when an
	// entry is added.
	layout *componentLayout
	warned map[string]bool
}

// componentLayout assigns the published component names.
type componentLayout struct {
	// names holds the component name of every referenced entry.
	names map[schemaKey]string
	// renames maps generated definition names to published ones.
	renames map[string]string
	schemas map[string]*Schema
}

// NewSchemaContext returns an empty context for cfg.
func NewSchemaContext(cfg Config) *SchemaContext {
	return &SchemaContext{
		generator: cfg.generator(),
		providers: cfg.Schemas,
		overrides: cfg.Overrides,
		logger:    cfg.logger(),
		entries:   make(map[schemaKey]*ResolvedSchema),
		warned:    make(map[string]bool),
	}
}

// Initialize registers every schema source referenced by the routes and by
// the default unauthorized response.
func (c *SchemaContext) Initialize(routes []RouteMeta, defaultUnauthorized *ResponseDoc) {
	for _, route := range routes {
		doc := route.Documentation
		c.registerBody(doc.Request)
		for _, p := range doc.Parameters {
			c.Resolve(p.Schema)
		}
		for _, resp := range doc.Responses {
			c.registerResponse(resp)
		}
	}

	if defaultUnauthorized != nil {
		c.registerResponse(*defaultUnauthorized)
	}
}

func (c *SchemaContext) registerResponse(resp ResponseDoc) {
	c.registerHeaders(resp.Headers)
	c.registerBody(resp.Body)
}

func (c *SchemaContext) registerBody(body *BodyDoc) {
	if body == nil {
		return
	}
	if !body.Multipart() {
		c.Resolve(body.Schema)
		return
	}
	for _, part := range body.Parts {
		c.Resolve(part.Schema)
		c.registerHeaders(part.Headers)
	}
}

func (c *SchemaContext) registerHeaders(headers map[string]HeaderDoc) {
	for _, h := range headers {
		c.Resolve(h.Schema)
	}
}

// Resolve returns the resolved schema of src, resolving and caching it on
// first use. It returns nil for the zero source. Array-wrapped sources
// return the wrapped schema; only the element schema is cached.
func (c *SchemaContext) Resolve(src SchemaSource) *ResolvedSchema {
	if src.IsZero() {
		return nil
	}

	src = c.substitute(src, true)

	key := src.key()
	entry, ok := c.entries[key]
	if !ok {
		entry = c.create(src)
		c.entries[key] = entry
		c.order = append(c.order, key)
		c.layout = nil
	}

	if src.array {
		return &ResolvedSchema{Source: src, Name: entry.Name, Root: arrayOf(entry.Root)}
	}
	return entry
}

// substitute applies type overrides until a source without override is
// reached. A cycle keeps the last source before the repetition.
func (c *SchemaContext) substitute(src SchemaSource, warn bool) SchemaSource {
	seen := make(map[reflect.Type]bool)
	for src.kind == SourceNative {
		next, ok := c.overrides[src.typ]
		if !ok || next.IsZero() {
			break
		}
		if seen[src.typ] {
			if warn {
				c.logger.Warn("schema override cycle", slog.String("type", src.typ.String()))
			}
			break
		}
		seen[src.typ] = true
		src = next
	}
	return src
}

func (c *SchemaContext) create(src SchemaSource) *ResolvedSchema {
	switch src.kind {
	case SourceNative:
		return c.createNative(src)
	case SourceRemote:
		return &ResolvedSchema{Source: src, Name: src.id, Root: remoteSchema(src.url)}
	}
	return &ResolvedSchema{Source: src, Name: src.id, Root: c.explicitSchema(src)}
}

func (c *SchemaContext) createNative(src SchemaSource) *ResolvedSchema {
	raw := c.generator.Generate(src.typ)

	root := raw.Root
	if root == nil {
		root = &Schema{}
	}

	defs := maps.Clone(raw.Definitions)
	if defs == nil {
		defs = make(map[string]*Schema)
	}

	return &ResolvedSchema{
		Source:      src,
		Name:        raw.Name,
		Root:        root,
		Definitions: defs,
	}
}

// derived reports whether entry is a native schema whose root is neither
// inlined nor a reference, such as the array schema of []Pet. Such roots
// are published under a name derived from the type.
func derived(entry *ResolvedSchema) bool {
	return entry.Source.kind == SourceNative && !isInlineable(entry.Root) && entry.Root.Ref == ""
}

func (c *SchemaContext) explicitSchema(src SchemaSource) *Schema {
	provider, ok := c.providers[src.id]
	if !ok {
		if src.schema != nil {
			return src.schema
		}
		c.logger.Warn("no schema registered for id, using an empty schema", slog.String("id", src.id))
		return &Schema{}
	}

	s, err := provider()
	if err != nil || s == nil {
		c.logger.Warn("schema provider failed, using an empty schema",
			slog.String("id", src.id),
			slog.Any("error", err),
		)
		return &Schema{}
	}
	return s
}

// SchemaForUseSite returns the schema to embed where src is used: a copy of
// the root for primitives and arrays of primitives, a component reference
// otherwise. It fails with *UnresolvedSchemaError when src was never
// registered. The zero source yields nil.
func (c *SchemaContext) SchemaForUseSite(src SchemaSource) (*Schema, error) {
	if src.IsZero() {
		return nil, nil
	}

	src = c.substitute(src, false)
	entry, ok := c.entries[src.key()]
	if !ok {
		return nil, &UnresolvedSchemaError{Source: src}
	}

	var s *Schema
	if isInlineable(entry.Root) {
		cp := *entry.Root
		s = &cp
	} else {
		layout := c.componentLayout()
		if name, ok := layout.names[src.key()]; ok {
			s = refTo(name)
		} else {
			s = cloneSchema(entry.Root)
			renameRefs(s, layout.renames)
		}
	}

	if src.array {
		return arrayOf(s), nil
	}
	return s, nil
}

// ComponentSection returns the schemas to publish under
// components.schemas. Native types contribute their definitions unless
// their root is inlined; explicit and remote schemas are always published
// under their id. A native name equal to one of those ids is renamed with
// a numeric suffix, and so is a derived name equal to a generated one.
func (c *SchemaContext) ComponentSection() map[string]*Schema {
	return maps.Clone(c.componentLayout().schemas)
}

func (c *SchemaContext) componentLayout() *componentLayout {
	if c.layout != nil {
		return c.layout
	}

	layout := &componentLayout{
		names:   make(map[schemaKey]string),
		renames: make(map[string]string),
		schemas: make(map[string]*Schema),
	}
	taken := make(map[string]bool)

	for _, key := range c.order {
		if entry := c.entries[key]; entry.Source.kind != SourceNative {
			taken[entry.Name] = true
			layout.names[key] = entry.Name
		}
	}

	// Generated definitions are shared by name across entries.
	defs := make(map[string]*Schema)
	for _, key := range c.order {
		entry := c.entries[key]
		if entry.Source.kind != SourceNative || isInlineable(entry.Root) {
			continue
		}
		for _, name := range slices.Sorted(maps.Keys(entry.Definitions)) {
			if _, ok := defs[name]; ok {
				continue
			}
			defs[name] = entry.Definitions[name]
			layout.renames[name] = c.free(name, taken, "schema name is used by a registered schema, renaming the generated one")
		}
	}

	// Derived roots are named last so generated names keep priority.
	roots := make(map[string]*Schema)
	for _, key := range c.order {
		entry := c.entries[key]
		if !derived(entry) {
			continue
		}
		name := c.free(entry.Name, taken, "derived schema name is already used, renaming")
		layout.names[key] = name
		roots[name] = entry.Root
	}

	for _, key := range c.order {
		entry := c.entries[key]
		if entry.Source.kind != SourceNative || isInlineable(entry.Root) || derived(entry) {
			continue
		}
		if name, ok := strings.CutPrefix(entry.Root.Ref, componentSchemaPrefix); ok {
			if published, ok := layout.renames[name]; ok {
				layout.names[key] = published
			}
		}
	}

	publish := func(name string, s *Schema) {
		if layout.renamed() {
			s = cloneSchema(s)
			renameRefs(s, layout.renames)
		}
		layout.schemas[name] = s
	}
	for name, def := range defs {
		publish(layout.renames[name], def)
	}
	for name, root := range roots {
		publish(name, root)
	}

	for _, key := range c.order {
		if entry := c.entries[key]; entry.Source.kind != SourceNative {
			layout.schemas[entry.Name] = entry.Root
		}
	}

	c.layout = layout
	return layout
}

// renamed reports whether any generated definition was renamed.
func (l *componentLayout) renamed() bool {
	for name, published := range l.renames {
		if name != published {
			return true
		}
	}
	return false
}

// free returns name, or name with the lowest numeric suffix from 2 on that
// is not taken, and marks the result taken. A rename is logged once.
func (c *SchemaContext) free(name string, taken map[string]bool, msg string) string {
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	taken[candidate] = true

	if candidate != name && !c.warned[name+" -> "+candidate] {
		c.warned[name+" -> "+candidate] = true
		c.logger.Warn(msg, slog.String("name", name), slog.String("renamed", candidate))
	}
	return candidate
}
