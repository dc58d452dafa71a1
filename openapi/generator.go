package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Exampler can be implemented by types to provide an example value
// for the generated JSON Schema. The returned value is set as the "example"
// field on the component schema.
//
//	func (p Pet) OpenAPIExample() any {
//	    return Pet{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Rex"}
//	}
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-9.5
type Exampler interface {
	OpenAPIExample() any
}

// RawSchema is the schema graph produced for one Go type: the root schema
// and every named definition the root reaches through $ref.
type RawSchema struct {
	// Name is the component name chosen for the type.
	Name string

	Root        *Schema
	Definitions map[string]*Schema
}

// Generator turns Go types into raw schema graphs.
type Generator interface {
	Generate(t reflect.Type) RawSchema
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(t reflect.Type) RawSchema

// Generate calls f(t).
func (f GeneratorFunc) Generate(t reflect.Type) RawSchema {
	return f(t)
}

const componentSchemaPrefix = "#/components/schemas/"

var timeType = reflect.TypeFor[time.Time]()

const anySchemaID = "Any"

// titleCase upper-cases the first letter of every word and keeps the rest.
// Casers are stateful, so one is created per call.
func titleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// ReflectGenerator converts Go types to JSON Schema using reflection.
// Named struct types become definitions referenced via $ref. Names stay
// stable for the lifetime of the generator, so one generator should serve
// a whole document.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
type ReflectGenerator struct {
	schemas   map[string]*Schema
	visited   map[reflect.Type]bool
	typeNames map[reflect.Type]string // type -> chosen schema name
	nameTypes map[string]reflect.Type // schema name -> type that claimed it
}

// NewReflectGenerator creates a new reflection based generator.
func NewReflectGenerator() *ReflectGenerator {
	return &ReflectGenerator{
		schemas:   make(map[string]*Schema),
		visited:   make(map[reflect.Type]bool),
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
	}
}

// Generate produces the schema graph of t. The definitions hold only the
// named schemas reachable from the root.
func (g *ReflectGenerator) Generate(t reflect.Type) RawSchema {
	if t == nil {
		return RawSchema{Name: anySchemaID, Root: &Schema{}}
	}

	root := g.generateType(t)
	defs := make(map[string]*Schema)
	g.collectDefinitions(root, defs)

	return RawSchema{
		Name:        g.componentName(t),
		Root:        root,
		Definitions: defs,
	}
}

// collectDefinitions adds every definition reachable from s to defs.
func (g *ReflectGenerator) collectDefinitions(s *Schema, defs map[string]*Schema) {
	walkSchema(s, func(sub *Schema) {
		name, ok := strings.CutPrefix(sub.Ref, componentSchemaPrefix)
		if !ok {
			return
		}
		if _, seen := defs[name]; seen {
			return
		}
		def, ok := g.schemas[name]
		if !ok {
			return
		}
		defs[name] = def
		g.collectDefinitions(def, defs)
	})
}

// componentName names t for the components section. Unnamed composite
// types derive their name from the element type.
func (g *ReflectGenerator) componentName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Name() != "" && t.PkgPath() != "" {
		return g.schemaName(t)
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "Bytes"
		}
		return g.componentName(t.Elem()) + "List"
	case reflect.Map:
		return "MapOf" + g.componentName(t.Elem())
	case reflect.Struct:
		return "Object"
	case reflect.Interface:
		return anySchemaID
	}

	return titleCase(t.Kind().String())
}

// generateType produces a Schema for the given Go type, using $ref for named
// struct types and inline schemas for primitives, slices, maps, and anonymous
// structs.
func (g *ReflectGenerator) generateType(t reflect.Type) *Schema {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && t != timeType {
		if name := g.structName(t); name != "" {
			if !g.visited[t] {
				g.visited[t] = true
				schema := g.generateStructSchema(t)

				if ex, ok := reflect.New(t).Interface().(Exampler); ok {
					schema.Example = ex.OpenAPIExample()
				}

				g.schemas[name] = schema
			}

			ref := &Schema{Ref: componentSchemaPrefix + name}
			if nullable {
				return &Schema{AnyOf: []*Schema{ref, {Type: TypeString("null")}}}
			}
			return ref
		}
	}

	schema := g.generateInlineType(t)
	if nullable && schema != nil {
		applyNullable(schema)
	}
	return schema
}

func (g *ReflectGenerator) structName(t reflect.Type) string {
	if sanitizeSchemaName(t.Name()) == "" || t.PkgPath() == "" {
		return ""
	}
	return g.schemaName(t)
}

// generateInlineType maps Go primitive and composite types to JSON Schema types.
//
// See: https://spec.openapis.org/oas/v3.1.0#data-types
func (g *ReflectGenerator) generateInlineType(t reflect.Type) *Schema {
	if t == timeType {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &Schema{Type: TypeString("integer"), Format: "int32"}

	case reflect.Int64, reflect.Uint64:
		return &Schema{Type: TypeString("integer"), Format: "int64"}

	case reflect.Float32:
		return &Schema{Type: TypeString("number"), Format: "float"}

	case reflect.Float64:
		return &Schema{Type: TypeString("number"), Format: "double"}

	case reflect.String:
		return &Schema{Type: TypeString("string")}

	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return &Schema{Type: TypeString("array"), Items: g.generateType(t.Elem())}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: TypeString("object")}
		}
		return &Schema{Type: TypeString("object"), AdditionalProperties: g.generateType(t.Elem())}

	case reflect.Struct:
		return g.generateStructSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

// generateStructSchema builds an object schema from struct fields.
func (g *ReflectGenerator) generateStructSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}

	g.collectFields(t, schema, false)

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}

	return schema
}

// collectFields walks the exported fields of t into schema. Fields of
// embedded structs without a json name are flattened; when the embedding is
// through a pointer, every flattened field is optional.
func (g *ReflectGenerator) collectFields(t reflect.Type, schema *Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseJSONTag(jsonTag)

		if field.Anonymous && name == "" {
			ft := field.Type
			isPtr := ft.Kind() == reflect.Pointer
			if isPtr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				g.collectFields(ft, schema, allOptional || isPtr)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}

		fieldSchema := g.generateType(field.Type)
		if fieldSchema == nil {
			continue
		}

		applyOpenAPITag(fieldSchema, field.Tag.Get("openapi"))

		if opts.stringEncode && fieldSchema.Ref == "" && len(fieldSchema.AnyOf) == 0 {
			applyStringEncoding(fieldSchema)
		}

		schema.Properties[name] = fieldSchema

		if !opts.omitempty && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty:    strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
		stringEncode: strings.Contains(rest, "string"),
	}
}

// tagSetters maps `openapi` struct tag keys to schema keywords.
var tagSetters = map[string]func(s *Schema, value string){
	"description": func(s *Schema, v string) { s.Description = v },
	"title":       func(s *Schema, v string) { s.Title = v },
	"format":      func(s *Schema, v string) { s.Format = v },
	"pattern":     func(s *Schema, v string) { s.Pattern = v },
	"example":     func(s *Schema, v string) { s.Example = parseTagValue(s, v) },
	"const":       func(s *Schema, v string) { s.Const = parseTagValue(s, v) },
	"deprecated":  func(s *Schema, _ string) { s.Deprecated = true },
	"readOnly":    func(s *Schema, _ string) { s.ReadOnly = true },
	"writeOnly":   func(s *Schema, _ string) { s.WriteOnly = true },
	"uniqueItems": func(s *Schema, _ string) { s.UniqueItems = true },
	"enum": func(s *Schema, v string) {
		values := strings.Split(v, "|")
		s.Enum = make([]any, len(values))
		for i, item := range values {
			s.Enum[i] = parseTagValue(s, item)
		}
	},
	"minimum":          floatSetter(func(s *Schema, f *float64) { s.Minimum = f }),
	"maximum":          floatSetter(func(s *Schema, f *float64) { s.Maximum = f }),
	"exclusiveMinimum": floatSetter(func(s *Schema, f *float64) { s.ExclusiveMinimum = f }),
	"exclusiveMaximum": floatSetter(func(s *Schema, f *float64) { s.ExclusiveMaximum = f }),
	"multipleOf":       floatSetter(func(s *Schema, f *float64) { s.MultipleOf = f }),
	"minLength":        intSetter(func(s *Schema, n *int) { s.MinLength = n }),
	"maxLength":        intSetter(func(s *Schema, n *int) { s.MaxLength = n }),
	"minItems":         intSetter(func(s *Schema, n *int) { s.MinItems = n }),
	"maxItems":         intSetter(func(s *Schema, n *int) { s.MaxItems = n }),
	"minProperties":    intSetter(func(s *Schema, n *int) { s.MinProperties = n }),
	"maxProperties":    intSetter(func(s *Schema, n *int) { s.MaxProperties = n }),
}

func floatSetter(set func(*Schema, *float64)) func(*Schema, string) {
	return func(s *Schema, value string) {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			set(s, &v)
		}
	}
}

func intSetter(set func(*Schema, *int)) func(*Schema, string) {
	return func(s *Schema, value string) {
		if v, err := strconv.Atoi(value); err == nil {
			set(s, &v)
		}
	}
}

// applyOpenAPITag applies the comma separated key=value pairs of an
// `openapi` struct tag. Unknown keys are ignored.
//
//	Name string `json:"name" openapi:"description=Pet name,minLength=1,example=Rex"`
func applyOpenAPITag(schema *Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		if set, ok := tagSetters[strings.TrimSpace(key)]; ok {
			set(schema, strings.TrimSpace(value))
		}
	}
}

// parseTagValue converts a tag value to the Go type matching the schema type.
func parseTagValue(schema *Schema, value string) any {
	types := schema.Type.Values()
	if len(types) == 0 {
		return value
	}

	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// schemaName returns a unique schema name for the given named type. When two
// packages declare the same simple name, the later one is prefixed with its
// package name ("ApiUser"), and a numeric suffix resolves any remaining
// collision ("ApiUser2").
func (g *ReflectGenerator) schemaName(t reflect.Type) string {
	if name, ok := g.typeNames[t]; ok {
		return name
	}

	simple := sanitizeSchemaName(t.Name())
	name := simple
	if existing, ok := g.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := g.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := g.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	g.typeNames[t] = name
	g.nameTypes[name] = t
	return name
}

// pkgPrefix turns the last segment of a package path into a title-cased
// schema name prefix, e.g. "github.com/acme/pet-store" -> "PetStore".
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}

	var b strings.Builder
	for word := range strings.FieldsFuncSeq(pkgPath, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	}) {
		b.WriteString(titleCase(word))
	}
	return b.String()
}

// sanitizeSchemaName turns generic instantiation names into valid component
// keys: "Page[User]" -> "PageUser", "Page[[]pkg.User]" -> "PageUserList".
// Multiple type arguments are concatenated.
func sanitizeSchemaName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 || !strings.HasSuffix(name, "]") {
		return name
	}

	var b strings.Builder
	b.WriteString(name[:idx])

	for arg := range strings.SplitSeq(name[idx+1:len(name)-1], ",") {
		arg = strings.TrimSpace(arg)
		isList := strings.HasPrefix(arg, "[]")
		arg = strings.TrimLeft(arg, "[]*")
		if dot := strings.LastIndexByte(arg, '.'); dot >= 0 {
			arg = arg[dot+1:]
		}
		b.WriteString(titleCase(sanitizeSchemaName(arg)))
		if isList {
			b.WriteString("List")
		}
	}

	return b.String()
}

// applyNullable allows null by extending the type array
// ("string" becomes ["string", "null"]), the JSON Schema 2020-12 form of
// the OpenAPI 3.0 nullable keyword.
func applyNullable(schema *Schema) {
	if schema.Ref != "" {
		return
	}
	if types := schema.Type.Values(); len(types) > 0 {
		schema.Type = TypeArray(append(types, "null")...)
	}
}

// applyStringEncoding mirrors the encoding/json ",string" option.
func applyStringEncoding(schema *Schema) {
	types := schema.Type.Values()
	if len(types) == 0 {
		return
	}
	schema.Format = ""
	for _, t := range types {
		if t == "null" {
			schema.Type = TypeArray("string", "null")
			return
		}
	}
	schema.Type = TypeString("string")
}
