package openapi

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the root object of a generated OpenAPI 3.1 document.
type Document struct {
	OpenAPI      string                `json:"openapi"`
	Info         Info                  `json:"info"`
	Servers      []Server              `json:"servers,omitempty"`
	Paths        map[string]*PathItem  `json:"paths,omitempty"`
	Components   *Components           `json:"components,omitempty"`
	Tags         []Tag                 `json:"tags,omitempty"`
	Security     []SecurityRequirement `json:"security,omitempty"`
	ExternalDocs *ExternalDocs         `json:"externalDocs,omitempty"`
}

// Info carries the title and version of the API. Both are required.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Server is a base URL the API is served from.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// PathItem groups the operations of one path template by method.
type PathItem struct {
	Get     *Operation `json:"get,omitempty"`
	Put     *Operation `json:"put,omitempty"`
	Post    *Operation `json:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty"`
	Options *Operation `json:"options,omitempty"`
	Head    *Operation `json:"head,omitempty"`
	Patch   *Operation `json:"patch,omitempty"`
	Trace   *Operation `json:"trace,omitempty"`
}

// Operation is one method on one path.
type Operation struct {
	OperationID  string                `json:"operationId,omitempty"`
	Summary      string                `json:"summary,omitempty"`
	Description  string                `json:"description,omitempty"`
	Tags         []string              `json:"tags,omitempty"`
	Deprecated   bool                  `json:"deprecated,omitempty"`
	Security     []SecurityRequirement `json:"security,omitempty"`
	ExternalDocs *ExternalDocs         `json:"externalDocs,omitempty"`
	Parameters   []*Parameter          `json:"parameters,omitempty"`
	RequestBody  *RequestBody          `json:"requestBody,omitempty"`
	Responses    map[string]*Response  `json:"responses,omitempty"`
}

// Parameter is a path, query, header or cookie parameter. Name and In
// together identify it within an operation.
type Parameter struct {
	Name            string  `json:"name"`
	In              string  `json:"in"`
	Description     string  `json:"description,omitempty"`
	Required        bool    `json:"required,omitempty"`
	Deprecated      bool    `json:"deprecated,omitempty"`
	AllowEmptyValue bool    `json:"allowEmptyValue,omitempty"`
	AllowReserved   bool    `json:"allowReserved,omitempty"`
	Explode         *bool   `json:"explode,omitempty"`
	Schema          *Schema `json:"schema,omitempty"`
	Example         any     `json:"example,omitempty"`
}

// Header is a response or multipart header. Its name is the key of the
// enclosing map.
type Header struct {
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty"`
	Explode     *bool   `json:"explode,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

type RequestBody struct {
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// Response is keyed by status code. Description is always emitted since
// OpenAPI requires it, even when empty.
type Response struct {
	Description string                `json:"description"`
	Headers     map[string]*Header    `json:"headers,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// MediaType is the body description for one content type.
type MediaType struct {
	Schema   *Schema              `json:"schema,omitempty"`
	Examples map[string]*Example  `json:"examples,omitempty"`
	Encoding map[string]*Encoding `json:"encoding,omitempty"`
}

// Encoding describes one part of a multipart body.
type Encoding struct {
	ContentType string             `json:"contentType,omitempty"`
	Headers     map[string]*Header `json:"headers,omitempty"`
}

// Example is either an inline value or, when Ref is set, a reference to
// an entry of components.examples. A reference carries no other field.
type Example struct {
	Ref         string `json:"$ref,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// SchemaType is the "type" keyword. It holds one name, or several for
// unions such as ["string", "null"].
type SchemaType struct {
	value []string
}

// TypeString returns a single-name type.
func TypeString(t string) SchemaType {
	return SchemaType{value: []string{t}}
}

// TypeArray returns a union type.
func TypeArray(types ...string) SchemaType {
	return SchemaType{value: types}
}

func (st SchemaType) Values() []string {
	return st.value
}

// IsEmpty reports whether no type is set.
func (st SchemaType) IsEmpty() bool {
	return len(st.value) == 0
}

// IsZero lets yaml.v3 omit an unset type.
func (st SchemaType) IsZero() bool {
	return len(st.value) == 0
}

// MarshalJSON writes a single type as a string and a union as an array.
func (st SchemaType) MarshalJSON() ([]byte, error) {
	if len(st.value) == 1 {
		return json.Marshal(st.value[0])
	}
	return json.Marshal(st.value)
}

func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		st.value = []string{single}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	st.value = arr
	return nil
}

func (st SchemaType) MarshalYAML() (any, error) {
	switch len(st.value) {
	case 0:
		return nil, nil
	case 1:
		return st.value[0], nil
	default:
		return st.value, nil
	}
}

func (st *SchemaType) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		st.value = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		st.value = arr
		return nil
	default:
		return fmt.Errorf("schema type: unexpected yaml node kind %d", node.Kind)
	}
}

// Schema is a JSON Schema 2020-12 object. Generated schemas use a small
// part of it; the rest is filled when a JSONSchema provider hands over a
// hand-written schema, which is decoded into this struct as is.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
type Schema struct {
	// Identifiers and references.
	ID        string             `json:"$id,omitempty"`
	SchemaURI string             `json:"$schema,omitempty"`
	Ref       string             `json:"$ref,omitempty"`
	Comment   string             `json:"$comment,omitempty"`
	Defs      map[string]*Schema `json:"$defs,omitempty"`

	// Type, format and annotations.
	Type        SchemaType `json:"type,omitzero" yaml:"type,omitempty"`
	Format      string     `json:"format,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Default     any        `json:"default,omitempty"`
	Example     any        `json:"example,omitempty"`
	Examples    []any      `json:"examples,omitempty"`
	Deprecated  bool       `json:"deprecated,omitempty"`
	ReadOnly    bool       `json:"readOnly,omitempty"`
	WriteOnly   bool       `json:"writeOnly,omitempty"`

	// Numbers.
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// Strings.
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Arrays.
	Items            *Schema   `json:"items,omitempty"`
	PrefixItems      []*Schema `json:"prefixItems,omitempty"`
	Contains         *Schema   `json:"contains,omitempty"`
	MinItems         *int      `json:"minItems,omitempty"`
	MaxItems         *int      `json:"maxItems,omitempty"`
	UniqueItems      bool      `json:"uniqueItems,omitempty"`
	UnevaluatedItems *Schema   `json:"unevaluatedItems,omitempty"`

	// Objects.
	Properties            map[string]*Schema  `json:"properties,omitempty"`
	PatternProperties     map[string]*Schema  `json:"patternProperties,omitempty"`
	AdditionalProperties  *Schema             `json:"additionalProperties,omitempty"`
	UnevaluatedProperties *Schema             `json:"unevaluatedProperties,omitempty"`
	PropertyNames         *Schema             `json:"propertyNames,omitempty"`
	Required              []string            `json:"required,omitempty"`
	MinProperties         *int                `json:"minProperties,omitempty"`
	MaxProperties         *int                `json:"maxProperties,omitempty"`
	DependentRequired     map[string][]string `json:"dependentRequired,omitempty"`
	DependentSchemas      map[string]*Schema  `json:"dependentSchemas,omitempty"`

	// Value restrictions.
	Enum  []any `json:"enum,omitempty"`
	Const any   `json:"const,omitzero"`

	// Applicators.
	AllOf []*Schema `json:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`
	If    *Schema   `json:"if,omitempty"`
	Then  *Schema   `json:"then,omitempty"`
	Else  *Schema   `json:"else,omitempty"`

	// Encoded string content.
	ContentEncoding  string  `json:"contentEncoding,omitempty"`
	ContentMediaType string  `json:"contentMediaType,omitempty"`
	ContentSchema    *Schema `json:"contentSchema,omitempty"`

	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
}

// Components holds the shared objects referenced from the rest of the
// document.
type Components struct {
	Schemas         map[string]*Schema         `json:"schemas,omitempty"`
	Examples        map[string]*Example        `json:"examples,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `json:"securitySchemes,omitempty"`
}

type Tag struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
}

// SecurityRequirement maps a scheme name to its required scopes. Schemes
// without scopes map to an empty list.
type SecurityRequirement map[string][]string

type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// SecurityScheme declares one way of authenticating: "http" with a
// Scheme such as "basic" or "bearer", or "apiKey" with Name and In.
type SecurityScheme struct {
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	Name         string `json:"name,omitempty"`
	In           string `json:"in,omitempty"`
}
