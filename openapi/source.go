package openapi

import (
	"fmt"
	"reflect"
)

// SourceKind tells how a SchemaSource is resolved.
type SourceKind uint8

const (
	// SourceNone is the zero SchemaSource: no schema at all.
	SourceNone SourceKind = iota
	// SourceNative is a Go type turned into a schema by the Generator.
	SourceNative
	// SourceExplicit is a schema registered under an explicit id.
	SourceExplicit
	// SourceRemote points at a schema in an external document.
	SourceRemote
)

func (k SourceKind) String() string {
	switch k {
	case SourceNone:
		return "none"
	case SourceNative:
		return "native"
	case SourceExplicit:
		return "explicit"
	case SourceRemote:
		return "remote"
	}
	return fmt.Sprintf("SourceKind(%d)", uint8(k))
}

// SchemaSource describes where the schema of a body, parameter or header
// comes from. The zero value means no schema.
type SchemaSource struct {
	kind   SourceKind
	typ    reflect.Type
	id     string
	url    string
	schema *Schema
	array  bool
}

// NativeType sources the schema from a Go type. Pointer types are
// dereferenced.
func NativeType(t reflect.Type) SchemaSource {
	if t == nil {
		return SchemaSource{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return SchemaSource{kind: SourceNative, typ: t}
}

// TypeOf sources the schema from the type parameter.
//
//	openapi.TypeOf[[]Pet]()
func TypeOf[T any]() SchemaSource {
	return NativeType(reflect.TypeFor[T]())
}

// ValueOf sources the schema from the dynamic type of v. A SchemaSource
// is returned as is and nil yields the zero source.
func ValueOf(v any) SchemaSource {
	switch v := v.(type) {
	case nil:
		return SchemaSource{}
	case SchemaSource:
		return v
	}
	return NativeType(reflect.TypeOf(v))
}

// SchemaRef references the shared schema registered under id in
// Config.Schemas.
func SchemaRef(id string) SchemaSource {
	return SchemaSource{kind: SourceExplicit, id: id}
}

// SchemaRefArray references an array whose items are the shared schema
// registered under id.
func SchemaRefArray(id string) SchemaSource {
	return SchemaSource{kind: SourceExplicit, id: id, array: true}
}

// Explicit sources a hand-written schema under id. A provider registered
// for the same id in Config.Schemas takes precedence.
func Explicit(id string, schema *Schema) SchemaSource {
	return SchemaSource{kind: SourceExplicit, id: id, schema: schema}
}

// RemoteReference sources the schema from url, an external document,
// and names it id in the components section.
func RemoteReference(id, url string) SchemaSource {
	return SchemaSource{kind: SourceRemote, id: id, url: url}
}

// Kind returns how the source is resolved.
func (s SchemaSource) Kind() SourceKind {
	return s.kind
}

// IsZero reports whether the source carries no schema.
func (s SchemaSource) IsZero() bool {
	return s.kind == SourceNone
}

// Type returns the Go type of a native source.
func (s SchemaSource) Type() reflect.Type {
	return s.typ
}

// ID returns the explicit id of an explicit or remote source.
func (s SchemaSource) ID() string {
	return s.id
}

// URL returns the target of a remote source.
func (s SchemaSource) URL() string {
	return s.url
}

// IsArray reports whether the resolved schema is wrapped in an array.
func (s SchemaSource) IsArray() bool {
	return s.array
}

func (s SchemaSource) String() string {
	switch s.kind {
	case SourceNative:
		return "type " + s.typ.String()
	case SourceExplicit:
		if s.array {
			return "schema " + s.id + "[]"
		}
		return "schema " + s.id
	case SourceRemote:
		return "remote " + s.id + " (" + s.url + ")"
	}
	return "none"
}

// schemaKey is the identity a source is cached under. Explicit and remote
// sources share the id namespace. Array wrapping is applied on top of the
// cached schema and is not part of the identity.
type schemaKey struct {
	typ reflect.Type
	id  string
}

func (s SchemaSource) key() schemaKey {
	if s.kind == SourceNative {
		return schemaKey{typ: s.typ}
	}
	return schemaKey{id: s.id}
}
