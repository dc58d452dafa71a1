package openapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
)

const (
	defaultTitle   = "API"
	defaultVersion = "latest"
)

// Config holds the global settings of document generation. It is copied
// into every generation pass and never modified by it.
type Config struct {
	// Info describes the API. Title defaults to "API" and Version to
	// "latest".
	Info Info

	Servers      []Server
	ExternalDocs *ExternalDocs

	// Tags are emitted in addition to the tags used by operations and take
	// precedence for description and external docs.
	Tags []Tag

	SecuritySchemes map[string]*SecurityScheme

	// DefaultSecuritySchemes are required by every route that does not
	// declare its own security.
	DefaultSecuritySchemes []string

	// DefaultUnauthorizedResponse is added as the 401 response of every
	// secured route that does not document a 401 itself.
	DefaultUnauthorizedResponse *ResponseDoc

	// Defaults is the documentation every route starts from.
	Defaults RouteDocumentation

	// Schemas are shared schemas addressed by id through SchemaRef and
	// SchemaRefArray.
	Schemas map[string]SchemaProvider

	// Examples are shared examples addressed by name through
	// ExampleDoc.Shared.
	Examples map[string]*Example

	// Overrides replace the schema of a Go type wherever it is used.
	Overrides map[reflect.Type]SchemaSource

	// Generator turns Go types into schemas. When nil, every generation
	// pass uses a fresh ReflectGenerator.
	Generator Generator

	// PathFilter drops routes for which it returns false. The path is given
	// as rendered segments.
	PathFilter func(method string, path []string) bool

	// TagGenerator supplies tags for routes that end up without any.
	TagGenerator func(path []string) []string

	// Logger receives configuration warnings. Nil discards them.
	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Config) generator() Generator {
	if c.Generator == nil {
		return NewReflectGenerator()
	}
	return c.Generator
}

// SchemaProvider supplies the schema registered under an id in
// Config.Schemas.
type SchemaProvider func() (*Schema, error)

// SchemaObject provides a ready schema object.
func SchemaObject(s *Schema) SchemaProvider {
	return func() (*Schema, error) {
		return s, nil
	}
}

// JSONSchema provides a schema parsed from a JSON Schema document.
func JSONSchema(raw string) SchemaProvider {
	return func() (*Schema, error) {
		var s Schema
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("parse json schema: %w", err)
		}
		return &s, nil
	}
}

// RemoteSchema provides an object schema pointing at url.
func RemoteSchema(url string) SchemaProvider {
	return func() (*Schema, error) {
		return remoteSchema(url), nil
	}
}

func remoteSchema(url string) *Schema {
	return &Schema{Type: TypeString("object"), Ref: url}
}
