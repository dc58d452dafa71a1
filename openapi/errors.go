package openapi

import (
	"errors"
	"fmt"
)

// ErrUnresolvedSchema is the sentinel wrapped by UnresolvedSchemaError.
var ErrUnresolvedSchema = errors.New("schema was not registered")

// UnresolvedSchemaError reports a use site asking for a schema that the
// schema context never registered. It indicates a bug in document
// assembly, not in user input.
type UnresolvedSchemaError struct {
	Source SchemaSource
}

func (e *UnresolvedSchemaError) Error() string {
	return fmt.Sprintf("openapi: %s: %v", e.Source, ErrUnresolvedSchema)
}

func (e *UnresolvedSchemaError) Unwrap() error {
	return ErrUnresolvedSchema
}
