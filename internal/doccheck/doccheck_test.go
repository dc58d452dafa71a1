package doccheck

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/routedoc/mux"
	"github.com/vitalvas/routedoc/openapi"
)

const validYAML = `openapi: 3.1.0
info:
  title: Zoo
  version: "2.0"
paths:
  /animals:
    get:
      responses:
        200:
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Animal'
    post:
      responses:
        "201":
          description: Created
components:
  schemas:
    Animal:
      type: object
      properties:
        name:
          type: string
  securitySchemes:
    basic:
      type: http
      scheme: basic
`

const danglingJSON = `{
  "openapi": "3.1.0",
  "info": {"title": "Broken", "version": "1"},
  "paths": {
    "/x": {
      "get": {
        "responses": {
          "200": {
            "description": "OK",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Missing"}}}
          }
        }
      }
    }
  },
  "components": {"schemas": {"Present": {"type": "string"}}}
}`

func TestCheck(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		report, err := Check([]byte(validYAML))
		require.NoError(t, err)

		assert.True(t, report.OK())
		assert.Empty(t, report.ResolveErrors)
		assert.Equal(t, "3.1.0", report.Version)
		assert.Equal(t, "Zoo", report.Title)
		assert.Equal(t, "2.0", report.APIVersion)
		assert.Equal(t, 1, report.Paths)
		assert.Equal(t, 2, report.Operations)
		assert.Equal(t, 1, report.Schemas)
		assert.Equal(t, 1, report.SecuritySchemes)
	})

	t.Run("dangling reference", func(t *testing.T) {
		report, err := Check([]byte(danglingJSON))
		require.NoError(t, err)

		assert.False(t, report.OK())
		assert.Equal(t, []string{"#/components/schemas/Missing"}, report.Unresolved)
		require.NotEmpty(t, report.ResolveErrors)
		assert.Contains(t, strings.Join(report.ResolveErrors, "\n"), "Missing")
	})

	t.Run("swagger 2 is rejected", func(t *testing.T) {
		_, err := Check([]byte(`{"swagger": "2.0", "info": {"title": "Old", "version": "1"}, "paths": {}}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("not a document", func(t *testing.T) {
		_, err := Check([]byte("{{{"))
		assert.Error(t, err)
	})
}

func TestReferenceErrors(t *testing.T) {
	t.Run("nothing to report", func(t *testing.T) {
		assert.Empty(t, referenceErrors(nil, nil))
	})

	t.Run("untyped build error is kept", func(t *testing.T) {
		got := referenceErrors(nil, errors.New("model exploded"))
		assert.Equal(t, []string{"model exploded"}, got)
	})

	t.Run("joined errors are flattened", func(t *testing.T) {
		a, b, c := errors.New("a"), errors.New("b"), errors.New("c")
		got := flatten(errors.Join(a, errors.Join(b, c)))
		assert.Equal(t, []error{a, b, c}, got)
		assert.Nil(t, flatten(nil))
	})
}

func TestCheckFile(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "openapi.yaml")
		require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

		report, err := CheckFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Zoo", report.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := CheckFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorContains(t, err, "reading document")
	})
}

type Animal struct {
	Name string `json:"name"`
}

func TestCheckDocument(t *testing.T) {
	r := mux.NewRouter()
	spec := openapi.NewSpec(openapi.Config{Info: openapi.Info{Title: "Generated"}})

	animals := r.PathPrefix("/animals").Subrouter()
	spec.Route(animals.HandleFunc("", func(_ http.ResponseWriter, _ *http.Request) {}).Methods(http.MethodGet)).
		Response(http.StatusOK, []Animal{})
	spec.Route(animals.HandleFunc("/{id:int}", func(_ http.ResponseWriter, _ *http.Request) {}).Methods(http.MethodGet)).
		Response(http.StatusOK, Animal{})

	doc, err := spec.Build(r)
	require.NoError(t, err)

	report, err := CheckDocument(doc)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, "3.1.0", report.Version)
	assert.Equal(t, "Generated", report.Title)
	assert.Equal(t, 2, report.Paths)
	assert.Equal(t, 2, report.Operations)
	assert.Equal(t, 2, report.Schemas, "Animal and AnimalList")
}

func TestResolvePointer(t *testing.T) {
	root := map[string]any{
		"a/b": map[string]any{"list": []any{"x", "y"}},
		"m~n": true,
	}

	tests := []struct {
		pointer string
		found   bool
	}{
		{"", true},
		{"/a~1b/list/1", true},
		{"/m~0n", true},
		{"/a~1b/list/2", false},
		{"/a~1b/list/x", false},
		{"/missing", false},
		{"no-slash", false},
	}

	for _, tt := range tests {
		t.Run(tt.pointer, func(t *testing.T) {
			_, found := resolvePointer(root, tt.pointer)
			assert.Equal(t, tt.found, found)
		})
	}
}
