package openapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/routedoc/mux"
	"gopkg.in/yaml.v3"
)

type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func dummyHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func setupTestRouter() (*mux.Router, *Spec) {
	r := mux.NewRouter()
	spec := NewSpec(Config{Info: Info{Title: "Test API", Version: "1.0.0"}})

	items := r.PathPrefix("/items").Subrouter()
	spec.Router(items).Tags("items")

	spec.Route(items.HandleFunc("", dummyHandler).Methods(http.MethodGet)).
		Summary("List items").
		Response(http.StatusOK, []Item{})

	spec.Route(items.HandleFunc("/{id:uuid}", dummyHandler).Methods(http.MethodGet)).
		Summary("Get item").
		Response(http.StatusOK, Item{})

	return r, spec
}

func serveRequest(r *mux.Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandle(t *testing.T) {
	t.Run("JSON document", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", nil)

		w := serveRequest(r, http.MethodGet, "/swagger/schema.json")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var doc Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "3.1.0", doc.OpenAPI)
		assert.Equal(t, "Test API", doc.Info.Title)
		assert.Contains(t, doc.Paths, "/items")
		assert.Contains(t, doc.Paths, "/items/{id}")
		assert.Equal(t, []string{"items"}, doc.Paths["/items"].Get.Tags)
	})

	t.Run("YAML document", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", nil)

		w := serveRequest(r, http.MethodGet, "/swagger/schema.yaml")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "3.1.0", doc["openapi"])
		assert.Contains(t, doc["paths"], "/items/{id}")
	})

	t.Run("docs endpoints are not documented", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", nil)

		doc, err := spec.Build(r)
		require.NoError(t, err)
		assert.Len(t, doc.Paths, 2)
		assert.NotContains(t, doc.Paths, "/swagger")
		assert.NotContains(t, doc.Paths, "/swagger/schema.json")
	})

	t.Run("docs UI with and without trailing slash", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger/", nil)

		for _, path := range []string{"/swagger", "/swagger/"} {
			w := serveRequest(r, http.MethodGet, path)
			assert.Equal(t, http.StatusOK, w.Code, path)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		}
	})

	t.Run("JSON disabled", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{JSONFilename: "-"})

		w := serveRequest(r, http.MethodGet, "/swagger/schema.json")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serveRequest(r, http.MethodGet, "/swagger/")
		assert.Contains(t, w.Body.String(), "/swagger/schema.yaml")
	})

	t.Run("docs disabled", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{DisableDocs: true})

		w := serveRequest(r, http.MethodGet, "/swagger/")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serveRequest(r, http.MethodGet, "/swagger/schema.json")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("default title from info", func(t *testing.T) {
		r := mux.NewRouter()
		spec := NewSpec(Config{})
		spec.Handle(r, "/docs", nil)

		w := serveRequest(r, http.MethodGet, "/docs")
		assert.Contains(t, w.Body.String(), "<title>API</title>")
	})

	t.Run("swagger UI config", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/docs", &HandleConfig{SwaggerUIConfig: map[string]any{"docExpansion": "none"}})

		w := serveRequest(r, http.MethodGet, "/docs")
		assert.Contains(t, w.Body.String(), `docExpansion: "none"`)
	})
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/schema.json", resolvePath("", "schema.json"))
	assert.Equal(t, "/docs/schema.json", resolvePath("/docs", "schema.json"))
	assert.Equal(t, "/abs.json", resolvePath("/docs", "/abs.json"))
}

func TestHandleDocsUI(t *testing.T) {
	t.Run("swagger UI default", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/docs", &HandleConfig{})

		w := serveRequest(r, http.MethodGet, "/docs/")
		body := w.Body.String()
		assert.Contains(t, body, "swagger-ui")
		assert.Contains(t, body, "swagger-ui-bundle.js")
	})

	t.Run("rapidoc", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/docs", &HandleConfig{UI: DocsRapiDoc})

		w := serveRequest(r, http.MethodGet, "/docs/")
		body := w.Body.String()
		assert.Contains(t, body, "rapi-doc")
		assert.Contains(t, body, "rapidoc")
	})

	t.Run("redoc", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/docs", &HandleConfig{UI: DocsRedoc})

		w := serveRequest(r, http.MethodGet, "/docs/")
		body := w.Body.String()
		assert.Contains(t, body, "redoc")
		assert.Contains(t, body, "cdn.redoc.ly")
	})

	t.Run("custom title", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/docs", &HandleConfig{Title: "Custom Docs"})

		w := serveRequest(r, http.MethodGet, "/docs/")
		assert.Contains(t, w.Body.String(), "Custom Docs")
	})

	t.Run("spec URL points to schema.json under base path", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/api/v1/docs", &HandleConfig{})

		w := serveRequest(r, http.MethodGet, "/api/v1/docs/")
		assert.Contains(t, w.Body.String(), "/api/v1/docs/schema.json")
	})
}

func TestHandleCaching(t *testing.T) {
	t.Run("JSON is cached", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{})

		w1 := serveRequest(r, http.MethodGet, "/swagger/schema.json")
		w2 := serveRequest(r, http.MethodGet, "/swagger/schema.json")
		assert.Equal(t, w1.Body.String(), w2.Body.String())
	})

	t.Run("YAML is cached", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{})

		w1 := serveRequest(r, http.MethodGet, "/swagger/schema.yaml")
		w2 := serveRequest(r, http.MethodGet, "/swagger/schema.yaml")
		assert.Equal(t, w1.Body.String(), w2.Body.String())
	})

	t.Run("docs page is cached", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{})

		w1 := serveRequest(r, http.MethodGet, "/swagger/")
		w2 := serveRequest(r, http.MethodGet, "/swagger/")
		assert.Equal(t, w1.Body.String(), w2.Body.String())
	})
}

func TestHandleHTMLWellFormed(t *testing.T) {
	t.Run("HTML structure", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{})

		w := serveRequest(r, http.MethodGet, "/swagger/")
		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
		assert.Contains(t, body, "</html>")
	})
}

func TestHandleBuildError(t *testing.T) {
	newRouter := func(buf *bytes.Buffer) (*mux.Router, *Spec) {
		r := mux.NewRouter()
		spec := NewSpec(Config{
			Info:     Info{Title: "Test", Version: "1.0.0"},
			Examples: map[string]*Example{"bad": {Value: func() {}}},
			Logger:   bufferLogger(buf),
		})
		spec.Route(r.HandleFunc("/items", dummyHandler).Methods(http.MethodGet)).Response(http.StatusOK, nil)
		spec.Handle(r, "/swagger", nil)
		return r, spec
	}

	t.Run("JSON returns 500", func(t *testing.T) {
		var buf bytes.Buffer
		r, _ := newRouter(&buf)

		w := serveRequest(r, http.MethodGet, "/swagger/schema.json")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "failed to build OpenAPI document")
		assert.Contains(t, buf.String(), "/swagger/schema.json")
	})

	t.Run("YAML returns 500", func(t *testing.T) {
		var buf bytes.Buffer
		r, _ := newRouter(&buf)

		w := serveRequest(r, http.MethodGet, "/swagger/schema.yaml")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleBothSpecsDisabled(t *testing.T) {
	t.Run("docs UI not registered when both JSON and YAML disabled", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{
			JSONFilename: "-",
			YAMLFilename: "-",
		})

		w := serveRequest(r, http.MethodGet, "/swagger/")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serveRequest(r, http.MethodGet, "/swagger")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleRootBasePath(t *testing.T) {
	t.Run("base path / serves docs and schemas", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/", &HandleConfig{})

		// Docs UI at /.
		w := serveRequest(r, http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "swagger-ui")
		assert.Contains(t, w.Body.String(), "/schema.json")

		// JSON spec at /schema.json.
		w = serveRequest(r, http.MethodGet, "/schema.json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		// YAML spec at /schema.yaml.
		w = serveRequest(r, http.MethodGet, "/schema.yaml")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))
	})
}

func TestHandleAbsoluteFilename(t *testing.T) {
	t.Run("absolute JSON path", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{
			JSONFilename: "/api/v1/swagger.json",
			YAMLFilename: "-",
		})

		// JSON spec at absolute path.
		w := serveRequest(r, http.MethodGet, "/api/v1/swagger.json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var doc Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "3.1.0", doc.OpenAPI)

		// Docs UI points to the absolute path.
		w = serveRequest(r, http.MethodGet, "/swagger/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/api/v1/swagger.json")

		// Not served under basePath.
		w = serveRequest(r, http.MethodGet, "/swagger/swagger.json")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("absolute YAML path", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{
			JSONFilename: "-",
			YAMLFilename: "/api/v1/openapi.yaml",
		})

		w := serveRequest(r, http.MethodGet, "/api/v1/openapi.yaml")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))

		// Docs UI falls back to YAML absolute path.
		w = serveRequest(r, http.MethodGet, "/swagger/")
		assert.Contains(t, w.Body.String(), "/api/v1/openapi.yaml")
	})

	t.Run("relative filename under basePath", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{
			JSONFilename: "swagger.json",
		})

		w := serveRequest(r, http.MethodGet, "/swagger/swagger.json")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("relative nested path under basePath", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{
			JSONFilename: "data/openapi.json",
			YAMLFilename: "-",
		})

		w := serveRequest(r, http.MethodGet, "/swagger/data/openapi.json")
		assert.Equal(t, http.StatusOK, w.Code)

		w = serveRequest(r, http.MethodGet, "/swagger/")
		assert.Contains(t, w.Body.String(), "/swagger/data/openapi.json")
	})

	t.Run("mixed absolute JSON and relative YAML", func(t *testing.T) {
		r, spec := setupTestRouter()
		spec.Handle(r, "/swagger", &HandleConfig{
			JSONFilename: "/api/v1/swagger.json",
			YAMLFilename: "schema.yaml",
		})

		w := serveRequest(r, http.MethodGet, "/api/v1/swagger.json")
		assert.Equal(t, http.StatusOK, w.Code)

		w = serveRequest(r, http.MethodGet, "/swagger/schema.yaml")
		assert.Equal(t, http.StatusOK, w.Code)

		// Docs UI prefers JSON.
		w = serveRequest(r, http.MethodGet, "/swagger/")
		assert.Contains(t, w.Body.String(), "/api/v1/swagger.json")
	})
}

func TestHandleXSSSafe(t *testing.T) {
	t.Run("title is HTML escaped", func(t *testing.T) {
		r := mux.NewRouter()
		spec := NewSpec(Config{Info: Info{Title: `<script>alert("xss")</script>`, Version: "1.0.0"}})
		spec.Handle(r, "/swagger", nil)

		w := serveRequest(r, http.MethodGet, "/swagger/")
		body := w.Body.String()
		assert.NotContains(t, body, `<script>alert("xss")</script>`)
		assert.Contains(t, body, "&lt;script&gt;")
	})
}
