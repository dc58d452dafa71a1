package openapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Upload struct {
	Title string `json:"title"`
}

func petsPath(extra ...Segment) PathTemplate {
	return append(PathTemplate{{Kind: SegmentLiteral, Value: "pets"}}, extra...)
}

func TestDocumentBuilderInfo(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		doc, err := NewDocumentBuilder(Config{}).Build(nil)
		require.NoError(t, err)

		assert.Equal(t, "3.1.0", doc.OpenAPI)
		assert.Equal(t, "API", doc.Info.Title)
		assert.Equal(t, "latest", doc.Info.Version)
		assert.Empty(t, doc.Paths)
		assert.Nil(t, doc.Components)
		assert.Nil(t, doc.Tags)
	})

	t.Run("configured", func(t *testing.T) {
		cfg := Config{
			Info:         Info{Title: "Pets", Version: "2.0.0", Description: "Pet API"},
			Servers:      []Server{{URL: "https://api.example.com"}},
			ExternalDocs: &ExternalDocs{URL: "https://docs.example.com"},
		}
		doc, err := NewDocumentBuilder(cfg).Build(nil)
		require.NoError(t, err)

		assert.Equal(t, cfg.Info, doc.Info)
		assert.Equal(t, cfg.Servers, doc.Servers)
		assert.Equal(t, cfg.ExternalDocs, doc.ExternalDocs)
	})
}

func TestDocumentBuilderPaths(t *testing.T) {
	routes := []RouteMeta{
		{Method: http.MethodGet, Path: petsPath(), Documentation: RouteDocumentation{
			OperationID: "listPets",
			Summary:     "List pets",
			Tags:        []string{"pets"},
			Responses:   map[string]ResponseDoc{"200": {Body: &BodyDoc{Schema: TypeOf[[]Pet]()}}},
		}},
		{Method: http.MethodPost, Path: petsPath(), Documentation: RouteDocumentation{
			Request:   &BodyDoc{Schema: TypeOf[Pet]()},
			Responses: map[string]ResponseDoc{"201": {Body: &BodyDoc{Schema: TypeOf[Pet]()}}},
		}},
		{Method: http.MethodDelete, Path: petsPath(Segment{Kind: SegmentParameter, Value: "id", Macro: "uuid"}), Documentation: RouteDocumentation{
			Deprecated: ptr(true),
			Responses:  map[string]ResponseDoc{"204": {}},
		}},
		{Method: http.MethodGet, Path: nil},
	}

	doc, err := NewDocumentBuilder(Config{}).Build(routes)
	require.NoError(t, err)

	require.Contains(t, doc.Paths, "/pets")
	require.Contains(t, doc.Paths, "/pets/{id}")
	require.Contains(t, doc.Paths, "/")

	t.Run("operations by method", func(t *testing.T) {
		item := doc.Paths["/pets"]
		require.NotNil(t, item.Get)
		require.NotNil(t, item.Post)
		assert.Nil(t, item.Put)
		assert.Equal(t, "listPets", item.Get.OperationID)
		assert.Equal(t, []string{"pets"}, item.Get.Tags)
	})

	t.Run("response content", func(t *testing.T) {
		resp := doc.Paths["/pets"].Get.Responses["200"]
		require.NotNil(t, resp)
		assert.Equal(t, "OK", resp.Description)
		require.Contains(t, resp.Content, "application/json")
		assert.Equal(t, "#/components/schemas/PetList", resp.Content["application/json"].Schema.Ref)
	})

	t.Run("request body required by default", func(t *testing.T) {
		body := doc.Paths["/pets"].Post.RequestBody
		require.NotNil(t, body)
		assert.True(t, body.Required)
		assert.Equal(t, "#/components/schemas/Pet", body.Content["application/json"].Schema.Ref)
	})

	t.Run("path parameters derived from macros", func(t *testing.T) {
		op := doc.Paths["/pets/{id}"].Delete
		require.NotNil(t, op)
		assert.True(t, op.Deprecated)

		require.Len(t, op.Parameters, 1)
		p := op.Parameters[0]
		assert.Equal(t, "id", p.Name)
		assert.Equal(t, "path", p.In)
		assert.True(t, p.Required)
		assert.Equal(t, &Schema{Type: TypeString("string"), Format: "uuid"}, p.Schema)

		assert.Equal(t, "No Content", op.Responses["204"].Description)
		assert.Nil(t, op.Responses["204"].Content)
	})

	t.Run("components hold every referenced schema", func(t *testing.T) {
		require.NotNil(t, doc.Components)
		assert.Contains(t, doc.Components.Schemas, "Pet")
		assert.Contains(t, doc.Components.Schemas, "PetList")
		assert.Contains(t, doc.Components.Schemas, "Owner")
	})
}

func TestDocumentBuilderParameters(t *testing.T) {
	route := RouteMeta{
		Method: http.MethodGet,
		Path:   petsPath(Segment{Kind: SegmentParameter, Value: "id", Macro: "int"}),
		Documentation: RouteDocumentation{Parameters: []ParameterDoc{
			{Name: "id", In: InPath, Description: "Pet number", Schema: TypeOf[int64]()},
			{Name: "limit", In: InQuery, Schema: TypeOf[int]()},
			{Name: "X-Trace", In: InHeader},
		}},
	}

	doc, err := NewDocumentBuilder(Config{}).Build([]RouteMeta{route})
	require.NoError(t, err)

	params := doc.Paths["/pets/{id}"].Get.Parameters
	require.Len(t, params, 3)

	assert.Equal(t, "id", params[0].Name)
	assert.Equal(t, "Pet number", params[0].Description)
	assert.True(t, params[0].Required)
	assert.Equal(t, "int64", params[0].Schema.Format)

	assert.Equal(t, "limit", params[1].Name)
	assert.False(t, params[1].Required)
	assert.Equal(t, TypeString("integer"), params[1].Schema.Type)

	assert.Equal(t, "header", params[2].In)
	assert.Equal(t, TypeString("string"), params[2].Schema.Type)
}

func TestDocumentBuilderBodies(t *testing.T) {
	t.Run("content types and examples", func(t *testing.T) {
		route := RouteMeta{Method: http.MethodPut, Path: petsPath(), Documentation: RouteDocumentation{
			Request: &BodyDoc{
				Description:  "The pet",
				Required:     ptr(false),
				ContentTypes: []string{"application/json", "application/xml"},
				Schema:       TypeOf[Pet](),
				Examples: map[string]ExampleDoc{
					"shared": {Shared: "rex"},
					"inline": {Summary: "Inline", Value: map[string]any{"id": "1"}},
				},
			},
		}}

		cfg := Config{Examples: map[string]*Example{"rex": {Value: map[string]any{"id": "rex"}}}}
		doc, err := NewDocumentBuilder(cfg).Build([]RouteMeta{route})
		require.NoError(t, err)

		body := doc.Paths["/pets"].Put.RequestBody
		assert.Equal(t, "The pet", body.Description)
		assert.False(t, body.Required)
		require.Len(t, body.Content, 2)

		mt := body.Content["application/xml"]
		require.NotNil(t, mt)
		assert.Equal(t, "#/components/schemas/Pet", mt.Schema.Ref)
		assert.Equal(t, "#/components/examples/rex", mt.Examples["shared"].Ref)
		assert.Equal(t, "Inline", mt.Examples["inline"].Summary)

		assert.Contains(t, doc.Components.Examples, "rex")
	})

	t.Run("multipart", func(t *testing.T) {
		route := RouteMeta{Method: http.MethodPost, Path: petsPath(), Documentation: RouteDocumentation{
			Request: &BodyDoc{Parts: []PartDoc{
				{Name: "meta", Schema: TypeOf[Upload](), Required: true},
				{
					Name:         "file",
					Schema:       TypeOf[[]byte](),
					ContentTypes: []string{"image/png", "image/jpeg"},
					Headers:      map[string]HeaderDoc{"X-Checksum": {Schema: TypeOf[string](), Required: true}},
				},
			}},
		}}

		doc, err := NewDocumentBuilder(Config{}).Build([]RouteMeta{route})
		require.NoError(t, err)

		mt := doc.Paths["/pets"].Post.RequestBody.Content["multipart/form-data"]
		require.NotNil(t, mt)

		assert.Equal(t, TypeString("object"), mt.Schema.Type)
		assert.Equal(t, "#/components/schemas/Upload", mt.Schema.Properties["meta"].Ref)
		assert.Equal(t, "byte", mt.Schema.Properties["file"].Format)
		assert.Equal(t, []string{"meta"}, mt.Schema.Required)

		require.Contains(t, mt.Encoding, "file")
		assert.NotContains(t, mt.Encoding, "meta")
		assert.Equal(t, "image/png, image/jpeg", mt.Encoding["file"].ContentType)
		assert.True(t, mt.Encoding["file"].Headers["X-Checksum"].Required)

		assert.Contains(t, doc.Components.Schemas, "Upload")
	})

	t.Run("response headers and description", func(t *testing.T) {
		route := RouteMeta{Method: http.MethodGet, Path: petsPath(), Documentation: RouteDocumentation{
			Responses: map[string]ResponseDoc{
				"200":     {Description: "Pets", Headers: map[string]HeaderDoc{"X-Total": {Schema: TypeOf[int]()}}},
				"default": {Body: &BodyDoc{Schema: RemoteReference("Problem", "https://example.com/problem.json")}},
				"299":     {},
			},
		}}

		doc, err := NewDocumentBuilder(Config{}).Build([]RouteMeta{route})
		require.NoError(t, err)

		responses := doc.Paths["/pets"].Get.Responses
		assert.Equal(t, "Pets", responses["200"].Description)
		assert.Equal(t, TypeString("integer"), responses["200"].Headers["X-Total"].Schema.Type)
		assert.Equal(t, "Default response", responses["default"].Description)
		assert.Equal(t, "#/components/schemas/Problem", responses["default"].Content["application/json"].Schema.Ref)
		assert.Equal(t, "299", responses["299"].Description)

		problem := doc.Components.Schemas["Problem"]
		require.NotNil(t, problem)
		assert.Equal(t, "https://example.com/problem.json", problem.Ref)
	})
}

func TestDocumentBuilderSecurity(t *testing.T) {
	cfg := Config{
		SecuritySchemes: map[string]*SecurityScheme{
			"bearer": {Type: "http", Scheme: "bearer"},
		},
		DefaultUnauthorizedResponse: &ResponseDoc{Body: &BodyDoc{Schema: TypeOf[Owner]()}},
	}

	routes := NewRouteCollector(cfg).Collect(
		transparent(authenticate(literal("me", method("GET", nil)))),
	)

	doc, err := NewDocumentBuilder(cfg).Build(routes)
	require.NoError(t, err)

	assert.Contains(t, doc.Components.SecuritySchemes, "bearer")

	resp := doc.Paths["/me"].Get.Responses["401"]
	require.NotNil(t, resp)
	assert.Equal(t, "Unauthorized", resp.Description)
	assert.Equal(t, "#/components/schemas/Owner", resp.Content["application/json"].Schema.Ref)
	assert.Contains(t, doc.Components.Schemas, "Owner")
}

func TestBuildTags(t *testing.T) {
	configured := []Tag{{Name: "pets", Description: "Pet operations"}, {Name: "unused"}}
	routes := []RouteMeta{
		{Documentation: RouteDocumentation{Tags: []string{"pets", "store"}}},
		{Documentation: RouteDocumentation{Tags: []string{"admin"}}},
	}

	tags := buildTags(configured, routes)
	require.Len(t, tags, 4)
	assert.Equal(t, "admin", tags[0].Name)
	assert.Equal(t, Tag{Name: "pets", Description: "Pet operations"}, tags[1])
	assert.Equal(t, "store", tags[2].Name)
	assert.Equal(t, "unused", tags[3].Name)
}

func TestMergeParameters(t *testing.T) {
	auto := []*Parameter{{Name: "id", In: "path"}, {Name: "slug", In: "path"}}
	declared := []*Parameter{{Name: "id", In: "path", Description: "custom"}, {Name: "id", In: "query"}}

	merged := mergeParameters(auto, declared)
	require.Len(t, merged, 3)
	assert.Equal(t, "slug", merged[0].Name)
	assert.Equal(t, "custom", merged[1].Description)
	assert.Equal(t, "query", merged[2].In)

	assert.Nil(t, mergeParameters(nil, nil))
}

func TestResponseDescription(t *testing.T) {
	assert.Equal(t, "OK", responseDescription("200"))
	assert.Equal(t, "Not Found", responseDescription("404"))
	assert.Equal(t, "Default response", responseDescription("default"))
	assert.Equal(t, "2XX", responseDescription("2XX"))
}

func TestAssignOperation(t *testing.T) {
	methods := []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace,
	}

	item := &PathItem{}
	for _, m := range methods {
		assignOperation(item, m, &Operation{OperationID: m})
	}

	assert.Equal(t, "GET", item.Get.OperationID)
	assert.Equal(t, "POST", item.Post.OperationID)
	assert.Equal(t, "PUT", item.Put.OperationID)
	assert.Equal(t, "DELETE", item.Delete.OperationID)
	assert.Equal(t, "PATCH", item.Patch.OperationID)
	assert.Equal(t, "HEAD", item.Head.OperationID)
	assert.Equal(t, "OPTIONS", item.Options.OperationID)
	assert.Equal(t, "TRACE", item.Trace.OperationID)

	assignOperation(item, "CONNECT", &Operation{})
}
