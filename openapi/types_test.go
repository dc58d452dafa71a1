package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSchemaTypeEncoding(t *testing.T) {
	tests := []struct {
		name string
		typ  SchemaType
		json string
		yaml string
	}{
		{"single", TypeString("integer"), `"integer"`, "integer\n"},
		{"union", TypeArray("string", "null"), `["string","null"]`, "- string\n- \"null\"\n"},
		{"unset", SchemaType{}, "null", "null\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.typ)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			data, err = yaml.Marshal(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.yaml, string(data))

			if tt.typ.IsEmpty() {
				return
			}

			var fromJSON, fromYAML SchemaType
			require.NoError(t, json.Unmarshal([]byte(tt.json), &fromJSON))
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &fromYAML))
			assert.Equal(t, tt.typ.Values(), fromJSON.Values())
			assert.Equal(t, tt.typ.Values(), fromYAML.Values())
		})
	}

	t.Run("rejects a number", func(t *testing.T) {
		var st SchemaType
		assert.Error(t, json.Unmarshal([]byte(`3`), &st))
	})

	t.Run("rejects a yaml mapping", func(t *testing.T) {
		var st SchemaType
		assert.Error(t, yaml.Unmarshal([]byte("a: b\n"), &st))
	})

	t.Run("unset type is left out of a schema", func(t *testing.T) {
		data, err := json.Marshal(&Schema{Description: "anything"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"description":"anything"}`, string(data))
	})
}

func TestSchemaKeywordsSurviveDecoding(t *testing.T) {
	const raw = `{
		"$comment": "postal address",
		"type": "object",
		"properties": {
			"country": {"enum": ["US", "NL"]},
			"code": {"type": "string"}
		},
		"patternProperties": {"^x-": {"type": "string"}},
		"dependentRequired": {"code": ["country"]},
		"if": {"properties": {"country": {"const": "US"}}},
		"then": {"properties": {"code": {"pattern": "^[0-9]{5}$"}}},
		"else": {"properties": {"code": {"pattern": "^[0-9]{4}[A-Z]{2}$"}}},
		"$defs": {"zip": {"type": "string", "minLength": 5, "maxLength": 5}}
	}`

	var s Schema
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, "postal address", s.Comment)
	require.NotNil(t, s.If)
	require.NotNil(t, s.Then)
	require.NotNil(t, s.Else)
	assert.Equal(t, "US", s.If.Properties["country"].Const)
	assert.Equal(t, "^[0-9]{5}$", s.Then.Properties["code"].Pattern)
	assert.Contains(t, s.PatternProperties, "^x-")
	assert.Equal(t, []string{"country"}, s.DependentRequired["code"])
	require.Contains(t, s.Defs, "zip")
	require.NotNil(t, s.Defs["zip"].MinLength)
	assert.Equal(t, 5, *s.Defs["zip"].MinLength)

	t.Run("encodes back without losing keywords", func(t *testing.T) {
		data, err := json.Marshal(&s)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		for _, key := range []string{"$comment", "if", "then", "else", "patternProperties", "dependentRequired", "$defs"} {
			assert.Contains(t, got, key)
		}
	})
}

func TestDocumentEncoding(t *testing.T) {
	t.Run("required fields are always written", func(t *testing.T) {
		doc := Document{
			OpenAPI: "3.1.0",
			Paths: map[string]*PathItem{
				"/ping": {Get: &Operation{Responses: map[string]*Response{"204": {}}}},
			},
		}

		data, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"openapi": "3.1.0",
			"info": {"title": "", "version": ""},
			"paths": {"/ping": {"get": {"responses": {"204": {"description": ""}}}}}
		}`, string(data))
	})

	t.Run("operation with body and security", func(t *testing.T) {
		op := &Operation{
			OperationID: "createPet",
			Tags:        []string{"pets"},
			Security:    []SecurityRequirement{{"bearer": {}}, {}},
			RequestBody: &RequestBody{
				Required: true,
				Content: map[string]*MediaType{
					"application/json": {Schema: &Schema{Ref: "#/components/schemas/Pet"}},
				},
			},
			Responses: map[string]*Response{
				"201": {
					Description: "Created",
					Headers: map[string]*Header{
						"Location": {Required: true, Schema: &Schema{Type: TypeString("string")}},
					},
				},
			},
		}

		data, err := json.Marshal(op)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"operationId": "createPet",
			"tags": ["pets"],
			"security": [{"bearer": []}, {}],
			"requestBody": {
				"required": true,
				"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}
			},
			"responses": {
				"201": {
					"description": "Created",
					"headers": {"Location": {"required": true, "schema": {"type": "string"}}}
				}
			}
		}`, string(data))
	})

	t.Run("yaml uses the json field names", func(t *testing.T) {
		doc := &Document{
			OpenAPI:    "3.1.0",
			Info:       Info{Title: "Zoo", Version: "1"},
			Components: &Components{Schemas: map[string]*Schema{"Pet": {Type: TypeString("object")}}},
		}

		out, err := doc.YAML()
		require.NoError(t, err)

		var back map[string]any
		require.NoError(t, yaml.Unmarshal(out, &back))
		assert.Equal(t, "3.1.0", back["openapi"])
		assert.Contains(t, back, "components")
	})
}

func TestExampleEncoding(t *testing.T) {
	t.Run("inline value", func(t *testing.T) {
		data, err := json.Marshal(Example{Summary: "A cat", Value: map[string]any{"name": "Tom"}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"summary":"A cat","value":{"name":"Tom"}}`, string(data))
	})

	t.Run("reference", func(t *testing.T) {
		data, err := json.Marshal(Example{Ref: "#/components/examples/cat"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"$ref":"#/components/examples/cat"}`, string(data))
	})

	t.Run("shared example becomes a bare reference", func(t *testing.T) {
		got := buildExamples(map[string]ExampleDoc{
			"tom": {Summary: "A cat", Value: "Tom"},
			"rex": {Shared: "rex", Summary: "ignored", Value: "ignored"},
		})

		require.Len(t, got, 2)
		assert.Equal(t, &Example{Ref: "#/components/examples/rex"}, got["rex"])
		assert.Equal(t, &Example{Summary: "A cat", Value: "Tom"}, got["tom"])

		data, err := json.Marshal(got["rex"])
		require.NoError(t, err)
		assert.JSONEq(t, `{"$ref":"#/components/examples/rex"}`, string(data))
	})

	t.Run("no examples", func(t *testing.T) {
		assert.Nil(t, buildExamples(nil))
	})
}
