// Package openapi generates OpenAPI v3.1.0 documents from a mux router.
//
// Documentation is attached to routes and routers. A router, or the group
// route holding it, documents every route registered below it, so shared
// tags, security, parameters and responses are declared once on a group
// and refined on the routes. Schemas for
// bodies, parameters and headers come from Go types via reflection, from
// hand-written schemas registered under an id, or from remote documents.
//
// See: https://spec.openapis.org/oas/v3.1.0
// See: https://json-schema.org/draft/2020-12/json-schema-core
//
// # Spec Builder
//
// Create a spec, document the routes, and build the document:
//
//	r := mux.NewRouter()
//	spec := openapi.NewSpec(openapi.Config{
//	    Info: openapi.Info{Title: "Pet Store", Version: "1.0.0"},
//	})
//
//	pets := r.PathPrefix("/pets").Subrouter()
//	spec.Router(pets).Tags("pets")
//
//	spec.Route(pets.HandleFunc("", listPets).Methods(http.MethodGet)).
//	    Summary("List pets").
//	    QueryParam("limit", 0, "Maximum number of results").
//	    Response(http.StatusOK, []Pet{})
//
//	spec.Route(pets.HandleFunc("/{id:uuid}", getPet).Methods(http.MethodGet)).
//	    Summary("Get a pet").
//	    Response(http.StatusOK, Pet{}).
//	    Response(http.StatusNotFound, ErrorResponse{})
//
//	doc, err := spec.Build(r)
//
// # Precedence
//
// The effective documentation of a route is computed from, nearest last:
//
//  1. Config.Defaults
//  2. the documentation of every enclosing router and group route, root
//     first
//  3. the documentation of the route itself
//
// A field overrides only when it is set. Responses are merged per status
// key, so a group can declare error responses that every route inherits.
//
// # Security
//
// Routes without security of their own require every scheme listed in
// Config.DefaultSecuritySchemes. Public drops the requirement:
//
//	spec.Route(r.HandleFunc("/health", health).Methods(http.MethodGet)).Public()
//
// Routes below an Authenticate group, and routes with security, receive
// Config.DefaultUnauthorizedResponse as their 401 response unless they
// document a 401 themselves.
//
// # Schemas
//
// Named struct types become components referenced through $ref. Primitive
// types and arrays of primitives are embedded where they are used. Every
// schema is generated once per document, however often it is used.
//
//	openapi.TypeOf[Pet]()              // generated from the Go type
//	openapi.SchemaRef("Money")         // Config.Schemas["Money"]
//	openapi.SchemaRefArray("Money")    // array of Config.Schemas["Money"]
//	openapi.RemoteReference("Geo", "https://example.com/geo.json")
//
// Config.Overrides replaces the schema of a Go type wherever it is used.
//
// # Struct Tags
//
// Use the "openapi" struct tag to enrich JSON Schema output:
//
//	type CreatePetInput struct {
//	    Name string `json:"name" openapi:"description=Pet name,minLength=1,maxLength=100"`
//	    Kind string `json:"kind" openapi:"enum=cat|dog|bird"`
//	    Age  int    `json:"age,omitempty" openapi:"minimum=0,maximum=50"`
//	}
//
// Supported tag keys: description, example, format, title, minimum, maximum,
// exclusiveMinimum, exclusiveMaximum, minLength, maxLength, pattern,
// multipleOf, minItems, maxItems, uniqueItems, minProperties, maxProperties,
// const, enum (pipe-separated), deprecated, readOnly, writeOnly.
//
// # Path Parameter Typing
//
// Mux route macros are mapped to OpenAPI types:
//
//	{id:uuid}   -> type: string, format: uuid
//	{page:int}  -> type: integer
//	{v:float}   -> type: number
//	{d:date}    -> type: string, format: date
//	{h:domain}  -> type: string, format: hostname
//
// # Generic Response Wrappers
//
// Each instantiation of a generic type produces a distinct component
// schema with a sanitized name:
//
//	type Page[T any] struct {
//	    Items []T `json:"items"`
//	    Next  string `json:"next,omitempty"`
//	}
//
//	spec.Route(n).Response(http.StatusOK, Page[Pet]{})
//	// -> schema "PagePet"
//
// # Serving the Document
//
// Handle registers the JSON and YAML documents and an interactive UI:
//
//	spec.Handle(r, "/docs", nil)
//	// /docs              -> Swagger UI
//	// /docs/schema.json  -> JSON document
//	// /docs/schema.yaml  -> YAML document
package openapi
