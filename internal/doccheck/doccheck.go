// Package doccheck verifies generated OpenAPI documents by loading them
// back with libopenapi and checking that every local reference resolves.
//
// Two sources feed the verdict. libopenapi's index and resolver report
// the references they failed to follow, and a JSON pointer pass over the
// raw document names the dangling "#/..." targets, since libopenapi only
// describes them in error text.
package doccheck

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/index"
	"github.com/vitalvas/routedoc/openapi"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedVersion = errors.New("unsupported OpenAPI version")

// Report summarizes a loaded document.
type Report struct {
	Version         string
	Title           string
	APIVersion      string
	Paths           int
	Operations      int
	Schemas         int
	SecuritySchemes int

	// Unresolved lists local references ("#/...") that point nowhere,
	// sorted and without duplicates.
	Unresolved []string

	// ResolveErrors holds the index and resolver errors libopenapi raised
	// while following references. Circular references are not errors.
	ResolveErrors []string
}

// OK reports whether every reference resolves.
func (r *Report) OK() bool {
	return len(r.Unresolved) == 0 && len(r.ResolveErrors) == 0
}

// CheckFile loads and checks the JSON or YAML document at path.
func CheckFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	return Check(data)
}

// CheckDocument encodes doc as JSON and checks the result.
func CheckDocument(doc *openapi.Document) (*Report, error) {
	data, err := doc.JSON()
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	return Check(data)
}

// Check loads a JSON or YAML OpenAPI 3.x document.
func Check(data []byte) (*Report, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	tree = normalize(tree)

	doc, err := libopenapi.NewDocumentWithConfiguration(data, &datamodel.DocumentConfiguration{
		IgnorePolymorphicCircularReferences: true,
		IgnoreArrayCircularReferences:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}

	report := &Report{
		Version:    version,
		Unresolved: unresolvedRefs(tree),
	}

	// Dangling references make the model builder fail; the report carries
	// them instead.
	model, err := doc.BuildV3Model()
	report.ResolveErrors = referenceErrors(model, err)
	if model != nil {
		summarize(report, &model.Model)
	}

	return report, nil
}

// referenceErrors gathers what libopenapi could not resolve: the typed
// errors wrapped in the model build error, then those kept on the index
// and its resolver. A build error carrying none of them is reported as is.
func referenceErrors(model *libopenapi.DocumentModel[v3.Document], buildErr error) []string {
	var out []string

	add := func(err error) {
		var resolving *index.ResolvingError
		if errors.As(err, &resolving) && resolving.CircularReference != nil {
			return
		}
		out = append(out, err.Error())
	}

	for _, err := range flatten(buildErr) {
		var (
			resolving *index.ResolvingError
			indexing  *index.IndexingError
		)
		if errors.As(err, &resolving) || errors.As(err, &indexing) {
			add(err)
		}
	}

	if model != nil && model.Index != nil {
		for _, err := range model.Index.GetReferenceIndexErrors() {
			add(err)
		}
		if resolver := model.Index.GetResolver(); resolver != nil {
			for _, err := range resolver.GetResolvingErrors() {
				add(err)
			}
		}
	}

	if len(out) == 0 && buildErr != nil {
		out = append(out, buildErr.Error())
	}

	slices.Sort(out)
	return slices.Compact(out)
}

// flatten expands errors.Join trees into their leaves.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func summarize(report *Report, doc *v3.Document) {
	if doc.Info != nil {
		report.Title = doc.Info.Title
		report.APIVersion = doc.Info.Version
	}

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for _, item := range doc.Paths.PathItems.FromOldest() {
			report.Paths++
			for _, op := range []*v3.Operation{
				item.Get, item.Put, item.Post, item.Delete,
				item.Options, item.Head, item.Patch, item.Trace,
			} {
				if op != nil {
					report.Operations++
				}
			}
		}
	}

	if doc.Components != nil {
		if doc.Components.Schemas != nil {
			for range doc.Components.Schemas.FromOldest() {
				report.Schemas++
			}
		}
		if doc.Components.SecuritySchemes != nil {
			for range doc.Components.SecuritySchemes.FromOldest() {
				report.SecuritySchemes++
			}
		}
	}
}

// normalize converts maps with non-string keys, such as unquoted YAML
// status codes, into string keyed maps.
func normalize(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = normalize(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = normalize(child)
		}
		return node
	}
	return v
}

// unresolvedRefs walks the decoded document and returns every local $ref
// whose JSON pointer does not resolve against the document root.
func unresolvedRefs(root any) []string {
	var missing []string

	var walk func(v any)
	walk = func(v any) {
		switch node := v.(type) {
		case map[string]any:
			if ref, ok := node["$ref"].(string); ok && strings.HasPrefix(ref, "#") {
				if _, found := resolvePointer(root, strings.TrimPrefix(ref, "#")); !found {
					missing = append(missing, ref)
				}
			}
			for _, child := range node {
				walk(child)
			}
		case []any:
			for _, child := range node {
				walk(child)
			}
		}
	}
	walk(root)

	slices.Sort(missing)
	return slices.Compact(missing)
}

// resolvePointer follows an RFC 6901 JSON pointer.
func resolvePointer(root any, pointer string) (any, bool) {
	if pointer == "" {
		return root, true
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false
	}

	cur := root
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")

		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
