package openapi

import "strings"

// walkSchema calls fn for s and every subschema below it. References are
// not followed.
func walkSchema(s *Schema, fn func(*Schema)) {
	if s == nil {
		return
	}
	fn(s)

	for _, sub := range []*Schema{
		s.Items, s.Contains, s.UnevaluatedItems,
		s.AdditionalProperties, s.UnevaluatedProperties, s.PropertyNames,
		s.Not, s.If, s.Then, s.Else, s.ContentSchema,
	} {
		walkSchema(sub, fn)
	}

	for _, list := range [][]*Schema{s.PrefixItems, s.AllOf, s.OneOf, s.AnyOf} {
		for _, sub := range list {
			walkSchema(sub, fn)
		}
	}

	for _, m := range []map[string]*Schema{s.Properties, s.PatternProperties, s.DependentSchemas, s.Defs} {
		for _, sub := range m {
			walkSchema(sub, fn)
		}
	}
}

// isPrimitive reports whether s declares an elementary type: a type other
// than object or array.
func isPrimitive(s *Schema) bool {
	if s == nil || s.Type.IsEmpty() {
		return false
	}
	for _, t := range s.Type.Values() {
		if t == "object" || t == "array" {
			return false
		}
	}
	return true
}

// isPrimitiveArray reports whether s is an array of primitives, at any
// nesting depth.
func isPrimitiveArray(s *Schema) bool {
	if s == nil || s.Items == nil || !hasType(s, "array") {
		return false
	}
	return isPrimitive(s.Items) || isPrimitiveArray(s.Items)
}

// isInlineable reports whether s is embedded at its use sites rather than
// referenced.
func isInlineable(s *Schema) bool {
	return isPrimitive(s) || isPrimitiveArray(s)
}

func hasType(s *Schema, name string) bool {
	for _, t := range s.Type.Values() {
		if t == name {
			return true
		}
	}
	return false
}

func arrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeString("array"), Items: items}
}

func refTo(name string) *Schema {
	return &Schema{Ref: componentSchemaPrefix + name}
}

// cloneSchema copies s and every subschema below it. Values other than
// subschemas are shared with s.
func cloneSchema(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	cp := *s

	for _, sub := range []**Schema{
		&cp.Items, &cp.Contains, &cp.UnevaluatedItems,
		&cp.AdditionalProperties, &cp.UnevaluatedProperties, &cp.PropertyNames,
		&cp.Not, &cp.If, &cp.Then, &cp.Else, &cp.ContentSchema,
	} {
		*sub = cloneSchema(*sub)
	}

	for _, list := range []*[]*Schema{&cp.PrefixItems, &cp.AllOf, &cp.OneOf, &cp.AnyOf} {
		if *list == nil {
			continue
		}
		out := make([]*Schema, len(*list))
		for i, sub := range *list {
			out[i] = cloneSchema(sub)
		}
		*list = out
	}

	for _, m := range []*map[string]*Schema{&cp.Properties, &cp.PatternProperties, &cp.DependentSchemas, &cp.Defs} {
		if *m == nil {
			continue
		}
		out := make(map[string]*Schema, len(*m))
		for k, sub := range *m {
			out[k] = cloneSchema(sub)
		}
		*m = out
	}

	return &cp
}

// renameRefs rewrites component references in s according to renames.
func renameRefs(s *Schema, renames map[string]string) {
	walkSchema(s, func(sub *Schema) {
		name, ok := strings.CutPrefix(sub.Ref, componentSchemaPrefix)
		if !ok {
			return
		}
		if to, ok := renames[name]; ok && to != name {
			sub.Ref = componentSchemaPrefix + to
		}
	})
}
