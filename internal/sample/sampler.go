// Package sample derives one representative value from a JSON-Schema-like
// node. Sampling is pure, stateless, and never fails: malformed or unexpected
// schema shapes degrade to a literal placeholder instead of an error.
package sample

import (
	"github.com/google/uuid"

	"github.com/cd0gu/openapi-to-repeater/internal/document"
)

const (
	// Placeholder is the literal fallback used whenever a schema gives no
	// better hint (unknown types, unresolvable refs, empty enums).
	Placeholder = "example"

	dateTimeSample = "2025-10-02T12:00:00Z"
	dateSample     = "2025-10-02"
	emailSample    = "user@example.com"
)

// maxRefDepth caps $ref-following recursion so cyclic references terminate.
const maxRefDepth = 100

// FromSchema produces a single sample value for schema, resolving local $ref
// pointers against root. It returns nil for empty or non-object schemas.
func FromSchema(schema, root *document.Value) *document.Value {
	return sampleNode(schema, root, 0)
}

func sampleNode(schema, root *document.Value, depth int) *document.Value {
	if depth > maxRefDepth {
		return document.StringValue(Placeholder)
	}
	if schema.Kind() != document.Object || schema.Len() == 0 {
		return nil
	}

	if schema.Has("$ref") {
		ref := schema.Get("$ref")
		if ref.Kind() == document.String && document.IsLocalRef(ref.Str()) {
			return sampleNode(document.Resolve(root, ref.Str()), root, depth+1)
		}
		return document.StringValue(Placeholder)
	}

	if schema.Has("example") {
		return schema.Get("example")
	}
	if schema.Has("default") {
		return schema.Get("default")
	}

	typ := schema.Get("type")
	var typName string
	switch {
	case truthy(typ):
		if typ.Kind() != document.String {
			// e.g. "type": ["string","null"] — not a shape we sample.
			return document.StringValue(Placeholder)
		}
		typName = typ.Str()
	case schema.Has("properties"):
		typName = "object"
	case schema.Has("enum"):
		if enum := schema.Get("enum"); enum.Kind() == document.Array && enum.Len() > 0 {
			return enum.Items()[0]
		}
		return document.StringValue(Placeholder)
	default:
		typName = "string"
	}

	switch typName {
	case "string":
		return sampleString(schema)
	case "integer", "number":
		return sampleNumber(schema)
	case "boolean":
		return document.BoolValue(false)
	case "array":
		items := schema.Get("items")
		if items == nil {
			items = defaultItemSchema()
		}
		return document.ArrayValue(sampleNode(items, root, depth+1))
	case "object":
		obj := document.ObjectValue()
		for _, m := range schema.Get("properties").Members() {
			obj.Set(m.Key, sampleNode(m.Value, root, depth+1))
		}
		return obj
	default:
		return document.StringValue(Placeholder)
	}
}

func sampleString(schema *document.Value) *document.Value {
	switch schema.Get("format").Str() {
	case "date-time":
		return document.StringValue(dateTimeSample)
	case "date":
		return document.StringValue(dateSample)
	case "email":
		return document.StringValue(emailSample)
	case "uuid":
		return document.StringValue(uuid.Nil.String())
	}
	if title := schema.Get("title"); truthy(title) {
		return title
	}
	if name := schema.Get("name"); truthy(name) {
		return name
	}
	return document.StringValue(Placeholder)
}

// sampleNumber prefers minimum over maximum, truncating either to an integer.
// Values that cannot convert degrade to 1 rather than failing.
func sampleNumber(schema *document.Value) *document.Value {
	for _, key := range []string{"minimum", "maximum"} {
		if !schema.Has(key) {
			continue
		}
		if n, ok := schema.Get(key).AsInt(); ok {
			return document.IntValue(n)
		}
		return document.IntValue(1)
	}
	return document.IntValue(1)
}

func defaultItemSchema() *document.Value {
	s := document.ObjectValue()
	s.Set("type", document.StringValue("string"))
	return s
}

// truthy mirrors the lenient presence checks used throughout sampling:
// absent, null, empty string, zero, false, and empty composites all read as
// "not there".
func truthy(v *document.Value) bool {
	switch v.Kind() {
	case document.Null:
		return false
	case document.Bool:
		return v.BoolVal()
	case document.Number:
		return v.Text() != "0"
	case document.String:
		return v.Str() != ""
	default:
		return v.Len() > 0
	}
}
