package document

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags a Value node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// maxNodeDepth bounds recursive decoding so that pathological alias nesting
// cannot blow the stack.
const maxNodeDepth = 1000

// Member is one key/value pair of an object Value.
type Member struct {
	Key   string
	Value *Value
}

// Value is a tagged recursive representation of a parsed document node.
// Object members keep their source order; overwriting an existing key keeps
// its original position. All accessors are safe on a nil receiver and on
// mismatched kinds, returning zero values instead of panicking, so traversal
// code never needs to probe types up front.
type Value struct {
	kind     Kind
	boolVal  bool
	intVal   int64
	floatVal float64
	isInt    bool
	strVal   string
	items    []*Value
	members  []Member
	index    map[string]int
}

func NullValue() *Value           { return &Value{kind: Null} }
func BoolValue(b bool) *Value     { return &Value{kind: Bool, boolVal: b} }
func IntValue(i int64) *Value     { return &Value{kind: Number, intVal: i, isInt: true} }
func FloatValue(f float64) *Value { return &Value{kind: Number, floatVal: f} }
func StringValue(s string) *Value { return &Value{kind: String, strVal: s} }

func ArrayValue(items ...*Value) *Value {
	return &Value{kind: Array, items: items}
}

func ObjectValue() *Value {
	return &Value{kind: Object, index: make(map[string]int)}
}

// Kind reports the node tag; nil values read as Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v.Kind() == Null }

// Set inserts or replaces an object member. Replacing keeps the original
// insertion position of the key.
func (v *Value) Set(key string, val *Value) {
	if v == nil || v.kind != Object {
		return
	}
	if i, ok := v.index[key]; ok {
		v.members[i].Value = val
		return
	}
	v.index[key] = len(v.members)
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Get returns the member value for key, or nil when v is not an object or the
// key is absent. An explicit null member returns a non-nil Null Value.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != Object {
		return nil
	}
	if i, ok := v.index[key]; ok {
		return v.members[i].Value
	}
	return nil
}

func (v *Value) Has(key string) bool {
	if v == nil || v.kind != Object {
		return false
	}
	_, ok := v.index[key]
	return ok
}

// Keys returns object keys in insertion order.
func (v *Value) Keys() []string {
	if v == nil || v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns object key/value pairs in insertion order.
func (v *Value) Members() []Member {
	if v == nil || v.kind != Object {
		return nil
	}
	return v.members
}

// Items returns array elements.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != Array {
		return nil
	}
	return v.items
}

// Len reports member count for objects and element count for arrays.
func (v *Value) Len() int {
	switch v.Kind() {
	case Object:
		return len(v.members)
	case Array:
		return len(v.items)
	default:
		return 0
	}
}

// Str returns the string scalar, or "" for any other kind.
func (v *Value) Str() string {
	if v == nil || v.kind != String {
		return ""
	}
	return v.strVal
}

func (v *Value) BoolVal() bool {
	if v == nil || v.kind != Bool {
		return false
	}
	return v.boolVal
}

// AsInt converts a number (truncating toward zero) or an integer-formatted
// string to int64. The second result reports whether conversion succeeded.
func (v *Value) AsInt() (int64, bool) {
	switch v.Kind() {
	case Number:
		if v.isInt {
			return v.intVal, true
		}
		return int64(v.floatVal), true
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Text stringifies a node for use inside paths, query strings, and header
// values. Scalars render naturally, null renders empty, and composite nodes
// render as compact JSON.
func (v *Value) Text() string {
	switch v.Kind() {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.boolVal)
	case Number:
		if v.isInt {
			return strconv.FormatInt(v.intVal, 10)
		}
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case String:
		return v.strVal
	default:
		return v.JSON("")
	}
}

// JSON serializes the node. A non-empty indent produces pretty output with
// that indent unit; an empty indent produces compact output. Strings are
// escaped minimally and non-ASCII runes are written as-is.
func (v *Value) JSON(indent string) string {
	var b strings.Builder
	encodeJSON(&b, v, indent, "")
	return b.String()
}

func encodeJSON(b *strings.Builder, v *Value, indent, prefix string) {
	switch v.Kind() {
	case Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(v.boolVal))
	case Number:
		if v.isInt {
			b.WriteString(strconv.FormatInt(v.intVal, 10))
		} else {
			b.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
		}
	case String:
		encodeJSONString(b, v.strVal)
	case Array:
		if len(v.items) == 0 {
			b.WriteString("[]")
			return
		}
		inner := prefix + indent
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			if indent != "" {
				b.WriteByte('\n')
				b.WriteString(inner)
			}
			encodeJSON(b, item, indent, inner)
		}
		if indent != "" {
			b.WriteByte('\n')
			b.WriteString(prefix)
		}
		b.WriteByte(']')
	case Object:
		if len(v.members) == 0 {
			b.WriteString("{}")
			return
		}
		inner := prefix + indent
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			if indent != "" {
				b.WriteByte('\n')
				b.WriteString(inner)
			}
			encodeJSONString(b, m.Key)
			b.WriteByte(':')
			if indent != "" {
				b.WriteByte(' ')
			}
			encodeJSON(b, m.Value, indent, inner)
		}
		if indent != "" {
			b.WriteByte('\n')
			b.WriteString(prefix)
		}
		b.WriteByte('}')
	}
}

func encodeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// DecodeBytes parses YAML or JSON bytes into a Value tree, preserving the
// source order of mapping keys.
func DecodeBytes(data []byte) (*Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return fromNode(&node, 0), nil
}

func fromNode(n *yaml.Node, depth int) *Value {
	if n == nil || depth > maxNodeDepth {
		return NullValue()
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NullValue()
		}
		return fromNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromNode(n.Alias, depth+1)
	case yaml.MappingNode:
		obj := ObjectValue()
		for i := 0; i+1 < len(n.Content); i += 2 {
			obj.Set(n.Content[i].Value, fromNode(n.Content[i+1], depth+1))
		}
		return obj
	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, c := range n.Content {
			items = append(items, fromNode(c, depth+1))
		}
		return ArrayValue(items...)
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return NullValue()
	}
}

func fromScalar(n *yaml.Node) *Value {
	switch n.Tag {
	case "!!null":
		return NullValue()
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			return StringValue(n.Value)
		}
		return BoolValue(b)
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			return IntValue(i)
		}
		// non-decimal spellings (0x.., 0o..)
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return IntValue(i)
		}
		return StringValue(n.Value)
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return FloatValue(f)
		}
		return StringValue(n.Value)
	default:
		return StringValue(n.Value)
	}
}
