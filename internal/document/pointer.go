package document

import "strings"

// IsLocalRef reports whether ref is a local document pointer ("#/...").
// Anything else (external files, URLs, bare fragments) is out of scope for
// resolution and callers degrade to a placeholder instead.
func IsLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "#/")
}

// Resolve walks a local "#/a/b/c" pointer from root, one mapping key per
// segment. A missing segment, or a segment applied to a non-object node,
// yields an empty object rather than an error; lookups on the result then
// degrade naturally.
func Resolve(root *Value, ref string) *Value {
	node := root
	for _, seg := range strings.Split(strings.TrimLeft(ref, "#/"), "/") {
		if node.Kind() == Object && node.Has(seg) {
			node = node.Get(seg)
			continue
		}
		return ObjectValue()
	}
	return node
}
