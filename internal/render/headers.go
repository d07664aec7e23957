package render

import "strings"

// Headers is an insertion-ordered name→value map. Raw request text and test
// expectations depend on header order, so plain Go maps are not usable here.
// Names compare case-sensitively; setting an existing name updates it in
// place without moving it.
type Headers struct {
	keys []string
	vals map[string]string
}

func NewHeaders() *Headers {
	return &Headers{vals: make(map[string]string)}
}

func (h *Headers) Set(name, value string) {
	if _, ok := h.vals[name]; !ok {
		h.keys = append(h.keys, name)
	}
	h.vals[name] = value
}

func (h *Headers) Get(name string) (string, bool) {
	v, ok := h.vals[name]
	return v, ok
}

// Keys returns header names in insertion order.
func (h *Headers) Keys() []string {
	return h.keys
}

func (h *Headers) Len() int { return len(h.keys) }

// ParseExtraHeaders parses multi-line "Name: value" text. Blank lines,
// #-comment lines, lines without a colon, and lines with an empty name are
// skipped; both sides are trimmed.
func ParseExtraHeaders(text string) *Headers {
	headers := NewHeaders()
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		headers.Set(name, strings.TrimSpace(value))
	}
	return headers
}
