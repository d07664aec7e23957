// Package extract walks a loaded OpenAPI document and produces one generated
// raw-request template per declared operation.
package extract

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cd0gu/openapi-to-repeater/internal/document"
	"github.com/cd0gu/openapi-to-repeater/internal/render"
	"github.com/cd0gu/openapi-to-repeater/internal/sample"
)

// UserAgent seeds every generated request.
const UserAgent = "OpenAPI-to-Repeater/1.0"

// methodOrder fixes both which path-item keys count as operations and the
// order requests are emitted in for each path.
var methodOrder = [...]string{"get", "post", "put", "patch", "delete", "head", "options"}

// GeneratedRequest is an immutable pre-host, pre-auth request template for
// one operation. RawBase is request line + sampled headers + blank line +
// optional body, without Host/Authorization — those are merged at render
// time.
type GeneratedRequest struct {
	Label       string
	RawBase     string
	HeadersBase *render.Headers
}

type config struct {
	log *logrus.Logger
}

// Option configures extraction.
type Option func(*config)

// WithLogger routes extraction diagnostics to l.
func WithLogger(l *logrus.Logger) Option { return func(c *config) { c.log = l } }

// Requests walks doc's paths in document order and, per path, its operations
// in the fixed method order, returning one GeneratedRequest per operation.
// Individual malformed operations degrade to best-effort output rather than
// aborting the walk.
func Requests(doc *document.Document, opts ...Option) ([]GeneratedRequest, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logrus.New()
		cfg.log.SetOutput(io.Discard)
	}

	if doc == nil || doc.Root == nil {
		return nil, errors.New("extract: nil document")
	}
	root := doc.Root
	if root.Kind() != document.Object {
		return nil, errors.New("extract: document root is not an object")
	}

	var out []GeneratedRequest
	paths := root.Get("paths")
	for _, pathTemplate := range paths.Keys() {
		item := paths.Get(pathTemplate)
		if item.Kind() != document.Object {
			cfg.log.Debugf("skipping path %q: not a mapping", pathTemplate)
			continue
		}
		sharedParams := item.Get("parameters").Items()
		for _, method := range methodOrder {
			if !item.Has(method) {
				continue
			}
			op := item.Get(method)
			if op.Kind() != document.Object {
				cfg.log.Debugf("skipping %s %s: operation is not a mapping", method, pathTemplate)
				continue
			}
			out = append(out, buildRequest(root, pathTemplate, method, sharedParams, op))
		}
	}

	cfg.log.Infof("generated %d requests", len(out))
	return out, nil
}

func buildRequest(root *document.Value, pathTemplate, method string, sharedParams []*document.Value, op *document.Value) GeneratedRequest {
	params := append(append([]*document.Value(nil), sharedParams...), op.Get("parameters").Items()...)

	pathParams := newValueMap()
	queryParams := newValueMap()
	headerParams := newValueMap()

	for _, p := range params {
		p = resolveRef(root, p)
		name := p.Get("name").Str()
		val := p.Get("example")
		if val.IsNull() {
			val = sample.FromSchema(p.Get("schema"), root)
		}
		// Later parameters with the same name overwrite earlier ones.
		switch p.Get("in").Str() {
		case "path":
			pathParams.set(name, val)
		case "query":
			queryParams.set(name, val)
		case "header":
			headerParams.set(name, val)
		}
	}

	headers := render.NewHeaders()
	headers.Set("User-Agent", UserAgent)
	headers.Set("Accept", "application/json")
	for _, k := range headerParams.keys {
		headers.Set(k, headerParams.vals[k].Text())
	}

	var body *document.Value
	if op.Has("requestBody") {
		rb := resolveRef(root, op.Get("requestBody"))
		if content := rb.Get("content"); content.Kind() == document.Object && content.Len() > 0 {
			mediaType := "application/json"
			media := content.Get(mediaType)
			if media == nil {
				first := content.Members()[0]
				mediaType = first.Key
				media = first.Value
			}
			body = sample.FromSchema(media.Get("schema"), root)
			headers.Set("Content-Type", mediaType)
		}
	}

	finalPath := pathTemplate
	for _, k := range pathParams.keys {
		finalPath = strings.ReplaceAll(finalPath, "{"+k+"}", pathParams.vals[k].Text())
	}

	qs := ""
	if len(queryParams.keys) > 0 {
		pairs := make([]string, 0, len(queryParams.keys))
		for _, k := range queryParams.keys {
			pairs = append(pairs, encodeQuery(k)+"="+encodeQuery(queryParams.vals[k].Text()))
		}
		qs = "?" + strings.Join(pairs, "&")
	}

	lines := []string{strings.ToUpper(method) + " " + finalPath + qs + " HTTP/1.1"}
	for _, k := range headers.Keys() {
		v, _ := headers.Get(k)
		lines = append(lines, k+": "+v)
	}
	lines = append(lines, "")
	if body != nil {
		lines = append(lines, body.JSON("  "))
	}

	return GeneratedRequest{
		Label:       strings.ToUpper(method) + " " + pathTemplate,
		RawBase:     strings.Join(lines, "\n"),
		HeadersBase: headers,
	}
}

// resolveRef dereferences a parameter or request-body node that is itself a
// $ref. Non-local refs contribute nothing (an empty mapping).
func resolveRef(root *document.Value, node *document.Value) *document.Value {
	if node.Kind() != document.Object || !node.Has("$ref") {
		return node
	}
	ref := node.Get("$ref")
	if ref.Kind() == document.String && document.IsLocalRef(ref.Str()) {
		return document.Resolve(root, ref.Str())
	}
	return document.ObjectValue()
}

// encodeQuery percent-encodes a query key or value, with spaces as %20.
func encodeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// valueMap is a small insertion-ordered name→sample map used while routing
// parameters; setting an existing name overwrites it in place.
type valueMap struct {
	keys []string
	vals map[string]*document.Value
}

func newValueMap() *valueMap {
	return &valueMap{vals: make(map[string]*document.Value)}
}

func (m *valueMap) set(name string, v *document.Value) {
	if _, ok := m.vals[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.vals[name] = v
}
