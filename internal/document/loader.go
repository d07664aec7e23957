package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// LoadError is a structured loader error with an optional source location.
type LoadError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Cause }

// Document is a loaded API description: the raw ordered tree plus where it
// came from. The tree is immutable after Load; generation only reads it.
type Document struct {
	Root     *Value
	Location string
	// Version is the source document version (2 or 3). Swagger v2 inputs are
	// converted to v3 before Root is built.
	Version int
	// Warnings holds advisory validation findings. They never block loading.
	Warnings []string
}

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// Logger receives fetch/validation diagnostics. Defaults to a discard logger.
	Logger *logrus.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option  { return func(s *Settings) { s.BackoffBase = d } }
func WithLogger(l *logrus.Logger) Option      { return func(s *Settings) { s.Logger = l } }

// Load reads an OpenAPI document from a filesystem path or an http/https URL
// and builds its order-preserving tree. Swagger v2 inputs are converted to v3
// via kin-openapi first (the converted tree follows the converter's output
// order, not the source order). Parse and read failures are blocking;
// kin-openapi validation runs in advisory mode only and its findings land in
// Document.Warnings.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &LoadError{Code: InputError, Message: "document: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	log := settings.Logger
	if log == nil {
		log = discardLogger()
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	var raw []byte
	location := input
	if isURL {
		switch strings.ToLower(u.Scheme) {
		case "file":
			return nil, &LoadError{Code: InputError, Message: "document: file:// URLs are blocked", Location: input}
		case "http", "https":
		default:
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("document: unsupported URL scheme %q (only http/https allowed)", u.Scheme), Location: input}
		}
		fetched, err := fetchWithRetry(ctx, input, settings, log)
		if err != nil {
			return nil, &LoadError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		raw = fetched
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		location = abs
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
		}
		raw = data
	}

	version, err := detectSpecVersion(raw)
	if err != nil {
		return nil, &LoadError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	if version == 2 {
		converted, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &LoadError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		log.Debugf("converted Swagger v2 document %s to OpenAPI v3", location)
		raw = converted
	}

	root, err := DecodeBytes(raw)
	if err != nil {
		return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("parse document: %v", err), Location: location, Cause: err}
	}

	warnings := validateAdvisory(ctx, raw)
	for _, w := range warnings {
		log.Warnf("document %s: %s", location, w)
	}

	return &Document{Root: root, Location: location, Version: version, Warnings: warnings}, nil
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else an error.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, errors.New("document: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func convertV2ToV3(data []byte) ([]byte, error) {
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// validateAdvisory runs kin-openapi over the v3 bytes in permissive mode.
// Findings are informational; a document that fails validation still loads.
func validateAdvisory(ctx context.Context, data []byte) []string {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return []string{fmt.Sprintf("advisory validation skipped: %v", err)}
	}
	if err := doc.Validate(ctx); err != nil {
		if me, ok := err.(openapi3.MultiError); ok {
			out := make([]string, 0, len(me))
			for _, e := range me {
				out = append(out, e.Error())
			}
			return out
		}
		return []string{err.Error()}
	}
	return nil
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings, log *logrus.Logger) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			data, rerr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if rerr == nil {
				return data, nil
			}
			lastErr = rerr
		} else if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 || resp.StatusCode == 429 {
			resp.Body.Close()
			lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		log.Debugf("fetch %s attempt %d failed: %v", rawURL, i+1, lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
