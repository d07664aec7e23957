package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "   ")
	var le *LoadError
	if !errors.As(err, &le) || le.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	var le *LoadError
	if !errors.As(err, &le) || le.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/spec.yaml")
	var le *LoadError
	if !errors.As(err, &le) || le.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	var le *LoadError
	if !errors.As(err, &le) || le.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
	if le.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, "http://127.0.0.1:1/spec.yaml", WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2))
	var le *LoadError
	if !errors.As(err, &le) || le.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	path := writeTempDoc(t, "odd.yaml", "title: not a spec\n")
	_, err := Load(context.Background(), path)
	var le *LoadError
	if !errors.As(err, &le) || le.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestLoad_InvalidSyntax(t *testing.T) {
	t.Parallel()
	path := writeTempDoc(t, "broken.json", `{"openapi": "3.0.0",`)
	_, err := Load(context.Background(), path)
	var le *LoadError
	if !errors.As(err, &le) || le.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestLoad_V3_PreservesPathOrder(t *testing.T) {
	t.Parallel()
	content := `{
  "openapi": "3.0.0",
  "info": {"title": "Order", "version": "1.0.0"},
  "paths": {
    "/zebras": {},
    "/apes": {},
    "/mice": {}
  }
}`
	path := writeTempDoc(t, "order.json", content)
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Version != 3 {
		t.Fatalf("version = %d, want 3", doc.Version)
	}
	got := doc.Root.Get("paths").Keys()
	want := []string{"/zebras", "/apes", "/mice"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path order = %v, want %v", got, want)
		}
	}
}

func TestLoad_V3_AdvisoryValidationDoesNotBlock(t *testing.T) {
	t.Parallel()
	// Missing required info section: invalid, but it must still load.
	path := writeTempDoc(t, "lax.json", `{"openapi": "3.0.0", "paths": {}}`)
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load should succeed despite validation findings: %v", err)
	}
	if len(doc.Warnings) == 0 {
		t.Fatalf("expected advisory warnings")
	}
}

func TestLoad_V2_Conversion(t *testing.T) {
	t.Parallel()
	content := strings.TrimSpace(`swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
paths:
  "/hello":
    get:
      responses:
        "200":
          description: ok
`) + "\n"
	path := writeTempDoc(t, "swagger.yaml", content)
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Version != 2 {
		t.Fatalf("version = %d, want 2", doc.Version)
	}
	if !strings.HasPrefix(doc.Root.Get("openapi").Str(), "3.") {
		t.Fatalf("converted root should declare OpenAPI v3, got %q", doc.Root.Get("openapi").Str())
	}
	if !doc.Root.Get("paths").Has("/hello") {
		t.Fatalf("converted document lost /hello path")
	}
}
