package e2e

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/cd0gu/openapi-to-repeater/internal/cli"
)

// minimal Swagger v2 document; the loader converts it to v3 before extraction
const minimalV2Spec = "" +
	"swagger: '2.0'\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /pets/{id}:\n" +
	"    get:\n" +
	"      summary: Get a pet\n" +
	"      parameters:\n" +
	"        - name: id\n" +
	"          in: path\n" +
	"          required: true\n" +
	"          type: integer\n" +
	"          minimum: 1\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n"

func writeTempSpec(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(p, []byte(minimalV2Spec), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	root := cli.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
	return out.String()
}

// TestInitConfigExportFlow scaffolds a config with init, fills it in, and
// exports through it end to end, taking the v2 conversion path along the way.
func TestInitConfigExportFlow(t *testing.T) {
	spec := writeTempSpec(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "openapi2repeater.yaml")

	runCLI(t, "init", "--out", configPath)

	// The scaffold is fully commented; appending real values activates it.
	f, err := os.OpenFile(configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	_, err = f.WriteString("\ninput: " + spec + "\nhost: pets.example.com\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		t.Fatalf("append config: %v", err)
	}

	listing := runCLI(t, "--config", configPath, "list")
	if listing != "1\tGET /pets/{id}\n" {
		t.Fatalf("list output = %q", listing)
	}

	outDir := filepath.Join(dir, "requests")
	runCLI(t, "--config", configPath, "export", "--out", outDir)

	data, err := os.ReadFile(filepath.Join(outDir, "get-pets-id.http"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "GET /pets/1 HTTP/1.1\r\nHost: pets.example.com\r\n") {
		t.Fatalf("exported request:\n%q", got)
	}
	if !strings.HasSuffix(got, "\r\n") {
		t.Fatalf("exported request not CRLF-terminated:\n%q", got)
	}
}
