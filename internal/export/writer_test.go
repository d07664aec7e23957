package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite_PlanIsSorted(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"z.http": []byte("zz"),
		"a.http": []byte("a"),
		"m.http": []byte("mmm"),
	}
	res, err := Write(files, Options{OutDir: t.TempDir(), Force: true})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []string{"a.http", "m.http", "z.http"}
	if len(res.Planned) != len(want) {
		t.Fatalf("planned = %v", res.Planned)
	}
	for i, pf := range res.Planned {
		if pf.RelPath != want[i] {
			t.Fatalf("planned = %v, want %v", res.Planned, want)
		}
	}
	if res.Planned[1].Size != 3 {
		t.Fatalf("size = %d, want 3", res.Planned[1].Size)
	}
}

func TestWrite_WritesContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "GET / HTTP/1.1\r\nHost: h\r\n\r\n"
	if _, err := Write(map[string][]byte{"get.http": []byte(raw)}, Options{OutDir: dir}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "get.http"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != raw {
		t.Fatalf("content = %q, want %q", got, raw)
	}
	// No temp files may survive.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("stray temp file %q", e.Name())
		}
	}
}

func TestWrite_CreatesOutDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := Write(map[string][]byte{"a.http": []byte("x")}, Options{OutDir: dir}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.http")); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestWrite_RefusesNonEmptyDirWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := Write(map[string][]byte{"a.http": []byte("x")}, Options{OutDir: dir})
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected non-empty refusal, got %v", err)
	}
	if _, err := Write(map[string][]byte{"a.http": []byte("x")}, Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("force write: %v", err)
	}
}

func TestWrite_DryRunWritesNothing(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "never-created")
	res, err := Write(map[string][]byte{"a.http": []byte("x")}, Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(res.Planned) != 1 {
		t.Fatalf("planned = %v", res.Planned)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("dry run touched the filesystem: %v", err)
	}
}

func TestWrite_RequiresOutDir(t *testing.T) {
	t.Parallel()
	if _, err := Write(nil, Options{OutDir: "  "}); err == nil {
		t.Fatal("expected error for missing OutDir")
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		label string
		want  string
	}{
		{"GET /pets/{id}", "get-pets-id.http"},
		{"POST /pets", "post-pets.http"},
		{"DELETE /a//b", "delete-a-b.http"},
		{"  ", "request.http"},
		{"///", "request.http"},
		{"PUT /items/{item_id}/tags", "put-items-item-id-tags.http"},
	}
	for _, tc := range cases {
		if got := FileName(tc.label); got != tc.want {
			t.Fatalf("FileName(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}
