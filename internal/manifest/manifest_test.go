package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildAndDigest(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"merged.adi":      "<EOH><CALL:4>W1AW<EOR>",
		"dupes.jsonl":     "{}\n",
		"summary.json":    "{}",
		"report.html":     "<html></html>",
		"report.pdf":      "%PDF-1.4",
		"manifest_qr.png": "png-bytes",
	}
	var paths []string
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, p)
	}

	m, err := Build(paths)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(m.Items) != len(paths) {
		t.Fatalf("items = %d, want %d", len(m.Items), len(paths))
	}
	if m.ShaAlgo != "sha256" {
		t.Fatalf("shaAlgo = %q", m.ShaAlgo)
	}
	types := map[string]string{}
	for _, item := range m.Items {
		if len(item.Sha256) != 64 {
			t.Fatalf("sha256 for %s = %q", item.Path, item.Sha256)
		}
		if item.Size != int64(len(files[filepath.Base(item.Path)])) {
			t.Fatalf("size for %s = %d", item.Path, item.Size)
		}
		types[filepath.Base(item.Path)] = item.Type
	}
	want := map[string]string{
		"merged.adi":      "adi",
		"dupes.jsonl":     "jsonl",
		"summary.json":    "json",
		"report.html":     "html",
		"report.pdf":      "pdf",
		"manifest_qr.png": "other",
	}
	for name, typ := range want {
		if types[name] != typ {
			t.Fatalf("type of %s = %q, want %q", name, types[name], typ)
		}
	}

	d1, err := Digest(m)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if len(d1) != 64 {
		t.Fatalf("digest = %q", d1)
	}
	d2, err := Digest(m)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("digest not stable: %q vs %q", d1, d2)
	}
}

func TestBuildMissingFile(t *testing.T) {
	if _, err := Build([]string{filepath.Join(t.TempDir(), "ghost.adi")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "merged.adi")
	if err := os.WriteFile(src, []byte("<EOH>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	m, err := Build([]string{src})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out := filepath.Join(dir, "manifest.json")
	if err := Save(m, out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty manifest file")
	}
}
