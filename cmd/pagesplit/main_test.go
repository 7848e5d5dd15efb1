package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/pagesplit/internal/pdfdoc"
	"github.com/dgallion1/pagesplit/internal/pdfdoc/pdftest"
)

func countPDFs(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".pdf" {
			n++
		}
	}
	return n
}

func TestRun_PageSize(t *testing.T) {
	input := pdftest.WriteFile(t, 5)
	out := filepath.Join(t.TempDir(), "test_output_page_size")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", input, "-o", out, "-s", "2"}, &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if got := countPDFs(t, out); got != 3 {
		t.Errorf("expected 3 chunks, got %d", got)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 confirmation lines, got %q", stdout.String())
	}
	want := "Saved chunk 3 (pages 5 to 5) to " + filepath.Join(out, "chunk_3.pdf")
	if lines[2] != want {
		t.Errorf("expected %q, got %q", want, lines[2])
	}
}

func TestRun_NumChunks(t *testing.T) {
	input := pdftest.WriteFile(t, 9)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-input", input, "-output", out, "-split", "c3", "-verify"}, &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if got := countPDFs(t, out); got != 3 {
		t.Errorf("expected 3 chunks, got %d", got)
	}
	doc, err := pdfdoc.Load(filepath.Join(out, "chunk_2.pdf"))
	if err != nil {
		t.Fatalf("load chunk: %v", err)
	}
	if doc.PageCount() != 3 {
		t.Errorf("expected 3 pages in chunk 2, got %d", doc.PageCount())
	}
}

func TestRun_Workers(t *testing.T) {
	input := pdftest.WriteFile(t, 6)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", input, "-o", out, "-s", "1", "-workers", "3", "-prefix", "page"}, &stdout, &stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	for i := 1; i <= 6; i++ {
		if _, err := os.Stat(filepath.Join(out, "page_"+string(rune('0'+i))+".pdf")); err != nil {
			t.Errorf("expected page_%d.pdf: %v", i, err)
		}
	}
}

func TestRun_InvalidInvocation(t *testing.T) {
	input := pdftest.WriteFile(t, 2)
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing split", []string{"-i", input, "-o", t.TempDir()}, "required"},
		{"zero chunks", []string{"-i", input, "-o", t.TempDir(), "-s", "c0"}, "cannot parse directive"},
		{"garbage split", []string{"-i", input, "-o", t.TempDir(), "-s", "lots"}, "cannot parse directive"},
		{"unknown flag", []string{"-x"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), tt.args, &stdout, &stderr)
		if code != exitInvalidInvocation {
			t.Errorf("%s: expected exit %d, got %d", tt.name, exitInvalidInvocation, code)
		}
		if !strings.Contains(stderr.String(), tt.msg) {
			t.Errorf("%s: expected %q in stderr, got %q", tt.name, tt.msg, stderr.String())
		}
	}
}

func TestRun_LoadFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.pdf")
	if err := os.WriteFile(bad, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", bad, "-o", out, "-s", "2"}, &stdout, &stderr)
	if code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(stderr.String(), "cannot load document") {
		t.Errorf("expected load stage in stderr, got %q", stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("expected no output directory after load failure")
	}
}
