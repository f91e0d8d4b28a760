package fsx_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/piecechain/pkg/fsx"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader([]byte(s)))
		return err
	}
}

func TestWriteAtomic_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	w := fsx.NewWriter(fsx.NewReal())
	if err := w.WriteAtomic(path, w.DefaultOptions(), writeString("hello")); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("content=%q, want %q", got, "hello")
	}
}

func TestWriteAtomic_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := fsx.NewWriter(fsx.NewReal())
	if err := w.WriteAtomic(path, w.DefaultOptions(), writeString("new")); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("content=%q, want %q", got, "new")
	}
}

func TestWriteAtomic_RefusesHardLinkedTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	linkPath := filepath.Join(dir, "out-link.txt")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Link(path, linkPath); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	w := fsx.NewWriter(fsx.NewReal())
	err := w.WriteAtomic(path, w.DefaultOptions(), writeString("new"))
	if !errors.Is(err, fsx.ErrUnsafeTarget) {
		t.Fatalf("err=%v, want ErrUnsafeTarget", err)
	}
}

func TestWriteAtomic_RefusesNonRegularTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "somedir")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	w := fsx.NewWriter(fsx.NewReal())
	err := w.WriteAtomic(path, w.DefaultOptions(), writeString("new"))
	if !errors.Is(err, fsx.ErrUnsafeTarget) {
		t.Fatalf("err=%v, want ErrUnsafeTarget", err)
	}
}

func TestWriteAtomic_FailedWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	boom := errors.New("boom")
	w := fsx.NewWriter(fsx.NewReal())
	err := w.WriteAtomic(path, w.DefaultOptions(), func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapping %v", err, boom)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (the original file, no temp leftovers)", len(entries))
	}
}

func TestWriteInplace_TruncatesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("a much longer old content"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := fsx.NewWriter(fsx.NewReal())
	if err := w.WriteInplace(path, w.DefaultOptions(), writeString("short")); err != nil {
		t.Fatalf("WriteInplace: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "short" {
		t.Fatalf("content=%q, want %q", got, "short")
	}
}

func TestWriteAuto_PrefersAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	w := fsx.NewWriter(fsx.NewReal())
	if err := w.WriteAuto(path, w.DefaultOptions(), writeString("auto")); err != nil {
		t.Fatalf("WriteAuto: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "auto" {
		t.Fatalf("content=%q, want %q", got, "auto")
	}
}

func TestWriteAuto_FallsBackToInplaceWhenAtomicRefusesTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	linkPath := filepath.Join(dir, "out-link.txt")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Link(path, linkPath); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	w := fsx.NewWriter(fsx.NewReal())
	if err := w.WriteAuto(path, w.DefaultOptions(), writeString("fallback")); err != nil {
		t.Fatalf("WriteAuto: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "fallback" {
		t.Fatalf("content=%q, want %q", got, "fallback")
	}
}
