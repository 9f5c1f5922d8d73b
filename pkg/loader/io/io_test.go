package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
)

func TestIOGraphFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("Steve Jobs founded Apple."), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewIOGraphFileLoader()
	f := loader.NewGraphTextFile(loader.NewGraphFileParams{ID: "doc-1", FilePath: path, Loader: l})
	got, err := f.GetText(context.Background())
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if string(got) != "Steve Jobs founded Apple." {
		t.Fatalf("GetText() = %q", got)
	}

	missing := loader.NewGraphTextFile(loader.NewGraphFileParams{ID: "doc-2", FilePath: path + ".missing", Loader: l})
	if _, err := missing.GetText(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBytesGraphFileLoader(t *testing.T) {
	l := NewBytesGraphFileLoader("doc-1", []byte("hello"))
	f := loader.NewGraphTextFile(loader.NewGraphFileParams{ID: "doc-1", Loader: l})
	got, err := f.GetText(context.Background())
	if err != nil || string(got) != "hello" {
		t.Fatalf("GetText() = %q, %v", got, err)
	}

	other := loader.NewGraphTextFile(loader.NewGraphFileParams{ID: "doc-2", Loader: l})
	if _, err := other.GetText(context.Background()); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
