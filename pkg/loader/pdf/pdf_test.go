package pdf

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	loaderio "github.com/OFFIS-RIT/kgraph/backend/pkg/loader/io"
)

func TestExtractText_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a pdf")} {
		if _, err := ExtractText(data); err == nil {
			t.Errorf("ExtractText(%q) expected error", data)
		}
	}
}

func TestPDFGraphLoader_PropagatesErrors(t *testing.T) {
	raw := loaderio.NewBytesGraphFileLoader("doc-1", []byte("plain text, no pdf"))
	l := NewPDFGraphLoader(raw)
	f := loader.NewGraphPDFFile(loader.NewGraphFileParams{ID: "doc-1", Loader: l})
	if _, err := f.GetText(context.Background()); err == nil {
		t.Fatal("expected error for invalid pdf")
	}

	missing := loader.NewGraphPDFFile(loader.NewGraphFileParams{ID: "doc-2", Loader: l})
	if _, err := missing.GetText(context.Background()); err == nil {
		t.Fatal("expected error for unknown file")
	}
}
