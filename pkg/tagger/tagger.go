// Package tagger defines the tagging capability the extraction pipeline
// consumes: entity spans with raw labels, sentence boundaries and a
// dependency structure per sentence.
package tagger

import (
	"context"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

// Tagger turns raw text into a tagged document. Offsets of spans, sentences
// and tokens refer to TaggedDocument.Text, which may be a cleaned version
// of the input.
//
// Implementations must be safe for concurrent use.
type Tagger interface {
	Tag(ctx context.Context, text string) (*common.TaggedDocument, error)
}

// Func adapts a plain function to the Tagger interface.
type Func func(ctx context.Context, text string) (*common.TaggedDocument, error)

func (f Func) Tag(ctx context.Context, text string) (*common.TaggedDocument, error) {
	return f(ctx, text)
}
