package pdf

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/ledongthuc/pdf"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// PDFGraphLoader loads PDF files through another loader and extracts their
// text content.
type PDFGraphLoader struct {
	loader loader.GraphFileLoader
	cache  *loader.Cache
}

// NewPDFGraphLoader creates a PDF loader that reads the raw PDF bytes with
// the given loader.
func NewPDFGraphLoader(l loader.GraphFileLoader) *PDFGraphLoader {
	return &PDFGraphLoader{
		loader: l,
		cache:  loader.NewCache(),
	}
}

// GetFileText extracts the text of every page. Pages are separated by a
// blank line.
func (l *PDFGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}
		text, err := ExtractText(content)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pdf text from %s: %w", file.ID, err)
		}
		return []byte(text), nil
	})
}

// ExtractText returns the plain text of a PDF document. Pages that fail to
// decode are skipped.
func ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("[PDF] Skipping page", "page", i, "err", err)
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	out := strings.TrimSpace(blankLines.ReplaceAllString(b.String(), "\n\n"))
	if out == "" {
		return "", fmt.Errorf("pdf contains no text")
	}
	return out, nil
}
