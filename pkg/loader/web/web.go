package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
)

const maxBodyBytes = 20 << 20

// WebGraphLoader loads content from web URLs and extracts readable text.
// For HTML pages, it uses readability to extract the main content.
type WebGraphLoader struct {
	client *http.Client
	cache  *loader.Cache
}

// NewWebGraphLoader creates a new web loader.
func NewWebGraphLoader() *WebGraphLoader {
	return NewWebGraphLoaderWithClient(&http.Client{Timeout: 30 * time.Second})
}

// NewWebGraphLoaderWithClient creates a web loader that fetches with client.
func NewWebGraphLoaderWithClient(client *http.Client) *WebGraphLoader {
	return &WebGraphLoader{
		client: client,
		cache:  loader.NewCache(),
	}
}

// GetFileText fetches a URL and extracts readable text content.
// Non-HTML responses are returned as they are.
func (l *WebGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		u, err := url.Parse(file.FilePath)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("invalid url %q", file.FilePath)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("failed to fetch url: status %d", resp.StatusCode)
		}

		body := io.LimitReader(resp.Body, maxBodyBytes)
		if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return io.ReadAll(body)
		}

		article, err := readability.FromReader(body, u)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
		var builder strings.Builder
		if err := article.RenderText(&builder); err != nil {
			return nil, fmt.Errorf("failed to render article text: %w", err)
		}
		return []byte(builder.String()), nil
	})
}
