package io

import (
	"context"
	"fmt"
	"os"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
)

// IOGraphFileLoader loads files directly from the local filesystem with caching.
type IOGraphFileLoader struct {
	cache *loader.Cache
}

// NewIOGraphFileLoader creates a new filesystem-based file loader.
func NewIOGraphFileLoader() *IOGraphFileLoader {
	return &IOGraphFileLoader{cache: loader.NewCache()}
}

// GetFileText reads the file content from the filesystem. Results are cached.
func (l *IOGraphFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		return os.ReadFile(file.FilePath)
	})
}

// BytesGraphFileLoader serves content that is already in memory, such as
// an uploaded file or stdin, keyed by file ID.
type BytesGraphFileLoader struct {
	contents map[string][]byte
}

// NewBytesGraphFileLoader creates a loader that returns content for the
// file with the given id.
func NewBytesGraphFileLoader(id string, content []byte) *BytesGraphFileLoader {
	return &BytesGraphFileLoader{contents: map[string][]byte{id: content}}
}

// GetFileText returns the stored content of file.
func (l *BytesGraphFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	content, ok := l.contents[file.ID]
	if !ok {
		return nil, fmt.Errorf("no content for file %s", file.ID)
	}
	return content, nil
}
