package loader

import (
	"context"
	"errors"
)

type GraphFileType string

const (
	GraphFileTypeText GraphFileType = "text"
	GraphFileTypePDF  GraphFileType = "pdf"
	GraphFileTypeWeb  GraphFileType = "web"
)

// ErrNoLoader is returned by GetText for a file without a loader.
var ErrNoLoader = errors.New("file has no loader")

// GraphFile represents one input document of a graph build. The actual
// content is retrieved via the associated GraphFileLoader, so the same
// file description works for local paths, S3 keys and URLs.
type GraphFile struct {
	ID       string
	FilePath string
	FileType GraphFileType
	Loader   GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new
// GraphFile.
type NewGraphFileParams struct {
	ID       string
	FilePath string
	Loader   GraphFileLoader
}

// NewGraphTextFile creates a GraphFile for plain text content.
func NewGraphTextFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeText,
		Loader:   params.Loader,
	}
}

// NewGraphPDFFile creates a GraphFile whose loader extracts PDF text.
func NewGraphPDFFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypePDF,
		Loader:   params.Loader,
	}
}

// NewGraphWebFile creates a GraphFile for a URL. FilePath holds the URL.
func NewGraphWebFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeWeb,
		Loader:   params.Loader,
	}
}

// GetText retrieves the raw text content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *GraphFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, ErrNoLoader
	}
	return f.Loader.GetFileText(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a GraphFile.
// Implementations may load files from disk, cloud storage, or other sources.
type GraphFileLoader interface {
	GetFileText(ctx context.Context, file GraphFile) ([]byte, error)
}

// CacheKey identifies a file in loader caches.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}
