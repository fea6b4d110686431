package source

import (
	"context"
	"fmt"

	language "github.com/hanpama/mongograph/internal/language"
	"github.com/hanpama/mongograph/internal/schema"
)

type DocumentMetadata struct {
	// Name is the file name without the .graphql extension.
	Name     string
	FilePath string
}

// Discovery enumerates SDL documents. ListDocuments returns them in the order
// they must be merged.
type Discovery interface {
	ListDocuments(ctx context.Context) ([]*DocumentMetadata, error)
	ReadDocument(ctx context.Context, filePath string) (string, error)
}

// Load reads and parses every discovered document and builds the merged
// type graph.
func Load(ctx context.Context, disc Discovery) (*schema.Schema, error) {
	metas, err := disc.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*language.SchemaDocument, 0, len(metas))
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sdl, err := disc.ReadDocument(ctx, meta.FilePath)
		if err != nil {
			return nil, err
		}
		doc, err := language.ParseSchema(meta.FilePath, sdl)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", meta.FilePath, err)
		}
		docs = append(docs, doc)
	}
	return schema.BuildFromDocuments(docs...)
}

// LoadDir is a convenience function that discovers the .graphql files under
// rootDir and builds their type graph.
func LoadDir(ctx context.Context, rootDir string) (*schema.Schema, error) {
	disc, err := NewFileSystemDiscovery(ctx, rootDir)
	if err != nil {
		return nil, err
	}
	return Load(ctx, disc)
}
