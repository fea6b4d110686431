package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystemDiscovery implements Discovery for .graphql files below a root
// directory. Documents are listed in lexical path order.
type FileSystemDiscovery struct {
	root  string
	metas []*DocumentMetadata
}

// NewFileSystemDiscovery walks rootDir collecting every .graphql file.
func NewFileSystemDiscovery(ctx context.Context, rootDir string) (*FileSystemDiscovery, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	discovery := &FileSystemDiscovery{root: rootDir}

	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) != ".graphql" {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}
		discovery.metas = append(discovery.metas, &DocumentMetadata{
			Name:     strings.TrimSuffix(d.Name(), ".graphql"),
			FilePath: filepath.ToSlash(relPath),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", rootDir, err)
	}
	sort.Slice(discovery.metas, func(i, j int) bool {
		return discovery.metas[i].FilePath < discovery.metas[j].FilePath
	})
	return discovery, nil
}

func (d *FileSystemDiscovery) ListDocuments(ctx context.Context) ([]*DocumentMetadata, error) {
	return append([]*DocumentMetadata(nil), d.metas...), nil
}

// ReadDocument reads the SDL content of a discovered file
func (d *FileSystemDiscovery) ReadDocument(ctx context.Context, filePath string) (string, error) {
	for _, m := range d.metas {
		if m.FilePath != filePath {
			continue
		}
		content, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(filePath)))
		if err != nil {
			return "", fmt.Errorf("failed to read SDL for %q: %w", filePath, err)
		}
		return string(content), nil
	}
	return "", fmt.Errorf("document %q not found", filePath)
}
