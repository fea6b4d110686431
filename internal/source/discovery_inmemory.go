package source

import (
	"context"
	"fmt"
)

type InMemoryDocument struct {
	Name    string
	Content string
}

// InMemoryDiscovery is a test implementation of Discovery that stores data in memory
type InMemoryDiscovery struct {
	metas    []*DocumentMetadata
	contents map[string]string
}

// NewInMemoryDiscovery keeps the documents in the given order.
func NewInMemoryDiscovery(docs []InMemoryDocument) *InMemoryDiscovery {
	discovery := &InMemoryDiscovery{contents: make(map[string]string)}
	for _, doc := range docs {
		filePath := doc.Name + ".graphql"
		discovery.metas = append(discovery.metas, &DocumentMetadata{Name: doc.Name, FilePath: filePath})
		discovery.contents[filePath] = doc.Content
	}
	return discovery
}

// ListDocuments implements Discovery interface
func (d *InMemoryDiscovery) ListDocuments(ctx context.Context) ([]*DocumentMetadata, error) {
	return append([]*DocumentMetadata(nil), d.metas...), nil
}

// ReadDocument implements Discovery interface
func (d *InMemoryDiscovery) ReadDocument(ctx context.Context, filePath string) (string, error) {
	content, exists := d.contents[filePath]
	if !exists {
		return "", fmt.Errorf("document %q not found", filePath)
	}
	return content, nil
}
