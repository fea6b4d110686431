package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileSystemDiscovery(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "b/book.graphql", "type Book { title: String }")
	writeFile(t, root, "a.graphql", "type Query { books: [Book] }")
	writeFile(t, root, "notes.txt", "not a schema")

	disc, err := NewFileSystemDiscovery(ctx, root)
	require.NoError(t, err)

	metas, err := disc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	require.Equal(t, "a.graphql", metas[0].FilePath)
	require.Equal(t, "b/book.graphql", metas[1].FilePath)
	require.Equal(t, "book", metas[1].Name)

	content, err := disc.ReadDocument(ctx, metas[1].FilePath)
	require.NoError(t, err)
	require.Equal(t, "type Book { title: String }", content)
}

func TestFileSystemDiscoveryErrors(t *testing.T) {
	_, err := NewFileSystemDiscovery(context.Background(), "")
	require.Error(t, err)

	_, err = NewFileSystemDiscovery(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "book.graphql", "type Book { title: String }")
	writeFile(t, root, "ext.graphql", "extend type Book { pages: Int }")

	s, err := LoadDir(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, s.Type("Book").Field("pages"))
}

func TestLoadInMemory(t *testing.T) {
	disc := NewInMemoryDiscovery([]InMemoryDocument{
		{Name: "base", Content: "type Book { title: String }"},
		{Name: "ext", Content: "extend type Book { pages: Int }"},
	})
	s, err := Load(context.Background(), disc)
	require.NoError(t, err)
	require.Len(t, s.Type("Book").Fields, 2)

	_, err = disc.ReadDocument(context.Background(), "missing.graphql")
	require.Error(t, err)
}

func TestLoadReportsSyntaxErrors(t *testing.T) {
	disc := NewInMemoryDiscovery([]InMemoryDocument{{Name: "broken", Content: "type Book {"}})
	_, err := Load(context.Background(), disc)
	require.ErrorContains(t, err, "parse broken.graphql")
}
