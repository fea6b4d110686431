package codegen

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/mongograph/internal/augment"
	"github.com/hanpama/mongograph/internal/schema"
)

const librarySDL = `
type Book @collection(name: "books") {
	title: String
}

type Author @collection(name: "authors") {
	name: String
}

type Note {
	text: String
}
`

func scan(t *testing.T, sdl string) *augment.CapabilityMap {
	t.Helper()
	g, err := schema.BuildFromSDL("library", sdl)
	require.NoError(t, err)
	res, err := augment.Augment(g)
	require.NoError(t, err)
	return res.Capabilities
}

func TestRenderCollections(t *testing.T) {
	src, err := Render(scan(t, librarySDL), "models")
	require.NoError(t, err)

	file, err := parser.ParseFile(token.NewFileSet(), "collections.go", src, parser.ParseComments)
	require.NoError(t, err)
	require.Equal(t, "models", file.Name.Name)

	out := string(src)
	require.Contains(t, out, "// Code generated by mongograph. DO NOT EDIT.")
	require.Contains(t, out, `"go.mongodb.org/mongo-driver/mongo"`)
	require.Contains(t, out, `BookCollection   = "books"`)
	require.Contains(t, out, `AuthorCollection = "authors"`)
	require.Contains(t, out, "func GetBookCollection(db *mongo.Database) *mongo.Collection {")
	require.Contains(t, out, "return db.Collection(AuthorCollection)")
	require.Contains(t, out, "func NewCollections(db *mongo.Database) *Collections {")
	require.Contains(t, out, "Book:   GetBookCollection(db),")
	require.NotContains(t, out, "Note")
}

func TestRenderWithoutEntities(t *testing.T) {
	src, err := Render(scan(t, "type Note { text: String }"), "models")
	require.NoError(t, err)
	require.NotContains(t, string(src), "Collections")
	_, err = parser.ParseFile(token.NewFileSet(), "collections.go", src, 0)
	require.NoError(t, err)
}
