package schema

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/mongograph/internal/language"
)

func TestRenderSnapshot(t *testing.T) {
	s, err := BuildFromSDL("library.graphql", mustReadFile(t, "testdata/library.graphql"))
	require.NoError(t, err)

	actual := Render(s)
	_, err = gqlparser.LoadSchema(&ast.Source{Name: "rendered.graphql", Input: actual})
	require.NoError(t, err, "rendered SDL must load")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "library", []byte(actual))
}

func TestRenderRoundTrip(t *testing.T) {
	first, err := BuildFromSDL("library.graphql", mustReadFile(t, "testdata/library.graphql"))
	require.NoError(t, err)
	second, err := BuildFromSDL("rendered.graphql", Render(first))
	require.NoError(t, err)
	if diff := cmp.Diff(Render(first), Render(second)); diff != "" {
		t.Fatalf("render is not stable (-first +second):\n%s", diff)
	}
}

func TestBuildFromDocuments(t *testing.T) {
	base, err := language.ParseSchema("base.graphql", `
type Book { title: String }
type Query { books: [Book] }
`)
	require.NoError(t, err)
	ext, err := language.ParseSchema("ext.graphql", `
extend type Book { pages: Int }
input BookInput { title: String }
`)
	require.NoError(t, err)

	s, err := BuildFromDocuments(base, ext)
	require.NoError(t, err)

	var names []string
	for _, typ := range s.UserTypes() {
		names = append(names, typ.Name)
	}
	require.Equal(t, []string{"Book", "Query", "BookInput"}, names)

	book := s.Type("Book")
	require.NotNil(t, book.Field("pages"))
	require.Equal(t, "Int", book.Field("pages").Type.String())
	require.Equal(t, "Query", s.GetQueryType().Name)
	require.Nil(t, s.GetMutationType())
	require.True(t, IsBuiltinType("String"))
	require.NotNil(t, s.Type("String"))
}

func TestBuildSchemaBlock(t *testing.T) {
	s, err := BuildFromSDL("roots.graphql", `
schema { query: RootQuery mutation: RootMutation }
type RootQuery { ok: Boolean }
type RootMutation { ok: Boolean }
`)
	require.NoError(t, err)
	require.Equal(t, "RootQuery", s.QueryType)
	require.Equal(t, "RootMutation", s.MutationType)
	require.Equal(t, "RootQuery", s.GetQueryType().Name)

	rendered := Render(s)
	require.Contains(t, rendered, "schema {\n  query: RootQuery\n  mutation: RootMutation\n}\n")
	_, err = gqlparser.LoadSchema(&ast.Source{Name: "roots.graphql", Input: rendered})
	require.NoError(t, err)
}

func TestBuildViolations(t *testing.T) {
	for name, tc := range map[string]struct {
		sdl  string
		want string
	}{
		"duplicate type": {
			sdl:  "type A { x: Int }\ntype A { y: Int }",
			want: `Duplicate definition of type "A"`,
		},
		"duplicate field": {
			sdl:  "type A { x: Int x: String }",
			want: `Duplicate field "x" found in type "A"`,
		},
		"missing extension target": {
			sdl:  "extend type B { x: Int }",
			want: `Type "B" not found in definitions`,
		},
		"extension kind": {
			sdl:  "type A { x: Int }\nextend input A { y: Int }",
			want: `Cannot extend OBJECT "A" with INPUT_OBJECT extension`,
		},
		"duplicate directive": {
			sdl:  "directive @a on FIELD_DEFINITION\ndirective @a on OBJECT",
			want: "Duplicate definition of directive @a",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildFromSDL("bad.graphql", tc.sdl)
			require.Error(t, err)
			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			require.Contains(t, err.Error(), tc.want)
			require.Equal(t, "bad.graphql", verr[0].File)
		})
	}
}

func TestWithTypeDoesNotMutate(t *testing.T) {
	s, err := BuildFromSDL("a.graphql", "type Book { title: String }")
	require.NoError(t, err)
	before := Render(s)

	book := s.Type("Book")
	extended := s.WithType(book.AppendFields(&Field{Name: "pages", Type: NamedType("Int")}))
	added := s.WithType(&Type{Name: "Author", Kind: TypeKindObject, Fields: []*Field{{Name: "name", Type: NamedType("String")}}})

	require.Equal(t, before, Render(s))
	require.Len(t, s.Type("Book").Fields, 1)
	require.Len(t, extended.Type("Book").Fields, 2)
	require.False(t, s.HasType("Author"))
	require.True(t, added.HasType("Author"))
	require.Same(t, s.Type("Book"), added.Type("Book"))
}

func TestTypeRef(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("Book"))))
	require.Equal(t, "[Book!]!", ref.String())
	require.True(t, ref.IsNonNull())
	require.True(t, ref.IsList())
	require.Equal(t, "Book", ref.GetNamedType())
	require.Equal(t, "[BookInsert!]!", ref.Rename("BookInsert").String())
	require.Equal(t, "[Book]", ref.Nullable().String())
	require.True(t, ref.Equal(NonNullType(ListType(NonNullType(NamedType("Book"))))))
	require.False(t, ref.Equal(ref.Nullable()))
}

func TestSameShape(t *testing.T) {
	a, err := BuildFromSDL("a.graphql", `"""one""" input F { EQ: Int @deprecated IN: [Int] }`)
	require.NoError(t, err)
	b, err := BuildFromSDL("b.graphql", "input F { EQ: Int IN: [Int] }")
	require.NoError(t, err)
	c, err := BuildFromSDL("c.graphql", "input F { IN: [Int] EQ: Int }")
	require.NoError(t, err)

	require.True(t, SameShape(a.Type("F"), b.Type("F")))
	require.False(t, SameShape(a.Type("F"), c.Type("F")))
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read file: %s", path)
	return string(content)
}
