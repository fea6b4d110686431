package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Source is a named chunk of SDL text.
type Source struct {
	Name    string
	Content string
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSchemas parses every source in order. Parsing stops at the first
// syntax error.
func ParseSchemas(sources ...Source) ([]*SchemaDocument, error) {
	docs := make([]*SchemaDocument, 0, len(sources))
	for _, src := range sources {
		doc, err := ParseSchema(src.Name, src.Content)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
