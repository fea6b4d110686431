// Package codegen renders Go source declaring one MongoDB collection handle
// per entity.
package codegen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/hanpama/mongograph/internal/augment"
)

const mongoPkg = "go.mongodb.org/mongo-driver/mongo"

// Generate builds the collections file for every entity of m.
func Generate(m *augment.CapabilityMap, pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by mongograph. DO NOT EDIT.")

	if len(m.Entities) == 0 {
		return f
	}

	f.Comment("Collection names.")
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, e := range m.Entities {
			g.Id(constName(e)).Op("=").Lit(e.CollectionName)
		}
	})

	for _, e := range m.Entities {
		f.Commentf("Get%sCollection returns the %q collection holding %s documents.", e.Name, e.CollectionName, e.Name)
		f.Func().Id("Get"+e.Name+"Collection").Params(
			jen.Id("db").Op("*").Qual(mongoPkg, "Database"),
		).Op("*").Qual(mongoPkg, "Collection").Block(
			jen.Return(jen.Id("db").Dot("Collection").Call(jen.Id(constName(e)))),
		)
	}

	f.Comment("Collections holds one handle per entity collection.")
	f.Type().Id("Collections").StructFunc(func(g *jen.Group) {
		for _, e := range m.Entities {
			g.Id(e.Name).Op("*").Qual(mongoPkg, "Collection")
		}
	})

	f.Comment("NewCollections returns the collection handles of db.")
	f.Func().Id("NewCollections").Params(
		jen.Id("db").Op("*").Qual(mongoPkg, "Database"),
	).Op("*").Id("Collections").Block(
		jen.Return(jen.Op("&").Id("Collections").Values(jen.DictFunc(func(d jen.Dict) {
			for _, e := range m.Entities {
				d[jen.Id(e.Name)] = jen.Id("Get" + e.Name + "Collection").Call(jen.Id("db"))
			}
		}))),
	)
	return f
}

// Render returns the formatted source of Generate.
func Render(m *augment.CapabilityMap, pkg string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Generate(m, pkg).Render(&buf); err != nil {
		return nil, fmt.Errorf("render collections: %w", err)
	}
	return buf.Bytes(), nil
}

func constName(e *augment.Entity) string { return e.Name + "Collection" }
