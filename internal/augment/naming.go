package augment

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// Pluralize appends "s" unless name already ends in "s". There is no
// irregular noun table: "Bus" stays "Bus".
func Pluralize(name string) string {
	if strings.HasSuffix(name, "s") {
		return name
	}
	return name + "s"
}

// argumentName is the lower camel case form of a type name used for
// payload arguments: Book -> book, BookAuthor -> bookAuthor.
func argumentName(typeName string) string {
	return inflect.CamelizeDownFirst(typeName)
}

func pageTypeName(entity string) string { return entity + "Page" }
