package main

import (
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/mongograph/internal/schema"
)

type compileOptions struct {
	*rootOptions
	Output string
}

func newCompileSDLCommand(root *rootOptions) *cobra.Command {
	opts := &compileOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "compile-sdl",
		Short: "Augment the schema and print the resulting SDL",
		Long: `Load every .graphql file under the schema root, derive the collection
types and operations, and print the augmented SDL. The output is
validated before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompileSDL(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runCompileSDL(cmd *cobra.Command, opts *compileOptions) error {
	res, err := opts.augmented(cmd.Context())
	if err != nil {
		return err
	}
	sdl := schema.Render(res.Schema)
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "augmented.graphql", Input: sdl}); err != nil {
		return failure("validate augmented schema", err)
	}
	return writeOutput(cmd, opts.Output, []byte(sdl))
}
