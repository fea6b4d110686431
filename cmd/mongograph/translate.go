package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hanpama/mongograph/internal/mongoquery"
)

var translators = map[string]func(map[string]any) (bson.M, error){
	"filter":     infallible(mongoquery.TranslateFilter),
	"update":     mongoquery.TranslateUpdate,
	"textsearch": infallible(mongoquery.TranslateTextSearch),
}

func infallible(fn func(map[string]any) bson.M) func(map[string]any) (bson.M, error) {
	return func(tree map[string]any) (bson.M, error) { return fn(tree), nil }
}

type translateOptions struct {
	*rootOptions
	Kind string
}

func newTranslateCommand(root *rootOptions) *cobra.Command {
	opts := &translateOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "translate [json]",
		Short: "Translate a GraphQL argument tree into a MongoDB document",
		Long: `Read an argument tree as extended JSON from the argument or stdin and
print the MongoDB document it translates to, for example

  mongograph translate --kind update '{"SET": {"title": "x"}, "DEC": {"stock": 1}}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.Kind, "kind", "filter", "tree kind (filter|update|textsearch)")
	return cmd
}

func runTranslate(cmd *cobra.Command, opts *translateOptions, args []string) error {
	translate, ok := translators[opts.Kind]
	if !ok {
		return commandError(fmt.Sprintf("unknown kind %q", opts.Kind), nil)
	}
	var input []byte
	if len(args) == 1 {
		input = []byte(args[0])
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return commandError("read stdin", err)
		}
		input = data
	}
	var tree bson.M
	if err := bson.UnmarshalExtJSON(input, false, &tree); err != nil {
		return commandError("parse input", err)
	}
	doc, err := translate(tree)
	if err != nil {
		return commandError("translate", err)
	}
	return printExtJSON(cmd, doc)
}

func printExtJSON(cmd *cobra.Command, doc bson.M) error {
	if doc == nil {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "null")
		return err
	}
	out, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return failure("marshal output", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
