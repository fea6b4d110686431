package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hanpama/mongograph/internal/augment"
	"github.com/hanpama/mongograph/internal/mongoquery"
	"github.com/hanpama/mongograph/internal/resolver"
	"github.com/hanpama/mongograph/internal/store"
)

type callOptions struct {
	*rootOptions
	Args string
}

func newCallCommand(root *rootOptions) *cobra.Command {
	opts := &callOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "call <operation>",
		Short: "Run a generated operation against MongoDB",
		Long: `Resolve one generated root field, for example findBooks or
Mutation.insertBook, with arguments given as a JSON object, and print the
result as extended JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "operation arguments as a JSON object")
	return cmd
}

func runCall(cmd *cobra.Command, opts *callOptions, name string) error {
	ctx := cmd.Context()
	args, err := decodeArgs(opts.Args)
	if err != nil {
		return commandError("parse --args", err)
	}
	res, err := opts.augmented(ctx)
	if err != nil {
		return err
	}
	op, ok := findOperation(res, name)
	if !ok {
		return commandError(fmt.Sprintf("unknown operation %q", name), nil)
	}
	colls, disconnect, err := opts.connect(ctx, res)
	if err != nil {
		return err
	}
	defer disconnect()

	r := resolver.Build(res)
	slog.DebugContext(ctx, "resolvers bound", "fields", r.Fields())
	out, err := callOperation(store.WithCollections(ctx, colls), r, op, args)
	if err != nil {
		return failure(op.Name, err)
	}
	return printExtJSON(cmd, out)
}

// callOperation resolves op and shapes the result into a document with a
// single data key. Pages are evaluated in full.
func callOperation(ctx context.Context, r *resolver.Resolvers, op augment.Operation, args map[string]any) (bson.M, error) {
	result, err := r.Resolve(ctx, op.Root, op.Name, nil, args)
	if err != nil {
		return nil, err
	}
	switch v := result.(type) {
	case *mongoquery.Page:
		page, err := v.Resolve(ctx, true, true)
		if err != nil {
			return nil, err
		}
		data := make([]any, len(page.Data))
		for i, doc := range page.Data {
			data[i] = doc
		}
		if err := serializeFields(ctx, r, op.Entity, data); err != nil {
			return nil, err
		}
		return bson.M{"data": bson.M{"total": page.Total, "data": data}}, nil
	case []any:
		if err := serializeFields(ctx, r, op.Entity, v); err != nil {
			return nil, err
		}
		return bson.M{"data": v}, nil
	case bson.M:
		if err := serializeFields(ctx, r, op.Entity, []any{v}); err != nil {
			return nil, err
		}
		return bson.M{"data": v}, nil
	}
	return bson.M{"data": result}, nil
}

// serializeFields replaces every field of each document that has a bound
// resolver, such as id and Date fields, with the resolver's output.
func serializeFields(ctx context.Context, r *resolver.Resolvers, entity string, docs []any) error {
	fields := r.BoundFields(entity)
	for _, d := range docs {
		doc, ok := d.(bson.M)
		if !ok || doc == nil {
			continue
		}
		for _, field := range fields {
			v, err := r.Resolve(ctx, entity, field, doc, nil)
			if err != nil {
				return err
			}
			doc[field] = v
		}
	}
	return nil
}

// findOperation accepts a bare field name or Root.field.
func findOperation(res *augment.Result, name string) (augment.Operation, bool) {
	if root, field, ok := strings.Cut(name, "."); ok {
		return res.Operation(root, field)
	}
	for _, op := range res.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return augment.Operation{}, false
}

func decodeArgs(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewBufferString(s))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
