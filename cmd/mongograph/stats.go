package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

func newStatsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the document count of every entity collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, root)
		},
	}
}

func runStats(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	res, err := opts.augmented(ctx)
	if err != nil {
		return err
	}
	colls, disconnect, err := opts.connect(ctx, res)
	if err != nil {
		return err
	}
	defer disconnect()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tCOLLECTION\tDOCUMENTS")
	for _, e := range res.Capabilities.Entities {
		coll, err := colls.Get(e.CollectionName)
		if err != nil {
			return failure("stats", err)
		}
		n, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return failure(fmt.Sprintf("count %s", e.CollectionName), err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.Name, e.CollectionName, n)
	}
	return w.Flush()
}
