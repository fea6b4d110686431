package main

import (
	"github.com/spf13/cobra"

	"github.com/hanpama/mongograph/internal/codegen"
)

type codegenOptions struct {
	*rootOptions
	Package string
	Output  string
}

func newCodegenCommand(root *rootOptions) *cobra.Command {
	opts := &codegenOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "codegen",
		Short: "Generate Go collection handles for every entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodegen(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Package, "package", "", "Go package name (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file, - for stdout (default from config)")
	return cmd
}

func runCodegen(cmd *cobra.Command, opts *codegenOptions) error {
	res, err := opts.augmented(cmd.Context())
	if err != nil {
		return err
	}
	pkg := opts.cfg.Codegen.Package
	if opts.Package != "" {
		pkg = opts.Package
	}
	out := opts.cfg.Codegen.Out
	if opts.Output != "" {
		out = opts.Output
	}
	src, err := codegen.Render(res.Capabilities, pkg)
	if err != nil {
		return failure("codegen", err)
	}
	return writeOutput(cmd, out, src)
}
