package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mongograph:", err)
		os.Exit(exitCode(err))
	}
}

// run executes one command line and releases what its setup acquired, also
// when the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	defer opts.close(context.WithoutCancel(ctx))
	return cmd.ExecuteContext(ctx)
}
