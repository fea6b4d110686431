package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/mongograph/internal/augment"
	"github.com/hanpama/mongograph/internal/config"
	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	"github.com/hanpama/mongograph/internal/eventlog"
	"github.com/hanpama/mongograph/internal/otel"
	"github.com/hanpama/mongograph/internal/source"
	"github.com/hanpama/mongograph/internal/store"
)

// rootOptions holds the global flags and the state prepared for every
// subcommand.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	SchemaRoot string
	MongoURI   string
	Database   string

	cfg      *config.Config
	cleanups []func(context.Context)
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mongograph",
		Short: "GraphQL schema augmentation for MongoDB collections",
		Long: `mongograph derives filter, insert and update input types, page types and
CRUD root fields for every @collection type of a GraphQL schema, and
translates GraphQL argument trees into MongoDB query and update documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", config.DefaultPath, "config file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.SchemaRoot, "schema", "", "GraphQL schema root directory")
	flags.StringVar(&opts.MongoURI, "mongo-uri", "", "MongoDB connection URI")
	flags.StringVar(&opts.Database, "database", "", "MongoDB database name")

	cmd.AddCommand(newCompileSDLCommand(opts))
	cmd.AddCommand(newCodegenCommand(opts))
	cmd.AddCommand(newTranslateCommand(opts))
	cmd.AddCommand(newCallCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return commandError("load config", err)
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if flags.Changed("schema") {
		cfg.Schema.Root = o.SchemaRoot
	}
	if flags.Changed("mongo-uri") {
		cfg.Mongo.URI = o.MongoURI
	}
	if flags.Changed("database") {
		cfg.Mongo.Database = o.Database
	}
	o.cfg = cfg

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return commandError("log level", err)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	eventbus.Use(eventbus.New())
	unsubscribe := eventlog.Register(logger)
	o.cleanups = append(o.cleanups, func(context.Context) { unsubscribe() })

	if cfg.OTel.Endpoint != "" {
		shutdown, err := otel.Setup(cfg.OTel.Endpoint, cfg.OTel.Service)
		if err != nil {
			return failure("otel setup", err)
		}
		o.cleanups = append(o.cleanups, func(ctx context.Context) {
			if err := shutdown(ctx); err != nil {
				slog.Warn("otel shutdown", "err", err)
			}
		})
	}
	return nil
}

func (o *rootOptions) close(ctx context.Context) {
	for i := len(o.cleanups) - 1; i >= 0; i-- {
		o.cleanups[i](ctx)
	}
	o.cleanups = nil
}

// augmented loads the schema root and augments it.
func (o *rootOptions) augmented(ctx context.Context) (*augment.Result, error) {
	base, err := source.LoadDir(ctx, o.cfg.Schema.Root)
	if err != nil {
		return nil, commandError("load schema", err)
	}
	res, err := augment.Augment(base)
	if err != nil {
		return nil, failure("augment schema", err)
	}
	return res, nil
}

// connect opens the configured database and returns its entity
// collections. The returned func disconnects.
func (o *rootOptions) connect(ctx context.Context, res *augment.Result) (store.Collections, func(), error) {
	client, err := store.Connect(ctx, o.cfg.Mongo.URI, o.cfg.Mongo.Database)
	if err != nil {
		return nil, nil, failure("connect mongo", err)
	}
	names := make([]string, 0, len(res.Capabilities.Entities))
	for _, e := range res.Capabilities.Entities {
		names = append(names, e.CollectionName)
	}
	disconnect := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("mongo disconnect", "err", err)
		}
	}
	colls := client.Collections(names...)
	slog.DebugContext(ctx, "mongo connected", "database", o.cfg.Mongo.Database, "collections", colls.Names())
	return colls, disconnect, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return commandError("write output", err)
	}
	return nil
}
