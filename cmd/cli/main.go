package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transportcore/adapters/xsstore"
	"transportcore/domain/mgxs"
	"transportcore/internal"
	"transportcore/internal/config"
	"transportcore/internal/errors"
	"transportcore/ports"
)

// runtime is shared by every subcommand
type runtime struct {
	cfg    *config.Config
	logger *internal.Logger
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}

func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.Classify(err), err)
		return errors.ExitCode(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "transportcore",
		Short:         "Source sampling and multigroup cross-section tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			level, _ := internal.ParseLogLevel(cfg.Log.Level)
			rt.cfg = cfg
			rt.logger = internal.NewLoggerTo(cmd.ErrOrStderr(), level)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file read before the environment")

	rootCmd.AddCommand(
		newSampleCmd(rt),
		newImportCmd(rt),
		newListCmd(rt),
		newCombineCmd(rt),
	)
	return rootCmd
}

// openStore connects to the configured cross-section store
func (rt *runtime) openStore(ctx context.Context) (*xsstore.SQLStore, error) {
	store, err := xsstore.Open(ctx, rt.cfg.Store.Driver, rt.cfg.Store.DSN)
	if err != nil {
		return nil, errors.DatabaseError("failed to open cross-section store", err)
	}
	return store, nil
}

// ingestOptions maps the library configuration onto ingestion options
func (rt *runtime) ingestOptions() mgxs.IngestOptions {
	opts := mgxs.DefaultIngestOptions()
	lc := rt.cfg.Library
	opts.ScatterFormat, _ = ports.ParseScatterFormat(lc.ScatterFormat)
	opts.FinalScatterFormat, _ = ports.ParseScatterFormat(lc.FinalScatterFormat)
	opts.MaxOrder = lc.MaxOrder
	opts.TabularPoints = lc.TabularPoints
	opts.IsIsotropic = lc.Isotropic
	return opts
}
