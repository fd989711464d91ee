package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transportcore/adapters/xsstore"
	"transportcore/app"
	"transportcore/internal/errors"
)

func newImportCmd(rt *runtime) *cobra.Command {
	var file, name string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON cross-section library into the store",
		Long: `Decode a JSON library, check that every entry ingests, and save it.

Example: transportcore import --library endf.json --name endf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read library: %w", err))
			}
			root, err := xsstore.DecodeJSON(data)
			if err != nil {
				return errors.Wrapf(err, "failed to decode %s", file)
			}
			lib, err := app.BuildLibrary(name, root, rt.ingestOptions())
			if err != nil {
				return err
			}

			store, err := rt.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveGroup(cmd.Context(), name, root); err != nil {
				return err
			}
			rt.logger.Info("[Import] saved library %s (%d entries)", name, len(lib.Names()))
			for _, n := range lib.Names() {
				e, _ := lib.Entry(n)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d groups, kT=%v\n", n, e.Dims.Groups, e.Temperatures)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "library", "", "Library file (JSON)")
	cmd.Flags().StringVar(&name, "name", "", "Library name in the store")
	_ = cmd.MarkFlagRequired("library")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list [library]",
		Short: "List stored libraries, or the groups of one library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rt.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			var names []string
			if len(args) == 0 {
				names, err = store.ListLibraries(cmd.Context())
			} else {
				names, err = store.ListGroups(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
