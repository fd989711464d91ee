package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"transportcore/app"
	"transportcore/domain/core"
	"transportcore/domain/mgxs"
)

func newCombineCmd(rt *runtime) *cobra.Command {
	var library, method string
	var entries []string
	var kT float64
	var skipValidate bool

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Homogenize library entries weighted by atom density",
		Long: `Evaluate each entry at a temperature and combine them by density.

Example: transportcore combine --library endf --entry uo2:0.0223 --entry h2o:0.0334 --kT 0.0253`,
		RunE: func(cmd *cobra.Command, args []string) error {
			composition, err := parseComposition(entries)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("method") {
				method = rt.cfg.Library.TemperatureMethod
			}
			m, err := app.ParseTemperatureMethod(method)
			if err != nil {
				return err
			}

			store, err := rt.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			lib, err := app.LoadLibrary(cmd.Context(), store, library, rt.ingestOptions())
			if err != nil {
				return err
			}

			h := app.NewHomogenizer(lib, m, rt.cfg.Library.TemperatureTolerance, rt.logger)
			x, err := h.Macroscopic(cmd.Context(), composition, kT)
			if err != nil {
				return err
			}
			if !skipValidate {
				if err := mgxs.ValidateWithin(x, rt.cfg.Tolerance.Numeric()); err != nil {
					return err
				}
			}
			printGroups(cmd.OutOrStdout(), x)
			return nil
		},
	}
	cmd.Flags().StringVar(&library, "library", "", "Library name in the store")
	cmd.Flags().StringArrayVar(&entries, "entry", nil, "Constituent as name:density (repeatable)")
	cmd.Flags().Float64Var(&kT, "kT", 0.0253, "Temperature in eV")
	cmd.Flags().StringVar(&method, "method", "nearest", "Temperature method: nearest or interpolation")
	cmd.Flags().BoolVar(&skipValidate, "no-validate", false, "Skip the consistency check of the result")
	_ = cmd.MarkFlagRequired("library")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func parseComposition(entries []string) ([]app.Constituent, error) {
	out := make([]app.Constituent, 0, len(entries))
	for _, e := range entries {
		name, density, ok := strings.Cut(e, ":")
		if !ok {
			return nil, core.NewConfigurationError("entry %q is not name:density", e)
		}
		d, err := strconv.ParseFloat(density, 64)
		if err != nil {
			return nil, core.NewConfigurationError("entry %q has a bad density: %v", e, err)
		}
		out = append(out, app.Constituent{Entry: strings.TrimSpace(name), Density: d})
	}
	return out, nil
}

func printGroups(w io.Writer, x *mgxs.XsData) {
	fmt.Fprintf(w, "%-6s %-5s %12s %12s %12s %12s\n", "angle", "group", "total", "absorption", "scatter", "nu-fission")
	for a := 0; a < x.Angles(); a++ {
		for g := 0; g < x.Groups; g++ {
			nu := 0.0
			if x.Fissionable {
				nu = x.NuFission[a][g]
			}
			fmt.Fprintf(w, "%-6d %-5d %12.6g %12.6g %12.6g %12.6g\n",
				a, g+1, x.Total[a][g], x.Absorption[a][g], x.Scatter[a].ScatterXS(g), nu)
		}
	}
}
