package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/meshstep/pkg/config"
	"github.com/chazu/meshstep/pkg/tessellate"
)

func analyzeCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <mesh.stl>",
		Short: "Print mesh statistics and feature hints as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ro, func(a *App) error {
				res, err := a.Analyze(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func convertCmd(ro *rootOptions) *cobra.Command {
	var strategyPath string
	var mode string
	var out string

	c := &cobra.Command{
		Use:   "convert <mesh.stl>",
		Short: "Convert a mesh into a STEP file and explanation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ParseMode(mode)
			if err != nil {
				return err
			}
			outDir := func(cfg *config.Config) {
				if out != "" {
					cfg.OutputDir = out
				}
			}
			return withApp(ro, func(a *App) error {
				res, err := a.Convert(args[0], ConvertOptions{StrategyPath: strategyPath, Mode: m})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "run:     %s\n", res.Record.ID)
				fmt.Fprintf(w, "step:    %s\n", res.Record.StepPath)
				fmt.Fprintf(w, "report:  %s\n", res.Record.ReportPath)
				fmt.Fprintf(w, "shape:   %s\n", res.Strategy.DetectedShape)
				for _, be := range res.Skipped {
					fmt.Fprintf(w, "skipped: %s\n", be.Error())
				}
				if n := len(res.Validation.Warnings); n > 0 {
					fmt.Fprintf(w, "warnings: %d\n", n)
				}
				return nil
			}, outDir)
		},
	}

	c.Flags().StringVarP(&strategyPath, "strategy", "s", "", "Strategy file (.lisp, .zy, .json, .yaml); planned from the mesh if omitted")
	c.Flags().StringVarP(&mode, "mode", "m", string(ModeMesh), "Output mode: mesh, strategy or hybrid")
	c.Flags().StringVarP(&out, "out", "o", "", "Output directory (overrides config)")
	return c
}

func sampleCmd(ro *rootOptions) *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "sample <box|cylinder|sphere>...",
		Short: "Write a sample STL generated with the sdfx kernel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shapes := make([]tessellate.Shape, 0, len(args))
			for _, arg := range args {
				sh, err := tessellate.ParseShape(arg)
				if err != nil {
					return err
				}
				shapes = append(shapes, sh)
			}
			return withApp(ro, func(a *App) error {
				m, err := a.Sample(shapes, out)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d vertices, %d triangles\n", out, m.VertexCount(), m.TriangleCount())
				return nil
			})
		},
	}

	c.Flags().StringVarP(&out, "output", "o", "sample.stl", "Output STL path")
	return c
}

func historyCmd(ro *rootOptions) *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past conversions, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ro, func(a *App) error {
				w := cmd.OutOrStdout()
				if len(args) == 1 {
					rec, err := a.store.Find(args[0])
					if err != nil {
						return err
					}
					return writeJSON(w, rec)
				}

				records, err := a.History()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(w, records)
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tTIME\tFILE\tPLANES\tCYLINDERS\tSTATUS")
				for _, r := range records {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
						r.ID, r.Date, r.Time, r.FileName, r.PlanarSurfaces, r.CylindricalFeatures, r.Status)
				}
				return tw.Flush()
			})
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return c
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
