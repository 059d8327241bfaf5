package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/pucktable/internal/report"
)

func newRunCmd() *cobra.Command {
	var (
		opts   report.Options
		plot   bool
		dump   string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the scene and print final transforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !plot {
				opts.Track = ""
			}
			res, err := report.Simulate(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Table(res))
			if p := report.Plot(res, width, height); p != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, p)
			}

			if dump != "" {
				data, err := report.YAML(res)
				if err != nil {
					return err
				}
				if dump == "-" {
					_, err = out.Write(data)
					return err
				}
				if err := os.WriteFile(dump, data, 0o644); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.Duration, "time", 5, "simulated seconds")
	cmd.Flags().Float64Var(&opts.FrameRate, "fps", 60, "loop ticks per simulated second")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the height of the tracked object")
	cmd.Flags().StringVar(&opts.Track, "track", "blue-ring", "object to plot")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 12, "plot height")
	cmd.Flags().StringVar(&dump, "dump", "", "write the final frame as yaml to a file, - for stdout")
	return cmd
}
