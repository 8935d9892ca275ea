package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fdg312/fitplanner/internal/reports"
	"github.com/fdg312/fitplanner/internal/weekplan"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored week schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := openRepository(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			schedule := repo.LoadSchedule(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schedule)
			}

			for _, day := range weekplan.Days {
				data := schedule[day]
				fmt.Fprintf(out, "%s\n", day)
				for _, slot := range data.Meals {
					for _, item := range slot.Meals {
						fmt.Fprintf(out, "  %-15s %s (%s) %s kcal\n", slot.Title, item.Name, item.Quantity, trimFloat(item.Calories))
					}
				}
				for _, ex := range data.Exercises {
					fmt.Fprintf(out, "  %-15s %s %s\n", "Exercise", ex.Name, strings.TrimSpace(ex.Duration+" "+ex.SetsReps))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw schedule as JSON")
	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print per-day nutrition and exercise totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := openRepository(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			summary := weekplan.Summarize(repo.LoadSchedule(cmd.Context()))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DAY\tKCAL\tPROTEIN\tCARBS\tFAT\tEXERCISES\tMINUTES\tDATA")
			incomplete := false
			for _, d := range summary.Days {
				data := "ok"
				if d.MissingData {
					data = "missing"
					incomplete = true
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n", d.Day,
					trimFloat(d.Nutrition.Calories), trimFloat(d.Nutrition.Protein),
					trimFloat(d.Nutrition.Carbs), trimFloat(d.Nutrition.Fat),
					d.ExerciseCount, d.ExerciseMinutes, data)
			}
			week := "ok"
			if incomplete {
				week = "missing"
			}
			fmt.Fprintf(tw, "WEEK\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				trimFloat(summary.Nutrition.Calories), trimFloat(summary.Nutrition.Protein),
				trimFloat(summary.Nutrition.Carbs), trimFloat(summary.Nutrition.Fat),
				summary.ExerciseCount, summary.ExerciseMinutes, week)
			return tw.Flush()
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the stored schedule with an empty week",
		Long:  "Replace the stored schedule with an empty week. The profile and the generated plan are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			repo, closeFn, err := openRepository(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			repo.ResetSchedule(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "schedule reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the schedule as PDF or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := openRepository(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			data, err := reports.NewGenerator().Generate(strings.ToLower(format), repo.LoadSchedule(ctx), repo.LoadProfile(ctx))
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", reports.FormatPDF, "pdf or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0")
}
