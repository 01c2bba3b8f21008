package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 || days > 366 {
			return fmt.Errorf("--days must be between 1 and 366")
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		logs := s.StudyLogRepo()
		now := time.Now()

		o, err := logs.Overview(ctx, now)
		if err != nil {
			return fmt.Errorf("query overview: %w", err)
		}
		daily, err := logs.Daily(ctx, now, days)
		if err != nil {
			return fmt.Errorf("query daily counts: %w", err)
		}
		tags, err := logs.TagAverages(ctx)
		if err != nil {
			return fmt.Errorf("query tag averages: %w", err)
		}
		dist, err := logs.ProficiencyDistribution(ctx)
		if err != nil {
			return fmt.Errorf("query distribution: %w", err)
		}

		out := cmd.OutOrStdout()
		rule := strings.Repeat("─", 48)

		accuracy := "-"
		if o.RecentAccuracy != nil {
			accuracy = fmt.Sprintf("%d%%", *o.RecentAccuracy)
		}
		fmt.Fprintln(out, "Overview")
		fmt.Fprintln(out, rule)
		fmt.Fprintf(out, "Terms registered:   %d\n", o.TotalTerms)
		fmt.Fprintf(out, "Answers recorded:   %d\n", o.TotalStudied)
		fmt.Fprintf(out, "7-day accuracy:     %s\n", accuracy)

		fmt.Fprintf(out, "\nLast %d days\n", days)
		fmt.Fprintln(out, rule)
		for _, d := range daily {
			fmt.Fprintf(out, "%s  %4d answered  %4d correct  %s\n",
				d.Day, d.Total, d.Correct, strings.Repeat("▪", min(d.Total, 20)))
		}

		if len(tags) > 0 {
			fmt.Fprintln(out, "\nProficiency by tag")
			fmt.Fprintln(out, rule)
			for _, t := range tags {
				fmt.Fprintf(out, "%-24s  %6.1f  (%d terms)\n", truncate(t.Tag, 24), t.AvgProficiency, t.Count)
			}
		}

		fmt.Fprintln(out, "\nDistribution")
		fmt.Fprintln(out, rule)
		fmt.Fprintf(out, "low  (<40)    %d\n", dist.Low)
		fmt.Fprintf(out, "mid  (40-69)  %d\n", dist.Mid)
		fmt.Fprintf(out, "high (>=70)   %d\n", dist.High)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", 14, "Number of days in the daily breakdown")
}
