package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a user's practice statistics and mastery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.practice.Progress(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		if p.TotalAnswered == 0 && len(p.Mastery) == 0 {
			fmt.Fprintf(out, "No activity recorded for %s.\n", p.UserID)
			return nil
		}

		fmt.Fprintf(out, "User:      %s\n", p.UserID)
		fmt.Fprintf(out, "Answered:  %d (%d correct, %.1f%%)\n", p.TotalAnswered, p.Correct, p.Accuracy*100)
		fmt.Fprintf(out, "Avg time:  %.1fs\n", float64(p.AvgTimeMs)/1000)

		if len(p.Concepts) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%-28s  %5s  %8s  %8s  %-8s  %s\n",
				"Concept", "Total", "Accuracy", "Recent", "Band", "Next")
			fmt.Fprintln(out, strings.Repeat("─", 76))
			for _, c := range p.Concepts {
				fmt.Fprintf(out, "%-28s  %5d  %7.1f%%  %7.1f%%  %-8s  %d\n",
					truncate(c.Concept.String(), 28), c.Total, c.Accuracy*100, c.RecentAccuracy*100,
					c.Band, c.RecommendedDifficulty)
			}
		}

		if len(p.Mastery) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%-28s  %7s  %-9s  %8s  %5s\n",
				"Mastery", "Score", "Level", "Practice", "Chats")
			fmt.Fprintln(out, strings.Repeat("─", 66))
			for _, m := range p.Mastery {
				fmt.Fprintf(out, "%-28s  %7.2f  %-9s  %8d  %5d\n",
					truncate(m.Concept.String(), 28), m.Mastery, m.Level, m.PracticeCount, m.ChatMentions)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the report as JSON")
}
