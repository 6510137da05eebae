package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/statlab/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Show the next practice target for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.recommender.Recommend(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printRecommendation(out, rec)
		return nil
	},
}

func printRecommendation(w io.Writer, rec recommend.Recommendation) {
	target := "any concept"
	if rec.HasConcept() {
		target = rec.Concept.String()
	}
	fmt.Fprintf(w, "Category:   %s\n", rec.Category)
	fmt.Fprintf(w, "Concept:    %s\n", target)
	fmt.Fprintf(w, "Difficulty: %d\n", rec.Difficulty)
	fmt.Fprintf(w, "Answered:   %d\n", rec.TotalAnswered)
	fmt.Fprintf(w, "Why:        %s\n", rec.Rationale)
	if rec.Explored {
		fmt.Fprintln(w, "            (exploring a random concept)")
	}
	for _, r := range rec.WeakConcepts {
		fmt.Fprintf(w, "  weak    %-28s %5.1f%% of %d\n", r.Concept, r.Accuracy*100, r.Total)
	}
	for _, r := range rec.StrongConcepts {
		fmt.Fprintf(w, "  strong  %-28s %5.1f%% of %d\n", r.Concept, r.Accuracy*100, r.Total)
	}
}

func init() {
	recommendCmd.Flags().Bool("json", false, "Print the recommendation as JSON")
}
