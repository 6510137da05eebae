package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/statlab/internal/bank"
)

var importCmd = &cobra.Command{
	Use:   "import <bank.yaml>",
	Short: "Import a question bank file into the corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		file, err := bank.Parse(f)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := bank.NewImporter(st.QuestionRepo(), nil, dryRun).Import(cmd.Context(), file.Questions)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, fl := range rep.Failures {
			fmt.Fprintf(out, "✗ #%d %s\n    %v\n", fl.Index+1, truncate(fl.Text, 60), fl.Err)
		}
		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Fprintf(out, "%s %d of %d questions (%d already present, %d failed)\n",
			verb, rep.Imported, len(file.Questions), rep.Skipped, len(rep.Failures))
		if len(rep.Failures) > 0 && rep.Imported == 0 {
			return fmt.Errorf("no questions imported")
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Validate the file without writing")
}
