package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-off question about the indexed course materials",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}

	if _, _, err := a.System.IngestDirectory(ctx, a.Config.DocsDir); err != nil {
		return fmt.Errorf("ingesting %s: %w", a.Config.DocsDir, err)
	}

	question := strings.Join(args, " ")
	answer, err := a.System.Query(ctx, question, "")
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			if src.Link != "" {
				fmt.Printf("  - %s (%s)\n", src.Label, src.Link)
			} else {
				fmt.Printf("  - %s\n", src.Label)
			}
		}
	}
	return nil
}
