package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Validate and index a course directory, then print corpus stats",
	Long: `Parses, chunks and embeds every course file in the directory (the
configured docs directory by default). The index is in-memory, so this is
primarily a validation pass: it surfaces malformed documents and reports
what a server start would index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}

	dir := a.Config.DocsDir
	if len(args) == 1 {
		dir = args[0]
	}

	courses, chunks, err := a.System.IngestDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", dir, err)
	}

	st := a.System.Stats()
	fmt.Printf("Indexed %d courses (%d chunks) from %s\n\n", courses, chunks, dir)
	for _, title := range st.CourseTitles {
		fmt.Printf("  - %s\n", title)
	}
	return nil
}
