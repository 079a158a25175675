package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var importOwner string

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a directory of journal text files",
	Long:  "Imports .txt and .md files whose names contain a date (2024-01-15.txt, diario_15-01-2024.txt) as journal entries. Files without a date, or with fewer than 10 characters, are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importOwner, "owner", "", "owner id")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.attachEmbedder()

	dir := resolveImportDir(args[0])
	results, err := a.engine.ImportEntries(context.Background(), ownerOrDefault(importOwner), dir)
	if err != nil {
		return err
	}

	imported, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "imported":
			imported++
		case "skipped":
			skipped++
			fmt.Printf("skip %s: %s\n", r.File, r.Reason)
		case "failed":
			failed++
			fmt.Printf("fail %s: %s\n", r.File, r.Reason)
		}
	}
	fmt.Printf("imported %d, skipped %d, failed %d\n", imported, skipped, failed)
	return nil
}
