package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rebuildOwner string

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild all indexes from the journal files",
	Long:  "Recomputes entity, keyword and semantic indexes from the entry files. Safe to interrupt: progress is checkpointed and a rerun resumes where it stopped.",
	RunE:  runRebuild,
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildOwner, "owner", "", "owner id")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	embedderLabel := a.attachEmbedder()
	fmt.Fprintf(os.Stderr, "embedder: %s\n", embedderLabel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	n, err := a.engine.Rebuild(ctx, ownerOrDefault(rebuildOwner))
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "interrupted after %d entries; rerun to resume\n", n)
			return nil
		}
		return err
	}
	fmt.Printf("rebuilt %d entries\n", n)
	return nil
}
