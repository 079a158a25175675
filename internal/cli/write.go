package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristal-orion/Reminor/internal/journal"
)

var (
	writeOwner string
	writeDate  string
)

var writeCmd = &cobra.Command{
	Use:   "write [text]",
	Short: "Write or replace a journal entry",
	Long:  "Writes the entry for a date (today by default) and reindexes it. Text comes from the argument or from stdin when piped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writeOwner, "owner", "", "owner id")
	writeCmd.Flags().StringVar(&writeDate, "date", "", "entry date (YYYY-MM-DD, default today)")
}

func runWrite(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty entry text")
	}

	date := writeDate
	if date == "" {
		date = time.Now().Format(journal.DateFormat)
	}
	if !journal.ValidDate(date) {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.attachEmbedder()

	if err := a.engine.WriteEntry(context.Background(), ownerOrDefault(writeOwner), date, text); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d chars)\n", date, len(text))
	return nil
}
