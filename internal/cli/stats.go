package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsOwner string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsOwner, "owner", "", "owner id")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	owner := ownerOrDefault(statsOwner)
	st, err := a.journal.Stats(owner, time.Now())
	if err != nil {
		return err
	}
	gaps, err := a.db.SemanticGaps(owner)
	if err != nil {
		return err
	}

	fmt.Printf("entries:        %d\n", st.TotalEntries)
	fmt.Printf("words:          %d\n", st.TotalWords)
	fmt.Printf("avg words:      %d\n", st.AverageWords)
	fmt.Printf("streak:         %d days\n", st.CurrentStreak)
	if st.FirstEntry != "" {
		fmt.Printf("first entry:    %s\n", st.FirstEntry)
		fmt.Printf("last entry:     %s\n", st.LastEntry)
	}
	if len(gaps) > 0 {
		fmt.Printf("semantic gaps:  %d (run rebuild with an embedder available)\n", len(gaps))
	}
	return nil
}
