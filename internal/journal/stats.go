package journal

import (
	"strings"
	"time"
)

// Stats summarizes an owner's journal.
type Stats struct {
	TotalEntries  int    `json:"total_entries"`
	TotalWords    int    `json:"total_words"`
	AverageWords  int    `json:"average_words"`
	CurrentStreak int    `json:"current_streak"`
	FirstEntry    string `json:"first_entry,omitempty"`
	LastEntry     string `json:"last_entry,omitempty"`
}

// Stats computes journal statistics for an owner. The streak counts
// consecutive days with an entry ending at today.
func (s *Store) Stats(owner string, today time.Time) (Stats, error) {
	entries, err := s.List(owner, "", "")
	if err != nil {
		return Stats{}, err
	}
	if len(entries) == 0 {
		return Stats{}, nil
	}

	st := Stats{
		TotalEntries: len(entries),
		FirstEntry:   entries[0].Date,
		LastEntry:    entries[len(entries)-1].Date,
	}
	have := make(map[string]bool, len(entries))
	for _, e := range entries {
		st.TotalWords += len(strings.Fields(e.Text))
		have[e.Date] = true
	}
	st.AverageWords = st.TotalWords / st.TotalEntries

	for d := today; have[d.Format(DateFormat)]; d = d.AddDate(0, 0, -1) {
		st.CurrentStreak++
	}
	return st, nil
}
