// Package journal is the entry store: the durable, authoritative
// mapping from (owner, date) to entry text. Entries live as plain UTF-8
// text files, one per date, under each owner's journal directory. Every
// index the engine keeps is derived from this package and can be
// rebuilt from it.
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when no entry exists for a date. Absence is a
// normal condition, not an infrastructure error.
var ErrNotFound = errors.New("journal: entry not found")

// DateFormat is the canonical calendar-date key format.
const DateFormat = "2006-01-02"

// Entry is one dated journal entry.
type Entry struct {
	Date string
	Text string
}

// Store reads and writes entry files under a data directory.
// Layout: <dataDir>/<owner>/journal/<date>.txt
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DefaultDataDir returns the default data root: ~/.reminor
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".reminor"), nil
}

// Dir returns the journal directory for an owner.
func (s *Store) Dir(owner string) string {
	return filepath.Join(s.dataDir, owner, "journal")
}

func (s *Store) entryPath(owner, date string) string {
	return filepath.Join(s.Dir(owner), date+".txt")
}

// ValidOwner reports whether an owner ID is usable as a directory name.
func ValidOwner(owner string) bool {
	return owner != "" && !strings.ContainsAny(owner, "/\\") && owner != "." && owner != ".."
}

// ValidDate reports whether date is a real calendar date in YYYY-MM-DD form.
func ValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// Put writes an entry, replacing any previous text for the same date.
// The write is a temp-file rename, so readers never observe a torn
// entry. Last writer wins.
func (s *Store) Put(owner, date, text string) error {
	if !ValidOwner(owner) {
		return fmt.Errorf("invalid owner %q", owner)
	}
	if !ValidDate(date) {
		return fmt.Errorf("invalid date %q", date)
	}

	dir := s.Dir(owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+date+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close entry: %w", err)
	}
	if err := os.Rename(tmpPath, s.entryPath(owner, date)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace entry: %w", err)
	}
	return nil
}

// Get returns the entry text for a date, or ErrNotFound.
func (s *Store) Get(owner, date string) (string, error) {
	if !ValidOwner(owner) {
		return "", fmt.Errorf("invalid owner %q", owner)
	}
	data, err := os.ReadFile(s.entryPath(owner, date))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read entry: %w", err)
	}
	return string(data), nil
}

// List returns entries in [from, to] inclusive, ordered by date
// ascending. Empty bounds mean unbounded.
func (s *Store) List(owner, from, to string) ([]Entry, error) {
	dates, err := s.Dates(owner, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dates))
	for _, d := range dates {
		text, err := s.Get(owner, d)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // deleted out from under us; skip
			}
			return nil, err
		}
		entries = append(entries, Entry{Date: d, Text: text})
	}
	return entries, nil
}

// Owners lists the owner IDs that have a journal directory.
func (s *Store) Owners() ([]string, error) {
	names, err := os.ReadDir(s.dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var owners []string
	for _, de := range names {
		if !de.IsDir() || !ValidOwner(de.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dataDir, de.Name(), "journal")); err != nil {
			continue
		}
		owners = append(owners, de.Name())
	}
	sort.Strings(owners)
	return owners, nil
}

// Dates returns the dates with entries in [from, to], ascending.
func (s *Store) Dates(owner, from, to string) ([]string, error) {
	if !ValidOwner(owner) {
		return nil, fmt.Errorf("invalid owner %q", owner)
	}

	names, err := os.ReadDir(s.Dir(owner))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal dir: %w", err)
	}

	var dates []string
	for _, de := range names {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".txt") || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		date := strings.TrimSuffix(de.Name(), ".txt")
		if !ValidDate(date) {
			continue
		}
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

var (
	isoDatePattern = regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})`)
	dmyDatePattern = regexp.MustCompile(`(\d{2})[-_](\d{2})[-_](\d{4})`)
)

// ParseFilenameDate extracts a date from an imported filename.
// Accepts 2024-01-15.txt, 2024_01_15.txt, 15-01-2024.txt and
// prefixed variants like diario_2024-01-15.txt.
func ParseFilenameDate(filename string) (string, bool) {
	if m := isoDatePattern.FindStringSubmatch(filename); m != nil {
		date := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		if ValidDate(date) {
			return date, true
		}
	}
	if m := dmyDatePattern.FindStringSubmatch(filename); m != nil {
		date := fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
		if ValidDate(date) {
			return date, true
		}
	}
	return "", false
}
