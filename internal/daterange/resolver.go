// Package daterange parses the natural-language temporal cues that
// show up in journal queries ("a marzo", "ieri", "since March") into
// concrete inclusive date ranges. When no cue is recognized the
// resolver reports no range, which callers must treat as "no date
// restriction", not as an error.
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cristal-orion/Reminor/internal/lang"
)

const dateFormat = "2006-01-02"

// Range is an inclusive calendar-date span.
type Range struct {
	Start string
	End   string
}

// Contains reports whether an ISO date falls inside the range.
func (r Range) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

func day(t time.Time) string {
	return t.Format(dateFormat)
}

func singleDay(t time.Time) Range {
	d := day(t)
	return Range{Start: d, End: d}
}

func monthRange(year int, m time.Month) Range {
	start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Range{Start: day(start), End: day(end)}
}

var (
	isoDate    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	yearNumber = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	dayNumber  = regexp.MustCompile(`\b([0-3]?\d)\b`)
)

// Resolve extracts a date range from a query. today anchors relative
// expressions; langTag selects the phrase table, though both Italian
// and English cues are always recognized. The second return value is
// false when the query carries no temporal cue.
func Resolve(query string, today time.Time, langTag string) (Range, bool) {
	q := " " + foldQuery(query) + " "

	// Explicit ISO dates win over everything else. Two dates make a span.
	if m := isoDate.FindAllString(q, -1); len(m) > 0 {
		if valid(m[0]) {
			r := Range{Start: m[0], End: m[0]}
			if len(m) > 1 && valid(m[1]) {
				if m[1] < r.Start {
					r = Range{Start: m[1], End: m[0]}
				} else {
					r.End = m[1]
				}
			}
			return r, true
		}
	}

	// Relative day expressions.
	switch {
	case hasPhrase(q, "l altro ieri", "the day before yesterday"):
		return singleDay(today.AddDate(0, 0, -2)), true
	case hasPhrase(q, "ieri", "yesterday"):
		return singleDay(today.AddDate(0, 0, -1)), true
	case hasPhrase(q, "oggi", "stamattina", "stasera", "stanotte", "today", "tonight", "this morning"):
		return singleDay(today), true
	}

	// Relative week / month / year.
	if hasPhrase(q, "la settimana scorsa", "settimana scorsa", "last week") {
		return lastCalendarWeek(today), true
	}
	if hasPhrase(q, "questa settimana", "this week") {
		return thisCalendarWeek(today), true
	}
	if hasPhrase(q, "il mese scorso", "mese scorso", "last month") {
		prev := today.AddDate(0, -1, 0)
		return monthRange(prev.Year(), prev.Month()), true
	}
	if hasPhrase(q, "questo mese", "this month") {
		return monthRange(today.Year(), today.Month()), true
	}
	if hasPhrase(q, "l anno scorso", "anno scorso", "last year") {
		y := today.Year() - 1
		return Range{Start: fmt.Sprintf("%04d-01-01", y), End: fmt.Sprintf("%04d-12-31", y)}, true
	}
	if hasPhrase(q, "quest anno", "this year") {
		return Range{Start: fmt.Sprintf("%04d-01-01", today.Year()), End: day(today)}, true
	}

	// Month-name expressions, in the query language first, then the other.
	months := lang.Months(langTag)
	for name, m := range months {
		if r, ok := resolveMonth(q, name, m, today); ok {
			return r, true
		}
	}
	other := lang.Months(otherLang(langTag))
	for name, m := range other {
		if r, ok := resolveMonth(q, name, m, today); ok {
			return r, true
		}
	}

	return Range{}, false
}

func otherLang(tag string) string {
	if lang.Normalize(tag) == "en" {
		return "it"
	}
	return "en"
}

// resolveMonth handles "a marzo", "in March", "12 marzo", "march 12",
// "marzo 2023", and open-ended "da marzo" / "since March".
func resolveMonth(q, name string, m time.Month, today time.Time) (Range, bool) {
	idx := phraseIndex(q, name)
	if idx < 0 {
		return Range{}, false
	}

	// Explicit year next to the month name pins the occurrence.
	year := 0
	window := contextWindow(q, idx, len(name))
	if ym := yearNumber.FindString(window); ym != "" {
		year, _ = strconv.Atoi(ym)
	}
	if year == 0 {
		// Bare month: most recent occurrence not in the future.
		year = today.Year()
		if m > today.Month() {
			year--
		}
	}

	r := monthRange(year, m)

	// Day-of-month adjacent to the name narrows to a single day:
	// "il 12 marzo" / "march 12".
	if dm := dayNumber.FindString(window); dm != "" {
		if d, err := strconv.Atoi(dm); err == nil && d >= 1 && d <= 31 {
			candidate := fmt.Sprintf("%04d-%02d-%02d", year, int(m), d)
			if valid(candidate) {
				return Range{Start: candidate, End: candidate}, true
			}
		}
	}

	// Open-ended: "da marzo" / "since March" runs to today.
	before := q[:idx]
	if strings.HasSuffix(before, " da ") || strings.HasSuffix(before, " since ") || strings.HasSuffix(before, " from ") {
		if r.Start <= day(today) {
			r.End = day(today)
			return r, true
		}
	}

	return r, true
}

// contextWindow returns the text immediately around a month name,
// where a day or year qualifier would sit.
func contextWindow(q string, idx, nameLen int) string {
	start := idx - 8
	if start < 0 {
		start = 0
	}
	end := idx + nameLen + 8
	if end > len(q) {
		end = len(q)
	}
	return q[start:end]
}

// lastCalendarWeek returns the previous Monday-to-Sunday week.
func lastCalendarWeek(today time.Time) Range {
	monday := startOfWeek(today).AddDate(0, 0, -7)
	return Range{Start: day(monday), End: day(monday.AddDate(0, 0, 6))}
}

func thisCalendarWeek(today time.Time) Range {
	monday := startOfWeek(today)
	return Range{Start: day(monday), End: day(today)}
}

func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday closes the week
	}
	return t.AddDate(0, 0, -(wd - 1))
}

func valid(date string) bool {
	_, err := time.Parse(dateFormat, date)
	return err == nil
}

// foldQuery lowercases and strips the apostrophes and accents that
// vary across keyboards ("l'altro ieri", "perché").
func foldQuery(query string) string {
	q := strings.ToLower(query)
	q = strings.NewReplacer("'", " ", "’", " ").Replace(q)
	var b strings.Builder
	for _, r := range q {
		switch r {
		case 'à', 'á':
			b.WriteRune('a')
		case 'è', 'é':
			b.WriteRune('e')
		case 'ì', 'í':
			b.WriteRune('i')
		case 'ò', 'ó':
			b.WriteRune('o')
		case 'ù', 'ú':
			b.WriteRune('u')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasPhrase(q string, phrases ...string) bool {
	for _, p := range phrases {
		if phraseIndex(q, p) >= 0 {
			return true
		}
	}
	return false
}

// phraseIndex finds a phrase on word boundaries, or -1.
func phraseIndex(q, phrase string) int {
	idx := strings.Index(q, " "+phrase+" ")
	if idx < 0 {
		// also match at punctuation-stripped boundaries
		for _, suffix := range []string{"?", "!", ".", ","} {
			if i := strings.Index(q, " "+phrase+suffix); i >= 0 {
				return i + 1
			}
		}
		return -1
	}
	return idx + 1
}
