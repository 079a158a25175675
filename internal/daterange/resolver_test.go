package daterange

import (
	"testing"
	"time"
)

var today = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) // a Saturday

func resolve(t *testing.T, query string) Range {
	t.Helper()
	r, ok := Resolve(query, today, "it")
	if !ok {
		t.Fatalf("Resolve(%q) found no range", query)
	}
	return r
}

func TestResolveYesterday(t *testing.T) {
	r := resolve(t, "cosa ho fatto ieri?")
	if r.Start != "2024-06-14" || r.End != "2024-06-14" {
		t.Errorf("ieri = %+v, want 2024-06-14", r)
	}
}

func TestResolveToday(t *testing.T) {
	for _, q := range []string{"cosa ho scritto oggi", "stamattina ero stanca"} {
		r := resolve(t, q)
		if r.Start != "2024-06-15" || r.End != "2024-06-15" {
			t.Errorf("%q = %+v, want 2024-06-15", q, r)
		}
	}
}

func TestResolveDayBeforeYesterday(t *testing.T) {
	r := resolve(t, "l'altro ieri sono uscita")
	if r.Start != "2024-06-13" || r.End != "2024-06-13" {
		t.Errorf("l'altro ieri = %+v, want 2024-06-13", r)
	}
}

func TestResolveBareMonth(t *testing.T) {
	r := resolve(t, "quando sono andata al mare a marzo?")
	if r.Start != "2024-03-01" || r.End != "2024-03-31" {
		t.Errorf("a marzo = %+v, want march 2024", r)
	}
}

func TestResolveFutureMonthPreviousYear(t *testing.T) {
	// September has not happened yet in June; resolve to last year's.
	r := resolve(t, "il viaggio di settembre")
	if r.Start != "2023-09-01" || r.End != "2023-09-30" {
		t.Errorf("settembre = %+v, want september 2023", r)
	}
}

func TestResolveMonthWithYear(t *testing.T) {
	r := resolve(t, "le vacanze di agosto 2022")
	if r.Start != "2022-08-01" || r.End != "2022-08-31" {
		t.Errorf("agosto 2022 = %+v", r)
	}
}

func TestResolveMonthWithDay(t *testing.T) {
	r := resolve(t, "cosa ho scritto il 12 marzo")
	if r.Start != "2024-03-12" || r.End != "2024-03-12" {
		t.Errorf("12 marzo = %+v", r)
	}
}

func TestResolveSinceMonth(t *testing.T) {
	r := resolve(t, "tutto quello che ho scritto da marzo")
	if r.Start != "2024-03-01" || r.End != "2024-06-15" {
		t.Errorf("da marzo = %+v, want open-ended to today", r)
	}
}

func TestResolveLastWeek(t *testing.T) {
	// Today is Saturday 2024-06-15; last week is Mon 3rd to Sun 9th.
	r := resolve(t, "la settimana scorsa al lavoro")
	if r.Start != "2024-06-03" || r.End != "2024-06-09" {
		t.Errorf("settimana scorsa = %+v, want mon-sun calendar week", r)
	}
}

func TestResolveThisWeek(t *testing.T) {
	r := resolve(t, "questa settimana sono stata bene")
	if r.Start != "2024-06-10" || r.End != "2024-06-15" {
		t.Errorf("questa settimana = %+v", r)
	}
}

func TestResolveLastMonth(t *testing.T) {
	r := resolve(t, "il mese scorso ho lavorato troppo")
	if r.Start != "2024-05-01" || r.End != "2024-05-31" {
		t.Errorf("mese scorso = %+v", r)
	}
}

func TestResolveLastYear(t *testing.T) {
	r := resolve(t, "l'anno scorso a quest'epoca")
	if r.Start != "2023-01-01" || r.End != "2023-12-31" {
		t.Errorf("anno scorso = %+v", r)
	}
}

func TestResolveExplicitISODate(t *testing.T) {
	r := resolve(t, "rileggi il 2024-02-29")
	if r.Start != "2024-02-29" || r.End != "2024-02-29" {
		t.Errorf("iso date = %+v", r)
	}
}

func TestResolveISOSpan(t *testing.T) {
	r := resolve(t, "tra 2024-01-10 e 2024-01-20")
	if r.Start != "2024-01-10" || r.End != "2024-01-20" {
		t.Errorf("iso span = %+v", r)
	}
}

func TestResolveEnglishCues(t *testing.T) {
	r, ok := Resolve("what did I write yesterday?", today, "en")
	if !ok || r.Start != "2024-06-14" {
		t.Errorf("yesterday = %+v, %v", r, ok)
	}
	r, ok = Resolve("the trip in March", today, "en")
	if !ok || r.Start != "2024-03-01" || r.End != "2024-03-31" {
		t.Errorf("in March = %+v, %v", r, ok)
	}
}

func TestResolveNoCue(t *testing.T) {
	if _, ok := Resolve("quando sono andata al mare con Maria?", today, "it"); ok {
		t.Error("query without temporal cue resolved a range")
	}
}

func TestResolveNoFalseMatchInsideWords(t *testing.T) {
	// "pieri" contains "ieri" but is not a temporal cue.
	if _, ok := Resolve("ho incontrato Pieri al bar", today, "it"); ok {
		t.Error("matched a phrase inside another word")
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: "2024-03-01", End: "2024-03-31"}
	if !r.Contains("2024-03-15") {
		t.Error("date inside range reported outside")
	}
	if r.Contains("2024-04-01") {
		t.Error("date outside range reported inside")
	}
}
