package index

import (
	"math"
	"testing"
)

func seedPostings(t *testing.T, db *DB, owner, date string, entities map[string]int, lexical map[string]int, total int) {
	t.Helper()
	err := db.SwapPostings(owner, date, EntryPostings{
		Entities:    entities,
		Lexical:     lexical,
		TokenCount:  total,
		ContentHash: "hash-" + date,
	})
	if err != nil {
		t.Fatalf("SwapPostings %s: %v", date, err)
	}
}

func TestSwapPostingsReplaces(t *testing.T) {
	db := testDB(t)

	seedPostings(t, db, "anna", "2024-06-01",
		map[string]int{"maria": 2}, map[string]int{"mare": 3}, 50)
	seedPostings(t, db, "anna", "2024-06-01",
		map[string]int{"luca": 1}, map[string]int{"montagna": 1}, 40)

	dates, err := db.EntityDates("anna", "maria")
	if err != nil {
		t.Fatalf("EntityDates: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("old entity survived swap: %v", dates)
	}

	dates, err = db.EntityDates("anna", "luca")
	if err != nil {
		t.Fatalf("EntityDates: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2024-06-01" {
		t.Errorf("EntityDates(luca) = %v, want [2024-06-01]", dates)
	}
}

func TestSwapPostingsIdempotent(t *testing.T) {
	db := testDB(t)

	p := EntryPostings{
		Entities:    map[string]int{"maria": 1},
		Lexical:     map[string]int{"mare": 2, "spiaggia": 1},
		TokenCount:  30,
		ContentHash: "abc",
	}
	if err := db.SwapPostings("anna", "2024-06-01", p); err != nil {
		t.Fatalf("first swap: %v", err)
	}
	if err := db.SwapPostings("anna", "2024-06-01", p); err != nil {
		t.Fatalf("second swap: %v", err)
	}

	var n int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM lexical_postings WHERE owner = 'anna' AND date = '2024-06-01'`,
	).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("lexical postings = %d, want 2", n)
	}
}

func TestEntityDatesNewestFirst(t *testing.T) {
	db := testDB(t)

	seedPostings(t, db, "anna", "2024-03-10", map[string]int{"maria": 1}, nil, 20)
	seedPostings(t, db, "anna", "2024-06-01", map[string]int{"maria": 1}, nil, 20)
	seedPostings(t, db, "anna", "2024-01-05", map[string]int{"maria": 1}, nil, 20)

	dates, err := db.EntityDates("anna", "maria")
	if err != nil {
		t.Fatalf("EntityDates: %v", err)
	}
	want := []string{"2024-06-01", "2024-03-10", "2024-01-05"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestEntityHitsCountsMatchedTokens(t *testing.T) {
	db := testDB(t)

	seedPostings(t, db, "anna", "2024-06-01",
		map[string]int{"maria": 1, "luca": 2}, nil, 20)
	seedPostings(t, db, "anna", "2024-06-02",
		map[string]int{"maria": 1}, nil, 20)

	hits, err := db.EntityHits("anna", []string{"maria", "luca"}, "", "")
	if err != nil {
		t.Fatalf("EntityHits: %v", err)
	}
	if hits["2024-06-01"] != 2 {
		t.Errorf("hits for 2024-06-01 = %d, want 2", hits["2024-06-01"])
	}
	if hits["2024-06-02"] != 1 {
		t.Errorf("hits for 2024-06-02 = %d, want 1", hits["2024-06-02"])
	}
}

func TestEntityHitsDateRange(t *testing.T) {
	db := testDB(t)

	seedPostings(t, db, "anna", "2024-03-10", map[string]int{"maria": 1}, nil, 20)
	seedPostings(t, db, "anna", "2024-06-01", map[string]int{"maria": 1}, nil, 20)

	hits, err := db.EntityHits("anna", []string{"maria"}, "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("EntityHits: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %v, want only march", hits)
	}
	if _, ok := hits["2024-03-10"]; !ok {
		t.Error("march date missing from range-filtered hits")
	}
}

func TestEntityHitsOwnerIsolation(t *testing.T) {
	db := testDB(t)

	seedPostings(t, db, "anna", "2024-06-01", map[string]int{"maria": 1}, nil, 20)
	seedPostings(t, db, "bruno", "2024-06-02", map[string]int{"maria": 1}, nil, 20)

	hits, err := db.EntityHits("anna", []string{"maria"}, "", "")
	if err != nil {
		t.Fatalf("EntityHits: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("owner leak: %v", hits)
	}
	if _, ok := hits["2024-06-02"]; ok {
		t.Error("saw another owner's postings")
	}
}

func TestLexicalScoresLengthNormalized(t *testing.T) {
	db := testDB(t)

	// Same tf, very different entry lengths: the short entry wins.
	seedPostings(t, db, "anna", "2024-06-01", nil, map[string]int{"mare": 3}, 30)
	seedPostings(t, db, "anna", "2024-06-02", nil, map[string]int{"mare": 3}, 3000)

	scores, err := db.LexicalScores("anna", []string{"mare"}, "", "")
	if err != nil {
		t.Fatalf("LexicalScores: %v", err)
	}
	if scores["2024-06-01"] <= scores["2024-06-02"] {
		t.Errorf("short entry %.3f should outscore long entry %.3f",
			scores["2024-06-01"], scores["2024-06-02"])
	}
}

func TestLengthNormalized(t *testing.T) {
	if got := lengthNormalized(0, 100); got != 0 {
		t.Errorf("zero tf = %f, want 0", got)
	}
	got := lengthNormalized(4, 100)
	want := 4 / math.Log(101)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("lengthNormalized(4, 100) = %f, want %f", got, want)
	}
	// Tiny entries must not blow the score up via a sub-1 denominator.
	if got := lengthNormalized(2, 1); got > 2 {
		t.Errorf("score %f exceeds raw tf sum for tiny entry", got)
	}
}

func TestRemovePostings(t *testing.T) {
	db := testDB(t)

	seedPostings(t, db, "anna", "2024-06-01",
		map[string]int{"maria": 1}, map[string]int{"mare": 1}, 20)
	if err := db.RemovePostings("anna", "2024-06-01"); err != nil {
		t.Fatalf("RemovePostings: %v", err)
	}

	hits, _ := db.EntityHits("anna", []string{"maria"}, "", "")
	if len(hits) != 0 {
		t.Errorf("entity postings survived removal: %v", hits)
	}
	scores, _ := db.LexicalScores("anna", []string{"mare"}, "", "")
	if len(scores) != 0 {
		t.Errorf("lexical postings survived removal: %v", scores)
	}
}
