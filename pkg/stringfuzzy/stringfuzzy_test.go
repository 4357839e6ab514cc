package stringfuzzy

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func sum(scores []float64) float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	return total
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// S1: subset-of-admissible-candidates, banned exclusions, top candidate.
func TestScenarioS1(t *testing.T) {
	e := New(2, 5, 10, false)
	e.Train([]string{"apple", "applet", "application", "banana", "band", "bandana"})
	e.Search("appl")

	allowed := map[string]bool{"apple": true, "applet": true, "application": true}
	banned := []string{"banana", "band", "bandana"}

	values := e.GetValueArray()
	if len(values) == 0 {
		t.Fatalf("expected at least one match")
	}
	for _, v := range values {
		if !allowed[v] {
			t.Fatalf("got unexpected match %q, want subset of %v", v, allowed)
		}
	}
	for _, b := range banned {
		if contains(values, b) {
			t.Fatalf("banned candidate %q appeared in results", b)
		}
	}
	if top := values[0]; top != "apple" {
		t.Fatalf("expected top match to be %q, got %q", "apple", top)
	}
}

// S2: exact match short-circuit.
func TestScenarioS2(t *testing.T) {
	e := New(2, 5, 10, false)
	e.Train([]string{"apple", "applet", "application", "banana", "band", "bandana"})
	e.Search("apple")

	entries := e.GetResultArray()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry on exact match, got %d", len(entries))
	}
	if entries[0].Value != "apple" || entries[0].Score != 1 {
		t.Fatalf("got %+v, want value=apple score=1", entries[0])
	}
}

// S6: cap-on-creation policy with a saturated shared gram.
func TestScenarioS6CapPolicy(t *testing.T) {
	e := New(2, 5, 2, false)
	corpus := make([]string, 10)
	for i := range corpus {
		corpus[i] = fmt.Sprintf("xy%02d", i)
	}
	e.Train(corpus)
	e.Search("xy0")

	entries := e.GetResultArray()
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 entries under max_results=2, got %d", len(entries))
	}
}

// Invariant 2: finalize respects max_results and descending sort order.
func TestInvariantFinalizeBoundAndSorted(t *testing.T) {
	e := New(2, 4, 3, false)
	e.Train([]string{"alpha", "alphabet", "alphanumeric", "alphorn", "album"})
	e.Search("alph")

	scores := e.GetScoreArray()
	if len(scores) > 3 {
		t.Fatalf("expected at most 3 entries, got %d", len(scores))
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Fatalf("scores not descending: %v", scores)
		}
	}
}

// Invariant 3 & 4: strengths sum to 1, exact match concentrates all weight.
func TestInvariantStrengthsSumToOne(t *testing.T) {
	e := New(2, 5, 10, false)
	e.Train([]string{"apple", "applet", "application"})
	e.Search("appl")

	scores := e.GetScoreArray()
	if len(scores) == 0 {
		t.Fatalf("expected results")
	}
	if got := sum(scores); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected strengths to sum to 1, got %f", got)
	}

	e.Search("apple")
	entries := e.GetResultArray()
	exactCount := 0
	for _, entry := range entries {
		if entry.Score == 1 {
			exactCount++
		} else if entry.Score != 0 {
			t.Fatalf("expected non-exact entries to have score 0 on exact match, got %f", entry.Score)
		}
	}
	if exactCount != 1 {
		t.Fatalf("expected exactly one entry with score 1, got %d", exactCount)
	}
}

// Invariant 6: every posting's gram is a substring of its source.
func TestInvariantPostingSoundness(t *testing.T) {
	e := New(2, 4, 10, false)
	e.Train([]string{"apple", "applet", "banana"})
	model := e.Export()
	for gram, sources := range model.NGramDict {
		for _, source := range sources {
			if !strings.Contains(source, gram) {
				t.Fatalf("gram %q is not a substring of source %q", gram, source)
			}
		}
	}
}

// Invariant 7: repeated getters with no intervening query agree, and the
// idempotent no-op-on-same-query rule holds.
func TestInvariantIdempotentGetters(t *testing.T) {
	e := New(2, 5, 10, false)
	e.Train([]string{"apple", "applet", "application"})
	e.Search("appl")

	first := e.GetResultArray()
	second := e.GetResultArray()
	if len(first) != len(second) {
		t.Fatalf("getters disagree across calls: %v vs %v", first, second)
	}

	e.Search("appl")
	third := e.GetResultArray()
	if len(third) != len(first) {
		t.Fatalf("re-issuing the same query changed results: %v vs %v", first, third)
	}
}

// Invariant 8: case-insensitive training finds an upper-cased exact query.
func TestInvariantCaseFoldPolicy(t *testing.T) {
	e := New(2, 4, 10, false)
	e.Train([]string{"apple"})
	e.Search("APPLE")

	entries := e.GetResultArray()
	if len(entries) != 1 || entries[0].Value != "apple" || entries[0].Score != 1 {
		t.Fatalf("expected case-insensitive exact match to find %q, got %+v", "apple", entries)
	}
}

func TestLoadExportRoundTrip(t *testing.T) {
	e := New(2, 5, 10, false)
	e.Train([]string{"apple", "applet", "application", "banana"})
	e.Search("appl")
	want := e.GetResultArray()

	model := e.Export()

	loaded, err := New(1, 1, 1, true).Load(model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded.Search("appl")
	got := loaded.GetResultArray()

	if len(got) != len(want) {
		t.Fatalf("round-trip mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("round-trip mismatch at %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadIncompatibleModelType(t *testing.T) {
	e := New(2, 5, 10, false)
	_, err := e.Load(Model{Type: "NgramStringPredict"})
	if err == nil {
		t.Fatalf("expected an error loading a mismatched model type")
	}
}

func TestSearchEmptyInputYieldsNoResults(t *testing.T) {
	e := New(2, 5, 10, false)
	e.Train([]string{"apple"})
	e.Search("")

	if got := e.GetResultArray(); len(got) != 0 {
		t.Fatalf("expected empty results for empty query, got %v", got)
	}
}
