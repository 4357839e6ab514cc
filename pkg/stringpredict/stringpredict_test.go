package stringpredict

import (
	"math"
	"testing"
)

func sumScores(scores []float64) float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	return total
}

// S3: top symbol is 'l' or 'p', and probabilities sum to 1.
func TestScenarioS3(t *testing.T) {
	e := New(1, 5, 10, true)
	e.Train([]string{"hello", "help", "helium", "hey", "helpful"})
	e.Predict("hel")

	values := e.GetValueArray()
	if len(values) == 0 {
		t.Fatalf("expected predictions")
	}
	top := values[0]
	if top != "l" && top != "p" {
		t.Fatalf("expected top symbol to be 'l' or 'p', got %q", top)
	}

	scores := e.GetScoreArray()
	if got := sumScores(scores); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected probabilities to sum to 1, got %f", got)
	}
}

// Invariant 1: context_table[c].total == sum(counts.values).
func TestInvariantContextTotalsMatchCounts(t *testing.T) {
	e := New(1, 5, 10, true)
	e.Train([]string{"hello", "help", "helium", "hey", "helpful"})
	model := e.Export()

	for ctx, entry := range model.ContextDict {
		var total int
		for _, c := range entry.Counts {
			total += c
		}
		if total != entry.Total {
			t.Fatalf("context %q: total=%d but sum(counts)=%d", ctx, entry.Total, total)
		}
	}
}

// Invariant 5: probabilities lie in [0,1] and sum to 1 before truncation.
func TestInvariantProbabilitiesBoundedAndNormalized(t *testing.T) {
	e := New(1, 5, 10, true)
	e.Train([]string{"hello", "help", "helium", "hey", "helpful"})
	e.Predict("he")

	scores := e.GetScoreArray()
	var total float64
	for _, s := range scores {
		if s < 0 || s > 1 {
			t.Fatalf("probability %f out of bounds [0,1]", s)
		}
		total += s
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("expected probabilities to sum to 1, got %f", total)
	}
}

// Invariant 7: idempotent getters and no-op on the cached last query.
func TestInvariantIdempotentPredict(t *testing.T) {
	e := New(1, 5, 10, true)
	e.Train([]string{"hello", "help", "helium"})
	e.Predict("hel")

	first := e.GetResultArray()
	e.Predict("hel")
	second := e.GetResultArray()

	if len(first) != len(second) {
		t.Fatalf("re-issuing same prefix changed results: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("re-issuing same prefix changed entry %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestLoadExportRoundTrip(t *testing.T) {
	e := New(1, 5, 10, true)
	e.Train([]string{"hello", "help", "helium", "hey", "helpful"})
	e.Predict("hel")
	want := e.GetResultArray()

	model := e.Export()
	loaded, err := New(1, 1, 1, false).Load(model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded.Predict("hel")
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

func TestPredictEmptyPrefixYieldsNoResults(t *testing.T) {
	e := New(1, 5, 10, true)
	e.Train([]string{"hello"})
	e.Predict("")

	if got := e.GetResultArray(); len(got) != 0 {
		t.Fatalf("expected empty results for empty prefix, got %v", got)
	}
}
