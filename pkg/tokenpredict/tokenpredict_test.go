package tokenpredict

import (
	"math"
	"testing"

	"github.com/ngramkit/ngramkit/pkg/core"
)

type tok = core.StringToken

func seq(symbols ...string) []tok {
	out := make([]tok, len(symbols))
	for i, s := range symbols {
		out[i] = tok(s)
	}
	return out
}

func sumScores(scores []float64) float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	return total
}

// S4: three sequences continuing [IF,ID,ASSIGN] with NUM and one with STR,
// prefix [IF,ID,ASSIGN]: NUM ~3/4, STR ~1/4.
func TestScenarioS4(t *testing.T) {
	e := New[tok](1, 4, 10)
	corpus := [][]tok{
		seq("IF", "ID", "ASSIGN", "NUM", "SEMI"),
		seq("IF", "ID", "ASSIGN", "NUM", "SEMI"),
		seq("IF", "ID", "ASSIGN", "NUM", "SEMI"),
		seq("IF", "ID", "ASSIGN", "STR", "SEMI"),
	}
	e.Train(corpus)
	e.Predict(seq("IF", "ID", "ASSIGN"))

	entries := e.GetResultArray()
	if len(entries) < 2 {
		t.Fatalf("expected at least NUM and STR predictions, got %v", entries)
	}
	if entries[0].Value != tok("NUM") {
		t.Fatalf("expected top prediction to be NUM, got %v", entries[0].Value)
	}
	if math.Abs(entries[0].Score-0.75) > 1e-9 {
		t.Fatalf("expected NUM probability ~0.75, got %f", entries[0].Score)
	}
	if entries[1].Value != tok("STR") {
		t.Fatalf("expected second prediction to be STR, got %v", entries[1].Value)
	}
	if math.Abs(entries[1].Score-0.25) > 1e-9 {
		t.Fatalf("expected STR probability ~0.25, got %f", entries[1].Score)
	}
}

// Invariant 1 (context-table soundness, same shape as StringPredict's):
// context_dict[c].total == sum(counts.values).
func TestInvariantContextTotalsMatchCounts(t *testing.T) {
	e := New[tok](1, 4, 10)
	e.Train([][]tok{
		seq("IF", "ID", "ASSIGN", "NUM", "SEMI"),
		seq("IF", "ID", "ASSIGN", "STR", "SEMI"),
	})
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

// Invariant 5: probabilities bounded and sum to 1.
func TestInvariantProbabilitiesBoundedAndNormalized(t *testing.T) {
	e := New[tok](1, 4, 10)
	e.Train([][]tok{
		seq("IF", "ID", "ASSIGN", "NUM", "SEMI"),
		seq("IF", "ID", "ASSIGN", "STR", "SEMI"),
	})
	e.Predict(seq("IF", "ID"))

	scores := e.GetScoreArray()
	for _, s := range scores {
		if s < 0 || s > 1 {
			t.Fatalf("probability %f out of bounds", s)
		}
	}
	if got := sumScores(scores); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected probabilities to sum to 1, got %f", got)
	}
}

// Invariant 7: idempotence on repeated identical prefix.
func TestInvariantIdempotentPredict(t *testing.T) {
	e := New[tok](1, 4, 10)
	e.Train([][]tok{seq("IF", "ID", "ASSIGN", "NUM", "SEMI")})
	e.Predict(seq("IF", "ID", "ASSIGN"))
	first := e.GetResultArray()
	e.Predict(seq("IF", "ID", "ASSIGN"))
	second := e.GetResultArray()

	if len(first) != len(second) {
		t.Fatalf("re-issuing same prefix changed results")
	}
}

func TestLoadExportRoundTrip(t *testing.T) {
	e := New[tok](1, 4, 10)
	e.Train([][]tok{
		seq("IF", "ID", "ASSIGN", "NUM", "SEMI"),
		seq("IF", "ID", "ASSIGN", "STR", "SEMI"),
	})
	e.Predict(seq("IF", "ID", "ASSIGN"))
	want := e.GetResultArray()

	model := e.Export()
	loaded, err := New[tok](1, 1, 1).Load(model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded.Predict(seq("IF", "ID", "ASSIGN"))
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
