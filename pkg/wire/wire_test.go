package wire

import (
	"testing"

	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/stringfuzzy"
	"github.com/ngramkit/ngramkit/pkg/tokenpredict"
)

func TestStringFuzzyRoundTrip(t *testing.T) {
	e := stringfuzzy.New(2, 5, 10, false)
	e.Train([]string{"apple", "applet", "application", "banana"})
	want := e.Export()

	data, err := EncodeStringFuzzy(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeStringFuzzy(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Type != want.Type || got.NGramMin != want.NGramMin || got.NGramMax != want.NGramMax {
		t.Fatalf("round-trip config mismatch: got %+v, want %+v", got, want)
	}
	if len(got.ExactSet) != len(want.ExactSet) {
		t.Fatalf("round-trip exact set size mismatch: got %d, want %d", len(got.ExactSet), len(want.ExactSet))
	}
	if len(got.NGramDict) != len(want.NGramDict) {
		t.Fatalf("round-trip gram index size mismatch: got %d, want %d", len(got.NGramDict), len(want.NGramDict))
	}
}

func TestTokenPredictRoundTrip(t *testing.T) {
	e := tokenpredict.New[core.StringToken](1, 4, 10)
	e.Train([][]core.StringToken{
		{"IF", "ID", "ASSIGN", "NUM", "SEMI"},
		{"IF", "ID", "ASSIGN", "STR", "SEMI"},
	})
	want := e.Export()

	data, err := EncodeTokenPredict(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeTokenPredict(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(got.ContextDict) != len(want.ContextDict) {
		t.Fatalf("round-trip context dict size mismatch: got %d, want %d", len(got.ContextDict), len(want.ContextDict))
	}
}
