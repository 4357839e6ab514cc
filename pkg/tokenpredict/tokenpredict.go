// Package tokenpredict implements the TokenPredict engine: the same
// variable-order context blend as StringPredict, keyed by encoded windows
// of tokens instead of characters.
package tokenpredict

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ngramkit/ngramkit/internal/logger"
	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/ngramerr"
)

// TypeTokenPredict is the exported model's type tag.
const TypeTokenPredict = "NgramTokenPredict"

// ContextEntry holds the next-token counts observed after one context
// window.
type ContextEntry[T core.Token] struct {
	Counts map[T]int `msgpack:"counts"`
	Total  int       `msgpack:"total"`
}

// Model is the logical exported shape of a trained TokenPredict engine.
type Model[T core.Token] struct {
	Type        string                     `msgpack:"type"`
	NGramMin    int                        `msgpack:"n_gram_min"`
	NGramMax    int                        `msgpack:"n_gram_max"`
	MaxResults  int                        `msgpack:"max_results"`
	ContextDict map[string]ContextEntry[T] `msgpack:"context_dict"`
}

// Engine is the TokenPredict engine, generic over any Token type.
type Engine[T core.Token] struct {
	nMin, nMax, maxResults int

	contextTable map[string]*ContextEntry[T]

	results      *core.Results[T]
	lastInput    []T
	hasLastInput bool

	log *log.Logger
}

// New constructs a TokenPredict engine, clamped to the shared invariants.
func New[T core.Token](nMin, nMax, maxResults int) *Engine[T] {
	nMin, nMax, maxResults = core.ClampConfig(nMin, nMax, maxResults)
	return &Engine[T]{
		nMin:         nMin,
		nMax:         nMax,
		maxResults:   maxResults,
		contextTable: make(map[string]*ContextEntry[T]),
		results:      core.New[T](maxResults),
		log:          logger.Default("tokenpredict"),
	}
}

// NewDefault applies the spec's TokenPredict defaults: (3, 25, 10).
func NewDefault[T core.Token]() *Engine[T] {
	return New[T](3, 25, 10)
}

// Train replaces the context table with counts from the training corpus
// (spec.md §4.6). next_symbol is the token at 0-based position p; order k
// ranges [n_min, min(n_max, p)].
func (e *Engine[T]) Train(corpus [][]T) *Engine[T] {
	e.contextTable = make(map[string]*ContextEntry[T])
	e.results.ClearResults()
	e.lastInput = nil
	e.hasLastInput = false

	for _, seq := range corpus {
		n := len(seq)
		for p := 0; p < n; p++ {
			maxK := e.nMax
			if p < maxK {
				maxK = p
			}
			for k := e.nMin; k <= maxK; k++ {
				ctx := seq[p-k : p]
				key := core.EncodeWindow(ctx)

				entry := e.contextTable[key]
				if entry == nil {
					entry = &ContextEntry[T]{Counts: make(map[T]int)}
					e.contextTable[key] = entry
				}
				entry.Counts[seq[p]]++
				entry.Total++
			}
		}
	}
	e.log.Debugf("trained on %d sequences, %d contexts", len(corpus), len(e.contextTable))
	return e
}

// Predict blends variable-order context probabilities for the token prefix
// and writes the result buffer (spec.md §4.6). Idempotent no-op when prefix
// equals the cached last query.
func (e *Engine[T]) Predict(prefix []T) *Engine[T] {
	if e.hasLastInput && core.SequenceEqual(prefix, e.lastInput) {
		return e
	}
	e.lastInput = prefix
	e.hasLastInput = true

	e.results.ClearResults()
	e.predict(prefix, e.results)
	return e
}

// PredictPure runs the same blend but returns a freshly allocated result
// buffer without mutating the receiver.
func (e *Engine[T]) PredictPure(prefix []T) *core.Results[T] {
	results := core.New[T](e.maxResults)
	e.predict(prefix, results)
	return results
}

func (e *Engine[T]) predict(prefix []T, into *core.Results[T]) {
	L := len(prefix)
	if L == 0 {
		return
	}

	scores := make(map[T]float64)
	var order []T
	var W float64

	for k := e.nMin; k <= e.nMax; k++ {
		if L < k {
			continue
		}
		ctx := prefix[L-k:]
		key := core.EncodeWindow(ctx)
		entry, ok := e.contextTable[key]
		if !ok || entry.Total == 0 {
			continue
		}
		w := float64(k)
		W += w
		for sym, count := range entry.Counts {
			if _, seen := scores[sym]; !seen {
				order = append(order, sym)
			}
			scores[sym] += w * float64(count) / float64(entry.Total)
		}
	}
	if W == 0 {
		return
	}

	sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })
	for _, sym := range order {
		into.Add(core.Entry[T]{Value: sym, Score: scores[sym] / W})
	}
}

// PredictBest returns the top-predicted token for prefix, or for the
// cached last query when prefix is omitted. Returns nil when there are no
// results.
func (e *Engine[T]) PredictBest(prefix ...[]T) *T {
	p := e.lastInput
	if len(prefix) > 0 {
		p = prefix[0]
	}
	e.Predict(p)
	v, ok := e.results.GetTopValue()
	if !ok {
		return nil
	}
	return &v
}

// GetResultArray finalizes and returns the raw entries.
func (e *Engine[T]) GetResultArray() []core.Entry[T] { return e.results.GetResultArray() }

// GetValueArray finalizes and returns the predicted-token projection.
func (e *Engine[T]) GetValueArray() []T { return e.results.GetValueArray() }

// GetScoreArray finalizes and returns the probability projection.
func (e *Engine[T]) GetScoreArray() []float64 { return e.results.GetScoreArray() }

// GetTopResult finalizes and returns the top entry.
func (e *Engine[T]) GetTopResult() (core.Entry[T], bool) { return e.results.GetTopResult() }

// GetTopValue finalizes and returns the top predicted token, or nil.
func (e *Engine[T]) GetTopValue() *T {
	v, ok := e.results.GetTopValue()
	if !ok {
		return nil
	}
	return &v
}

// GetTopScore finalizes and returns the top probability, or 0.
func (e *Engine[T]) GetTopScore() float64 { return e.results.GetTopScore() }

// Export returns the logical exported model shape.
func (e *Engine[T]) Export() Model[T] {
	dict := make(map[string]ContextEntry[T], len(e.contextTable))
	for k, v := range e.contextTable {
		counts := make(map[T]int, len(v.Counts))
		for sym, c := range v.Counts {
			counts[sym] = c
		}
		dict[k] = ContextEntry[T]{Counts: counts, Total: v.Total}
	}
	return Model[T]{
		Type:        TypeTokenPredict,
		NGramMin:    e.nMin,
		NGramMax:    e.nMax,
		MaxResults:  e.maxResults,
		ContextDict: dict,
	}
}

// Load replaces config and the context table from an exported model.
func (e *Engine[T]) Load(m Model[T]) (*Engine[T], error) {
	if m.Type != "" && m.Type != TypeTokenPredict {
		return e, ngramerr.ErrIncompatibleModel
	}

	nMin, nMax, maxResults := core.CoalesceConfig(m.NGramMin, m.NGramMax, m.MaxResults, e.nMin, e.nMax, e.maxResults)
	e.nMin, e.nMax, e.maxResults = nMin, nMax, maxResults

	e.contextTable = make(map[string]*ContextEntry[T], len(m.ContextDict))
	for k, v := range m.ContextDict {
		counts := make(map[T]int, len(v.Counts))
		for sym, c := range v.Counts {
			counts[sym] = c
		}
		e.contextTable[k] = &ContextEntry[T]{Counts: counts, Total: v.Total}
	}

	e.results = core.New[T](e.maxResults)
	e.lastInput = nil
	e.hasLastInput = false
	return e, nil
}
