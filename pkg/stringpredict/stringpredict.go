// Package stringpredict implements the StringPredict engine: a variable-
// order context table over character contexts of length n_min..n_max,
// predicting the next character by a linear, weighted blend across orders.
package stringpredict

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ngramkit/ngramkit/internal/logger"
	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/ngramerr"
)

// TypeStringPredict is the exported model's type tag.
const TypeStringPredict = "NgramStringPredict"

// ContextEntry holds the next-symbol counts observed after one context
// (spec.md §3). Counts are keyed by byte since the spec treats string input
// as an opaque sequence of code units.
type ContextEntry struct {
	Counts map[byte]int `msgpack:"counts"`
	Total  int          `msgpack:"total"`
}

// Model is the logical exported shape of a trained StringPredict engine.
type Model struct {
	Type        string                  `msgpack:"type"`
	NGramMin    int                     `msgpack:"n_gram_min"`
	NGramMax    int                     `msgpack:"n_gram_max"`
	MaxResults  int                     `msgpack:"max_results"`
	CaseSense   bool                    `msgpack:"case_sense"`
	ContextDict map[string]ContextEntry `msgpack:"context_dict"`
}

// Engine is the StringPredict engine.
type Engine struct {
	nMin, nMax, maxResults int
	caseSensitive          bool

	contextTable map[string]*ContextEntry

	results      *core.Results[string]
	lastInput    string
	hasLastInput bool

	log *log.Logger
}

// New constructs a StringPredict engine, clamped to the shared invariants.
func New(nMin, nMax, maxResults int, caseSensitive bool) *Engine {
	nMin, nMax, maxResults = core.ClampConfig(nMin, nMax, maxResults)
	return &Engine{
		nMin:          nMin,
		nMax:          nMax,
		maxResults:    maxResults,
		caseSensitive: caseSensitive,
		contextTable:  make(map[string]*ContextEntry),
		results:       core.New[string](maxResults),
		log:           logger.Default("stringpredict"),
	}
}

// NewDefault applies the spec's StringPredict defaults: (1, 25, 10, true).
func NewDefault() *Engine {
	return New(1, 25, 10, true)
}

func (e *Engine) canonicalize(s string) string {
	if !e.caseSensitive {
		return core.ASCIIFold(s)
	}
	return s
}

// Train replaces the context table with counts from the training corpus
// (spec.md §4.4).
func (e *Engine) Train(corpus []string) *Engine {
	e.contextTable = make(map[string]*ContextEntry)
	e.results.ClearResults()
	e.lastInput = ""
	e.hasLastInput = false

	for _, raw := range corpus {
		s := e.canonicalize(raw)
		n := len(s)
		for nextIdx := 1; nextIdx < n; nextIdx++ {
			maxK := e.nMax
			if nextIdx < maxK {
				maxK = nextIdx
			}
			for k := e.nMin; k <= maxK; k++ {
				ctx := s[nextIdx-k : nextIdx]
				sym := s[nextIdx]

				entry := e.contextTable[ctx]
				if entry == nil {
					entry = &ContextEntry{Counts: make(map[byte]int)}
					e.contextTable[ctx] = entry
				}
				entry.Counts[sym]++
				entry.Total++
			}
		}
	}
	e.log.Debugf("trained on %d entries, %d contexts", len(corpus), len(e.contextTable))
	return e
}

// Predict blends variable-order context probabilities for the prefix and
// writes the result buffer (spec.md §4.4). Idempotent no-op when the prefix
// equals the cached last query.
func (e *Engine) Predict(prefix string) *Engine {
	if e.hasLastInput && prefix == e.lastInput {
		return e
	}
	e.lastInput = prefix
	e.hasLastInput = true

	e.results.ClearResults()
	e.predict(prefix, e.results)
	return e
}

// PredictPure runs the same blend but returns a freshly allocated result
// buffer without mutating the receiver (spec.md §5).
func (e *Engine) PredictPure(prefix string) *core.Results[string] {
	results := core.New[string](e.maxResults)
	e.predict(prefix, results)
	return results
}

func (e *Engine) predict(prefix string, into *core.Results[string]) {
	q := e.canonicalize(prefix)
	L := len(q)
	if L == 0 {
		return
	}

	scores := make(map[byte]float64)
	var order []byte
	var W float64

	for k := e.nMin; k <= e.nMax; k++ {
		if L < k {
			continue
		}
		ctx := q[L-k:]
		entry, ok := e.contextTable[ctx]
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

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, sym := range order {
		into.Add(core.Entry[string]{Value: string(sym), Score: scores[sym] / W})
	}
}

// PredictBest returns the top-predicted symbol for prefix, or for the
// cached last query when prefix is omitted. Returns nil when there are no
// results.
func (e *Engine) PredictBest(prefix ...string) *string {
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
func (e *Engine) GetResultArray() []core.Entry[string] { return e.results.GetResultArray() }

// GetValueArray finalizes and returns the predicted-symbol projection.
func (e *Engine) GetValueArray() []string { return e.results.GetValueArray() }

// GetScoreArray finalizes and returns the probability projection.
func (e *Engine) GetScoreArray() []float64 { return e.results.GetScoreArray() }

// GetTopResult finalizes and returns the top entry.
func (e *Engine) GetTopResult() (core.Entry[string], bool) { return e.results.GetTopResult() }

// GetTopValue finalizes and returns the top predicted symbol, or nil.
func (e *Engine) GetTopValue() *string {
	v, ok := e.results.GetTopValue()
	if !ok {
		return nil
	}
	return &v
}

// GetTopScore finalizes and returns the top probability, or 0.
func (e *Engine) GetTopScore() float64 { return e.results.GetTopScore() }

// Export returns the logical exported model shape.
func (e *Engine) Export() Model {
	dict := make(map[string]ContextEntry, len(e.contextTable))
	for k, v := range e.contextTable {
		counts := make(map[byte]int, len(v.Counts))
		for sym, c := range v.Counts {
			counts[sym] = c
		}
		dict[k] = ContextEntry{Counts: counts, Total: v.Total}
	}
	return Model{
		Type:        TypeStringPredict,
		NGramMin:    e.nMin,
		NGramMax:    e.nMax,
		MaxResults:  e.maxResults,
		CaseSense:   e.caseSensitive,
		ContextDict: dict,
	}
}

// Load replaces config and the context table from an exported model.
// Returns ErrIncompatibleModel if the type tag is set and doesn't match.
func (e *Engine) Load(m Model) (*Engine, error) {
	if m.Type != "" && m.Type != TypeStringPredict {
		return e, ngramerr.ErrIncompatibleModel
	}

	nMin, nMax, maxResults := core.CoalesceConfig(m.NGramMin, m.NGramMax, m.MaxResults, e.nMin, e.nMax, e.maxResults)
	e.nMin, e.nMax, e.maxResults = nMin, nMax, maxResults
	e.caseSensitive = m.CaseSense

	e.contextTable = make(map[string]*ContextEntry, len(m.ContextDict))
	for k, v := range m.ContextDict {
		counts := make(map[byte]int, len(v.Counts))
		for sym, c := range v.Counts {
			counts[sym] = c
		}
		e.contextTable[k] = &ContextEntry{Counts: counts, Total: v.Total}
	}

	e.results = core.New[string](e.maxResults)
	e.lastInput = ""
	e.hasLastInput = false
	return e, nil
}
