// Package stringfuzzy implements the StringFuzzy engine: an inverted
// n-gram index over a string lexicon, scored by descending-order gram
// overlap with cap-on-creation and quadratic weighting.
package stringfuzzy

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/ngramkit/ngramkit/internal/logger"
	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/ngramerr"
)

// TypeStringFuzzy is the exported model's type tag.
const TypeStringFuzzy = "NgramStringFuzzy"

// Model is the logical exported shape of a trained StringFuzzy engine
// (spec.md §4.7 / §6). Its actual wire encoding is an external concern;
// see pkg/wire.
type Model struct {
	Type       string              `msgpack:"type"`
	NGramMin   int                 `msgpack:"n_gram_min"`
	NGramMax   int                 `msgpack:"n_gram_max"`
	MaxResults int                 `msgpack:"max_results"`
	CaseSense  bool                `msgpack:"case_sense"`
	ExactSet   []string            `msgpack:"exact_set"`
	NGramDict  map[string][]string `msgpack:"ngram_dict"`
}

// Engine is the StringFuzzy engine. An instance is single-owner mutable
// state: Train fully replaces the index, Search mutates only the result
// buffer, and SearchPure never mutates the receiver at all.
type Engine struct {
	nMin, nMax, maxResults int
	caseSensitive          bool

	exactSet  *patricia.Trie
	gramIndex map[string][]string

	results      *core.Results[string]
	lastInput    string
	hasLastInput bool

	log *log.Logger
}

// New constructs a StringFuzzy engine. Config is clamped to the shared
// invariants (n_min>=1, n_max>=n_min, max_results>0) per spec.md §6.
func New(nMin, nMax, maxResults int, caseSensitive bool) *Engine {
	nMin, nMax, maxResults = core.ClampConfig(nMin, nMax, maxResults)
	return &Engine{
		nMin:          nMin,
		nMax:          nMax,
		maxResults:    maxResults,
		caseSensitive: caseSensitive,
		exactSet:      patricia.NewTrie(),
		gramIndex:     make(map[string][]string),
		results:       core.New[string](maxResults),
		log:           logger.Default("stringfuzzy"),
	}
}

// NewDefault applies the spec's StringFuzzy defaults: (3, 5, 10, false).
func NewDefault() *Engine {
	return New(3, 5, 10, false)
}

func (e *Engine) canonicalize(s string) string {
	if !e.caseSensitive {
		return core.ASCIIFold(s)
	}
	return s
}

// Train fully replaces the index with the given lexicon (spec.md §4.2).
func (e *Engine) Train(corpus []string) *Engine {
	e.exactSet = patricia.NewTrie()
	e.gramIndex = make(map[string][]string)
	e.results.ClearResults()
	e.lastInput = ""
	e.hasLastInput = false

	seen := make(map[string]struct{}, 16)
	for _, raw := range corpus {
		s := e.canonicalize(raw)
		if s == "" {
			continue
		}
		e.exactSet.Insert(patricia.Prefix(s), struct{}{})

		maxK := e.nMax
		if len(s) < maxK {
			maxK = len(s)
		}
		for k := e.nMin; k <= maxK; k++ {
			for start := 0; start+k <= len(s); start++ {
				gram := s[start : start+k]
				if _, dup := seen[gram]; dup {
					continue
				}
				seen[gram] = struct{}{}
				e.gramIndex[gram] = append(e.gramIndex[gram], s)
			}
		}
		clear(seen)
	}
	e.log.Debugf("trained on %d entries", len(corpus))
	return e
}

// Search runs the descending-order gram scan against the query and writes
// the result buffer (spec.md §4.3). Idempotent no-op when input equals the
// cached last query (spec.md §9's fix for the source's typo).
func (e *Engine) Search(input string) *Engine {
	if e.hasLastInput && input == e.lastInput {
		return e
	}
	e.lastInput = input
	e.hasLastInput = true

	e.results.ClearResults()
	e.match(input, e.results)
	return e
}

// SearchPure runs the same scan as Search but returns a freshly allocated
// result buffer without mutating the receiver at all — safe for lock-free
// parallel reads against one trained engine (spec.md §5).
func (e *Engine) SearchPure(input string) *core.Results[string] {
	results := core.New[string](e.maxResults)
	e.match(input, results)
	return results
}

func (e *Engine) match(input string, into *core.Results[string]) {
	q := e.canonicalize(input)
	if q == "" {
		return
	}

	if e.exactSet.Get(patricia.Prefix(q)) != nil {
		into.Add(core.Entry[string]{Value: q, Score: 1})
		return
	}

	minLen := 2
	if v := int(float64(len(q)) * 0.75); v > minLen {
		minLen = v
	}
	maxLen := 2
	if v := int(math.Ceil(float64(len(q)) * 1.25)); v > maxLen {
		maxLen = v
	}

	type candidate struct {
		source   string
		strength float64
	}
	var candidates []candidate
	index := make(map[string]int)
	querySeen := make(map[string]struct{})

	startK := e.nMax
	if len(q) < startK {
		startK = len(q)
	}
	for k := startK; k >= e.nMin; k-- {
		for start := 0; start+k <= len(q); start++ {
			gram := q[start : start+k]
			if _, dup := querySeen[gram]; dup {
				continue
			}
			querySeen[gram] = struct{}{}

			posting, ok := e.gramIndex[gram]
			if !ok {
				continue
			}
			for _, source := range posting {
				sl := len(source)
				if sl < minLen || sl > maxLen {
					continue
				}
				weight := float64(k * k)
				if pos, exists := index[source]; exists {
					candidates[pos].strength += weight
					continue
				}
				if len(candidates) >= e.maxResults {
					continue
				}
				index[source] = len(candidates)
				candidates = append(candidates, candidate{source: source, strength: weight})
			}
		}
	}

	if len(candidates) == 0 {
		return
	}
	var total float64
	for _, c := range candidates {
		total += c.strength
	}
	for _, c := range candidates {
		score := 0.0
		if total > 0 {
			score = c.strength / total
		}
		into.Add(core.Entry[string]{Value: c.source, Score: score})
	}
}

// SearchBest returns the top match for input, or for the cached last query
// when input is omitted (spec.md §9's fix for the source's undefined
// default-parameter bug). Returns nil when there are no results.
func (e *Engine) SearchBest(input ...string) *string {
	q := e.lastInput
	if len(input) > 0 {
		q = input[0]
	}
	e.Search(q)
	v, ok := e.results.GetTopValue()
	if !ok {
		return nil
	}
	return &v
}

// GetResultArray finalizes and returns the raw entries.
func (e *Engine) GetResultArray() []core.Entry[string] { return e.results.GetResultArray() }

// GetValueArray finalizes and returns the matched-source projection.
func (e *Engine) GetValueArray() []string { return e.results.GetValueArray() }

// GetScoreArray finalizes and returns the strength projection.
func (e *Engine) GetScoreArray() []float64 { return e.results.GetScoreArray() }

// GetTopResult finalizes and returns the top entry.
func (e *Engine) GetTopResult() (core.Entry[string], bool) { return e.results.GetTopResult() }

// GetTopValue finalizes and returns the top matched source, or nil.
func (e *Engine) GetTopValue() *string {
	v, ok := e.results.GetTopValue()
	if !ok {
		return nil
	}
	return &v
}

// GetTopScore finalizes and returns the top strength, or 0.
func (e *Engine) GetTopScore() float64 { return e.results.GetTopScore() }

// Export returns the logical exported model shape (spec.md §4.7).
func (e *Engine) Export() Model {
	exactSet := make([]string, 0)
	e.exactSet.Visit(func(p patricia.Prefix, item patricia.Item) error {
		exactSet = append(exactSet, string(p))
		return nil
	})

	gramDict := make(map[string][]string, len(e.gramIndex))
	for k, v := range e.gramIndex {
		cp := make([]string, len(v))
		copy(cp, v)
		gramDict[k] = cp
	}

	return Model{
		Type:       TypeStringFuzzy,
		NGramMin:   e.nMin,
		NGramMax:   e.nMax,
		MaxResults: e.maxResults,
		CaseSense:  e.caseSensitive,
		ExactSet:   exactSet,
		NGramDict:  gramDict,
	}
}

// Load replaces config and index from an exported model (spec.md §4.7).
// Returns ErrIncompatibleModel if the type tag is set and doesn't match;
// the engine is left unchanged in that case.
func (e *Engine) Load(m Model) (*Engine, error) {
	if m.Type != "" && m.Type != TypeStringFuzzy {
		return e, ngramerr.ErrIncompatibleModel
	}

	nMin, nMax, maxResults := core.CoalesceConfig(m.NGramMin, m.NGramMax, m.MaxResults, e.nMin, e.nMax, e.maxResults)
	e.nMin, e.nMax, e.maxResults = nMin, nMax, maxResults
	e.caseSensitive = m.CaseSense

	e.exactSet = patricia.NewTrie()
	for _, s := range m.ExactSet {
		e.exactSet.Insert(patricia.Prefix(s), struct{}{})
	}

	e.gramIndex = make(map[string][]string, len(m.NGramDict))
	for k, v := range m.NGramDict {
		cp := make([]string, len(v))
		copy(cp, v)
		e.gramIndex[k] = cp
	}

	e.results = core.New[string](e.maxResults)
	e.lastInput = ""
	e.hasLastInput = false
	return e, nil
}
