// Package tokenfuzzy implements the TokenFuzzy engine: the same inverted
// window-index and descending-order scan as StringFuzzy, generalized to any
// sequence of core.Token values instead of characters.
package tokenfuzzy

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/ngramkit/ngramkit/internal/logger"
	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/ngramerr"
)

// TypeTokenFuzzy is the exported model's type tag.
const TypeTokenFuzzy = "NgramTokenFuzzy"

// Sequence is a lexicon item or query: an ordered run of tokens.
type Sequence[T core.Token] []T

// Model is the logical exported shape of a trained TokenFuzzy engine. It
// keeps the actual lexicon sequences (not just their string projections) so
// Load can fully reconstruct the index; see pkg/wire for the concrete wire
// encoding available when T is core.StringToken.
type Model[T core.Token] struct {
	Type               string           `msgpack:"type"`
	NGramMin           int              `msgpack:"n_gram_min"`
	NGramMax           int              `msgpack:"n_gram_max"`
	MaxResults         int              `msgpack:"max_results"`
	LexiconSequences   []Sequence[T]    `msgpack:"lexicon_sequences"`
	IdentityToSequence map[string]int   `msgpack:"identity_to_sequence"`
	NGramDict          map[string][]int `msgpack:"ngram_dict"`
}

// Engine is the TokenFuzzy engine, generic over any Token type.
type Engine[T core.Token] struct {
	nMin, nMax, maxResults int

	lexicon   []Sequence[T]
	exactSet  *patricia.Trie
	gramIndex map[string][]int

	results      *core.Results[Sequence[T]]
	lastInput    Sequence[T]
	hasLastInput bool

	log *log.Logger
}

// New constructs a TokenFuzzy engine, clamped to the shared invariants.
// Note: the length gate StringFuzzy applies in match() is deliberately
// omitted here — spec.md §4.5 excludes it for token sequences.
func New[T core.Token](nMin, nMax, maxResults int) *Engine[T] {
	nMin, nMax, maxResults = core.ClampConfig(nMin, nMax, maxResults)
	return &Engine[T]{
		nMin:       nMin,
		nMax:       nMax,
		maxResults: maxResults,
		exactSet:   patricia.NewTrie(),
		gramIndex:  make(map[string][]int),
		results:    core.New[Sequence[T]](maxResults),
		log:        logger.Default("tokenfuzzy"),
	}
}

// NewDefault applies the spec's TokenFuzzy defaults: (3, 5, 10).
func NewDefault[T core.Token]() *Engine[T] {
	return New[T](3, 5, 10)
}

// Train fully replaces the index with the given lexicon (spec.md §4.5).
func (e *Engine[T]) Train(corpus []Sequence[T]) *Engine[T] {
	e.lexicon = nil
	e.exactSet = patricia.NewTrie()
	e.gramIndex = make(map[string][]int)
	e.results.ClearResults()
	e.lastInput = nil
	e.hasLastInput = false

	seen := make(map[string]struct{}, 16)
	for _, seq := range corpus {
		if len(seq) == 0 {
			continue
		}
		idx := len(e.lexicon)
		e.lexicon = append(e.lexicon, seq)

		identity := core.EncodeWindow([]T(seq))
		e.exactSet.Insert(patricia.Prefix(identity), idx)

		maxK := e.nMax
		if len(seq) < maxK {
			maxK = len(seq)
		}
		for k := e.nMin; k <= maxK; k++ {
			for start := 0; start+k <= len(seq); start++ {
				window := seq[start : start+k]
				key := core.EncodeWindow([]T(window))
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				e.gramIndex[key] = append(e.gramIndex[key], idx)
			}
		}
		clear(seen)
	}
	e.log.Debugf("trained on %d sequences", len(corpus))
	return e
}

// Search runs the descending-order window scan and writes the result
// buffer (spec.md §4.5). No length gate; cap-on-creation and k·k weighting
// apply exactly as in StringFuzzy. Idempotent no-op when input equals the
// cached last query.
func (e *Engine[T]) Search(input Sequence[T]) *Engine[T] {
	if e.hasLastInput && core.SequenceEqual([]T(input), []T(e.lastInput)) {
		return e
	}
	e.lastInput = input
	e.hasLastInput = true

	e.results.ClearResults()
	e.match(input, e.results)
	return e
}

// SearchPure runs the same scan but returns a freshly allocated result
// buffer without mutating the receiver (spec.md §5).
func (e *Engine[T]) SearchPure(input Sequence[T]) *core.Results[Sequence[T]] {
	results := core.New[Sequence[T]](e.maxResults)
	e.match(input, results)
	return results
}

func (e *Engine[T]) match(input Sequence[T], into *core.Results[Sequence[T]]) {
	if len(input) == 0 {
		return
	}

	identity := core.EncodeWindow([]T(input))
	if v := e.exactSet.Get(patricia.Prefix(identity)); v != nil {
		idx := v.(int)
		into.Add(core.Entry[Sequence[T]]{Value: e.lexicon[idx], Score: 1})
		return
	}

	type candidate struct {
		idx      int
		strength float64
	}
	var candidates []candidate
	index := make(map[int]int)
	querySeen := make(map[string]struct{})

	startK := e.nMax
	if len(input) < startK {
		startK = len(input)
	}
	for k := startK; k >= e.nMin; k-- {
		for start := 0; start+k <= len(input); start++ {
			window := input[start : start+k]
			key := core.EncodeWindow([]T(window))
			if _, dup := querySeen[key]; dup {
				continue
			}
			querySeen[key] = struct{}{}

			posting, ok := e.gramIndex[key]
			if !ok {
				continue
			}
			for _, idx := range posting {
				weight := float64(k * k)
				if pos, exists := index[idx]; exists {
					candidates[pos].strength += weight
					continue
				}
				if len(candidates) >= e.maxResults {
					continue
				}
				index[idx] = len(candidates)
				candidates = append(candidates, candidate{idx: idx, strength: weight})
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
		into.Add(core.Entry[Sequence[T]]{Value: e.lexicon[c.idx], Score: score})
	}
}

// SearchBest returns the top match for input, or for the cached last query
// when input is omitted. Returns nil when there are no results.
func (e *Engine[T]) SearchBest(input ...Sequence[T]) *Sequence[T] {
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
func (e *Engine[T]) GetResultArray() []core.Entry[Sequence[T]] { return e.results.GetResultArray() }

// GetValueArray finalizes and returns the matched-sequence projection.
func (e *Engine[T]) GetValueArray() []Sequence[T] { return e.results.GetValueArray() }

// GetScoreArray finalizes and returns the strength projection.
func (e *Engine[T]) GetScoreArray() []float64 { return e.results.GetScoreArray() }

// GetTopResult finalizes and returns the top entry.
func (e *Engine[T]) GetTopResult() (core.Entry[Sequence[T]], bool) {
	return e.results.GetTopResult()
}

// GetTopValue finalizes and returns the top matched sequence, or nil.
func (e *Engine[T]) GetTopValue() *Sequence[T] {
	v, ok := e.results.GetTopValue()
	if !ok {
		return nil
	}
	return &v
}

// GetTopScore finalizes and returns the top strength, or 0.
func (e *Engine[T]) GetTopScore() float64 { return e.results.GetTopScore() }

// Export returns the logical exported model shape.
func (e *Engine[T]) Export() Model[T] {
	lexicon := make([]Sequence[T], len(e.lexicon))
	copy(lexicon, e.lexicon)

	identityToSequence := make(map[string]int, len(e.lexicon))
	for idx, seq := range e.lexicon {
		identityToSequence[core.EncodeWindow([]T(seq))] = idx
	}

	gramDict := make(map[string][]int, len(e.gramIndex))
	for k, v := range e.gramIndex {
		cp := make([]int, len(v))
		copy(cp, v)
		gramDict[k] = cp
	}

	return Model[T]{
		Type:               TypeTokenFuzzy,
		NGramMin:           e.nMin,
		NGramMax:           e.nMax,
		MaxResults:         e.maxResults,
		LexiconSequences:   lexicon,
		IdentityToSequence: identityToSequence,
		NGramDict:          gramDict,
	}
}

// Load replaces config and index from an exported model.
func (e *Engine[T]) Load(m Model[T]) (*Engine[T], error) {
	if m.Type != "" && m.Type != TypeTokenFuzzy {
		return e, ngramerr.ErrIncompatibleModel
	}

	nMin, nMax, maxResults := core.CoalesceConfig(m.NGramMin, m.NGramMax, m.MaxResults, e.nMin, e.nMax, e.maxResults)
	e.nMin, e.nMax, e.maxResults = nMin, nMax, maxResults

	e.lexicon = make([]Sequence[T], len(m.LexiconSequences))
	copy(e.lexicon, m.LexiconSequences)

	e.exactSet = patricia.NewTrie()
	for idx, seq := range e.lexicon {
		e.exactSet.Insert(patricia.Prefix(core.EncodeWindow([]T(seq))), idx)
	}

	e.gramIndex = make(map[string][]int, len(m.NGramDict))
	for k, v := range m.NGramDict {
		cp := make([]int, len(v))
		copy(cp, v)
		e.gramIndex[k] = cp
	}

	e.results = core.New[Sequence[T]](e.maxResults)
	e.lastInput = nil
	e.hasLastInput = false
	return e, nil
}
