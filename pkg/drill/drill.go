// Package drill holds the turn-based games. Each drill walks through a deck
// of questions and scores answers with the same rule type as the arcade
// rounds; a wrong answer scores nothing and resets the combo. Points are
// reported to the sink as they are earned.
package drill

import (
	"errors"
	"math/rand/v2"

	"github.com/chrischowai/Putonghua-learning/pkg/arcade"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// ErrEmptyDeck is returned when a drill has nothing to ask.
var ErrEmptyDeck = errors.New("drill has no questions")

// Points per drill.
var (
	ToneQuizScore       = arcade.Flat(10)
	PinyinMatchScore    = arcade.Flat(10)
	SortingScore        = arcade.Flat(10)
	InitialsListenScore = arcade.ScoreRule{Base: 10, ComboBonus: 5, ComboThreshold: 2}
	BridgeScore         = arcade.Flat(15)
	WordPuzzleScore     = arcade.Flat(15)
)

// Result is the outcome of one answer.
type Result struct {
	Correct bool
	Delta   int
	Score   int
	Combo   int
}

// tally keeps the running score of a drill.
type tally struct {
	rule  arcade.ScoreRule
	sink  arcade.ScoreSink
	score int
	combo int
}

func (t *tally) record(correct bool) Result {
	if !correct {
		t.combo = 0
		return Result{Score: t.score}
	}
	delta := t.rule.Delta(t.combo)
	t.score += delta
	t.combo++
	if t.sink != nil {
		t.sink.ApplyDelta(delta)
	}
	return Result{Correct: true, Delta: delta, Score: t.score, Combo: t.combo}
}

// Score returns the points earned so far.
func (t *tally) Score() int { return t.score }

// Combo returns the current run of correct answers.
func (t *tally) Combo() int { return t.combo }

// deck cycles through entries; a correct answer moves to the next one.
type deck struct {
	items []vocab.Entry
	idx   int
}

func (d *deck) current() vocab.Entry { return d.items[d.idx] }

func (d *deck) advance() { d.idx = (d.idx + 1) % len(d.items) }

func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func shuffled[T any](rng *rand.Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
