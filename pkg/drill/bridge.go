package drill

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/chrischowai/Putonghua-learning/pkg/arcade"
	"github.com/chrischowai/Putonghua-learning/pkg/dictionary"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// Bridge pairs each dialect word with its Mandarin word. The two columns are
// shuffled independently.
type Bridge struct {
	tally
	Left      []vocab.Entry
	Right     []vocab.Entry
	completed map[string]bool
}

// NewBridge builds a bridge over pairs.
func NewBridge(pairs []vocab.Entry, sink arcade.ScoreSink, rng *rand.Rand) (*Bridge, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyDeck
	}
	rng = newRand(rng)
	return &Bridge{
		tally:     tally{rule: BridgeScore, sink: sink},
		Left:      shuffled(rng, pairs),
		Right:     shuffled(rng, pairs),
		completed: make(map[string]bool, len(pairs)),
	}, nil
}

// Match links a left item to a right item. Completed pairs are ignored and
// report no result.
func (b *Bridge) Match(leftID, rightID string) (Result, bool) {
	if b.completed[leftID] || b.completed[rightID] {
		return Result{}, false
	}
	r := b.record(leftID == rightID)
	if r.Correct {
		b.completed[leftID] = true
	}
	return r, true
}

// Completed reports whether the pair with id is matched.
func (b *Bridge) Completed(id string) bool { return b.completed[id] }

// Done reports whether every pair is matched.
func (b *Bridge) Done() bool { return len(b.completed) == len(b.Left) }

// WordPuzzle assembles a two-character word from its characters mixed with
// distractors.
type WordPuzzle struct {
	tally
	rng     *rand.Rand
	puzzles []dictionary.Puzzle
	idx     int
	tiles   []string
	slots   []string
}

// NewWordPuzzle builds the drill over puzzles in order.
func NewWordPuzzle(puzzles []dictionary.Puzzle, sink arcade.ScoreSink, rng *rand.Rand) (*WordPuzzle, error) {
	if len(puzzles) == 0 {
		return nil, ErrEmptyDeck
	}
	w := &WordPuzzle{tally: tally{rule: WordPuzzleScore, sink: sink}, rng: newRand(rng), puzzles: puzzles}
	w.reset()
	return w, nil
}

// Current returns the puzzle being solved.
func (w *WordPuzzle) Current() dictionary.Puzzle { return w.puzzles[w.idx] }

// Tiles returns the characters still available.
func (w *WordPuzzle) Tiles() []string { return slices.Clone(w.tiles) }

// Slots returns the characters placed so far.
func (w *WordPuzzle) Slots() []string { return slices.Clone(w.slots) }

// Place moves the tile at index i into the next free slot. When the last
// slot is filled the word is checked: a correct word scores and moves to the
// next puzzle, a wrong one puts the tiles back. ok is false until the word is
// complete or when i is out of range.
func (w *WordPuzzle) Place(i int) (r Result, ok bool) {
	if i < 0 || i >= len(w.tiles) {
		return Result{}, false
	}
	w.slots = append(w.slots, w.tiles[i])
	w.tiles = slices.Delete(w.tiles, i, i+1)
	p := w.Current()
	if len(w.slots) < len([]rune(p.Word)) {
		return Result{}, false
	}

	r = w.record(strings.Join(w.slots, "") == p.Word)
	if r.Correct {
		w.idx = (w.idx + 1) % len(w.puzzles)
	}
	w.reset()
	return r, true
}

func (w *WordPuzzle) reset() {
	p := w.Current()
	w.tiles = shuffled(w.rng, append(slices.Clone(p.Chars), p.Distractors...))
	w.slots = nil
}
