package drill

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrischowai/Putonghua-learning/pkg/dictionary"
	"github.com/chrischowai/Putonghua-learning/pkg/progress"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

var entries = []vocab.Entry{
	{ID: "b1", Character: "爸", Pinyin: "bà", Tone: 4, Initial: "b", Final: "a"},
	{ID: "p1", Character: "皮", Pinyin: "pí", Tone: 2, Initial: "p", Final: "i"},
	{ID: "m1", Character: "媽", Pinyin: "mā", Tone: 1, Initial: "m", Final: "a"},
	{ID: "f1", Character: "飛", Pinyin: "fēi", Tone: 1, Initial: "f", Final: "ei"},
	{ID: "g1", Character: "狗", Pinyin: "gǒu", Tone: 3, Initial: "g", Final: "ou"},
	{ID: "m2", Character: "馬", Pinyin: "mǎ", Tone: 3, Initial: "m", Final: "a"},
}

func rng() *rand.Rand { return rand.New(rand.NewPCG(11, 12)) }

func TestEmptyDecks(t *testing.T) {
	_, err := NewToneQuiz(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	_, err = NewPinyinMatch(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	_, err = NewSorting(entries[4:5], nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck, "no entry has a sorting initial")
	_, err = NewInitialsListen(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	_, err = NewBridge(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	_, err = NewWordPuzzle(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestToneQuizRetriesOnWrong(t *testing.T) {
	tracker := progress.NewTracker(nil, nil)
	q, err := NewToneQuiz(entries[:2], tracker)
	require.NoError(t, err)

	first := q.Current()
	r := q.Answer(first.Tone%4 + 1)
	assert.False(t, r.Correct)
	assert.Equal(t, first.ID, q.Current().ID, "wrong answer keeps the question")

	r = q.Answer(first.Tone)
	assert.True(t, r.Correct)
	assert.Equal(t, 10, r.Delta)
	assert.Equal(t, entries[1].ID, q.Current().ID)

	q.Answer(q.Current().Tone)
	assert.Equal(t, entries[0].ID, q.Current().ID, "deck wraps around")
	assert.Equal(t, 20, q.Score())
	assert.Equal(t, 20, tracker.Total(), "points are reported as they are earned")
}

func TestPinyinMatchOptions(t *testing.T) {
	m, err := NewPinyinMatch(entries, nil, rng())
	require.NoError(t, err)

	for i := 0; i < len(entries); i++ {
		opts := m.Options()
		assert.Len(t, opts, 4)
		assert.Contains(t, opts, m.Current().Pinyin)
		sorted := slices.Clone(opts)
		slices.Sort(sorted)
		assert.Equal(t, len(sorted), len(slices.Compact(sorted)), "options are distinct: %v", opts)
		m.Answer(m.Current().Pinyin)
	}
	assert.Equal(t, 60, m.Score())

	small, err := NewPinyinMatch(entries[:2], nil, rng())
	require.NoError(t, err)
	assert.Len(t, small.Options(), 2)
}

func TestPinyinMatchWrongAdvances(t *testing.T) {
	m, err := NewPinyinMatch(entries, nil, rng())
	require.NoError(t, err)
	before := m.Current().ID
	r := m.Answer("nope")
	assert.False(t, r.Correct)
	assert.NotEqual(t, before, m.Current().ID)
	assert.Equal(t, 0, m.Score())
}

func TestSortingOnlyUsesSortingInitials(t *testing.T) {
	s, err := NewSorting(entries, nil, rng())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "p", "m", "f"}, s.Categories())

	for i := 0; i < 30; i++ {
		cur := s.Current()
		assert.NotEqual(t, "g", cur.Initial)
		if i%3 == 0 {
			wrong := "b"
			if cur.Initial == "b" {
				wrong = "p"
			}
			assert.False(t, s.Answer(wrong).Correct)
			assert.Equal(t, cur.ID, s.Current().ID)
		}
		assert.True(t, s.Answer(cur.Initial).Correct)
	}
	assert.Equal(t, 300, s.Score())
}

func TestInitialsListenComboBonus(t *testing.T) {
	l, err := NewInitialsListen(entries, nil, rng())
	require.NoError(t, err)

	var deltas []int
	for i := 0; i < 4; i++ {
		deltas = append(deltas, l.Answer(l.Current().Initial).Delta)
	}
	assert.Equal(t, []int{10, 10, 15, 15}, deltas)

	r := l.Answer("x")
	assert.False(t, r.Correct)
	assert.Equal(t, 0, l.Combo())
	assert.Equal(t, 10, l.Answer(l.Current().Initial).Delta)
	assert.Equal(t, 60, l.Score())
}

func TestBridge(t *testing.T) {
	pairs, err := dictionary.BridgePairs()
	require.NoError(t, err)
	b, err := NewBridge(pairs, nil, rng())
	require.NoError(t, err)
	require.Len(t, b.Left, len(pairs))

	r, ok := b.Match(pairs[0].ID, pairs[1].ID)
	require.True(t, ok)
	assert.False(t, r.Correct)

	for _, p := range pairs {
		r, ok := b.Match(p.ID, p.ID)
		require.True(t, ok)
		assert.Equal(t, 15, r.Delta)
	}
	assert.True(t, b.Done())
	_, ok = b.Match(pairs[0].ID, pairs[0].ID)
	assert.False(t, ok, "completed pairs are ignored")
	assert.Equal(t, 15*len(pairs), b.Score())
}

func TestWordPuzzle(t *testing.T) {
	puzzles := []dictionary.Puzzle{
		{ID: "w1", Word: "學校", Chars: []string{"學", "校"}, Distractors: []string{"生", "教"}},
		{ID: "w2", Word: "老師", Chars: []string{"老", "師"}, Distractors: []string{"考", "帥"}},
	}
	w, err := NewWordPuzzle(puzzles, nil, rng())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"學", "校", "生", "教"}, w.Tiles())

	// Wrong order puts the tiles back.
	_, ok := w.Place(slices.Index(w.Tiles(), "校"))
	assert.False(t, ok)
	assert.Equal(t, []string{"校"}, w.Slots())
	r, ok := w.Place(slices.Index(w.Tiles(), "學"))
	require.True(t, ok)
	assert.False(t, r.Correct)
	assert.Len(t, w.Tiles(), 4)
	assert.Empty(t, w.Slots())
	assert.Equal(t, "w1", w.Current().ID)

	w.Place(slices.Index(w.Tiles(), "學"))
	r, ok = w.Place(slices.Index(w.Tiles(), "校"))
	require.True(t, ok)
	assert.True(t, r.Correct)
	assert.Equal(t, 15, r.Delta)
	assert.Equal(t, "w2", w.Current().ID)

	_, ok = w.Place(99)
	assert.False(t, ok)
}
