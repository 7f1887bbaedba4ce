package drill

import (
	"math/rand/v2"
	"slices"

	"github.com/chrischowai/Putonghua-learning/pkg/arcade"
	"github.com/chrischowai/Putonghua-learning/pkg/corpus"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// ToneQuiz asks for the tone of each entry. A wrong answer keeps the
// question so the player can try again.
type ToneQuiz struct {
	tally
	deck
}

// NewToneQuiz builds a tone quiz over entries.
func NewToneQuiz(entries []vocab.Entry, sink arcade.ScoreSink) (*ToneQuiz, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyDeck
	}
	return &ToneQuiz{tally: tally{rule: ToneQuizScore, sink: sink}, deck: deck{items: entries}}, nil
}

// Current returns the entry being asked.
func (q *ToneQuiz) Current() vocab.Entry { return q.current() }

// Answer checks a tone between 1 and 5.
func (q *ToneQuiz) Answer(tone int) Result {
	r := q.record(tone == q.current().Tone)
	if r.Correct {
		q.advance()
	}
	return r
}

// PinyinMatch shows an entry with the correct reading and up to three other
// readings from the deck.
type PinyinMatch struct {
	tally
	deck
	rng     *rand.Rand
	options []string
}

// NewPinyinMatch builds a pinyin-match drill over entries.
func NewPinyinMatch(entries []vocab.Entry, sink arcade.ScoreSink, rng *rand.Rand) (*PinyinMatch, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyDeck
	}
	m := &PinyinMatch{
		tally: tally{rule: PinyinMatchScore, sink: sink},
		deck:  deck{items: entries},
		rng:   newRand(rng),
	}
	m.deal()
	return m, nil
}

// Current returns the entry being asked.
func (m *PinyinMatch) Current() vocab.Entry { return m.current() }

// Options returns the readings to choose from, in display order.
func (m *PinyinMatch) Options() []string { return slices.Clone(m.options) }

// Answer checks the chosen reading. Answering moves to the next entry either
// way once the correct reading has been revealed.
func (m *PinyinMatch) Answer(reading string) Result {
	r := m.record(reading == m.current().Pinyin)
	m.advance()
	m.deal()
	return r
}

func (m *PinyinMatch) deal() {
	correct := m.current().Pinyin
	var others []string
	for i, e := range m.items {
		if i != m.idx && e.Pinyin != correct && !slices.Contains(others, e.Pinyin) {
			others = append(others, e.Pinyin)
		}
	}
	others = shuffled(m.rng, others)
	if len(others) > 3 {
		others = others[:3]
	}
	m.options = shuffled(m.rng, append([]string{correct}, others...))
}

// Sorting asks which of the sorting initials an entry starts with.
type Sorting struct {
	tally
	rng     *rand.Rand
	entries []vocab.Entry
	current vocab.Entry
}

// NewSorting builds a sorting drill. Entries whose initial is not one of
// corpus.SortingInitials are ignored.
func NewSorting(entries []vocab.Entry, sink arcade.ScoreSink, rng *rand.Rand) (*Sorting, error) {
	var valid []vocab.Entry
	for _, e := range entries {
		if slices.Contains(corpus.SortingInitials, e.Initial) {
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyDeck
	}
	s := &Sorting{tally: tally{rule: SortingScore, sink: sink}, rng: newRand(rng), entries: valid}
	s.next()
	return s, nil
}

// Current returns the entry to sort.
func (s *Sorting) Current() vocab.Entry { return s.current }

// Categories returns the bins the player sorts into.
func (s *Sorting) Categories() []string { return slices.Clone(corpus.SortingInitials) }

// Answer checks the chosen bin. A correct answer draws a new entry.
func (s *Sorting) Answer(initial string) Result {
	r := s.record(initial == s.current.Initial)
	if r.Correct {
		s.next()
	}
	return r
}

func (s *Sorting) next() { s.current = s.entries[s.rng.IntN(len(s.entries))] }

// InitialsListen plays an entry and asks for its initial. Runs of correct
// answers earn a bonus.
type InitialsListen struct {
	tally
	deck
}

// NewInitialsListen builds the drill from the sorting-initial entries,
// shuffled.
func NewInitialsListen(entries []vocab.Entry, sink arcade.ScoreSink, rng *rand.Rand) (*InitialsListen, error) {
	var valid []vocab.Entry
	for _, e := range entries {
		if slices.Contains(corpus.SortingInitials, e.Initial) {
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyDeck
	}
	return &InitialsListen{
		tally: tally{rule: InitialsListenScore, sink: sink},
		deck:  deck{items: shuffled(newRand(rng), valid)},
	}, nil
}

// Current returns the entry being played.
func (l *InitialsListen) Current() vocab.Entry { return l.current() }

// Answer checks the chosen initial.
func (l *InitialsListen) Answer(initial string) Result {
	r := l.record(initial == l.current().Initial)
	if r.Correct {
		l.advance()
	}
	return r
}
