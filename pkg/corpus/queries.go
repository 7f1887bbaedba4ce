package corpus

import (
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// RhymeFinals are the finals the rhyme games group by.
var RhymeFinals = []string{"a", "o", "e", "i", "u", "ai", "ei", "ao", "ou"}

// SortingInitials are the initials of the sorting game.
var SortingInitials = []string{"b", "p", "m", "f"}

// Set sizes drawn for the tone and pinyin-match games.
const (
	ToneSetSize        = 20
	PinyinMatchSetSize = 15
)

// HasInitial matches entries with the given initial.
func HasInitial(initial string) Predicate {
	return func(e vocab.Entry) bool { return e.Initial == initial }
}

// HasFinal matches entries with the given final.
func HasFinal(final string) Predicate {
	return func(e vocab.Entry) bool { return e.Final == final }
}

// HasTone matches entries with the given tone.
func HasTone(tone int) Predicate {
	return func(e vocab.Entry) bool { return e.Tone == tone }
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(e vocab.Entry) bool { return !p.match(e) }
}

// ByFinal returns all entries whose final equals final.
func (s *Store) ByFinal(final string) []vocab.Entry { return s.Filter(HasFinal(final)) }

// ByInitial returns all entries whose initial equals initial.
func (s *Store) ByInitial(initial string) []vocab.Entry { return s.Filter(HasInitial(initial)) }

// ByTone returns all entries with the given tone.
func (s *Store) ByTone(tone int) []vocab.Entry { return s.Filter(HasTone(tone)) }

// RhymeGroups groups the corpus by each of RhymeFinals. Every final is
// present in the result, possibly with no entries.
func (s *Store) RhymeGroups() map[string][]vocab.Entry {
	all := s.GetAll()
	groups := make(map[string][]vocab.Entry, len(RhymeFinals))
	for _, f := range RhymeFinals {
		groups[f] = []vocab.Entry{}
	}
	for _, e := range all {
		if _, ok := groups[e.Final]; ok {
			groups[e.Final] = append(groups[e.Final], e)
		}
	}
	return groups
}

// SortingSet returns the entries whose initial is one of SortingInitials.
func (s *Store) SortingSet() []vocab.Entry {
	return s.Filter(func(e vocab.Entry) bool {
		for _, ini := range SortingInitials {
			if e.Initial == ini {
				return true
			}
		}
		return false
	})
}

// ToneSet draws the entries for a tone quiz.
func (s *Store) ToneSet() []vocab.Entry { return s.Sample(ToneSetSize, nil) }

// PinyinMatchSet draws the entries for a pinyin-match game.
func (s *Store) PinyinMatchSet() []vocab.Entry { return s.Sample(PinyinMatchSetSize, nil) }
