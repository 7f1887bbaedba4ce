// Package pinyin holds the heuristic pinyin decomposition and the suggestion
// extractor that turns recognized text into vocabulary stubs.
//
// Decompose is deliberately approximate: games categorize entries by its
// output, so changing the rules changes which entries count as a match.
package pinyin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// Decomposition is the initial/final/tone split of a pinyin reading.
type Decomposition struct {
	Initial string
	Final   string
	Tone    int
}

// toneMarks maps toned vowel glyphs to their tone class.
var toneMarks = map[rune]int{
	'ā': 1, 'á': 2, 'ǎ': 3, 'à': 4,
	'ē': 1, 'é': 2, 'ě': 3, 'è': 4,
	'ī': 1, 'í': 2, 'ǐ': 3, 'ì': 4,
	'ō': 1, 'ó': 2, 'ǒ': 3, 'ò': 4,
	'ū': 1, 'ú': 2, 'ǔ': 3, 'ù': 4,
	'ǖ': 1, 'ǘ': 2, 'ǚ': 3, 'ǜ': 4,
}

// initials is checked in order; digraphs come before their one-letter prefixes.
var initials = []string{
	"ch", "sh", "zh",
	"b", "p", "m", "f", "d", "t", "n", "l",
	"g", "k", "h", "j", "q", "x",
	"z", "c", "s", "r", "y", "w",
}

// Decompose splits pinyinText into initial, final and tone. It never fails:
// an unmarked reading gets the neutral tone 5 and an unknown onset gets an
// empty initial. The character argument is accepted for symmetry with the
// entry shape and does not influence the result.
//
// Input is normalized to NFC first so a vowel followed by a combining tone
// mark is treated like the precomposed glyph.
func Decompose(character, pinyinText string) Decomposition {
	s := norm.NFC.String(pinyinText)

	d := Decomposition{Tone: vocab.NeutralTone}
	for _, r := range s {
		if tone, ok := toneMarks[r]; ok {
			d.Tone = tone
			break
		}
	}

	for _, ini := range initials {
		if strings.HasPrefix(s, ini) {
			d.Initial = ini
			break
		}
	}

	d.Final = stripToneDigits(strings.TrimPrefix(s, d.Initial))
	return d
}

// InitialOrFallback returns the matched initial, or the first character of
// pinyinText when no initial matched. Callers that need a non-empty grouping
// key use this.
func (d Decomposition) InitialOrFallback(pinyinText string) string {
	if d.Initial != "" {
		return d.Initial
	}
	for _, r := range norm.NFC.String(pinyinText) {
		return string(r)
	}
	return ""
}

func stripToneDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '1' && r <= '5' {
			return -1
		}
		return r
	}, s)
}
