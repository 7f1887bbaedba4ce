package pinyin

import "github.com/chrischowai/Putonghua-learning/pkg/vocab"

// MaxSuggestionLen is the longest run kept; games use one- or two-character units.
const MaxSuggestionLen = 2

func isIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

// Extract scans rawText for maximal runs of CJK unified ideographs and returns
// one stub per distinct run of at most MaxSuggestionLen characters, in the
// order each run first appears. Longer runs are discarded, not truncated.
// Stubs carry no pinyin; a person fills it in before the entry is saved.
func Extract(rawText string) []vocab.Entry {
	var runs []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			runs = append(runs, string(current))
			current = current[:0]
		}
	}
	for _, r := range rawText {
		if isIdeograph(r) {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()

	seen := make(map[string]bool, len(runs))
	var out []vocab.Entry
	for _, run := range runs {
		if seen[run] {
			continue
		}
		seen[run] = true
		if len([]rune(run)) > MaxSuggestionLen {
			continue
		}
		out = append(out, vocab.Entry{
			Character: run,
			Tone:      vocab.NeutralTone,
			Origin:    vocab.OriginUser,
		})
	}
	return out
}
