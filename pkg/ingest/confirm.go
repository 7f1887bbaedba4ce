package ingest

import (
	"errors"
	"strings"

	"github.com/chrischowai/Putonghua-learning/pkg/pinyin"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// ErrIncompleteEntry is returned when a draft lacks its character or pinyin.
var ErrIncompleteEntry = errors.New("entry needs both character and pinyin")

// Confirm validates a suggestion edited by the user and fills its derived
// fields. The result is ready for corpus.Store.Add.
func Confirm(draft vocab.Entry) (vocab.Entry, error) {
	draft.Character = strings.TrimSpace(draft.Character)
	draft.Pinyin = strings.TrimSpace(draft.Pinyin)
	if draft.Character == "" || draft.Pinyin == "" {
		return vocab.Entry{}, ErrIncompleteEntry
	}
	d := pinyin.Decompose(draft.Character, draft.Pinyin)
	draft.Tone = d.Tone
	draft.Initial = d.InitialOrFallback(draft.Pinyin)
	draft.Final = d.Final
	draft.Origin = vocab.OriginUser
	return draft, nil
}
