package ingest

import (
	"errors"
	"testing"

	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

func TestConfirmRejectsIncomplete(t *testing.T) {
	for _, d := range []vocab.Entry{
		{Character: "你好"},
		{Pinyin: "nǐ hǎo"},
		{Character: " ", Pinyin: "nǐ"},
	} {
		if _, err := Confirm(d); !errors.Is(err, ErrIncompleteEntry) {
			t.Fatalf("expected ErrIncompleteEntry for %+v, got %v", d, err)
		}
	}
}

func TestConfirmFillsDerivedFields(t *testing.T) {
	e, err := Confirm(vocab.Entry{Character: "蝦", Pinyin: "xiā", Meaning: "shrimp"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if e.Tone != 1 || e.Initial != "x" || e.Final != "iā" || e.Origin != vocab.OriginUser {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Meaning != "shrimp" {
		t.Fatalf("meaning lost: %+v", e)
	}
}

func TestConfirmInitialFallback(t *testing.T) {
	e, err := Confirm(vocab.Entry{Character: "愛", Pinyin: "ài"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if e.Initial != "à" || e.Final != "ài" || e.Tone != 4 {
		t.Fatalf("unexpected entry %+v", e)
	}
}
