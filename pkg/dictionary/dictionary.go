// Package dictionary provides the static data the games are built on: the
// system vocabulary, the word-assembly puzzles and the dialect bridge pairs.
package dictionary

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

//go:embed data/*.json
var dataFS embed.FS

// Puzzle is one hand-authored two-character word to assemble.
type Puzzle struct {
	ID          string   `json:"id"`
	Word        string   `json:"word"`
	Pinyin      string   `json:"pinyin"`
	Meaning     string   `json:"meaning"`
	Chars       []string `json:"chars"`
	Distractors []string `json:"distractors"`
}

// SystemVocabulary returns the built-in vocabulary, tagged as system entries.
func SystemVocabulary() ([]vocab.Entry, error) {
	return loadEmbedded("data/system_vocab.json")
}

// BridgePairs returns the Mandarin words with their Cantonese variants.
func BridgePairs() ([]vocab.Entry, error) {
	return loadEmbedded("data/bridge.json")
}

// Puzzles returns the word-assembly puzzles in authoring order.
func Puzzles() ([]Puzzle, error) {
	raw, err := dataFS.ReadFile("data/puzzles.json")
	if err != nil {
		return nil, err
	}
	var out []Puzzle
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse puzzles: %w", err)
	}
	return out, nil
}

// LoadVocabulary reads a replacement system vocabulary from path. The file is
// either a JSON array of entries or an object of the form {"words": [...]}.
func LoadVocabulary(path string) ([]vocab.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeEntries(f)
}

func loadEmbedded(name string) ([]vocab.Entry, error) {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return decodeEntries(bytes.NewReader(raw))
}

func decodeEntries(r io.ReadSeeker) ([]vocab.Entry, error) {
	var wrapped struct {
		Words []vocab.Entry `json:"words"`
	}
	var entries []vocab.Entry
	// Try the {"words": [...]} wrapper first, then a bare array.
	if err := json.NewDecoder(r).Decode(&wrapped); err == nil && len(wrapped.Words) > 0 {
		entries = wrapped.Words
	} else {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to parse vocabulary as object or array: %w", err)
		}
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		id := entries[i].ID
		if id == "" {
			return nil, fmt.Errorf("entry %d (%s) has no id", i, entries[i].Character)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate entry id %q", id)
		}
		seen[id] = true
		entries[i].Origin = vocab.OriginSystem
		if entries[i].Tone == 0 {
			entries[i].Tone = vocab.NeutralTone
		}
	}
	return entries, nil
}
