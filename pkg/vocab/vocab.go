// Package vocab holds the data model shared by the corpus, the ingestion
// pipeline and the games.
package vocab

import (
	"errors"
	"fmt"
	"time"
)

// NeutralTone is the tone number used for unmarked syllables.
const NeutralTone = 5

// Origin records where an entry came from.
type Origin string

const (
	OriginSystem Origin = "system"
	OriginUser   Origin = "user"
)

// Entry is one learnable character or word with its phonetic metadata.
// System entries are immutable; user entries are created by confirmation
// or manual entry and destroyed only by explicit deletion.
type Entry struct {
	ID        string `json:"id"`
	Character string `json:"char"`
	Pinyin    string `json:"pinyin"`
	Tone      int    `json:"tone"`
	Initial   string `json:"initial,omitempty"`
	Final     string `json:"final,omitempty"`
	Meaning   string `json:"meaning,omitempty"`
	// DialectVariant is the Cantonese form used by the vocab bridge.
	DialectVariant string `json:"cantonese,omitempty"`
	Origin         Origin `json:"source,omitempty"`
}

// IsUser reports whether the entry belongs to the mutable user set.
func (e Entry) IsUser() bool { return e.Origin == OriginUser }

// FileKind classifies an uploaded document.
type FileKind string

const (
	KindImage FileKind = "image"
	KindText  FileKind = "text"
	KindPDF   FileKind = "pdf"
	KindWord  FileKind = "word"
)

// FileStatus is the extraction state of a LibraryFile.
type FileStatus string

const (
	StatusProcessing FileStatus = "processing"
	StatusReady      FileStatus = "ready"
	StatusError      FileStatus = "error"
)

// ErrInvalidTransition is returned when a file leaves a terminal status.
var ErrInvalidTransition = errors.New("invalid file status transition")

// LibraryFile is one uploaded source document.
type LibraryFile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       FileKind   `json:"type"`
	UploadedAt time.Time  `json:"uploadDate"`
	Status     FileStatus `json:"status"`
	Content    string     `json:"content,omitempty"`
	PreviewRef string     `json:"previewUrl,omitempty"`
}

// Transition moves the file from processing to a terminal status. Content is
// only kept for ready files.
func (f *LibraryFile) Transition(to FileStatus, content string) error {
	if f.Status != StatusProcessing {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, f.ID, f.Status)
	}
	switch to {
	case StatusReady:
		f.Content = content
	case StatusError:
		f.Content = ""
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.Status, to)
	}
	f.Status = to
	return nil
}
