package ingest

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// Classify maps an upload's name and MIME type to a file kind. Anything that
// is not an image, text or PDF is treated as a word-processor document.
func Classify(name, mimeType string) vocab.FileKind {
	mt := strings.ToLower(mimeType)
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return vocab.KindImage
	case mt == "text/plain" || mt == "text/html" || ext == ".txt" || ext == ".html" || ext == ".htm":
		return vocab.KindText
	case mt == "application/pdf" || ext == ".pdf":
		return vocab.KindPDF
	default:
		return vocab.KindWord
	}
}

// isHTML reports whether a text upload should go through article extraction.
func isHTML(name, mimeType string) bool {
	mt := strings.ToLower(mimeType)
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	ext := strings.ToLower(filepath.Ext(name))
	return mt == "text/html" || ext == ".html" || ext == ".htm"
}
