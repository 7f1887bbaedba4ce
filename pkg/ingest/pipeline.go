// Package ingest turns uploaded documents into text and vocabulary
// suggestions. Each upload becomes a LibraryFile that moves from processing
// to ready or error exactly once; every transition is persisted.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrischowai/Putonghua-learning/pkg/pinyin"
	"github.com/chrischowai/Putonghua-learning/pkg/recognize"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// PlaceholderText is returned for PDF and Word uploads, which are not
// extracted. It tells the reader to upload an image or a text file instead.
const PlaceholderText = "這是模擬的提取文字。因為瀏覽器限制，PDF和Word需要後端支持。請上傳圖片或TXT文件。"

// DefaultPlaceholderDelay is the simulated extraction time for PDF and Word.
const DefaultPlaceholderDelay = 1500 * time.Millisecond

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Upload is a document handed to the pipeline.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Pipeline records uploads and extracts their text.
type Pipeline struct {
	Files      *Files
	Recognizer recognize.Recognizer
	// Languages are the hints passed to the recognizer.
	Languages        []string
	Clock            clockwork.Clock
	PlaceholderDelay time.Duration
	// Logger is used for recovered failures. nil means no logging.
	Logger *zap.Logger
	// OnProcessed is called after a submitted upload reaches a terminal status.
	OnProcessed func(file vocab.LibraryFile, text string, suggestions []vocab.Entry)

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface

	// NewID allocates file ids.
	NewID func() string

	mu   sync.Mutex
	pool WorkerPoolInterface
}

// NewPipeline creates a Pipeline with default settings. rec may be nil, in
// which case every image upload ends in error.
func NewPipeline(files *Files, rec recognize.Recognizer) *Pipeline {
	return &Pipeline{
		Files:            files,
		Recognizer:       rec,
		Languages:        recognize.DefaultLanguages,
		Clock:            clockwork.NewRealClock(),
		PlaceholderDelay: DefaultPlaceholderDelay,
		Workers:          2,
		NewID:            uuid.NewString,
	}
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Ingest classifies the upload and persists a processing record for it.
// Images also get a stored preview.
func (p *Pipeline) Ingest(up Upload) (vocab.LibraryFile, error) {
	file := vocab.LibraryFile{
		ID:         "file-" + p.NewID(),
		Name:       up.Name,
		Kind:       Classify(up.Name, up.MIMEType),
		UploadedAt: p.Clock.Now(),
		Status:     vocab.StatusProcessing,
	}
	if file.Kind == vocab.KindImage {
		ref, err := p.Files.SavePreview(file.ID, up.Data)
		if err != nil {
			return vocab.LibraryFile{}, err
		}
		file.PreviewRef = ref
	}
	if err := p.Files.Save(file); err != nil {
		if file.PreviewRef != "" {
			p.Files.dropPreview(file.PreviewRef)
		}
		return vocab.LibraryFile{}, fmt.Errorf("save %s: %w", file.Name, err)
	}
	p.logger().Info("file ingested",
		zap.String("file", file.ID), zap.String("name", file.Name), zap.String("kind", string(file.Kind)))
	return file, nil
}

// Process extracts the text of an ingested file and moves it to ready or
// error. Extraction failures are absorbed: the file is marked error and the
// returned text is empty.
func (p *Pipeline) Process(ctx context.Context, file *vocab.LibraryFile, up Upload) string {
	log := p.logger().With(zap.String("file", file.ID), zap.String("kind", string(file.Kind)))

	var text string
	var err error
	switch file.Kind {
	case vocab.KindImage:
		text, err = p.recognize(ctx, up)
	case vocab.KindText:
		text = p.readText(up, log)
	default:
		text, err = p.placeholder(ctx)
	}

	if err != nil {
		log.Warn("extraction failed", zap.Error(err))
		p.finish(file, vocab.StatusError, "", log)
		return ""
	}
	p.finish(file, vocab.StatusReady, text, log)
	return text
}

func (p *Pipeline) recognize(ctx context.Context, up Upload) (string, error) {
	if p.Recognizer == nil {
		return "", errors.New("no recognizer configured")
	}
	text, err := p.Recognizer.Recognize(ctx, up.Data, up.MIMEType, p.Languages)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", recognize.ErrEmptyResult
	}
	return text, nil
}

// readText returns plain text verbatim. HTML is reduced to its article text
// when possible and otherwise kept verbatim.
func (p *Pipeline) readText(up Upload, log *zap.Logger) string {
	if !isHTML(up.Name, up.MIMEType) {
		return string(up.Data)
	}
	text, err := ExtractHTML(up.Name, up.Data)
	if err != nil {
		log.Debug("readability failed, keeping raw html", zap.Error(err))
		return string(up.Data)
	}
	return text
}

func (p *Pipeline) placeholder(ctx context.Context) (string, error) {
	select {
	case <-p.Clock.After(p.PlaceholderDelay):
		return PlaceholderText, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Pipeline) finish(file *vocab.LibraryFile, to vocab.FileStatus, text string, log *zap.Logger) {
	if err := file.Transition(to, text); err != nil {
		log.Warn("status transition rejected", zap.Error(err))
		return
	}
	ok, err := p.Files.Update(*file)
	if err != nil {
		log.Warn("persist file status", zap.String("status", string(to)), zap.Error(err))
		return
	}
	if !ok {
		log.Info("file deleted while processing, result dropped", zap.String("status", string(to)))
		return
	}
	log.Info("file processed", zap.String("status", string(to)), zap.Int("chars", len([]rune(text))))
}

// Start runs the worker pool used by Submit. It stops when ctx is done or
// Close is called.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return
	}
	if p.PoolFactory != nil {
		p.pool = p.PoolFactory(p.Workers, p.Workers*2)
	} else {
		p.pool = NewWorkerPool(p.Workers, p.Workers*2)
	}
	p.pool.Start(ctx)
}

// Submit ingests the upload and queues its processing. The returned record
// is still processing; completion is visible through Files and OnProcessed.
// If the job cannot be queued the file is marked error.
func (p *Pipeline) Submit(ctx context.Context, up Upload) (vocab.LibraryFile, error) {
	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return vocab.LibraryFile{}, errors.New("pipeline not started")
	}

	file, err := p.Ingest(up)
	if err != nil {
		return vocab.LibraryFile{}, err
	}
	job := func(ctx context.Context) error {
		f := file
		text := p.Process(ctx, &f, up)
		if p.OnProcessed != nil {
			var suggestions []vocab.Entry
			if f.Status == vocab.StatusReady {
				suggestions = pinyin.Extract(text)
			}
			p.OnProcessed(f, text, suggestions)
		}
		return nil
	}
	if err := pool.SubmitCtx(ctx, job); err != nil {
		f := file
		p.finish(&f, vocab.StatusError, "", p.logger().With(zap.String("file", f.ID)))
		return f, fmt.Errorf("queue %s: %w", file.Name, err)
	}
	return file, nil
}

// Close waits for queued uploads to finish processing.
func (p *Pipeline) Close() {
	p.mu.Lock()
	pool := p.pool
	p.pool = nil
	p.mu.Unlock()
	if pool != nil {
		pool.Close()
	}
}

// List returns the uploaded files in upload order.
func (p *Pipeline) List() []vocab.LibraryFile { return p.Files.List() }

// Delete removes an uploaded file. Unknown ids are ignored.
func (p *Pipeline) Delete(id string) error { return p.Files.Delete(id) }
