package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// failingPool always returns an error on Submit to simulate a full or closed queue.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() {}

func TestSubmitErrorMarksFileError(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	// Inject failing pool so the first Submit returns an error
	p.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p.Start(ctx)
	defer p.Close()

	f, err := p.Submit(ctx, Upload{Name: "a.txt", MIMEType: "text/plain", Data: []byte("字")})
	if err == nil {
		t.Fatalf("expected submit error, got nil")
	}
	if f.Status != vocab.StatusError {
		t.Fatalf("expected returned record in error, got %s", f.Status)
	}
	saved, ok := p.Files.Get(f.ID)
	if !ok || saved.Status != vocab.StatusError {
		t.Fatalf("expected persisted error status, got %+v", saved)
	}
}
