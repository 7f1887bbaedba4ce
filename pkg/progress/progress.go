// Package progress tracks the cumulative score and the level derived from it.
package progress

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/chrischowai/Putonghua-learning/pkg/db"
)

// PointsPerLevel is the score needed for each level.
const PointsPerLevel = 50

// Result is the outcome of ApplyDelta.
type Result struct {
	Total      int
	Level      int
	DidLevelUp bool
}

// Tracker keeps the running total. With a KV it survives restarts.
type Tracker struct {
	mu     sync.Mutex
	total  int
	kv     db.KV
	logger *zap.Logger

	// OnLevelUp, if set, is called once per level crossed upwards.
	OnLevelUp func(level int)
}

// NewTracker creates a tracker. kv may be nil for an in-memory total; a
// stored total is restored from it. logger may be nil.
func NewTracker(kv db.KV, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{kv: kv, logger: logger}
	if kv != nil {
		raw, ok, err := kv.Get(db.KeyScore)
		switch {
		case err != nil:
			logger.Warn("score unreadable, starting at zero", zap.Error(err))
		case ok:
			if n, err := strconv.Atoi(string(raw)); err == nil && n >= 0 {
				t.total = n
			} else {
				logger.Warn("score corrupt, starting at zero", zap.ByteString("value", raw))
			}
		}
	}
	return t
}

// LevelFor returns the level for a cumulative score.
func LevelFor(total int) int {
	return total/PointsPerLevel + 1
}

// ApplyDelta adds points to the total. Negative deltas are ignored so the
// total never decreases.
func (t *Tracker) ApplyDelta(points int) Result {
	t.mu.Lock()
	before := LevelFor(t.total)
	if points > 0 {
		t.total += points
		t.persist()
	}
	res := Result{Total: t.total, Level: LevelFor(t.total)}
	res.DidLevelUp = res.Level > before
	cb := t.OnLevelUp
	t.mu.Unlock()

	if res.DidLevelUp {
		t.logger.Info("level up", zap.Int("level", res.Level), zap.Int("total", res.Total))
		if cb != nil {
			for lvl := before + 1; lvl <= res.Level; lvl++ {
				cb(lvl)
			}
		}
	}
	return res
}

// Total returns the cumulative score.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Level returns the current level.
func (t *Tracker) Level() int { return LevelFor(t.Total()) }

func (t *Tracker) persist() {
	if t.kv == nil {
		return
	}
	if err := t.kv.Put(db.KeyScore, []byte(strconv.Itoa(t.total))); err != nil {
		t.logger.Warn("persist score", zap.String("key", db.KeyScore), zap.Error(err))
	}
}
