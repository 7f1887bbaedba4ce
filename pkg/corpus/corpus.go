// Package corpus combines the immutable system vocabulary with the persisted
// user vocabulary and answers the queries the games are built on.
package corpus

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrischowai/Putonghua-learning/pkg/db"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// Predicate selects entries. A nil Predicate matches everything.
type Predicate func(vocab.Entry) bool

func (p Predicate) match(e vocab.Entry) bool { return p == nil || p(e) }

// Store holds the system baseline and the user set persisted in a KV.
// Reads return a fresh slice; writes are last-write-wins.
type Store struct {
	system []vocab.Entry
	kv     db.KV
	logger *zap.Logger

	mu  sync.RWMutex
	rng *rand.Rand
	// newID allocates user entry ids.
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recovered persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRand makes sampling deterministic.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rng = r }
}

// New creates a Store over the given system entries. The slice is copied and
// every entry is tagged as a system entry.
func New(system []vocab.Entry, kv db.KV, opts ...Option) *Store {
	baseline := make([]vocab.Entry, len(system))
	copy(baseline, system)
	for i := range baseline {
		baseline[i].Origin = vocab.OriginSystem
	}
	s := &Store{
		system: baseline,
		kv:     kv,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// System returns a copy of the system entries.
func (s *Store) System() []vocab.Entry {
	return slices.Clone(s.system)
}

// User returns the persisted user entries in insertion order.
func (s *Store) User() []vocab.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadUser()
}

// GetAll returns system entries followed by user entries.
func (s *Store) GetAll() []vocab.Entry {
	s.mu.RLock()
	user := s.loadUser()
	s.mu.RUnlock()
	out := make([]vocab.Entry, 0, len(s.system)+len(user))
	out = append(out, s.system...)
	return append(out, user...)
}

// Add assigns a fresh id, marks the entry as a user entry and persists it.
// Field completeness is validated by callers.
func (s *Store) Add(e vocab.Entry) (vocab.Entry, error) {
	e.ID = s.newID()
	e.Origin = vocab.OriginUser

	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.loadUser()
	user = append(user, e)
	if err := db.SaveList(s.kv, db.KeyUserVocabulary, user); err != nil {
		return vocab.Entry{}, err
	}
	s.logger.Debug("vocabulary added", zap.String("id", e.ID), zap.String("char", e.Character))
	return e, nil
}

// Remove deletes the user entry with the given id. Unknown ids and system ids
// are ignored.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.loadUser()
	n := len(user)
	kept := slices.DeleteFunc(user, func(e vocab.Entry) bool { return e.ID == id })
	if len(kept) == n {
		return nil
	}
	return db.SaveList(s.kv, db.KeyUserVocabulary, kept)
}

// Sample returns at most count entries matching pred in random order. When
// fewer than count entries match, matching system entries are added again to
// the pool before deduplication by id. It never fails; an empty corpus yields
// an empty result.
func (s *Store) Sample(count int, pred Predicate) []vocab.Entry {
	if count <= 0 {
		return []vocab.Entry{}
	}
	pool := s.Filter(pred)
	if len(pool) < count {
		for _, e := range s.system {
			if pred.match(e) {
				pool = append(pool, e)
			}
		}
	}

	seen := make(map[string]bool, len(pool))
	unique := pool[:0]
	for _, e := range pool {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		unique = append(unique, e)
	}

	s.mu.Lock()
	s.rng.Shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })
	s.mu.Unlock()

	if len(unique) > count {
		unique = unique[:count]
	}
	return unique
}

// Filter returns every entry of GetAll matching pred.
func (s *Store) Filter(pred Predicate) []vocab.Entry {
	all := s.GetAll()
	out := make([]vocab.Entry, 0, len(all))
	for _, e := range all {
		if pred.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// loadUser reads the persisted user set. Corrupt or unreadable data is
// logged and treated as empty. Callers hold mu.
func (s *Store) loadUser() []vocab.Entry {
	user, err := db.LoadList[vocab.Entry](s.kv, db.KeyUserVocabulary)
	if err != nil {
		s.logger.Warn("user vocabulary unreadable, treating as empty",
			zap.String("key", db.KeyUserVocabulary), zap.Error(err))
		return nil
	}
	return user
}
