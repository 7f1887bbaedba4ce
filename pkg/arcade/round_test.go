package arcade

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrischowai/Putonghua-learning/pkg/corpus"
	"github.com/chrischowai/Putonghua-learning/pkg/progress"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

type staticSource []vocab.Entry

func (s staticSource) GetAll() []vocab.Entry { return s }

var (
	bEntries = staticSource{
		{ID: "b1", Character: "爸", Pinyin: "bà", Tone: 4, Initial: "b", Final: "a"},
		{ID: "b2", Character: "白", Pinyin: "bái", Tone: 2, Initial: "b", Final: "ai"},
	}
	otherEntries = staticSource{
		{ID: "m1", Character: "媽", Pinyin: "mā", Tone: 1, Initial: "m", Final: "a"},
		{ID: "g1", Character: "狗", Pinyin: "gǒu", Tone: 3, Initial: "g", Final: "ou"},
	}
)

type recordingSink struct {
	mu     sync.Mutex
	points []int
}

func (s *recordingSink) ApplyDelta(points int) progress.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, points)
	return progress.Result{}
}

func (s *recordingSink) calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.points...)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) kinds() []EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []EventKind
	for _, e := range l.events {
		out = append(out, e.Kind)
	}
	return out
}

// lineConfig spawns every entity at x=0 moving right by 1 per motion tick in
// a play area of x < 3.
func lineConfig(target corpus.Predicate, rule ScoreRule) Config {
	return Config{
		Name:     "line",
		Duration: 10 * time.Second,
		Target:   Target{Label: "test", Match: target},
		Spawn: SpawnPolicy{
			Interval:    time.Second,
			TargetRatio: 1,
			Place:       func(*rand.Rand) (Vec, Vec) { return Vec{0, 50}, Vec{1, 0} },
		},
		MotionInterval: time.Second,
		InBounds:       func(p Vec) bool { return p.X < 3 },
		Score:          rule,
		CorrectSettle:  CorrectSettle,
		WrongSettle:    WrongSettle,
	}
}

// runningRound returns a round in the running phase without timers, so the
// step functions can be driven directly.
func runningRound(cfg Config, src Source, opts ...Option) (*Round, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	opts = append([]Option{WithClock(clock), WithRand(rand.New(rand.NewPCG(7, 7)))}, opts...)
	r := NewRound(cfg, src, opts...)
	r.phase = PhaseRunning
	return r, clock
}

func step(r *Round, fn func()) {
	r.mu.Lock()
	fn()
	r.flush()
}

func spawnOne(t *testing.T, r *Round) Entity {
	t.Helper()
	var e *Entity
	step(r, func() { e = r.spawn() })
	require.NotNil(t, e)
	return *e
}

func TestScoreRuleDelta(t *testing.T) {
	flat := Flat(10)
	bonus := ScoreRule{Base: 10, ComboBonus: 5, ComboThreshold: 2}
	for combo, want := range map[int]int{0: 10, 1: 10, 2: 15, 7: 15} {
		assert.Equal(t, 10, flat.Delta(combo))
		assert.Equal(t, want, bonus.Delta(combo), "combo %d", combo)
	}
}

func TestCorrectInteractionScoresAndSettles(t *testing.T) {
	log := &eventLog{}
	r, clock := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries, WithObserver(log.record))
	e := spawnOne(t, r)
	require.True(t, e.MatchesTarget)

	out, err := r.Interact(e.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Correct: true, Delta: 10}, out)

	snap := r.Snapshot()
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 1, snap.Combo)
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, StateResolving, snap.Entities[0].State)

	clock.Advance(CorrectSettle - time.Millisecond)
	step(r, func() { r.move(clock.Now()) })
	require.Len(t, r.Snapshot().Entities, 1)
	assert.Equal(t, Vec{0, 50}, r.Snapshot().Entities[0].Pos, "resolving entities do not move")

	clock.Advance(time.Millisecond)
	step(r, func() { r.move(clock.Now()) })
	assert.Empty(t, r.Snapshot().Entities)
	assert.Equal(t, []EventKind{EventSpawned, EventCorrect, EventRemoved}, log.kinds())
}

func TestWrongInteractionResetsCombo(t *testing.T) {
	src := append(append(staticSource{}, bEntries[:1]...), otherEntries...)
	r, clock := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), src)

	r.cfg.Spawn.TargetRatio = 1
	right := spawnOne(t, r)
	_, err := r.Interact(right.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Snapshot().Combo)

	r.cfg.Spawn.TargetRatio = 0
	wrong := spawnOne(t, r)
	require.False(t, wrong.MatchesTarget)
	out, err := r.Interact(wrong.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, Outcome{}, out)

	snap := r.Snapshot()
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 0, snap.Combo)

	// The wrong entity settles sooner than a correct one.
	clock.Advance(WrongSettle)
	step(r, func() { r.move(clock.Now()) })
	ents := r.Snapshot().Entities
	require.Len(t, ents, 1)
	assert.Equal(t, right.InstanceID, ents[0].InstanceID)
}

func TestInteractIsIdempotent(t *testing.T) {
	r, _ := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	e := spawnOne(t, r)
	_, err := r.Interact(e.InstanceID)
	require.NoError(t, err)

	out, err := r.Interact(e.InstanceID)
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	out, err = r.Interact("no-such-id")
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Equal(t, 10, r.Snapshot().Score)
	assert.Equal(t, 1, r.Snapshot().Combo)
}

func TestComboBonusSequence(t *testing.T) {
	r, _ := runningRound(RhymeTrain("a"), staticSource{bEntries[0], otherEntries[1]})
	r.cfg.Spawn.TargetRatio = 1

	var deltas []int
	for i := 0; i < 4; i++ {
		e := spawnOne(t, r)
		out, err := r.Interact(e.InstanceID)
		require.NoError(t, err)
		deltas = append(deltas, out.Delta)
	}
	assert.Equal(t, []int{10, 10, 15, 15}, deltas)
	assert.Equal(t, 50, r.Snapshot().Score)

	r.cfg.Spawn.TargetRatio = 0
	wrong := spawnOne(t, r)
	_, err := r.Interact(wrong.InstanceID)
	require.NoError(t, err)

	r.cfg.Spawn.TargetRatio = 1
	e := spawnOne(t, r)
	out, err := r.Interact(e.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Delta, "bonus restarts after a wrong answer")
	assert.Equal(t, 60, r.Snapshot().Score)
}

func TestEntityLeavingBoundsIsRemovedWithoutScore(t *testing.T) {
	log := &eventLog{}
	r, clock := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries, WithObserver(log.record))
	spawnOne(t, r)
	spawnOne(t, r)
	_, err := r.Interact(r.Snapshot().Entities[1].InstanceID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		step(r, func() { r.move(clock.Now()) })
	}
	snap := r.Snapshot()
	assert.Len(t, snap.Entities, 1, "only the resolving entity is left")
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 1, snap.Combo, "leaving the play area does not break the combo")
	assert.Contains(t, log.kinds(), EventExited)
}

func TestSpawnMix(t *testing.T) {
	mixed := append(append(staticSource{}, bEntries...), otherEntries...)

	r, _ := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), mixed)
	for i := 0; i < 20; i++ {
		assert.True(t, spawnOne(t, r).MatchesTarget)
	}

	r, _ = runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), mixed)
	r.cfg.Spawn.TargetRatio = 0
	for i := 0; i < 20; i++ {
		assert.False(t, spawnOne(t, r).MatchesTarget)
	}

	// Without distractors the round still spawns targets.
	r, _ = runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	r.cfg.Spawn.TargetRatio = 0
	assert.True(t, spawnOne(t, r).MatchesTarget)

	// Without targets only distractors appear.
	r, _ = runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), otherEntries)
	assert.False(t, spawnOne(t, r).MatchesTarget)

	r, _ = runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), staticSource{})
	var e *Entity
	step(r, func() { e = r.spawn() })
	assert.Nil(t, e)
}

func TestSpawnedInstancesAreDistinct(t *testing.T) {
	r, _ := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries[:1])
	a, b := spawnOne(t, r), spawnOne(t, r)
	assert.Equal(t, a.Entry.ID, b.Entry.ID)
	assert.NotEqual(t, a.InstanceID, b.InstanceID)
}

func TestSelectFreezesOnlyPendingEntity(t *testing.T) {
	r, clock := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	first, second := spawnOne(t, r), spawnOne(t, r)

	require.NoError(t, r.Select(first.InstanceID))
	assert.ErrorIs(t, r.Select(second.InstanceID), ErrAlreadyPending)
	step(r, func() { r.move(clock.Now()) })

	snap := r.Snapshot()
	assert.Equal(t, PhaseRunning, snap.Phase)
	assert.Equal(t, first.InstanceID, snap.Pending)
	assert.Equal(t, 0.0, snap.Entities[0].Pos.X)
	assert.Equal(t, 1.0, snap.Entities[1].Pos.X)

	out, err := r.Confirm()
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Empty(t, r.Snapshot().Pending)

	_, err = r.Confirm()
	assert.ErrorIs(t, err, ErrNoPending)
	assert.ErrorIs(t, r.Cancel(), ErrNoPending)
}

func TestCancelReleasesEntity(t *testing.T) {
	r, clock := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	e := spawnOne(t, r)
	require.NoError(t, r.Select(e.InstanceID))
	require.NoError(t, r.Cancel())
	step(r, func() { r.move(clock.Now()) })

	snap := r.Snapshot()
	assert.Equal(t, 1.0, snap.Entities[0].Pos.X)
	assert.Equal(t, StateActive, snap.Entities[0].State)
	assert.Equal(t, 0, snap.Score)
}

func TestInteractionsRejectedOutsideRunning(t *testing.T) {
	idle := NewRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	_, err := idle.Interact("x")
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, idle.Select("x"), ErrNotRunning)
	assert.ErrorIs(t, idle.Pause(), ErrNotRunning)

	sink := &recordingSink{}
	r, _ := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries, WithScoreSink(sink))
	e := spawnOne(t, r)
	_, err = r.Interact(e.InstanceID)
	require.NoError(t, err)
	r.Stop()
	r.Stop()

	_, err = r.Interact(e.InstanceID)
	assert.ErrorIs(t, err, ErrRoundEnded)
	assert.ErrorIs(t, r.Select(e.InstanceID), ErrRoundEnded)
	_, err = r.Confirm()
	assert.ErrorIs(t, err, ErrRoundEnded)
	assert.ErrorIs(t, r.Resume(), ErrRoundEnded)
	assert.Equal(t, []int{10}, sink.calls(), "final score is reported once")
}

func TestCountdownTick(t *testing.T) {
	cfg := lineConfig(corpus.HasInitial("b"), Flat(10))
	cfg.Duration = 3 * time.Second
	r, _ := runningRound(cfg, bEntries)
	assert.False(t, r.tick())
	assert.False(t, r.tick())
	assert.True(t, r.tick())
	assert.Equal(t, time.Duration(0), r.remaining)
}

func TestStopIdleRoundClosesDone(t *testing.T) {
	r := NewRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	r.Stop()
	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after stopping an idle round")
	}
	assert.Equal(t, PhaseEnded, r.Snapshot().Phase)
}

// withTickers gives a step-driven round stopped tickers on clock so Resume
// can reset them.
func withTickers(t *testing.T, r *Round, clock *clockwork.FakeClock) {
	t.Helper()
	r.spawnT = clock.NewTicker(r.cfg.Spawn.Interval)
	r.motionT = clock.NewTicker(r.cfg.MotionInterval)
	r.countT = clock.NewTicker(countdownStep)
	r.stopTimers()
	t.Cleanup(r.stopTimers)
}

func TestPauseDoesNotConsumeSettleDelay(t *testing.T) {
	r, clock := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	withTickers(t, r, clock)
	e := spawnOne(t, r)
	_, err := r.Interact(e.InstanceID)
	require.NoError(t, err)

	require.NoError(t, r.Pause())
	clock.Advance(2 * time.Second)
	require.NoError(t, r.Resume())

	step(r, func() { r.move(clock.Now()) })
	require.Len(t, r.Snapshot().Entities, 1, "settle delay ran out while paused")

	clock.Advance(CorrectSettle)
	step(r, func() { r.move(clock.Now()) })
	assert.Empty(t, r.Snapshot().Entities)
}

func TestConfirmRejectedWhileRoundPaused(t *testing.T) {
	r, _ := runningRound(lineConfig(corpus.HasInitial("b"), Flat(10)), bEntries)
	e := spawnOne(t, r)
	require.NoError(t, r.Select(e.InstanceID))
	require.NoError(t, r.Pause())

	_, err := r.Confirm()
	assert.ErrorIs(t, err, ErrNotRunning)
	snap := r.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, e.InstanceID, snap.Pending)
	assert.Equal(t, StateActive, snap.Entities[0].State)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "spawned", EventSpawned.String())
	assert.Equal(t, "ended", EventEnded.String())
	assert.Equal(t, "unknown", EventKind(99).String())
	assert.Equal(t, "unknown", EventKind(-1).String())
}
