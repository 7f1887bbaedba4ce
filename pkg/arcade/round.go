package arcade

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// countdownStep is the resolution of the round timer.
const countdownStep = time.Second

// Round is one timed play session. All state is guarded by mu; the timer
// loop and the interaction methods serialize on it, and every timer handler
// re-checks the phase so nothing mutates the round once it has ended.
type Round struct {
	cfg    Config
	src    Source
	clock  clockwork.Clock
	rng    *rand.Rand
	logger *zap.Logger
	sink   ScoreSink
	notify func(Event)
	newID  func() string

	mu          sync.Mutex
	phase       Phase
	remaining   time.Duration
	score       int
	combo       int
	entities    []*Entity
	pending     string
	selectPause bool
	pausedAt    time.Time
	outbox      []Event

	spawnT, motionT, countT clockwork.Ticker
	cancel                  context.CancelFunc
	done                    chan struct{}
}

// Option configures a Round.
type Option func(*Round)

// WithClock drives the timers from clock.
func WithClock(c clockwork.Clock) Option { return func(r *Round) { r.clock = c } }

// WithRand makes spawning deterministic.
func WithRand(rng *rand.Rand) Option { return func(r *Round) { r.rng = rng } }

// WithLogger sets the round logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Round) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithScoreSink reports the final score to sink when the round ends.
func WithScoreSink(s ScoreSink) Option { return func(r *Round) { r.sink = s } }

// WithObserver receives every event. It is called without the round lock
// held and may call back into the round.
func WithObserver(fn func(Event)) Option { return func(r *Round) { r.notify = fn } }

// NewRound creates an idle round.
func NewRound(cfg Config, src Source, opts ...Option) *Round {
	r := &Round{
		cfg:       cfg,
		src:       src,
		clock:     clockwork.NewRealClock(),
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
		remaining: cfg.Duration,
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r.logger = r.logger.With(zap.String("game", cfg.Name), zap.String("target", cfg.Target.Label))
	return r
}

// Start begins the spawn, motion and countdown timers. The round ends when
// the countdown reaches zero, Stop is called or ctx is done.
func (r *Round) Start(ctx context.Context) error {
	if err := r.cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	switch r.phase {
	case PhaseEnded:
		r.mu.Unlock()
		return ErrRoundEnded
	case PhaseRunning, PhasePaused:
		r.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.phase = PhaseRunning
	r.spawnT = r.clock.NewTicker(r.cfg.Spawn.Interval)
	r.motionT = r.clock.NewTicker(r.cfg.MotionInterval)
	r.countT = r.clock.NewTicker(countdownStep)
	spawnC, motionC, countC := r.spawnT.Chan(), r.motionT.Chan(), r.countT.Chan()
	r.mu.Unlock()

	r.logger.Info("round started", zap.Duration("duration", r.cfg.Duration))
	go r.run(ctx, spawnC, motionC, countC)
	return nil
}

func (r *Round) run(ctx context.Context, spawnC, motionC, countC <-chan time.Time) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			r.end("canceled")
			return
		case <-spawnC:
			r.onSpawn()
		case now := <-motionC:
			r.onMotion(now)
		case <-countC:
			r.onCountdown()
		}
	}
}

// Done is closed once the timer loop has exited.
func (r *Round) Done() <-chan struct{} { return r.done }

// Stop ends the round. It does not wait for the timer loop; use Done.
func (r *Round) Stop() { r.end("stopped") }

func (r *Round) onSpawn() {
	r.mu.Lock()
	if r.phase == PhaseRunning {
		r.spawn()
	}
	r.flush()
}

func (r *Round) onMotion(now time.Time) {
	r.mu.Lock()
	if r.phase == PhaseRunning {
		r.move(now)
	}
	r.flush()
}

func (r *Round) onCountdown() {
	r.mu.Lock()
	if r.phase != PhaseRunning {
		r.flush()
		return
	}
	if r.tick() {
		r.mu.Unlock()
		r.end("time up")
		return
	}
	r.flush()
}

// spawn adds one entity. A target is drawn with probability TargetRatio when
// any entry matches; otherwise a distractor is drawn, falling back to a
// target when the corpus has no distractors. Callers hold mu.
func (r *Round) spawn() *Entity {
	var targets, distractors []int
	all := r.src.GetAll()
	for i, e := range all {
		if r.cfg.Target.Match(e) {
			targets = append(targets, i)
		} else {
			distractors = append(distractors, i)
		}
	}

	var pool []int
	switch {
	case len(targets) > 0 && r.rng.Float64() < r.cfg.Spawn.TargetRatio:
		pool = targets
	case len(distractors) > 0:
		pool = distractors
	default:
		pool = targets
	}
	if len(pool) == 0 {
		return nil
	}

	entry := all[pool[r.rng.IntN(len(pool))]]
	pos, vel := r.cfg.Spawn.Place(r.rng)
	e := &Entity{
		InstanceID:    r.newID(),
		Entry:         entry,
		Pos:           pos,
		Vel:           vel,
		MatchesTarget: r.cfg.Target.Match(entry),
		State:         StateActive,
	}
	r.entities = append(r.entities, e)
	r.emit(EventSpawned, e, 0)
	return e
}

// move advances active entities, drops the ones that left the play area and
// removes resolved entities whose settle delay has passed. The entity
// awaiting confirmation stays where it is. Callers hold mu.
func (r *Round) move(now time.Time) {
	kept := r.entities[:0]
	for _, e := range r.entities {
		switch e.State {
		case StateActive:
			if e.InstanceID != r.pending {
				e.Pos = e.Pos.Add(e.Vel)
			}
			if !r.cfg.InBounds(e.Pos) {
				e.State = StateRemoved
				r.emit(EventExited, e, 0)
				continue
			}
		case StateResolving:
			if !now.Before(e.settleAt) {
				e.State = StateRemoved
				r.emit(EventRemoved, e, 0)
				continue
			}
		}
		kept = append(kept, e)
	}
	clear(r.entities[len(kept):])
	r.entities = kept
}

// tick counts down one step and reports whether time is up. Callers hold mu.
func (r *Round) tick() bool {
	r.remaining -= countdownStep
	if r.remaining <= 0 {
		r.remaining = 0
		return true
	}
	return false
}

// Interact resolves the entity immediately. Interacting with an entity that
// is already resolving or gone is a no-op.
func (r *Round) Interact(instanceID string) (Outcome, error) {
	r.mu.Lock()
	defer r.flush()
	if err := r.checkRunning(); err != nil {
		return Outcome{}, err
	}
	e := r.find(instanceID)
	if e == nil || e.State != StateActive {
		return Outcome{Ignored: true}, nil
	}
	if e.InstanceID == r.pending {
		r.pending = ""
	}
	return r.resolve(e), nil
}

// Select marks the entity as awaiting confirmation, freezing it in place.
// With PauseOnSelect the whole round pauses until Confirm or Cancel.
func (r *Round) Select(instanceID string) error {
	r.mu.Lock()
	defer r.flush()
	if err := r.checkRunning(); err != nil {
		return err
	}
	if r.pending != "" {
		return ErrAlreadyPending
	}
	e := r.find(instanceID)
	if e == nil || e.State != StateActive {
		return ErrNoEntity
	}
	r.pending = e.InstanceID
	r.emit(EventSelected, e, 0)
	if r.cfg.PauseOnSelect {
		r.pause()
		r.selectPause = true
	}
	return nil
}

// Confirm resolves the entity selected with Select and resumes the round if
// the selection paused it.
func (r *Round) Confirm() (Outcome, error) {
	r.mu.Lock()
	defer r.flush()
	if r.phase == PhaseEnded {
		return Outcome{}, ErrRoundEnded
	}
	if r.pending == "" {
		return Outcome{}, ErrNoPending
	}
	if r.phase == PhasePaused && !r.selectPause {
		return Outcome{}, ErrNotRunning
	}
	e := r.find(r.pending)
	r.pending = ""
	r.resumeAfterSelect()
	if e == nil || e.State != StateActive {
		return Outcome{Ignored: true}, nil
	}
	return r.resolve(e), nil
}

// Cancel drops the pending selection; the entity goes back to moving.
func (r *Round) Cancel() error {
	r.mu.Lock()
	defer r.flush()
	if r.phase == PhaseEnded {
		return ErrRoundEnded
	}
	if r.pending == "" {
		return ErrNoPending
	}
	r.pending = ""
	r.resumeAfterSelect()
	return nil
}

// Pause halts all three timers. Positions and remaining time are kept, and
// Resume pushes settle deadlines back by the paused time.
func (r *Round) Pause() error {
	r.mu.Lock()
	defer r.flush()
	switch r.phase {
	case PhaseEnded:
		return ErrRoundEnded
	case PhasePaused:
		return nil
	case PhaseRunning:
		r.pause()
		return nil
	}
	return ErrNotRunning
}

// Resume restarts the timers after Pause.
func (r *Round) Resume() error {
	r.mu.Lock()
	defer r.flush()
	switch r.phase {
	case PhaseEnded:
		return ErrRoundEnded
	case PhaseRunning:
		return nil
	case PhasePaused:
		r.selectPause = false
		r.resume()
		return nil
	}
	return ErrNotRunning
}

// Snapshot returns a copy of the round state.
func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		Name:      r.cfg.Name,
		Target:    r.cfg.Target.Label,
		Phase:     r.phase,
		Remaining: r.remaining,
		Score:     r.score,
		Combo:     r.combo,
		Pending:   r.pending,
		Entities:  make([]Entity, 0, len(r.entities)),
	}
	for _, e := range r.entities {
		s.Entities = append(s.Entities, *e)
	}
	return s
}

// resolve applies the scoring rule to an active entity. Callers hold mu.
func (r *Round) resolve(e *Entity) Outcome {
	now := r.clock.Now()
	e.State = StateResolving
	if e.MatchesTarget {
		delta := r.cfg.Score.Delta(r.combo)
		r.score += delta
		r.combo++
		e.Correct = true
		e.settleAt = now.Add(r.cfg.CorrectSettle)
		r.emit(EventCorrect, e, delta)
		return Outcome{Correct: true, Delta: delta}
	}
	r.combo = 0
	e.settleAt = now.Add(r.cfg.WrongSettle)
	r.emit(EventWrong, e, 0)
	return Outcome{}
}

func (r *Round) checkRunning() error {
	switch r.phase {
	case PhaseRunning:
		return nil
	case PhaseEnded:
		return ErrRoundEnded
	}
	return ErrNotRunning
}

func (r *Round) find(instanceID string) *Entity {
	i := slices.IndexFunc(r.entities, func(e *Entity) bool { return e.InstanceID == instanceID })
	if i < 0 {
		return nil
	}
	return r.entities[i]
}

func (r *Round) pause() {
	r.phase = PhasePaused
	r.pausedAt = r.clock.Now()
	r.stopTimers()
	r.emit(EventPaused, nil, 0)
}

// resume restarts the timers. Settle deadlines move forward by the time
// spent paused.
func (r *Round) resume() {
	r.phase = PhaseRunning
	paused := r.clock.Since(r.pausedAt)
	for _, e := range r.entities {
		if e.State == StateResolving {
			e.settleAt = e.settleAt.Add(paused)
		}
	}
	r.spawnT.Reset(r.cfg.Spawn.Interval)
	r.motionT.Reset(r.cfg.MotionInterval)
	r.countT.Reset(countdownStep)
	r.emit(EventResumed, nil, 0)
}

func (r *Round) resumeAfterSelect() {
	if r.selectPause && r.phase == PhasePaused {
		r.selectPause = false
		r.resume()
	}
}

func (r *Round) stopTimers() {
	for _, t := range []clockwork.Ticker{r.spawnT, r.motionT, r.countT} {
		if t != nil {
			t.Stop()
		}
	}
}

// end moves the round to ended once, stops the timers and reports the score.
func (r *Round) end(reason string) {
	r.mu.Lock()
	if r.phase == PhaseEnded {
		r.mu.Unlock()
		return
	}
	started := r.phase != PhaseIdle
	r.phase = PhaseEnded
	r.pending = ""
	r.stopTimers()
	if r.cancel != nil {
		r.cancel()
	}
	if !started {
		close(r.done)
	}
	score := r.score
	r.emit(EventEnded, nil, 0)
	r.flush()

	r.logger.Info("round ended", zap.String("reason", reason), zap.Int("score", score))
	if r.sink != nil {
		res := r.sink.ApplyDelta(score)
		if res.DidLevelUp {
			r.logger.Info("level up after round", zap.Int("level", res.Level))
		}
	}
}

// emit queues an event for delivery after the lock is released. Callers hold mu.
func (r *Round) emit(kind EventKind, e *Entity, delta int) {
	if r.notify == nil {
		return
	}
	ev := Event{Kind: kind, Delta: delta, Score: r.score, Combo: r.combo}
	if e != nil {
		ev.Entity = *e
	}
	r.outbox = append(r.outbox, ev)
}

// flush releases mu and delivers queued events.
func (r *Round) flush() {
	events := r.outbox
	r.outbox = nil
	r.mu.Unlock()
	for _, ev := range events {
		r.notify(ev)
	}
}
