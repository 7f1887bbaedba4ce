// Package arcade runs the timed mini-games. Every game is the same round
// loop: a spawn timer adds entities drawn from the corpus, a motion timer
// moves them and drops the ones that leave the play area, and a countdown
// ends the round. Games differ only in their Config.
package arcade

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chrischowai/Putonghua-learning/pkg/corpus"
	"github.com/chrischowai/Putonghua-learning/pkg/progress"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

var (
	ErrNotRunning     = errors.New("round is not running")
	ErrRoundEnded     = errors.New("round has ended")
	ErrNoPending      = errors.New("no entity is awaiting confirmation")
	ErrAlreadyPending = errors.New("another entity is awaiting confirmation")
	ErrNoEntity       = errors.New("no such entity")
)

// Phase is the lifecycle of a round.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// EntityState is the lifecycle of a spawned entity.
type EntityState int

const (
	StateActive EntityState = iota
	StateResolving
	StateRemoved
)

func (s EntityState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateResolving:
		return "resolving"
	case StateRemoved:
		return "removed"
	}
	return "unknown"
}

// Vec is a position or velocity in play-area percent units.
type Vec struct{ X, Y float64 }

// Add returns v+w.
func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y} }

// Entity is one spawned instance of a corpus entry. The same entry can be on
// screen several times under different instance ids.
type Entity struct {
	InstanceID    string
	Entry         vocab.Entry
	Pos           Vec
	Vel           Vec
	MatchesTarget bool
	State         EntityState
	// Correct is set once the entity is resolving.
	Correct bool

	settleAt time.Time
}

// Target is the winning condition of a round.
type Target struct {
	Label string
	Match corpus.Predicate
}

// ScoreRule is the points for a correct interaction. ComboBonus is added
// when the combo before the interaction is at least ComboThreshold; a zero
// bonus means a flat score.
type ScoreRule struct {
	Base           int
	ComboBonus     int
	ComboThreshold int
}

// Delta returns the points for a correct answer given the combo before it.
func (r ScoreRule) Delta(comboBefore int) int {
	if r.ComboBonus > 0 && comboBefore >= r.ComboThreshold {
		return r.Base + r.ComboBonus
	}
	return r.Base
}

// Flat is a ScoreRule without a combo bonus.
func Flat(points int) ScoreRule { return ScoreRule{Base: points} }

// SpawnPolicy controls how often and where entities appear.
type SpawnPolicy struct {
	Interval time.Duration
	// TargetRatio is the probability that a spawn is drawn from the entries
	// matching the target.
	TargetRatio float64
	// Place returns the start position and velocity of a new entity.
	Place func(rng *rand.Rand) (pos, vel Vec)
}

// Config parameterizes a round.
type Config struct {
	Name           string
	Duration       time.Duration
	Target         Target
	Spawn          SpawnPolicy
	MotionInterval time.Duration
	// InBounds reports whether a position is inside the play area. Entities
	// that leave it are removed without scoring.
	InBounds func(Vec) bool
	Score    ScoreRule
	// Settle delays before a resolved entity is removed.
	CorrectSettle time.Duration
	WrongSettle   time.Duration
	// PauseOnSelect pauses the whole round while a selection awaits
	// confirmation.
	PauseOnSelect bool
}

// Validate reports a config the round loop cannot run.
func (c Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%s: duration must be positive", c.Name)
	case c.Spawn.Interval <= 0 || c.MotionInterval <= 0:
		return fmt.Errorf("%s: spawn and motion intervals must be positive", c.Name)
	case c.Spawn.Place == nil || c.InBounds == nil:
		return fmt.Errorf("%s: placement and bounds are required", c.Name)
	case c.Target.Match == nil:
		return fmt.Errorf("%s: target predicate is required", c.Name)
	}
	return nil
}

// Source provides the entries a round spawns from.
type Source interface {
	GetAll() []vocab.Entry
}

// ScoreSink receives the final score of a round.
type ScoreSink interface {
	ApplyDelta(points int) progress.Result
}

// EventKind classifies round events.
type EventKind int

const (
	EventSpawned EventKind = iota
	EventCorrect
	EventWrong
	EventExited
	EventRemoved
	EventSelected
	EventPaused
	EventResumed
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventSpawned:
		return "spawned"
	case EventCorrect:
		return "correct"
	case EventWrong:
		return "wrong"
	case EventExited:
		return "exited"
	case EventRemoved:
		return "removed"
	case EventSelected:
		return "selected"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventEnded:
		return "ended"
	}
	return "unknown"
}

// Event is what the presentation layer renders and plays sounds for.
type Event struct {
	Kind   EventKind
	Entity Entity
	Delta  int
	Score  int
	Combo  int
}

// Outcome is the result of resolving an interaction.
type Outcome struct {
	// Ignored is true when the entity was no longer active.
	Ignored bool
	Correct bool
	Delta   int
}

// Snapshot is a consistent copy of the round state.
type Snapshot struct {
	Name      string
	Target    string
	Phase     Phase
	Remaining time.Duration
	Score     int
	Combo     int
	Pending   string
	Entities  []Entity
}
