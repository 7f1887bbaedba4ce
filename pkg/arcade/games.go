package arcade

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/chrischowai/Putonghua-learning/pkg/corpus"
)

// Settle delays shared by the presets.
const (
	CorrectSettle = 500 * time.Millisecond
	WrongSettle   = 300 * time.Millisecond
	motionTick    = 50 * time.Millisecond
)

// FishingInitials are the initials a fishing round can ask for.
var FishingInitials = []string{"b", "p", "m", "f", "d", "t", "n", "l"}

// BalloonTones are the tones a balloon round can ask for.
var BalloonTones = []int{1, 2, 3, 4}

// Games lists the preset names accepted by Preset.
var Games = []string{"fishing", "rhyme", "balloons"}

// Fishing asks the player to catch fish whose initial is initial. Fish swim
// in from either side; picking one pauses the round until the catch is
// confirmed or canceled.
func Fishing(initial string) Config {
	return Config{
		Name:     "fishing",
		Duration: 45 * time.Second,
		Target:   Target{Label: initial, Match: corpus.HasInitial(initial)},
		Spawn: SpawnPolicy{
			Interval:    1200 * time.Millisecond,
			TargetRatio: 0.4,
			Place: func(rng *rand.Rand) (Vec, Vec) {
				speed := 0.2 + rng.Float64()*0.3
				y := 20 + rng.Float64()*60
				if rng.IntN(2) == 0 {
					return Vec{-15, y}, Vec{speed, 0}
				}
				return Vec{115, y}, Vec{-speed, 0}
			},
		},
		MotionInterval: motionTick,
		InBounds:       func(p Vec) bool { return p.X > -20 && p.X < 120 },
		Score:          Flat(10),
		CorrectSettle:  CorrectSettle,
		WrongSettle:    WrongSettle,
		PauseOnSelect:  true,
	}
}

// RhymeTrain asks the player to load carriages whose final is final. Words
// enter from the right and drift left.
func RhymeTrain(final string) Config {
	return Config{
		Name:     "rhyme",
		Duration: 60 * time.Second,
		Target:   Target{Label: final, Match: corpus.HasFinal(final)},
		Spawn: SpawnPolicy{
			Interval:    2000 * time.Millisecond,
			TargetRatio: 0.4,
			Place: func(rng *rand.Rand) (Vec, Vec) {
				return Vec{100, 10 + rng.Float64()*40}, Vec{-(0.2 + rng.Float64()*0.2), 0}
			},
		},
		MotionInterval: motionTick,
		InBounds:       func(p Vec) bool { return p.X > -20 },
		Score:          ScoreRule{Base: 10, ComboBonus: 5, ComboThreshold: 2},
		CorrectSettle:  CorrectSettle,
		WrongSettle:    WrongSettle,
	}
}

// ToneBalloons asks the player to pop balloons carrying a word of the given
// tone. Balloons rise from below the play area.
func ToneBalloons(tone int) Config {
	return Config{
		Name:     "balloons",
		Duration: 45 * time.Second,
		Target:   Target{Label: strconv.Itoa(tone), Match: corpus.HasTone(tone)},
		Spawn: SpawnPolicy{
			Interval:    1500 * time.Millisecond,
			TargetRatio: 0.4,
			Place: func(rng *rand.Rand) (Vec, Vec) {
				return Vec{10 + rng.Float64()*80, 110}, Vec{0, -(0.2 + rng.Float64()*0.3)}
			},
		},
		MotionInterval: motionTick,
		InBounds:       func(p Vec) bool { return p.Y > -20 },
		Score:          Flat(10),
		CorrectSettle:  CorrectSettle,
		WrongSettle:    WrongSettle,
	}
}

// Preset builds the named game. An empty target picks one at random.
func Preset(name, target string, rng *rand.Rand) (Config, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	switch name {
	case "fishing":
		if target == "" {
			target = FishingInitials[rng.IntN(len(FishingInitials))]
		}
		return Fishing(target), nil
	case "rhyme":
		if target == "" {
			target = corpus.RhymeFinals[rng.IntN(len(corpus.RhymeFinals))]
		} else if !slices.Contains(corpus.RhymeFinals, target) {
			return Config{}, fmt.Errorf("rhyme: unknown final %q", target)
		}
		return RhymeTrain(target), nil
	case "balloons":
		if target == "" {
			return ToneBalloons(BalloonTones[rng.IntN(len(BalloonTones))]), nil
		}
		tone, err := strconv.Atoi(target)
		if err != nil || tone < 1 || tone > 4 {
			return Config{}, fmt.Errorf("balloons: tone must be 1-4, got %q", target)
		}
		return ToneBalloons(tone), nil
	}
	return Config{}, fmt.Errorf("unknown game %q", name)
}
