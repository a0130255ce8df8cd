package review

import (
	"math"
	"time"
)

// FSRSParams holds the parameters of the stability model used by the fsrs
// variant.
type FSRSParams struct {
	A                float64 // scales the overall memory increase
	B                float64 // difficulty exponent
	C                float64 // stability exponent; negative saturates growth
	D                float64 // retention effect scaler
	DesiredRetention float64 // target recall probability at the due date
}

// DefaultFSRSParams returns tuned defaults.
func DefaultFSRSParams() FSRSParams {
	return FSRSParams{
		A:                3.0,
		B:                0.5,
		C:                -0.2,
		D:                4.0,
		DesiredRetention: 0.9,
	}
}

const (
	initialDifficulty = 5.0
	minDifficulty     = 1.0
	maxDifficulty     = 10.0
)

// difficultyDelta adjusts difficulty per canonical rating.
var difficultyDelta = map[Rating]float64{
	Hard:     0.5,
	Medium:   0.1,
	Good:     0,
	Easy:     -0.1,
	VeryEasy: -0.2,
}

// stabilityBonus scales the successful-review stability increase.
var stabilityBonus = map[Rating]float64{
	Medium:   0.8,
	Good:     1.0,
	Easy:     1.15,
	VeryEasy: 1.3,
}

// Retrievability is the modelled recall probability after elapsedDays for a
// memory of the given stability.
func Retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	return 1 / (1 + elapsedDays/(9*stability))
}

// Next returns the memory state after a review. A nil state starts from the
// mastery-derived initial interval.
func (p FSRSParams) Next(state *FSRSState, mastery int, rating Rating, now time.Time) FSRSState {
	if state == nil || state.Stability <= 0 {
		d := clampDifficulty(initialDifficulty + difficultyDelta[rating])
		s := float64(InitialIntervalDays(mastery))
		if rating == Hard {
			s = MinIntervalDays
		}
		return FSRSState{Stability: s, Difficulty: d, Retrievability: 1, LastReview: now}
	}

	elapsed := 0.0
	if !state.LastReview.IsZero() {
		elapsed = now.Sub(state.LastReview).Hours() / 24
	}
	r := Retrievability(elapsed, state.Stability)
	d := clampDifficulty(state.Difficulty + difficultyDelta[rating])

	if rating == Hard {
		return FSRSState{Stability: MinIntervalDays, Difficulty: d, Retrievability: r, LastReview: now}
	}

	s := p.grow(state.Stability, d, r) * stabilityBonus[rating]
	return FSRSState{
		Stability:      math.Max(s, MinIntervalDays),
		Difficulty:     d,
		Retrievability: r,
		LastReview:     now,
	}
}

// grow applies S' = S * (1 + a * D^-b * S^c * (e^(d*(1-R)) - 1)). Reviews
// made before the target retention is reached still use the target.
func (p FSRSParams) grow(stability, difficulty, retrievability float64) float64 {
	stability = math.Max(stability, 1)
	forgotten := math.Max(1-retrievability, 1-p.DesiredRetention)
	factor := p.A * math.Pow(difficulty, -p.B) * math.Pow(stability, p.C)
	return stability * (1 + factor*(math.Exp(p.D*forgotten)-1))
}

func clampDifficulty(d float64) float64 {
	return math.Min(maxDifficulty, math.Max(minDifficulty, d))
}
