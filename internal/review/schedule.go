package review

// initialSteps maps a mastery floor to the first review interval in days.
// Ordered by ascending floor; the last matching step wins.
var initialSteps = []struct {
	MinMastery int
	Days       int
}{
	{0, 1},
	{20, 2},
	{40, 3},
	{60, 5},
	{80, 7},
	{90, 10},
}

// InitialIntervalDays returns the first interval for an unreviewed item.
// Non-decreasing in mastery.
func InitialIntervalDays(mastery int) int {
	days := initialSteps[0].Days
	for _, s := range initialSteps {
		if mastery >= s.MinMastery {
			days = s.Days
		}
	}
	return days
}

// growthFactors scales the previous interval by canonical rating.
// Hard resets to the minimum interval instead.
var growthFactors = map[Rating]float64{
	Medium:   0.6,
	Good:     1.3,
	Easy:     2.0,
	VeryEasy: 2.5,
}

// Adjustment multipliers and thresholds.
const (
	strongGainThreshold = 15.0
	weakGainThreshold   = 5.0
	strongGainFactor    = 1.2
	weakGainFactor      = 0.8
	recentSessionDays   = 7
	recentSessionFactor = 1.1
	trendWindow         = 5

	improvedFactor = 1.15
	declinedFactor = 0.85

	lateGraceDays = 2
	lateFactor    = 0.9

	lowMastery        = 50
	highMastery       = 80
	lowMasteryFactor  = 0.9
	highMasteryFactor = 1.1

	// MinIntervalDays is the floor applied to every schedule.
	MinIntervalDays = 1
	// DefaultMaxIntervalDays caps intervals when the config leaves it unset.
	DefaultMaxIntervalDays = 365
)

// phaseFactors is used by the phase variant.
var phaseFactors = map[Phase]float64{
	PhaseInitial:       0.8,
	PhaseConsolidation: 1.0,
	PhaseMastery:       1.2,
}
