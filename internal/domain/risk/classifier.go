package risk

import "math"

// Level is the discrete classification of a risk score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Trend describes how a subject's scores move across historical assessments.
type Trend string

const (
	TrendStable     Trend = "stable"
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	// TrendUnknown is reported when fewer than two historical scores exist.
	TrendUnknown Trend = ""
)

// Thresholds are the inclusive lower bounds for each level above low.
// They are configuration, tuned per facility.
type Thresholds struct {
	Critical int
	High     int
	Medium   int
}

// DefaultThresholds mirror the facility's standing classification bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 80, High: 50, Medium: 20}
}

// Classify maps a score to its level using inclusive thresholds.
func (t Thresholds) Classify(score int) Level {
	switch {
	case score >= t.Critical:
		return LevelCritical
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Assessment is the derived result of scoring one subject. It is created
// fresh on every evaluation and never persisted.
type Assessment struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Factors []string `json:"factors"`
	Trend   Trend    `json:"trend,omitempty"`
}

// Aggregate returns the ward tension metric: the rounded mean of the given
// scores. An empty cohort yields 0 by definition, not an error.
func Aggregate(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return int(math.Round(float64(total) / float64(len(scores))))
}

// ComputeTrend derives the trend from historical scores, oldest first, by
// the sign of the slope between first and last. Fewer than two scores
// yield TrendUnknown; randomness has no place here.
func ComputeTrend(history []int) Trend {
	if len(history) < 2 {
		return TrendUnknown
	}
	delta := history[len(history)-1] - history[0]
	switch {
	case delta > 0:
		return TrendIncreasing
	case delta < 0:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
