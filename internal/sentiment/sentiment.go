package sentiment

import (
	"fmt"
	"strings"

	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/processor"
)

// Label is the coarse mood bucket printed in the briefing.
type Label string

const (
	LabelFear     Label = "fear"
	LabelCautious Label = "cautious"
	LabelNeutral  Label = "neutral"
	LabelGreed    Label = "greed"
)

// Reading is one run's sentiment estimate. Computed fresh every run, never
// persisted on its own.
type Reading struct {
	Score  int
	Label  Label
	Advice string
	// Signals records, in order, what contributed to the score so the report
	// can show its working.
	Signals []string
}

const maxKeywordTilt = 10

// Estimator combines the Fear & Greed indicator with a keyword tally over
// collected headlines. Deterministic: same inputs, same reading.
type Estimator struct {
	Positive []string
	Negative []string
}

func NewEstimator(positive, negative []string) *Estimator {
	return &Estimator{Positive: positive, Negative: negative}
}

// Estimate produces one reading. items must already be deduped so a story
// carried by two sources counts once. indicator may be nil when the index
// fetch failed; the estimate then falls back to a plain neutral reading
// instead of failing the run.
func (e *Estimator) Estimate(indicator *collector.FearGreedReading, items []processor.ProcessedItem) Reading {
	if indicator == nil {
		return Reading{
			Score:   50,
			Label:   LabelNeutral,
			Advice:  adviceFor(50),
			Signals: []string{"indicator unavailable, assuming neutral"},
		}
	}

	signals := []string{
		fmt.Sprintf("fear & greed %d/100 (%s)", indicator.Value, indicator.Classification),
	}

	pos, neg := e.tally(items)
	tilt := clamp(2*(pos-neg), -maxKeywordTilt, maxKeywordTilt)
	if pos > 0 || neg > 0 {
		signals = append(signals, fmt.Sprintf("keyword tilt %+d (%d positive / %d negative)", tilt, pos, neg))
	}

	score := clamp(indicator.Value+tilt, 0, 100)
	label := labelFor(score)
	if score <= 25 {
		signals = append(signals, "extreme fear, contrarian buy signal")
	} else if score > 75 {
		signals = append(signals, "extreme greed, take-profit signal")
	}

	return Reading{
		Score:   score,
		Label:   label,
		Advice:  adviceFor(score),
		Signals: signals,
	}
}

// tally counts keyword hits over item titles and snippets, case-insensitive.
func (e *Estimator) tally(items []processor.ProcessedItem) (pos, neg int) {
	for _, it := range items {
		text := strings.ToLower(it.Title + " " + it.Snippet)
		for _, kw := range e.Positive {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				pos++
			}
		}
		for _, kw := range e.Negative {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				neg++
			}
		}
	}
	return pos, neg
}

// Buckets follow the classic Fear & Greed bands: 0-25 extreme fear, 26-40
// fear, 41-60 neutral, 61-75 greed, 76-100 extreme greed.
func labelFor(score int) Label {
	switch {
	case score <= 25:
		return LabelFear
	case score <= 40:
		return LabelCautious
	case score <= 60:
		return LabelNeutral
	default:
		return LabelGreed
	}
}

func adviceFor(score int) string {
	switch {
	case score <= 25:
		return "Contrarian signal. High fear often precedes rallies."
	case score <= 40:
		return "Building positions on dips."
	case score <= 60:
		return "No strong directional signal."
	case score <= 75:
		return "Momentum slowing. Watch for exhaustion."
	default:
		return "Market likely overextended."
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
