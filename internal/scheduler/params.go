package scheduler

import (
	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"
)

// AnkiParameters configures the SM-2-style stepped algorithm. Step ladders
// are in minutes, intervals in days.
type AnkiParameters struct {
	// LapseInterval is the multiplier applied to the interval on failure.
	LapseInterval float64 `json:"lapseInterval"`
	// EasyInterval is the fixed interval in days for an easy rating during
	// learning or relearning.
	EasyInterval float64 `json:"easyInterval"`
	// EasyBonus is the multiplier applied to the interval when a review
	// card is rated easy.
	EasyBonus float64 `json:"easyBonus"`
	// GraduatingInterval is the interval in days when a card graduates
	// from learning to review.
	GraduatingInterval float64 `json:"graduatingInterval"`
	// MinEaseFactor is the lower bound for a card's ease factor.
	MinEaseFactor float64 `json:"minEaseFactor"`
	// EaseFactorDecrement is subtracted from the ease factor on "again".
	EaseFactorDecrement float64 `json:"easeFactorDecrement"`
	// EaseFactorIncrement is added to the ease factor on "easy" (and
	// subtracted on "hard").
	EaseFactorIncrement float64 `json:"easeFactorIncrement"`
	// HardIntervalMultiplier is applied to the interval on "hard".
	HardIntervalMultiplier float64 `json:"hardIntervalMultiplier"`
	// LearningSteps are the minute delays for new cards in learning.
	LearningSteps []float64 `json:"learningSteps"`
	// RelearningSteps are the minute delays for lapsed cards in relearning.
	RelearningSteps []float64 `json:"relearningSteps"`
}

// DefaultAnkiParameters returns the stock Anki-style parameter values.
func DefaultAnkiParameters() AnkiParameters {
	return AnkiParameters{
		LapseInterval:          0.5,
		EasyInterval:           4,
		EasyBonus:              1.3,
		GraduatingInterval:     1,
		MinEaseFactor:          1.3,
		EaseFactorDecrement:    0.2,
		EaseFactorIncrement:    0.15,
		HardIntervalMultiplier: 1.2,
		LearningSteps:          []float64{1, 10},
		RelearningSteps:        []float64{10},
	}
}

// merged fills every zero-valued field of p from base. Nil step ladders
// inherit from base; pass an empty non-nil slice for genuinely empty steps.
func (p AnkiParameters) merged(base AnkiParameters) AnkiParameters {
	out := p
	if out.LapseInterval == 0 {
		out.LapseInterval = base.LapseInterval
	}
	if out.EasyInterval == 0 {
		out.EasyInterval = base.EasyInterval
	}
	if out.EasyBonus == 0 {
		out.EasyBonus = base.EasyBonus
	}
	if out.GraduatingInterval == 0 {
		out.GraduatingInterval = base.GraduatingInterval
	}
	if out.MinEaseFactor == 0 {
		out.MinEaseFactor = base.MinEaseFactor
	}
	if out.EaseFactorDecrement == 0 {
		out.EaseFactorDecrement = base.EaseFactorDecrement
	}
	if out.EaseFactorIncrement == 0 {
		out.EaseFactorIncrement = base.EaseFactorIncrement
	}
	if out.HardIntervalMultiplier == 0 {
		out.HardIntervalMultiplier = base.HardIntervalMultiplier
	}
	if out.LearningSteps == nil {
		out.LearningSteps = base.LearningSteps
	}
	if out.RelearningSteps == nil {
		out.RelearningSteps = base.RelearningSteps
	}
	return out
}

// FSRSParameters configures the memory-model algorithm.
type FSRSParameters struct {
	// W is the 19-element weight vector driving the memory model.
	W []float64 `json:"w"`
	// RequestRetention is the target probability of recall.
	RequestRetention float64 `json:"requestRetention"`
	// MaximumInterval caps the interval in days between reviews.
	MaximumInterval float64 `json:"maximumInterval"`
	// EnableFuzz adds random variation to intervals.
	EnableFuzz bool `json:"enableFuzz"`
	// EnableShortTerm enables same-day short-term memory handling.
	EnableShortTerm bool `json:"enableShortTerm"`
}

// DefaultFSRSParameters returns the stock FSRS parameter values.
func DefaultFSRSParameters() FSRSParameters {
	w := fsrs.DefaultParam().W
	return FSRSParameters{
		W:                w[:],
		RequestRetention: 0.9,
		MaximumInterval:  36500,
		EnableFuzz:       false,
		EnableShortTerm:  false,
	}
}

// merged fills zero-valued numeric fields and a nil weight vector from base.
// Boolean flags are taken as given.
func (p FSRSParameters) merged(base FSRSParameters) FSRSParameters {
	out := p
	if out.W == nil {
		out.W = base.W
	}
	if out.RequestRetention == 0 {
		out.RequestRetention = base.RequestRetention
	}
	if out.MaximumInterval == 0 {
		out.MaximumInterval = base.MaximumInterval
	}
	return out
}

// toNative converts to the wrapped library's parameter record.
func (p FSRSParameters) toNative() fsrs.Parameters {
	native := fsrs.DefaultParam()
	native.RequestRetention = p.RequestRetention
	native.MaximumInterval = p.MaximumInterval
	native.EnableFuzz = p.EnableFuzz
	native.EnableShortTerm = p.EnableShortTerm
	for i := 0; i < len(native.W) && i < len(p.W); i++ {
		native.W[i] = p.W[i]
	}
	return native
}
