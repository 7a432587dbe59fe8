package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/FlorianWoelki/better-recall/internal/card"
)

const initialEaseFactor = 2.5

// AnkiScheduler implements the SM-2-style stepped algorithm: ease factors,
// fixed day-scale intervals and multi-step learning/relearning ladders.
type AnkiScheduler struct {
	session
	params AnkiParameters
}

var _ Algorithm = (*AnkiScheduler)(nil)

// NewAnkiScheduler creates the scheduler. Zero-valued parameter fields fall
// back to DefaultAnkiParameters.
func NewAnkiScheduler(params AnkiParameters) *AnkiScheduler {
	return &AnkiScheduler{
		session: newSession(),
		params:  params.merged(DefaultAnkiParameters()),
	}
}

// ankiState is the typed view this algorithm casts onto the card's opaque
// metadata bag. Nothing outside this file depends on these keys.
type ankiState struct {
	easeFactor float64
	interval   float64 // days
	stepIndex  int
}

func ankiStateOf(c *card.Card) ankiState {
	return ankiState{
		easeFactor: metaFloat(c.Metadata, "easeFactor", initialEaseFactor),
		interval:   metaFloat(c.Metadata, "interval", 0),
		stepIndex:  int(metaFloat(c.Metadata, "stepIndex", 0)),
	}
}

func (s ankiState) store(c *card.Card) {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Metadata["easeFactor"] = s.easeFactor
	c.Metadata["interval"] = s.interval
	c.Metadata["stepIndex"] = s.stepIndex
}

// metaFloat reads a numeric metadata value. JSON decoding yields float64,
// in-process writes may hold int.
func metaFloat(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// Parameters returns the current parameter values.
func (a *AnkiScheduler) Parameters() AnkiParameters {
	return a.params
}

// SetParameters merges the given values into the current parameters.
// Zero-valued fields keep their current value. Changing parameters does not
// reschedule already-scheduled cards.
func (a *AnkiScheduler) SetParameters(params AnkiParameters) {
	a.params = params.merged(a.params)
}

// MapPerformanceResponse translates the universal rating into this
// algorithm's native space. The spaces coincide, so this is an identity
// mapping that rejects out-of-range values.
func (a *AnkiScheduler) MapPerformanceResponse(rating card.Rating) (card.Rating, error) {
	if !rating.IsValid() {
		return 0, fmt.Errorf("%w: %d", card.ErrInvalidRating, int(rating))
	}
	return rating, nil
}

// CreateNewCard builds a NEW card for this algorithm. Scheduling state
// materializes in the metadata bag on first review.
func (a *AnkiScheduler) CreateNewCard(id string, content card.Content) *card.Card {
	return card.New(id, content)
}

// AddItem registers the item with the engine and schedules it.
func (a *AnkiScheduler) AddItem(item *card.Card) {
	a.addItem(item)
	a.ScheduleReview(item)
}

// stepsFor returns the minute ladder for the given state.
func (a *AnkiScheduler) stepsFor(state card.State) []float64 {
	if state == card.StateRelearning {
		return a.params.RelearningSteps
	}
	return a.params.LearningSteps
}

// applyRating adjusts ease factor, step index and state for the rating and
// returns the new interval in days. The returned interval only takes effect
// once the card leaves (or is outside) a step ladder.
func (a *AnkiScheduler) applyRating(item *card.Card, st *ankiState, rating card.Rating) float64 {
	switch rating {
	case card.RatingAgain:
		st.easeFactor = math.Max(a.params.MinEaseFactor, st.easeFactor-a.params.EaseFactorDecrement)
		if item.State == card.StateReview {
			item.State = card.StateRelearning
		}
		st.stepIndex = 0
		return st.interval * a.params.LapseInterval

	case card.RatingHard:
		st.easeFactor = math.Max(a.params.MinEaseFactor, st.easeFactor-a.params.EaseFactorIncrement)
		if item.State.InLadder() {
			st.stepIndex++
		}
		return math.Max(st.interval*a.params.HardIntervalMultiplier, st.interval+1)

	case card.RatingGood:
		if item.State == card.StateNew || item.State.InLadder() {
			st.stepIndex++
			if st.stepIndex >= len(a.stepsFor(item.State)) {
				item.State = card.StateReview
				return a.params.GraduatingInterval
			}
			return 0
		}
		return math.Max(st.interval*st.easeFactor, st.interval+1)

	default: // card.RatingEasy
		st.easeFactor += a.params.EaseFactorIncrement
		if item.State == card.StateNew || item.State.InLadder() {
			item.State = card.StateReview
			return a.params.EasyInterval
		}
		return st.interval * st.easeFactor * a.params.EasyBonus
	}
}

// UpdateItemAfterReview applies the rating to the item and reschedules it.
func (a *AnkiScheduler) UpdateItemAfterReview(item *card.Card, rating card.Rating) error {
	if _, err := a.MapPerformanceResponse(rating); err != nil {
		return err
	}

	st := ankiStateOf(item)
	if item.State == card.StateNew {
		item.State = card.StateLearning
		st.stepIndex = 0
	}

	st.interval = a.applyRating(item, &st, rating)
	st.store(item)
	item.Iteration++
	now := a.now()
	item.LastReviewDate = &now

	a.ScheduleReview(item)
	return nil
}

// ScheduleReview recomputes the item's next review date from its current
// state, then enqueues it if due in the running session.
func (a *AnkiScheduler) ScheduleReview(item *card.Card) {
	st := ankiStateOf(item)

	var next time.Time
	switch {
	case item.State.InLadder():
		if steps := a.stepsFor(item.State); st.stepIndex < len(steps) {
			next = a.now().Add(minutes(steps[st.stepIndex]))
		} else {
			// Ladder exhausted: graduate.
			item.State = card.StateReview
			next = a.now().Add(days(st.interval))
		}
	case item.State == card.StateNew:
		next = a.now() // immediately due
	default:
		next = a.now().Add(days(st.interval))
	}
	item.NextReviewDate = &next

	a.enqueueIfDue(item)
}

// CalculatePotentialNextReviewDate previews the next review date for the
// given rating. The update logic reads and writes the same record shape used
// for real reviews, so the preview runs on a clone and the input item is
// never mutated.
func (a *AnkiScheduler) CalculatePotentialNextReviewDate(item *card.Card, rating card.Rating) (time.Time, error) {
	if _, err := a.MapPerformanceResponse(rating); err != nil {
		return time.Time{}, err
	}

	preview := item.Clone()
	st := ankiStateOf(preview)
	if preview.State == card.StateNew {
		preview.State = card.StateLearning
		st.stepIndex = 0
	}

	interval := a.applyRating(preview, &st, rating)

	if preview.State.InLadder() {
		if steps := a.stepsFor(preview.State); st.stepIndex < len(steps) {
			return a.now().Add(minutes(steps[st.stepIndex])), nil
		}
	}
	return a.now().Add(days(interval)), nil
}
