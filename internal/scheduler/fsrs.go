package scheduler

import (
	"fmt"
	"log"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"

	"github.com/FlorianWoelki/better-recall/internal/card"
)

// FSRSScheduler wraps the FSRS memory model. Per-card memory state
// (stability, difficulty, counters) lives in an internal map keyed by card
// id, mirrored into the card's metadata bag for persistence.
type FSRSScheduler struct {
	session
	params FSRSParameters
	engine *fsrs.FSRS
	memory map[string]fsrs.Card
}

var _ Algorithm = (*FSRSScheduler)(nil)

// NewFSRSScheduler creates the scheduler. Zero-valued parameter fields fall
// back to DefaultFSRSParameters.
func NewFSRSScheduler(params FSRSParameters) *FSRSScheduler {
	merged := params.merged(DefaultFSRSParameters())
	return &FSRSScheduler{
		session: newSession(),
		params:  merged,
		engine:  fsrs.NewFSRS(merged.toNative()),
		memory:  map[string]fsrs.Card{},
	}
}

// Parameters returns the current parameter values.
func (a *FSRSScheduler) Parameters() FSRSParameters {
	return a.params
}

// SetParameters merges the given values into the current parameters and
// rebuilds the wrapped model. Already-scheduled cards keep their dates.
func (a *FSRSScheduler) SetParameters(params FSRSParameters) {
	a.params = params.merged(a.params)
	a.engine = fsrs.NewFSRS(a.params.toNative())
}

// MapPerformanceResponse translates the universal rating into the model's
// native rating. The native space additionally contains a manual/no-op
// rating (its zero value) which is deliberately unreachable here; invalid
// universal ratings are rejected instead of being applied.
func (a *FSRSScheduler) MapPerformanceResponse(rating card.Rating) (fsrs.Rating, error) {
	switch rating {
	case card.RatingAgain:
		return fsrs.Again, nil
	case card.RatingHard:
		return fsrs.Hard, nil
	case card.RatingGood:
		return fsrs.Good, nil
	case card.RatingEasy:
		return fsrs.Easy, nil
	}
	return fsrs.Rating(0), fmt.Errorf("%w: %d", card.ErrInvalidRating, int(rating))
}

// CreateNewCard builds a NEW card and initializes an empty memory state for
// it. The metadata bag stays empty until the first review fills it.
func (a *FSRSScheduler) CreateNewCard(id string, content card.Content) *card.Card {
	item := card.New(id, content)
	a.memory[id] = fsrs.Card{State: fsrs.New}
	return item
}

// AddItem registers the item with the engine and schedules it.
func (a *FSRSScheduler) AddItem(item *card.Card) {
	a.addItem(item)
	a.ScheduleReview(item)
}

// ScheduleReview restores or initializes the item's memory state, syncs the
// next review date from it and enqueues the item if due.
func (a *FSRSScheduler) ScheduleReview(item *card.Card) {
	fc, ok := a.memory[item.ID]
	if !ok {
		fc = a.memoryFromItem(item)
		a.memory[item.ID] = fc
	}

	switch {
	case !fc.Due.IsZero():
		due := fc.Due
		item.NextReviewDate = &due
	case item.State == card.StateNew:
		now := a.now()
		item.NextReviewDate = &now
		fc.Due = now
		a.memory[item.ID] = fc
	}

	a.enqueueIfDue(item)
}

// UpdateItemAfterReview asks the model for the four candidate next states at
// now, commits the one matching the rating and mirrors it onto the item.
// A missing memory state indicates a review without creation; it is logged
// and ignored so the record is not corrupted.
func (a *FSRSScheduler) UpdateItemAfterReview(item *card.Card, rating card.Rating) error {
	native, err := a.MapPerformanceResponse(rating)
	if err != nil {
		return err
	}

	fc, ok := a.memory[item.ID]
	if !ok {
		log.Printf("recall: no memory state for card %s, ignoring review", item.ID)
		return nil
	}

	now := a.now()
	updated := a.engine.Repeat(fc, now)[native].Card
	a.memory[item.ID] = updated

	item.LastReviewDate = &now
	a.syncFromMemory(item, updated)
	item.Iteration++

	a.enqueueIfDue(item)
	return nil
}

// CalculatePotentialNextReviewDate previews the due date for the given
// rating. The model computes all four candidates from an immutable snapshot,
// so no clone is needed and nothing is mutated.
func (a *FSRSScheduler) CalculatePotentialNextReviewDate(item *card.Card, rating card.Rating) (time.Time, error) {
	native, err := a.MapPerformanceResponse(rating)
	if err != nil {
		return time.Time{}, err
	}

	fc, ok := a.memory[item.ID]
	if !ok {
		if item.NextReviewDate != nil {
			return *item.NextReviewDate, nil
		}
		return a.now(), nil
	}

	return a.engine.Repeat(fc, a.now())[native].Card.Due, nil
}

// syncFromMemory mirrors the memory state onto the card record: metadata
// bag, lifecycle state, and dates.
func (a *FSRSScheduler) syncFromMemory(item *card.Card, fc fsrs.Card) {
	due := fc.Due
	item.NextReviewDate = &due
	if !fc.LastReview.IsZero() {
		last := fc.LastReview
		item.LastReviewDate = &last
	}
	item.State = stateFromNative(fc.State)
	item.Metadata = map[string]any{
		"stability":     fc.Stability,
		"difficulty":    fc.Difficulty,
		"elapsedDays":   float64(fc.ElapsedDays),
		"scheduledDays": float64(fc.ScheduledDays),
		"reps":          float64(fc.Reps),
		"lapses":        float64(fc.Lapses),
	}
}

// memoryFromItem rebuilds the memory state from the card's metadata bag,
// e.g. after a reload from disk. Cards without recorded stability get a
// fresh empty state.
func (a *FSRSScheduler) memoryFromItem(item *card.Card) fsrs.Card {
	if _, ok := item.Metadata["stability"]; !ok {
		return fsrs.Card{State: fsrs.New}
	}

	fc := fsrs.Card{
		Stability:     metaFloat(item.Metadata, "stability", 0),
		Difficulty:    metaFloat(item.Metadata, "difficulty", 0),
		ElapsedDays:   uint64(metaFloat(item.Metadata, "elapsedDays", 0)),
		ScheduledDays: uint64(metaFloat(item.Metadata, "scheduledDays", 0)),
		Reps:          uint64(metaFloat(item.Metadata, "reps", 0)),
		Lapses:        uint64(metaFloat(item.Metadata, "lapses", 0)),
		State:         stateToNative(item.State),
	}
	if item.NextReviewDate != nil {
		fc.Due = *item.NextReviewDate
	}
	if item.LastReviewDate != nil {
		fc.LastReview = *item.LastReviewDate
	}
	return fc
}

// stateFromNative maps the model's state onto the card lifecycle via a
// fixed 4-way index. Unknown values fall back to NEW.
func stateFromNative(s fsrs.State) card.State {
	switch int(s) {
	case 0:
		return card.StateNew
	case 1:
		return card.StateLearning
	case 2:
		return card.StateReview
	case 3:
		return card.StateRelearning
	}
	return card.StateNew
}

func stateToNative(s card.State) fsrs.State {
	switch s {
	case card.StateLearning:
		return fsrs.Learning
	case card.StateReview:
		return fsrs.Review
	case card.StateRelearning:
		return fsrs.Relearning
	}
	return fsrs.New
}
