// Package scheduler implements the spaced-repetition scheduling engines.
//
// Two algorithms implement the Algorithm contract: AnkiScheduler, an
// SM-2-style stepped algorithm, and FSRSScheduler, which wraps the FSRS
// memory model. The native rating space of each algorithm is an internal
// detail; callers only ever pass the universal card.Rating.
package scheduler

import (
	"time"

	"github.com/FlorianWoelki/better-recall/internal/card"
)

// Algorithm is the contract every scheduling algorithm implements. It owns
// the item collection, the due-queue, and the review-session boundary.
type Algorithm interface {
	// CreateNewCard builds a NEW card record for this algorithm. The record
	// is not yet known to the engine; hand it over with AddItem.
	CreateNewCard(id string, content card.Content) *card.Card

	// ScheduleReview recomputes the item's next review date and state from
	// its current data, then enqueues it if due in the running session.
	ScheduleReview(item *card.Card)

	// GetNextReviewItem pops the head of the due-queue in FIFO order.
	// It returns nil once the queue is exhausted.
	GetNextReviewItem() *card.Card

	// CalculatePotentialNextReviewDate previews what the next review date
	// would become for the given rating without mutating the item or any
	// engine state.
	CalculatePotentialNextReviewDate(item *card.Card, rating card.Rating) (time.Time, error)

	// UpdateItemAfterReview mutates the item per the algorithm's rules for
	// the given rating and reschedules it.
	UpdateItemAfterReview(item *card.Card, rating card.Rating) error

	// AddItem registers the item with the engine and schedules it.
	AddItem(item *card.Card)

	// RemoveItem removes the item by id. No-op if the item is unknown.
	RemoveItem(item *card.Card)

	// StartNewSession resets the session window to the end of the current
	// day and rebuilds the due-queue from all known items.
	StartNewSession()

	// IsDueToday reports whether the item falls within the current session
	// window. NEW cards are always due.
	IsDueToday(item *card.Card) bool

	// ResetItems clears all known items. Used when switching algorithms.
	ResetItems()

	// ItemCount returns the number of items known to the engine.
	ItemCount() int
}

// session holds the state shared by all algorithms: the item collection,
// the FIFO due-queue, and the session end time. Concrete algorithms embed
// it and layer their scheduling rules on top.
type session struct {
	items      []*card.Card
	queued     []*card.Card
	sessionEnd time.Time
	now        func() time.Time
}

func newSession() session {
	s := session{now: time.Now}
	s.sessionEnd = endOfDay(s.now())
	return s
}

// endOfDay returns the last instant of the calendar day containing t.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func (s *session) addItem(item *card.Card) {
	s.items = append(s.items, item)
}

// RemoveItem removes the item by id. No-op if absent.
func (s *session) RemoveItem(item *card.Card) {
	for i, it := range s.items {
		if it.ID == item.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ItemCount returns the number of items known to the engine.
func (s *session) ItemCount() int {
	return len(s.items)
}

// ResetItems clears all known items and the due-queue.
func (s *session) ResetItems() {
	s.items = nil
	s.queued = nil
}

// StartNewSession resets the session window to the end of the current day,
// clears the due-queue and rebuilds it by re-testing every item.
func (s *session) StartNewSession() {
	s.sessionEnd = endOfDay(s.now())
	s.queued = s.queued[:0]
	for _, it := range s.items {
		s.enqueueIfDue(it)
	}
}

// GetNextReviewItem pops the head of the due-queue, or nil when exhausted.
func (s *session) GetNextReviewItem() *card.Card {
	if len(s.queued) == 0 {
		return nil
	}
	head := s.queued[0]
	s.queued = s.queued[1:]
	return head
}

// IsDueToday reports whether the item is due within the session window.
// NEW cards are always due; anything with a next review date at or before
// the session end (including past-due dates) is due.
func (s *session) IsDueToday(item *card.Card) bool {
	if item.State == card.StateNew {
		return true
	}
	return item.NextReviewDate != nil && !item.NextReviewDate.After(s.sessionEnd)
}

// enqueueIfDue appends the item to the due-queue at most once per session.
// Queue order is insertion order, not due-date order.
func (s *session) enqueueIfDue(item *card.Card) {
	if !s.IsDueToday(item) {
		return
	}
	for _, q := range s.queued {
		if q.ID == item.ID {
			return
		}
	}
	s.queued = append(s.queued, item)
}

// minutes converts a minute count into a duration.
func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// days converts a day count into a duration.
func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
