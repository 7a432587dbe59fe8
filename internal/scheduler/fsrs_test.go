package scheduler

import (
	"testing"
	"time"

	"github.com/FlorianWoelki/better-recall/internal/card"
)

// newFSRSAt returns an FSRS scheduler with a fixed clock.
func newFSRSAt(t *testing.T, now time.Time) *FSRSScheduler {
	t.Helper()
	a := NewFSRSScheduler(FSRSParameters{})
	a.now = func() time.Time { return now }
	a.sessionEnd = endOfDay(now)
	return a
}

func TestFSRSDefaults(t *testing.T) {
	p := NewFSRSScheduler(FSRSParameters{}).Parameters()
	if len(p.W) != 19 {
		t.Errorf("expected 19 weights, got %d", len(p.W))
	}
	if p.RequestRetention != 0.9 || p.MaximumInterval != 36500 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestFSRSSetParametersMerges(t *testing.T) {
	a := NewFSRSScheduler(FSRSParameters{})
	a.SetParameters(FSRSParameters{RequestRetention: 0.7})
	p := a.Parameters()
	if p.RequestRetention != 0.7 {
		t.Errorf("expected retention 0.7, got %v", p.RequestRetention)
	}
	if p.MaximumInterval != 36500 || len(p.W) != 19 {
		t.Errorf("zero-valued fields must keep current values: %+v", p)
	}
}

func TestFSRSCreateNewCard(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{Front: "q", Back: "a"})

	if c.State != card.StateNew || c.Iteration != 0 {
		t.Errorf("unexpected fresh card: state=%s iteration=%d", c.State, c.Iteration)
	}
	if c.LastReviewDate != nil || c.NextReviewDate != nil {
		t.Error("fresh card must not carry review dates")
	}
	if len(c.Metadata) != 0 {
		t.Errorf("fresh card must have an empty metadata bag, got %v", c.Metadata)
	}
	if _, ok := a.memory["c1"]; !ok {
		t.Error("expected an initialized memory state")
	}
}

func TestFSRSAddItemSchedulesNewCard(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)

	if c.NextReviewDate == nil || !c.NextReviewDate.Equal(t0) {
		t.Errorf("expected new card due immediately, got %v", c.NextReviewDate)
	}
	if !a.IsDueToday(c) {
		t.Error("new card must be due")
	}
}

func TestFSRSUpdateAfterReview(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)

	if err := a.UpdateItemAfterReview(c, card.RatingGood); err != nil {
		t.Fatalf("update: %v", err)
	}

	if c.Iteration != 1 {
		t.Errorf("expected iteration 1, got %d", c.Iteration)
	}
	if c.LastReviewDate == nil || !c.LastReviewDate.Equal(t0) {
		t.Errorf("expected last review %v, got %v", t0, c.LastReviewDate)
	}
	if c.State == card.StateNew {
		t.Error("reviewed card must leave NEW")
	}
	if c.NextReviewDate == nil || !c.NextReviewDate.After(t0) {
		t.Errorf("expected next review after %v, got %v", t0, c.NextReviewDate)
	}
	if s, ok := c.Metadata["stability"].(float64); !ok || s <= 0 {
		t.Errorf("expected positive stability in metadata, got %v", c.Metadata["stability"])
	}
	if _, ok := c.Metadata["difficulty"].(float64); !ok {
		t.Errorf("expected difficulty in metadata, got %v", c.Metadata["difficulty"])
	}
}

func TestFSRSMissingMemoryStateIsNoop(t *testing.T) {
	a := newFSRSAt(t, t0)
	// Built behind the algorithm's back: no memory state exists.
	c := card.New("stray", card.Content{})

	if err := a.UpdateItemAfterReview(c, card.RatingGood); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Iteration != 0 || c.LastReviewDate != nil || c.NextReviewDate != nil {
		t.Error("missing memory state must leave the card untouched")
	}
}

func TestFSRSPreviewDoesNotMutate(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)
	if err := a.UpdateItemAfterReview(c, card.RatingGood); err != nil {
		t.Fatalf("update: %v", err)
	}

	before := c.Clone()
	memBefore := a.memory["c1"]
	for _, r := range []card.Rating{card.RatingAgain, card.RatingHard, card.RatingGood, card.RatingEasy} {
		if _, err := a.CalculatePotentialNextReviewDate(c, r); err != nil {
			t.Fatalf("preview %s: %v", r, err)
		}
	}

	if c.State != before.State || c.Iteration != before.Iteration {
		t.Error("preview mutated the card")
	}
	if !c.NextReviewDate.Equal(*before.NextReviewDate) {
		t.Error("preview mutated the next review date")
	}
	if a.memory["c1"] != memBefore {
		t.Error("preview mutated the memory state")
	}
}

func TestFSRSPreviewMonotonic(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)
	if err := a.UpdateItemAfterReview(c, card.RatingGood); err != nil {
		t.Fatalf("update: %v", err)
	}

	var prev time.Time
	for i, r := range []card.Rating{card.RatingAgain, card.RatingHard, card.RatingGood, card.RatingEasy} {
		due, err := a.CalculatePotentialNextReviewDate(c, r)
		if err != nil {
			t.Fatalf("preview %s: %v", r, err)
		}
		if i > 0 && due.Before(prev) {
			t.Errorf("preview for %s (%v) before previous rating (%v)", r, due, prev)
		}
		prev = due
	}
}

func TestFSRSPreviewMatchesUpdate(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)

	predicted, err := a.CalculatePotentialNextReviewDate(c, card.RatingEasy)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if err := a.UpdateItemAfterReview(c, card.RatingEasy); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !c.NextReviewDate.Equal(predicted) {
		t.Errorf("preview %v != committed %v", predicted, c.NextReviewDate)
	}
}

func TestFSRSRestoresMemoryFromMetadata(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)
	if err := a.UpdateItemAfterReview(c, card.RatingGood); err != nil {
		t.Fatalf("update: %v", err)
	}
	want := a.memory["c1"]

	// Simulate a reload: a fresh scheduler sees only the card record.
	later := t0.Add(time.Hour)
	reloaded := newFSRSAt(t, later)
	reloaded.AddItem(c.Clone())

	got := reloaded.memory["c1"]
	if got.Stability != want.Stability || got.Difficulty != want.Difficulty {
		t.Errorf("memory state not restored: got S=%v D=%v, want S=%v D=%v",
			got.Stability, got.Difficulty, want.Stability, want.Difficulty)
	}
	if got.Reps != want.Reps || got.Lapses != want.Lapses {
		t.Errorf("counters not restored: got %d/%d, want %d/%d",
			got.Reps, got.Lapses, want.Reps, want.Lapses)
	}
	if !got.Due.Equal(want.Due) {
		t.Errorf("due not restored: got %v, want %v", got.Due, want.Due)
	}
}

func TestFSRSRejectsInvalidRating(t *testing.T) {
	a := newFSRSAt(t, t0)
	c := a.CreateNewCard("c1", card.Content{})
	a.AddItem(c)

	if err := a.UpdateItemAfterReview(c, card.Rating(4)); err == nil {
		t.Error("expected error for out-of-range rating")
	}
	if _, err := a.CalculatePotentialNextReviewDate(c, card.Rating(-1)); err == nil {
		t.Error("expected preview error for out-of-range rating")
	}
}
