// Package card defines the reviewable card record and its lifecycle state.
package card

import (
	"time"
)

// Type identifies the kind of content a card carries.
type Type int

const (
	// Basic is a front/back text pair.
	Basic Type = iota
)

// Content is the payload of a Basic card.
type Content struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Card is a single reviewable flashcard together with its scheduling state.
//
// Metadata is owned by whichever scheduling algorithm created the card via
// its CreateNewCard factory. The deck layer persists it verbatim and never
// interprets its contents.
type Card struct {
	ID             string         `json:"-"`
	Type           Type           `json:"type"`
	Content        Content        `json:"content"`
	State          State          `json:"state"`
	Iteration      int            `json:"iteration"`
	LastReviewDate *time.Time     `json:"lastReviewDate,omitempty"`
	NextReviewDate *time.Time     `json:"nextReviewDate,omitempty"`
	Metadata       map[string]any `json:"metadata"`
}

// New returns a blank card in the NEW state. Scheduling algorithms call this
// from their CreateNewCard factories and then fill in Metadata and dates.
func New(id string, content Content) *Card {
	return &Card{
		ID:       id,
		Type:     Basic,
		Content:  content,
		State:    StateNew,
		Metadata: map[string]any{},
	}
}

// Clone returns a deep copy of the card. Used for side-effect-free
// scheduling previews.
func (c *Card) Clone() *Card {
	out := *c
	if c.LastReviewDate != nil {
		t := *c.LastReviewDate
		out.LastReviewDate = &t
	}
	if c.NextReviewDate != nil {
		t := *c.NextReviewDate
		out.NextReviewDate = &t
	}
	out.Metadata = make(map[string]any, len(c.Metadata))
	for k, v := range c.Metadata {
		out.Metadata[k] = v
	}
	return &out
}
