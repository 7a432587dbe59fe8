// Package deck implements named decks of cards and the manager that owns
// them.
package deck

import (
	"errors"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/FlorianWoelki/better-recall/internal/card"
	"github.com/FlorianWoelki/better-recall/internal/schema"
	"github.com/FlorianWoelki/better-recall/internal/scheduler"
)

// Sentinel errors for deck and card operations. Check with errors.Is.
var (
	ErrInvalidDeckName = errors.New("deck: invalid deck name")
	ErrDeckNameExists  = errors.New("deck: deck name already exists")
	ErrDeckNotFound    = errors.New("deck: deck does not exist")
	ErrCardNotFound    = errors.New("deck: card does not exist")
)

var entropy = rand.New(rand.NewSource(time.Now().UnixNano()))

// NewID returns a fresh ULID for decks and cards.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Deck is a named collection of cards, keyed by card id for O(1) lookup,
// update and delete. A deck exclusively owns its cards.
type Deck struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Cards       map[string]*card.Card

	algo scheduler.Algorithm
}

// New creates an empty deck with a fresh id.
func New(algo scheduler.Algorithm, name, description string) *Deck {
	now := time.Now()
	return &Deck{
		ID:          NewID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Cards:       map[string]*card.Card{},
		algo:        algo,
	}
}

// CardsArray returns the deck's cards in unspecified order.
func (d *Deck) CardsArray() []*card.Card {
	out := make([]*card.Card, 0, len(d.Cards))
	for _, c := range d.Cards {
		out = append(out, c)
	}
	return out
}

// NewCards returns the cards that have never been reviewed.
func (d *Deck) NewCards() []*card.Card {
	return d.filter(func(c *card.Card) bool {
		return c.State == card.StateNew
	})
}

// LearnCards returns the cards currently in a learning or relearning
// ladder.
func (d *Deck) LearnCards() []*card.Card {
	return d.filter(func(c *card.Card) bool {
		return c.State.InLadder()
	})
}

// DueCards returns the review-state cards due in the current session
// window.
func (d *Deck) DueCards() []*card.Card {
	return d.filter(func(c *card.Card) bool {
		return c.State == card.StateReview && d.algo.IsDueToday(c)
	})
}

func (d *Deck) filter(keep func(*card.Card) bool) []*card.Card {
	var out []*card.Card
	for _, c := range d.Cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// ToJSON converts the deck to its persisted shape. Card ids move into the
// map keys.
func (d *Deck) ToJSON() schema.DeckJSON {
	cards := make(map[string]schema.CardJSON, len(d.Cards))
	for id, c := range d.Cards {
		cards[id] = schema.CardJSON{
			Type:           c.Type,
			Content:        c.Content,
			State:          c.State,
			Iteration:      c.Iteration,
			LastReviewDate: c.LastReviewDate,
			NextReviewDate: c.NextReviewDate,
			Metadata:       c.Metadata,
		}
	}
	return schema.DeckJSON{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Cards:       cards,
	}
}

// FromJSON reconstructs a deck from its persisted shape.
func FromJSON(algo scheduler.Algorithm, j schema.DeckJSON) *Deck {
	cards := make(map[string]*card.Card, len(j.Cards))
	for id, cj := range j.Cards {
		metadata := cj.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		cards[id] = &card.Card{
			ID:             id,
			Type:           cj.Type,
			Content:        cj.Content,
			State:          cj.State,
			Iteration:      cj.Iteration,
			LastReviewDate: cj.LastReviewDate,
			NextReviewDate: cj.NextReviewDate,
			Metadata:       metadata,
		}
	}
	return &Deck{
		ID:          j.ID,
		Name:        j.Name,
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Cards:       cards,
		algo:        algo,
	}
}
