package deck

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/FlorianWoelki/better-recall/internal/card"
	"github.com/FlorianWoelki/better-recall/internal/schema"
	"github.com/FlorianWoelki/better-recall/internal/scheduler"
	"github.com/FlorianWoelki/better-recall/internal/storage"
)

// Manager owns all decks, delegates due/queue logic to the injected
// scheduling algorithm and persists through the injected storage backend.
// Validation errors abort before any mutation; storage errors are
// propagated wrapped and never retried.
type Manager struct {
	decks map[string]*Deck
	algo  scheduler.Algorithm
	store storage.Store
	data  *schema.Data
}

// NewManager creates a manager. The algorithm and storage backend are
// injected so switching either is a matter of swapping the instance.
func NewManager(algo scheduler.Algorithm, store storage.Store) *Manager {
	return &Manager{
		decks: map[string]*Deck{},
		algo:  algo,
		store: store,
		data:  schema.NewData(),
	}
}

// Load reads the persisted document and reconstructs all decks. A missing
// document is created empty; an out-of-date document is migrated and
// persisted immediately.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := m.store.Read(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		m.data = schema.NewData()
		return m.Save(ctx)
	}
	if err != nil {
		return fmt.Errorf("load decks: %w", err)
	}

	data, migrated, err := schema.Decode(raw)
	if err != nil {
		return fmt.Errorf("load decks: %w", err)
	}
	m.data = data

	m.decks = make(map[string]*Deck, len(data.Decks))
	for _, dj := range data.Decks {
		d := FromJSON(m.algo, dj)
		m.decks[d.ID] = d
	}

	if migrated {
		return m.Save(ctx)
	}
	return nil
}

// Save serializes all decks into the document and writes it whole.
func (m *Manager) Save(ctx context.Context) error {
	decks := make([]schema.DeckJSON, 0, len(m.decks))
	for _, d := range m.decks {
		decks = append(decks, d.ToJSON())
	}
	m.data.Decks = decks
	m.data.SchemaVersion = schema.CurrentVersion

	raw, err := m.data.Encode()
	if err != nil {
		return fmt.Errorf("save decks: %w", err)
	}
	if err := m.store.Write(ctx, raw); err != nil {
		return fmt.Errorf("save decks: %w", err)
	}
	return nil
}

// Settings returns the persisted settings record for reading and mutation.
// Call Save after changing it.
func (m *Manager) Settings() *schema.Settings {
	return &m.data.Settings
}

// Algorithm returns the injected scheduling algorithm.
func (m *Manager) Algorithm() scheduler.Algorithm {
	return m.algo
}

// SetAlgorithm swaps the injected scheduling algorithm. Follow with
// ResetCardsForAlgorithmSwitch to re-create the card scheduling state.
func (m *Manager) SetAlgorithm(algo scheduler.Algorithm) {
	m.algo = algo
	for _, d := range m.decks {
		d.algo = algo
	}
}

// Create validates the name, constructs an empty deck and persists.
func (m *Manager) Create(ctx context.Context, name, description string) (*Deck, error) {
	name = strings.TrimSpace(name)
	if !isValidFileName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeckName, name)
	}
	if m.byName(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDeckNameExists, name)
	}

	d := New(m.algo, name, description)
	m.decks[d.ID] = d

	if err := m.Save(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateInformation renames a deck and replaces its description.
func (m *Manager) UpdateInformation(ctx context.Context, id, name, description string) (*Deck, error) {
	name = strings.TrimSpace(name)
	if !isValidFileName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeckName, name)
	}
	d, ok := m.decks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	if other := m.byName(name); other != nil && other.ID != id {
		return nil, fmt.Errorf("%w: %q", ErrDeckNameExists, name)
	}

	d.Name = name
	d.Description = description
	d.UpdatedAt = time.Now()

	if err := m.Save(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a deck and persists.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, ok := m.decks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	delete(m.decks, id)
	return m.Save(ctx)
}

// AddCard puts the card into the deck's keyed map. The caller persists.
func (m *Manager) AddCard(deckID string, c *card.Card) error {
	d, ok := m.decks[deckID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
	}
	d.Cards[c.ID] = c
	d.UpdatedAt = time.Now()
	return nil
}

// UpdateCardContent replaces an existing card by id. The caller persists.
func (m *Manager) UpdateCardContent(deckID string, updated *card.Card) error {
	d, ok := m.decks[deckID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
	}
	if _, ok := d.Cards[updated.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, updated.ID)
	}
	d.Cards[updated.ID] = updated
	d.UpdatedAt = time.Now()
	return nil
}

// RemoveCard deletes a card from the deck's keyed map. The caller persists.
func (m *Manager) RemoveCard(deckID, cardID string) error {
	d, ok := m.decks[deckID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
	}
	if _, ok := d.Cards[cardID]; !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	delete(d.Cards, cardID)
	d.UpdatedAt = time.Now()
	return nil
}

// ResetCardsForAlgorithmSwitch wipes the scheduling state of every card in
// every deck and re-creates it through the active algorithm, preserving
// only id and content. This is the supported path for switching algorithms
// without losing card content.
func (m *Manager) ResetCardsForAlgorithmSwitch(ctx context.Context) error {
	for _, d := range m.decks {
		for id, c := range d.Cards {
			c.State = card.StateNew
			c.Iteration = 0
			c.LastReviewDate = nil
			c.NextReviewDate = nil
			c.Metadata = map[string]any{}

			d.Cards[id] = m.algo.CreateNewCard(c.ID, c.Content)
		}
	}
	return m.Save(ctx)
}

// Decks returns all decks keyed by id.
func (m *Manager) Decks() map[string]*Deck {
	return m.decks
}

// DecksArray returns all decks in unspecified order.
func (m *Manager) DecksArray() []*Deck {
	out := make([]*Deck, 0, len(m.decks))
	for _, d := range m.decks {
		out = append(out, d)
	}
	return out
}

// Get returns a deck by id.
func (m *Manager) Get(id string) (*Deck, bool) {
	d, ok := m.decks[id]
	return d, ok
}

// FindByName returns a deck by its unique name.
func (m *Manager) FindByName(name string) (*Deck, bool) {
	d := m.byName(strings.TrimSpace(name))
	return d, d != nil
}

func (m *Manager) byName(name string) *Deck {
	for _, d := range m.decks {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// invalidNameChars are the characters that make a name unsafe as a file
// name across platforms.
var invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

func isValidFileName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if invalidNameChars.MatchString(name) {
		return false
	}
	return !strings.HasSuffix(name, ".")
}
