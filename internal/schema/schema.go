// Package schema defines the persisted document shape and its versioned
// migrations.
package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/FlorianWoelki/better-recall/internal/card"
	"github.com/FlorianWoelki/better-recall/internal/scheduler"
)

// Algorithm selects the active scheduling algorithm.
type Algorithm string

const (
	AlgorithmAnki Algorithm = "anki"
	AlgorithmFSRS Algorithm = "fsrs"
)

// CardJSON is the persisted form of a card. The id is omitted because it is
// the key of the deck's card map.
type CardJSON struct {
	Type           card.Type      `json:"type"`
	Content        card.Content   `json:"content"`
	State          card.State     `json:"state"`
	Iteration      int            `json:"iteration"`
	LastReviewDate *time.Time     `json:"lastReviewDate,omitempty"`
	NextReviewDate *time.Time     `json:"nextReviewDate,omitempty"`
	Metadata       map[string]any `json:"metadata"`
}

// DeckJSON is the persisted form of a deck.
type DeckJSON struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Cards       map[string]CardJSON `json:"cards"`
}

// Settings holds the active algorithm selector and both parameter sets.
type Settings struct {
	SchedulingAlgorithm Algorithm                `json:"schedulingAlgorithm"`
	AnkiParameters      scheduler.AnkiParameters `json:"ankiParameters"`
	FSRSParameters      scheduler.FSRSParameters `json:"fsrsParameters"`
}

// DefaultSettings returns the stock settings: Anki-style scheduling with
// default parameters for both algorithms.
func DefaultSettings() Settings {
	return Settings{
		SchedulingAlgorithm: AlgorithmAnki,
		AnkiParameters:      scheduler.DefaultAnkiParameters(),
		FSRSParameters:      scheduler.DefaultFSRSParameters(),
	}
}

// Data is the whole persisted document.
type Data struct {
	Settings      Settings   `json:"settings"`
	Decks         []DeckJSON `json:"decks"`
	SchemaVersion int        `json:"schemaVersion"`
}

// NewData returns an empty document at the current schema version.
func NewData() *Data {
	return &Data{
		Settings:      DefaultSettings(),
		Decks:         []DeckJSON{},
		SchemaVersion: CurrentVersion,
	}
}

// Decode parses a persisted document, migrating older shapes in place
// first. The second return reports whether a migration ran, in which case
// the caller should persist immediately.
//
// Migrations operate on the raw decoded document so unrecognized legacy
// shapes pass through unchanged instead of being dropped.
func Decode(raw []byte) (*Data, bool, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("parse data: %w", err)
	}

	migrated := Migrate(doc)

	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("re-encode migrated data: %w", err)
	}

	var data Data
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, false, fmt.Errorf("parse data: %w", err)
	}
	if data.Settings.SchedulingAlgorithm == "" {
		data.Settings.SchedulingAlgorithm = AlgorithmAnki
	}
	return &data, migrated, nil
}

// Encode serializes the document for persistence.
func (d *Data) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
