package deck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FlorianWoelki/better-recall/internal/card"
	"github.com/FlorianWoelki/better-recall/internal/scheduler"
	"github.com/FlorianWoelki/better-recall/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recall.json")
	algo := scheduler.NewAnkiScheduler(scheduler.AnkiParameters{})
	return NewManager(algo, storage.NewFileStore(path)), path
}

func TestManagerCreate(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	d, err := m.Create(ctx, "  Spanish  ", "basic vocabulary")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Name != "Spanish" {
		t.Errorf("name not trimmed: %q", d.Name)
	}
	if _, ok := m.Get(d.ID); !ok {
		t.Error("created deck not retrievable by id")
	}

	if _, err := m.Create(ctx, "Spanish", ""); !errors.Is(err, ErrDeckNameExists) {
		t.Errorf("duplicate name: got %v, want ErrDeckNameExists", err)
	}

	for _, name := range []string{"", "a/b", "a\\b", "dots.", strings.Repeat("x", 256)} {
		if _, err := m.Create(ctx, name, ""); !errors.Is(err, ErrInvalidDeckName) {
			t.Errorf("name %q: got %v, want ErrInvalidDeckName", name, err)
		}
	}
}

func TestManagerUpdateInformation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	d, err := m.Create(ctx, "Spanish", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := m.Create(ctx, "French", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := m.UpdateInformation(ctx, d.ID, "Castilian", "renamed")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Castilian" || updated.Description != "renamed" {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := m.UpdateInformation(ctx, "missing", "x", ""); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("unknown id: got %v, want ErrDeckNotFound", err)
	}
	if _, err := m.UpdateInformation(ctx, other.ID, "Castilian", ""); !errors.Is(err, ErrDeckNameExists) {
		t.Errorf("name collision: got %v, want ErrDeckNameExists", err)
	}
	// Renaming a deck to its own name is allowed.
	if _, err := m.UpdateInformation(ctx, other.ID, "French", "still french"); err != nil {
		t.Errorf("self-rename: %v", err)
	}
}

func TestManagerDelete(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	d, err := m.Create(ctx, "Spanish", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := m.Get(d.ID); ok {
		t.Error("deleted deck still retrievable")
	}
	if err := m.Delete(ctx, d.ID); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("double delete: got %v, want ErrDeckNotFound", err)
	}
}

func TestManagerCardOperations(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	d, err := m.Create(ctx, "Spanish", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c := m.Algorithm().CreateNewCard(NewID(), card.Content{Front: "hola", Back: "hello"})
	if err := m.AddCard(d.ID, c); err != nil {
		t.Fatalf("add card: %v", err)
	}
	if err := m.AddCard("missing", c); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("add to unknown deck: got %v, want ErrDeckNotFound", err)
	}

	edited := c.Clone()
	edited.Content.Back = "hi"
	if err := m.UpdateCardContent(d.ID, edited); err != nil {
		t.Fatalf("update card: %v", err)
	}
	if d.Cards[c.ID].Content.Back != "hi" {
		t.Error("card content not replaced")
	}

	stray := card.New("stray", card.Content{})
	if err := m.UpdateCardContent(d.ID, stray); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("update unknown card: got %v, want ErrCardNotFound", err)
	}

	if err := m.RemoveCard(d.ID, c.ID); err != nil {
		t.Fatalf("remove card: %v", err)
	}
	if err := m.RemoveCard(d.ID, c.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("double remove: got %v, want ErrCardNotFound", err)
	}
}

func TestManagerFindByName(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Create(context.Background(), "Spanish", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	if d, ok := m.FindByName(" Spanish "); !ok || d.Name != "Spanish" {
		t.Errorf("FindByName failed: %v %v", d, ok)
	}
	if _, ok := m.FindByName("German"); ok {
		t.Error("found a deck that does not exist")
	}
}

func TestManagerLoadCreatesMissingDocument(t *testing.T) {
	m, path := newTestManager(t)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Decks()) != 0 {
		t.Errorf("expected no decks, got %d", len(m.Decks()))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected the document to be created on first load: %v", err)
	}
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, path := newTestManager(t)

	d, err := m.Create(ctx, "Spanish", "basic vocabulary")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	next := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	c := card.New(NewID(), card.Content{Front: "hola", Back: "hello"})
	c.State = card.StateReview
	c.Iteration = 2
	c.NextReviewDate = &next
	c.Metadata["easeFactor"] = 2.5
	c.Metadata["interval"] = 10.0
	if err := m.AddCard(d.ID, c); err != nil {
		t.Fatalf("add card: %v", err)
	}
	if err := m.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := NewManager(scheduler.NewAnkiScheduler(scheduler.AnkiParameters{}), storage.NewFileStore(path))
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, ok := reloaded.Get(d.ID)
	if !ok {
		t.Fatal("deck lost in round trip")
	}
	if got.Name != "Spanish" || got.Description != "basic vocabulary" {
		t.Errorf("deck fields lost: %+v", got)
	}
	rc, ok := got.Cards[c.ID]
	if !ok {
		t.Fatal("card lost in round trip")
	}
	if rc.State != card.StateReview || rc.Iteration != 2 {
		t.Errorf("card scheduling state lost: %+v", rc)
	}
	if !rc.NextReviewDate.Equal(next) {
		t.Errorf("next review date lost: %v", rc.NextReviewDate)
	}
	if rc.Metadata["easeFactor"] != 2.5 || rc.Metadata["interval"] != 10.0 {
		t.Errorf("metadata lost: %v", rc.Metadata)
	}
}

func TestManagerResetCardsForAlgorithmSwitch(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	d, err := m.Create(ctx, "Spanish", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	next := time.Now()
	c := card.New(NewID(), card.Content{Front: "hola", Back: "hello"})
	c.State = card.StateReview
	c.Iteration = 7
	c.LastReviewDate = &next
	c.NextReviewDate = &next
	c.Metadata["easeFactor"] = 2.5
	if err := m.AddCard(d.ID, c); err != nil {
		t.Fatalf("add card: %v", err)
	}

	m.SetAlgorithm(scheduler.NewFSRSScheduler(scheduler.FSRSParameters{}))
	if err := m.ResetCardsForAlgorithmSwitch(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	rc := d.Cards[c.ID]
	if rc.State != card.StateNew || rc.Iteration != 0 {
		t.Errorf("scheduling state not reset: state=%s iteration=%d", rc.State, rc.Iteration)
	}
	if rc.LastReviewDate != nil || rc.NextReviewDate != nil {
		t.Error("review dates not cleared")
	}
	if len(rc.Metadata) != 0 {
		t.Errorf("metadata not cleared: %v", rc.Metadata)
	}
	if rc.Content.Front != "hola" || rc.Content.Back != "hello" {
		t.Errorf("content lost: %+v", rc.Content)
	}
}

func TestManagerLoadMigratesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "recall.json")

	legacy := `{
		"settings": {"schedulingAlgorithm": "anki"},
		"decks": [{
			"id": "d1",
			"name": "Spanish",
			"description": "",
			"createdAt": "2025-01-02T03:04:05Z",
			"updatedAt": "2025-01-02T03:04:05Z",
			"cards": {
				"c1": {
					"type": 0,
					"content": {"front": "hola", "back": "hello"},
					"state": 2,
					"easeFactor": 2.5,
					"interval": 10,
					"stepIndex": 0
				}
			}
		}]
	}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	m := NewManager(scheduler.NewAnkiScheduler(scheduler.AnkiParameters{}), storage.NewFileStore(path))
	if err := m.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	d, ok := m.Get("d1")
	if !ok {
		t.Fatal("legacy deck missing after load")
	}
	c, ok := d.Cards["c1"]
	if !ok {
		t.Fatal("legacy card missing after load")
	}
	if c.State != card.StateReview {
		t.Errorf("state lost: %s", c.State)
	}
	if c.Metadata["easeFactor"] != 2.5 || c.Metadata["interval"] != 10.0 || c.Metadata["stepIndex"] != 0.0 {
		t.Errorf("flat fields not repackaged into metadata: %v", c.Metadata)
	}

	// The migrated document is persisted immediately at the new version.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migrated file: %v", err)
	}
	if !strings.Contains(string(raw), `"schemaVersion": 2`) {
		t.Error("migrated document not persisted at version 2")
	}
	if !strings.Contains(string(raw), `"metadata"`) {
		t.Error("migrated card carries no metadata bag")
	}
}
