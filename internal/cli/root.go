// Package cli implements the recall CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FlorianWoelki/better-recall/internal/deck"
	"github.com/FlorianWoelki/better-recall/internal/schema"
	"github.com/FlorianWoelki/better-recall/internal/scheduler"
	"github.com/FlorianWoelki/better-recall/internal/storage"
)

var (
	dataPath string
	dbPath   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Spaced-repetition flashcard decks",
	Long:  "Manage flashcard decks and review them with spaced repetition. JSON-file backed by default, SQLite optional, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Data file path (default: $RECALL_DATA or ~/.recall/recall.json)")
	RootCmd.PersistentFlags().String("db", "", "Store data in a SQLite database at this path instead of a JSON file")
	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		dbPath, _ = cmd.Flags().GetString("db")
	}
}

func getDataPath() string {
	if dataPath != "" {
		return dataPath
	}
	if env := os.Getenv("RECALL_DATA"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".recall", "recall.json")
}

func openStore() (storage.Store, error) {
	if dbPath != "" {
		return storage.NewSQLiteStore(dbPath)
	}
	return storage.NewFileStore(getDataPath()), nil
}

// algorithmFor builds the scheduling engine selected by the settings.
func algorithmFor(s schema.Settings) scheduler.Algorithm {
	if s.SchedulingAlgorithm == schema.AlgorithmFSRS {
		return scheduler.NewFSRSScheduler(s.FSRSParameters)
	}
	return scheduler.NewAnkiScheduler(s.AnkiParameters)
}

// loadSettings peeks at the persisted settings so the right engine can be
// injected into the manager before the full load.
func loadSettings(ctx context.Context, s storage.Store) (schema.Settings, error) {
	raw, err := s.Read(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		return schema.DefaultSettings(), nil
	}
	if err != nil {
		return schema.Settings{}, err
	}
	data, _, err := schema.Decode(raw)
	if err != nil {
		return schema.Settings{}, err
	}
	return data.Settings, nil
}

// openManager opens the store, injects the configured engine and loads all
// decks. The returned closer releases the store.
func openManager(ctx context.Context) (*deck.Manager, func(), error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	settings, err := loadSettings(ctx, s)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	m := deck.NewManager(algorithmFor(settings), s)
	if err := m.Load(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}
	return m, func() { s.Close() }, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
