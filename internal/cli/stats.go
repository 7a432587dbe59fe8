package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals across all decks",
		Run:   runStats,
	}
	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	var total, fresh, learn, due, reviews int
	for _, d := range m.DecksArray() {
		total += len(d.Cards)
		fresh += len(d.NewCards())
		learn += len(d.LearnCards())
		due += len(d.DueCards())
		for _, c := range d.Cards {
			reviews += c.Iteration
		}
	}

	fmt.Printf("decks:     %d\n", len(m.Decks()))
	fmt.Printf("cards:     %d\n", total)
	fmt.Printf("new:       %d\n", fresh)
	fmt.Printf("learning:  %d\n", learn)
	fmt.Printf("due:       %d\n", due)
	fmt.Printf("reviews:   %d\n", reviews)
	fmt.Printf("algorithm: %s\n", m.Settings().SchedulingAlgorithm)
}
