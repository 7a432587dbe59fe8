package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/FlorianWoelki/better-recall/internal/card"
)

func init() {
	cmd := &cobra.Command{
		Use:   "review [deck]",
		Short: "Review the due cards of a deck",
		Long:  "Start a review session: due cards are served one by one, each answer is rated again/hard/good/easy.",
		Args:  cobra.ExactArgs(1),
		Run:   runReview,
	}
	RootCmd.AddCommand(cmd)
}

var sessionRatings = []card.Rating{card.RatingAgain, card.RatingHard, card.RatingGood, card.RatingEasy}

func runReview(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d := mustFindDeck(m, args[0])
	algo := m.Algorithm()
	for _, c := range d.Cards {
		algo.AddItem(c)
	}
	algo.StartNewSession()

	in := bufio.NewScanner(os.Stdin)
	reviewed := 0
	for {
		item := algo.GetNextReviewItem()
		if item == nil {
			break
		}

		fmt.Printf("\n%s\n", item.Content.Front)
		fmt.Print("  [enter to flip] ")
		if !in.Scan() {
			break
		}
		fmt.Printf("%s\n\n", item.Content.Back)

		rating, ok := promptRating(in, algo, item)
		if !ok {
			break
		}
		if err := algo.UpdateItemAfterReview(item, rating); err != nil {
			exitErr("review", err)
		}
		reviewed++
	}

	if err := m.Save(cmd.Context()); err != nil {
		exitErr("review", err)
	}
	fmt.Printf("\nsession done, %d card(s) reviewed\n", reviewed)
}

// promptRating shows the potential next review delay per rating and reads
// the answer. Returns ok=false on EOF or "q".
func promptRating(in *bufio.Scanner, algo interface {
	CalculatePotentialNextReviewDate(*card.Card, card.Rating) (time.Time, error)
}, item *card.Card) (card.Rating, bool) {
	for i, r := range sessionRatings {
		delay := "?"
		if due, err := algo.CalculatePotentialNextReviewDate(item, r); err == nil {
			delay = formatDelay(time.Until(due))
		}
		fmt.Printf("  %d=%s (%s)", i+1, r, delay)
	}
	fmt.Print("\n> ")

	for {
		if !in.Scan() {
			return 0, false
		}
		switch strings.TrimSpace(in.Text()) {
		case "1":
			return card.RatingAgain, true
		case "2":
			return card.RatingHard, true
		case "3":
			return card.RatingGood, true
		case "4":
			return card.RatingEasy, true
		case "q":
			return 0, false
		}
		fmt.Print("answer 1-4 (or q to quit): ")
	}
}

// formatDelay renders a scheduling delay in the coarsest sensible unit.
func formatDelay(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()+0.5))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()+0.5))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24+0.5))
	}
}
