package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FlorianWoelki/better-recall/internal/card"
	"github.com/FlorianWoelki/better-recall/internal/deck"
)

func init() {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	addCmd := &cobra.Command{
		Use:   "add [deck]",
		Short: "Add a card to a deck",
		Args:  cobra.ExactArgs(1),
		Run:   runCardAdd,
	}
	addCmd.Flags().String("front", "", "Front text (required)")
	addCmd.Flags().String("back", "", "Back text (required)")
	addCmd.MarkFlagRequired("front")
	addCmd.MarkFlagRequired("back")

	listCmd := &cobra.Command{
		Use:   "list [deck]",
		Short: "List the cards of a deck",
		Args:  cobra.ExactArgs(1),
		Run:   runCardList,
	}

	editCmd := &cobra.Command{
		Use:   "edit [deck] [card-id]",
		Short: "Change the content of a card",
		Args:  cobra.ExactArgs(2),
		Run:   runCardEdit,
	}
	editCmd.Flags().String("front", "", "New front text")
	editCmd.Flags().String("back", "", "New back text")

	rmCmd := &cobra.Command{
		Use:   "rm [deck] [card-id]",
		Short: "Remove a card from a deck",
		Args:  cobra.ExactArgs(2),
		Run:   runCardRm,
	}

	cardCmd.AddCommand(addCmd, listCmd, editCmd, rmCmd)
	RootCmd.AddCommand(cardCmd)
}

func mustFindDeck(m *deck.Manager, name string) *deck.Deck {
	d, ok := m.FindByName(name)
	if !ok {
		exitErr("find deck", fmt.Errorf("%w: %q", deck.ErrDeckNotFound, name))
	}
	return d
}

func runCardAdd(cmd *cobra.Command, args []string) {
	front, _ := cmd.Flags().GetString("front")
	back, _ := cmd.Flags().GetString("back")

	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d := mustFindDeck(m, args[0])
	c := m.Algorithm().CreateNewCard(deck.NewID(), card.Content{Front: front, Back: back})
	if err := m.AddCard(d.ID, c); err != nil {
		exitErr("add card", err)
	}
	if err := m.Save(cmd.Context()); err != nil {
		exitErr("add card", err)
	}
	fmt.Printf("added card %s to %q\n", c.ID, d.Name)
}

func runCardList(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d := mustFindDeck(m, args[0])
	cards := d.CardsArray()
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tREVIEWS\tFRONT")
	for _, c := range cards {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.State, c.Iteration, c.Content.Front)
	}
	w.Flush()
}

func runCardEdit(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d := mustFindDeck(m, args[0])
	c, ok := d.Cards[args[1]]
	if !ok {
		exitErr("edit card", fmt.Errorf("%w: %s", deck.ErrCardNotFound, args[1]))
	}

	updated := c.Clone()
	if v, _ := cmd.Flags().GetString("front"); v != "" {
		updated.Content.Front = v
	}
	if v, _ := cmd.Flags().GetString("back"); v != "" {
		updated.Content.Back = v
	}

	if err := m.UpdateCardContent(d.ID, updated); err != nil {
		exitErr("edit card", err)
	}
	if err := m.Save(cmd.Context()); err != nil {
		exitErr("edit card", err)
	}
	fmt.Printf("updated card %s\n", updated.ID)
}

func runCardRm(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d := mustFindDeck(m, args[0])
	if err := m.RemoveCard(d.ID, args[1]); err != nil {
		exitErr("remove card", err)
	}
	if err := m.Save(cmd.Context()); err != nil {
		exitErr("remove card", err)
	}
	fmt.Printf("removed card %s from %q\n", args[1], d.Name)
}
