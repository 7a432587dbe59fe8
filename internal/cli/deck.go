package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FlorianWoelki/better-recall/internal/deck"
)

func init() {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		Run:   runDeckCreate,
	}
	createCmd.Flags().String("description", "", "Deck description")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List decks with card counts",
		Run:   runDeckList,
	}

	editCmd := &cobra.Command{
		Use:   "edit [name]",
		Short: "Rename a deck or change its description",
		Args:  cobra.ExactArgs(1),
		Run:   runDeckEdit,
	}
	editCmd.Flags().String("name", "", "New deck name")
	editCmd.Flags().String("description", "", "New deck description")

	rmCmd := &cobra.Command{
		Use:   "rm [name]",
		Short: "Delete a deck and all its cards",
		Args:  cobra.ExactArgs(1),
		Run:   runDeckRm,
	}

	deckCmd.AddCommand(createCmd, listCmd, editCmd, rmCmd)
	RootCmd.AddCommand(deckCmd)
}

func runDeckCreate(cmd *cobra.Command, args []string) {
	description, _ := cmd.Flags().GetString("description")

	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d, err := m.Create(cmd.Context(), args[0], description)
	if err != nil {
		exitErr("create deck", err)
	}
	fmt.Printf("created deck %q (%s)\n", d.Name, d.ID)
}

func runDeckList(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	decks := m.DecksArray()
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCARDS\tNEW\tLEARN\tDUE\tDESCRIPTION")
	for _, d := range decks {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n",
			d.Name, len(d.Cards), len(d.NewCards()), len(d.LearnCards()), len(d.DueCards()), d.Description)
	}
	w.Flush()
}

func runDeckEdit(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d, ok := m.FindByName(args[0])
	if !ok {
		exitErr("edit deck", fmt.Errorf("%w: %q", deck.ErrDeckNotFound, args[0]))
	}

	name := d.Name
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		name = v
	}
	description := d.Description
	if cmd.Flags().Changed("description") {
		description, _ = cmd.Flags().GetString("description")
	}

	if _, err := m.UpdateInformation(cmd.Context(), d.ID, name, description); err != nil {
		exitErr("edit deck", err)
	}
	fmt.Printf("updated deck %q\n", name)
}

func runDeckRm(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	d, ok := m.FindByName(args[0])
	if !ok {
		exitErr("delete deck", fmt.Errorf("%w: %q", deck.ErrDeckNotFound, args[0]))
	}
	if err := m.Delete(cmd.Context(), d.ID); err != nil {
		exitErr("delete deck", err)
	}
	fmt.Printf("deleted deck %q\n", d.Name)
}
