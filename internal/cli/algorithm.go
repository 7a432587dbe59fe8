package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FlorianWoelki/better-recall/internal/schema"
)

func init() {
	algoCmd := &cobra.Command{
		Use:   "algorithm",
		Short: "Show or switch the scheduling algorithm",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active scheduling algorithm",
		Run:   runAlgorithmShow,
	}

	setCmd := &cobra.Command{
		Use:   "set [anki|fsrs]",
		Short: "Switch the scheduling algorithm",
		Long:  "Switch the scheduling algorithm. The scheduling state of every card is reset; card content is kept.",
		Args:  cobra.ExactArgs(1),
		Run:   runAlgorithmSet,
	}

	algoCmd.AddCommand(showCmd, setCmd)
	RootCmd.AddCommand(algoCmd)
}

func runAlgorithmShow(cmd *cobra.Command, args []string) {
	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	fmt.Println(m.Settings().SchedulingAlgorithm)
}

func runAlgorithmSet(cmd *cobra.Command, args []string) {
	var target schema.Algorithm
	switch args[0] {
	case "anki":
		target = schema.AlgorithmAnki
	case "fsrs":
		target = schema.AlgorithmFSRS
	default:
		exitErr("set algorithm", fmt.Errorf("unknown algorithm %q (use anki or fsrs)", args[0]))
	}

	m, closeStore, err := openManager(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	settings := m.Settings()
	if settings.SchedulingAlgorithm == target {
		fmt.Printf("algorithm already set to %s\n", target)
		return
	}

	settings.SchedulingAlgorithm = target
	m.SetAlgorithm(algorithmFor(*settings))
	if err := m.ResetCardsForAlgorithmSwitch(cmd.Context()); err != nil {
		exitErr("set algorithm", err)
	}
	fmt.Printf("switched to %s, card scheduling state reset\n", target)
}
