package card

import "fmt"

// State represents the lifecycle stage of a card.
//
// Legal transitions:
//
//	NEW        -> LEARNING            (first review, any rating)
//	LEARNING   -> LEARNING | REVIEW   (ladder step / graduation or easy)
//	REVIEW     -> REVIEW | RELEARNING (success / lapse)
//	RELEARNING -> REVIEW              (relearning ladder exhausted)
//
// NEW is the only initial state and there is no terminal state. The numeric
// values are part of the persisted schema and must not be reordered.
type State int

const (
	StateNew State = iota
	StateLearning
	StateReview
	StateRelearning
)

var stateNames = [...]string{
	StateNew:        "new",
	StateLearning:   "learning",
	StateReview:     "review",
	StateRelearning: "relearning",
}

// String returns the lowercase name of the state. For out-of-range values it
// returns "State(n)".
func (s State) String() string {
	if s >= StateNew && s <= StateRelearning {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InLadder reports whether the card state uses a learning/relearning step
// ladder rather than day-scale intervals.
func (s State) InLadder() bool {
	return s == StateLearning || s == StateRelearning
}
