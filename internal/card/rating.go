package card

import (
	"encoding"
	"errors"
	"fmt"
)

// ErrInvalidRating is returned when a rating is outside Again..Easy.
var ErrInvalidRating = errors.New("card: invalid rating")

// Rating is the universal four-valued outcome of a review attempt. Each
// scheduling algorithm translates it into its own native rating space.
type Rating int

const (
	RatingAgain Rating = iota // Complete failure to recall.
	RatingHard                // Recalled with significant difficulty.
	RatingGood                // Recalled with some effort.
	RatingEasy                // Recalled effortlessly.
)

var (
	ratingNames  = [...]string{RatingAgain: "again", RatingHard: "hard", RatingGood: "good", RatingEasy: "easy"}
	ratingByName = map[string]Rating{
		"again": RatingAgain,
		"hard":  RatingHard,
		"good":  RatingGood,
		"easy":  RatingEasy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// IsValid reports whether r is within Again..Easy.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase name of the rating. For invalid values it
// returns "Rating(n)".
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the
// lowercase rating names ("again", "hard", "good", "easy").
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRating, text)
	}
	*r = v
	return nil
}
