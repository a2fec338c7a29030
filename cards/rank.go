package cards

import (
	"fmt"
	"strings"
)

// Rank represents a blackjack card value. Suits play no part in the game,
// so the four ten-valued faces all collapse into Ten.
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10 // ten, jack, queen, king
	Ace   Rank = 11
)

// Ranks lists every rank in ascending order
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Ace}

// Valid reports whether r is one of the ten blackjack ranks
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Value returns the hard value of the rank. Aces report 11; a Hand decides
// whether to count them as 1.
func (r Rank) Value() int {
	return int(r)
}

// String returns the display form of a rank
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r.Valid():
		return fmt.Sprintf("%d", int(r))
	default:
		return fmt.Sprintf("Rank(%d)", int(r))
	}
}

// ParseRank creates a rank from its shorthand.
// e.g., "A" -> Ace, "K" or "10" or "T" -> Ten, "7" -> Seven
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "A":
		return Ace, nil
	case "K", "Q", "J", "T", "10":
		return Ten, nil
	case "9":
		return Nine, nil
	case "8":
		return Eight, nil
	case "7":
		return Seven, nil
	case "6":
		return Six, nil
	case "5":
		return Five, nil
	case "4":
		return Four, nil
	case "3":
		return Three, nil
	case "2":
		return Two, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRank, s)
	}
}

// ParseRanks parses every shorthand in order
func ParseRanks(ss []string) ([]Rank, error) {
	ranks := make([]Rank, 0, len(ss))
	for _, s := range ss {
		r, err := ParseRank(s)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, r)
	}
	return ranks, nil
}

// Strings maps ranks to their display strings
func Strings(ranks []Rank) []string {
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.String()
	}
	return out
}
