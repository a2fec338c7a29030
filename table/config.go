package table

import (
	"github.com/lazharichir/blackjack/rules"
	"github.com/lazharichir/blackjack/sim"
)

// Config defines the rules and simulation budget of a table
type Config struct {
	NumDecks        int
	NumSimulations  int
	ReshuffleRatio  float64 // reshuffle once the live shoe falls below this share of the base shoe
	BlackjackPayout float64
	AllowSplit      bool
	MaxHandCards    int // a hand reaching this many cards ends the player's turn
	Workers         int
	Seed            *int64 // nil seeds from the clock
}

// DefaultConfig returns a six deck table simulating 10000 trials per action
func DefaultConfig() Config {
	return Config{
		NumDecks:        6,
		NumSimulations:  10000,
		ReshuffleRatio:  0.30,
		BlackjackPayout: rules.DefaultBlackjackPayout,
		AllowSplit:      true,
		MaxHandCards:    5,
		Workers:         sim.DefaultWorkers,
	}
}
