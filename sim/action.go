package sim

import (
	"fmt"
	"strings"

	"github.com/lazharichir/blackjack/cards"
)

// Action is a player decision the simulator can evaluate
type Action string

const (
	Hit    Action = "HIT"
	Stand  Action = "STAND"
	Double Action = "DOUBLE"
	Split  Action = "SPLIT"
)

// EvaluationOrder is the order actions are simulated in. Ties on EV go to the
// action that comes first.
var EvaluationOrder = []Action{Hit, Stand, Double, Split}

// ParseAction accepts an action name in any case
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case Hit, Stand, Double, Split:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrIllegalAction, s)
	}
}

// IsPair checks if the cards are exactly two of the same rank
func IsPair(player []cards.Rank) bool {
	return len(player) == 2 && player[0] == player[1]
}

// LegalActions returns the actions available for the player's cards, in
// evaluation order. Hit and stand are always legal, double needs exactly two
// cards and split needs a pair.
func LegalActions(player []cards.Rank, allowSplit bool) []Action {
	actions := make([]Action, 0, len(EvaluationOrder))
	for _, a := range EvaluationOrder {
		switch a {
		case Double:
			if len(player) != 2 {
				continue
			}
		case Split:
			if !allowSplit || !IsPair(player) {
				continue
			}
		}
		actions = append(actions, a)
	}
	return actions
}
