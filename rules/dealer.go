// Package rules holds the blackjack rule engine: the dealer's drawing policy
// and the settlement of finished hands.
package rules

import (
	"fmt"

	"github.com/lazharichir/blackjack/cards"
)

// DealerStandThreshold is the total at which the dealer stops drawing.
// The dealer stands on every 17, soft 17 included.
const DealerStandThreshold = 17

// DealerState is the dealer's position in its drawing policy
type DealerState string

const (
	DealerHitting  DealerState = "hitting"
	DealerStanding DealerState = "standing"
)

// NextDealerState returns what the dealer must do with the given hand
func NextDealerState(dealer *cards.Hand) DealerState {
	if dealer.BestValue() < DealerStandThreshold {
		return DealerHitting
	}
	return DealerStanding
}

// DealerPlay draws cards into the dealer's hand until it stands or busts
func DealerPlay(shoe *cards.Shoe, dealer *cards.Hand) error {
	for NextDealerState(dealer) == DealerHitting {
		card, err := shoe.DrawOne()
		if err != nil {
			return fmt.Errorf("dealer draw: %w", err)
		}
		dealer.AddCard(card)
	}
	return nil
}
