package rules

import "github.com/lazharichir/blackjack/cards"

// DefaultBlackjackPayout is the 3:2 payout for a natural
const DefaultBlackjackPayout = 1.5

// Outcome classifies a settled player hand
type Outcome string

const (
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeWin       Outcome = "win"
	OutcomePush      Outcome = "push"
	OutcomeLoss      Outcome = "loss"
	OutcomeBust      Outcome = "bust"
)

// Classify resolves a finished player hand against a finished dealer hand.
// Checks run in a fixed order: player bust, naturals, dealer bust, totals.
func Classify(player, dealer *cards.Hand) Outcome {
	switch {
	case player.IsBust():
		return OutcomeBust
	case player.IsBlackjack() && !dealer.IsBlackjack():
		return OutcomeBlackjack
	case player.IsBlackjack() && dealer.IsBlackjack():
		return OutcomePush
	case dealer.IsBlackjack():
		return OutcomeLoss
	case dealer.IsBust():
		return OutcomeWin
	}

	pv, dv := player.BestValue(), dealer.BestValue()
	switch {
	case pv > dv:
		return OutcomeWin
	case pv < dv:
		return OutcomeLoss
	default:
		return OutcomePush
	}
}

// SettleHand returns the signed payoff of a finished player hand
func SettleHand(player, dealer *cards.Hand, blackjackPayout float64) float64 {
	bet := player.EffectiveBet()
	switch Classify(player, dealer) {
	case OutcomeBlackjack:
		return bet * blackjackPayout
	case OutcomeWin:
		return bet
	case OutcomeLoss, OutcomeBust:
		return -bet
	default:
		return 0
	}
}
