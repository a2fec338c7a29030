package rules

import (
	"testing"

	"github.com/lazharichir/blackjack/cards"
	"github.com/stretchr/testify/assert"
)

func hand(rs ...cards.Rank) *cards.Hand { return cards.NewHand(rs...) }

func TestSettleHand(t *testing.T) {
	const (
		A = cards.Ace
		T = cards.Ten
	)

	tests := []struct {
		name    string
		player  *cards.Hand
		dealer  *cards.Hand
		doubled bool
		outcome Outcome
		payoff  float64
	}{
		{"player bust loses even if dealer busts", hand(T, 8, 5), hand(T, 6, 9), false, OutcomeBust, -1},
		{"doubled bust loses double", hand(T, 2, T), hand(T, 7), true, OutcomeBust, -2},
		{"natural pays 3:2", hand(A, T), hand(T, 9), false, OutcomeBlackjack, 1.5},
		{"natural beats dealer three card 21", hand(T, A), hand(7, 7, 7), false, OutcomeBlackjack, 1.5},
		{"both naturals push", hand(A, T), hand(T, A), false, OutcomePush, 0},
		{"dealer natural beats player 21", hand(7, 7, 7), hand(A, T), false, OutcomeLoss, -1},
		{"dealer bust pays even money", hand(T, 2), hand(T, 6, 8), false, OutcomeWin, 1},
		{"doubled win pays double", hand(5, 6, T), hand(T, 8), true, OutcomeWin, 2},
		{"higher total wins", hand(T, 9), hand(T, 8), false, OutcomeWin, 1},
		{"equal totals push", hand(T, 8), hand(9, 9), false, OutcomePush, 0},
		{"lower total loses", hand(T, 7), hand(T, 9), false, OutcomeLoss, -1},
		{"doubled push", hand(5, 6, 7), hand(T, 8), true, OutcomePush, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.player.Doubled = tt.doubled
			assert.Equal(t, tt.outcome, Classify(tt.player, tt.dealer))
			assert.Equal(t, tt.payoff, SettleHand(tt.player, tt.dealer, DefaultBlackjackPayout))
		})
	}
}

func TestSettleHand_SplitTwentyOneIsNotNatural(t *testing.T) {
	player := cards.NewSplitHand(cards.Ace)
	player.AddCard(cards.Ten)

	assert.Equal(t, 1.0, SettleHand(player, hand(cards.Ten, cards.Nine), DefaultBlackjackPayout))
	assert.Equal(t, -1.0, SettleHand(player, hand(cards.Ace, cards.Ten), DefaultBlackjackPayout))
}

func TestSettleHand_BustLosesAgainstAnyDealer(t *testing.T) {
	player := hand(cards.Ten, cards.Eight, cards.Four)
	for _, dealer := range []*cards.Hand{
		hand(cards.Ace, cards.Ten),
		hand(cards.Ten, cards.Six, cards.Six),
		hand(cards.Ten, cards.Seven),
		hand(cards.Two, cards.Two),
	} {
		assert.Equal(t, -1.0, SettleHand(player, dealer, DefaultBlackjackPayout), "dealer %s", dealer)
	}
}

func TestSettleHand_CustomPayout(t *testing.T) {
	assert.Equal(t, 1.2, SettleHand(hand(cards.Ace, cards.Ten), hand(cards.Ten, cards.Seven), 1.2))
}
