package cards

import "strings"

const (
	blackjackTotal = 21
	aceSoftening   = 10
)

// Hand is one wagered position: the player's hand, one branch of a split,
// or the dealer's hand.
type Hand struct {
	Cards       []Rank
	Bet         float64
	Doubled     bool
	IsSplitHand bool
}

// NewHand creates a hand with a unit bet seeded with the given cards
func NewHand(cards ...Rank) *Hand {
	h := &Hand{Bet: 1.0, Cards: make([]Rank, 0, len(cards)+2)}
	h.Cards = append(h.Cards, cards...)
	return h
}

// NewSplitHand creates one branch of a split holding a single card
func NewSplitHand(card Rank) *Hand {
	h := NewHand(card)
	h.IsSplitHand = true
	return h
}

// AddCard appends a card to the hand
func (h *Hand) AddCard(r Rank) {
	h.Cards = append(h.Cards, r)
}

func (h *Hand) Len() int {
	return len(h.Cards)
}

// Ranks returns a copy of the cards in the hand
func (h *Hand) Ranks() []Rank {
	out := make([]Rank, len(h.Cards))
	copy(out, h.Cards)
	return out
}

// Clone returns an independent copy of the hand
func (h *Hand) Clone() *Hand {
	c := *h
	c.Cards = h.Ranks()
	return &c
}

// total returns the best total and how many aces still count as 11
func (h *Hand) total() (int, int) {
	total, soft := 0, 0
	for _, r := range h.Cards {
		if r == Ace {
			soft++
		}
		total += r.Value()
	}
	for total > blackjackTotal && soft > 0 {
		total -= aceSoftening
		soft--
	}
	return total, soft
}

// BestValue returns the highest total not above 21, counting aces as 11 or 1.
// The result only exceeds 21 when every ace already counts as 1.
func (h *Hand) BestValue() int {
	total, _ := h.total()
	return total
}

// IsSoft checks if an ace still counts as 11
func (h *Hand) IsSoft() bool {
	_, soft := h.total()
	return soft > 0
}

func (h *Hand) IsBust() bool {
	return h.BestValue() > blackjackTotal
}

// IsBlackjack checks for a natural: two cards totalling 21 dealt before any split
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && !h.IsSplitHand && h.BestValue() == blackjackTotal
}

// EffectiveBet returns the wager settled against the dealer
func (h *Hand) EffectiveBet() float64 {
	if h.Doubled {
		return h.Bet * 2
	}
	return h.Bet
}

// String returns the hand as space separated ranks
func (h *Hand) String() string {
	return strings.Join(Strings(h.Cards), " ")
}
