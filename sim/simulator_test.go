package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lazharichir/blackjack/cards"
	"github.com/lazharichir/blackjack/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(n int64) *int64 { return &n }

func shoeOf(t *testing.T, counts map[cards.Rank]int) *cards.Shoe {
	t.Helper()
	shoe, err := cards.NewShoeFromCounts(counts, nil)
	require.NoError(t, err)
	return shoe
}

func assertRatesSumToOne(t *testing.T, res SimulationResult) {
	t.Helper()
	assert.InDelta(t, 1.0, res.WinRate+res.LossRate+res.PushRate, 1e-9)
	for _, rate := range []float64{res.WinRate, res.LossRate, res.PushRate} {
		assert.GreaterOrEqual(t, rate, 0.0)
		assert.LessOrEqual(t, rate, 1.0)
	}
}

func TestSimulateAction_NaturalStandPaysExactly(t *testing.T) {
	// Only fives can come out as the hole card, so the dealer never has a natural
	base := shoeOf(t, map[cards.Rank]int{cards.Ace: 1, cards.Ten: 1, cards.Six: 1, cards.Five: 20})
	s := New(base, rules.DefaultBlackjackPayout, seed(1))

	res, err := s.SimulateAction([]cards.Rank{cards.Ace, cards.Ten}, []cards.Rank{cards.Six}, Stand, 500)
	require.NoError(t, err)

	assert.Equal(t, 500, res.N)
	assert.Equal(t, 1.5, res.EV)
	assert.Equal(t, 0.0, res.StdDev)
	assert.Equal(t, 1.0, res.WinRate)
	assert.Equal(t, 23, base.Remaining(), "base shoe must never be drawn from")
}

func TestSimulateAction_ForcedOutcomes(t *testing.T) {
	// Only tens remain after removing the observed cards: the dealer makes 20,
	// every drawn card is a ten.
	base := shoeOf(t, map[cards.Rank]int{cards.Eight: 2, cards.Ten: 30})
	player := []cards.Rank{cards.Eight, cards.Eight}
	dealer := []cards.Rank{cards.Ten}

	tests := []struct {
		action Action
		ev     float64
	}{
		{Stand, -1},  // 16 against 20
		{Hit, -1},    // 26
		{Double, -2}, // 26 doubled
		{Split, -2},  // two 18s against 20
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			s := New(base, rules.DefaultBlackjackPayout, seed(3))
			res, err := s.SimulateAction(player, dealer, tt.action, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.ev, res.EV)
			assert.Equal(t, 1.0, res.LossRate)
			assertRatesSumToOne(t, res)
		})
	}
}

func TestSimulateAction_SplitSumsBothHands(t *testing.T) {
	// After the observed cards two tens and a seven remain. A seven in the hole
	// leaves the dealer on 17 against two 19s; a ten in the hole gives the dealer
	// 20 against 19 and 16. Every trial therefore pays +2 or -2.
	base := shoeOf(t, map[cards.Rank]int{cards.Nine: 2, cards.Ten: 3, cards.Seven: 1})
	s := New(base, rules.DefaultBlackjackPayout, seed(9), WithWorkers(1))

	res, err := s.SimulateAction([]cards.Rank{cards.Nine, cards.Nine}, []cards.Rank{cards.Ten}, Split, 1000)
	require.NoError(t, err)

	assert.Zero(t, res.PushRate)
	assert.InDelta(t, 2*res.WinRate-2*res.LossRate, res.EV, 1e-9)
	assert.InDelta(t, math.Sqrt(4-res.EV*res.EV), res.StdDev, 1e-9)
	assertRatesSumToOne(t, res)
}

func TestSimulateAction_InsufficientSupply(t *testing.T) {
	base := shoeOf(t, map[cards.Rank]int{cards.Ten: 1, cards.Six: 1, cards.Five: 10})
	s := New(base, rules.DefaultBlackjackPayout, seed(1))

	_, err := s.SimulateAction([]cards.Rank{cards.Ten, cards.Ten}, []cards.Rank{cards.Six}, Stand, 10)
	assert.ErrorIs(t, err, cards.ErrInsufficientSupply)

	_, err = s.SimulateAction([]cards.Rank{cards.Ten, cards.Five}, []cards.Rank{cards.Ace}, Hit, 10)
	assert.ErrorIs(t, err, cards.ErrInsufficientSupply)

	_, err = s.EvaluateAll([]cards.Rank{cards.Ten, cards.Ten}, []cards.Rank{cards.Six}, 10, true)
	assert.ErrorIs(t, err, cards.ErrInsufficientSupply)
}

func TestSimulateAction_ShoeExhausted(t *testing.T) {
	base := shoeOf(t, map[cards.Rank]int{cards.Ten: 1, cards.Six: 1, cards.Five: 1})
	s := New(base, rules.DefaultBlackjackPayout, seed(1))

	_, err := s.SimulateAction([]cards.Rank{cards.Ten, cards.Six}, []cards.Rank{cards.Five}, Hit, 5)
	assert.ErrorIs(t, err, cards.ErrShoeExhausted)
}

func TestSimulateAction_ZeroTrials(t *testing.T) {
	s := New(cards.NewShoe(1, nil), rules.DefaultBlackjackPayout, seed(1))

	for _, n := range []int{0, -5} {
		res, err := s.SimulateAction([]cards.Rank{cards.Ten, cards.Six}, []cards.Rank{cards.Nine}, Stand, n)
		require.NoError(t, err)
		assert.Equal(t, SimulationResult{Action: Stand}, res)
	}
}

func TestSimulateAction_IllegalAction(t *testing.T) {
	s := New(cards.NewShoe(1, nil), rules.DefaultBlackjackPayout, seed(1))

	_, err := s.SimulateAction([]cards.Rank{cards.Ten, cards.Six}, []cards.Rank{cards.Nine}, Split, 10)
	assert.ErrorIs(t, err, ErrIllegalAction)

	_, err = s.SimulateAction([]cards.Rank{cards.Ten, cards.Six}, []cards.Rank{cards.Nine}, Action("SURRENDER"), 10)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestSimulateAction_RatesOnFullShoe(t *testing.T) {
	s := New(cards.NewShoe(6, nil), rules.DefaultBlackjackPayout, seed(2024))

	for _, action := range []Action{Hit, Stand, Double, Split} {
		res, err := s.SimulateAction([]cards.Rank{cards.Eight, cards.Eight}, []cards.Rank{cards.Seven}, action, 2000)
		require.NoError(t, err)
		assert.Equal(t, 2000, res.N)
		assertRatesSumToOne(t, res)
		assert.Greater(t, res.StdDev, 0.0)
	}
}

func TestEvaluateAll_LegalActions(t *testing.T) {
	s := New(cards.NewShoe(6, nil), rules.DefaultBlackjackPayout, seed(7))

	rec, err := s.EvaluateAll([]cards.Rank{cards.Ten, cards.Ten}, []cards.Rank{cards.Six}, 500, true)
	require.NoError(t, err)

	assert.Equal(t, []Action{Hit, Stand, Double, Split}, rec.Evaluated)
	assert.Contains(t, rec.Results, Split)
	assert.Contains(t, rec.Results, Double)
	assert.Equal(t, []string{"10", "10"}, rec.PlayerHand)
	assert.Equal(t, []string{"6"}, rec.DealerHand)
	assert.Equal(t, rec.Results[rec.BestAction].EV, rec.BestEV)
	for _, res := range rec.Results {
		assert.LessOrEqual(t, res.EV, rec.BestEV)
	}

	rec, err = s.EvaluateAll([]cards.Rank{cards.Ten, cards.Ten}, []cards.Rank{cards.Six}, 100, false)
	require.NoError(t, err)
	assert.NotContains(t, rec.Results, Split)

	rec, err = s.EvaluateAll([]cards.Rank{cards.Two, cards.Three, cards.Four}, []cards.Rank{cards.Six}, 100, true)
	require.NoError(t, err)
	assert.Equal(t, []Action{Hit, Stand}, rec.Evaluated)
}

func TestEvaluateAll_TieGoesToFirstAction(t *testing.T) {
	base := shoeOf(t, map[cards.Rank]int{cards.Eight: 2, cards.Ten: 30})
	s := New(base, rules.DefaultBlackjackPayout, seed(3))

	rec, err := s.EvaluateAll([]cards.Rank{cards.Eight, cards.Eight}, []cards.Rank{cards.Ten}, 50, true)
	require.NoError(t, err)

	// hit and stand both lose one unit every time
	assert.Equal(t, Hit, rec.BestAction)
	assert.Equal(t, -1.0, rec.BestEV)
}

func TestEvaluateAll_SameSeedSameRecommendation(t *testing.T) {
	player := []cards.Rank{cards.Ace, cards.Seven}
	dealer := []cards.Rank{cards.Nine}

	a := New(cards.NewShoe(6, nil), rules.DefaultBlackjackPayout, seed(99))
	b := New(cards.NewShoe(6, nil), rules.DefaultBlackjackPayout, seed(99))

	recA, err := a.EvaluateAll(player, dealer, 3000, true)
	require.NoError(t, err)
	recB, err := b.EvaluateAll(player, dealer, 3000, true)
	require.NoError(t, err)

	assert.Equal(t, recA, recB)
}

func TestSimulator_SetBaseShoe(t *testing.T) {
	s := New(cards.NewShoe(1, nil), rules.DefaultBlackjackPayout, seed(1))
	replacement := cards.NewShoe(2, rand.New(rand.NewSource(1)))

	s.SetBaseShoe(replacement)
	got := s.BaseShoe()
	assert.Equal(t, 104, got.Remaining())

	require.NoError(t, got.RemoveCard(cards.Ace))
	assert.Equal(t, 104, replacement.Remaining(), "BaseShoe must hand out a copy")
}

func TestLegalActions(t *testing.T) {
	assert.Equal(t, []Action{Hit, Stand, Double, Split}, LegalActions([]cards.Rank{cards.Ace, cards.Ace}, true))
	assert.Equal(t, []Action{Hit, Stand, Double}, LegalActions([]cards.Rank{cards.Ace, cards.Ace}, false))
	assert.Equal(t, []Action{Hit, Stand, Double}, LegalActions([]cards.Rank{cards.Ace, cards.Nine}, true))
	assert.Equal(t, []Action{Hit, Stand}, LegalActions([]cards.Rank{cards.Five, cards.Five, cards.Five}, true))
	assert.Equal(t, []Action{Hit, Stand}, LegalActions(nil, true))
	assert.Equal(t, EvaluationOrder, LegalActions([]cards.Rank{cards.Ten, cards.Ten}, true))
}

func TestSimulator_BaseShoeDrawsOnItsOwnSource(t *testing.T) {
	base := cards.NewShoe(1, rand.New(rand.NewSource(5)))
	s := New(base, rules.DefaultBlackjackPayout, seed(1))

	copied := s.BaseShoe()
	for i := 0; i < 10; i++ {
		_, err := copied.DrawOne()
		require.NoError(t, err)
	}

	untouched := cards.NewShoe(1, rand.New(rand.NewSource(5)))
	for i := 0; i < 10; i++ {
		want, err := untouched.DrawOne()
		require.NoError(t, err)
		got, err := base.DrawOne()
		require.NoError(t, err)
		assert.Equal(t, want, got, "draws from the copy must not advance the base shoe's source")
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" double ")
	require.NoError(t, err)
	assert.Equal(t, Double, a)

	_, err = ParseAction("surrender")
	assert.ErrorIs(t, err, ErrIllegalAction)
}
