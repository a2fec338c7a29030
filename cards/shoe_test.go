package cards

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func sumCounts(s *Shoe) int {
	total := 0
	for _, n := range s.Counts() {
		total += n
	}
	return total
}

func TestNewShoe_SingleDeck(t *testing.T) {
	shoe := NewShoe(1, seeded(1))

	assert.Equal(t, 52, shoe.Remaining())
	assert.Equal(t, 16, shoe.Count(Ten))
	assert.Equal(t, 4, shoe.Count(Ace))
	for r := Two; r <= Nine; r++ {
		assert.Equal(t, 4, shoe.Count(r), "rank %s", r)
	}
	assert.Equal(t, 0.0, shoe.Penetration())
}

func TestNewShoe_MultipleDecks(t *testing.T) {
	shoe := NewShoe(6, seeded(1))
	assert.Equal(t, 312, shoe.Remaining())
	assert.Equal(t, 96, shoe.Count(Ten))
	assert.Equal(t, sumCounts(shoe), shoe.Remaining())

	empty := NewShoe(0, nil)
	assert.Equal(t, 0, empty.Remaining())
}

func TestNewShoe_ClampsDeckCount(t *testing.T) {
	shoe := NewShoe(1<<60, seeded(1))

	assert.Equal(t, 52*MaxDecks, shoe.Remaining())
	assert.Equal(t, 16*MaxDecks, shoe.Count(Ten))
	assert.Equal(t, 4*MaxDecks, shoe.Count(Two))
	assert.Equal(t, sumCounts(shoe), shoe.Remaining())
}

func TestShoe_DrawOne(t *testing.T) {
	shoe := NewShoe(1, seeded(7))
	before := shoe.Counts()

	r, err := shoe.DrawOne()
	require.NoError(t, err)

	assert.Equal(t, 51, shoe.Remaining())
	assert.Equal(t, before[r]-1, shoe.Count(r), "drawn rank should lose exactly one card")
	for _, other := range Ranks {
		if other != r {
			assert.Equal(t, before[other], shoe.Count(other))
		}
	}
}

func TestShoe_DrawOneOnlyFromAvailableRanks(t *testing.T) {
	shoe, err := NewShoeFromCounts(map[Rank]int{Five: 3, Ace: 2}, seeded(3))
	require.NoError(t, err)

	drawn := map[Rank]int{}
	for i := 0; i < 5; i++ {
		r, err := shoe.DrawOne()
		require.NoError(t, err)
		drawn[r]++
		assert.Equal(t, sumCounts(shoe), shoe.Remaining())
	}

	assert.Equal(t, map[Rank]int{Five: 3, Ace: 2}, drawn)
	assert.Equal(t, 1.0, shoe.Penetration())

	_, err = shoe.DrawOne()
	assert.ErrorIs(t, err, ErrShoeExhausted)
	assert.Equal(t, 0, shoe.Remaining())
}

func TestShoe_DrawOneFollowsComposition(t *testing.T) {
	shoe, err := NewShoeFromCounts(map[Rank]int{Ten: 9000, Two: 1000}, seeded(11))
	require.NoError(t, err)

	tens := 0
	for i := 0; i < 2000; i++ {
		r, err := shoe.DrawOne()
		require.NoError(t, err)
		if r == Ten {
			tens++
		}
	}
	assert.InDelta(t, 0.9, float64(tens)/2000, 0.03)
}

func TestShoe_RemoveCard(t *testing.T) {
	shoe, err := NewShoeFromCounts(map[Rank]int{Seven: 1}, seeded(1))
	require.NoError(t, err)

	require.NoError(t, shoe.RemoveCard(Seven))
	assert.Equal(t, 0, shoe.Remaining())
	assert.Equal(t, 0, shoe.Count(Seven))

	err = shoe.RemoveCard(Seven)
	assert.ErrorIs(t, err, ErrInsufficientSupply)
	assert.Equal(t, 0, shoe.Count(Seven), "failed removal must not go negative")

	err = shoe.RemoveCard(Rank(1))
	assert.ErrorIs(t, err, ErrInvalidRank)
}

func TestShoe_CloneIsIndependent(t *testing.T) {
	original := NewShoe(2, seeded(5))
	clone := original.Clone()

	for i := 0; i < 10; i++ {
		_, err := clone.DrawOne()
		require.NoError(t, err)
	}
	require.NoError(t, clone.RemoveCard(Ace))

	assert.Equal(t, 104, original.Remaining())
	assert.Equal(t, 8, original.Count(Ace))
	assert.Equal(t, 93, clone.Remaining())

	require.NoError(t, original.RemoveCard(Two))
	assert.Equal(t, 93, clone.Remaining(), "mutating the original must not touch the clone")
	assert.Equal(t, sumCounts(clone), clone.Remaining())
}

func TestShoe_WithRandIsReproducible(t *testing.T) {
	base := NewShoe(6, nil)

	a := base.WithRand(seeded(42))
	b := base.WithRand(seeded(42))
	for i := 0; i < 50; i++ {
		ra, err := a.DrawOne()
		require.NoError(t, err)
		rb, err := b.DrawOne()
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
	assert.Equal(t, 312, base.Remaining())
}

func TestNewShoeFromCounts_Invalid(t *testing.T) {
	_, err := NewShoeFromCounts(map[Rank]int{Two: -1}, nil)
	assert.Error(t, err)

	_, err = NewShoeFromCounts(map[Rank]int{Rank(13): 4}, nil)
	assert.ErrorIs(t, err, ErrInvalidRank)

	_, err = NewShoeFromCounts(map[Rank]int{Two: math.MaxInt, Three: 1}, nil)
	assert.Error(t, err)
}
