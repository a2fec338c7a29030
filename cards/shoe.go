package cards

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// MaxDecks bounds the size of a shoe so per-rank counts cannot overflow
const MaxDecks = 10_000

// cardsPerRank is how many cards of each non-ten rank a 52-card deck holds.
// Ten, jack, queen and king share the Ten rank, so it holds four times as many.
const cardsPerRank = 4

// Shoe represents one or more decks collapsed into per-rank counts.
// Draws are weighted by the counts and never replace the card.
type Shoe struct {
	counts    [Ace + 1]int
	remaining int
	initial   int
	rng       *rand.Rand
}

// NewShoe creates a shoe with a given number of decks, at most MaxDecks
func NewShoe(numDecks int, rng *rand.Rand) *Shoe {
	s := &Shoe{rng: orTimeSeeded(rng)}
	if numDecks <= 0 {
		return s
	}
	numDecks = min(numDecks, MaxDecks)
	for _, r := range Ranks {
		n := cardsPerRank * numDecks
		if r == Ten {
			n *= 4
		}
		s.counts[r] = n
		s.remaining += n
	}
	s.initial = s.remaining
	return s
}

// NewShoeFromCounts creates a shoe holding exactly the given composition
func NewShoeFromCounts(counts map[Rank]int, rng *rand.Rand) (*Shoe, error) {
	s := &Shoe{rng: orTimeSeeded(rng)}
	for r, n := range counts {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidRank, int(r))
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %d for rank %s", n, r)
		}
		if n > math.MaxInt-s.remaining {
			return nil, fmt.Errorf("count %d for rank %s overflows the shoe", n, r)
		}
		s.counts[r] = n
		s.remaining += n
	}
	s.initial = s.remaining
	return s, nil
}

func orTimeSeeded(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Clone returns a copy of the shoe with its own counts but the same random
// source. *rand.Rand is not safe for concurrent use, so a clone must not draw
// concurrently with the original; use WithRand for that.
func (s *Shoe) Clone() *Shoe {
	c := *s
	return &c
}

// WithRand returns an independent copy of the shoe drawing from rng
func (s *Shoe) WithRand(rng *rand.Rand) *Shoe {
	c := s.Clone()
	c.rng = orTimeSeeded(rng)
	return c
}

// Remaining returns the number of cards left in the shoe
func (s *Shoe) Remaining() int {
	return s.remaining
}

// Count returns how many cards of rank r are left
func (s *Shoe) Count(r Rank) int {
	if !r.Valid() {
		return 0
	}
	return s.counts[r]
}

// Counts returns a copy of the per-rank counts
func (s *Shoe) Counts() map[Rank]int {
	out := make(map[Rank]int, len(Ranks))
	for _, r := range Ranks {
		out[r] = s.counts[r]
	}
	return out
}

// Penetration returns the fraction of the original shoe already dealt
func (s *Shoe) Penetration() float64 {
	if s.initial == 0 {
		return 0
	}
	return 1 - float64(s.remaining)/float64(s.initial)
}

// DrawOne picks a rank with probability proportional to its count and removes it
func (s *Shoe) DrawOne() (Rank, error) {
	if s.remaining == 0 {
		return 0, ErrShoeExhausted
	}

	pos := s.rng.Intn(s.remaining)
	sum := 0
	for _, r := range Ranks {
		sum += s.counts[r]
		if sum > pos {
			s.counts[r]--
			s.remaining--
			return r, nil
		}
	}

	// remaining is out of sync with counts
	panic("cards: shoe counts do not add up to remaining")
}

// RemoveCard takes a known card out of the shoe
func (s *Shoe) RemoveCard(r Rank) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRank, int(r))
	}
	if s.counts[r] <= 0 {
		return fmt.Errorf("%w: no %s left", ErrInsufficientSupply, r)
	}
	s.counts[r]--
	s.remaining--
	return nil
}
