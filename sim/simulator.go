// Package sim estimates the expected value of blackjack actions by replaying
// the rest of a round many times against the cards still in the shoe.
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lazharichir/blackjack/cards"
	"github.com/lazharichir/blackjack/rules"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is how many goroutines share the trials of one action
const DefaultWorkers = 4

// Simulator runs Monte Carlo trials from a base shoe. The base shoe is only
// ever cloned, never drawn from.
type Simulator struct {
	mu              sync.Mutex
	baseShoe        *cards.Shoe
	blackjackPayout float64
	rng             *rand.Rand
	workers         int
	logger          *zap.Logger
}

// Option configures a Simulator
type Option func(*Simulator)

// WithWorkers sets how many goroutines run trials. Results for a given seed
// are only reproducible with the same worker count.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a simulator over baseShoe. A nil seed seeds from the clock.
func New(baseShoe *cards.Shoe, blackjackPayout float64, seed *int64, opts ...Option) *Simulator {
	src := time.Now().UnixNano()
	if seed != nil {
		src = *seed
	}

	s := &Simulator{
		baseShoe:        baseShoe,
		blackjackPayout: blackjackPayout,
		rng:             rand.New(rand.NewSource(src)),
		workers:         DefaultWorkers,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetBaseShoe replaces the population trials are drawn from
func (s *Simulator) SetBaseShoe(shoe *cards.Shoe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseShoe = shoe
}

// BaseShoe returns a copy of the population trials are drawn from, with its
// own random source
func (s *Simulator) BaseShoe() *cards.Shoe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseShoe.WithRand(nil)
}

// prepareShoe clones the base shoe and takes the cards already seen out of it.
// Failing here means the observed state could not have come from the base shoe.
func prepareShoe(base *cards.Shoe, player, dealer []cards.Rank) (*cards.Shoe, error) {
	shoe := base.Clone()
	for _, r := range player {
		if err := shoe.RemoveCard(r); err != nil {
			return nil, fmt.Errorf("remove player card: %w", err)
		}
	}
	for _, r := range dealer {
		if err := shoe.RemoveCard(r); err != nil {
			return nil, fmt.Errorf("remove dealer card: %w", err)
		}
	}
	return shoe, nil
}

func checkAction(player []cards.Rank, action Action) error {
	switch action {
	case Hit, Stand, Double:
		return nil
	case Split:
		if !IsPair(player) {
			return fmt.Errorf("%w: split needs a pair, have %v", ErrIllegalAction, cards.Strings(player))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrIllegalAction, action)
	}
}

// SimulateAction plays nSim independent trials of action from the observed
// cards and aggregates their payoffs. Each trial draws the dealer's hidden card,
// applies the action, lets the dealer finish and settles.
func (s *Simulator) SimulateAction(player, dealer []cards.Rank, action Action, nSim int) (SimulationResult, error) {
	if err := checkAction(player, action); err != nil {
		return SimulationResult{Action: action}, err
	}

	n := max(nSim, 0)
	workers := min(s.workers, n)

	s.mu.Lock()
	prepared, err := prepareShoe(s.baseShoe, player, dealer)
	if err != nil {
		s.mu.Unlock()
		return SimulationResult{Action: action}, err
	}
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = s.rng.Int63()
	}
	s.mu.Unlock()

	started := time.Now()
	payoffs := make([]float64, n)

	var g errgroup.Group
	lo := 0
	for w := 0; w < workers; w++ {
		size := n / workers
		if w < n%workers {
			size++
		}
		from, to := lo, lo+size
		lo = to

		rng := rand.New(rand.NewSource(seeds[w]))
		g.Go(func() error {
			for i := from; i < to; i++ {
				payoff, err := s.runTrial(prepared.WithRand(rng), player, dealer, action)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				payoffs[i] = payoff
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SimulationResult{Action: action}, err
	}

	res := aggregate(action, payoffs)
	s.logger.Debug("simulated action",
		zap.String("action", string(action)),
		zap.Strings("player", cards.Strings(player)),
		zap.Strings("dealer", cards.Strings(dealer)),
		zap.Int("trials", res.N),
		zap.Int("workers", workers),
		zap.Float64("ev", res.EV),
		zap.Duration("took", time.Since(started)),
	)
	return res, nil
}

// runTrial plays one continuation on a shoe the trial owns
func (s *Simulator) runTrial(shoe *cards.Shoe, player, dealer []cards.Rank, action Action) (float64, error) {
	playerHand := cards.NewHand(player...)
	dealerHand := cards.NewHand(dealer...)

	hole, err := shoe.DrawOne()
	if err != nil {
		return 0, fmt.Errorf("dealer hole card: %w", err)
	}
	dealerHand.AddCard(hole)

	switch action {
	case Stand:
	case Hit:
		if err := drawInto(shoe, playerHand); err != nil {
			return 0, err
		}
	case Double:
		playerHand.Doubled = true
		if err := drawInto(shoe, playerHand); err != nil {
			return 0, err
		}
	case Split:
		return s.runSplit(shoe, player, dealerHand)
	}

	if err := rules.DealerPlay(shoe, dealerHand); err != nil {
		return 0, err
	}
	return rules.SettleHand(playerHand, dealerHand, s.blackjackPayout), nil
}

// runSplit plays both split hands against a single dealer resolution
func (s *Simulator) runSplit(shoe *cards.Shoe, player []cards.Rank, dealerHand *cards.Hand) (float64, error) {
	hands := []*cards.Hand{cards.NewSplitHand(player[0]), cards.NewSplitHand(player[1])}
	for _, h := range hands {
		if err := drawInto(shoe, h); err != nil {
			return 0, err
		}
	}

	if err := rules.DealerPlay(shoe, dealerHand); err != nil {
		return 0, err
	}

	var payoff float64
	for _, h := range hands {
		payoff += rules.SettleHand(h, dealerHand, s.blackjackPayout)
	}
	return payoff, nil
}

func drawInto(shoe *cards.Shoe, h *cards.Hand) error {
	card, err := shoe.DrawOne()
	if err != nil {
		return fmt.Errorf("player draw: %w", err)
	}
	h.AddCard(card)
	return nil
}

// EvaluateAll simulates every legal action with the same trial count and
// recommends the one with the highest EV.
func (s *Simulator) EvaluateAll(player, dealer []cards.Rank, nSim int, allowSplit bool) (Recommendation, error) {
	rec := Recommendation{
		PlayerHand: cards.Strings(player),
		DealerHand: cards.Strings(dealer),
		Results:    make(map[Action]SimulationResult),
		Evaluated:  LegalActions(player, allowSplit),
	}

	for i, action := range rec.Evaluated {
		res, err := s.SimulateAction(player, dealer, action, nSim)
		if err != nil {
			return Recommendation{}, fmt.Errorf("simulate %s: %w", action, err)
		}
		rec.Results[action] = res

		if i == 0 || res.EV > rec.BestEV {
			rec.BestAction = action
			rec.BestEV = res.EV
		}
	}

	s.logger.Debug("evaluated actions",
		zap.Strings("player", rec.PlayerHand),
		zap.Strings("dealer", rec.DealerHand),
		zap.String("best_action", string(rec.BestAction)),
		zap.Float64("best_ev", rec.BestEV),
	)
	return rec, nil
}
