package table

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazharichir/blackjack/cards"
	"github.com/lazharichir/blackjack/events"
	"github.com/lazharichir/blackjack/rules"
	"github.com/lazharichir/blackjack/sim"
	"github.com/sanity-io/litter"
	"go.uber.org/zap"
)

// RoundState represents where the current round stands
type RoundState string

const (
	RoundStateIdle       RoundState = "idle"
	RoundStateDealing    RoundState = "dealing"
	RoundStatePlayerTurn RoundState = "player_turn"
	RoundStateComplete   RoundState = "complete"
	RoundStateAborted    RoundState = "aborted" // the shoe ran dry mid-round
)

// dealerMaxCards bounds a dealer hand: every card adds at least one to the
// hard total and the dealer stops drawing by 17.
const dealerMaxCards = 17

// reserveCards is the most cards one round can consume, recommendation
// trials included. The live shoe is reshuffled before it drops below this.
func reserveCards(cfg Config) int {
	player := 21 // hitting stops at 21 at the latest
	if cfg.MaxHandCards > 0 {
		player = max(cfg.MaxHandCards, 4) // a split holds four cards
	}
	return player + dealerMaxCards
}

// InitialDeal is what the table shows once the opening cards are out
type InitialDeal struct {
	RoundID string   `json:"round_id"`
	Player  []string `json:"player"`
	Dealer  []string `json:"dealer"`
}

// RoundResult is the settled outcome of a round
type RoundResult struct {
	RoundID      string          `json:"round_id"`
	PlayerCards  [][]string      `json:"player_cards"`
	DealerCards  []string        `json:"dealer_cards"`
	PlayerValues []int           `json:"player_values"`
	DealerValue  int             `json:"dealer_value"`
	Outcomes     []rules.Outcome `json:"outcomes"`
	Payoff       float64         `json:"payoff"`
}

// RoundView is a read-only snapshot of the table
type RoundView struct {
	TableID       string     `json:"table_id"`
	RoundID       string     `json:"round_id,omitempty"`
	State         RoundState `json:"state"`
	PlayerHands   [][]string `json:"player_hands"`
	DealerCards   []string   `json:"dealer_cards"`
	ShoeRemaining int        `json:"shoe_remaining"`
	Penetration   float64    `json:"penetration"`
	RoundsPlayed  int        `json:"rounds_played"`
}

// Manager runs rounds for a single player seat against the dealer. It owns
// the live shoe; the simulator only ever sees copies of it.
type Manager struct {
	ID string

	cfg       Config
	mu        sync.Mutex
	base      *cards.Shoe
	shoe      *cards.Shoe
	simu      *sim.Simulator
	threshold int
	reserve   int

	roundID     string
	state       RoundState
	playerHands []*cards.Hand
	dealerHand  *cards.Hand
	result      *RoundResult
	rounds      int
	dirtyShoe   bool // last round was aborted with cards out

	pending       []events.Event
	eventStore    events.EventStore
	eventHandlers []events.EventHandler
	logger        *zap.Logger
}

// NewManager creates a table with a freshly shuffled shoe
func NewManager(cfg Config, store events.EventStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = events.NewInMemoryEventStore()
	}

	shoeSeed := time.Now().UnixNano()
	if cfg.Seed != nil {
		shoeSeed = *cfg.Seed
	}
	base := cards.NewShoe(cfg.NumDecks, rand.New(rand.NewSource(shoeSeed)))
	live := base.Clone()

	m := &Manager{
		ID:         uuid.NewString(),
		cfg:        cfg,
		base:       base,
		shoe:       live,
		threshold:  int(float64(base.Remaining()) * cfg.ReshuffleRatio),
		reserve:    reserveCards(cfg),
		state:      RoundStateIdle,
		eventStore: store,
		logger:     logger,
	}
	m.logger = logger.With(zap.String("table_id", m.ID))
	m.simu = sim.New(live.Clone(), cfg.BlackjackPayout, cfg.Seed,
		sim.WithWorkers(cfg.Workers),
		sim.WithLogger(m.logger),
	)
	return m
}

// AddEventHandler registers a handler called for every event the table emits
func (m *Manager) AddEventHandler(handler events.EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventHandlers = append(m.eventHandlers, handler)
}

// Config returns the table configuration
func (m *Manager) Config() Config {
	return m.cfg
}

// do runs fn under the table lock, then publishes whatever it emitted
func (m *Manager) do(ctx context.Context, fn func() error) error {
	m.mu.Lock()
	err := fn()
	pending := m.pending
	m.pending = nil
	handlers := slices.Clone(m.eventHandlers)
	m.mu.Unlock()

	for _, event := range pending {
		if appendErr := m.eventStore.Append(ctx, event); appendErr != nil {
			m.logger.Warn("failed to store event",
				zap.String("event", event.EventName()),
				zap.Error(appendErr),
			)
		}
		for _, handler := range handlers {
			handler(event)
		}
	}
	return err
}

func (m *Manager) emit(event events.Event) {
	m.pending = append(m.pending, event)
}

// maybeReshuffle replaces the live shoe once it runs below the threshold, when
// it cannot cover a whole round, or after an aborted round
func (m *Manager) maybeReshuffle() {
	remaining := m.shoe.Remaining()
	if !m.dirtyShoe && remaining >= max(m.threshold, m.reserve) {
		return
	}

	m.dirtyShoe = false
	m.shoe = m.base.Clone()
	m.logger.Info("shoe reshuffled",
		zap.Int("remaining", remaining),
		zap.Int("threshold", m.threshold),
		zap.Int("reserve", m.reserve),
	)
	m.emit(events.ShoeReshuffled{
		TableID:   m.ID,
		RoundID:   m.roundID,
		Remaining: remaining,
		Threshold: m.threshold,
		At:        time.Now(),
	})
}

// StartRound reshuffles if needed and clears the hands for a new round
func (m *Manager) StartRound(ctx context.Context) error {
	return m.do(ctx, func() error {
		if m.state == RoundStateDealing || m.state == RoundStatePlayerTurn {
			return ErrRoundInProgress
		}

		m.roundID = uuid.NewString()
		m.maybeReshuffle()

		m.playerHands = []*cards.Hand{cards.NewHand()}
		m.dealerHand = cards.NewHand()
		m.result = nil
		m.state = RoundStateDealing

		// Trials draw from the shoe as it stands before this round's cards come out
		m.simu.SetBaseShoe(m.shoe.Clone())

		m.emit(events.RoundStarted{
			TableID:       m.ID,
			RoundID:       m.roundID,
			ShoeRemaining: m.shoe.Remaining(),
			At:            time.Now(),
		})
		return nil
	})
}

// DealInitial deals two cards to the player and the dealer's up card
func (m *Manager) DealInitial(ctx context.Context) (InitialDeal, error) {
	var deal InitialDeal
	err := m.do(ctx, func() error {
		if m.state != RoundStateDealing {
			if m.state == RoundStatePlayerTurn {
				return ErrAlreadyDealt
			}
			return ErrRoundNotActive
		}

		for i := 0; i < 2; i++ {
			if err := m.dealTo(events.SeatPlayer, 0, m.playerHands[0]); err != nil {
				return m.abortRound(err)
			}
		}
		if err := m.dealTo(events.SeatDealer, 0, m.dealerHand); err != nil {
			return m.abortRound(err)
		}

		m.state = RoundStatePlayerTurn
		deal = InitialDeal{
			RoundID: m.roundID,
			Player:  cards.Strings(m.playerHands[0].Cards),
			Dealer:  cards.Strings(m.dealerHand.Cards),
		}
		return nil
	})
	return deal, err
}

func (m *Manager) dealTo(seat string, handIndex int, hand *cards.Hand) error {
	card, err := m.shoe.DrawOne()
	if err != nil {
		return fmt.Errorf("deal to %s: %w", seat, err)
	}
	hand.AddCard(card)
	m.emit(events.CardDealt{
		TableID:   m.ID,
		RoundID:   m.roundID,
		Seat:      seat,
		HandIndex: handIndex,
		Rank:      card.String(),
		At:        time.Now(),
	})
	return nil
}

// Recommend evaluates every legal action for the player's current hand.
// The simulation runs outside the table lock.
func (m *Manager) Recommend(ctx context.Context) (sim.Recommendation, error) {
	m.mu.Lock()
	if m.state != RoundStatePlayerTurn {
		m.mu.Unlock()
		return sim.Recommendation{}, ErrRoundNotActive
	}
	roundID := m.roundID
	player := m.playerHands[0].Ranks()
	dealer := m.dealerHand.Ranks()
	m.mu.Unlock()

	rec, err := m.simu.EvaluateAll(player, dealer, m.cfg.NumSimulations, m.cfg.AllowSplit)
	if errors.Is(err, cards.ErrShoeExhausted) {
		// Trials ran out of cards: the round cannot be played out as recommended
		abortErr := m.do(ctx, func() error {
			if m.roundID == roundID && m.state == RoundStatePlayerTurn {
				return m.abortRound(err)
			}
			return err
		})
		return sim.Recommendation{}, abortErr
	}
	if err != nil {
		return sim.Recommendation{}, err
	}

	evs := make(map[string]float64, len(rec.Results))
	for action, res := range rec.Results {
		evs[string(action)] = res.EV
	}
	err = m.do(ctx, func() error {
		m.emit(events.RecommendationIssued{
			TableID:    m.ID,
			RoundID:    roundID,
			BestAction: string(rec.BestAction),
			BestEV:     rec.BestEV,
			EVs:        evs,
			At:         time.Now(),
		})
		return nil
	})
	return rec, err
}

// Apply performs a player action on the live shoe
func (m *Manager) Apply(ctx context.Context, action sim.Action) error {
	return m.do(ctx, func() error {
		if m.state != RoundStatePlayerTurn {
			return ErrRoundNotActive
		}

		hand := m.playerHands[0]
		if !slices.Contains(sim.LegalActions(hand.Cards, m.cfg.AllowSplit), action) {
			return fmt.Errorf("%w: %s with %s", sim.ErrIllegalAction, action, hand)
		}

		m.emit(events.PlayerActed{
			TableID: m.ID,
			RoundID: m.roundID,
			Action:  string(action),
			At:      time.Now(),
		})

		var err error
		switch action {
		case sim.Hit:
			err = m.hit(hand)
		case sim.Double:
			err = m.double(hand)
		case sim.Split:
			err = m.split(hand)
		default:
			err = m.finishRound()
		}
		if err != nil {
			return m.abortRound(err)
		}
		return nil
	})
}

// abortRound ends a round that could not draw the cards it needed. The next
// round starts from a fresh shoe.
func (m *Manager) abortRound(cause error) error {
	m.state = RoundStateAborted
	m.result = nil
	m.dirtyShoe = true

	m.logger.Warn("round aborted", zap.String("round_id", m.roundID), zap.Error(cause))
	m.emit(events.RoundAborted{
		TableID: m.ID,
		RoundID: m.roundID,
		Reason:  cause.Error(),
		At:      time.Now(),
	})
	return fmt.Errorf("%w: %w", ErrRoundAborted, cause)
}

func (m *Manager) Hit(ctx context.Context) error    { return m.Apply(ctx, sim.Hit) }
func (m *Manager) Stand(ctx context.Context) error  { return m.Apply(ctx, sim.Stand) }
func (m *Manager) Double(ctx context.Context) error { return m.Apply(ctx, sim.Double) }
func (m *Manager) Split(ctx context.Context) error  { return m.Apply(ctx, sim.Split) }

// hit ends the turn on a bust, on 21, or once the hand holds MaxHandCards
func (m *Manager) hit(hand *cards.Hand) error {
	if err := m.dealTo(events.SeatPlayer, 0, hand); err != nil {
		return err
	}
	if hand.IsBust() || hand.BestValue() >= 21 || (m.cfg.MaxHandCards > 0 && hand.Len() >= m.cfg.MaxHandCards) {
		return m.finishRound()
	}
	return nil
}

func (m *Manager) double(hand *cards.Hand) error {
	hand.Doubled = true
	if err := m.dealTo(events.SeatPlayer, 0, hand); err != nil {
		return err
	}
	return m.finishRound()
}

// split plays both branches the way the simulator does: one card each, then
// the dealer.
func (m *Manager) split(hand *cards.Hand) error {
	m.playerHands = []*cards.Hand{
		cards.NewSplitHand(hand.Cards[0]),
		cards.NewSplitHand(hand.Cards[1]),
	}
	for i, h := range m.playerHands {
		if err := m.dealTo(events.SeatPlayer, i, h); err != nil {
			return err
		}
	}
	return m.finishRound()
}

// finishRound plays the dealer out on the live shoe and settles every hand
func (m *Manager) finishRound() error {
	if err := rules.DealerPlay(m.shoe, m.dealerHand); err != nil {
		return err
	}

	result := RoundResult{
		RoundID:     m.roundID,
		DealerCards: cards.Strings(m.dealerHand.Cards),
		DealerValue: m.dealerHand.BestValue(),
	}
	for _, h := range m.playerHands {
		result.PlayerCards = append(result.PlayerCards, cards.Strings(h.Cards))
		result.PlayerValues = append(result.PlayerValues, h.BestValue())
		result.Outcomes = append(result.Outcomes, rules.Classify(h, m.dealerHand))
		result.Payoff += rules.SettleHand(h, m.dealerHand, m.cfg.BlackjackPayout)
	}

	m.result = &result
	m.state = RoundStateComplete
	m.rounds++

	outcomes := make([]string, len(result.Outcomes))
	for i, o := range result.Outcomes {
		outcomes[i] = string(o)
	}
	now := time.Now()
	m.emit(events.DealerPlayed{
		TableID: m.ID,
		RoundID: m.roundID,
		Cards:   result.DealerCards,
		Value:   result.DealerValue,
		At:      now,
	})
	m.emit(events.RoundSettled{
		TableID:      m.ID,
		RoundID:      m.roundID,
		PlayerValues: result.PlayerValues,
		DealerValue:  result.DealerValue,
		Outcomes:     outcomes,
		Payoff:       result.Payoff,
		At:           now,
	})

	if ce := m.logger.Check(zap.DebugLevel, "round settled"); ce != nil {
		ce.Write(zap.String("result", litter.Sdump(result)))
	}
	return nil
}

// Result returns the outcome of the last finished round
func (m *Manager) Result() (RoundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != RoundStateComplete || m.result == nil {
		return RoundResult{}, ErrRoundNotComplete
	}
	return *m.result, nil
}

// View returns a snapshot of the table
func (m *Manager) View() RoundView {
	m.mu.Lock()
	defer m.mu.Unlock()

	view := RoundView{
		TableID:       m.ID,
		RoundID:       m.roundID,
		State:         m.state,
		PlayerHands:   [][]string{},
		DealerCards:   []string{},
		ShoeRemaining: m.shoe.Remaining(),
		Penetration:   m.shoe.Penetration(),
		RoundsPlayed:  m.rounds,
	}
	for _, h := range m.playerHands {
		view.PlayerHands = append(view.PlayerHands, cards.Strings(h.Cards))
	}
	if m.dealerHand != nil {
		view.DealerCards = cards.Strings(m.dealerHand.Cards)
	}
	return view
}

// State returns where the current round stands
func (m *Manager) State() RoundState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PlayRound deals a round and follows the recommended action until it settles
func (m *Manager) PlayRound(ctx context.Context) (RoundResult, error) {
	if err := m.StartRound(ctx); err != nil {
		return RoundResult{}, err
	}
	if _, err := m.DealInitial(ctx); err != nil {
		return RoundResult{}, err
	}

	for m.State() == RoundStatePlayerTurn {
		rec, err := m.Recommend(ctx)
		if err != nil {
			return RoundResult{}, err
		}
		if err := m.Apply(ctx, rec.BestAction); err != nil {
			return RoundResult{}, err
		}
	}
	return m.Result()
}

// AutoPlay plays the given number of rounds following the recommendations
// and returns every result with the total payoff.
func (m *Manager) AutoPlay(ctx context.Context, rounds int) ([]RoundResult, float64, error) {
	results := make([]RoundResult, 0, rounds)
	var total float64
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return results, total, err
		}
		res, err := m.PlayRound(ctx)
		if err != nil {
			return results, total, fmt.Errorf("round %d: %w", i+1, err)
		}
		results = append(results, res)
		total += res.Payoff
	}
	return results, total, nil
}
