package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type RoundStarted struct {
	TableID       string    `json:"table_id"`
	RoundID       string    `json:"round_id"`
	ShoeRemaining int       `json:"shoe_remaining"`
	At            time.Time `json:"at"`
}

func (RoundStarted) EventName() string { return "round-started" }

type ShoeReshuffled struct {
	TableID   string    `json:"table_id"`
	RoundID   string    `json:"round_id"`
	Remaining int       `json:"remaining"`
	Threshold int       `json:"threshold"`
	At        time.Time `json:"at"`
}

func (ShoeReshuffled) EventName() string { return "shoe-reshuffled" }

// Seats a card can be dealt to
const (
	SeatPlayer = "player"
	SeatDealer = "dealer"
)

type CardDealt struct {
	TableID   string    `json:"table_id"`
	RoundID   string    `json:"round_id"`
	Seat      string    `json:"seat"`
	HandIndex int       `json:"hand_index"`
	Rank      string    `json:"rank"`
	At        time.Time `json:"at"`
}

func (CardDealt) EventName() string { return "card-dealt" }

type RecommendationIssued struct {
	TableID    string             `json:"table_id"`
	RoundID    string             `json:"round_id"`
	BestAction string             `json:"best_action"`
	BestEV     float64            `json:"best_ev"`
	EVs        map[string]float64 `json:"evs"`
	At         time.Time          `json:"at"`
}

func (RecommendationIssued) EventName() string { return "recommendation-issued" }

type PlayerActed struct {
	TableID string    `json:"table_id"`
	RoundID string    `json:"round_id"`
	Action  string    `json:"action"`
	At      time.Time `json:"at"`
}

func (PlayerActed) EventName() string { return "player-acted" }

type DealerPlayed struct {
	TableID string    `json:"table_id"`
	RoundID string    `json:"round_id"`
	Cards   []string  `json:"cards"`
	Value   int       `json:"value"`
	At      time.Time `json:"at"`
}

func (DealerPlayed) EventName() string { return "dealer-played" }

type RoundSettled struct {
	TableID      string    `json:"table_id"`
	RoundID      string    `json:"round_id"`
	PlayerValues []int     `json:"player_values"`
	DealerValue  int       `json:"dealer_value"`
	Outcomes     []string  `json:"outcomes"`
	Payoff       float64   `json:"payoff"`
	At           time.Time `json:"at"`
}

func (RoundSettled) EventName() string { return "round-settled" }

// RoundAborted ends a round the shoe could not finish
type RoundAborted struct {
	TableID string    `json:"table_id"`
	RoundID string    `json:"round_id"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

func (RoundAborted) EventName() string { return "round-aborted" }

// Decode rebuilds a typed event from its name and JSON payload
func Decode(name string, payload []byte) (Event, error) {
	var (
		event Event
		err   error
	)
	switch name {
	case RoundStarted{}.EventName():
		event, err = decodeAs[RoundStarted](payload)
	case ShoeReshuffled{}.EventName():
		event, err = decodeAs[ShoeReshuffled](payload)
	case CardDealt{}.EventName():
		event, err = decodeAs[CardDealt](payload)
	case RecommendationIssued{}.EventName():
		event, err = decodeAs[RecommendationIssued](payload)
	case PlayerActed{}.EventName():
		event, err = decodeAs[PlayerActed](payload)
	case DealerPlayed{}.EventName():
		event, err = decodeAs[DealerPlayed](payload)
	case RoundSettled{}.EventName():
		event, err = decodeAs[RoundSettled](payload)
	case RoundAborted{}.EventName():
		event, err = decodeAs[RoundAborted](payload)
	default:
		return nil, fmt.Errorf("unknown event type: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return event, nil
}

func decodeAs[T Event](payload []byte) (Event, error) {
	var e T
	err := json.Unmarshal(payload, &e)
	return e, err
}
