// Package commands holds the messages websocket clients send to drive a table.
package commands

type Command interface {
	Name() string
}

// JoinTable subscribes the client to a table. An empty TableID opens a new one.
type JoinTable struct {
	TableID string `json:"table_id"`
}

func (JoinTable) Name() string { return "join-table" }

type LeaveTable struct {
	TableID string `json:"table_id"`
}

func (LeaveTable) Name() string { return "leave-table" }

// StartRound starts a round and deals the opening cards
type StartRound struct {
	TableID string `json:"table_id"`
}

func (StartRound) Name() string { return "start-round" }

type PlayerActs struct {
	TableID string `json:"table_id"`
	Action  string `json:"action"`
}

func (PlayerActs) Name() string { return "player-acts" }

type RequestRecommendation struct {
	TableID string `json:"table_id"`
}

func (RequestRecommendation) Name() string { return "request-recommendation" }
