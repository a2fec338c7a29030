package events

import (
	"encoding/json"

	"github.com/lazharichir/blackjack/events"
	"github.com/lazharichir/blackjack/server/connection"
	"go.uber.org/zap"
)

// EventEnvelope wraps a message with its name for client consumption
type EventEnvelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// Envelope marshals v into a named envelope
func Envelope(name string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(EventEnvelope{Name: name, Payload: payload})
}

// Dispatcher handles routing events to clients
type Dispatcher struct {
	connMgr *connection.Manager
	logger  *zap.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(connMgr *connection.Manager, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		connMgr: connMgr,
		logger:  logger,
	}
}

// HandleEvent sends a table event to every client following that table
func (d *Dispatcher) HandleEvent(event events.Event) {
	tableID := events.GetTableID(event)
	if tableID == "" {
		return
	}

	data, err := Envelope(event.EventName(), event)
	if err != nil {
		d.logger.Error("failed to marshal event", zap.String("event", event.EventName()), zap.Error(err))
		return
	}

	sent := d.connMgr.SendToTable(tableID, data)
	d.logger.Debug("dispatched event",
		zap.String("event", event.EventName()),
		zap.String("table_id", tableID),
		zap.Int("clients", sent),
	)
}
