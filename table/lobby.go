package table

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lazharichir/blackjack/events"
	"go.uber.org/zap"
)

// Lobby keeps every open table and relays their events
type Lobby struct {
	cfg        Config
	eventStore events.EventStore
	logger     *zap.Logger

	mutex         sync.RWMutex
	tables        map[string]*Manager
	order         []string
	eventHandlers []events.EventHandler
}

// NewLobby creates a lobby whose tables share cfg and store
func NewLobby(cfg Config, store events.EventStore, logger *zap.Logger) *Lobby {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = events.NewInMemoryEventStore()
	}
	return &Lobby{
		cfg:        cfg,
		eventStore: store,
		logger:     logger,
		tables:     make(map[string]*Manager),
	}
}

// Config returns the settings every new table is opened with
func (l *Lobby) Config() Config {
	return l.cfg
}

// EventStore returns the store every table appends to
func (l *Lobby) EventStore() events.EventStore {
	return l.eventStore
}

// CreateTable opens a new table with the lobby configuration
func (l *Lobby) CreateTable() *Manager {
	table := NewManager(l.cfg, l.eventStore, l.logger)
	table.AddEventHandler(l.handleTableEvent)

	l.mutex.Lock()
	l.tables[table.ID] = table
	l.order = append(l.order, table.ID)
	l.mutex.Unlock()

	l.logger.Info("table created", zap.String("table_id", table.ID))
	return table
}

// GetTable retrieves a table by ID
func (l *Lobby) GetTable(tableID string) (*Manager, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	table, exists := l.tables[tableID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	return table, nil
}

// GetTables returns all tables in the order they were opened
func (l *Lobby) GetTables() []*Manager {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	tables := make([]*Manager, 0, len(l.order))
	for _, id := range l.order {
		tables = append(tables, l.tables[id])
	}
	return tables
}

// CloseTable removes a table from the lobby
func (l *Lobby) CloseTable(tableID string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.tables[tableID]; !exists {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	delete(l.tables, tableID)
	if i := slices.Index(l.order, tableID); i >= 0 {
		l.order = slices.Delete(l.order, i, i+1)
	}
	return nil
}

// AddEventHandler adds an event handler to the lobby
func (l *Lobby) AddEventHandler(handler events.EventHandler) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.eventHandlers = append(l.eventHandlers, handler)
}

func (l *Lobby) handleTableEvent(event events.Event) {
	l.mutex.RLock()
	handlers := l.eventHandlers
	l.mutex.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
