package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lazharichir/blackjack/cards"
	"github.com/lazharichir/blackjack/server/connection"
	"github.com/lazharichir/blackjack/server/events"
	"github.com/lazharichir/blackjack/server/handlers"
	"github.com/lazharichir/blackjack/sim"
	"github.com/lazharichir/blackjack/table"
	"go.uber.org/zap"
)

const (
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	maxSimulations = 1_000_000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, implement proper origin checks
	},
}

// Server exposes the lobby over HTTP and websocket
type Server struct {
	lobby      *table.Lobby
	connMgr    *connection.Manager
	cmdRouter  *handlers.CommandRouter
	dispatcher *events.Dispatcher
	router     chi.Router
	logger     *zap.Logger
}

// NewServer creates a server for the lobby's tables
func NewServer(lobby *table.Lobby, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	connMgr := connection.NewManager(logger)

	dispatcher := events.NewDispatcher(connMgr, logger)
	cmdRouter := handlers.NewCommandRouter(lobby, connMgr, logger)

	// Table events go out to every client following the table
	lobby.AddEventHandler(dispatcher.HandleEvent)

	s := &Server{
		lobby:      lobby,
		connMgr:    connMgr,
		cmdRouter:  cmdRouter,
		dispatcher: dispatcher,
		logger:     logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware, s.requestLogger)

		r.Get("/health", s.handleHealth)
		r.Post("/recommend", s.handleRecommend)

		r.Get("/tables", s.handleGetTables)
		r.Post("/tables", s.handleCreateTable)
		r.Route("/tables/{tableID}", func(r chi.Router) {
			r.Get("/", s.handleGetTable)
			r.Delete("/", s.handleCloseTable)
			r.Post("/rounds", s.handleStartRound)
			r.Get("/recommendation", s.handleRecommendation)
			r.Post("/actions", s.handleAction)
			r.Get("/result", s.handleResult)
			r.Get("/events", s.handleEvents)
		})
	})
	return r
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the given port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// handleWebSocket handles incoming WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &connection.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	s.logger.Info("client connected", zap.String("remote_addr", r.RemoteAddr), zap.String("client_id", client.ID))

	s.connMgr.Register(client)

	// The request context ends with this handler, the connection does not
	ctx := context.WithoutCancel(r.Context())
	go s.readPump(ctx, client)
	go s.writePump(client)
}

// readPump reads commands from the WebSocket connection
func (s *Server) readPump(ctx context.Context, client *connection.Client) {
	defer func() {
		s.connMgr.Unregister(client)
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", zap.String("client_id", client.ID), zap.Error(err))
			}
			return
		}

		if err := s.cmdRouter.HandleCommand(ctx, client, message); err != nil {
			s.logger.Info("command failed", zap.String("client_id", client.ID), zap.Error(err))
			s.cmdRouter.ReplyError(client, err)
		}
	}
}

// writePump sends queued messages and keeps the connection alive with pings
func (s *Server) writePump(client *connection.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("websocket write failed", zap.String("client_id", client.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, table.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, cards.ErrInvalidRank):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrRoundInProgress),
		errors.Is(err, table.ErrRoundNotActive),
		errors.Is(err, table.ErrRoundNotComplete),
		errors.Is(err, table.ErrAlreadyDealt):
		return http.StatusConflict
	case errors.Is(err, cards.ErrInsufficientSupply),
		errors.Is(err, cards.ErrShoeExhausted),
		errors.Is(err, sim.ErrIllegalAction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
