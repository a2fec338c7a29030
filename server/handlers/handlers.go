package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lazharichir/blackjack/server/commands"
	"github.com/lazharichir/blackjack/server/connection"
	"github.com/lazharichir/blackjack/server/events"
	"github.com/lazharichir/blackjack/sim"
	"github.com/lazharichir/blackjack/table"
	"go.uber.org/zap"
)

var (
	ErrUnknownCommand = errors.New("unknown command type")
	ErrNotAtTable     = errors.New("client has not joined the table")
)

// Reply names sent back to the client that issued a command
const (
	ReplyTableJoined    = "table-joined"
	ReplyTableLeft      = "table-left"
	ReplyRoundDealt     = "round-dealt"
	ReplyTableView      = "table-view"
	ReplyRoundResult    = "round-result"
	ReplyRecommendation = "recommendation"
	ReplyError          = "error"
)

// CommandRouter routes incoming commands to the appropriate handler
type CommandRouter struct {
	lobby   *table.Lobby
	connMgr *connection.Manager
	logger  *zap.Logger
}

// NewCommandRouter creates a new command router
func NewCommandRouter(lobby *table.Lobby, connMgr *connection.Manager, logger *zap.Logger) *CommandRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRouter{
		lobby:   lobby,
		connMgr: connMgr,
		logger:  logger,
	}
}

// HandleCommand processes an incoming command message
func (r *CommandRouter) HandleCommand(ctx context.Context, client *connection.Client, message []byte) error {
	var baseCmd struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(message, &baseCmd); err != nil {
		return fmt.Errorf("decode command: %w", err)
	}

	switch baseCmd.Name {
	case commands.JoinTable{}.Name():
		var cmd commands.JoinTable
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleJoinTable(client, cmd)

	case commands.LeaveTable{}.Name():
		var cmd commands.LeaveTable
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleLeaveTable(client, cmd)

	case commands.StartRound{}.Name():
		var cmd commands.StartRound
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleStartRound(ctx, client, cmd)

	case commands.PlayerActs{}.Name():
		var cmd commands.PlayerActs
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handlePlayerActs(ctx, client, cmd)

	case commands.RequestRecommendation{}.Name():
		var cmd commands.RequestRecommendation
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleRequestRecommendation(ctx, client, cmd)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, baseCmd.Name)
	}
}

// ReplyError tells the client a command failed
func (r *CommandRouter) ReplyError(client *connection.Client, err error) {
	if replyErr := r.reply(client, ReplyError, map[string]string{"error": err.Error()}); replyErr != nil {
		r.logger.Warn("failed to send error reply", zap.String("client_id", client.ID), zap.Error(replyErr))
	}
}

func (r *CommandRouter) reply(client *connection.Client, name string, v any) error {
	data, err := events.Envelope(name, v)
	if err != nil {
		return err
	}
	r.connMgr.SendToClient(client.ID, data)
	return nil
}

// joinedTable returns the table if the client follows it
func (r *CommandRouter) joinedTable(client *connection.Client, tableID string) (*table.Manager, error) {
	if !r.connMgr.IsClientAtTable(client.ID, tableID) {
		return nil, fmt.Errorf("%w: %s", ErrNotAtTable, tableID)
	}
	return r.lobby.GetTable(tableID)
}

func (r *CommandRouter) handleJoinTable(client *connection.Client, cmd commands.JoinTable) error {
	var tbl *table.Manager
	if cmd.TableID == "" {
		tbl = r.lobby.CreateTable()
	} else {
		var err error
		if tbl, err = r.lobby.GetTable(cmd.TableID); err != nil {
			return err
		}
	}

	if !r.connMgr.AddTableToClient(client.ID, tbl.ID) {
		return fmt.Errorf("client %s is not registered", client.ID)
	}
	r.logger.Info("client joined table", zap.String("client_id", client.ID), zap.String("table_id", tbl.ID))
	return r.reply(client, ReplyTableJoined, tbl.View())
}

func (r *CommandRouter) handleLeaveTable(client *connection.Client, cmd commands.LeaveTable) error {
	if !r.connMgr.RemoveTableFromClient(client.ID, cmd.TableID) {
		return fmt.Errorf("%w: %s", ErrNotAtTable, cmd.TableID)
	}
	return r.reply(client, ReplyTableLeft, map[string]string{"table_id": cmd.TableID})
}

func (r *CommandRouter) handleStartRound(ctx context.Context, client *connection.Client, cmd commands.StartRound) error {
	tbl, err := r.joinedTable(client, cmd.TableID)
	if err != nil {
		return err
	}

	if err := tbl.StartRound(ctx); err != nil {
		return err
	}
	deal, err := tbl.DealInitial(ctx)
	if err != nil {
		return err
	}
	return r.reply(client, ReplyRoundDealt, deal)
}

func (r *CommandRouter) handlePlayerActs(ctx context.Context, client *connection.Client, cmd commands.PlayerActs) error {
	tbl, err := r.joinedTable(client, cmd.TableID)
	if err != nil {
		return err
	}

	action, err := sim.ParseAction(cmd.Action)
	if err != nil {
		return err
	}
	if err := tbl.Apply(ctx, action); err != nil {
		return err
	}

	if tbl.State() == table.RoundStateComplete {
		res, err := tbl.Result()
		if err != nil {
			return err
		}
		return r.reply(client, ReplyRoundResult, res)
	}
	return r.reply(client, ReplyTableView, tbl.View())
}

func (r *CommandRouter) handleRequestRecommendation(ctx context.Context, client *connection.Client, cmd commands.RequestRecommendation) error {
	tbl, err := r.joinedTable(client, cmd.TableID)
	if err != nil {
		return err
	}

	rec, err := tbl.Recommend(ctx)
	if err != nil {
		return err
	}
	return r.reply(client, ReplyRecommendation, rec)
}
