package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		return that.sendError(sess, msg.Action, "failed to create a player")
	}

	log.Info("player connected", "player_id", player.ID)

	return that.sendMessage(sess, msg.Action, Payload{Player: player})
}

func (that *Server) handleNewGame(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		return that.sendError(sess, msg.Action, "player is required")
	}

	if payloadReq.Game == nil {
		return that.sendError(sess, msg.Action, "game is required")
	}

	difficulty := payloadReq.Game.Difficulty
	if payloadReq.Game.Type == entity.WithBotType {
		parsed, err := entity.ParseDifficulty(string(difficulty))
		if err != nil {
			return that.sendError(sess, msg.Action, "unknown difficulty")
		}
		difficulty = parsed
	}

	game, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, payloadReq.Game.Type, difficulty)
	if err != nil {
		log.Error("failed to get or create game", "error", err)
		return that.sendError(sess, msg.Action, "failed to create a game")
	}

	log.Info("game ready", "game_id", game.ID, "type", game.Type)

	return that.sendMessage(sess, msg.Action, Payload{Player: payloadReq.Player, Game: game})
}

func (that *Server) handleJoinGame(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleJoinGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Game == nil {
		return that.sendError(sess, msg.Action, "player and game are required")
	}

	game, err := that.gameUseCase.ConnectToGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "game_id", payloadReq.Game.ID, "error", err)
		return that.sendError(sess, msg.Action, "failed to join the game")
	}

	return that.sendMessage(sess, msg.Action, Payload{Player: payloadReq.Player, Game: game})
}

func (that *Server) handleGameTurn(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Cell == nil {
		return that.sendError(sess, msg.Action, "player and cell are required")
	}

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Cell)

	switch {
	case err == nil:
		return that.sendMessage(sess, msg.Action, Payload{Player: payloadReq.Player, Game: game})
	case errors.Is(err, apperror.ErrGameFinished):
		// a finished game is a result, not a failure
		return that.sendMessage(sess, msg.Action, Payload{Player: payloadReq.Player, Game: game})
	case errors.Is(err, apperror.ErrCellOccupied):
		return that.sendError(sess, msg.Action, "cell is already occupied")
	case errors.Is(err, apperror.ErrNotYourTurn):
		return that.sendError(sess, msg.Action, "it's not your turn")
	case errors.Is(err, apperror.ErrGameIsNotStarted):
		return that.sendError(sess, msg.Action, "game is not started yet")
	default:
		log.Error("failed to make turn", "error", err)
		return that.sendError(sess, msg.Action, "failed to make turn")
	}
}
