package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/engine"
	"github.com/gridmark/tictactoe-backend/internal/entity"
	"github.com/gridmark/tictactoe-backend/internal/pkg"
	"github.com/gridmark/tictactoe-backend/internal/repository"
)

var ErrGameIsFull = errors.New("game already has two players")

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	SetWaitingPublicGame(ctx context.Context, id string) error
	TakeWaitingPublicGame(ctx context.Context) (string, error)
}

type moveEngine interface {
	Decide(ctx context.Context, board entity.Board, mark string, difficulty entity.Difficulty) (int, engine.Metadata, error)
}

type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo
	engine     moveEngine
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, moveEngine moveEngine) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game-manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		engine:     moveEngine,
	}
}

// MakeTurn - applies the player's move and, in a bot game, the bot's reply.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if err = engine.MakeTurn(game, player.Mark, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsWithBot() && game.IsOngoing() {
		if err = that.makeBotTurn(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to make bot turn: %w", err)
		}
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() {
		that.deleteGame(ctx, game)

		return game, apperror.ErrGameFinished
	}

	return game, nil
}

// makeBotTurn - asks the decision engine for the bot's move and applies it.
// The engine always resolves to a legal move while the game is ongoing, so
// an error here means a programming fault, not a remote outage.
func (that *GameManager) makeBotTurn(ctx context.Context, game *entity.Game) error {
	bot := game.BotPlayer()
	if bot == nil {
		return fmt.Errorf("bot player missing in game %s", game.ID)
	}

	requestID := pkg.GenerateRequestID()

	cell, meta, err := that.engine.Decide(ctx, game.Board, bot.Mark, game.Difficulty)
	if err != nil {
		return fmt.Errorf("engine decide: %w", err)
	}

	that.logger.Info("bot move decided",
		"request_id", requestID,
		"game_id", game.ID,
		"difficulty", string(game.Difficulty),
		"cell", cell,
		"policy", meta.Policy,
		"fallback", meta.Fallback,
		"elapsed", meta.Elapsed,
	)

	if err = engine.MakeTurn(game, bot.Mark, cell); err != nil {
		return fmt.Errorf("apply bot move: %w", err)
	}

	return nil
}

// GetOrCreateGame - returns the player's current game or starts a new one of
// the given type. Bot games begin immediately with the bot playing O.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID, gameType string, difficulty entity.Difficulty) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		existingGame, err := that.getGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}

		return existingGame, nil
	}

	if gameType == entity.PublicType {
		if matched, err := that.joinWaitingPublicGame(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to match public game: %w", err)
		} else if matched != nil {
			return matched, nil
		}
	}

	return that.createGame(ctx, player, gameType, difficulty)
}

// joinWaitingPublicGame - claims the waiting public game and seats the player
// in it. Returns nil when no public game is waiting, or when the claimed id
// points at a game that no longer exists; the caller then opens a new one.
func (that *GameManager) joinWaitingPublicGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	gameID, err := that.gameRepo.TakeWaitingPublicGame(ctx)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take waiting public game: %w", err)
	}

	waitingGame, err := that.gameRepo.GetByID(ctx, gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	if !waitingGame.IsPublic() || !waitingGame.IsWaiting() {
		return nil, nil
	}

	return that.ConnectToGame(ctx, waitingGame.ID, player.ID)
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player, gameType string, difficulty entity.Difficulty) (*entity.Game, error) {
	gameID := pkg.GenerateGameID()
	player.GameID = gameID
	player.Mark = entity.PlayerX

	if err := that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	newGame := (&entity.Game{}).Create(gameID)
	newGame.Type = gameType
	newGame.Players = []*entity.Player{player}

	if gameType == entity.WithBotType {
		newGame.Difficulty = difficulty
		newGame.Status = entity.StatusOngoing
		newGame.Players = append(newGame.Players, entity.NewBotPlayer(gameID, entity.PlayerO))
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if gameType == entity.PublicType {
		if err := that.gameRepo.SetWaitingPublicGame(ctx, gameID); err != nil {
			return nil, fmt.Errorf("failed to register waiting public game: %w", err)
		}
	}

	return newGame, nil
}

// ConnectToGame - joins a second human player into an existing game.
func (that *GameManager) ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == existingGame.ID {
		return existingGame, nil
	}

	if len(existingGame.Players) == 2 {
		return nil, fmt.Errorf("%w: game id %s", ErrGameIsFull, gameID)
	}

	player.GameID = existingGame.ID
	player.Mark = entity.PlayerO
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player by id: %w", err)
	}

	existingGame.Status = entity.StatusOngoing
	existingGame.Players = append(existingGame.Players, player)
	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed to update game by id: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: pkg.GenerateSessionID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame")

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		player.Mark = ""
		player.GameID = ""

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "error", err)
		}
	}

	log.Info("game deleted", "game_id", game.ID)
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
