package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gridmark/tictactoe-backend/internal/entity"
)

var ErrGameNotFound = errors.New("game not found")

// waitingPublicGameKey holds the id of the public game currently waiting for
// an opponent. At most one public game waits at a time.
const waitingPublicGameKey = "game:waiting_public"

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	SetWaitingPublicGame(ctx context.Context, id string) error
	TakeWaitingPublicGame(ctx context.Context) (string, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + game.ID
	if err = that.client.Set(ctx, gameKey, gameJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// SetWaitingPublicGame - marks the game as the one waiting for a public
// opponent.
func (that *dbGame) SetWaitingPublicGame(ctx context.Context, id string) error {
	if err := that.client.Set(ctx, waitingPublicGameKey, id, 0).Err(); err != nil {
		return fmt.Errorf("failed to set waiting public game: %w", err)
	}

	return nil
}

// TakeWaitingPublicGame - atomically claims the waiting public game id, so
// two joining players cannot both match the same seat.
func (that *dbGame) TakeWaitingPublicGame(ctx context.Context) (string, error) {
	id, err := that.client.GetDel(ctx, waitingPublicGameKey).Result()

	if errors.Is(err, redis.Nil) {
		return "", ErrGameNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to take waiting public game: %w", err)
	}

	return id, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	if err := that.client.Del(ctx, gameKey).Err(); err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	return nil
}
