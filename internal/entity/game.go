package entity

import (
	"errors"
	"fmt"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Board is a 3x3 grid in row-major order, indices 0-8.
type Board [9]string

// Difficulty selects the bot tier for a game against the bot.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty - validates a raw difficulty string coming from a client.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, raw)
	}
}

type Game struct {
	ID         string     `json:"id"`
	Board      Board      `json:"board"`
	Winner     string     `json:"winner,omitempty"`
	Status     string     `json:"status"`
	PlayerTurn string     `json:"player_turn,omitempty"`
	Players    []*Player  `json:"players,omitempty"`
	Type       string     `json:"type,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// Create - resets the game to its initial state with the given id.
func (that *Game) Create(id string) *Game {
	that.ID = id
	that.Board = Board{}
	that.Winner = ""
	that.Status = StatusWaiting
	that.PlayerTurn = PlayerX
	return that
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// BotPlayer - returns the bot participant of the game, if any.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}
	return nil
}

// OppositeMark - returns the other player's mark.
func OppositeMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
