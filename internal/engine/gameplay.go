package engine

import (
	"fmt"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/entity"
)

// MakeTurn - applies one move to a game and updates its status. Turn order
// and cell occupancy are enforced here; the board rules come from the
// evaluator.
func MakeTurn(game *entity.Game, mark string, cell int) error {
	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	if game.PlayerTurn != mark {
		return apperror.ErrNotYourTurn
	}

	if cell >= 0 && cell < len(game.Board) && game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	board, err := Apply(game.Board, cell, mark)
	if err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.Board = board
	updateGameStatus(game, mark)

	return nil
}

// updateGameStatus - derives the game status from the board after a move.
func updateGameStatus(game *entity.Game, mark string) {
	outcome := Evaluate(game.Board)

	if outcome.IsTerminal() {
		game.Winner = outcome.Winner()
		game.Status = entity.StatusFinished
		game.PlayerTurn = ""
		return
	}

	game.PlayerTurn = entity.OppositeMark(mark)
}
