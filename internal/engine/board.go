package engine

import (
	"fmt"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/entity"
)

// Outcome is the result of evaluating a board.
type Outcome int

const (
	InProgress Outcome = iota
	XWins
	OWins
	Draw
)

// Winner - returns the mark of the winning player, or the tie mark for a draw.
func (that Outcome) Winner() string {
	switch that {
	case XWins:
		return entity.PlayerX
	case OWins:
		return entity.PlayerO
	case Draw:
		return entity.PlayerTie
	default:
		return ""
	}
}

func (that Outcome) IsTerminal() bool {
	return that != InProgress
}

// winCombos are the 8 winning lines: 3 rows, 3 columns, 2 diagonals.
var winCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - derives the outcome of a board: a win for whichever player
// completes a line, a draw when the board is full, in-progress otherwise.
func Evaluate(board entity.Board) Outcome {
	for _, combo := range winCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			if a == entity.PlayerX {
				return XWins
			}
			return OWins
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return InProgress
		}
	}

	return Draw
}

// LegalMoves - lists the empty cells of a non-terminal board in ascending
// order. A terminal board has no legal moves.
func LegalMoves(board entity.Board) []int {
	if Evaluate(board).IsTerminal() {
		return nil
	}

	moves := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// Apply - places a mark on the board and returns the resulting board.
// The input board is not modified.
func Apply(board entity.Board, cell int, mark string) (entity.Board, error) {
	if cell < 0 || cell >= len(board) {
		return board, fmt.Errorf("%w: cell %d out of range", apperror.ErrIllegalMove, cell)
	}

	if board[cell] != entity.EmptyCell {
		return board, fmt.Errorf("%w: cell %d is occupied", apperror.ErrIllegalMove, cell)
	}

	if Evaluate(board).IsTerminal() {
		return board, fmt.Errorf("%w: board is terminal", apperror.ErrIllegalMove)
	}

	board[cell] = mark

	return board, nil
}

// ValidateBoard - checks that a board is reachable by alternating play:
// only known marks, X moved first, and at most one winner.
func ValidateBoard(board entity.Board) error {
	var xCount, oCount int

	for i, cell := range board {
		switch cell {
		case entity.EmptyCell:
		case entity.PlayerX:
			xCount++
		case entity.PlayerO:
			oCount++
		default:
			return fmt.Errorf("%w: unknown mark %q at cell %d", apperror.ErrCorruptBoard, cell, i)
		}
	}

	if xCount < oCount || xCount > oCount+1 {
		return fmt.Errorf("%w: %d X against %d O", apperror.ErrCorruptBoard, xCount, oCount)
	}

	if hasWin(board, entity.PlayerX) && hasWin(board, entity.PlayerO) {
		return fmt.Errorf("%w: both players hold a completed line", apperror.ErrCorruptBoard)
	}

	return nil
}

func hasWin(board entity.Board, mark string) bool {
	for _, combo := range winCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			return true
		}
	}
	return false
}

// findWinningMove - returns a cell that completes a line for the mark, if one
// exists. Lines are checked in row, column, diagonal order.
func findWinningMove(board entity.Board, mark string) (int, bool) {
	for _, combo := range winCombos {
		empty := -1
		owned := 0

		for _, cell := range combo {
			switch board[cell] {
			case mark:
				owned++
			case entity.EmptyCell:
				empty = cell
			}
		}

		if owned == 2 && empty >= 0 {
			return empty, true
		}
	}

	return 0, false
}
