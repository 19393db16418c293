package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")

	ErrIllegalMove  = errors.New("illegal move")
	ErrCorruptBoard = errors.New("corrupt board state")
	ErrNoLegalMove  = errors.New("no legal move on a terminal board")
)
