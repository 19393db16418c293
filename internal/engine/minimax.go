package engine

import (
	"context"
	"fmt"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/entity"
)

// MinimaxPolicy plays perfectly by exhausting the remaining game tree.
// Ties between equally scored moves go to the lowest cell index, so the
// chosen move is deterministic. The tree from any reachable board is small
// enough that no pruning or caching is needed.
type MinimaxPolicy struct{}

func NewMinimaxPolicy() *MinimaxPolicy {
	return &MinimaxPolicy{}
}

func (that *MinimaxPolicy) Decide(_ context.Context, board entity.Board, mark string) (Decision, error) {
	moves := LegalMoves(board)
	if len(moves) == 0 {
		return Decision{}, fmt.Errorf("minimax: %w", apperror.ErrNoLegalMove)
	}

	bestCell := moves[0]
	bestScore := -2 // below any reachable score

	for _, cell := range moves {
		next, err := Apply(board, cell, mark)
		if err != nil {
			return Decision{}, fmt.Errorf("minimax: %w", err)
		}

		score := minimax(next, entity.OppositeMark(mark), mark)
		if score > bestScore {
			bestScore = score
			bestCell = cell
		}
	}

	return Decision{Cell: bestCell, Policy: PolicyMinimax}, nil
}

// minimax - scores a position from the perspective of `self`, assuming both
// sides continue optimally. `mover` is the player whose turn it is.
func minimax(board entity.Board, mover, self string) int {
	switch outcome := Evaluate(board); {
	case outcome == Draw:
		return 0
	case outcome.IsTerminal() && outcome.Winner() == self:
		return 1
	case outcome.IsTerminal():
		return -1
	}

	best := -2
	if mover != self {
		best = 2
	}

	for i, cell := range board {
		if cell != entity.EmptyCell {
			continue
		}

		next := board
		next[i] = mover

		score := minimax(next, entity.OppositeMark(mover), self)
		if mover == self && score > best {
			best = score
		}
		if mover != self && score < best {
			best = score
		}
	}

	return best
}
