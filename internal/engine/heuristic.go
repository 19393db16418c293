package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/entity"
)

var (
	cornerCells = []int{0, 2, 6, 8}
	edgeCells   = []int{1, 3, 5, 7}
)

const centerCell = 4

// HeuristicPolicy picks moves by fixed priority: win now, block the
// opponent, take the center, take a random corner, take a random edge.
// tactics is the probability that the win/block steps are applied at all;
// the easy tier plays with tactics below 1 and sometimes misses both on
// purpose.
type HeuristicPolicy struct {
	mu      sync.Mutex
	rng     *rand.Rand
	tactics float64
}

// NewHeuristicPolicy - builds a heuristic policy around an explicit random
// source, so tests can seed it.
func NewHeuristicPolicy(rng *rand.Rand, tactics float64) *HeuristicPolicy {
	return &HeuristicPolicy{
		rng:     rng,
		tactics: tactics,
	}
}

func (that *HeuristicPolicy) Decide(_ context.Context, board entity.Board, mark string) (Decision, error) {
	moves := LegalMoves(board)
	if len(moves) == 0 {
		return Decision{}, fmt.Errorf("heuristic: %w", apperror.ErrNoLegalMove)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rng.Float64() < that.tactics {
		if cell, ok := findWinningMove(board, mark); ok {
			return Decision{Cell: cell, Policy: PolicyHeuristic}, nil
		}

		if cell, ok := findWinningMove(board, entity.OppositeMark(mark)); ok {
			return Decision{Cell: cell, Policy: PolicyHeuristic}, nil
		}
	}

	if board[centerCell] == entity.EmptyCell {
		return Decision{Cell: centerCell, Policy: PolicyHeuristic}, nil
	}

	if cell, ok := that.pickRandomEmpty(board, cornerCells); ok {
		return Decision{Cell: cell, Policy: PolicyHeuristic}, nil
	}

	if cell, ok := that.pickRandomEmpty(board, edgeCells); ok {
		return Decision{Cell: cell, Policy: PolicyHeuristic}, nil
	}

	// corners and edges cover every cell but the center, so one of the
	// picks above must have hit
	return Decision{}, fmt.Errorf("heuristic: %w", apperror.ErrNoLegalMove)
}

func (that *HeuristicPolicy) pickRandomEmpty(board entity.Board, cells []int) (int, bool) {
	available := make([]int, 0, len(cells))
	for _, cell := range cells {
		if board[cell] == entity.EmptyCell {
			available = append(available, cell)
		}
	}

	if len(available) == 0 {
		return 0, false
	}

	return available[that.rng.Intn(len(available))], true
}
