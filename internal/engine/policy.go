package engine

import (
	"context"

	"github.com/gridmark/tictactoe-backend/internal/entity"
)

const (
	PolicyHeuristic = "heuristic"
	PolicyMinimax   = "minimax"
	PolicyRemote    = "remote"
)

// Decision is a move picked by a policy, with the policy that actually
// produced it. Fallback reports that a remote delegation was absorbed by a
// local policy.
type Decision struct {
	Cell     int
	Policy   string
	Fallback bool
}

// Policy selects a move for the given mark on a non-terminal board.
type Policy interface {
	Decide(ctx context.Context, board entity.Board, mark string) (Decision, error)
}
