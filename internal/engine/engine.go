// Package engine is the move decision core: given a board and a difficulty
// tier it produces the bot's next move. Easy and medium tiers use a rule
// heuristic, hard uses exhaustive search, and when remote credentials are
// configured every tier delegates to an external reasoning service with a
// local fallback.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gridmark/tictactoe-backend/internal/apperror"
	"github.com/gridmark/tictactoe-backend/internal/entity"
)

// Metadata describes how a decision was made. It is purely observational
// and never affects behavior.
type Metadata struct {
	Policy   string        `json:"policy"`
	Fallback bool          `json:"fallback"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Engine dispatches a decision to the policy mapped to the requested tier.
// The tier-to-policy mapping is fixed at construction. The engine itself is
// stateless between calls; only the credential pool behind a remote policy
// carries process-lifetime state.
type Engine struct {
	logger   *slog.Logger
	policies map[entity.Difficulty]Policy
}

// DefaultEasyTactics is the probability that the easy tier applies its
// win/block steps instead of skipping straight to positional play.
const DefaultEasyTactics = 0.5

// New - builds an engine with local policies for every tier. rng is the
// random source for the heuristic tiers; each tier gets its own stream
// derived from it. easyTactics is the easy tier's win/block chance.
func New(logger *slog.Logger, rng *rand.Rand, easyTactics float64) *Engine {
	return &Engine{
		logger: logger.With("component", "engine"),
		policies: map[entity.Difficulty]Policy{
			entity.DifficultyEasy:   NewHeuristicPolicy(rand.New(rand.NewSource(rng.Int63())), easyTactics),
			entity.DifficultyMedium: NewHeuristicPolicy(rand.New(rand.NewSource(rng.Int63())), 1.0),
			entity.DifficultyHard:   NewMinimaxPolicy(),
		},
	}
}

// NewWithRemote - builds an engine whose tiers delegate to the external
// reasoning service, each falling back to the medium heuristic when the
// attempt budget is exhausted.
func NewWithRemote(logger *slog.Logger, rng *rand.Rand, pool *CredentialPool, opts RemoteOptions) *Engine {
	policies := make(map[entity.Difficulty]Policy, 3)
	for _, tier := range []entity.Difficulty{entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard} {
		fallback := NewHeuristicPolicy(rand.New(rand.NewSource(rng.Int63())), 1.0)
		policies[tier] = NewRemotePolicy(logger, pool, opts, tier, fallback)
	}

	return &Engine{
		logger:   logger.With("component", "engine"),
		policies: policies,
	}
}

// Decide - picks a move for the mark on the given board. It validates the
// board, dispatches to the tier's policy, and re-checks that the returned
// move is legal before handing it back.
func (that *Engine) Decide(ctx context.Context, board entity.Board, mark string, difficulty entity.Difficulty) (int, Metadata, error) {
	started := time.Now()

	if err := ValidateBoard(board); err != nil {
		return 0, Metadata{}, err
	}

	if Evaluate(board).IsTerminal() {
		return 0, Metadata{}, apperror.ErrNoLegalMove
	}

	policy, ok := that.policies[difficulty]
	if !ok {
		return 0, Metadata{}, fmt.Errorf("%w: %q", entity.ErrUnknownDifficulty, difficulty)
	}

	decision, err := policy.Decide(ctx, board, mark)
	if err != nil {
		return 0, Metadata{}, fmt.Errorf("decide %s: %w", difficulty, err)
	}

	if _, err = Apply(board, decision.Cell, mark); err != nil {
		return 0, Metadata{}, fmt.Errorf("policy %s returned cell %d: %w", decision.Policy, decision.Cell, err)
	}

	meta := Metadata{
		Policy:   decision.Policy,
		Fallback: decision.Fallback,
		Elapsed:  time.Since(started),
	}

	return decision.Cell, meta, nil
}
