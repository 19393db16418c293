package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gridmark/tictactoe-backend/internal/entity"
)

var errNoChoices = errors.New("chat completion returned no choices")

// RemoteOptions configures the external reasoning service. Read once at
// startup; not expected to change during the process's lifetime.
type RemoteOptions struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
}

// RemotePolicy asks an external reasoning service for a move. Each attempt
// uses the next healthy key from the credential pool; a timeout, non-2xx
// response, unparseable reply, or illegal suggested move counts as a failure
// for that key and the next key is tried. When the whole attempt budget is
// spent, the policy falls back to a local policy and flags the decision, so
// the caller never sees an error just because the service is down.
type RemotePolicy struct {
	logger   *slog.Logger
	pool     *CredentialPool
	opts     RemoteOptions
	tier     entity.Difficulty
	fallback Policy
}

func NewRemotePolicy(logger *slog.Logger, pool *CredentialPool, opts RemoteOptions, tier entity.Difficulty, fallback Policy) *RemotePolicy {
	return &RemotePolicy{
		logger:   logger.With("component", "remote-policy", "tier", string(tier)),
		pool:     pool,
		opts:     opts,
		tier:     tier,
		fallback: fallback,
	}
}

func (that *RemotePolicy) Decide(ctx context.Context, board entity.Board, mark string) (Decision, error) {
	prompt := buildPrompt(board, mark, that.tier)

	var chosen int

	err := retry.Do(
		func() error {
			key, err := that.pool.Next()
			if err != nil {
				return retry.Unrecoverable(err)
			}

			cell, err := that.requestMove(ctx, key, prompt)
			if err != nil {
				// an abandoned call is neither a success nor a failure
				if ctx.Err() != nil {
					return retry.Unrecoverable(ctx.Err())
				}

				that.pool.MarkFailure(key)
				that.logger.Warn("remote attempt failed", "error", err)
				return err
			}

			if _, err = Apply(board, cell, mark); err != nil {
				that.pool.MarkFailure(key)
				that.logger.Warn("remote suggested an illegal move", "cell", cell)
				return err
			}

			that.pool.MarkSuccess(key)
			chosen = cell
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(that.opts.MaxAttempts)),
		retry.Delay(10*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)

	if err == nil {
		return Decision{Cell: chosen, Policy: PolicyRemote}, nil
	}

	if ctx.Err() != nil {
		return Decision{}, fmt.Errorf("remote delegation abandoned: %w", ctx.Err())
	}

	that.logger.Warn("remote delegation exhausted, falling back", "error", err)

	decision, err := that.fallback.Decide(ctx, board, mark)
	if err != nil {
		return Decision{}, fmt.Errorf("fallback after remote exhaustion: %w", err)
	}

	decision.Fallback = true

	return decision, nil
}

// requestMove - issues one chat completion with the given key and parses the
// suggested cell. The attempt is bounded by its own timeout.
func (that *RemotePolicy) requestMove(ctx context.Context, key, prompt string) (int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, that.opts.Timeout)
	defer cancel()

	conf := openai.DefaultConfig(key)
	if that.opts.BaseURL != "" {
		conf.BaseURL = that.opts.BaseURL
	}
	client := openai.NewClientWithConfig(conf)

	resp, err := client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
		Model: that.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   10,
	})
	if err != nil {
		return 0, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, errNoChoices
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	cell, err := strconv.Atoi(content)
	if err != nil {
		return 0, fmt.Errorf("unparseable move %q: %w", content, err)
	}

	return cell, nil
}

var tierInstructions = map[entity.Difficulty]string{
	entity.DifficultyEasy:   "Play casually. Prioritize random moves over strategy. Only block obvious wins occasionally.",
	entity.DifficultyMedium: "Play strategically. Block opponent wins and take your own winning moves, but don't plan ahead more than one move.",
	entity.DifficultyHard:   "Play optimally using perfect strategy. Never lose. Always think several moves ahead.",
}

// buildPrompt - renders the board and tier instruction for the reasoning
// service. The model must answer with a single cell index.
func buildPrompt(board entity.Board, mark string, tier entity.Difficulty) string {
	available := make([]string, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			available = append(available, strconv.Itoa(i))
		}
	}

	grid := make([]string, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			grid[i] = "_"
		} else {
			grid[i] = cell
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert tic-tac-toe player. You play '%s'.\n\n", mark)
	fmt.Fprintf(&sb, "CURRENT BOARD (row-major, cells 0-8):\n")
	fmt.Fprintf(&sb, "%s | %s | %s\n%s | %s | %s\n%s | %s | %s\n\n",
		grid[0], grid[1], grid[2], grid[3], grid[4], grid[5], grid[6], grid[7], grid[8])
	fmt.Fprintf(&sb, "AVAILABLE POSITIONS: %s\n", strings.Join(available, ", "))
	fmt.Fprintf(&sb, "You can only choose from these empty positions.\n\n")
	fmt.Fprintf(&sb, "Winning lines: rows [0,1,2] [3,4,5] [6,7,8], columns [0,3,6] [1,4,7] [2,5,8], diagonals [0,4,8] [2,4,6].\n")
	fmt.Fprintf(&sb, "Take a winning move if you have one, otherwise block the opponent '%s' if they threaten to win.\n\n", entity.OppositeMark(mark))
	fmt.Fprintf(&sb, "INSTRUCTIONS: %s\n\n", tierInstructions[tier])
	fmt.Fprintf(&sb, "Respond with ONLY ONE NUMBER (0-8) - no text, no explanation.\n\nYour move:")

	return sb.String()
}
