package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmark/tictactoe-backend/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completionStub serves the chat completions endpoint; behavior is keyed by
// the bearer token of the request.
func completionStub(t *testing.T, perKey map[string]func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		respond, ok := perKey[key]
		if !ok {
			t.Errorf("unexpected credential %q", key)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		respond(w)
	}))
}

func respondWithMove(cell int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"%d"},"finish_reason":"stop"}]}`, cell)
	}
}

func respondWithStatus(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
	}
}

func newRemotePolicy(pool *CredentialPool, baseURL string) *RemotePolicy {
	fallback := NewHeuristicPolicy(rand.New(rand.NewSource(1)), 1.0)

	return NewRemotePolicy(discardLogger(), pool, RemoteOptions{
		BaseURL:     baseURL + "/v1",
		Model:       "test-model",
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
	}, entity.DifficultyMedium, fallback)
}

func TestRemotePolicy_RotatesToHealthyKey(t *testing.T) {
	// Given: the first two keys always fail, the third returns a legal move
	srv := completionStub(t, map[string]func(http.ResponseWriter){
		"key-a": respondWithStatus(http.StatusInternalServerError),
		"key-b": respondWithStatus(http.StatusServiceUnavailable),
		"key-c": respondWithMove(4),
	})
	defer srv.Close()

	pool := NewCredentialPool([]string{"key-a", "key-b", "key-c"}, 3)
	policy := newRemotePolicy(pool, srv.URL)

	board := entity.Board{"X", "", "", "", "", "", "", "", ""}

	// When: the policy decides
	decision, err := policy.Decide(context.Background(), board, entity.PlayerO)

	// Then: the third key's move is used without fallback, and the failing
	// keys were each penalized exactly once
	require.NoError(t, err)
	assert.Equal(t, 4, decision.Cell)
	assert.Equal(t, PolicyRemote, decision.Policy)
	assert.False(t, decision.Fallback)

	assert.Equal(t, 1, pool.Failures("key-a"))
	assert.Equal(t, 1, pool.Failures("key-b"))
	assert.Zero(t, pool.Failures("key-c"))
}

func TestRemotePolicy_FallsBackWhenAllKeysFail(t *testing.T) {
	srv := completionStub(t, map[string]func(http.ResponseWriter){
		"key-a": respondWithStatus(http.StatusInternalServerError),
		"key-b": respondWithStatus(http.StatusInternalServerError),
		"key-c": respondWithStatus(http.StatusInternalServerError),
	})
	defer srv.Close()

	pool := NewCredentialPool([]string{"key-a", "key-b", "key-c"}, 3)
	policy := newRemotePolicy(pool, srv.URL)

	board := entity.Board{"X", "", "", "", "", "", "", "", ""}

	decision, err := policy.Decide(context.Background(), board, entity.PlayerO)

	// Then: a legal move is still produced, picked by the medium heuristic
	require.NoError(t, err)
	assert.True(t, decision.Fallback)
	assert.Equal(t, PolicyHeuristic, decision.Policy)
	assert.Contains(t, LegalMoves(board), decision.Cell)
}

func TestRemotePolicy_IllegalSuggestionCountsAsFailure(t *testing.T) {
	// Given: the remote service insists on an occupied cell
	srv := completionStub(t, map[string]func(http.ResponseWriter){
		"key-a": respondWithMove(0),
	})
	defer srv.Close()

	pool := NewCredentialPool([]string{"key-a"}, 5)
	policy := newRemotePolicy(pool, srv.URL)

	board := entity.Board{"X", "", "", "", "", "", "", "", ""}

	decision, err := policy.Decide(context.Background(), board, entity.PlayerO)

	require.NoError(t, err)
	assert.True(t, decision.Fallback)
	assert.Equal(t, 3, pool.Failures("key-a"), "one failure per attempt")
}

func TestRemotePolicy_MalformedReplyFallsBack(t *testing.T) {
	srv := completionStub(t, map[string]func(http.ResponseWriter){
		"key-a": func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"the center, obviously"},"finish_reason":"stop"}]}`)
		},
	})
	defer srv.Close()

	pool := NewCredentialPool([]string{"key-a"}, 5)
	policy := newRemotePolicy(pool, srv.URL)

	board := entity.Board{"X", "", "", "", "", "", "", "", ""}

	decision, err := policy.Decide(context.Background(), board, entity.PlayerO)

	require.NoError(t, err)
	assert.True(t, decision.Fallback)
	assert.Contains(t, LegalMoves(board), decision.Cell)
}

func TestRemotePolicy_AbandonedCallLeavesCountersAlone(t *testing.T) {
	srv := completionStub(t, map[string]func(http.ResponseWriter){
		"key-a": respondWithMove(4),
	})
	defer srv.Close()

	pool := NewCredentialPool([]string{"key-a"}, 3)
	policy := newRemotePolicy(pool, srv.URL)

	// Given: the surrounding request is already cancelled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board := entity.Board{"X", "", "", "", "", "", "", "", ""}

	_, err := policy.Decide(ctx, board, entity.PlayerO)

	// Then: the abandoned call is neither a success nor a failure
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, pool.Failures("key-a"))
}
