package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_Create(t *testing.T) {
	// Given: a new game
	game := (&Game{}).Create("123")

	// Then: the game state should correspond to the expected initial state
	require.Equal(t, "123", game.ID)
	require.Equal(t, Board{}, game.Board)
	require.Equal(t, PlayerX, game.PlayerTurn)
	require.Empty(t, game.Winner)
	require.Equal(t, StatusWaiting, game.Status)
}

func TestParseDifficulty(t *testing.T) {
	t.Run("Accepts known tiers", func(t *testing.T) {
		for _, raw := range []string{"easy", "medium", "hard"} {
			difficulty, err := ParseDifficulty(raw)
			require.NoError(t, err)
			assert.Equal(t, Difficulty(raw), difficulty)
		}
	})

	t.Run("Rejects unknown tiers", func(t *testing.T) {
		_, err := ParseDifficulty("nightmare")
		require.ErrorIs(t, err, ErrUnknownDifficulty)
	})
}

func TestPlayer_IsBot(t *testing.T) {
	bot := NewBotPlayer("123", PlayerO)
	assert.True(t, bot.IsBot())
	assert.Equal(t, PlayerO, bot.Mark)
	assert.Equal(t, "123", bot.GameID)

	human := &Player{ID: "player-1"}
	assert.False(t, human.IsBot())
}

func TestGame_BotPlayer(t *testing.T) {
	game := (&Game{}).Create("123")
	game.Players = []*Player{
		{ID: "player-1", Mark: PlayerX},
		NewBotPlayer("123", PlayerO),
	}

	bot := game.BotPlayer()
	require.NotNil(t, bot)
	assert.Equal(t, PlayerO, bot.Mark)

	game.Players = game.Players[:1]
	assert.Nil(t, game.BotPlayer())
}

func TestOppositeMark(t *testing.T) {
	assert.Equal(t, PlayerO, OppositeMark(PlayerX))
	assert.Equal(t, PlayerX, OppositeMark(PlayerO))
}
