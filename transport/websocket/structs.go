package websocket

import (
	"encoding/json"

	"github.com/gridmark/tictactoe-backend/internal/entity"
)

// Message is one client or server frame: an action name plus its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
	Error  string         `json:"error,omitempty"`
}

const (
	actionConnect  = "connect"
	actionNewGame  = "game:new"
	actionJoinGame = "game:join"
	actionGameTurn = "game:turn"
)
