package shared

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Message kinds, carried in the "action" field of every frame.
const (
	// server -> client
	ActionJoinGame     = "join_game"
	ActionPlayerJoined = "player_joined"
	ActionPlayersMoved = "players_moved"
	ActionPlayerLeft   = "player_left"
	ActionPong         = "pong"

	// client -> server
	ActionMove = "move"
	ActionStop = "stop"
	ActionPing = "ping"
)

// Player is a participant's authoritative state as asserted by the
// server. The client never mutates position or facing on its own.
type Player struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Avatar         string  `json:"avatar"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Facing         Facing  `json:"facing"`
	AnimationFrame int     `json:"animationFrame"`
	IsMoving       bool    `json:"isMoving,omitempty"`
}

// Avatar names a set of directional sprite-frame sequences. Frame
// sources are base64-encoded PNGs (optionally data-URL prefixed),
// contiguous from index zero.
type Avatar struct {
	Name   string              `json:"name"`
	Frames map[Facing][]string `json:"frames"`
}

// Message is the wire envelope for every protocol frame, inbound and
// outbound. Exactly the fields relevant to Action are populated; the
// rest stay at their zero value and are omitted on the wire.
type Message struct {
	Action string `json:"action"`

	// join_game (server reply)
	Success bool               `json:"success,omitempty"`
	Error   string             `json:"error,omitempty"`
	Players map[string]*Player `json:"players,omitempty"`
	Avatars map[string]*Avatar `json:"avatars,omitempty"`

	// join_game reply, player_left
	PlayerID string `json:"playerId,omitempty"`

	// player_joined
	Player *Player `json:"player,omitempty"`
	Avatar *Avatar `json:"avatar,omitempty"`

	// join_game (client request)
	Username string `json:"username,omitempty"`

	// move
	Direction Direction `json:"direction,omitempty"`

	// ping / pong: client send time in epoch nanoseconds, echoed back
	SentAt int64 `json:"sentAt,omitempty"`
}

func (m *Message) String() string {
	if m == nil {
		return "<nil message>"
	}
	return m.Action
}

func JoinMessage(username string) *Message {
	return &Message{Action: ActionJoinGame, Username: username}
}

func MoveMessage(d Direction) *Message {
	return &Message{Action: ActionMove, Direction: d}
}

func StopMessage() *Message {
	return &Message{Action: ActionStop}
}

func PingMessage(now time.Time) *Message {
	return &Message{Action: ActionPing, SentAt: now.UnixNano()}
}

// EncodeMessage serializes one message as a JSON text frame.
func EncodeMessage(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "encoding message")
	}
	return data, nil
}

// DecodeMessage parses one JSON text frame. The action field is
// required; payload shape is not otherwise validated here, handlers
// own their own merge rules.
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decoding message")
	}
	if m.Action == "" {
		return nil, errors.New("message missing action field")
	}
	return &m, nil
}
