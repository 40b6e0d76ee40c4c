package peersync

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

// frame is the JSON shape on the wire: {"type":"move","index":4,"player":"X"} or {"type":"restart"}.
type frame struct {
	Type   entity.MessageType `json:"type"`
	Index  *int               `json:"index,omitempty"`
	Player entity.Mark        `json:"player,omitempty"`
}

func Encode(msg entity.Message) ([]byte, error) {
	out := frame{Type: msg.Type}

	switch msg.Type {
	case entity.MessageMove:
		index := msg.Index
		out.Index = &index
		out.Player = msg.Player
	case entity.MessageRestart:
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMessage, msg.Type)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// Decode parses one frame. Broken JSON or a move without index/player is
// ErrMalformedMessage; a type other than move/restart is ErrUnknownMessage.
func Decode(data []byte) (entity.Message, error) {
	var in frame
	if err := json.Unmarshal(data, &in); err != nil {
		return entity.Message{}, fmt.Errorf("%w: %v", apperror.ErrMalformedMessage, err)
	}

	switch in.Type {
	case entity.MessageMove:
		if in.Index == nil || in.Player == entity.EmptyCell {
			return entity.Message{}, fmt.Errorf("%w: move without index or player", apperror.ErrMalformedMessage)
		}

		return entity.NewMoveMessage(*in.Index, in.Player), nil
	case entity.MessageRestart:
		return entity.NewRestartMessage(), nil
	default:
		return entity.Message{}, fmt.Errorf("%w: %q", apperror.ErrUnknownMessage, in.Type)
	}
}

// EncodeControl builds a relay control frame such as {"type":"peer:joined"}.
func EncodeControl(kind entity.MessageType) []byte {
	data, _ := json.Marshal(frame{Type: kind})
	return data
}

// IsControl reports whether data is a relay control frame and which one.
func IsControl(data []byte) (entity.MessageType, bool) {
	var in frame
	if err := json.Unmarshal(data, &in); err != nil {
		return "", false
	}

	switch in.Type {
	case entity.MessagePeerJoined, entity.MessagePeerLeft:
		return in.Type, true
	default:
		return "", false
	}
}
