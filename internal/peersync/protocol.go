package peersync

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

type transport interface {
	Send(msg entity.Message) error
}

// Target is the session a received message is applied to.
type Target interface {
	ApplyRemoteMove(cell int, player entity.Mark) error
	ApplyRemoteRestart()
}

// Protocol mirrors locally originated moves and restarts to the other peer
// and applies what the other peer sends. It never echoes a received message.
type Protocol struct {
	logger    *slog.Logger
	transport transport
}

func New(logger *slog.Logger, transport transport) *Protocol {
	return &Protocol{
		logger:    logger.With("component", "peersync"),
		transport: transport,
	}
}

func (that *Protocol) SendMove(cell int, player entity.Mark) error {
	if err := that.transport.Send(entity.NewMoveMessage(cell, player)); err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}

	return nil
}

func (that *Protocol) SendRestart() error {
	if err := that.transport.Send(entity.NewRestartMessage()); err != nil {
		return fmt.Errorf("failed to send restart: %w", err)
	}

	return nil
}

// Dispatch applies msg to target. Unknown messages and rejected moves are dropped.
func (that *Protocol) Dispatch(msg entity.Message, target Target) {
	log := that.logger.With("method", "Dispatch", "type", msg.Type)

	switch msg.Type {
	case entity.MessageMove:
		if err := target.ApplyRemoteMove(msg.Index, msg.Player); err != nil {
			log.Warn("dropped remote move", "cell", msg.Index, "player", msg.Player, "error", err)
			return
		}

		log.Debug("applied remote move", "cell", msg.Index, "player", msg.Player)
	case entity.MessageRestart:
		target.ApplyRemoteRestart()

		log.Debug("applied remote restart")
	default:
		log.Warn("dropped message", "error", apperror.ErrUnknownMessage)
	}
}
