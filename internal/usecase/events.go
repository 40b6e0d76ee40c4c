package usecase

import (
	"errors"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

type eventKind int

const (
	eventCellActivated eventKind = iota
	eventRestartRequested
	eventMessageReceived
	eventPeerOpened
	eventPeerClosed
	eventComputerTurn
)

type event struct {
	kind       eventKind
	cell       int
	msg        entity.Message
	err        error
	generation uint64
}

// CellActivated queues a local move on cell.
func (that *Coordinator) CellActivated(cell int) {
	that.post(event{kind: eventCellActivated, cell: cell})
}

func (that *Coordinator) RestartRequested() {
	that.post(event{kind: eventRestartRequested})
}

// MessageReceived queues a message from the other peer.
func (that *Coordinator) MessageReceived(msg entity.Message) {
	that.post(event{kind: eventMessageReceived, msg: msg})
}

func (that *Coordinator) PeerOpened() {
	that.post(event{kind: eventPeerOpened})
}

func (that *Coordinator) PeerClosed(cause error) {
	that.post(event{kind: eventPeerClosed, err: cause})
}

// post - blocks until the event is queued or the session is torn down.
func (that *Coordinator) post(ev event) {
	select {
	case that.events <- ev:
	case <-that.done:
	}
}

func (that *Coordinator) handle(ev event) error {
	log := that.logger.With("method", "handle")

	switch ev.kind {
	case eventCellActivated:
		if err := that.PlayLocal(ev.cell); err != nil {
			log.Debug("rejected local move", "cell", ev.cell, "error", err)
		}
	case eventRestartRequested:
		if err := that.Restart(); err != nil {
			log.Debug("rejected restart", "error", err)
		}
	case eventMessageReceived:
		if that.session.Mode != entity.ModeOnline || that.waitingForPeer {
			log.Warn("dropped message", "type", ev.msg.Type, "error", apperror.ErrPeerNotConnected)
			return nil
		}

		that.peer.Dispatch(ev.msg, that)
	case eventPeerOpened:
		that.peerOpened()
	case eventPeerClosed:
		return that.peerClosed(ev.err)
	case eventComputerTurn:
		that.playComputer(ev.generation)
	default:
		log.Error("unknown event", "kind", ev.kind)
	}

	return nil
}

// IsPeerGone reports whether Run ended because the other peer left.
func IsPeerGone(err error) bool {
	return errors.Is(err, apperror.ErrPeerDisconnected)
}
