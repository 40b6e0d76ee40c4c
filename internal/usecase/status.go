package usecase

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

func (that *Coordinator) statusText() string {
	session := that.session

	switch session.Mode {
	case entity.ModeLocal:
		return fmt.Sprintf("Player %s's Turn! %s", session.Turn, heart(session.Turn))
	case entity.ModeComputer:
		if session.Turn == entity.HumanMark {
			return "Your Turn! 💖"
		}

		return "Computer is thinking... 🤔"
	case entity.ModeOnline:
		return that.onlineStatusText()
	default:
		return ""
	}
}

func (that *Coordinator) onlineStatusText() string {
	session := that.session

	if that.waitingForPeer {
		if session.Identity == entity.IdentityHost {
			return "Waiting for opponent to join... 🔗"
		}

		return "Connecting..."
	}

	if session.Identity == entity.IdentityGuest && session.Moves == 0 {
		return "Waiting for host..."
	}

	if session.Turn == session.LocalMark() {
		return "Your Turn! 💖"
	}

	return "Opponent's Turn... 🕒"
}

func heart(mark entity.Mark) string {
	if mark == entity.PlayerX {
		return "💖"
	}

	return "💙"
}
