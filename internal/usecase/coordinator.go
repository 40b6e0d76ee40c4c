package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/peersync"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/tictactoe"
)

const eventQueueSize = 16

var ErrNoPeer = errors.New("online session requires a peer")

// Presenter is the rendering surface a session reports to.
type Presenter interface {
	Render(board entity.Board)
	SetStatusText(text string)
	ShowEndOfGame(outcome entity.Outcome, perspective entity.Perspective)
	ShowModal(title, message, emoji string)
}

type botService interface {
	ChooseMove(board entity.Board, self, opponent entity.Mark) int
}

type peer interface {
	SendMove(cell int, player entity.Mark) error
	SendRestart() error
	Dispatch(msg entity.Message, target peersync.Target)
}

type Config struct {
	Mode     entity.GameMode
	Identity entity.Identity

	// ThinkDelay is the pause before the computer answers a move.
	ThinkDelay time.Duration
}

// Coordinator owns one game session. Every mutation of the session happens on
// the goroutine running Run; the exported posting methods are safe to call from anywhere.
type Coordinator struct {
	logger    *slog.Logger
	presenter Presenter
	bot       botService
	peer      peer

	thinkDelay time.Duration

	session        *entity.Session
	waitingForPeer bool
	generation     uint64
	timer          *time.Timer

	events    chan event
	done      chan struct{}
	closeOnce sync.Once
}

func NewCoordinator(logger *slog.Logger, presenter Presenter, bot botService, peer peer, conf Config) (*Coordinator, error) {
	if _, err := entity.ParseGameMode(string(conf.Mode)); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if conf.Mode == entity.ModeOnline {
		if peer == nil {
			return nil, ErrNoPeer
		}

		if _, err := entity.ParseIdentity(string(conf.Identity)); err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
	} else {
		conf.Identity = ""
	}

	return &Coordinator{
		logger:    logger.With("component", "coordinator", "mode", conf.Mode),
		presenter: presenter,
		bot:       bot,
		peer:      peer,

		thinkDelay: conf.ThinkDelay,

		session:        entity.NewSession(conf.Mode, conf.Identity),
		waitingForPeer: conf.Mode == entity.ModeOnline,

		events: make(chan event, eventQueueSize),
		done:   make(chan struct{}),
	}, nil
}

// Session - returns a copy of the current session state.
func (that *Coordinator) Session() entity.Session {
	return *that.session
}

// PlayLocal places the current player's mark at cell on behalf of the person at this terminal.
func (that *Coordinator) PlayLocal(cell int) error {
	if that.session.IsEnded() {
		return apperror.ErrGameFinished
	}

	if err := that.checkPermission(); err != nil {
		return err
	}

	mover := that.session.Turn
	if err := that.place(cell, mover); err != nil {
		return err
	}

	if that.session.Mode == entity.ModeOnline {
		if err := that.peer.SendMove(cell, mover); err != nil {
			that.logger.Error("failed to mirror move", "cell", cell, "error", err)
		}
	}

	that.evaluate(mover)

	return nil
}

// ApplyRemoteMove applies a move the other peer made. The turn gate is skipped
// because the peer is authoritative for its own moves; the rules are not.
func (that *Coordinator) ApplyRemoteMove(cell int, player entity.Mark) error {
	if that.session.Mode != entity.ModeOnline {
		return apperror.ErrNotOnline
	}

	if that.session.IsEnded() {
		return apperror.ErrGameFinished
	}

	if err := that.place(cell, player); err != nil {
		return err
	}

	that.evaluate(player)

	return nil
}

// Restart starts a new round. Online, the peer is told before the local reset.
func (that *Coordinator) Restart() error {
	if that.session.Mode == entity.ModeOnline {
		if that.waitingForPeer {
			return apperror.ErrPeerNotConnected
		}

		if err := that.peer.SendRestart(); err != nil {
			that.logger.Error("failed to mirror restart", "error", err)
		}
	}

	that.resetSession()
	that.refresh()

	return nil
}

// ApplyRemoteRestart resets the session because the other peer restarted. Nothing is sent back.
func (that *Coordinator) ApplyRemoteRestart() {
	if that.session.Mode != entity.ModeOnline {
		that.logger.Warn("ignored remote restart", "error", apperror.ErrNotOnline)
		return
	}

	that.resetSession()
	that.refresh()
	that.presenter.ShowModal("Game restarted", "Opponent restarted the game!", "🔄")
}

func (that *Coordinator) checkPermission() error {
	switch that.session.Mode {
	case entity.ModeComputer:
		if that.session.Turn != entity.HumanMark {
			return apperror.ErrNotYourTurn
		}
	case entity.ModeOnline:
		if that.waitingForPeer {
			return apperror.ErrPeerNotConnected
		}

		if that.session.Turn != that.session.Identity.Mark() {
			return apperror.ErrNotYourTurn
		}
	case entity.ModeLocal:
	}

	return nil
}

// place - the only path through which the session board changes.
func (that *Coordinator) place(cell int, player entity.Mark) error {
	board, err := tictactoe.ApplyMove(that.session.Board, cell, player)
	if err != nil {
		return fmt.Errorf("failed to place mark: %w", err)
	}

	that.session.Board = board
	that.session.Moves++
	that.session.State = entity.StateEvaluating

	return nil
}

// evaluate - runs right after a placement, before the turn changes.
func (that *Coordinator) evaluate(mover entity.Mark) {
	outcome := tictactoe.CheckOutcome(that.session.Board)
	that.session.Outcome = outcome

	if outcome.IsFinished() {
		that.session.State = entity.StateEnded

		if outcome.Kind == entity.OutcomeWin && outcome.Winner != mover {
			that.logger.Error("winner is not the last mover", "winner", outcome.Winner, "mover", mover)
		}

		that.presenter.Render(that.session.Board)
		that.presenter.ShowEndOfGame(outcome, perspectiveOf(that.session, outcome))

		return
	}

	that.session.Turn = tictactoe.NextMark(mover)
	that.session.State = entity.StateAwaitingMove
	that.refresh()

	if that.session.Mode == entity.ModeComputer && that.session.Turn == entity.ComputerMark {
		that.scheduleComputer()
	}
}

func (that *Coordinator) scheduleComputer() {
	if that.timer != nil {
		that.timer.Stop()
	}

	generation := that.generation
	that.timer = time.AfterFunc(that.thinkDelay, func() {
		that.post(event{kind: eventComputerTurn, generation: generation})
	})
}

// playComputer - makes the computer's move unless the round it was scheduled for is gone.
func (that *Coordinator) playComputer(generation uint64) {
	if generation != that.generation || !that.session.IsAwaitingMove() || that.session.Turn != entity.ComputerMark {
		that.logger.Debug("skipped stale computer turn", "generation", generation)
		return
	}

	cell := that.bot.ChooseMove(that.session.Board, entity.ComputerMark, entity.HumanMark)
	if err := that.place(cell, entity.ComputerMark); err != nil {
		that.logger.Error("computer made an invalid move", "cell", cell, "error", err)
		return
	}

	that.evaluate(entity.ComputerMark)
}

func (that *Coordinator) peerOpened() {
	that.waitingForPeer = false
	that.resetSession()
	that.refresh()
}

func (that *Coordinator) peerClosed(cause error) error {
	that.presenter.ShowModal("Disconnected", "Opponent disconnected!", "💔")

	if cause == nil {
		return apperror.ErrPeerDisconnected
	}

	return fmt.Errorf("%w: %w", apperror.ErrPeerDisconnected, cause)
}

// resetSession - clears the board and invalidates any pending computer turn.
func (that *Coordinator) resetSession() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}

	that.generation++
	that.session.Reset()
}

func (that *Coordinator) refresh() {
	that.presenter.Render(that.session.Board)
	that.presenter.SetStatusText(that.statusText())
}

func (that *Coordinator) teardown() {
	that.closeOnce.Do(func() {
		if that.timer != nil {
			that.timer.Stop()
		}

		close(that.done)
	})
}

func perspectiveOf(session *entity.Session, outcome entity.Outcome) entity.Perspective {
	if outcome.Kind == entity.OutcomeDraw {
		return entity.PerspectiveTie
	}

	if session.Mode == entity.ModeLocal {
		return entity.PerspectiveWinner
	}

	if outcome.Winner == session.LocalMark() {
		return entity.PerspectiveWon
	}

	return entity.PerspectiveLost
}

// Run drains the session's event queue until ctx is done or the peer goes away.
// Leaving Run tears the session down, so pending computer turns never fire into it.
func (that *Coordinator) Run(ctx context.Context) error {
	defer that.teardown()

	that.refresh()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-that.events:
			if err := that.handle(ev); err != nil {
				return err
			}
		}
	}
}
