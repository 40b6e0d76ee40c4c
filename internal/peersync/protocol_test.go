package peersync

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

var errChannelClosed = errors.New("channel closed")

type mockTransport struct {
	mock.Mock
}

func (that *mockTransport) Send(msg entity.Message) error {
	args := that.Called(msg)
	return args.Error(0)
}

type mockTarget struct {
	mock.Mock
}

func (that *mockTarget) ApplyRemoteMove(cell int, player entity.Mark) error {
	args := that.Called(cell, player)
	return args.Error(0)
}

func (that *mockTarget) ApplyRemoteRestart() {
	that.Called()
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestProtocol_Send(t *testing.T) {
	t.Run("SendMove emits one move message", func(t *testing.T) {
		// Given: a protocol over a mocked transport
		transport := &mockTransport{}
		transport.On("Send", entity.NewMoveMessage(0, entity.PlayerX)).Return(nil).Once()
		protocol := New(newTestLogger(), transport)

		// When: the host plays cell 0
		err := protocol.SendMove(0, entity.PlayerX)

		// Then: exactly one MOVE{0,X} is sent
		require.NoError(t, err)
		transport.AssertExpectations(t)
		transport.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("SendRestart emits a restart message", func(t *testing.T) {
		transport := &mockTransport{}
		transport.On("Send", entity.NewRestartMessage()).Return(nil).Once()
		protocol := New(newTestLogger(), transport)

		require.NoError(t, protocol.SendRestart())
		transport.AssertExpectations(t)
	})

	t.Run("Transport errors are wrapped", func(t *testing.T) {
		transport := &mockTransport{}
		transport.On("Send", mock.Anything).Return(errChannelClosed)
		protocol := New(newTestLogger(), transport)

		err := protocol.SendMove(3, entity.PlayerO)
		require.ErrorIs(t, err, errChannelClosed)
		assert.Contains(t, err.Error(), "failed to send move")
	})
}

func TestProtocol_Dispatch(t *testing.T) {
	t.Run("Move is applied without sending anything back", func(t *testing.T) {
		// Given: a guest-side protocol
		transport := &mockTransport{}
		target := &mockTarget{}
		target.On("ApplyRemoteMove", 0, entity.PlayerX).Return(nil).Once()
		protocol := New(newTestLogger(), transport)

		// When: the host's MOVE{0,X} arrives
		protocol.Dispatch(entity.NewMoveMessage(0, entity.PlayerX), target)

		// Then: it is applied and never echoed
		target.AssertExpectations(t)
		transport.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("Rejected move is dropped", func(t *testing.T) {
		transport := &mockTransport{}
		target := &mockTarget{}
		target.On("ApplyRemoteMove", 4, entity.PlayerO).Return(apperror.ErrCellOccupied).Once()
		protocol := New(newTestLogger(), transport)

		assert.NotPanics(t, func() {
			protocol.Dispatch(entity.NewMoveMessage(4, entity.PlayerO), target)
		})
		target.AssertExpectations(t)
		transport.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("Restart resets without echo", func(t *testing.T) {
		transport := &mockTransport{}
		target := &mockTarget{}
		target.On("ApplyRemoteRestart").Return().Once()
		protocol := New(newTestLogger(), transport)

		protocol.Dispatch(entity.NewRestartMessage(), target)

		target.AssertExpectations(t)
		transport.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("Unknown message type is ignored", func(t *testing.T) {
		transport := &mockTransport{}
		target := &mockTarget{}
		protocol := New(newTestLogger(), transport)

		protocol.Dispatch(entity.Message{Type: "chat"}, target)

		target.AssertNotCalled(t, "ApplyRemoteMove", mock.Anything, mock.Anything)
		target.AssertNotCalled(t, "ApplyRemoteRestart")
	})
}
