package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/peersync"
)

const writeTimeout = 5 * time.Second

var ErrClosed = errors.New("transport is closed")

// Transport is one peer's websocket to the relay.
// Handlers must be registered before Listen is called.
type Transport struct {
	logger *slog.Logger
	conn   *websocket.Conn

	writeMutex sync.Mutex

	onMessage func(entity.Message)
	onOpened  func()
	onClosed  func(error)

	closedOnce sync.Once
	closeOnce  sync.Once
	closed     chan struct{}
}

// Dial - joins room as identity on the relay at socketURL (ws:// or wss://).
func Dial(ctx context.Context, logger *slog.Logger, socketURL, roomID string, identity entity.Identity) (*Transport, error) {
	endpoint, err := url.Parse(socketURL)
	if err != nil {
		return nil, fmt.Errorf("invalid socket url: %w", err)
	}

	endpoint.Path = "/ws"
	endpoint.RawQuery = url.Values{"room": {roomID}, "role": {string(identity)}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return nil, apperror.ErrRoomNotFound
			case http.StatusConflict:
				return nil, apperror.ErrSeatTaken
			}
		}

		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}

	return &Transport{
		logger: logger.With("component", "peer", "room", roomID, "role", identity),
		conn:   conn,

		onMessage: func(entity.Message) {},
		onOpened:  func() {},
		onClosed:  func(error) {},

		closed: make(chan struct{}),
	}, nil
}

func (that *Transport) OnMessageReceived(handler func(entity.Message)) {
	that.onMessage = handler
}

func (that *Transport) OnOpened(handler func()) {
	that.onOpened = handler
}

// OnClosed - handler fires at most once, with nil when the other peer left cleanly.
func (that *Transport) OnClosed(handler func(error)) {
	that.onClosed = handler
}

func (that *Transport) Send(msg entity.Message) error {
	data, err := peersync.Encode(msg)
	if err != nil {
		return err
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	select {
	case <-that.closed:
		return ErrClosed
	default:
	}

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Listen reads frames until the relay reports the peer gone, the socket breaks or ctx is done.
func (that *Transport) Listen(ctx context.Context) error {
	log := that.logger.With("method", "Listen")

	stop := context.AfterFunc(ctx, that.Close)
	defer stop()

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || that.isClosed() {
				return nil
			}

			log.Info("connection lost", "error", err)
			that.fireClosed(err)

			return nil
		}

		if kind, ok := peersync.IsControl(data); ok {
			switch kind {
			case entity.MessagePeerJoined:
				log.Debug("peer joined")
				that.onOpened()
			case entity.MessagePeerLeft:
				log.Info("peer left")
				that.fireClosed(nil)
				that.Close()

				return nil
			}

			continue
		}

		msg, err := peersync.Decode(data)
		if err != nil {
			log.Warn("dropped frame", "error", err)
			continue
		}

		that.onMessage(msg)
	}
}

// Close - sends a close frame and releases the socket. Safe to call more than once.
func (that *Transport) Close() {
	that.closeOnce.Do(func() {
		that.writeMutex.Lock()
		defer that.writeMutex.Unlock()

		close(that.closed)

		deadline := time.Now().Add(time.Second)
		_ = that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = that.conn.Close()
	})
}

func (that *Transport) isClosed() bool {
	select {
	case <-that.closed:
		return true
	default:
		return false
	}
}

func (that *Transport) fireClosed(cause error) {
	that.closedOnce.Do(func() {
		that.onClosed(cause)
	})
}
