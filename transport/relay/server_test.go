package relay

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/transport/peer"
)

const waitFor = 2 * time.Second

type memoryRooms struct {
	mu    sync.Mutex
	rooms map[string]entity.Room
}

func newMemoryRooms(ids ...string) *memoryRooms {
	store := &memoryRooms{rooms: make(map[string]entity.Room)}
	for _, id := range ids {
		store.rooms[id] = *entity.NewRoom(id, time.Now())
	}

	return store
}

func (that *memoryRooms) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = *room

	return nil
}

func (that *memoryRooms) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return &room, nil
}

func (that *memoryRooms) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

func (that *memoryRooms) status(id string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]

	return room.Status, ok
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func startRelay(t *testing.T, store *memoryRooms) string {
	t.Helper()

	server := httptest.NewServer(New(newTestLogger(), store).Handler())
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, base, room, role string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(base+"/ws?room="+room+"&role="+role, nil)
	if resp != nil && resp.Body != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}

	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}

	return conn, resp, err
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	return string(data)
}

func TestServer_Connect(t *testing.T) {
	t.Run("Unknown room is 404", func(t *testing.T) {
		base := startRelay(t, newMemoryRooms())

		_, resp, err := dial(t, base, "missing", "guest")

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Bad role is 400", func(t *testing.T) {
		base := startRelay(t, newMemoryRooms("r1"))

		_, resp, err := dial(t, base, "r1", "spectator")

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Taken seat is 409", func(t *testing.T) {
		base := startRelay(t, newMemoryRooms("r1"))

		_, _, err := dial(t, base, "r1", "host")
		require.NoError(t, err)

		_, resp, err := dial(t, base, "r1", "host")

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestServer_Pairing(t *testing.T) {
	t.Run("Both seats get peer:joined and frames pass verbatim", func(t *testing.T) {
		// Given: a waiting room and its host
		store := newMemoryRooms("r1")
		base := startRelay(t, store)

		host, _, err := dial(t, base, "r1", "host")
		require.NoError(t, err)

		// When: the guest joins
		guest, _, err := dial(t, base, "r1", "guest")
		require.NoError(t, err)

		// Then: both are told and the room is paired
		assert.JSONEq(t, `{"type":"peer:joined"}`, readText(t, host))
		assert.JSONEq(t, `{"type":"peer:joined"}`, readText(t, guest))
		require.Eventually(t, func() bool {
			status, _ := store.status("r1")
			return status == entity.RoomPaired
		}, waitFor, 10*time.Millisecond)

		// And: frames go both ways untouched
		move := `{"type":"move","index":0,"player":"X"}`
		require.NoError(t, host.WriteMessage(websocket.TextMessage, []byte(move)))
		assert.Equal(t, move, readText(t, guest))

		restart := `{"type":"restart"}`
		require.NoError(t, guest.WriteMessage(websocket.TextMessage, []byte(restart)))
		assert.Equal(t, restart, readText(t, host))
	})

	t.Run("Leaving closes the room for both", func(t *testing.T) {
		// Given: a paired room
		store := newMemoryRooms("r1")
		base := startRelay(t, store)

		host, _, err := dial(t, base, "r1", "host")
		require.NoError(t, err)
		guest, _, err := dial(t, base, "r1", "guest")
		require.NoError(t, err)
		readText(t, host)
		readText(t, guest)

		// When: the guest goes away
		require.NoError(t, guest.Close())

		// Then: the host hears peer:left, then its socket is closed
		assert.JSONEq(t, `{"type":"peer:left"}`, readText(t, host))
		_, _, err = host.ReadMessage()
		assert.Error(t, err)

		// And: the token is dead
		require.Eventually(t, func() bool {
			_, ok := store.status("r1")
			return !ok
		}, waitFor, 10*time.Millisecond)

		_, resp, err := dial(t, base, "r1", "guest")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_WithPeerTransport(t *testing.T) {
	// Given: a relay and two peer transports joined to the same room
	base := startRelay(t, newMemoryRooms("r1"))
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	host, err := peer.Dial(ctx, newTestLogger(), base, "r1", entity.IdentityHost)
	require.NoError(t, err)
	guest, err := peer.Dial(ctx, newTestLogger(), base, "r1", entity.IdentityGuest)
	require.NoError(t, err)

	received := make(chan entity.Message, 1)
	opened := make(chan struct{}, 2)
	hostClosed := make(chan error, 1)

	host.OnOpened(func() { opened <- struct{}{} })
	guest.OnOpened(func() { opened <- struct{}{} })
	guest.OnMessageReceived(func(msg entity.Message) { received <- msg })
	host.OnClosed(func(err error) { hostClosed <- err })

	go func() { _ = host.Listen(ctx) }()
	guestDone := make(chan error, 1)
	go func() { guestDone <- guest.Listen(ctx) }()

	<-opened
	<-opened

	// When: the host sends a move
	require.NoError(t, host.Send(entity.NewMoveMessage(4, entity.PlayerX)))

	// Then: the guest decodes it
	select {
	case msg := <-received:
		assert.Equal(t, entity.NewMoveMessage(4, entity.PlayerX), msg)
	case <-ctx.Done():
		t.Fatal("move never arrived")
	}

	// And: the guest leaving reaches the host as a clean close
	guest.Close()
	require.NoError(t, <-guestDone)

	select {
	case err = <-hostClosed:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("host never saw the guest leave")
	}
}
