package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

type mockRooms struct {
	mock.Mock
}

func (that *mockRooms) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	args := that.Called(ctx, room)
	return args.Error(0)
}

func (that *mockRooms) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)

	room, _ := args.Get(0).(*entity.Room)

	return room, args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestPing(t *testing.T) {
	rec := httptest.NewRecorder()

	NewRouter(newTestLogger(), &mockRooms{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRoomHandlers_CreateRoom(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	newHandlers := func(rooms *mockRooms) http.Handler {
		handlers := NewRoomHandlers(newTestLogger(), rooms)
		handlers.newID = func() string { return "0b5e" }
		handlers.now = func() time.Time { return created }

		mux := http.NewServeMux()
		mux.HandleFunc("POST /rooms", handlers.CreateRoom)

		return mux
	}

	t.Run("Stores a waiting room and returns its token", func(t *testing.T) {
		// Given: a store that accepts the room
		rooms := &mockRooms{}
		rooms.On("CreateOrUpdate", mock.Anything, entity.NewRoom("0b5e", created)).Return(nil).Once()

		// When: POST /rooms
		rec := httptest.NewRecorder()
		newHandlers(rooms).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))

		// Then: 201 with the id
		require.Equal(t, http.StatusCreated, rec.Code)

		var body entity.Room
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "0b5e", body.ID)
		assert.Equal(t, entity.RoomWaiting, body.Status)
		rooms.AssertExpectations(t)
	})

	t.Run("Storage failure is 500", func(t *testing.T) {
		rooms := &mockRooms{}
		rooms.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		rec := httptest.NewRecorder()
		newHandlers(rooms).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Default ids are uuids", func(t *testing.T) {
		rooms := &mockRooms{}
		rooms.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil)

		rec := httptest.NewRecorder()
		NewRouter(newTestLogger(), rooms).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))

		var body entity.Room
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Len(t, body.ID, 36)
	})
}

func TestRoomHandlers_GetRoom(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		rooms := &mockRooms{}
		rooms.On("GetByID", mock.Anything, "abc").Return(entity.NewRoom("abc", time.Now().UTC()), nil)

		rec := httptest.NewRecorder()
		NewRouter(newTestLogger(), rooms).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/abc", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"abc"`)
	})

	t.Run("Missing", func(t *testing.T) {
		rooms := &mockRooms{}
		rooms.On("GetByID", mock.Anything, "nope").Return(nil, apperror.ErrRoomNotFound)

		rec := httptest.NewRecorder()
		NewRouter(newTestLogger(), rooms).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
