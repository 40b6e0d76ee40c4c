package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

type RoomHandlers struct {
	logger *slog.Logger
	rooms  roomStore

	newID func() string
	now   func() time.Time
}

func NewRoomHandlers(logger *slog.Logger, rooms roomStore) *RoomHandlers {
	return &RoomHandlers{
		logger: logger.With("component", "rest"),
		rooms:  rooms,

		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateRoom - opens a waiting room; its id is the join token the host shares.
func (that *RoomHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateRoom")

	room := entity.NewRoom(that.newID(), that.now())
	if err := that.rooms.CreateOrUpdate(r.Context(), room); err != nil {
		log.Error("failed to save room", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Info("room created", "room", room.ID)

	writeJSON(w, http.StatusCreated, room)
}

func (that *RoomHandlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := that.rooms.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		that.logger.Error("failed to get room", "method", "GetRoom", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
