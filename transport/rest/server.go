package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type roomStore interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
}

// NewRouter - builds the REST routes of the relay.
func NewRouter(logger *slog.Logger, rooms roomStore) http.Handler {
	ping := NewPingHandler()
	roomHandlers := NewRoomHandlers(logger, rooms)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", ping.PingHandler)
	mux.HandleFunc("POST /rooms", roomHandlers.CreateRoom)
	mux.HandleFunc("GET /rooms/{id}", roomHandlers.GetRoom)

	return mux
}

// Start - serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
