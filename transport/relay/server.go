package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type roomStore interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

// Server pairs two peers per room and forwards frames between them.
type Server struct {
	logger *slog.Logger
	rooms  roomStore

	upgrader websocket.Upgrader

	pairsMutex sync.Mutex
	pairs      map[string]*pair
}

func New(logger *slog.Logger, rooms roomStore) *Server {
	return &Server{
		logger: logger.With("component", "relay"),
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		pairs: make(map[string]*pair),
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", that.handleConnect)

	return mux
}

// Start - serves the relay on port until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down relay", "error", err)
		}

		that.closeAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start relay: %w", err)
	}

	return nil
}

// closeAll - hijacked connections are not closed by Shutdown.
func (that *Server) closeAll() {
	that.pairsMutex.Lock()
	defer that.pairsMutex.Unlock()

	for id, p := range that.pairs {
		p.closeAll()
		delete(that.pairs, id)
	}
}
