package relay

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/peersync"
)

// handleConnect - seats the caller in ?room= as ?role= and relays its frames until it leaves.
func (that *Server) handleConnect(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	roomID := req.URL.Query().Get("room")

	identity, err := entity.ParseIdentity(req.URL.Query().Get("role"))
	if err != nil || roomID == "" {
		http.Error(writer, "room and role are required", http.StatusBadRequest)
		return
	}

	log := that.logger.With("method", "handleConnect", "room", roomID, "role", identity)

	room, err := that.rooms.GetByID(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(writer, err.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get room", "error", err)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	current, p, err := that.reserve(roomID, identity)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusConflict)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		that.release(roomID, p, identity)
		return
	}

	defer that.handleDisconnect(ctx, roomID, identity, current)

	full, ok := that.attach(roomID, p, current, conn)
	if !ok {
		log.Warn("room closed during upgrade")
		return
	}

	log.Info("peer connected")

	if full {
		that.handlePaired(ctx, room, p)
	}

	that.forward(roomID, identity, current)
}

func (that *Server) reserve(roomID string, identity entity.Identity) (*seat, *pair, error) {
	that.pairsMutex.Lock()
	defer that.pairsMutex.Unlock()

	p, ok := that.pairs[roomID]
	if !ok {
		p = newPair()
		that.pairs[roomID] = p
	}

	if _, taken := p.seats[identity]; taken {
		return nil, nil, apperror.ErrSeatTaken
	}

	s := &seat{}
	p.seats[identity] = s

	return s, p, nil
}

func (that *Server) release(roomID string, p *pair, identity entity.Identity) {
	that.pairsMutex.Lock()
	defer that.pairsMutex.Unlock()

	delete(p.seats, identity)

	if len(p.seats) == 0 && that.pairs[roomID] == p {
		delete(that.pairs, roomID)
	}
}

// attach - fills a reserved seat with its connection and reports whether both seats are now live.
func (that *Server) attach(roomID string, p *pair, s *seat, conn *websocket.Conn) (bool, bool) {
	that.pairsMutex.Lock()
	defer that.pairsMutex.Unlock()

	s.conn = conn

	if that.pairs[roomID] != p {
		return false, false
	}

	return p.isFull(), true
}

func (that *Server) handlePaired(ctx context.Context, room *entity.Room, p *pair) {
	log := that.logger.With("method", "handlePaired", "room", room.ID)

	that.pairsMutex.Lock()
	seats := []*seat{p.ready(entity.IdentityHost), p.ready(entity.IdentityGuest)}
	that.pairsMutex.Unlock()

	joined := peersync.EncodeControl(entity.MessagePeerJoined)
	for _, s := range seats {
		if s == nil {
			continue
		}

		if err := s.send(joined); err != nil {
			log.Warn("failed to send peer:joined", "error", err)
		}
	}

	room.Status = entity.RoomPaired
	if err := that.rooms.CreateOrUpdate(ctx, room); err != nil {
		log.Error("failed to mark room paired", "error", err)
	}

	log.Info("room paired")
}

// forward - copies text frames verbatim to the other seat; they are dropped while it is empty.
func (that *Server) forward(roomID string, identity entity.Identity, s *seat) {
	log := that.logger.With("method", "forward", "room", roomID, "role", identity)

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("connection lost", "error", err)
			}

			return
		}

		if kind != websocket.TextMessage {
			continue
		}

		that.pairsMutex.Lock()
		var other *seat
		if p, ok := that.pairs[roomID]; ok {
			other = p.other(identity)
		}
		that.pairsMutex.Unlock()

		if other == nil {
			log.Debug("dropped frame, other seat is empty")
			continue
		}

		if err = other.send(data); err != nil {
			log.Warn("failed to forward frame", "error", err)
		}
	}
}

// handleDisconnect - the first seat to leave closes the room for both.
func (that *Server) handleDisconnect(ctx context.Context, roomID string, identity entity.Identity, s *seat) {
	log := that.logger.With("method", "handleDisconnect", "room", roomID, "role", identity)

	that.pairsMutex.Lock()
	p, ok := that.pairs[roomID]
	if !ok || p.seats[identity] != s {
		that.pairsMutex.Unlock()
		_ = s.conn.Close()
		return
	}

	other := p.other(identity)
	delete(that.pairs, roomID)
	that.pairsMutex.Unlock()

	_ = s.conn.Close()

	if other != nil {
		if err := other.send(peersync.EncodeControl(entity.MessagePeerLeft)); err != nil {
			log.Warn("failed to send peer:left", "error", err)
		}

		other.close()
	}

	if err := that.rooms.DeleteByID(ctx, roomID); err != nil {
		log.Error("failed to delete room", "error", err)
	}

	log.Info("peer disconnected, room closed")
}
