package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

const writeTimeout = 5 * time.Second

type seat struct {
	conn       *websocket.Conn
	writeMutex sync.Mutex
}

func (that *seat) send(data []byte) error {
	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return that.conn.WriteMessage(websocket.TextMessage, data)
}

func (that *seat) close() {
	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	_ = that.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = that.conn.Close()
}

// pair holds the two seats of a room. A reserved seat has a nil conn until the upgrade finishes.
type pair struct {
	seats map[entity.Identity]*seat
}

func newPair() *pair {
	return &pair{seats: make(map[entity.Identity]*seat, 2)}
}

func (that *pair) other(identity entity.Identity) *seat {
	if identity == entity.IdentityHost {
		return that.ready(entity.IdentityGuest)
	}

	return that.ready(entity.IdentityHost)
}

func (that *pair) ready(identity entity.Identity) *seat {
	s, ok := that.seats[identity]
	if !ok || s.conn == nil {
		return nil
	}

	return s
}

func (that *pair) isFull() bool {
	return that.ready(entity.IdentityHost) != nil && that.ready(entity.IdentityGuest) != nil
}

func (that *pair) closeAll() {
	for _, s := range that.seats {
		if s.conn != nil {
			s.close()
		}
	}
}
