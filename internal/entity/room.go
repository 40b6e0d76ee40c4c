package entity

import "time"

const (
	RoomWaiting = "waiting"
	RoomPaired  = "paired"
)

// Room is the relay record behind a join token.
type Room struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoom(id string, now time.Time) *Room {
	return &Room{
		ID:        id,
		Status:    RoomWaiting,
		CreatedAt: now,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == RoomWaiting
}
