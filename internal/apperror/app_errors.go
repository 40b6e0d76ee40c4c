package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrInvalidMark      = errors.New("invalid player mark")
	ErrNotOnline        = errors.New("session is not in online mode")
	ErrPeerNotConnected = errors.New("opponent has not joined yet")
	ErrPeerDisconnected = errors.New("opponent disconnected")
	ErrRoomNotFound     = errors.New("room not found")
	ErrSeatTaken        = errors.New("room seat is already taken")
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message type")
)
