package entity

const (
	MessageMove    MessageType = "move"
	MessageRestart MessageType = "restart"
)

// Control messages are produced by the relay, never by a peer.
const (
	MessagePeerJoined MessageType = "peer:joined"
	MessagePeerLeft   MessageType = "peer:left"
)

type MessageType string

// Message is what two peers exchange. Index and Player are meaningful only for moves.
type Message struct {
	Type   MessageType
	Index  int
	Player Mark
}

func NewMoveMessage(index int, player Mark) Message {
	return Message{Type: MessageMove, Index: index, Player: player}
}

func NewRestartMessage() Message {
	return Message{Type: MessageRestart}
}
