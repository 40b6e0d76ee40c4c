package entity

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

const (
	StateAwaitingMove State = "awaiting_move"
	StateEvaluating   State = "evaluating"
	StateEnded        State = "ended"
)

const (
	OutcomeOngoing OutcomeKind = "ongoing"
	OutcomeWin     OutcomeKind = "win"
	OutcomeDraw    OutcomeKind = "draw"
)

// WinCombos lists the winning lines in the order they are scanned: rows, columns, diagonals.
var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Mark is the content of a board cell.
type Mark string

// IsPlayer reports whether the mark belongs to one of the two players.
func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Line is a triple of board indices.
type Line [3]int

// Board is a 3x3 grid stored row-major.
type Board [9]Mark

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// State is the turn coordinator state of a session.
type State string

type OutcomeKind string

// Outcome is the result of evaluating a board. Line and Winner are set only for a win.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Line   Line        `json:"line,omitempty"`
	Winner Mark        `json:"winner,omitempty"`
}

func Ongoing() Outcome {
	return Outcome{Kind: OutcomeOngoing}
}

func Draw() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

func Win(line Line, winner Mark) Outcome {
	return Outcome{Kind: OutcomeWin, Line: line, Winner: winner}
}

func (that Outcome) IsFinished() bool {
	return that.Kind == OutcomeWin || that.Kind == OutcomeDraw
}

// Session aggregates everything one play-through needs.
type Session struct {
	Board    Board    `json:"board"`
	Turn     Mark     `json:"player_turn"`
	Mode     GameMode `json:"mode"`
	State    State    `json:"state"`
	Identity Identity `json:"identity,omitempty"`
	Outcome  Outcome  `json:"outcome"`
	Moves    int      `json:"moves"`
}

func NewSession(mode GameMode, identity Identity) *Session {
	session := &Session{
		Mode:     mode,
		Identity: identity,
	}
	session.Reset()

	return session
}

// Reset clears the board in place and hands the first move to X.
func (that *Session) Reset() {
	that.Board = Board{}
	that.Turn = PlayerX
	that.State = StateAwaitingMove
	that.Outcome = Ongoing()
	that.Moves = 0
}

func (that *Session) IsEnded() bool {
	return that.State == StateEnded
}

func (that *Session) IsAwaitingMove() bool {
	return that.State == StateAwaitingMove
}

// LocalMark is the mark controlled by the person at this terminal.
// It is empty in local mode where both marks are.
func (that *Session) LocalMark() Mark {
	switch that.Mode {
	case ModeComputer:
		return HumanMark
	case ModeOnline:
		return that.Identity.Mark()
	default:
		return EmptyCell
	}
}
