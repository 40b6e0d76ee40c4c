package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

// Presenter draws a session as plain text.
type Presenter struct {
	out  io.Writer
	mode entity.GameMode

	mu sync.Mutex
}

func New(out io.Writer, mode entity.GameMode) *Presenter {
	return &Presenter{
		out:  out,
		mode: mode,
	}
}

// Render prints the grid; empty cells show the key that plays them.
func (that *Presenter) Render(board entity.Board) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.print(formatBoard(board))
}

func (that *Presenter) SetStatusText(text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.print(text + "\n")
}

func (that *Presenter) ShowModal(title, message, emoji string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.print(formatModal(title, message, emoji))
}

func (that *Presenter) ShowEndOfGame(outcome entity.Outcome, perspective entity.Perspective) {
	title, message, emoji := endOfGameText(that.mode, outcome, perspective)

	that.mu.Lock()
	defer that.mu.Unlock()

	text := formatModal(title, message, emoji)
	if outcome.Kind == entity.OutcomeWin {
		text += fmt.Sprintf("   line %d-%d-%d\n", outcome.Line[0]+1, outcome.Line[1]+1, outcome.Line[2]+1)
	}

	that.print(text + "   press r to play again, q for the menu\n")
}

func (that *Presenter) print(text string) {
	_, _ = io.WriteString(that.out, text)
}

func endOfGameText(mode entity.GameMode, outcome entity.Outcome, perspective entity.Perspective) (string, string, string) {
	switch perspective {
	case entity.PerspectiveTie:
		if mode == entity.ModeLocal {
			return "It's a Tie! 🤝", "Well played both of you!", "🐱"
		}

		return "It's a Tie! 🤝", "Good game!", "🐱"
	case entity.PerspectiveWinner:
		emoji := "💎"
		if outcome.Winner == entity.PlayerX {
			emoji = "👑"
		}

		return fmt.Sprintf("Player %s Won! 🎉", outcome.Winner), "Awesome game!", emoji
	case entity.PerspectiveWon:
		return "Yay! You Won! 🎉", "You're amazing! Super star! ✨", "👑"
	default:
		return "Oh no! 🥺", "Keep trying! You can do it!", "🌈"
	}
}

func formatBoard(board entity.Board) string {
	var b strings.Builder

	b.WriteString("\n")
	for row := range 3 {
		if row > 0 {
			b.WriteString("   ---+---+---\n")
		}

		cells := make([]string, 3)
		for col := range 3 {
			index := row*3 + col
			cells[col] = string(board[index])
			if board[index] == entity.EmptyCell {
				cells[col] = strconv.Itoa(index + 1)
			}
		}

		b.WriteString("    " + strings.Join(cells, " | ") + "\n")
	}
	b.WriteString("\n")

	return b.String()
}

func formatModal(title, message, emoji string) string {
	return fmt.Sprintf("\n%s %s\n   %s\n", emoji, title, message)
}
