package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

var (
	ErrQuit        = errors.New("quit")
	ErrInputClosed = errors.New("input closed")
)

type commands interface {
	CellActivated(cell int)
	RestartRequested()
}

// Input turns a reader into a stream of trimmed lines. One Input serves the
// whole program so a blocked read never outlives the session that wanted it.
type Input struct {
	lines chan string
}

func NewInput(r io.Reader) *Input {
	input := &Input{lines: make(chan string)}

	go func() {
		defer close(input.lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			input.lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	return input
}

func (that *Input) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-that.lines:
		if !ok {
			return "", ErrInputClosed
		}

		return line, nil
	}
}

// ReadCommands feeds 1-9 and r to sink until q is typed or ctx is done.
// Both end the session normally and return nil.
func (that *Input) ReadCommands(ctx context.Context, sink commands) error {
	for {
		line, err := that.next(ctx)
		if errors.Is(err, ErrInputClosed) {
			return err
		}

		if err != nil {
			return nil
		}

		switch line {
		case "q":
			return nil
		case "r":
			sink.RestartRequested()
		case "":
		default:
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > 9 {
				continue
			}

			sink.CellActivated(n - 1)
		}
	}
}

// Choice is what the menu resolved to. Token is set only when joining.
type Choice struct {
	Mode     entity.GameMode
	Identity entity.Identity
	Token    string
}

const menuText = `
Tic-Tac-Toe
  1) play the computer
  2) two players, one terminal
  3) host an online game
  4) join an online game
  q) quit
> `

// ReadMenu prompts on out until a valid choice is made. q returns ErrQuit.
func (that *Input) ReadMenu(ctx context.Context, out io.Writer) (Choice, error) {
	for {
		_, _ = io.WriteString(out, menuText)

		line, err := that.next(ctx)
		if err != nil {
			return Choice{}, err
		}

		switch line {
		case "1":
			return Choice{Mode: entity.ModeComputer}, nil
		case "2":
			return Choice{Mode: entity.ModeLocal}, nil
		case "3":
			return Choice{Mode: entity.ModeOnline, Identity: entity.IdentityHost}, nil
		case "4":
			_, _ = io.WriteString(out, "join token: ")

			token, err := that.next(ctx)
			if err != nil {
				return Choice{}, err
			}

			if token == "" {
				continue
			}

			return Choice{Mode: entity.ModeOnline, Identity: entity.IdentityGuest, Token: token}, nil
		case "q":
			return Choice{}, ErrQuit
		default:
			_, _ = fmt.Fprintf(out, "unknown option %q\n", line)
		}
	}
}
