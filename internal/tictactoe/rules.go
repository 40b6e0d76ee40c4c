package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

// ApplyMove returns a copy of board with player's mark at cell.
// The board passed in is never modified.
func ApplyMove(board entity.Board, cell int, player entity.Mark) (entity.Board, error) {
	if err := validateMove(board, cell, player); err != nil {
		return board, fmt.Errorf("invalid move: %w", err)
	}

	board[cell] = player

	return board, nil
}

// validateMove - checks if the move is valid.
func validateMove(board entity.Board, cell int, player entity.Mark) error {
	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !player.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, player)
	}

	if board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// CheckOutcome reports the first completed line in entity.WinCombos order,
// a draw for a full board, or an ongoing game.
func CheckOutcome(board entity.Board) entity.Outcome {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.Win(combo, a)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return entity.Ongoing()
	}

	return entity.Draw()
}

func NextMark(currentMark entity.Mark) entity.Mark {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
