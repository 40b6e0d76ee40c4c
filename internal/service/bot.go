package service

import (
	"errors"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	ChooseMove(board entity.Board, self, opponent entity.Mark) int
}

type botService struct {
	intn func(n int) int
}

// NewBotService - returns the one-ply computer opponent.
// intn picks the random fallback cell and defaults to math/rand.
func NewBotService(intn func(n int) int) BotService {
	if intn == nil {
		intn = rand.Intn //nolint: gosec // it's ok
	}

	return &botService{
		intn: intn,
	}
}

// ChooseMove takes a win if one is available, blocks the opponent otherwise
// and falls back to a random empty cell. It must not be called on a full board.
func (that *botService) ChooseMove(board entity.Board, self, opponent entity.Mark) int {
	if cell, ok := completingCell(board, self); ok {
		return cell
	}

	if cell, ok := completingCell(board, opponent); ok {
		return cell
	}

	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		panic(ErrNoAvailableMoves)
	}

	return availableCells[that.intn(len(availableCells))]
}

// completingCell - finds the first line holding two marks of player and one empty cell.
func completingCell(board entity.Board, player entity.Mark) (int, bool) {
	for _, combo := range entity.WinCombos {
		marks, empty := 0, -1

		for _, cell := range combo {
			switch board[cell] {
			case player:
				marks++
			case entity.EmptyCell:
				empty = cell
			}
		}

		if marks == 2 && empty >= 0 {
			return empty, true
		}
	}

	return -1, false
}
