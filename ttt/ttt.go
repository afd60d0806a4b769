// Package ttt implements tic-tac-toe with an exhaustive minimax
// player.
package ttt

import (
	"errors"
	"fmt"
	"strings"
)

// Mark is the content of a board cell.
type Mark byte

// Cell values.
const (
	Empty Mark = '.'
	X     Mark = 'X'
	O     Mark = 'O'
)

// Board is a 3x3 tic-tac-toe position. X always moves first.
type Board [3][3]Mark

// Move is a cell coordinate.
type Move struct {
	Row, Col int
}

// NewBoard returns the empty starting position.
func NewBoard() (b Board) {
	for i := range b {
		for j := range b[i] {
			b[i][j] = Empty
		}
	}
	return
}

// Player returns the mark to move in this position.
func (b Board) Player() Mark {
	nX, nO := 0, 0
	for i := range b {
		for j := range b[i] {
			switch b[i][j] {
			case X:
				nX++
			case O:
				nO++
			}
		}
	}
	if nX > nO {
		return O
	}
	return X
}

// Moves returns all the legal moves in this position.
func (b Board) Moves() (moves []Move) {
	for i := range b {
		for j := range b[i] {
			if b[i][j] == Empty {
				moves = append(moves, Move{i, j})
			}
		}
	}
	return
}

// Apply returns the position after the current player moves. The cell
// must be empty.
func (b Board) Apply(m Move) (Board, error) {
	if m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		return b, fmt.Errorf("move %v outside the board", m)
	}
	if b[m.Row][m.Col] != Empty {
		return b, fmt.Errorf("cell %v is occupied", m)
	}
	b[m.Row][m.Col] = b.Player()
	return b, nil
}

// Winner returns the winning mark, Empty if there is none.
func (b Board) Winner() Mark {
	for i := 0; i < 3; i++ {
		if b[i][0] != Empty && b[i][0] == b[i][1] && b[i][0] == b[i][2] {
			return b[i][0]
		}
		if b[0][i] != Empty && b[0][i] == b[1][i] && b[0][i] == b[2][i] {
			return b[0][i]
		}
	}
	if b[1][1] != Empty &&
		((b[0][0] == b[1][1] && b[1][1] == b[2][2]) ||
			(b[0][2] == b[1][1] && b[1][1] == b[2][0])) {
		return b[1][1]
	}
	return Empty
}

// Terminal returns true if the game is over.
func (b Board) Terminal() bool {
	if b.Winner() != Empty {
		return true
	}
	return len(b.Moves()) == 0
}

// Utility returns +1 if X has won, -1 if O has won, 0 otherwise.
func (b Board) Utility() int {
	switch b.Winner() {
	case X:
		return 1
	case O:
		return -1
	}
	return 0
}

// score returns the game value with both players playing optimally.
func (b Board) score() int {
	if b.Terminal() {
		return b.Utility()
	}
	best := -2
	if b.Player() == O {
		best = 2
	}
	for _, m := range b.Moves() {
		nb, _ := b.Apply(m)
		s := nb.score()
		if b.Player() == X && s > best {
			best = s
		}
		if b.Player() == O && s < best {
			best = s
		}
	}
	return best
}

// BestMove returns an optimal move for the current player, false if
// the position is terminal.
func (b Board) BestMove() (Move, bool) {
	if b.Terminal() {
		return Move{}, false
	}
	var best Move
	bestScore := -2
	if b.Player() == O {
		bestScore = 2
	}
	for _, m := range b.Moves() {
		nb, _ := b.Apply(m)
		s := nb.score()
		if (b.Player() == X && s > bestScore) || (b.Player() == O && s < bestScore) {
			bestScore = s
			best = m
		}
	}
	return best, true
}

// Parse reads a board from a nine-character string of X, O and '.'
// (row by row, optional '/' or newline row separators).
func Parse(s string) (Board, error) {
	b := NewBoard()
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\n', ' ', '\t':
			return -1
		}
		return r
	}, s)
	if len(s) != 9 {
		return b, errors.New("board must have nine cells")
	}
	for i, c := range []byte(s) {
		switch Mark(c) {
		case X, O, Empty:
			b[i/3][i%3] = Mark(c)
		default:
			return b, fmt.Errorf("invalid cell %q", c)
		}
	}
	return b, nil
}

// String formats the board row by row.
func (b Board) String() string {
	rows := make([]string, 3)
	for i := range b {
		rows[i] = string([]byte{byte(b[i][0]), byte(b[i][1]), byte(b[i][2])})
	}
	return strings.Join(rows, "\n")
}
