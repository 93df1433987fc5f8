package board

import (
	"fmt"
	"slices"
)

// Move is an ordered pair of squares. Promotion and castling are not modeled.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// NewMove creates a move between two squares.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// OnBoard reports whether both squares of the move lie on the board.
func (m Move) OnBoard() bool {
	return m.From.OnBoard() && m.To.OnBoard()
}

// String returns the coordinate form of the move (e.g. "e2e4").
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// Compare orders moves by origin square, then destination square.
func (m Move) Compare(other Move) int {
	if c := m.From.Compare(other.From); c != 0 {
		return c
	}
	return m.To.Compare(other.To)
}

// ParseMove parses coordinate notation ("e2e4") into a Move.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return Move{}, fmt.Errorf("%w: invalid move %q", ErrOutOfBounds, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}

	return NewMove(from, to), nil
}

// SortSquares sorts squares in (rank, file) order and drops duplicates.
func SortSquares(squares []Square) []Square {
	slices.SortFunc(squares, Square.Compare)
	return slices.Compact(squares)
}

// SortMoves sorts moves in (from, to) order and drops duplicates.
func SortMoves(moves []Move) []Move {
	slices.SortFunc(moves, Move.Compare)
	return slices.Compact(moves)
}

// ContainsSquare reports whether sq is in squares.
func ContainsSquare(squares []Square, sq Square) bool {
	return slices.Contains(squares, sq)
}
