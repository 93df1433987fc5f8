// Package board implements the chess board as an 8x8 grid of pieces and the
// pseudo-legal movement rules of every piece kind.
package board

import "fmt"

// Size is the number of ranks and files on the board.
const Size = 8

// Square identifies a cell by rank (row) and file (column), both in [0,8).
type Square struct {
	Rank int `json:"rank"`
	File int `json:"file"`
}

// NewSquare creates a square from rank and file. It does not validate.
func NewSquare(rank, file int) Square {
	return Square{Rank: rank, File: file}
}

// OnBoard reports whether both coordinates are in [0,8).
func (sq Square) OnBoard() bool {
	return sq.Rank >= 0 && sq.Rank < Size && sq.File >= 0 && sq.File < Size
}

// IsOnBoard reports whether the square lies on the board.
func IsOnBoard(sq Square) bool {
	return sq.OnBoard()
}

// Offset returns the square shifted by the given rank and file deltas.
// The result may be off the board.
func (sq Square) Offset(dRank, dFile int) Square {
	return Square{Rank: sq.Rank + dRank, File: sq.File + dFile}
}

// Less orders squares lexicographically by (rank, file).
func (sq Square) Less(other Square) bool {
	if sq.Rank != other.Rank {
		return sq.Rank < other.Rank
	}
	return sq.File < other.File
}

// Compare returns -1, 0 or +1 following the (rank, file) order.
func (sq Square) Compare(other Square) int {
	switch {
	case sq.Less(other):
		return -1
	case other.Less(sq):
		return 1
	default:
		return 0
	}
}

// String returns the algebraic name of the square (file letter, rank digit),
// e.g. rank 1 file 4 is "e2".
func (sq Square) String() string {
	if !sq.OnBoard() {
		return fmt.Sprintf("(%d,%d)", sq.Rank, sq.File)
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File, '1'+sq.Rank)
}

// ParseSquare parses algebraic notation (e.g. "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: invalid square %q", ErrOutOfBounds, s)
	}

	sq := Square{
		Rank: int(s[1]) - '1',
		File: int(s[0]) - 'a',
	}
	if !sq.OnBoard() {
		return Square{}, fmt.Errorf("%w: invalid square %q", ErrOutOfBounds, s)
	}
	return sq, nil
}

// checkSquare returns a wrapped ErrOutOfBounds for off-board squares.
func checkSquare(sq Square) error {
	if !sq.OnBoard() {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, sq.Rank, sq.File)
	}
	return nil
}
