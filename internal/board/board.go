package board

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Board is an 8x8 grid holding exactly one occupant per square. It is a
// plain value: copying a Board copies every cell.
//
// Empty cells are stored as the zero Piece so that the zero Board is an empty
// board and two boards compare equal with == when they hold the same pieces.
type Board struct {
	cells [Size][Size]Piece
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// piece returns the occupant of an on-board square without validation.
func (b *Board) piece(sq Square) Piece {
	p := b.cells[sq.Rank][sq.File]
	if p.Kind == Empty {
		return EmptyAt(sq)
	}
	return p
}

// At returns the occupant of sq. Off-board squares yield ErrOutOfBounds.
func (b *Board) At(sq Square) (Piece, error) {
	if err := checkSquare(sq); err != nil {
		return Piece{}, err
	}
	return b.piece(sq), nil
}

// IsEmpty reports whether sq is on the board and unoccupied.
func (b *Board) IsEmpty(sq Square) bool {
	return sq.OnBoard() && b.cells[sq.Rank][sq.File].Kind == Empty
}

// Place puts p on sq. The stored piece takes sq as its square. Placing onto
// a square held by the same side fails with ErrSameSide; placing Empty is
// the same as Clear.
func (b *Board) Place(sq Square, p Piece) error {
	if err := checkSquare(sq); err != nil {
		return err
	}
	if p.Kind == Empty {
		b.cells[sq.Rank][sq.File] = Piece{}
		return nil
	}

	current := b.cells[sq.Rank][sq.File]
	if current.Kind != Empty && current.Side == p.Side {
		return fmt.Errorf("%w: %s holds %s", ErrSameSide, sq, current)
	}

	p.Square = sq
	b.cells[sq.Rank][sq.File] = p
	return nil
}

// Clear empties sq.
func (b *Board) Clear(sq Square) error {
	if err := checkSquare(sq); err != nil {
		return err
	}
	b.cells[sq.Rank][sq.File] = Piece{}
	return nil
}

// PiecesOf returns the squares occupied by side in (rank, file) order.
func (b *Board) PiecesOf(side Side) []Square {
	var squares []Square
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			p := b.cells[rank][file]
			if p.Kind != Empty && p.Side == side {
				squares = append(squares, NewSquare(rank, file))
			}
		}
	}
	return squares
}

// EmptySquares returns the unoccupied squares in (rank, file) order.
func (b *Board) EmptySquares() []Square {
	var squares []Square
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			if b.cells[rank][file].Kind == Empty {
				squares = append(squares, NewSquare(rank, file))
			}
		}
	}
	return squares
}

// KingSquare locates the king of side.
func (b *Board) KingSquare(side Side) (Square, bool) {
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			p := b.cells[rank][file]
			if p.Kind == King && p.Side == side {
				return NewSquare(rank, file), true
			}
		}
	}
	return Square{}, false
}

// Count returns how many pieces of the given kind side has on the board.
func (b *Board) Count(side Side, kind PieceKind) int {
	n := 0
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			p := b.cells[rank][file]
			if p.Kind == kind && p.Side == side {
				n++
			}
		}
	}
	return n
}

// Validate checks that each side has exactly one king.
func (b *Board) Validate() error {
	for _, side := range []Side{White, Black} {
		if n := b.Count(side, King); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidPlacement, side, n)
		}
	}
	return nil
}

// String returns an ASCII diagram, highest rank first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := Size - 1; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < Size; file++ {
			sb.WriteByte(b.piece(NewSquare(rank, file)).Char())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}

// MarshalJSON encodes the board as the list of its occupied cells.
func (b Board) MarshalJSON() ([]byte, error) {
	pieces := make([]Piece, 0, 32)
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			if p := b.cells[rank][file]; p.Kind != Empty {
				pieces = append(pieces, p)
			}
		}
	}
	return json.Marshal(pieces)
}

// UnmarshalJSON decodes a list of occupied cells.
func (b *Board) UnmarshalJSON(data []byte) error {
	var pieces []Piece
	if err := json.Unmarshal(data, &pieces); err != nil {
		return err
	}

	var decoded Board
	for _, p := range pieces {
		if p.Kind == Empty {
			continue
		}
		if p.Side != White && p.Side != Black {
			return fmt.Errorf("%w: piece %s has no side", ErrInvalidPlacement, p.Kind)
		}
		if err := decoded.Place(p.Square, p); err != nil {
			return err
		}
	}
	*b = decoded
	return nil
}
