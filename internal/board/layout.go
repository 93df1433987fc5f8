package board

import "fmt"

// Layout selects one of the supported initial arrangements.
type Layout int

const (
	// LayoutMirrored puts White on ranks 0-1 and Black on ranks 6-7, kings on
	// file 3 and queens on file 4.
	LayoutMirrored Layout = 0
	// LayoutStandard puts Black on ranks 0-1 and White on ranks 6-7, queens
	// on file 3 and kings on file 4.
	LayoutStandard Layout = 1
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutMirrored:
		return "mirrored"
	case LayoutStandard:
		return "standard"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout validates an orientation value. Only 0 and 1 are supported.
func ParseLayout(v int) (Layout, error) {
	switch l := Layout(v); l {
	case LayoutMirrored, LayoutStandard:
		return l, nil
	default:
		return 0, fmt.Errorf("%w: board orientation %d (want 0 or 1)", ErrInvalidConfiguration, v)
	}
}

var (
	mirroredBackRank = [Size]PieceKind{Rook, Knight, Bishop, King, Queen, Bishop, Knight, Rook}
	standardBackRank = [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
)

// NewLayoutBoard builds the initial board for a layout.
func NewLayoutBoard(l Layout) (Board, error) {
	var (
		backRank    [Size]PieceKind
		bottom, top Side
	)
	switch l {
	case LayoutMirrored:
		backRank, bottom, top = mirroredBackRank, White, Black
	case LayoutStandard:
		backRank, bottom, top = standardBackRank, Black, White
	default:
		return Board{}, fmt.Errorf("%w: board orientation %d (want 0 or 1)", ErrInvalidConfiguration, int(l))
	}

	var b Board
	for file := 0; file < Size; file++ {
		b.cells[0][file] = NewPiece(backRank[file], bottom, NewSquare(0, file))
		b.cells[1][file] = NewPiece(Pawn, bottom, NewSquare(1, file))
		b.cells[6][file] = NewPiece(Pawn, top, NewSquare(6, file))
		b.cells[7][file] = NewPiece(backRank[file], top, NewSquare(7, file))
	}
	return b, nil
}
