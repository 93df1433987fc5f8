package board

import (
	"fmt"
	"strings"
)

// Side represents the owner of a piece or the player to move.
type Side uint8

const (
	White Side = iota
	Black
	NoSide Side = 2
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return s ^ 1
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "None"
	}
}

// ParseSide parses "white"/"black" (case-insensitive, "w"/"b" accepted).
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return NoSide, fmt.Errorf("unknown side %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*s = NoSide
		return nil
	}
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// PieceKind represents the type of a piece. Empty marks an unoccupied cell.
type PieceKind uint8

const (
	Empty PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"Empty", "Pawn", "Knight", "Bishop", "Rook", "Queen", "King"}

// String returns the kind name.
func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Char returns the placement character for the kind (lowercase).
func (k PieceKind) Char() byte {
	chars := []byte{'.', 'p', 'n', 'b', 'r', 'q', 'k'}
	if int(k) >= len(chars) {
		return '?'
	}
	return chars[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k PieceKind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PieceKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if strings.EqualFold(name, string(b)) {
			*k = PieceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", b)
}

// Value is the material value of each kind: pawn 1, knight 3, bishop 3,
// rook 5, queen 9. Kings and empty cells are uncounted.
var Value = [7]int{0, 1, 3, 3, 5, 9, 0}

// Piece is the occupant of a square. The square is part of the piece's
// identity, so moving a piece replaces it with a new value at the destination.
type Piece struct {
	Kind   PieceKind `json:"kind"`
	Side   Side      `json:"side"`
	Square Square    `json:"square"`
	// Origin is the square the piece was created on at setup. Pawns derive
	// their direction and double-step eligibility from it.
	Origin Square `json:"origin"`
}

// NewPiece creates a piece standing on its origin square.
func NewPiece(kind PieceKind, side Side, sq Square) Piece {
	if kind == Empty {
		return EmptyAt(sq)
	}
	return Piece{Kind: kind, Side: side, Square: sq, Origin: sq}
}

// EmptyAt returns the empty occupant of a square.
func EmptyAt(sq Square) Piece {
	return Piece{Kind: Empty, Side: NoSide, Square: sq, Origin: sq}
}

// IsEmpty reports whether the piece is the Empty occupant.
func (p Piece) IsEmpty() bool {
	return p.Kind == Empty
}

// IsEnemyOf reports whether p is a real piece owned by the opponent of side.
func (p Piece) IsEnemyOf(side Side) bool {
	return p.Kind != Empty && p.Side != side
}

// MovedTo returns the same piece relocated to sq, keeping kind, side and origin.
func (p Piece) MovedTo(sq Square) Piece {
	p.Square = sq
	return p
}

// Value returns the material value of the piece.
func (p Piece) Value() int {
	return Value[p.Kind]
}

// Char returns the placement character: uppercase for White, lowercase for
// Black, '.' for Empty.
func (p Piece) Char() byte {
	c := p.Kind.Char()
	if p.Kind != Empty && p.Side == White {
		c -= 'a' - 'A'
	}
	return c
}

// String returns e.g. "White Knight@g1".
func (p Piece) String() string {
	if p.Kind == Empty {
		return "Empty@" + p.Square.String()
	}
	return fmt.Sprintf("%s %s@%s", p.Side, p.Kind, p.Square)
}

// pieceFromChar converts a placement character to a kind and side.
func pieceFromChar(c byte) (PieceKind, Side, bool) {
	side := Black
	lower := c
	if c >= 'A' && c <= 'Z' {
		side = White
		lower = c + ('a' - 'A')
	}
	switch lower {
	case 'p':
		return Pawn, side, true
	case 'n':
		return Knight, side, true
	case 'b':
		return Bishop, side, true
	case 'r':
		return Rook, side, true
	case 'q':
		return Queen, side, true
	case 'k':
		return King, side, true
	default:
		return Empty, NoSide, false
	}
}
