package board

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePlacement parses a FEN-style piece placement field: eight rows
// separated by '/', the first row being rank 7. Digits count empty squares,
// uppercase letters are White, lowercase Black. Every piece's origin is the
// square it is placed on.
func ParsePlacement(placement string) (Board, error) {
	rows := strings.Split(placement, "/")
	if len(rows) != Size {
		return Board{}, fmt.Errorf("%w: need 8 rows, got %d", ErrInvalidPlacement, len(rows))
	}

	var b Board
	for i, row := range rows {
		rank := Size - 1 - i
		file := 0

		for _, c := range row {
			if file >= Size {
				return Board{}, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidPlacement, rank)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			kind, side, ok := pieceFromChar(byte(c))
			if !ok {
				return Board{}, fmt.Errorf("%w: invalid piece character %q", ErrInvalidPlacement, c)
			}
			sq := NewSquare(rank, file)
			b.cells[rank][file] = NewPiece(kind, side, sq)
			file++
		}

		if file != Size {
			return Board{}, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidPlacement, rank, file)
		}
	}

	return b, nil
}

// MustParsePlacement is ParsePlacement for fixed, known-good strings.
func MustParsePlacement(placement string) Board {
	b, err := ParsePlacement(placement)
	if err != nil {
		panic(err)
	}
	return b
}

// Placement returns the FEN-style placement field for the board.
func (b *Board) Placement() string {
	var sb strings.Builder

	for rank := Size - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < Size; file++ {
			p := b.cells[rank][file]
			if p.Kind == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	return sb.String()
}
