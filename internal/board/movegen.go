package board

// Ray and offset tables for the piece kinds, as (rank, file) deltas.
var (
	orthogonalDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalDirs   = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightOffsets  = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets    = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// Moves returns the pseudo-legal destinations of p on b, sorted by
// (rank, file). Whether the move exposes the mover's own king is ignored.
// The Empty piece has no moves.
func Moves(p Piece, b *Board) []Square {
	if p.Kind == Empty || !p.Square.OnBoard() {
		return nil
	}

	var dests []Square
	switch p.Kind {
	case Pawn:
		dests = pawnMoves(p, b)
	case Knight:
		dests = offsetMoves(p, b, knightOffsets[:])
	case Bishop:
		dests = slidingMoves(p, b, diagonalDirs[:])
	case Rook:
		dests = slidingMoves(p, b, orthogonalDirs[:])
	case Queen:
		dests = slidingMoves(p, b, orthogonalDirs[:])
		dests = append(dests, slidingMoves(p, b, diagonalDirs[:])...)
	case King:
		dests = offsetMoves(p, b, kingOffsets[:])
	}

	return SortSquares(dests)
}

// PawnDirection returns +1 when the pawn advances toward increasing rank and
// -1 otherwise. It is derived from the pawn's origin rank: rank 1 advances
// up, rank 6 advances down, other origins advance away from their half.
// A pawn set up on rank 2 or 3 therefore advances up like a rank 1 pawn
// instead of down the board.
func PawnDirection(p Piece) int {
	switch {
	case p.Origin.Rank == 1:
		return 1
	case p.Origin.Rank == Size-2:
		return -1
	case p.Origin.Rank < Size/2:
		return 1
	default:
		return -1
	}
}

// pawnMoves generates single and double advances onto empty squares and
// diagonal captures onto enemy-occupied squares.
func pawnMoves(p Piece, b *Board) []Square {
	var dests []Square
	dir := PawnDirection(p)

	one := p.Square.Offset(dir, 0)
	if b.IsEmpty(one) {
		dests = append(dests, one)

		onStartRank := p.Origin.Rank == 1 || p.Origin.Rank == Size-2
		if onStartRank && p.Square == p.Origin {
			two := p.Square.Offset(2*dir, 0)
			if b.IsEmpty(two) {
				dests = append(dests, two)
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		diag := p.Square.Offset(dir, df)
		if !diag.OnBoard() {
			continue
		}
		if b.piece(diag).IsEnemyOf(p.Side) {
			dests = append(dests, diag)
		}
	}

	return dests
}

// slidingMoves walks each ray until the edge, stopping after an enemy piece
// and before an allied one.
func slidingMoves(p Piece, b *Board, dirs [][2]int) []Square {
	var dests []Square
	for _, dir := range dirs {
		sq := p.Square.Offset(dir[0], dir[1])
		for sq.OnBoard() {
			target := b.piece(sq)
			if target.Kind != Empty {
				if target.Side != p.Side {
					dests = append(dests, sq)
				}
				break
			}
			dests = append(dests, sq)
			sq = sq.Offset(dir[0], dir[1])
		}
	}
	return dests
}

// offsetMoves checks each fixed offset for an on-board square not held by an
// allied piece.
func offsetMoves(p Piece, b *Board, offsets [][2]int) []Square {
	var dests []Square
	for _, off := range offsets {
		sq := p.Square.Offset(off[0], off[1])
		if !sq.OnBoard() {
			continue
		}
		target := b.piece(sq)
		if target.Kind == Empty || target.Side != p.Side {
			dests = append(dests, sq)
		}
	}
	return dests
}

// MovesAt returns the pseudo-legal destinations of the occupant of sq.
func (b *Board) MovesAt(sq Square) ([]Square, error) {
	p, err := b.At(sq)
	if err != nil {
		return nil, err
	}
	return Moves(p, b), nil
}
