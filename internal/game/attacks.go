package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// PseudoLegalMoves returns every pseudo-legal move of side, sorted by
// (from, to).
func PseudoLegalMoves(s *State, side board.Side) []board.Move {
	return pseudoLegal(&s.Board, side)
}

func pseudoLegal(b *board.Board, side board.Side) []board.Move {
	var moves []board.Move
	for _, from := range b.PiecesOf(side) {
		p, _ := b.At(from)
		for _, to := range board.Moves(p, b) {
			moves = append(moves, board.NewMove(from, to))
		}
	}
	return moves
}

// IsSquareAttacked reports whether any pseudo-legal move of by lands on sq.
// Pawns attack only through their actual moves: an empty diagonal is not
// attacked, the square in front of a pawn is.
func IsSquareAttacked(s *State, sq board.Square, by board.Side) bool {
	return attacked(&s.Board, sq, by)
}

func attacked(b *board.Board, sq board.Square, by board.Side) bool {
	return len(attackersOf(b, sq, by)) > 0
}

// attackersOf returns the squares of by's pieces that have sq among their
// pseudo-legal destinations.
func attackersOf(b *board.Board, sq board.Square, by board.Side) []board.Square {
	var from []board.Square
	for _, origin := range b.PiecesOf(by) {
		p, _ := b.At(origin)
		if board.ContainsSquare(board.Moves(p, b), sq) {
			from = append(from, origin)
		}
	}
	return from
}

// IsKingInCheck reports whether side's king is attacked. A side without a
// king is never in check.
func IsKingInCheck(s *State, side board.Side) bool {
	king, ok := s.Board.KingSquare(side)
	if !ok {
		return false
	}
	return attacked(&s.Board, king, side.Other())
}

// Attackers returns the squares of the pieces attacking side's king.
func Attackers(s *State, side board.Side) ([]board.Square, error) {
	king, ok := s.Board.KingSquare(side)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoKing, side)
	}
	return attackersOf(&s.Board, king, side.Other()), nil
}

// AttackOrigin returns the square of the single piece checking side's king.
// The second result is false when the king is not in check. Two or more
// checking pieces yield ErrDoubleCheck.
func AttackOrigin(s *State, side board.Side) (board.Square, bool, error) {
	from, err := Attackers(s, side)
	if err != nil {
		return board.Square{}, false, err
	}
	switch len(from) {
	case 0:
		return board.Square{}, false, nil
	case 1:
		return from[0], true, nil
	default:
		return board.Square{}, false, fmt.Errorf("%w: %s king attacked from %v", ErrDoubleCheck, side, from)
	}
}

// BlockingSquares returns the squares where a move by side would end a
// single check: the checker's own square, plus for sliding checkers the
// squares between it and the king. It returns nil when side is not in check
// and ErrDoubleCheck when the check cannot be blocked.
func BlockingSquares(s *State, side board.Side) ([]board.Square, error) {
	origin, ok, err := AttackOrigin(s, side)
	if err != nil || !ok {
		return nil, err
	}
	king, _ := s.Board.KingSquare(side)
	checker, _ := s.Board.At(origin)
	return blockingLine(checker, king), nil
}

func blockingLine(checker board.Piece, king board.Square) []board.Square {
	switch checker.Kind {
	case board.Pawn, board.Knight, board.King:
		return []board.Square{checker.Square}
	}

	dRank := sign(king.Rank - checker.Square.Rank)
	dFile := sign(king.File - checker.Square.File)

	var line []board.Square
	for sq := checker.Square; sq != king && sq.OnBoard(); sq = sq.Offset(dRank, dFile) {
		line = append(line, sq)
	}
	return board.SortSquares(line)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
