package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// checker caches the check situation of one side so that a batch of moves
// can be tested without recomputing attackers for each of them.
type checker struct {
	s         *State
	side      board.Side
	attackers []board.Square
	blocks    []board.Square
}

func newChecker(s *State, side board.Side) *checker {
	c := &checker{s: s, side: side}
	if king, ok := s.Board.KingSquare(side); ok {
		c.attackers = attackersOf(&s.Board, king, side.Other())
		if len(c.attackers) == 1 {
			p, _ := s.Board.At(c.attackers[0])
			c.blocks = blockingLine(p, king)
		}
	}
	return c
}

func (c *checker) check(m board.Move) error {
	s := c.s
	b := &s.Board

	p, _ := b.At(m.From)
	if p.IsEmpty() || p.Side != c.side {
		return illegal(s, m, c.side, fmt.Sprintf("no %s piece on %s", c.side, m.From))
	}
	if !board.ContainsSquare(board.Moves(p, b), m.To) {
		return illegal(s, m, c.side, fmt.Sprintf("%s cannot move to %s", p.Kind, m.To))
	}

	target, _ := b.At(m.To)
	if target.Kind == board.King {
		return illegal(s, m, c.side, "kings cannot be captured")
	}

	// A king destination must be safe both before the move and after it:
	// a pawn stops attacking the square ahead once the king stands on it,
	// and a defender only reaches the square once it holds an enemy piece.
	if p.Kind == board.King {
		after := *b
		relocate(&after, p, m.To)
		if attacked(b, m.To, c.side.Other()) || attacked(&after, m.To, c.side.Other()) {
			return illegal(s, m, c.side, fmt.Sprintf("king would be attacked on %s", m.To))
		}
		return nil
	}

	switch {
	case len(c.attackers) > 1:
		return &MoveError{
			Err:    fmt.Errorf("%w: %w", ErrIllegalMove, ErrDoubleCheck),
			Move:   m,
			Player: c.side,
			Ply:    s.Ply,
			Reason: "only the king may move",
		}
	case len(c.attackers) == 1 && !board.ContainsSquare(c.blocks, m.To):
		return illegal(s, m, c.side, "move does not resolve check")
	}
	return nil
}

// CheckMove returns nil when player may play m in s, and otherwise the
// reason it may not: a wrapped board.ErrOutOfBounds for off-board squares or
// a *MoveError wrapping ErrIllegalMove.
//
// Moves by a non-king piece are not tested for exposing their own king to a
// new attack; pins are not modeled.
func CheckMove(s *State, m board.Move, player board.Side) error {
	if !m.OnBoard() {
		return fmt.Errorf("%w: move %s", board.ErrOutOfBounds, m)
	}
	if player != s.ToMove {
		return illegal(s, m, player, fmt.Sprintf("it is %s's turn", s.ToMove))
	}
	return newChecker(s, player).check(m)
}

// IsLegal reports whether player may play m in s.
func IsLegal(s *State, m board.Move, player board.Side) bool {
	return CheckMove(s, m, player) == nil
}

// LegalMoves returns the legal moves of the side to move, sorted by
// (from, to).
func LegalMoves(s *State) []board.Move {
	c := newChecker(s, s.ToMove)
	var moves []board.Move
	for _, m := range pseudoLegal(&s.Board, s.ToMove) {
		if c.check(m) == nil {
			moves = append(moves, m)
		}
	}
	return moves
}

// LegalMovesFrom returns the legal moves of the piece on from.
func LegalMovesFrom(s *State, from board.Square) ([]board.Move, error) {
	p, err := s.Board.At(from)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() || p.Side != s.ToMove {
		return nil, nil
	}

	c := newChecker(s, s.ToMove)
	var moves []board.Move
	for _, to := range board.Moves(p, &s.Board) {
		m := board.NewMove(from, to)
		if c.check(m) == nil {
			moves = append(moves, m)
		}
	}
	return moves, nil
}

// HasLegalMove reports whether the side to move has any legal move.
func HasLegalMove(s *State) bool {
	c := newChecker(s, s.ToMove)
	for _, m := range pseudoLegal(&s.Board, s.ToMove) {
		if c.check(m) == nil {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal
// move.
func IsCheckmate(s *State) bool {
	return IsKingInCheck(s, s.ToMove) && !HasLegalMove(s)
}

// IsStalemate reports whether the side to move is not in check and has no
// legal move.
func IsStalemate(s *State) bool {
	return !IsKingInCheck(s, s.ToMove) && !HasLegalMove(s)
}

// relocate moves p to sq on b, clearing its current square.
func relocate(b *board.Board, p board.Piece, sq board.Square) {
	b.Clear(p.Square)
	b.Place(sq, p.MovedTo(sq))
}
