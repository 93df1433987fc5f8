package game

import (
	"errors"
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// Apply plays m for player and returns the resulting state together with
// whether that state ends the game. The input state is never modified; on
// error the returned state is the zero value.
func Apply(s State, m board.Move, player board.Side) (State, bool, error) {
	if err := CheckMove(&s, m, player); err != nil {
		if errors.Is(err, ErrIllegalMove) && player == s.ToMove && !HasLegalMove(&s) {
			return State{}, true, fmt.Errorf("%w: %s", ErrGameOver, s.Status())
		}
		return State{}, false, err
	}

	next := play(s, m)
	return next, next.Status().Over(), nil
}

// play executes a move already known to be legal.
func play(s State, m board.Move) State {
	mover, _ := s.Board.At(m.From)
	target, _ := s.Board.At(m.To)

	next := s
	relocate(&next.Board, mover, m.To)

	next.Captured = board.EmptyAt(m.To)
	if target.IsEnemyOf(mover.Side) {
		next.Captured = target
		next.Score[mover.Side] += target.Value()
	}

	next.LastMover = mover.Side
	next.ToMove = mover.Side.Other()
	next.LastMove = m
	next.Ply++
	return next
}
