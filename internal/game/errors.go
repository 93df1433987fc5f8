package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/chessrules/internal/board"
)

// Sentinel errors for rejected moves and malformed positions.
// Use these with errors.Is().
var (
	// ErrIllegalMove indicates a move that violates the rules for the
	// current position.
	ErrIllegalMove = errors.New("illegal move")

	// ErrDoubleCheck indicates that two or more pieces attack the king, so
	// only a king move can resolve the check.
	ErrDoubleCheck = errors.New("double check")

	// ErrNoKing indicates a query about a side that has no king on the board.
	ErrNoKing = errors.New("no king on board")

	// ErrGameOver indicates a move attempted after checkmate or stalemate.
	ErrGameOver = errors.New("game is over")
)

// MoveError wraps a move rejection with the move, the player who tried it and
// the ply it was tried at. It supports errors.Is() and errors.As().
type MoveError struct {
	Err    error      // ErrIllegalMove, possibly joined with a more specific cause
	Move   board.Move // The rejected move
	Player board.Side // The side that attempted the move
	Ply    int        // Ply of the position the move was tried in
	Reason string     // Human-readable reason
}

// Error returns a formatted message including the move context.
func (e *MoveError) Error() string {
	parts := []string{
		fmt.Sprintf("ply %d", e.Ply),
		fmt.Sprintf("%s move %q", e.Player, e.Move),
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	context := strings.Join(parts, ", ")
	if e.Err != nil {
		return fmt.Sprintf("%v: %s", e.Err, context)
	}
	return context
}

// Unwrap returns the underlying error.
func (e *MoveError) Unwrap() error {
	return e.Err
}

func illegal(s *State, m board.Move, player board.Side, reason string) error {
	return &MoveError{Err: ErrIllegalMove, Move: m, Player: player, Ply: s.Ply, Reason: reason}
}
