// Package game holds the game state and the rules that act on it: attack and
// check detection, move legality, move execution and end-of-game detection.
//
// Every operation here is a pure function of an explicit State. Apply returns
// a new State and never modifies its input, so callers can keep earlier
// states as history.
package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// State is a complete game position. It is a plain value: copying a State
// copies the board.
type State struct {
	Board     board.Board `json:"board"`
	ToMove    board.Side  `json:"to_move"`
	LastMover board.Side  `json:"last_mover"`
	// LastMove is meaningful only when Ply > 0.
	LastMove board.Move `json:"last_move"`
	Ply      int        `json:"ply"`
	// Captured is the piece removed by the last move, or an Empty piece.
	Captured board.Piece `json:"captured"`
	Score    [2]int      `json:"score"`
}

// NewState returns the initial state for a layout. White moves first.
func NewState(layout board.Layout) (State, error) {
	b, err := board.NewLayoutBoard(layout)
	if err != nil {
		return State{}, err
	}
	return FromBoard(b, board.White), nil
}

// FromBoard wraps an arbitrary board in a fresh state with toMove to play.
func FromBoard(b board.Board, toMove board.Side) State {
	return State{
		Board:     b,
		ToMove:    toMove,
		LastMover: board.NoSide,
		Captured:  board.EmptyAt(board.Square{}),
	}
}

// FromPlacement is FromBoard over a placement string.
func FromPlacement(placement string, toMove board.Side) (State, error) {
	b, err := board.ParsePlacement(placement)
	if err != nil {
		return State{}, err
	}
	return FromBoard(b, toMove), nil
}

// CellOccupant returns the piece on sq.
func (s *State) CellOccupant(sq board.Square) (board.Piece, error) {
	return s.Board.At(sq)
}

// ScoreOf returns the material captured so far by side.
func (s *State) ScoreOf(side board.Side) int {
	if side != board.White && side != board.Black {
		return 0
	}
	return s.Score[side]
}

// HasLastMove reports whether a move has been applied to reach this state.
func (s *State) HasLastMove() bool {
	return s.Ply > 0
}

// String returns the board diagram followed by the side to move.
func (s *State) String() string {
	return fmt.Sprintf("%s\n%s to move, ply %d, score %d-%d\n",
		s.Board.String(), s.ToMove, s.Ply, s.Score[board.White], s.Score[board.Black])
}

// Status is the outcome of a position for the side to move.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

var statusNames = [...]string{"ongoing", "checkmate", "stalemate"}

// String returns the status name.
func (st Status) String() string {
	if int(st) < len(statusNames) {
		return statusNames[st]
	}
	return fmt.Sprintf("Status(%d)", uint8(st))
}

// MarshalText implements encoding.TextMarshaler.
func (st Status) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (st *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*st = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Over reports whether the game has ended.
func (st Status) Over() bool {
	return st != Ongoing
}

// Status evaluates the position for the side to move.
func (s *State) Status() Status {
	if HasLegalMove(s) {
		return Ongoing
	}
	if IsKingInCheck(s, s.ToMove) {
		return Checkmate
	}
	return Stalemate
}

// Winner returns the side that delivered checkmate. The second result is
// false while the game is ongoing or drawn by stalemate.
func (s *State) Winner() (board.Side, bool) {
	if s.Status() != Checkmate {
		return board.NoSide, false
	}
	return s.ToMove.Other(), true
}
