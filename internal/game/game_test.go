package game

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/chessrules/internal/board"
)

func mustState(t *testing.T, placement string, toMove board.Side) State {
	t.Helper()
	s, err := FromPlacement(placement, toMove)
	if err != nil {
		t.Fatalf("FromPlacement(%q): %v", placement, err)
	}
	return s
}

func mustMove(t *testing.T, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

func moveStrings(moves []board.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	return out
}

func TestCheckmate(t *testing.T) {
	tests := []struct {
		name      string
		placement string
	}{
		// Rook on the back rank, own pawns take the escape squares.
		{"back rank rook", "R6k/6pp/8/8/8/8/8/K7"},
		// Queen next to the king, defended by a knight.
		{"supported queen", "6Qk/8/5N2/8/8/8/8/K7"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, tc.placement, board.Black)
			t.Log(s.Board.String())

			if !IsKingInCheck(&s, board.Black) {
				t.Fatal("expected black king in check")
			}
			if moves := LegalMoves(&s); len(moves) != 0 {
				t.Errorf("legal moves = %v, want none", moves)
			}
			if !IsCheckmate(&s) {
				t.Error("expected checkmate")
			}
			if IsStalemate(&s) {
				t.Error("checkmate reported as stalemate")
			}
			if st := s.Status(); st != Checkmate {
				t.Errorf("Status() = %v, want checkmate", st)
			}
			if w, ok := s.Winner(); !ok || w != board.White {
				t.Errorf("Winner() = %v, %v; want White", w, ok)
			}
		})
	}
}

func TestNotCheckmate(t *testing.T) {
	// The king can take the undefended rook.
	s := mustState(t, "6Rk/8/8/8/8/8/8/K7", board.Black)
	if IsCheckmate(&s) {
		t.Error("expected no checkmate")
	}
	if diff := cmp.Diff([]string{"h8h7", "h8g8"}, moveStrings(LegalMoves(&s))); diff != "" {
		t.Errorf("legal moves (-want +got):\n%s", diff)
	}
}

func TestStalemate(t *testing.T) {
	s := mustState(t, "k7/8/1Q6/8/8/8/8/7K", board.Black)

	if IsKingInCheck(&s, board.Black) {
		t.Fatal("black king should not be in check")
	}
	if !IsStalemate(&s) {
		t.Error("expected stalemate")
	}
	if IsCheckmate(&s) {
		t.Error("stalemate reported as checkmate")
	}
	if st := s.Status(); st != Stalemate {
		t.Errorf("Status() = %v, want stalemate", st)
	}
	if _, ok := s.Winner(); ok {
		t.Error("stalemate has no winner")
	}
}

func TestKingCannotMoveIntoAttack(t *testing.T) {
	s := mustState(t, "3rk3/8/8/8/8/8/8/4K3", board.White)
	if IsKingInCheck(&s, board.White) {
		t.Fatal("white king should not be in check")
	}

	tests := []struct {
		move  string
		legal bool
	}{
		{"e1d1", false},
		{"e1d2", false},
		{"e1e2", true},
		{"e1f1", true},
		{"e1f2", true},
	}
	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			err := CheckMove(&s, mustMove(t, tc.move), board.White)
			if tc.legal && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.legal && !errors.Is(err, ErrIllegalMove) {
				t.Errorf("error = %v, want ErrIllegalMove", err)
			}
		})
	}
}

func TestKingAvoidsPawnSquares(t *testing.T) {
	// Black pawn on e7 advances down the board toward the white king.
	s := mustState(t, "k7/4p3/8/4K3/8/8/8/8", board.White)

	tests := []struct {
		move  string
		legal bool
	}{
		{"e5e6", false}, // the pawn's forward square
		{"e5d6", false}, // empty diagonal, captured once the king stands on it
		{"e5f6", false},
		{"e5d5", true},
		{"e5f5", true},
		{"e5e4", true},
	}
	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			err := CheckMove(&s, mustMove(t, tc.move), board.White)
			if tc.legal && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.legal && !errors.Is(err, ErrIllegalMove) {
				t.Errorf("error = %v, want ErrIllegalMove", err)
			}
		})
	}
}

func TestKingNeverMovesOntoAttackedSquare(t *testing.T) {
	tests := []struct {
		name      string
		placement string
	}{
		{"pawn ahead", "k7/4p3/8/4K3/8/8/8/8"},
		{"pawn beside", "k7/8/8/3pK3/8/8/8/8"},
		{"rook file", "3rk3/8/8/8/8/8/8/4K3"},
		{"defended piece", "k7/8/8/8/8/2b5/3p4/4K3"},
		{"checking ray", "k3r3/8/8/8/8/8/8/4K3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, tc.placement, board.White)
			king, ok := s.Board.KingSquare(board.White)
			if !ok {
				t.Fatal("no white king")
			}
			p, _ := s.Board.At(king)
			for _, to := range board.Moves(p, &s.Board) {
				m := board.NewMove(king, to)
				if IsSquareAttacked(&s, to, board.Black) && IsLegal(&s, m, board.White) {
					t.Errorf("%s is legal but %s is attacked", m, to)
				}
			}
		})
	}
}

func TestKingInCheckEscapes(t *testing.T) {
	// Rook d1 checks; rook d8 defends it.
	s := mustState(t, "3rk3/8/8/8/8/8/8/3rK3", board.White)
	if !IsKingInCheck(&s, board.White) {
		t.Fatal("expected check")
	}

	want := []string{"e1e2", "e1f2"}
	if diff := cmp.Diff(want, moveStrings(LegalMoves(&s))); diff != "" {
		t.Errorf("legal moves (-want +got):\n%s", diff)
	}
}

func TestBlockingSquares(t *testing.T) {
	s := mustState(t, "4r2k/8/8/8/8/8/8/2B1K3", board.White)

	origin, ok, err := AttackOrigin(&s, board.White)
	if err != nil || !ok {
		t.Fatalf("AttackOrigin: %v %v", ok, err)
	}
	if origin.String() != "e8" {
		t.Errorf("attack origin = %s, want e8", origin)
	}

	blocks, err := BlockingSquares(&s, board.White)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, sq := range blocks {
		got = append(got, sq.String())
	}
	want := []string{"e2", "e3", "e4", "e5", "e6", "e7", "e8"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("blocking squares (-want +got):\n%s", diff)
	}

	if !IsLegal(&s, mustMove(t, "c1e3"), board.White) {
		t.Error("bishop block on e3 should be legal")
	}
	err = CheckMove(&s, mustMove(t, "c1d2"), board.White)
	var me *MoveError
	if !errors.As(err, &me) || me.Reason != "move does not resolve check" {
		t.Errorf("c1d2: error = %v, want unresolved check", err)
	}
}

func TestKnightCheckMustBeCaptured(t *testing.T) {
	s := mustState(t, "7k/8/8/8/8/5n2/8/4K2R", board.White)

	blocks, err := BlockingSquares(&s, board.White)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].String() != "f3" {
		t.Errorf("blocking squares = %v, want [f3]", blocks)
	}
	if IsLegal(&s, mustMove(t, "h1h3"), board.White) {
		t.Error("h1h3 does not resolve a knight check")
	}
}

func TestDoubleCheck(t *testing.T) {
	// Rook e8 and knight f3 both check the king on e1.
	s := mustState(t, "4r2k/8/8/8/8/5n2/8/4KR2", board.White)

	if _, _, err := AttackOrigin(&s, board.White); !errors.Is(err, ErrDoubleCheck) {
		t.Errorf("AttackOrigin error = %v, want ErrDoubleCheck", err)
	}
	if _, err := BlockingSquares(&s, board.White); !errors.Is(err, ErrDoubleCheck) {
		t.Errorf("BlockingSquares error = %v, want ErrDoubleCheck", err)
	}

	// Capturing one checker is not enough.
	err := CheckMove(&s, mustMove(t, "f1f3"), board.White)
	if !errors.Is(err, ErrIllegalMove) || !errors.Is(err, ErrDoubleCheck) {
		t.Errorf("f1f3 error = %v, want ErrIllegalMove and ErrDoubleCheck", err)
	}

	want := []string{"e1d1", "e1f2"}
	if diff := cmp.Diff(want, moveStrings(LegalMoves(&s))); diff != "" {
		t.Errorf("legal moves (-want +got):\n%s", diff)
	}
}

func TestNoKingCapture(t *testing.T) {
	// The rook reaches e8 by its movement pattern, but kings are never captured.
	s := mustState(t, "4k3/8/8/8/8/8/8/4R2K", board.White)

	err := CheckMove(&s, mustMove(t, "e1e8"), board.White)
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("king capture error = %v, want ErrIllegalMove", err)
	}
}

func TestCheckMoveErrors(t *testing.T) {
	s, err := NewState(board.LayoutMirrored)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		move   board.Move
		player board.Side
		want   error
	}{
		{"off board", board.NewMove(board.NewSquare(1, 4), board.NewSquare(8, 4)), board.White, board.ErrOutOfBounds},
		{"wrong turn", mustMove(t, "e7e5"), board.Black, ErrIllegalMove},
		{"empty origin", mustMove(t, "e4e5"), board.White, ErrIllegalMove},
		{"enemy piece", mustMove(t, "e7e6"), board.White, ErrIllegalMove},
		{"not a destination", mustMove(t, "e2e5"), board.White, ErrIllegalMove},
		{"onto own piece", mustMove(t, "a1a2"), board.White, ErrIllegalMove},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := CheckMove(&s, tc.move, tc.player); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
			if IsLegal(&s, tc.move, tc.player) {
				t.Error("IsLegal = true")
			}
		})
	}
}
