package agent

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

func TestRandomIsSeeded(t *testing.T) {
	s, err := game.NewState(board.LayoutMirrored)
	if err != nil {
		t.Fatal(err)
	}

	play := func(seed int64) []string {
		p := NewRandom("r", rand.New(rand.NewSource(seed)))
		state := s
		var out []string
		for i := 0; i < 10; i++ {
			m, err := p.Move(context.Background(), &state)
			if err != nil {
				t.Fatal(err)
			}
			if !game.IsLegal(&state, m, state.ToMove) {
				t.Fatalf("random move %s is illegal", m)
			}
			out = append(out, m.String())
			state, _, err = game.Apply(state, m, state.ToMove)
			if err != nil {
				t.Fatal(err)
			}
		}
		return out
	}

	a, b := play(42), play(42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at ply %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestGreedyTakesQueen(t *testing.T) {
	// The rook can take a queen or a pawn.
	s, err := game.FromPlacement("q3k3/8/8/8/8/8/8/Rp2K3", board.White)
	if err != nil {
		t.Fatal(err)
	}

	g := NewGreedy("g", rand.New(rand.NewSource(1)))
	m, err := g.Move(context.Background(), &s)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "a1a8" {
		t.Errorf("greedy played %s, want a1a8", m)
	}
}

func TestGreedyPrefersCheapAttacker(t *testing.T) {
	// Both the queen and the pawn can take the rook on d5.
	s, err := game.FromPlacement("4k3/8/8/3r4/4P3/8/8/3QK3", board.White)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGreedy("g", rand.New(rand.NewSource(7)))
	m, err := g.Move(context.Background(), &s)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "e4d5" {
		t.Errorf("greedy played %s, want e4d5", m)
	}
}

func TestNoMoves(t *testing.T) {
	s, err := game.FromPlacement("k7/8/1Q6/8/8/8/8/7K", board.Black)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []Player{
		NewRandom("r", rand.New(rand.NewSource(1))),
		NewGreedy("g", rand.New(rand.NewSource(1))),
	} {
		if _, err := p.Move(context.Background(), &s); !errors.Is(err, ErrNoMoves) {
			t.Errorf("%s: error = %v, want ErrNoMoves", p.Name(), err)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	s, err := game.NewState(board.LayoutMirrored)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewRandom("r", rand.New(rand.NewSource(1)))
	if _, err := p.Move(ctx, &s); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"human", "Random", "GREEDY"} {
		if _, err := ParseKind(name); err != nil {
			t.Errorf("ParseKind(%q): %v", name, err)
		}
	}
	if _, err := ParseKind("stockfish"); err == nil {
		t.Error("ParseKind(stockfish) succeeded")
	}
	if _, err := New(KindHuman, "h", nil); err == nil {
		t.Error("New(human) succeeded")
	}
}
