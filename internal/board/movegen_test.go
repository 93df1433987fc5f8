package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func squares(t *testing.T, names ...string) []Square {
	t.Helper()
	out := make([]Square, 0, len(names))
	for _, n := range names {
		out = append(out, sq(t, n))
	}
	return SortSquares(out)
}

func movesOf(t *testing.T, b *Board, at string) []Square {
	t.Helper()
	dests, err := b.MovesAt(sq(t, at))
	if err != nil {
		t.Fatal(err)
	}
	return dests
}

func TestRookOnEmptyBoard(t *testing.T) {
	b := NewBoard()
	d4 := NewSquare(3, 3)
	b.Place(d4, NewPiece(Rook, White, d4))

	got := movesOf(t, &b, "d4")
	if len(got) != 14 {
		t.Errorf("rook on d4 has %d moves, want 14: %v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Less(got[i]) {
			t.Fatalf("moves not sorted: %v", got)
		}
	}
}

func TestSlidingStopsAtPieces(t *testing.T) {
	b := MustParsePlacement("8/8/8/3p4/8/3R1P2/8/8")
	want := squares(t, "d1", "d2", "d4", "d5", "a3", "b3", "c3", "e3")
	if diff := cmp.Diff(want, movesOf(t, &b, "d3")); diff != "" {
		t.Errorf("rook d3 (-want +got):\n%s", diff)
	}

	b = MustParsePlacement("8/8/8/8/8/2P5/1Q6/p7")
	want = squares(t, "a1", "a2", "a3", "b1", "b3", "b4", "b5", "b6", "b7", "b8",
		"c1", "c2", "d2", "e2", "f2", "g2", "h2")
	if diff := cmp.Diff(want, movesOf(t, &b, "b2")); diff != "" {
		t.Errorf("queen b2 (-want +got):\n%s", diff)
	}
}

func TestKnightAndKing(t *testing.T) {
	b := MustParsePlacement("8/8/8/8/8/8/5P2/6N1")
	want := squares(t, "e2", "f3", "h3")
	if diff := cmp.Diff(want, movesOf(t, &b, "g1")); diff != "" {
		t.Errorf("knight g1 (-want +got):\n%s", diff)
	}

	b = MustParsePlacement("8/8/8/8/8/8/1p6/K7")
	want = squares(t, "a2", "b1", "b2")
	if diff := cmp.Diff(want, movesOf(t, &b, "a1")); diff != "" {
		t.Errorf("king a1 (-want +got):\n%s", diff)
	}
}

func TestPawnMoves(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		at        string
		want      []string
	}{
		{"white double step", "8/8/8/8/8/8/4P3/8", "e2", []string{"e3", "e4"}},
		{"black double step", "8/4p3/8/8/8/8/8/8", "e7", []string{"e6", "e5"}},
		{"blocked", "8/8/8/8/8/4n3/4P3/8", "e2", nil},
		{"double step blocked", "8/8/8/8/4n3/8/4P3/8", "e2", []string{"e3"}},
		{"captures", "8/8/8/8/8/3p1p2/4P3/8", "e2", []string{"d3", "e3", "e4", "f3"}},
		{"no capture of own piece", "8/8/8/8/8/3P4/4P3/8", "e2", []string{"e3", "e4"}},
		{"left edge", "8/8/8/8/8/1p6/P7/8", "a2", []string{"a3", "a4", "b3"}},
		{"black on a-file", "8/p7/8/8/8/8/8/8", "a7", []string{"a6", "a5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParsePlacement(tc.placement)
			var want []Square
			if tc.want != nil {
				want = squares(t, tc.want...)
			}
			if diff := cmp.Diff(want, movesOf(t, &b, tc.at)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestPawnAfterMoving(t *testing.T) {
	b := MustParsePlacement("8/8/8/8/8/8/4P3/8")
	e2 := sq(t, "e2")
	p, _ := b.At(e2)
	b.Clear(e2)
	e3 := sq(t, "e3")
	b.Place(e3, p.MovedTo(e3))

	want := squares(t, "e4")
	if diff := cmp.Diff(want, movesOf(t, &b, "e3")); diff != "" {
		t.Errorf("moved pawn may not double step (-want +got):\n%s", diff)
	}
}

func TestPawnDirectionFollowsOrigin(t *testing.T) {
	// In the standard layout White starts on rank 6 and advances downward.
	b, err := NewLayoutBoard(LayoutStandard)
	if err != nil {
		t.Fatal(err)
	}
	want := squares(t, "e6", "e5")
	if diff := cmp.Diff(want, movesOf(t, &b, "e7")); diff != "" {
		t.Errorf("white pawn e7 (-want +got):\n%s", diff)
	}
}

func TestInitialMoveCounts(t *testing.T) {
	for _, layout := range []Layout{LayoutMirrored, LayoutStandard} {
		b, err := NewLayoutBoard(layout)
		if err != nil {
			t.Fatal(err)
		}
		for _, side := range []Side{White, Black} {
			n := 0
			for _, from := range b.PiecesOf(side) {
				n += len(movesOf(t, &b, from.String()))
			}
			if n != 20 {
				t.Errorf("%s/%s: %d moves, want 20", layout, side, n)
			}
		}
	}
}

func TestEmptyHasNoMoves(t *testing.T) {
	b := NewBoard()
	if got := movesOf(t, &b, "e4"); got != nil {
		t.Errorf("empty square moves = %v", got)
	}
}

func TestPawnDirectionByOriginRank(t *testing.T) {
	tests := []struct {
		rank int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, -1},
		{5, -1},
		{6, -1},
		{7, -1},
	}
	for _, tc := range tests {
		p := NewPiece(Pawn, Black, NewSquare(tc.rank, 4))
		if got := PawnDirection(p); got != tc.want {
			t.Errorf("origin rank %d: direction %d, want %d", tc.rank, got, tc.want)
		}
	}
}
