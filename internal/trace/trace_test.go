package trace

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

func sampleTrace(t *testing.T) *Trace {
	t.Helper()
	s, err := game.NewState(board.LayoutMirrored)
	if err != nil {
		t.Fatal(err)
	}
	tr := New(s, Players{White: "alice", Black: "bob"})
	for _, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		m, err := board.ParseMove(mv)
		if err != nil {
			t.Fatal(err)
		}
		s, _, err = game.Apply(s, m, s.ToMove)
		if err != nil {
			t.Fatalf("%s: %v", mv, err)
		}
		tr.Add(s)
	}
	return tr
}

func TestAddAndLast(t *testing.T) {
	tr := sampleTrace(t)
	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tr.Len())
	}
	if tr.ID == "" {
		t.Error("trace has no ID")
	}
	last, ok := tr.Last()
	if !ok || last.Ply != 3 || last.LastMove.String() != "g1f3" {
		t.Errorf("Last() = ply %d move %s", last.Ply, last.LastMove)
	}
	first, ok := tr.At(0)
	if !ok || first.Ply != 0 {
		t.Errorf("At(0) = ply %d", first.Ply)
	}
	if _, ok := tr.At(4); ok {
		t.Error("At(4) should be out of range")
	}
}

func TestEncodeDecode(t *testing.T) {
	tr := sampleTrace(t)

	var buf bytes.Buffer
	if err := tr.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(tr.Players, got.Players); diff != "" {
		t.Errorf("players (-want +got):\n%s", diff)
	}
	if got.ID != tr.ID || got.Len() != tr.Len() {
		t.Fatalf("decoded %s with %d snapshots", got.ID, got.Len())
	}
	for i := range tr.Snapshots {
		if got.Snapshots[i] != tr.Snapshots[i] {
			t.Errorf("snapshot %d differs", i)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	tr := sampleTrace(t)
	name := filepath.Join(t.TempDir(), "game")

	path, err := tr.WriteFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if path != name+Ext {
		t.Errorf("path = %q, want %q", path, name+Ext)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	last, _ := got.Last()
	want, _ := tr.Last()
	if last != want {
		t.Error("last snapshot differs after reload")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"id":"x","snapshots":[]}`)); !errors.Is(err, ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
	if _, err := Unmarshal([]byte(`{`)); err == nil {
		t.Error("malformed JSON accepted")
	}
}
