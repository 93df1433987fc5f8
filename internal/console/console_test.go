package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chessrules/internal/agent"
	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/config"
	"github.com/hailam/chessrules/internal/storage"
)

func humanConfig() config.Config {
	cfg := config.Default()
	cfg.WhiteAgent = agent.KindHuman
	cfg.BlackAgent = agent.KindHuman
	cfg.AllowedTime = 0
	cfg.SquareSize = 16
	return cfg
}

func run(t *testing.T, cfg config.Config, store *storage.Storage, script string) (*Console, string) {
	t.Helper()
	var out bytes.Buffer
	c, err := New(strings.NewReader(script), &out, cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return c, out.String()
}

func TestMovesAndBoard(t *testing.T) {
	c, out := run(t, humanConfig(), nil, "new 0\nmoves\nmove e2e4\nd\nscore\n")

	if !strings.Contains(out, "20 moves:") {
		t.Errorf("missing move count in output:\n%s", out)
	}
	if !strings.Contains(out, "White plays e2e4") {
		t.Errorf("missing move echo:\n%s", out)
	}
	if !strings.Contains(out, "White 0 Black 0") {
		t.Errorf("missing score:\n%s", out)
	}
	if s := c.Match().State(); s.Ply != 1 || c.Match().Layout() != board.LayoutMirrored {
		t.Errorf("ply %d layout %v", s.Ply, c.Match().Layout())
	}
}

func TestErrorsKeepLoopRunning(t *testing.T) {
	script := strings.Join([]string{
		"bogus",
		"move e2",
		"move e2e5",
		"new 5",
		"save",
		"move e7e5",
		"quit",
		"move e2e4",
	}, "\n")
	c, out := run(t, humanConfig(), nil, script)

	if n := strings.Count(out, "error: "); n != 5 {
		t.Errorf("got %d errors, want 5:\n%s", n, out)
	}
	if !strings.Contains(out, "illegal move") {
		t.Errorf("missing illegal move error:\n%s", out)
	}
	if !strings.Contains(out, "invalid board configuration") {
		t.Errorf("missing configuration error:\n%s", out)
	}
	if c.Match().State().Ply != 1 {
		t.Error("commands after quit were executed")
	}
}

func TestCheckmateAndAutosave(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	script := "new 0\nmove c2c3\nmove d7d5\nmove b2b4\nmove e8a4\nstatus\nlist\n"
	c, out := run(t, humanConfig(), store, script)

	if !strings.Contains(out, "game over: checkmate, Black wins") {
		t.Errorf("missing result:\n%s", out)
	}
	if !strings.Contains(out, "status checkmate") {
		t.Errorf("missing status:\n%s", out)
	}
	if !strings.Contains(out, c.Match().ID()) || !strings.Contains(out, "1 traces") {
		t.Errorf("list does not show saved match:\n%s", out)
	}

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 1 || stats.BlackWins != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAgentAnswers(t *testing.T) {
	cfg := humanConfig()
	cfg.BlackAgent = agent.KindRandom
	c, out := run(t, cfg, nil, "new 1\nmove e7e5\n")

	if !strings.Contains(out, "Black plays") {
		t.Errorf("agent did not answer:\n%s", out)
	}
	if s := c.Match().State(); s.Ply != 2 || s.ToMove != board.White {
		t.Errorf("ply %d, %s to move", s.Ply, s.ToMove)
	}
}

func TestSaveLoad(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	c, _ := run(t, humanConfig(), store, "new 1\nmove e7e5\nsave\n")
	id := c.Match().ID()

	c2, out := run(t, humanConfig(), store, "load "+id+"\nmove e2e4\n")
	if !strings.Contains(out, "loaded "+id+" at ply 1") {
		t.Errorf("missing load reply:\n%s", out)
	}
	if s := c2.Match().State(); s.Ply != 2 {
		t.Errorf("ply after load and move = %d", s.Ply)
	}

	_, out = run(t, humanConfig(), store, "load missing\n")
	if !strings.Contains(out, "error: trace not found") {
		t.Errorf("missing not-found error:\n%s", out)
	}
}

func TestPerftGoPlay(t *testing.T) {
	cfg := humanConfig()
	cfg.MaxPlies = 6
	_, out := run(t, cfg, nil, "perft 1\ngo\nstatus\n")
	if !strings.Contains(out, "Nodes: 20") {
		t.Errorf("missing perft total:\n%s", out)
	}
	if !strings.Contains(out, "White plays") || !strings.Contains(out, "Black to move") {
		t.Errorf("go did not move:\n%s", out)
	}

	cfg.WhiteAgent = agent.KindGreedy
	cfg.BlackAgent = agent.KindRandom
	c, out := run(t, cfg, nil, "play\n")
	if !strings.Contains(out, "game over") {
		t.Errorf("play did not finish:\n%s", out)
	}
	if s := c.Match().State(); s.Ply > 6 {
		t.Errorf("played past the ply limit: %d", s.Ply)
	}
}

func TestExportAndRender(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "game")
	png := filepath.Join(dir, "board.png")

	_, out := run(t, humanConfig(), nil, "move e7e5\nexport "+name+"\nrender "+png+" flip\n")
	if !strings.Contains(out, "wrote "+name+".trace") {
		t.Errorf("missing export reply:\n%s", out)
	}
	for _, path := range []string{name + ".trace", png} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", path, err)
		}
	}
}

func TestLateMoveIsReported(t *testing.T) {
	cfg := humanConfig()
	cfg.AllowedTime = time.Nanosecond

	c, out := run(t, cfg, nil, "move e7e5\n")

	if strings.Contains(out, "White plays") {
		t.Errorf("late move echoed as played:\n%s", out)
	}
	if !strings.Contains(out, "game over: timeout, Black wins") {
		t.Errorf("missing timeout report:\n%s", out)
	}
	if !strings.Contains(out, "error: out of time") {
		t.Errorf("missing timeout error:\n%s", out)
	}
	if s := c.Match().State(); s.Ply != 0 {
		t.Errorf("ply = %d, late move was applied", s.Ply)
	}
}
