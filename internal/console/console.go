// Package console implements a line-oriented text protocol for playing a
// match from a terminal or a script.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chessrules/internal/agent"
	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/config"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/render"
	"github.com/hailam/chessrules/internal/session"
	"github.com/hailam/chessrules/internal/storage"
	"github.com/hailam/chessrules/internal/trace"
)

// errUsage marks a malformed command line.
var errUsage = errors.New("usage")

// Console reads commands from in and writes replies to out.
type Console struct {
	in    io.Reader
	out   io.Writer
	cfg   config.Config
	store *storage.Storage // may be nil
	rng   *rand.Rand

	match    *session.Match
	renderer *render.Renderer
	saved    bool // current match already written to storage
}

// New creates a console. store may be nil, in which case save, load and
// list report an error.
func New(in io.Reader, out io.Writer, cfg config.Config, store *storage.Storage) (*Console, error) {
	c := &Console{
		in:    in,
		out:   out,
		cfg:   cfg,
		store: store,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	if err := c.newMatch(cfg.Layout); err != nil {
		return nil, err
	}
	return c, nil
}

// Match returns the current match.
func (c *Console) Match() *session.Match {
	return c.match
}

// Run starts the main loop. It returns nil on "quit" or end of input.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		if cmd == "quit" {
			return nil
		}
		if err := c.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *Console) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "new":
		return c.handleNew(args)
	case "moves":
		return c.handleMoves(args)
	case "move":
		return c.handleMove(ctx, args)
	case "go":
		return c.handleGo(ctx)
	case "play":
		return c.handlePlay(ctx)
	case "d":
		s := c.match.State()
		fmt.Fprint(c.out, s.String())
		return nil
	case "status":
		return c.handleStatus()
	case "score":
		s := c.match.State()
		fmt.Fprintf(c.out, "White %d Black %d\n", s.ScoreOf(board.White), s.ScoreOf(board.Black))
		return nil
	case "perft":
		return c.handlePerft(args)
	case "save":
		return c.handleSave()
	case "load":
		return c.handleLoad(args)
	case "list":
		return c.handleList()
	case "export":
		return c.handleExport(args)
	case "render":
		return c.handleRender(args)
	case "help":
		c.handleHelp()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *Console) seat(name string, kind agent.Kind) (session.Seat, error) {
	seat := session.Seat{Name: name}
	if kind == agent.KindHuman {
		return seat, nil
	}
	p, err := agent.New(kind, name, c.rng)
	if err != nil {
		return seat, err
	}
	seat.Player = p
	return seat, nil
}

func (c *Console) options() session.Options {
	return session.Options{
		MaxPlies:    c.cfg.MaxPlies,
		AllowedTime: c.cfg.AllowedTime,
		MoveDelay:   c.cfg.MoveDelay,
	}
}

func (c *Console) newMatch(layout board.Layout) error {
	white, err := c.seat(c.cfg.WhiteName, c.cfg.WhiteAgent)
	if err != nil {
		return err
	}
	black, err := c.seat(c.cfg.BlackName, c.cfg.BlackAgent)
	if err != nil {
		return err
	}

	m, err := session.New(layout, white, black, c.options())
	if err != nil {
		return err
	}
	c.match = m
	c.saved = false
	return nil
}

// handleNew starts a new match: "new [0|1]".
func (c *Console) handleNew(args []string) error {
	layout := c.cfg.Layout
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: new [0|1]", errUsage)
		}
		if layout, err = board.ParseLayout(v); err != nil {
			return err
		}
	}
	if err := c.newMatch(layout); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "new match %s (%s layout)\n", c.match.ID(), layout)
	return nil
}

// handleMoves lists legal moves: "moves [square]".
func (c *Console) handleMoves(args []string) error {
	s := c.match.State()

	var moves []board.Move
	if len(args) > 0 {
		sq, err := board.ParseSquare(args[0])
		if err != nil {
			return err
		}
		if moves, err = game.LegalMovesFrom(&s, sq); err != nil {
			return err
		}
	} else {
		moves = game.LegalMoves(&s)
	}

	strs := make([]string, len(moves))
	for i, m := range moves {
		strs[i] = m.String()
	}
	fmt.Fprintf(c.out, "%d moves: %s\n", len(moves), strings.Join(strs, " "))
	return nil
}

// handleMove plays a move for the side to move, then lets an automated
// opponent answer: "move e2e4".
func (c *Console) handleMove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: move <from><to>", errUsage)
	}
	mv, err := board.ParseMove(args[0])
	if err != nil {
		return err
	}

	side := c.match.State().ToMove
	if _, err := c.match.Step(mv); err != nil {
		if errors.Is(err, session.ErrTimeout) {
			c.reportIfOver()
		}
		return err
	}
	fmt.Fprintf(c.out, "%s plays %s\n", side, mv)

	if c.reportIfOver() {
		return nil
	}
	return c.answer(ctx)
}

// answer lets agents move until a human is to move or the match ends.
func (c *Console) answer(ctx context.Context) error {
	for {
		side := c.match.State().ToMove
		mv, err := c.match.Advance(ctx)
		if errors.Is(err, session.ErrHumanTurn) {
			return nil
		}
		if err != nil {
			if c.reportIfOver() {
				return nil
			}
			return err
		}
		fmt.Fprintf(c.out, "%s plays %s\n", side, mv)
		if c.reportIfOver() {
			return nil
		}
	}
}

// handleGo lets the agent of the side to move play once. A human seat gets
// a random move.
func (c *Console) handleGo(ctx context.Context) error {
	side := c.match.State().ToMove
	mv, err := c.match.Advance(ctx)
	if errors.Is(err, session.ErrHumanTurn) {
		s := c.match.State()
		if mv, err = agent.NewRandom("go", c.rng).Move(ctx, &s); err != nil {
			return err
		}
		_, err = c.match.Step(mv)
	}
	if err != nil {
		if c.reportIfOver() {
			return nil
		}
		return err
	}
	fmt.Fprintf(c.out, "%s plays %s\n", side, mv)
	c.reportIfOver()
	return nil
}

// handlePlay runs the agents until the match ends or a human is to move.
func (c *Console) handlePlay(ctx context.Context) error {
	start := c.match.State().Ply
	r, err := c.match.Play(ctx)
	if errors.Is(err, session.ErrHumanTurn) {
		s := c.match.State()
		fmt.Fprintf(c.out, "played %d plies, %s to move\n", s.Ply-start, s.ToMove)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "played %d plies\n", r.Plies-start)
	c.reportIfOver()
	return nil
}

// reportIfOver prints the result once the match has ended and saves it when
// autosave is on.
func (c *Console) reportIfOver() bool {
	r, over := c.match.Result()
	if !over {
		return false
	}
	fmt.Fprintf(c.out, "game over: %s", r.Reason)
	if r.Winner != board.NoSide {
		fmt.Fprintf(c.out, ", %s wins", r.Winner)
	}
	fmt.Fprintln(c.out)

	if c.cfg.Autosave && c.store != nil && !c.saved {
		if err := c.save(); err != nil {
			log.Printf("Autosave failed: %v", err)
		}
	}
	return true
}

func (c *Console) handleStatus() error {
	s := c.match.State()
	if r, over := c.match.Result(); over {
		fmt.Fprintf(c.out, "status %s (%s), ply %d\n", r.Status, r.Reason, s.Ply)
		return nil
	}

	check := ""
	if game.IsKingInCheck(&s, s.ToMove) {
		check = ", check"
	}
	fmt.Fprintf(c.out, "status %s, %s to move%s, ply %d\n", s.Status(), s.ToMove, check, s.Ply)
	if c.cfg.AllowedTime > 0 {
		fmt.Fprintf(c.out, "clock White %v Black %v\n",
			c.match.Remaining(board.White).Round(time.Millisecond),
			c.match.Remaining(board.Black).Round(time.Millisecond))
	}
	return nil
}

// handlePerft prints per-move node counts: "perft [depth]".
func (c *Console) handlePerft(args []string) error {
	depth := 2
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			return fmt.Errorf("%w: perft <depth>", errUsage)
		}
		depth = d
	}

	s := c.match.State()
	start := time.Now()
	var nodes int64
	for _, e := range game.Divide(s, depth) {
		fmt.Fprintf(c.out, "%s: %d\n", e.Move, e.Nodes)
		nodes += e.Nodes
	}
	elapsed := time.Since(start)

	fmt.Fprintf(c.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(c.out, "Time: %v\n", elapsed)
	return nil
}

func (c *Console) requireStore() error {
	if c.store == nil {
		return errors.New("no storage configured")
	}
	return nil
}

func (c *Console) save() error {
	if err := c.requireStore(); err != nil {
		return err
	}
	t := c.match.Trace()
	if err := c.store.SaveTrace(t); err != nil {
		return err
	}

	if r, over := c.match.Result(); over && !c.saved {
		white, black := c.match.Seat(board.White), c.match.Seat(board.Black)
		err := c.store.RecordResult(storage.Result{
			White:    white.Name,
			Black:    black.Name,
			Status:   r.Status,
			Winner:   r.Winner,
			Plies:    r.Plies,
			Duration: c.match.Elapsed(),
		})
		if err != nil {
			return err
		}
		c.saved = true
	}
	log.Printf("Saved match %s (%d plies)", t.ID, t.Len()-1)
	return nil
}

func (c *Console) handleSave() error {
	if err := c.save(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", c.match.ID())
	return nil
}

// handleLoad resumes a stored match: "load <id>".
func (c *Console) handleLoad(args []string) error {
	if err := c.requireStore(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: load <id>", errUsage)
	}

	t, err := c.store.LoadTrace(args[0])
	if err != nil {
		return err
	}
	m, err := session.FromTrace(t, c.options())
	if err != nil {
		return err
	}
	kinds := [2]agent.Kind{c.cfg.WhiteAgent, c.cfg.BlackAgent}
	for _, side := range []board.Side{board.White, board.Black} {
		seat, err := c.seat(m.Seat(side).Name, kinds[side])
		if err != nil {
			return err
		}
		m.SetPlayer(side, seat.Player)
	}

	c.match = m
	_, c.saved = m.Result()
	s := m.State()
	fmt.Fprintf(c.out, "loaded %s at ply %d, %s to move\n", t.ID, s.Ply, s.ToMove)
	return nil
}

func (c *Console) handleList() error {
	if err := c.requireStore(); err != nil {
		return err
	}
	infos, err := c.store.ListTraces()
	if err != nil {
		return err
	}
	for _, info := range infos {
		state := "open"
		if info.Done {
			state = "done"
		}
		fmt.Fprintf(c.out, "%s %s-%s %d plies %s %s\n", info.ID, info.Players.White, info.Players.Black,
			info.Plies, state, info.Created.Format(time.RFC3339))
	}
	fmt.Fprintf(c.out, "%d traces\n", len(infos))
	return nil
}

// handleExport writes the trace file: "export <name>".
func (c *Console) handleExport(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: export <name>", errUsage)
	}
	path, err := c.match.Trace().WriteFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s\n", path)
	return nil
}

// handleRender writes a PNG of the current state: "render <file.png> [flip]".
func (c *Console) handleRender(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: render <file.png> [flip]", errUsage)
	}
	if c.renderer == nil {
		r, err := render.NewRenderer(c.cfg.SquareSize)
		if err != nil {
			return err
		}
		c.renderer = r
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	s := c.match.State()
	opts := render.Options{Coordinates: true, Flip: len(args) > 1 && args[1] == "flip"}
	if err := c.renderer.WritePNG(f, &s, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s\n", args[0])
	return nil
}

func (c *Console) handleHelp() {
	fmt.Fprintln(c.out, `commands:
  new [0|1]            start a new match (0 mirrored, 1 standard layout)
  moves [square]       list legal moves
  move <e2e4>          play a move
  go                   let the side to move play once
  play                 let the agents play until a human is to move
  d                    show the board
  status | score       show the game status or material score
  perft [depth]        count leaf nodes per root move
  save | load <id>     store or resume a match
  list                 list stored matches
  export <name>        write <name>`+trace.Ext+`
  render <file> [flip] write a PNG of the board
  quit`)
}
