// Package session runs a match between two players: it keeps the current
// state, the per-player clocks and the trace, and notifies subscribers after
// every move.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hailam/chessrules/internal/agent"
	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/trace"
)

var (
	// ErrHumanTurn is returned by Advance when the side to move has no agent.
	ErrHumanTurn = errors.New("side to move is played by a human")
	// ErrTimeout is returned by Step when the mover's clock ran out before
	// the move arrived. The move is not played and the match is over.
	ErrTimeout = errors.New("out of time")
)

// Reason explains how a match ended.
type Reason string

const (
	ReasonCheckmate Reason = "checkmate"
	ReasonStalemate Reason = "stalemate"
	ReasonTimeout   Reason = "timeout"
	ReasonPlyLimit  Reason = "ply limit"
)

// Result is the outcome of a finished match.
type Result struct {
	Status game.Status `json:"status"`
	Winner board.Side  `json:"winner"` // NoSide for draws
	Reason Reason      `json:"reason"`
	Plies  int         `json:"plies"`
}

// Seat is one side of a match. A nil Player means the moves come from
// outside through Step.
type Seat struct {
	Name   string
	Player agent.Player
}

// Options tune a match.
type Options struct {
	MaxPlies    int           // 0 means no limit
	AllowedTime time.Duration // per player; 0 means no clock
	MoveDelay   time.Duration // pause between automatic moves in Play
}

// Match is safe for concurrent use.
type Match struct {
	mu sync.Mutex

	layout board.Layout
	seats  [2]Seat
	opts   Options

	state     game.State
	trace     *trace.Trace
	remaining [2]time.Duration
	turnStart time.Time
	started   time.Time
	result    *Result

	subs   map[int]chan game.State
	nextID int

	now func() time.Time
}

// New creates a match in the initial position of layout.
func New(layout board.Layout, white, black Seat, opts Options) (*Match, error) {
	if white.Name == "" || black.Name == "" {
		return nil, fmt.Errorf("session: player names must not be empty")
	}
	m := &Match{
		layout: layout,
		seats:  [2]Seat{white, black},
		opts:   opts,
		subs:   make(map[int]chan game.State),
		now:    time.Now,
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromTrace resumes a recorded match at its last snapshot. Both seats are
// played by humans until SetPlayer is called.
func FromTrace(t *trace.Trace, opts Options) (*Match, error) {
	last, ok := t.Last()
	if !ok {
		return nil, trace.ErrEmpty
	}
	m := &Match{
		layout: board.LayoutStandard,
		seats:  [2]Seat{{Name: t.Players.White}, {Name: t.Players.Black}},
		opts:   opts,
		state:  last,
		trace:  t,
		subs:   make(map[int]chan game.State),
		now:    time.Now,
	}
	first, _ := t.At(0)
	if mirrored, err := board.NewLayoutBoard(board.LayoutMirrored); err == nil && mirrored == first.Board {
		m.layout = board.LayoutMirrored
	}
	m.remaining = [2]time.Duration{opts.AllowedTime, opts.AllowedTime}
	m.started = m.now()
	m.turnStart = m.started
	m.finishIfOver()
	return m, nil
}

// Reset starts over from the initial position with the same players.
func (m *Match) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.reset(); err != nil {
		return err
	}
	m.notify()
	return nil
}

func (m *Match) reset() error {
	s, err := game.NewState(m.layout)
	if err != nil {
		return err
	}
	m.state = s
	m.trace = trace.New(s, trace.Players{White: m.seats[board.White].Name, Black: m.seats[board.Black].Name})
	m.remaining = [2]time.Duration{m.opts.AllowedTime, m.opts.AllowedTime}
	m.result = nil
	m.started = m.now()
	m.turnStart = m.started
	return nil
}

// ID returns the identifier of the current trace.
func (m *Match) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trace.ID
}

// Layout returns the initial layout.
func (m *Match) Layout() board.Layout {
	return m.layout
}

// State returns the current state.
func (m *Match) State() game.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Seat returns the seat of side.
func (m *Match) Seat(side board.Side) Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[side]
}

// SetPlayer assigns an agent to side; nil hands the side to a human.
func (m *Match) SetPlayer(side board.Side, p agent.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[side].Player = p
}

// Trace returns a copy of the trace recorded so far.
func (m *Match) Trace() *trace.Trace {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.trace
	cp.Snapshots = append([]game.State(nil), m.trace.Snapshots...)
	return &cp
}

// Result returns the outcome once the match is over.
func (m *Match) Result() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Remaining returns the clock of side. It is zero when no clock is set.
func (m *Match) Remaining(side board.Side) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining[side]
}

// Elapsed returns the time since the match started.
func (m *Match) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.started)
}

// Step plays mv for the side to move.
func (m *Match) Step(mv board.Move) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step(mv)
}

func (m *Match) step(mv board.Move) (game.State, error) {
	if m.result != nil {
		return m.state, fmt.Errorf("%w: %s", game.ErrGameOver, m.result.Reason)
	}

	side := m.state.ToMove
	next, _, err := game.Apply(m.state, mv, side)
	if err != nil {
		return m.state, err
	}

	if m.chargeClock(side) {
		return m.state, fmt.Errorf("%w: %s loses by %s", ErrTimeout, side, m.result.Reason)
	}

	m.state = next
	m.trace.Add(next)
	m.turnStart = m.now()
	m.finishIfOver()
	m.notify()
	return m.state, nil
}

// chargeClock deducts the time spent on the current turn. It reports true
// when side has run out of time, in which case the match is over.
func (m *Match) chargeClock(side board.Side) bool {
	if m.opts.AllowedTime <= 0 {
		return false
	}
	m.remaining[side] -= m.now().Sub(m.turnStart)
	if m.remaining[side] > 0 {
		return false
	}
	m.flagFall(side)
	return true
}

// flagFall ends the match with side losing on time.
func (m *Match) flagFall(side board.Side) {
	m.remaining[side] = 0
	m.finish(Result{Status: game.Ongoing, Winner: side.Other(), Reason: ReasonTimeout, Plies: m.state.Ply})
	m.notify()
}

func (m *Match) finishIfOver() {
	switch st := m.state.Status(); st {
	case game.Checkmate:
		m.finish(Result{Status: st, Winner: m.state.LastMover, Reason: ReasonCheckmate, Plies: m.state.Ply})
	case game.Stalemate:
		m.finish(Result{Status: st, Winner: board.NoSide, Reason: ReasonStalemate, Plies: m.state.Ply})
	default:
		if m.opts.MaxPlies > 0 && m.state.Ply >= m.opts.MaxPlies {
			m.finish(Result{Status: st, Winner: board.NoSide, Reason: ReasonPlyLimit, Plies: m.state.Ply})
		}
	}
}

func (m *Match) finish(r Result) {
	m.result = &r
	m.trace.Done = true
	log.Printf("Match %s over after %d plies: %s (winner %s)", m.trace.ID, r.Plies, r.Reason, r.Winner)
}

// Advance asks the agent of the side to move for a move and plays it.
func (m *Match) Advance(ctx context.Context) (board.Move, error) {
	m.mu.Lock()
	if m.result != nil {
		m.mu.Unlock()
		return board.Move{}, fmt.Errorf("%w: %s", game.ErrGameOver, m.result.Reason)
	}
	s := m.state
	side := s.ToMove
	player := m.seats[side].Player
	budget := m.remaining[side]
	m.mu.Unlock()

	if player == nil {
		return board.Move{}, ErrHumanTurn
	}

	moveCtx := ctx
	if m.opts.AllowedTime > 0 {
		var cancel context.CancelFunc
		moveCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	mv, err := player.Move(moveCtx, &s)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Ply != s.Ply || m.result != nil {
		return board.Move{}, fmt.Errorf("session: position changed while %s was thinking", player.Name())
	}
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			m.flagFall(side)
		}
		return board.Move{}, err
	}
	if _, err := m.step(mv); err != nil {
		return board.Move{}, err
	}
	return mv, nil
}

// Play lets the agents move until the match ends, a human is to move or ctx
// is done.
func (m *Match) Play(ctx context.Context) (Result, error) {
	for {
		if r, over := m.Result(); over {
			return r, nil
		}

		if _, err := m.Advance(ctx); err != nil {
			if r, over := m.Result(); over {
				return r, nil
			}
			return Result{}, err
		}

		if m.opts.MoveDelay > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(m.opts.MoveDelay):
			}
		}
	}
}

// Subscribe returns a channel that receives the state after every move and
// reset. Slow readers miss intermediate states. The returned function
// unsubscribes and closes the channel.
func (m *Match) Subscribe() (<-chan game.State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan game.State, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

// notify pushes the current state to every subscriber, replacing an unread
// older state.
func (m *Match) notify() {
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- m.state:
		default:
		}
	}
}
