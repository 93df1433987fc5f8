// Package agent provides automated players that choose moves for a game
// state. Agents take an explicit random source so that a seeded game is
// reproducible.
package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// ErrNoMoves is returned when the side to move has no legal move.
var ErrNoMoves = errors.New("no legal moves")

// Player chooses a move for the side to move in s. Implementations must
// return promptly once ctx is done.
type Player interface {
	Name() string
	Move(ctx context.Context, s *game.State) (board.Move, error)
}

// Kind names an agent implementation.
type Kind string

const (
	KindHuman  Kind = "human"
	KindRandom Kind = "random"
	KindGreedy Kind = "greedy"
)

// ParseKind validates an agent name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindHuman, KindRandom, KindGreedy:
		return k, nil
	default:
		return "", fmt.Errorf("unknown agent %q (want human, random or greedy)", s)
	}
}

// New builds an automated player of the given kind. Humans have no agent;
// their moves arrive from the console or the server.
func New(kind Kind, name string, rng *rand.Rand) (Player, error) {
	switch kind {
	case KindRandom:
		return NewRandom(name, rng), nil
	case KindGreedy:
		return NewGreedy(name, rng), nil
	default:
		return nil, fmt.Errorf("agent %q cannot play automatically", kind)
	}
}

// Random plays a uniformly chosen legal move.
type Random struct {
	name string
	rng  *rand.Rand
}

// NewRandom creates a random player drawing from rng.
func NewRandom(name string, rng *rand.Rand) *Random {
	return &Random{name: name, rng: rng}
}

// Name returns the player name.
func (r *Random) Name() string { return r.name }

// Move picks one of the legal moves at random.
func (r *Random) Move(ctx context.Context, s *game.State) (board.Move, error) {
	if err := ctx.Err(); err != nil {
		return board.Move{}, err
	}
	moves := game.LegalMoves(s)
	if len(moves) == 0 {
		return board.Move{}, ErrNoMoves
	}
	return moves[r.rng.Intn(len(moves))], nil
}

// Greedy captures the most valuable piece it can, using the least valuable
// attacker (MVV-LVA). Without a capture it plays like Random.
type Greedy struct {
	name string
	rng  *rand.Rand
}

// NewGreedy creates a greedy player drawing from rng for tie breaks.
func NewGreedy(name string, rng *rand.Rand) *Greedy {
	return &Greedy{name: name, rng: rng}
}

// Name returns the player name.
func (g *Greedy) Name() string { return g.name }

// Move picks the best capture, breaking ties at random.
func (g *Greedy) Move(ctx context.Context, s *game.State) (board.Move, error) {
	if err := ctx.Err(); err != nil {
		return board.Move{}, err
	}
	moves := game.LegalMoves(s)
	if len(moves) == 0 {
		return board.Move{}, ErrNoMoves
	}

	best := 0
	var candidates []board.Move
	for _, m := range moves {
		score := captureScore(s, m)
		switch {
		case score > best:
			best = score
			candidates = append(candidates[:0], m)
		case score == best:
			candidates = append(candidates, m)
		}
	}
	return candidates[g.rng.Intn(len(candidates))], nil
}

// captureScore ranks a capture by victim value, then by cheapest attacker.
// Quiet moves score 0.
func captureScore(s *game.State, m board.Move) int {
	victim, _ := s.Board.At(m.To)
	if victim.IsEmpty() {
		return 0
	}
	attacker, _ := s.Board.At(m.From)
	return victim.Value()*10 + (10 - attacker.Value())
}
