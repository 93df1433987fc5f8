package game

import "github.com/hailam/chessrules/internal/board"

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It is the usual way to check move generation against known totals.
func Perft(s State, depth int) int64 {
	if depth <= 0 {
		return 1
	}

	moves := LegalMoves(&s)
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		nodes += Perft(play(s, m), depth-1)
	}
	return nodes
}

// DivideEntry is the perft count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes int64
}

// Divide runs Perft below each legal root move, in move order.
func Divide(s State, depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	moves := LegalMoves(&s)
	out := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		out = append(out, DivideEntry{Move: m, Nodes: Perft(play(s, m), depth-1)})
	}
	return out
}
