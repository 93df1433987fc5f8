package server

import (
	"strings"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/session"
)

// StateView is the JSON form of a match sent to clients.
type StateView struct {
	ID         string          `json:"id"`
	White      string          `json:"white"`
	Black      string          `json:"black"`
	Layout     int             `json:"layout"`
	Placement  string          `json:"placement"`
	Rows       []string        `json:"rows"` // highest rank first
	ToMove     board.Side      `json:"to_move"`
	Ply        int             `json:"ply"`
	LastMove   string          `json:"last_move,omitempty"`
	Captured   string          `json:"captured,omitempty"`
	Score      map[string]int  `json:"score"`
	Status     game.Status     `json:"status"`
	Check      bool            `json:"check"`
	Result     *session.Result `json:"result,omitempty"`
	LegalMoves []string        `json:"legal_moves"`
}

func newStateView(id string, m *session.Match, s game.State) StateView {
	placement := s.Board.Placement()
	v := StateView{
		ID:        id,
		White:     m.Seat(board.White).Name,
		Black:     m.Seat(board.Black).Name,
		Layout:    int(m.Layout()),
		Placement: placement,
		Rows:      strings.Split(placement, "/"),
		ToMove:    s.ToMove,
		Ply:       s.Ply,
		Score: map[string]int{
			"white": s.ScoreOf(board.White),
			"black": s.ScoreOf(board.Black),
		},
		Status:     s.Status(),
		Check:      game.IsKingInCheck(&s, s.ToMove),
		LegalMoves: []string{},
	}
	if s.HasLastMove() {
		v.LastMove = s.LastMove.String()
	}
	if !s.Captured.IsEmpty() {
		v.Captured = s.Captured.String()
	}
	if r, over := m.Result(); over {
		v.Result = &r
		return v
	}
	for _, mv := range game.LegalMoves(&s) {
		v.LegalMoves = append(v.LegalMoves, mv.String())
	}
	return v
}
