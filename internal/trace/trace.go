// Package trace records a match as the ordered list of its states together
// with the two player names, and stores it as a JSON ".trace" file.
package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hailam/chessrules/internal/game"
)

// Ext is the file extension used by WriteFile.
const Ext = ".trace"

// ErrEmpty indicates a trace without any snapshot.
var ErrEmpty = errors.New("trace has no snapshots")

// Players names the two participants of a match.
type Players struct {
	White string `json:"white"`
	Black string `json:"black"`
}

// Trace is an append-only record of a match. Snapshots[0] is the initial
// state; each later entry is the state after one move.
type Trace struct {
	ID        string       `json:"id"`
	Players   Players      `json:"players"`
	Created   time.Time    `json:"created"`
	Done      bool         `json:"done"`
	Snapshots []game.State `json:"snapshots"`
}

// New starts a trace at the initial state with a fresh identifier.
func New(initial game.State, players Players) *Trace {
	return &Trace{
		ID:        uuid.NewString(),
		Players:   players,
		Created:   time.Now().UTC(),
		Snapshots: []game.State{initial},
	}
}

// Add appends a snapshot. States are values, so later changes by the caller
// do not alter the trace.
func (t *Trace) Add(s game.State) {
	t.Snapshots = append(t.Snapshots, s)
}

// Len returns the number of snapshots.
func (t *Trace) Len() int {
	return len(t.Snapshots)
}

// Last returns the most recent snapshot.
func (t *Trace) Last() (game.State, bool) {
	if len(t.Snapshots) == 0 {
		return game.State{}, false
	}
	return t.Snapshots[len(t.Snapshots)-1], true
}

// At returns the snapshot after ply moves.
func (t *Trace) At(ply int) (game.State, bool) {
	if ply < 0 || ply >= len(t.Snapshots) {
		return game.State{}, false
	}
	return t.Snapshots[ply], true
}

// Encode writes the trace as JSON.
func (t *Trace) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(t)
}

// Decode reads a JSON trace.
func Decode(r io.Reader) (*Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if len(t.Snapshots) == 0 {
		return nil, ErrEmpty
	}
	return &t, nil
}

// Marshal returns the JSON encoding of the trace.
func (t *Trace) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

// Unmarshal decodes a trace produced by Marshal.
func Unmarshal(data []byte) (*Trace, error) {
	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if len(t.Snapshots) == 0 {
		return nil, ErrEmpty
	}
	return &t, nil
}

// WriteFile writes the trace to name with the ".trace" extension appended
// when missing, and returns the path written.
func (t *Trace) WriteFile(name string) (string, error) {
	path := name
	if !strings.HasSuffix(path, Ext) {
		path += Ext
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := t.Encode(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// ReadFile loads a trace written by WriteFile.
func ReadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
