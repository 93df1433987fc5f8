// Package config holds the settings for a chessrules process.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/hailam/chessrules/internal/agent"
	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/storage"
)

// ErrInvalidConfig indicates invalid configuration values.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full process configuration.
type Config struct {
	WhiteName  string
	BlackName  string
	WhiteAgent agent.Kind
	BlackAgent agent.Kind
	Layout     board.Layout

	Seed        int64
	MaxPlies    int           // 0 means no limit
	AllowedTime time.Duration // per player; 0 means no clock
	MoveDelay   time.Duration // pause between automatic moves

	DataDir    string // BadgerDB directory; "" uses the platform data dir
	InMemory   bool
	Listen     string // HTTP address; "" runs the console
	Autosave   bool   // save finished matches to storage
	SquareSize int    // PNG square size in pixels
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		WhiteName:   "White",
		BlackName:   "Black",
		WhiteAgent:  agent.KindHuman,
		BlackAgent:  agent.KindRandom,
		Layout:      board.LayoutStandard,
		Seed:        1,
		MaxPlies:    500,
		AllowedTime: 120 * time.Second,
		Autosave:    true,
		SquareSize:  64,
	}
}

// Validate checks every field and reports the first problem.
func (c *Config) Validate() error {
	if _, err := board.ParseLayout(int(c.Layout)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.WhiteName == "" || c.BlackName == "" {
		return fmt.Errorf("%w: player names must not be empty", ErrInvalidConfig)
	}
	if c.WhiteName == c.BlackName {
		return fmt.Errorf("%w: both players are named %q", ErrInvalidConfig, c.WhiteName)
	}
	for _, k := range []agent.Kind{c.WhiteAgent, c.BlackAgent} {
		if _, err := agent.ParseKind(string(k)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.MaxPlies < 0 {
		return fmt.Errorf("%w: max plies %d is negative", ErrInvalidConfig, c.MaxPlies)
	}
	if c.AllowedTime < 0 || c.MoveDelay < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if c.SquareSize < 8 || c.SquareSize > 256 {
		return fmt.Errorf("%w: square size %d outside [8,256]", ErrInvalidConfig, c.SquareSize)
	}
	return nil
}

// ApplyPreferences copies stored match settings into c.
func (c *Config) ApplyPreferences(p *storage.Preferences) {
	if p.WhiteName != "" {
		c.WhiteName = p.WhiteName
	}
	if p.BlackName != "" {
		c.BlackName = p.BlackName
	}
	if k, err := agent.ParseKind(p.WhiteAgent); err == nil {
		c.WhiteAgent = k
	}
	if k, err := agent.ParseKind(p.BlackAgent); err == nil {
		c.BlackAgent = k
	}
	if l, err := board.ParseLayout(p.Layout); err == nil {
		c.Layout = l
	}
}

// Preferences returns the match settings of c in storable form.
func (c *Config) Preferences() *storage.Preferences {
	return &storage.Preferences{
		WhiteName:  c.WhiteName,
		BlackName:  c.BlackName,
		WhiteAgent: string(c.WhiteAgent),
		BlackAgent: string(c.BlackAgent),
		Layout:     int(c.Layout),
	}
}
