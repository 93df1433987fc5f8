// Command chessrules plays chess matches between humans and simple agents
// from a text console or over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hailam/chessrules/internal/agent"
	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/config"
	"github.com/hailam/chessrules/internal/console"
	"github.com/hailam/chessrules/internal/server"
	"github.com/hailam/chessrules/internal/session"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	layoutFlag     = flag.Int("layout", int(board.LayoutStandard), "initial layout: 0 mirrored, 1 standard")
	whiteFlag      = flag.String("white", "White", "name of the white player")
	blackFlag      = flag.String("black", "Black", "name of the black player")
	whiteAgentFlag = flag.String("white-agent", string(agent.KindHuman), "white player: human, random or greedy")
	blackAgentFlag = flag.String("black-agent", string(agent.KindRandom), "black player: human, random or greedy")
	seedFlag       = flag.Int64("seed", 1, "random seed for the agents")
	maxPliesFlag   = flag.Int("max-plies", 500, "end the match as a draw after this many plies (0 = no limit)")
	clockFlag      = flag.Duration("clock", 120*time.Second, "time allowed per player (0 = no clock)")
	delayFlag      = flag.Duration("delay", 0, "pause between automatic moves")
	dbFlag         = flag.String("db", "", "BadgerDB directory (default: platform data directory)")
	inMemoryFlag   = flag.Bool("in-memory", false, "keep the database in memory")
	serveFlag      = flag.String("serve", "", "serve HTTP on this address instead of running the console")
	autoplayFlag   = flag.Bool("autoplay", false, "let the agents play one match and exit")
	traceFlag      = flag.String("trace", "", "with -autoplay, write the match to <name>.trace (bare names go to the trace directory)")
	squareFlag     = flag.Int("square", 64, "rendered square size in pixels")
)

func main() {
	flag.Parse()

	store, err := openStorage()
	if err != nil {
		log.Printf("Warning: storage unavailable: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	cfg := buildConfig(store)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("chessrules: %v", err)
	}
	if store != nil {
		if err := store.SavePreferences(cfg.Preferences()); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case cfg.Listen != "":
		err = serve(ctx, cfg, store)
	case *autoplayFlag:
		err = autoplay(ctx, cfg, store)
	default:
		var c *console.Console
		c, err = console.New(os.Stdin, os.Stdout, cfg, store)
		if err == nil {
			err = c.Run(ctx)
		}
	}
	if err != nil && ctx.Err() == nil {
		log.Fatalf("chessrules: %v", err)
	}
}

func openStorage() (*storage.Storage, error) {
	switch {
	case *inMemoryFlag:
		return storage.OpenInMemory()
	case *dbFlag != "":
		return storage.Open(*dbFlag)
	default:
		return storage.NewStorage()
	}
}

// buildConfig layers stored preferences over the defaults and explicitly
// set flags over both.
func buildConfig(store *storage.Storage) config.Config {
	cfg := config.Default()
	if store != nil {
		first, err := store.IsFirstLaunch()
		if err == nil && first {
			log.Printf("First launch, using default preferences")
			if err := store.MarkFirstLaunchComplete(); err != nil {
				log.Printf("Failed to mark first launch: %v", err)
			}
		} else if prefs, err := store.LoadPreferences(); err == nil {
			cfg.ApplyPreferences(prefs)
		}
	}

	cfg.Seed = *seedFlag
	cfg.MaxPlies = *maxPliesFlag
	cfg.AllowedTime = *clockFlag
	cfg.MoveDelay = *delayFlag
	cfg.DataDir = *dbFlag
	cfg.InMemory = *inMemoryFlag
	cfg.Listen = *serveFlag
	cfg.SquareSize = *squareFlag

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "layout":
			cfg.Layout = board.Layout(*layoutFlag)
		case "white":
			cfg.WhiteName = *whiteFlag
		case "black":
			cfg.BlackName = *blackFlag
		case "white-agent":
			cfg.WhiteAgent = agent.Kind(*whiteAgentFlag)
		case "black-agent":
			cfg.BlackAgent = agent.Kind(*blackAgentFlag)
		}
	})
	return cfg
}

func serve(ctx context.Context, cfg config.Config, store *storage.Storage) error {
	srv, err := server.New(cfg, store)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Listen) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Printf("Shutting down")
		return srv.Shutdown()
	}
}

// autoplay runs one match between two agents. Human seats are replaced by
// random agents.
func autoplay(ctx context.Context, cfg config.Config, store *storage.Storage) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	seat := func(name string, kind agent.Kind) (session.Seat, error) {
		if kind == agent.KindHuman {
			kind = agent.KindRandom
		}
		p, err := agent.New(kind, name, rng)
		return session.Seat{Name: name, Player: p}, err
	}

	white, err := seat(cfg.WhiteName, cfg.WhiteAgent)
	if err != nil {
		return err
	}
	black, err := seat(cfg.BlackName, cfg.BlackAgent)
	if err != nil {
		return err
	}

	m, err := session.New(cfg.Layout, white, black, session.Options{
		MaxPlies:    cfg.MaxPlies,
		AllowedTime: cfg.AllowedTime,
		MoveDelay:   cfg.MoveDelay,
	})
	if err != nil {
		return err
	}

	r, err := m.Play(ctx)
	if err != nil {
		return err
	}

	final := m.State()
	fmt.Print(final.String())
	fmt.Printf("%s after %d plies, winner %s (score %d-%d)\n",
		r.Reason, r.Plies, r.Winner, final.ScoreOf(board.White), final.ScoreOf(board.Black))

	if *traceFlag != "" {
		name := *traceFlag
		if filepath.Dir(name) == "." {
			if dir, err := storage.GetTraceDir(); err == nil {
				name = filepath.Join(dir, name)
			}
		}
		path, err := m.Trace().WriteFile(name)
		if err != nil {
			return err
		}
		log.Printf("Trace written to %s", path)
	}

	if store != nil && cfg.Autosave {
		if err := store.SaveTrace(m.Trace()); err != nil {
			return err
		}
		return store.RecordResult(storage.Result{
			White:    cfg.WhiteName,
			Black:    cfg.BlackName,
			Status:   r.Status,
			Winner:   r.Winner,
			Plies:    r.Plies,
			Duration: m.Elapsed(),
		})
	}
	return nil
}
