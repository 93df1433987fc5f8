package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/trace"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	prefixTrace    = "trace/"
)

// ErrTraceNotFound indicates that no trace is stored under an ID.
var ErrTraceNotFound = errors.New("trace not found")

// Preferences stores the settings used to start a new match.
type Preferences struct {
	WhiteName  string    `json:"white_name"`
	BlackName  string    `json:"black_name"`
	WhiteAgent string    `json:"white_agent"`
	BlackAgent string    `json:"black_agent"`
	Layout     int       `json:"layout"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		WhiteName:  "White",
		BlackName:  "Black",
		WhiteAgent: "human",
		BlackAgent: "random",
		Layout:     int(board.LayoutStandard),
		LastPlayed: time.Now(),
	}
}

// Stats stores accumulated match results.
type Stats struct {
	GamesPlayed   int            `json:"games_played"`
	WhiteWins     int            `json:"white_wins"`
	BlackWins     int            `json:"black_wins"`
	Draws         int            `json:"draws"`
	WinsByPlayer  map[string]int `json:"wins_by_player"`
	TotalPlies    int            `json:"total_plies"`
	LongestGame   int            `json:"longest_game"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewStats returns empty statistics
func NewStats() *Stats {
	return &Stats{WinsByPlayer: make(map[string]int)}
}

// Result describes a finished match.
type Result struct {
	White    string
	Black    string
	Status   game.Status
	Winner   board.Side // NoSide for draws and unfinished games
	Plies    int
	Duration time.Duration
}

// TraceInfo summarizes a stored trace without its snapshots.
type TraceInfo struct {
	ID      string
	Players trace.Players
	Plies   int
	Created time.Time
	Done    bool
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// putJSON stores v as JSON under key.
func (s *Storage) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes the value under key into v. A missing key leaves v
// untouched and reports found == false.
func (s *Storage) getJSON(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.getJSON(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves match statistics
func (s *Storage) SaveStats(stats *Stats) error {
	return s.putJSON(keyStats, stats)
}

// LoadStats loads match statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	if _, err := s.getJSON(keyStats, stats); err != nil {
		return nil, err
	}
	if stats.WinsByPlayer == nil {
		stats.WinsByPlayer = make(map[string]int)
	}
	return stats, nil
}

// RecordResult records a finished match and updates statistics
func (s *Storage) RecordResult(result Result) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlies += result.Plies
	stats.TotalPlayTime += result.Duration
	if result.Plies > stats.LongestGame {
		stats.LongestGame = result.Plies
	}

	switch result.Winner {
	case board.White:
		stats.WhiteWins++
		stats.WinsByPlayer[result.White]++
	case board.Black:
		stats.BlackWins++
		stats.WinsByPlayer[result.Black]++
	default:
		stats.Draws++
	}

	return s.SaveStats(stats)
}

// DrawRate returns the share of drawn games as a percentage (0-100)
func (s *Stats) DrawRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.GamesPlayed) * 100
}

func traceKey(id string) []byte {
	return []byte(prefixTrace + id)
}

// SaveTrace stores t under its ID, replacing any earlier version.
func (s *Storage) SaveTrace(t *trace.Trace) error {
	if t.ID == "" {
		return fmt.Errorf("save trace: empty id")
	}
	data, err := t.Marshal()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(traceKey(t.ID), data)
	})
}

// LoadTrace loads the trace stored under id.
func (s *Storage) LoadTrace(id string) (*trace.Trace, error) {
	var t *trace.Trace

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(traceKey(id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrTraceNotFound, id)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			t, err = trace.Unmarshal(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTrace removes the trace stored under id.
func (s *Storage) DeleteTrace(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(traceKey(id)); err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrTraceNotFound, id)
		} else if err != nil {
			return err
		}
		return txn.Delete(traceKey(id))
	})
}

// ListTraces returns a summary of every stored trace, oldest first.
func (s *Storage) ListTraces() ([]TraceInfo, error) {
	var infos []TraceInfo

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixTrace)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				t, err := trace.Unmarshal(val)
				if err != nil {
					return err
				}
				infos = append(infos, TraceInfo{
					ID:      t.ID,
					Players: t.Players,
					Plies:   t.Len() - 1,
					Created: t.Created,
					Done:    t.Done,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Created.Before(infos[j].Created)
	})
	return infos, nil
}
