// Package storage keeps the in-progress game, the completed games and the
// cumulative stats. The file store writes one JSON document; the memory
// store keeps the same document in process.
//
// Snapshots are day-scoped: one saved on an earlier calendar day (in the
// clock's local time) is never offered for resume.
package storage

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/StevePic95/skylardle/internal/fileutil"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// FileName is the document written inside the storage directory.
const FileName = "skylardle.json"

const dayLayout = "2006-01-02"

type currentGame struct {
	Date  string          `json:"date"`
	State engine.Snapshot `json:"state"`
}

type document struct {
	CurrentGame   *currentGame              `json:"currentGame,omitempty"`
	CompletedDays map[string]engine.Results `json:"completedDays,omitempty"`
	Stats         engine.Stats              `json:"stats"`
}

type backend interface {
	load() (document, error)
	save(doc document) error
}

// Store implements engine.Persistence.
type Store struct {
	mu      sync.Mutex
	clock   quartz.Clock
	logger  *log.Logger
	backend backend
}

var _ engine.Persistence = (*Store)(nil)

// NewFileStore stores the document as dir/skylardle.json. The directory is
// created on first write.
func NewFileStore(dir string, clock quartz.Clock, logger *log.Logger) *Store {
	path := filepath.Join(dir, FileName)
	return &Store{
		clock:   clock,
		logger:  logger.WithPrefix("storage").With("path", path),
		backend: &fileBackend{path: path},
	}
}

// NewMemoryStore keeps the document in memory only.
func NewMemoryStore(clock quartz.Clock, logger *log.Logger) *Store {
	return &Store{
		clock:   clock,
		logger:  logger.WithPrefix("storage"),
		backend: &memoryBackend{},
	}
}

func (s *Store) today() string {
	return Day(s.clock.Now())
}

// update applies fn to the stored document and writes it back.
func (s *Store) update(fn func(doc *document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.load()
	if err != nil {
		return err
	}
	fn(&doc)
	return s.backend.save(doc)
}

func (s *Store) read() (document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.load()
}

// SaveSnapshot stores snap as today's game in progress.
func (s *Store) SaveSnapshot(snap engine.Snapshot) error {
	day := s.today()
	if err := s.update(func(doc *document) {
		doc.CurrentGame = &currentGame{Date: day, State: snap}
	}); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Debug("Snapshot saved", "day", day, "board", snap.BoardID, "round", snap.Round)
	return nil
}

// LoadSnapshot returns today's snapshot for boardID, or nil when there is
// none, it is from another day, or it belongs to another board.
func (s *Store) LoadSnapshot(boardID int) (*engine.Snapshot, error) {
	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	cur := doc.CurrentGame
	if cur == nil {
		return nil, nil
	}
	if day := s.today(); cur.Date != day {
		s.logger.Debug("Ignoring stale snapshot", "saved", cur.Date, "today", day)
		return nil, nil
	}
	if cur.State.BoardID != boardID {
		s.logger.Debug("Ignoring snapshot for another board", "saved", cur.State.BoardID, "board", boardID)
		return nil, nil
	}
	snap := cur.State
	return &snap, nil
}

// ClearSnapshot drops the game in progress.
func (s *Store) ClearSnapshot() error {
	if err := s.update(func(doc *document) { doc.CurrentGame = nil }); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// RecordCompletion files res under today's date, folds it into the stats and
// clears the game in progress.
func (s *Store) RecordCompletion(res engine.Results) (engine.Stats, error) {
	day := s.today()
	var stats engine.Stats
	err := s.update(func(doc *document) {
		if doc.CompletedDays == nil {
			doc.CompletedDays = make(map[string]engine.Results)
		}
		doc.CompletedDays[day] = res
		doc.Stats = doc.Stats.Record(res)
		doc.CurrentGame = nil
		stats = doc.Stats
	})
	if err != nil {
		return engine.Stats{}, fmt.Errorf("record completion: %w", err)
	}
	s.logger.Info("Game recorded", "day", day, "board", res.BoardID, "won", res.PlayerWon, "score", res.PlayerScore)
	return stats, nil
}

// Stats returns the cumulative stats.
func (s *Store) Stats() (engine.Stats, error) {
	doc, err := s.read()
	if err != nil {
		return engine.Stats{}, err
	}
	return doc.Stats, nil
}

// History returns every completed game, oldest first.
func (s *Store) History() ([]engine.Results, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	days := make([]string, 0, len(doc.CompletedDays))
	for day := range doc.CompletedDays {
		days = append(days, day)
	}
	slices.Sort(days)

	out := make([]engine.Results, len(days))
	for i, day := range days {
		out[i] = doc.CompletedDays[day]
	}
	return out, nil
}

// TodayComplete returns today's results when a game was finished today.
func (s *Store) TodayComplete() (*engine.Results, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	res, ok := doc.CompletedDays[s.today()]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// Day returns the storage key for t.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

type fileBackend struct {
	path string
}

func (b *fileBackend) load() (document, error) {
	var doc document
	if _, err := fileutil.ReadJSON(b.path, &doc); err != nil {
		return document{}, err
	}
	return doc, nil
}

func (b *fileBackend) save(doc document) error {
	return fileutil.WriteJSON(b.path, doc)
}

type memoryBackend struct {
	doc document
}

func (b *memoryBackend) load() (document, error) {
	doc := b.doc
	doc.CompletedDays = make(map[string]engine.Results, len(b.doc.CompletedDays))
	for day, res := range b.doc.CompletedDays {
		doc.CompletedDays[day] = res
	}
	if b.doc.CurrentGame != nil {
		cur := *b.doc.CurrentGame
		doc.CurrentGame = &cur
	}
	return doc, nil
}

func (b *memoryBackend) save(doc document) error {
	b.doc = doc
	return nil
}
