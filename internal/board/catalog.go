package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	manifestFile = "index.json"
	dateLayout   = "2006-01-02"
)

// Manifest describes a directory of daily boards.
type Manifest struct {
	// StartDate is the local calendar day board 1 is played, YYYY-MM-DD.
	StartDate  string `json:"startDate"`
	BoardCount int    `json:"boardCount"`
}

// Catalog serves boards from a directory holding index.json and <id>.json
// files.
type Catalog struct {
	dir      string
	manifest Manifest
}

// OpenCatalog reads and checks the manifest in dir.
func OpenCatalog(dir string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read board manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse board manifest: %w", err)
	}
	if m.BoardCount <= 0 {
		return nil, fmt.Errorf("board manifest: boardCount must be positive, got %d", m.BoardCount)
	}
	if _, err := time.Parse(dateLayout, m.StartDate); err != nil {
		return nil, fmt.Errorf("board manifest: startDate: %w", err)
	}

	return &Catalog{dir: dir, manifest: m}, nil
}

// Manifest returns the catalog manifest.
func (c *Catalog) Manifest() Manifest {
	return c.manifest
}

// IDForDate returns the board scheduled for the calendar day of t, in t's
// location. Boards cycle from 1 starting at StartDate; days before it get
// board 1.
func (c *Catalog) IDForDate(t time.Time) int {
	start, _ := time.ParseInLocation(dateLayout, c.manifest.StartDate, t.Location())
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	// Rounding absorbs DST shifts between the two midnights.
	days := int(math.Round(today.Sub(start).Hours() / 24))
	if days < 0 {
		return 1
	}
	return days%c.manifest.BoardCount + 1
}

// Load reads and validates board id.
func (c *Catalog) Load(id int) (*Board, error) {
	if id < 1 || id > c.manifest.BoardCount {
		return nil, fmt.Errorf("board %d is outside the catalog (1-%d)", id, c.manifest.BoardCount)
	}
	return LoadFile(filepath.Join(c.dir, strconv.Itoa(id)+".json"))
}

// LoadFile reads and validates a single board file.
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}

	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse board %s: %w", filepath.Base(path), err)
	}
	if err := Validate(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// IsNotExist reports whether err came from a missing catalog file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
