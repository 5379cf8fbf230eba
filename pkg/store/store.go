// Package store persists conversion runs: one directory per run holding the
// exchange file and its explanation report, plus a history.json index with
// the newest run first.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDir is the output root when none is configured.
	DefaultDir = "outputs/runs"

	StepFile    = "converted.step"
	ReportFile  = "explanation.md"
	HistoryFile = "history.json"

	StatusSuccess = "success"
)

// Run is what a conversion hands to the store.
type Run struct {
	FileName            string
	Step                string // rendered exchange file
	Report              string // markdown
	Status              string // defaults to StatusSuccess
	PlanarSurfaces      int
	CylindricalFeatures int
}

// Record is one history entry.
type Record struct {
	ID                  string `json:"id"`
	FileName            string `json:"fileName"`
	Date                string `json:"date"` // YYYY-MM-DD
	Time                string `json:"time"` // HH:MM
	Status              string `json:"status"`
	StepPath            string `json:"step_path"`
	ReportPath          string `json:"report_path"`
	PlanarSurfaces      int    `json:"planarSurfaces"`
	CylindricalFeatures int    `json:"cylindricalFeatures"`
}

// Store writes runs below a root directory. A Store serializes its own
// history updates; separate processes sharing a root are not coordinated.
type Store struct {
	root  string
	now   func() time.Time
	newID func() string
	log   *slog.Logger

	mu sync.Mutex
}

type Option func(*Store)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the random run id generator.
func WithIDs(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Store rooted at root, or at DefaultDir when root is blank.
func New(root string, opts ...Option) *Store {
	if strings.TrimSpace(root) == "" {
		root = DefaultDir
	}
	s := &Store{
		root:  root,
		now:   time.Now,
		newID: uuid.NewString,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the output directory.
func (s *Store) Root() string { return s.root }

// SaveRun writes the run's artifacts and prepends its record to the history.
func (s *Store) SaveRun(run Run) (Record, error) {
	id := s.newID()
	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Record{}, &OpError{Op: "store.mkdir", Kind: KindIO, Path: dir, Err: err}
	}

	stepPath := filepath.Join(dir, StepFile)
	if err := writeAtomic(stepPath, []byte(run.Step)); err != nil {
		return Record{}, err
	}
	reportPath := filepath.Join(dir, ReportFile)
	if err := writeAtomic(reportPath, []byte(run.Report)); err != nil {
		return Record{}, err
	}

	status := run.Status
	if status == "" {
		status = StatusSuccess
	}
	ts := s.now()
	rec := Record{
		ID:                  id,
		FileName:            run.FileName,
		Date:                ts.Format("2006-01-02"),
		Time:                ts.Format("15:04"),
		Status:              status,
		StepPath:            stepPath,
		ReportPath:          reportPath,
		PlanarSurfaces:      run.PlanarSurfaces,
		CylindricalFeatures: run.CylindricalFeatures,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return Record{}, err
	}
	history = append([]Record{rec}, history...)
	b, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return Record{}, &OpError{Op: "store.marshal", Kind: KindIO, Path: s.historyPath(), Err: err}
	}
	if err := writeAtomic(s.historyPath(), b); err != nil {
		return Record{}, err
	}

	s.log.Info("store.run.saved", "id", id, "file", run.FileName, "dir", dir)
	return rec, nil
}

// History returns all records, newest first. A missing history is empty.
func (s *Store) History() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Find returns the record with the given id.
func (s *Store) Find(id string) (Record, error) {
	history, err := s.History()
	if err != nil {
		return Record{}, err
	}
	for _, r := range history {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, &OpError{Op: "store.find", Kind: KindNotFound, Path: id, Err: ErrNotFound}
}

func (s *Store) historyPath() string {
	return filepath.Join(s.root, HistoryFile)
}

// load reads the history; callers hold mu. A history that does not parse is
// reported rather than silently replaced.
func (s *Store) load() ([]Record, error) {
	path := s.historyPath()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, &OpError{Op: "store.read", Kind: KindIO, Path: path, Err: err}
	}
	var out []Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, &OpError{Op: "store.decode", Kind: KindCorrupt, Path: path, Err: err}
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

// writeAtomic writes to a temporary file and renames it into place.
func writeAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &OpError{Op: "store.mkdir", Kind: KindIO, Path: filepath.Dir(path), Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return &OpError{Op: "store.write", Kind: KindIO, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &OpError{Op: "store.rename", Kind: KindIO, Path: path, Err: err}
	}
	return nil
}
