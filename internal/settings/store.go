package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"station/internal/logging"
)

var (
	// ErrLoad wraps I/O failures other than a missing file while loading.
	ErrLoad = errors.New("load settings")
	// ErrSave wraps failures writing the settings file.
	ErrSave = errors.New("save settings")
	// ErrNotLoaded is returned by operations that need a loaded document.
	ErrNotLoaded = errors.New("settings not loaded")
)

// LoadStatus describes how Load produced its document.
type LoadStatus string

const (
	// LoadMissing means no settings file existed and defaults were used.
	LoadMissing LoadStatus = "missing"
	// LoadDecoded means the file was read, migrated, and merged onto defaults.
	LoadDecoded LoadStatus = "decoded"
	// LoadRecovered means the file was corrupted, moved aside, and defaults
	// were used.
	LoadRecovered LoadStatus = "recovered"
)

// State is the store lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoaded        State = "loaded"
	StateRecovered     State = "recovered"
)

// LoadResult reports the outcome of Load.
type LoadResult struct {
	Document   Document
	Status     LoadStatus
	BackupPath string
	Migrated   []string
	Sanitized  []string
}

type readOutcome int

const (
	outcomeMissing readOutcome = iota
	outcomeDecoded
	outcomeRecovered
)

// Store owns the settings document for one settings file. All methods are
// safe for concurrent use; calls are serialized so request handlers observe
// them one at a time.
type Store struct {
	mu sync.Mutex

	path         string
	files        FileStore
	logger       *slog.Logger
	observer     Observer
	defaultTheme Theme
	newID        func() string

	current Document
	state   State
}

// Option customizes a Store.
type Option func(*Store)

// WithFileStore replaces the filesystem-backed FileStore.
func WithFileStore(files FileStore) Option {
	return func(s *Store) {
		if files != nil {
			s.files = files
		}
	}
}

// WithLogger sets the logger used for recoverable events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "settings")
	}
}

// WithObserver registers a lifecycle observer.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithDefaultTheme sets the theme used for freshly constructed documents.
func WithDefaultTheme(theme Theme) Option {
	return func(s *Store) {
		s.defaultTheme = theme
	}
}

// WithIDGenerator overrides the identifier source used by EnsureID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns an uninitialized store pinned to path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		files:    DiskStore{},
		logger:   logging.NewComponentLogger(nil, "settings"),
		observer: nopObserver{},
		newID:    uuid.NewString,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.defaults()
	return s
}

// Open constructs a store and loads path.
func Open(path string, opts ...Option) (*Store, LoadResult, error) {
	s := NewStore(path, opts...)
	res, err := s.Load()
	if err != nil {
		return nil, LoadResult{}, err
	}
	return s, res, nil
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns a copy of the current document.
func (s *Store) Current() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Load rebuilds the document from the settings file on top of fresh
// defaults and makes it current. A corrupted file is moved aside and
// defaults are used; only I/O failures return an error.
func (s *Store) Load() (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load()
	if err != nil {
		return LoadResult{}, err
	}
	s.current = res.Document.Clone()
	s.state = stateFor(res.Status)
	return res, nil
}

// Reload loads the settings file and merges the result onto the current
// in-memory document rather than onto defaults, then returns the current
// document.
func (s *Store) Reload() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load()
	if err != nil {
		return s.current.Clone(), err
	}
	s.current.Apply(res.Document.AsPartial())
	s.state = stateFor(res.Status)
	return s.current.Clone(), nil
}

// Save writes the current document to the settings file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUninitialized {
		return ErrNotLoaded
	}
	return s.save()
}

// ApplyUpdate merges p onto the current document and saves it. Updates that
// leave canonical fields invalid are rejected with ErrInvalidSettings and the
// document is left unchanged. The file field always stays pinned to the
// store path.
func (s *Store) ApplyUpdate(p Partial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUninitialized {
		return ErrNotLoaded
	}

	if len(p.Invalid) > 0 {
		s.observer.UpdateRejected()
		return fmt.Errorf("%w: wrong type for %s", ErrInvalidSettings, strings.Join(p.InvalidKeys(), ", "))
	}
	p = s.migrate(p)

	candidate := Merge(s.current, p)
	candidate.File = s.path
	if err := candidate.Validate(); err != nil {
		s.observer.UpdateRejected()
		return err
	}
	s.current = candidate
	return s.save()
}

// EnsureID assigns a fresh identifier when the document has none and saves
// it. The current identifier is returned either way.
func (s *Store) EnsureID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUninitialized {
		return "", ErrNotLoaded
	}
	if strings.TrimSpace(s.current.ID) != "" {
		return s.current.ID, nil
	}
	s.current.ID = s.newID()
	s.logger.Info("assigned settings identifier", logging.String("id", s.current.ID))
	if err := s.save(); err != nil {
		return s.current.ID, err
	}
	return s.current.ID, nil
}

func (s *Store) defaults() Document {
	return New(s.path, s.defaultTheme)
}

func (s *Store) load() (LoadResult, error) {
	partial, outcome, backup, err := s.read()
	if err != nil {
		return LoadResult{}, err
	}

	res := LoadResult{Document: s.defaults()}
	switch outcome {
	case outcomeMissing:
		res.Status = LoadMissing
		s.logger.Debug("settings file not found; using defaults", logging.String("path", s.path))
	case outcomeRecovered:
		res.Status = LoadRecovered
		res.BackupPath = backup
	case outcomeDecoded:
		res.Status = LoadDecoded
		migrated, applied := Migrate(partial)
		s.logMigrated(applied)
		res.Migrated = applied
		res.Document.Apply(migrated)
		res.Document.File = s.path
		res.Sanitized = append(partial.InvalidKeys(), sanitize(&res.Document, s.defaults())...)
		if len(res.Sanitized) > 0 {
			logging.WarnWithContext(s.logger, "settings file held invalid values; defaults restored", "settings_values_reset",
				logging.String("path", s.path),
				logging.String("fields", strings.Join(res.Sanitized, ",")),
				logging.String(logging.FieldImpact, "affected settings revert to defaults"),
				logging.String(logging.FieldErrorHint, "update the settings again from the UI"),
			)
		}
	}
	s.observer.Loaded(res.Status)
	return res, nil
}

// read runs FileStore.Read and SettingsCodec.Decode, folding corruption into
// the recovered outcome. The returned error is always a fatal I/O failure.
func (s *Store) read() (Partial, readOutcome, string, error) {
	data, ok, err := s.files.Read(s.path)
	if err != nil {
		return Partial{}, outcomeMissing, "", fmt.Errorf("%w: read %s: %w", ErrLoad, s.path, err)
	}
	if !ok {
		return Partial{}, outcomeMissing, "", nil
	}

	partial, err := Decode(data)
	if err == nil {
		return partial, outcomeDecoded, "", nil
	}

	var corrupt *CorruptionError
	if !errors.As(err, &corrupt) {
		return Partial{}, outcomeMissing, "", fmt.Errorf("%w: decode %s: %w", ErrLoad, s.path, err)
	}
	corrupt.Path = s.path

	backup, backupErr := s.files.Backup(s.path)
	if backupErr != nil {
		return Partial{}, outcomeMissing, "", fmt.Errorf("%w: back up corrupted %s: %w", ErrLoad, s.path, backupErr)
	}
	logging.WarnWithContext(s.logger, "settings file corrupted; moved aside and reset to defaults", "settings_corrupt_recovered",
		logging.String("path", s.path),
		logging.String("backup_path", backup),
		logging.Error(corrupt),
		logging.String(logging.FieldImpact, "settings revert to defaults until updated"),
		logging.String(logging.FieldErrorHint, "inspect the .bak file to recover previous values"),
	)
	return Partial{}, outcomeRecovered, backup, nil
}

// migrate renames legacy keys in an update forward before it is merged.
func (s *Store) migrate(p Partial) Partial {
	migrated, applied := Migrate(p)
	s.logMigrated(applied)
	return migrated
}

func (s *Store) logMigrated(keys []string) {
	for _, key := range keys {
		s.observer.Migrated(key)
		s.logger.Info("migrated legacy settings field",
			logging.String("legacy_key", key),
			logging.String("path", s.path))
	}
}

func (s *Store) save() error {
	data, err := Encode(s.current)
	if err != nil {
		s.observer.Saved(err)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := s.files.Write(s.path, data); err != nil {
		s.observer.Saved(err)
		logging.ErrorWithContext(s.logger, "failed to write settings file", "settings_save_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the settings directory"),
		)
		return fmt.Errorf("%w: write %s: %w", ErrSave, s.path, err)
	}
	s.observer.Saved(nil)
	s.logger.Debug("settings saved", logging.String("path", s.path))
	return nil
}

func stateFor(status LoadStatus) State {
	if status == LoadRecovered {
		return StateRecovered
	}
	return StateLoaded
}

// sanitize restores defaults for canonical fields whose on-disk values fall
// outside their allowed range and returns the affected field names.
func sanitize(d *Document, defaults Document) []string {
	var fixed []string
	if d.Theme != ThemeLight && d.Theme != ThemeDark {
		d.Theme = defaults.Theme
		fixed = append(fixed, "theme")
	}
	if d.StdoutMaxSize < 0 {
		d.StdoutMaxSize = defaults.StdoutMaxSize
		fixed = append(fixed, "stdoutMaxSize")
	}
	return fixed
}
