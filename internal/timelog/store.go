// Package timelog is the timekeeping tool provider: a BadgerDB-backed store
// of time entries and the catalog tools that operate on it.
package timelog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("time entry not found")

const (
	entryPrefix = "entry/"
	dateLayout  = "2006-01-02"
)

// Entry is one logged block of time.
type Entry struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	Hours     float64   `json:"hours"`
	Note      string    `json:"note,omitempty"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// Store persists time entries in BadgerDB. Keys are "entry/<date>/<id>" so a
// prefix scan yields entries in date order.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) a store under dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = newBadgerLogger(logger)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open timelog store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// OpenInMemory opens a store with no disk persistence, for tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory timelog store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Log persists a new entry, assigning its id and creation time. A missing
// date defaults to today.
func (s *Store) Log(e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	if e.Date == "" {
		e.Date = e.CreatedAt.Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return Entry{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", e.Date)
	}

	val, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(e.Date, e.ID), val)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to store entry: %w", err)
	}
	return e, nil
}

// Filter narrows List and Sum results. Zero values match everything.
type Filter struct {
	Project string
	Since   string // YYYY-MM-DD inclusive
}

// List returns entries matching the filter, in date order.
func (s *Store) List(f Filter) ([]Entry, error) {
	if f.Since != "" {
		if _, err := time.Parse(dateLayout, f.Since); err != nil {
			return nil, fmt.Errorf("invalid since date %q (want YYYY-MM-DD)", f.Since)
		}
	}

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(entryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("corrupt entry at %s: %w", it.Item().Key(), err)
				}
				if matches(e, f) {
					entries = append(entries, e)
				}
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
	return entries, nil
}

// Sum returns the total hours of entries matching the filter.
func (s *Store) Sum(f Filter) (float64, error) {
	entries, err := s.List(f)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total, nil
}

// Delete removes the entry with the given id. Returns ErrNotFound when no
// such entry exists.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(entryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if strings.HasSuffix(string(key), "/"+id) {
				return txn.Delete(key)
			}
		}
		return ErrNotFound
	})
}

func entryKey(date, id string) []byte {
	return []byte(entryPrefix + date + "/" + id)
}

func matches(e Entry, f Filter) bool {
	if f.Project != "" && !strings.EqualFold(e.Project, f.Project) {
		return false
	}
	if f.Since != "" && e.Date < f.Since {
		return false
	}
	return true
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) badger.Logger {
	if logger == nil {
		return nil
	}
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
