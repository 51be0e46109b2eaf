// Package snapshot persists quad stores in badger. A snapshot is a named,
// ordered run of encoded quads; loading replays them through an insert
// function, so any store variant can be rebuilt from one.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/codec"
	"github.com/wbrown/janus-quads/quads/term"
)

var (
	// ErrNotFound is returned when loading or deleting an unknown snapshot
	ErrNotFound = errors.New("snapshot not found")

	// ErrBadName is returned for empty names or names containing '/'
	ErrBadName = errors.New("invalid snapshot name")
)

const (
	dataPrefix = "snap/"
	metaPrefix = "meta/"
)

// Option configures a Store
type Option func(*config)

type config struct {
	inMemory  bool
	collector *annotations.Collector
}

// WithInMemory keeps the database in memory; the path is ignored.
func WithInMemory() Option {
	return func(c *config) { c.inMemory = true }
}

// WithCollector sends save and load events to c.
func WithCollector(c *annotations.Collector) Option {
	return func(cfg *config) { cfg.collector = c }
}

// Store holds named snapshots in a badger database
type Store struct {
	db        *badger.DB
	collector *annotations.Collector
}

// Open opens or creates the snapshot database at path.
func Open(path string, opts ...Option) (*Store, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	bopts := badger.DefaultOptions(path)
	if cfg.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{db: db, collector: cfg.collector}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

func dataKey(name string, ordinal uint64) []byte {
	return []byte(dataPrefix + name + "/" + codec.EncodeOrdinal(ordinal))
}

func namePrefix(name string) []byte {
	return []byte(dataPrefix + name + "/")
}

func metaKey(name string) []byte {
	return []byte(metaPrefix + name)
}

// Save writes seq under name, replacing any snapshot of that name. Quads
// are stored in the order seq yields them. It returns the number written.
func (s *Store) Save(name string, seq iter.Seq[quads.Quad[term.Term]]) (int, error) {
	start := time.Now()
	n, err := s.save(name, seq)
	if err != nil {
		s.fail(start, err)
		return n, err
	}
	s.collector.AddTiming(annotations.SnapshotSaved, start, map[string]any{
		"snapshot":   name,
		"quad.count": n,
	})
	return n, nil
}

func (s *Store) save(name string, seq iter.Seq[quads.Quad[term.Term]]) (int, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	if err := s.drop(name); err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	n := 0
	for q := range seq {
		if err := wb.Set(dataKey(name, uint64(n)), codec.EncodeQuad(q)); err != nil {
			return n, fmt.Errorf("failed to write quad %d of %s: %w", n, name, err)
		}
		n++
	}
	if err := wb.Set(metaKey(name), binary.AppendUvarint(nil, uint64(n))); err != nil {
		return n, fmt.Errorf("failed to write header of %s: %w", name, err)
	}
	if err := wb.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush %s: %w", name, err)
	}
	return n, nil
}

// Load replays the snapshot name through insert, in saved order. It
// returns the number of quads insert accepted.
func (s *Store) Load(name string, insert func(quads.Quad[term.Term]) bool) (int, error) {
	start := time.Now()
	n, err := s.load(name, insert)
	if err != nil {
		s.fail(start, err)
		return n, err
	}
	s.collector.AddTiming(annotations.SnapshotLoaded, start, map[string]any{
		"snapshot":   name,
		"quad.count": n,
	})
	return n, nil
}

func (s *Store) load(name string, insert func(quads.Quad[term.Term]) bool) (int, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, name)
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 1000
		opts.Prefix = namePrefix(name)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				q, err := codec.DecodeQuad(val)
				if err != nil {
					return fmt.Errorf("key %s: %w", item.Key(), err)
				}
				if insert(q) {
					n++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return n, err
}

// Count returns the number of quads saved under name.
func (s *Store) Count(name string) (int, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	var n uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var k int
			if n, k = binary.Uvarint(val); k <= 0 {
				return fmt.Errorf("corrupt header for %s", name)
			}
			return nil
		})
	})
	return int(n), err
}

// Names lists saved snapshots in name order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), metaPrefix))
		}
		return nil
	})
	return names, err
}

// Delete removes the snapshot name.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(metaKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	})
	if err != nil {
		return err
	}
	return s.drop(name)
}

func (s *Store) drop(name string) error {
	if err := s.db.DropPrefix(namePrefix(name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", name, err)
	}
	// metaKey is not a prefix: "meta/a" would also drop "meta/ab"
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(metaKey(name))
	})
}

func (s *Store) fail(start time.Time, err error) {
	s.collector.AddTiming(annotations.ErrorSnapshot, start, map[string]any{"error": err.Error()})
}
