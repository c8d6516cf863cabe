// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "model/"

// Errors returned by Store.
var (
	ErrNotFound       = errors.New("model not found")
	ErrChecksum       = errors.New("model checksum mismatch")
	ErrInvalidName    = errors.New("invalid model name")
	ErrInvalidVersion = errors.New("invalid model version")
	ErrClosed         = errors.New("model store closed")
)

// Config contains model store settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the store in memory only (tests, ephemeral runs).
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model name (e.g. "collaborative").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing per name).
	Version int `json:"version"`

	// Fingerprint identifies the training input and configuration. A model
	// may be reused when the current input has the same fingerprint.
	Fingerprint string `json:"fingerprint"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// RatingCount is the number of ratings used for training.
	RatingCount int `json:"rating_count"`

	// MovieCount is the number of embedded movies.
	MovieCount int `json:"movie_count"`

	// UserCount is the number of users seen in training.
	UserCount int `json:"user_count"`

	// Checksum is the SHA-256 checksum of the encoded model state.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// record is the stored value format.
type record struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store manages model persistence in BadgerDB.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) a model store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("open model store: path is required unless in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func modelPrefix(name string) []byte {
	return []byte(keyPrefix + name + "/")
}

func modelKey(name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s/%010d", keyPrefix, name, version))
}

// versionFromKey parses the version suffix of a model key.
func versionFromKey(key []byte) (int, error) {
	k := string(key)
	i := strings.LastIndexByte(k, '/')
	return strconv.Atoi(k[i+1:])
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// begin checks the preconditions shared by all operations and holds the
// read lock until the returned func is called.
func (s *Store) begin(ctx context.Context, name string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	return s.mu.RUnlock, nil
}

// Save stores data as version of name. Existing versions are overwritten.
// Name, Version, Checksum, SizeBytes and SavedAt in meta are filled in.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
	done, err := s.begin(ctx, name)
	if err != nil {
		return err
	}
	defer done()
	if version < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	var value bytes.Buffer
	if err := gob.NewEncoder(&value).Encode(record{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(modelKey(name, version), value.Bytes()); err != nil {
			return fmt.Errorf("set model: %w", err)
		}
		return nil
	})
}

// Load decodes version of name into target, which must be a pointer.
// Version 0 loads the latest version.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	done, err := s.begin(ctx, name)
	if err != nil {
		return nil, err
	}
	defer done()

	if version == 0 {
		latest, ok, err := s.latest(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		version = latest
	}

	rec, err := s.get(name, version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(rec.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != rec.Metadata.Checksum {
		return nil, fmt.Errorf("%w: %s v%d: expected %s, got %s", ErrChecksum, name, version, rec.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &rec.Metadata, nil
}

// LatestVersion returns the highest stored version of name.
func (s *Store) LatestVersion(ctx context.Context, name string) (int, bool, error) {
	done, err := s.begin(ctx, name)
	if err != nil {
		return 0, false, err
	}
	defer done()
	return s.latest(name)
}

// List returns metadata for every stored version of name, oldest first.
func (s *Store) List(ctx context.Context, name string) ([]ModelMetadata, error) {
	done, err := s.begin(ctx, name)
	if err != nil {
		return nil, err
	}
	defer done()

	var out []ModelMetadata
	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := modelPrefix(name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec record
			err := it.Item().Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&rec)
			})
			if err != nil {
				return fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one version of name. Deleting a missing version is not
// an error.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	done, err := s.begin(ctx, name)
	if err != nil {
		return err
	}
	defer done()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(modelKey(name, version)); err != nil {
			return fmt.Errorf("delete model: %w", err)
		}
		return nil
	})
}

// Prune removes all but the newest keep versions of name and returns how
// many were removed. keep below 1 is treated as 1.
func (s *Store) Prune(ctx context.Context, name string, keep int) (int, error) {
	done, err := s.begin(ctx, name)
	if err != nil {
		return 0, err
	}
	defer done()

	if keep < 1 {
		keep = 1
	}

	versions, err := s.versions(name)
	if err != nil {
		return 0, err
	}
	if len(versions) <= keep {
		return 0, nil
	}

	stale := versions[:len(versions)-keep]
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, v := range stale {
			if err := txn.Delete(modelKey(name, v)); err != nil {
				return fmt.Errorf("delete model v%d: %w", v, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// versions lists stored versions of name in ascending order.
func (s *Store) versions(name string) ([]int, error) {
	var out []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := modelPrefix(name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			v, err := versionFromKey(it.Item().Key())
			if err != nil {
				return fmt.Errorf("parse key %s: %w", it.Item().Key(), err)
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func (s *Store) latest(name string) (int, bool, error) {
	versions, err := s.versions(name)
	if err != nil || len(versions) == 0 {
		return 0, false, err
	}
	return versions[len(versions)-1], true, nil
}

func (s *Store) get(name string, version int) (*record, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
		}
		if err != nil {
			return fmt.Errorf("get model: %w", err)
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
