// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package storage provides versioned persistence for trained models.
//
// Models live in BadgerDB. Each saved version is one key:
//
//	model/{name}/{version, zero-padded to 10 digits}
//
// so a prefix scan over model/{name}/ yields versions in ascending order.
// The value is a gob-encoded record holding ModelMetadata and the model
// state, itself gob-encoded and gzip-compressed. A SHA-256 checksum of the
// uncompressed state is verified on every load.
//
// # Usage Example
//
//	store, err := storage.Open(storage.Config{Path: "/data/models"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	meta := storage.ModelMetadata{Fingerprint: fp, RatingCount: len(ratings)}
//	err = store.Save(ctx, "collaborative", 3, model.State(), meta)
//
//	var state algorithms.CollaborativeState
//	meta, err := store.Load(ctx, "collaborative", 0, &state) // 0 = latest
//
//	removed, err := store.Prune(ctx, "collaborative", 3)
//
// # Thread Safety
//
// A Store is safe for concurrent use. Writes are Badger transactions, so a
// reader never observes a partially written model.
package storage
