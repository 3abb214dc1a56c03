// Package repositories implements the songbook's persistence on top of a key-value store.
//
// The catalog keeps two JSON documents: the "songs" array in insertion order and the "audioData"
// object mapping song IDs to audio references. Both are rewritten together in a single transaction
// on every mutation, so the two keys never disagree after a crash.
//
// Key Implementations:
//   - [KVStore] : SQLite-backed [Store] over the kv_store table
//   - [SongRepository] : Song CRUD, tag listing and search/filter/sort over the in-memory collection
//   - [PreferenceRepository] : Theme and view mode preferences with defaults written back on first read
//
// A [SongRepository] is constructed once per process and handed to the CLI, TUI or preview server.
// It has no teardown; closing the underlying database is the caller's job.
package repositories
