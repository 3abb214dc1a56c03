// Package models defines the domain entities of the songbook catalog.
//
// The package contains three groups of types:
//
// 1. Stored entities, serialized as JSON into the key-value store
//   - [Song] : A lyrics record with composer, tags and demo label
//   - [AudioReference] : How a song's audio is stored (file payload or URL) keyed by song ID
//
// 2. Inputs for repository mutations
//   - [SongDraft] : Fields for a new song, with tags given as a list or comma-separated text
//   - [SongPatch] : Optional field overrides merged onto an existing song by [Song.Merge]
//
// 3. Read views
//   - [SongDetail] : A song with its audio reference attached
//
// [SeedSongs] returns the records written on first run.
package models
