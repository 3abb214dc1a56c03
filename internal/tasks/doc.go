// Package tasks runs catalog-wide operations with progress reporting.
//
// # Core Operations
//
// [CatalogEngine] provides three operations:
//
//  1. [CatalogEngine.Export] : Snapshot the whole catalog
//     - Copies every song and audio reference
//     - Returns a [Snapshot] shaped like the browser's saved state ({songs, audioData})
//
//  2. [CatalogEngine.Import] : Restore songs from a snapshot
//     - Keeps song IDs from the snapshot
//     - Skips songs whose ID already exists unless [ImportOpts.Overwrite] is set
//     - Reports per-song failures without aborting the run
//
//  3. [CatalogEngine.BulkExport] : Write one file per song
//     - Renders each song with the formatter package in a worker pool
//     - Writes an export_manifest.json summarizing the run
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate] values. Sends never block:
// updates are dropped when the channel is full.
package tasks
