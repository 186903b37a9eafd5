// Package repositories implements SQLite persistence for rendered diagrams and ingested
// chord shapes.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Deletes are soft: rows get a deleted_at timestamp and are excluded from queries by default.
//
// Key Implementations:
//   - [DiagramRepository] : rendered variant records, unique per variant key
//   - [ShapeRepository] : chord shapes ingested from tab pages, unique per name and frets
//   - [ShapeCacheAdapter] : deduplicating shape cache used by ingestion
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
