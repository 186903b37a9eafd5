// Package tasks orchestrates diagram rendering and tab page ingestion with real-time
// progress reporting.
//
// # Core Operations
//
// [RenderEngine] ties the chord resolver, the renderer and a [services.Store] together:
//
//  1. [RenderEngine.Draw] : resolve a variant and render its SVG in memory
//  2. [RenderEngine.RenderVariant] : draw, write to the store under the variant key and
//     record the result through a [DiagramRecorder]
//  3. [RenderEngine.BulkRender] : render every variant of a set of chords with a worker
//     pool, a store write rate limit and an optional JSON manifest
//  4. [RenderEngine.Ingest] : fetch a tab page from a [services.TabSource], extract its
//     voicings and persist them through a [ShapeCacher]
//
// # Progress Reporting
//
// Long-running operations accept a progress channel, which may be nil. The [ProgressUpdate]
// struct contains phase, step counters, messages, and optional data for advanced UI
// rendering. Updates use select with default to prevent blocking.
//
// # Persistence
//
// [DiagramRecorder] and [ShapeCacher] are implemented by the repositories package. Both
// are optional so the engine can run without a database.
package tasks
