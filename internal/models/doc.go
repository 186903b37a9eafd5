// Package models defines the domain values and persistence interfaces for the chord diagram engine.
//
// The package contains two categories of types:
//
// 1. Values: immutable data passed between the pure engine packages
//   - [ChordShape] : One fingering of one chord, strings ordered low E to high e
//   - [Symbol] : A fret or finger token ([Mute], [Open], or a number)
//   - [VariantKey] : Chord name, position type, fret position and [Theme] of a rendered diagram
//
// 2. Persistent Entities: database-backed records with lifecycle fields
//   - [PersistedDiagram] : A rendered variant written to an object store
//   - [PersistedShape] : A chord shape ingested from a tab page
//
// All persistent entities implement the [Model] interface providing ID, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
