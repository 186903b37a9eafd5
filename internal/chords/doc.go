// Package chords resolves chord symbols to [models.ChordShape] values.
//
// Shapes come from an immutable [Table] of common voicings, from movable barre templates,
// or from tab pages the caller has already fetched. Nothing here performs I/O.
//
// Every shape a [Resolver] returns carries fingering; shapes without it are completed by
// the fingering package.
package chords
