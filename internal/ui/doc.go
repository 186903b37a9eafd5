// Package ui implements an interactive terminal chord browser using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [ChordListView] : Browse and filter the chord table
//  2. [VoicingView] : Step through a chord's voicings with a text diagram of each
//  3. [ConfirmView] : Confirm rendering every variant of the chord to the store
//  4. [RenderView] : Monitor real-time progress updates
//  5. [ResultView] : Display rendered, skipped and failed counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the RenderEngine, providing non-blocking status reporting during renders.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, t, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
