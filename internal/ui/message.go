package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgChordsLoaded MsgKind = iota
	MsgVoicingsLoaded
	MsgProgressUpdate
	MsgRenderComplete
)

type chordsLoaded struct {
	items []chordItem
	err   error
}

type voicingsLoaded struct {
	name     string
	voicings []models.ChordShape
	err      error
}

type renderComplete struct {
	result *tasks.BulkRenderResult
	err    error
}

// chordsLoadedMsg is the constructor for [MsgChordsLoaded]
func chordsLoadedMsg(items []chordItem, err error) Msg {
	return Msg{kind: MsgChordsLoaded, data: chordsLoaded{items, err}}
}

// voicingsLoadedMsg is the constructor for [MsgVoicingsLoaded]
func voicingsLoadedMsg(name string, voicings []models.ChordShape, err error) Msg {
	return Msg{kind: MsgVoicingsLoaded, data: voicingsLoaded{name, voicings, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// renderCompleteMsg is the constructor for [MsgRenderComplete]
func renderCompleteMsg(result *tasks.BulkRenderResult, err error) Msg {
	return Msg{kind: MsgRenderComplete, data: renderComplete{result, err}}
}
