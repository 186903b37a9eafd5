package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/guitartube/internal/diagram"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/desertthunder/guitartube/internal/variants"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ChordListView ViewState = iota
	VoicingView
	ConfirmView
	RenderView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.RenderEngine
	opts         tasks.BulkRenderOpts
	logger       *log.Logger
	width        int
	height       int
	chordList    list.Model
	voicingList  list.Model
	selected     string
	theme        models.Theme
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.BulkRenderResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. opts configures the renders started from the
// voicing view.
func NewModel(ctx context.Context, engine *tasks.RenderEngine, opts tasks.BulkRenderOpts, logger *log.Logger) *Model {
	return &Model{
		ctx:         ctx,
		view:        ChordListView,
		engine:      engine,
		opts:        opts,
		logger:      logger,
		chordList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		voicingList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		theme:       models.ThemeLight,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by loading the chord table.
func (m *Model) Init() tea.Cmd {
	return m.loadChords()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chordList.SetSize(msg.Width-4, msg.Height-8)
		m.voicingList.SetSize(m.listWidth(), msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ChordListView:
			return m.handleChordListKeys(msg)
		case VoicingView:
			return m.handleVoicingKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case RenderView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgChordsLoaded:
		data := msg.data.(chordsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(data.items))
		for i, item := range data.items {
			items[i] = item
		}
		m.chordList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.chordList.Title = "Chords"
		m.chordList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgVoicingsLoaded:
		data := msg.data.(voicingsLoaded)
		if data.err != nil {
			m.err = data.err
			m.view = ChordListView
			return m, nil
		}
		m.selected = data.name
		items := make([]list.Item, len(data.voicings))
		for i, v := range data.voicings {
			items[i] = voicingItem{shape: v}
		}
		m.voicingList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.voicingList.Title = fmt.Sprintf("Voicings of %s", data.name)
		m.voicingList.SetShowHelp(false)
		m.voicingList.SetSize(m.listWidth(), m.height-8)
		m.view = VoicingView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgRenderComplete:
		data := msg.data.(renderComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		if data.err != nil {
			m.logger.Error("render failed", "chord", m.selected, "error", data.err)
		} else {
			m.logger.Info("render complete", "chord", m.selected,
				"rendered", data.result.Rendered, "skipped", data.result.Skipped, "failed", data.result.Failed)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ChordListView:
		return m.renderChordList()
	case VoicingView:
		return m.renderVoicings()
	case ConfirmView:
		return m.renderConfirm()
	case RenderView:
		return m.renderProgress()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleChordListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chordList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.chordList, cmd = m.chordList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.chordList.SelectedItem().(chordItem); ok {
			return m, m.loadVoicings(item.name)
		}
	}

	var cmd tea.Cmd
	m.chordList, cmd = m.chordList.Update(msg)
	return m, cmd
}

func (m *Model) handleVoicingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ChordListView
		return m, nil
	case key.Matches(msg, m.keys.theme):
		m.theme = otherTheme(m.theme)
		return m, nil
	case key.Matches(msg, m.keys.render):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.voicingList, cmd = m.voicingList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		m.view = VoicingView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = RenderView
		return m, m.startRender()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = VoicingView
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ChordListView:
		m.chordList, cmd = m.chordList.Update(msg)
	case VoicingView:
		m.voicingList, cmd = m.voicingList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadChords() tea.Cmd {
	resolver := m.engine.Resolver()
	return func() tea.Msg {
		names := resolver.Names()
		items := make([]chordItem, 0, len(names))
		for _, name := range names {
			voicings, err := resolver.Voicings(name)
			if err != nil {
				return chordsLoadedMsg(nil, err)
			}
			items = append(items, chordItem{name: name, voicings: len(voicings)})
		}
		return chordsLoadedMsg(items, nil)
	}
}

func (m *Model) loadVoicings(name string) tea.Cmd {
	resolver := m.engine.Resolver()
	return func() tea.Msg {
		voicings, err := resolver.Voicings(name)
		return voicingsLoadedMsg(name, voicings, err)
	}
}

func (m *Model) startRender() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.done = done
	m.progress = tasks.ProgressUpdate{}

	name := m.selected
	go func() {
		result, err := m.engine.BulkRender(m.ctx, progress, []string{name}, m.opts)
		close(progress)
		done <- renderCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return renderCompleteMsg(m.result, m.err)
		}

		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) listWidth() int {
	return max(m.width/2-2, 20)
}

func (m *Model) selectedShape() (models.ChordShape, bool) {
	item, ok := m.voicingList.SelectedItem().(voicingItem)
	return item.shape, ok
}

func (m *Model) renderChordList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.chordList.View(), helpView)
}

func (m *Model) renderVoicings() string {
	detail := styles.help.Render("No voicing selected")
	if shape, ok := m.selectedShape(); ok {
		detail = m.renderDetail(shape)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.voicingList.View(), "  ", detail)
	helpKeys := []key.Binding{m.keys.render, m.keys.theme, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail(shape models.ChordShape) string {
	text, err := diagram.RenderText(shape)
	if err != nil {
		return styles.err.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(styles.diagram.Render(strings.TrimRight(text, "\n")))
	b.WriteString("\n")
	if k, err := variants.BuildKey(shape.Name(), shape.PositionType(), shape.BaseFret(), m.theme); err == nil {
		b.WriteString(styles.help.Render(fmt.Sprintf("key: %s%s", k, variants.Extension)))
	}
	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Render every variant of %s?", m.selected))
	info := fmt.Sprintf("\nPosition types: %s\nFrets: %v\n", strings.Join(m.positionTypes(), ", "), m.frets())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderProgress() string {
	title := styles.title.Render(fmt.Sprintf("Rendering %s", m.selected))

	var phase string
	switch m.progress.Phase {
	case tasks.EnumerateVariants:
		phase = fmt.Sprintf("Enumerated %d variants", m.progress.Total)
	case tasks.RenderVariants:
		phase = fmt.Sprintf("Rendering variants (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.WriteManifest:
		phase = "Writing manifest..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Render failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Render Complete!")
	info := fmt.Sprintf("\nVariants: %d\nRendered: %d\nSkipped: %d",
		m.result.TotalVariants, m.result.Rendered, m.result.Skipped)

	var failed string
	if m.result.Failed > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("Failed to render %d variants:", m.result.Failed))
		for _, r := range m.result.Results {
			if r.Status == tasks.StatusFailed {
				failed += fmt.Sprintf("\n  • %s: %v", r.Key, r.Error)
			}
		}
	}
	if m.result.ManifestPath != "" {
		info += "\nManifest: " + m.result.ManifestPath
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

func (m *Model) positionTypes() []string {
	if len(m.opts.PositionTypes) == 0 {
		return []string{models.PositionOpen, models.PositionBarre}
	}
	return m.opts.PositionTypes
}

func (m *Model) frets() []int {
	if len(m.opts.Frets) == 0 {
		return []int{0}
	}
	return m.opts.Frets
}

func otherTheme(t models.Theme) models.Theme {
	if t == models.ThemeDark {
		return models.ThemeLight
	}
	return models.ThemeDark
}

// Run starts the TUI program and blocks until the user quits.
func Run(ctx context.Context, engine *tasks.RenderEngine, opts tasks.BulkRenderOpts, logger *log.Logger) error {
	m := NewModel(ctx, engine, opts, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return m.err
}
