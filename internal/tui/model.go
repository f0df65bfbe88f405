// Package tui provides the Bubble Tea picture-word interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/pictoword/internal/catalog"
	"github.com/verte-zerg/pictoword/internal/coordinator"
	"github.com/verte-zerg/pictoword/internal/gallery"
	"github.com/verte-zerg/pictoword/internal/imagegen"
	"github.com/verte-zerg/pictoword/internal/model"
	"github.com/verte-zerg/pictoword/internal/picker"
	"github.com/verte-zerg/pictoword/internal/presentation"
	"github.com/verte-zerg/pictoword/internal/selection"
)

const maxPreviewCols = 48

type transitionMsg struct {
	tr coordinator.Transition
}

type frameMsg struct {
	frame int
	total int
}

type shownMsg struct{}

// Options wires a Model.
type Options struct {
	Catalog    *catalog.Catalog
	Picker     *picker.Picker
	Generator  coordinator.Generator
	Gallery    *gallery.Gallery
	ImageCount int
	Buttons    int
	Secondary  bool
	Frames     int
	Interval   time.Duration
}

// Model implements the Bubble Tea play UI. Coordinator callbacks reach it as
// messages through the sender installed with SetSender.
type Model struct {
	coord   *coordinator.Coordinator
	sel     *selection.Machine
	catalog *catalog.Catalog
	picker  *picker.Picker
	gallery *gallery.Gallery

	ctx       context.Context
	cancel    context.CancelFunc
	send      func(tea.Msg)
	buttons   int
	images    int
	secondary bool

	width  int
	height int

	state      coordinator.State
	candidates []model.WordEntry
	frame      int
	total      int
	paths      []string
	status     string

	progress progress.Model
	spinner  spinner.Model
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5B700"))
	labelStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	filledStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	buttonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#F5B700"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// New builds the model together with the coordinator and waiting sequence it drives.
func New(opts Options) *Model {
	buttons := opts.Buttons
	if buttons <= 0 {
		buttons = picker.DefaultButtons
	}
	images := opts.ImageCount
	if images <= 0 {
		images = 1
	}
	pk := opts.Picker
	if pk == nil {
		pk = picker.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		sel:       selection.New(),
		catalog:   opts.Catalog,
		picker:    pk,
		gallery:   opts.Gallery,
		ctx:       ctx,
		cancel:    cancel,
		buttons:   buttons,
		images:    images,
		secondary: opts.Secondary,
		progress:  progress.New(progress.WithDefaultGradient()),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	displays := coordinator.Displays{}
	if opts.Gallery != nil {
		displays = append(displays, opts.Gallery)
	}
	displays = append(displays, m)
	seq := presentation.New(opts.Frames, opts.Interval, m.onFrame)
	m.coord = coordinator.New(coordinator.Options{
		Selection:  m.sel,
		Generator:  opts.Generator,
		Presenter:  seq,
		Display:    displays,
		ImageCount: images,
	})
	m.coord.Subscribe(func(tr coordinator.Transition) {
		// Listeners may run inside Update; sending there would block the loop.
		go m.emit(transitionMsg{tr: tr})
	})
	m.sel.OnComplete(m.startGeneration)
	return m
}

// SetSender installs the function used to deliver asynchronous messages,
// normally (*tea.Program).Send. Call it before the program starts.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Close cancels outstanding work and waits for it to stop.
func (m *Model) Close() {
	m.cancel()
	m.coord.Close()
}

// State returns the screen currently shown.
func (m *Model) State() coordinator.State {
	return m.state
}

// Show implements coordinator.Display. It runs after the gallery saved the
// result, while the coordinator holds its delivery lock, so it must not block.
func (m *Model) Show(imagegen.Result) {
	go m.emit(shownMsg{})
}

// Clear implements coordinator.Display. The model drops its own view state on retry.
func (m *Model) Clear() {}

func (m *Model) emit(msg tea.Msg) {
	if m.send != nil {
		m.send(msg)
	}
}

func (m *Model) onFrame(frame, total int) {
	m.emit(frameMsg{frame: frame, total: total})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(60, msg.Width-8))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case transitionMsg:
		m.syncState()
		return m, nil
	case frameMsg:
		if m.state == coordinator.StateGenerating {
			m.frame = msg.frame
			m.total = msg.total
		}
		return m, nil
	case shownMsg:
		m.syncState()
		m.loadPaths()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "l":
		m.secondary = !m.secondary
		return m, nil
	}
	m.status = ""
	switch m.state {
	case coordinator.StateTitle:
		if key == "enter" || key == " " {
			m.start()
		}
	case coordinator.StateSelecting:
		switch key {
		case "tab":
			m.refreshCandidates()
		case "backspace", "r":
			m.retry()
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				m.choose(int(key[0] - '1'))
			}
		}
	case coordinator.StateGenerating, coordinator.StateViewing:
		if key == "r" || key == "enter" {
			m.retry()
		}
	}
	return m, nil
}

func (m *Model) start() {
	if err := m.coord.Start(); err != nil {
		m.fail("could not start", err)
		return
	}
	m.syncState()
}

func (m *Model) choose(index int) {
	if index < 0 || index >= len(m.candidates) {
		return
	}
	entry := m.candidates[index]
	if err := m.sel.Select(entry); err != nil {
		m.fail("could not select word", err)
		return
	}
	log.Debug().Str("slot", entry.Slot.String()).Str("word", entry.PromptText()).Msg("Selected word")
	m.syncState()
	if !m.sel.IsComplete() {
		m.refreshCandidates()
	}
}

// startGeneration runs as the selection's completion observer.
func (m *Model) startGeneration() {
	if err := m.coord.StartGeneration(m.ctx); err != nil {
		m.fail("could not start drawing", err)
	}
}

func (m *Model) retry() {
	if err := m.coord.Retry(); err != nil {
		m.fail("could not start over", err)
		return
	}
	m.syncState()
	m.refreshCandidates()
}

func (m *Model) fail(what string, err error) {
	if errors.Is(err, coordinator.ErrClosed) {
		return
	}
	log.Warn().Err(err).Msg(what)
	m.status = fmt.Sprintf("%s: %v", what, err)
}

// syncState adopts the coordinator's state. Transition messages may arrive
// out of order, so the coordinator stays the source of truth.
func (m *Model) syncState() {
	next := m.coord.State()
	if next == m.state {
		return
	}
	m.state = next
	switch next {
	case coordinator.StateSelecting:
		m.paths = nil
		m.refreshCandidates()
	case coordinator.StateGenerating:
		m.frame = 0
		m.total = 0
		m.candidates = nil
	}
}

func (m *Model) loadPaths() {
	if m.gallery == nil || m.state != coordinator.StateViewing {
		return
	}
	_, paths, err := m.gallery.Last()
	if err != nil {
		m.status = fmt.Sprintf("could not save picture: %v", err)
	}
	m.paths = paths
}

func (m *Model) refreshCandidates() {
	kind, ok := m.sel.Expected()
	if !ok || m.catalog == nil {
		m.candidates = nil
		return
	}
	m.candidates = m.picker.Pick(m.catalog.WordsForSlot(kind), m.buttons)
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.state {
	case coordinator.StateTitle:
		content = m.viewTitle()
	case coordinator.StateSelecting:
		content = m.viewSelecting()
	case coordinator.StateGenerating:
		content = m.viewGenerating()
	case coordinator.StateViewing:
		content = m.viewViewing()
	}
	if m.status != "" {
		content += "\n\n" + errorStyle.Render(truncateLine(m.status, m.width))
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) text(primary, secondary string) string {
	if m.secondary {
		return secondary
	}
	return primary
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) viewTitle() string {
	lines := []string{
		titleStyle.Render("P I C T O W O R D"),
		"",
		labelStyle.Render(m.text("세 단어로 그림을 만들어요", "Make a picture from three words")),
		"",
		pendingStyle.Render(m.text("enter 를 눌러 시작해요", "press enter to start")),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) viewSelecting() string {
	sentence := wrapStyledWords(buildSentenceWords(m.sel, m.secondary), m.contentWidth())
	label := labelStyle.Render(selection.StepLabel(m.sel.Step(), m.secondary))
	width := candidateWidth(m.candidates, m.secondary)
	buttons := make([]string, 0, len(m.candidates))
	for i, entry := range m.candidates {
		buttons = append(buttons, buttonStyle.Render(candidateLabel(i, entry, m.secondary, width)))
	}
	if len(buttons) == 0 {
		buttons = append(buttons, errorStyle.Render(m.text("고를 단어가 없어요", "no words to choose from")))
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		sentence,
		"",
		label,
		"",
		lipgloss.JoinVertical(lipgloss.Left, spaced(buttons)...),
	)
}

func (m *Model) viewGenerating() string {
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.frame) / float64(m.total)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		labelStyle.Render(m.sel.ComposeDisplaySentence(m.secondary)),
		"",
		m.spinner.View()+" "+pendingStyle.Render(m.text("그림을 그리고 있어요", "drawing your picture")),
		"",
		m.progress.ViewAs(pct),
	)
}

func (m *Model) viewViewing() string {
	res, ok := m.coord.Result()
	if !ok {
		return ""
	}
	heading := m.text("그림이 완성됐어요!", "Your picture is ready!")
	if res.Outcome == imagegen.OutcomeFallback {
		heading = m.text("이번에는 그림을 못 그렸어요", "Could not draw it this time")
	}
	lines := []string{
		labelStyle.Render(m.sel.ComposeDisplaySentence(m.secondary)),
		titleStyle.Render(heading),
		"",
	}
	if len(res.Images) > 0 {
		cols := maxPreviewCols
		if m.width > 0 {
			cols = min(cols, m.contentWidth())
		}
		if m.height > 0 {
			cols = min(cols, max(2, (m.height-8)*2))
		}
		lines = append(lines, RenderPreview(res.Images[0].Image, cols), "")
	}
	for _, p := range m.paths {
		lines = append(lines, footerStyle.Render(truncateLine(p, m.contentWidth())))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.state == coordinator.StateSelecting {
		segments = append(segments, fmt.Sprintf("Step %d/%d", min(m.sel.Step()+1, model.SlotCount), model.SlotCount))
	}
	segments = append(segments, m.text("한국어", "English"), fmt.Sprintf("%d image(s)", m.images))
	switch m.state {
	case coordinator.StateTitle:
		segments = append(segments, "enter start")
	case coordinator.StateSelecting:
		segments = append(segments, fmt.Sprintf("1-%d choose", max(1, len(m.candidates))), "tab shuffle", "r reset")
	case coordinator.StateGenerating:
		segments = append(segments, "r cancel")
	case coordinator.StateViewing:
		segments = append(segments, "r again")
	}
	segments = append(segments, "l language", "q quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func spaced(items []string) []string {
	out := make([]string, 0, len(items)*2)
	for i, item := range items {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, item)
	}
	return out
}
