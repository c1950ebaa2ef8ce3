// Package tui provides a Bubble Tea terminal user interface for assetload.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/glassline/assetloader/internal/config"
	"github.com/glassline/assetloader/pkg/loader"
	"golang.org/x/sync/errgroup"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateLoading
	StateComplete
	StateError
)

// Level classifies a log entry for styling.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   Level
}

// itemStatus is the lifecycle position of one URL in a session.
type itemStatus int

const (
	itemPending itemStatus = iota
	itemLoaded
	itemFailed
)

type itemState struct {
	loaded    int64
	total     int64
	sizeKnown bool
	status    itemStatus
}

// ItemLine is a per-URL progress row for the verbose view.
type ItemLine struct {
	URL       string
	Loaded    int64
	Total     int64
	SizeKnown bool
	Done      bool
	Failed    bool
}

// Snapshot is a consistent view of session progress for one render.
type Snapshot struct {
	Received int64
	Loaded   int
	Failed   int
	Total    int
	Items    []ItemLine
	Logs     []LogEntry
}

// session collects progress reported from loader goroutines. Callbacks
// write into it and the UI polls a snapshot on each tick, so no message
// is sent per chunk.
type session struct {
	mu    sync.Mutex
	items map[string]*itemState
	logs  []LogEntry
}

func newSession(urls []string) *session {
	items := make(map[string]*itemState, len(urls))
	for _, u := range urls {
		items[u] = &itemState{}
	}
	return &session{items: items}
}

func (s *session) record(url string, ev loader.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[url]
	if !ok {
		return
	}
	item.loaded = ev.Loaded
	item.total = ev.Total
	item.sizeKnown = ev.SizeKnown
}

func (s *session) finish(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[url]
	if !ok {
		return
	}
	if err != nil {
		item.status = itemFailed
		s.append(LogEntry{Message: err.Error(), Level: LevelError})
		return
	}
	item.status = itemLoaded
	s.append(LogEntry{Message: url, Level: LevelSuccess})
}

func (s *session) log(level Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(LogEntry{Message: message, Level: level})
}

// append assumes s.mu is held.
func (s *session) append(entry LogEntry) {
	s.logs = append(s.logs, entry)
	if len(s.logs) > 10 {
		s.logs = s.logs[len(s.logs)-10:]
	}
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Total: len(s.items)}
	snap.Items = make([]ItemLine, 0, len(s.items))
	for url, item := range s.items {
		snap.Received += item.loaded
		switch item.status {
		case itemLoaded:
			snap.Loaded++
		case itemFailed:
			snap.Failed++
		}
		snap.Items = append(snap.Items, ItemLine{
			URL:       url,
			Loaded:    item.loaded,
			Total:     item.total,
			SizeKnown: item.sizeKnown,
			Done:      item.status == itemLoaded,
			Failed:    item.status == itemFailed,
		})
	}
	sort.Slice(snap.Items, func(i, j int) bool {
		return snap.Items[i].URL < snap.Items[j].URL
	})
	snap.Logs = append([]LogEntry(nil), s.logs...)
	return snap
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	err       error

	// Load context
	ctx    context.Context
	cancel context.CancelFunc

	// Current session, polled on ticks
	session *session
	manager *loader.Manager
	snap    Snapshot

	// Options
	verbose  bool
	useCache bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/models/ship.json https://example.com/tex/hull.bin"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  config.DefaultSettings(),
		ctx:       ctx,
		cancel:    cancel,
		useCache:  true,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// LoadDoneMsg is sent when every URL of the session has settled.
	LoadDoneMsg struct {
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateLoading {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput {
				urls := splitURLs(m.textInput.Value())
				if len(urls) == 0 {
					return m, nil
				}
				m.state = StateLoading
				m.session = newSession(urls)
				m.snap = m.session.snapshot()
				m.manager = loader.NewManager()
				sess := m.session
				m.manager.OnStart = func(string, int, int) {
					sess.log(LevelInfo, "loading started")
				}
				return m, tea.Batch(m.startLoads(urls), m.spinner.Tick, m.tickProgress())
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "c":
			if m.state == StateInput {
				m.useCache = !m.useCache
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new session
				m.state = StateInput
				m.err = nil
				m.session = nil
				m.manager = nil
				m.snap = Snapshot{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case LoadDoneMsg:
		// A cancelled session still delivers its message once the group
		// drains. Only the active session may change state.
		if m.state != StateLoading {
			return m, nil
		}
		if m.session != nil {
			m.snap = m.session.snapshot()
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.session != nil && m.state == StateLoading {
			m.snap = m.session.snapshot()

			var percent float64
			if m.snap.Total > 0 {
				percent = float64(m.snap.Loaded+m.snap.Failed) / float64(m.snap.Total)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// startLoads runs the whole session in the background and reports back
// with a single LoadDoneMsg.
func (m Model) startLoads(urls []string) tea.Cmd {
	ctx := m.ctx
	sess := m.session
	manager := m.manager

	settings := *m.settings
	settings.CacheEnabled = m.useCache

	return func() tea.Msg {
		fl, err := settings.NewLoader(manager)
		if err != nil {
			return LoadDoneMsg{Err: err}
		}
		fl.SetContext(ctx)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(settings.MaxConcurrentLoads)

		for _, url := range urls {
			url := url // capture
			g.Go(func() error {
				done := make(chan error, 1)
				fl.Load(url,
					func(any) { done <- nil },
					func(ev loader.ProgressEvent) { sess.record(url, ev) },
					func(err error) { done <- err },
				)
				select {
				case <-gctx.Done():
					return gctx.Err()
				case err := <-done:
					sess.finish(url, err)
					return nil
				}
			})
		}

		return LoadDoneMsg{Err: g.Wait()}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Asset Loader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Load resources with caching, coalescing and progress"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter URLs (space or comma separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	// Options
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	cacheCheck := "[ ]"
	if m.useCache {
		cacheCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Per-URL progress (v)\n", verboseCheck))
	b.WriteString(fmt.Sprintf("  %s Result cache (c)\n", cacheCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Response type: %s", m.settings.ResponseType)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewLoading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Loading %d resource(s)...", m.snap.Total)))
	b.WriteString("\n\n")

	// Progress bar over settled items
	var percent float64
	if m.snap.Total > 0 {
		percent = float64(m.snap.Loaded+m.snap.Failed) / float64(m.snap.Total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Items: %d/%d | Failed: %d | Received: %.2f MB",
		m.snap.Loaded+m.snap.Failed,
		m.snap.Total,
		m.snap.Failed,
		float64(m.snap.Received)/1024/1024,
	)))
	b.WriteString("\n\n")

	if m.verbose {
		b.WriteString(m.renderItems())
		b.WriteString("\n")
	}

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"Load Complete\n\n"+
			"Loaded: %d\n"+
			"Failed: %d\n"+
			"Size: %.2f MB",
		m.snap.Loaded,
		m.snap.Failed,
		float64(m.snap.Received)/1024/1024,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

// renderItems shows one progress row per URL.
func (m Model) renderItems() string {
	var b strings.Builder

	for _, item := range m.snap.Items {
		var line string
		switch {
		case item.Failed:
			line = errorStyle.Render("x " + item.URL)
		case item.Done:
			line = successStyle.Render("+ " + item.URL)
		case item.SizeKnown:
			pct := float64(item.Loaded) / float64(item.Total) * 100
			line = urlStyle.Render(fmt.Sprintf("~ %s (%.0f%%)", item.URL, pct))
		default:
			line = urlStyle.Render(fmt.Sprintf("~ %s (%d bytes)", item.URL, item.Loaded))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.snap.Logs {
		var style lipgloss.Style
		prefix := "*"
		switch log.Level {
		case LevelError:
			style = errorStyle
			prefix = "x"
		case LevelWarning:
			style = warningStyle
			prefix = "!"
		case LevelSuccess:
			style = successStyle
			prefix = "+"
		case LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start | v: per-URL progress | c: cache | esc: quit"
	case StateLoading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new session | q: quit"
	}
	return ""
}

// splitURLs breaks the input line into individual URLs.
func splitURLs(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})

	var urls []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
