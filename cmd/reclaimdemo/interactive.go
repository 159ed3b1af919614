package main

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/reclaim"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// session is the demo resource: a named object whose construction and
// release are counted so the TUI can show the reclamation life-cycle.
type session struct {
	name    string
	gen     int32
	created time.Time
	log     *eventLog
}

var generation atomic.Int32

func newSession(name string) func() (*session, error) {
	return newLoggedSession(name, nil)
}

func newLoggedSession(name string, log *eventLog) func() (*session, error) {
	return func() (*session, error) {
		s := &session{
			name:    name,
			gen:     generation.Add(1),
			created: time.Now(),
			log:     log,
		}
		log.addf("constructed %s (gen %d)", name, s.gen)
		return s, nil
	}
}

func (s *session) Release() error {
	s.log.addf("released %s (gen %d, lived %s)", s.name, s.gen, time.Since(s.created).Round(time.Millisecond))
	return nil
}

// eventLog is a bounded, mutex-guarded event ring shared between the
// manager's hooks (sweep goroutine) and the TUI (bubbletea goroutine).
type eventLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *eventLog) addf(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...)))
	if len(l.lines) > 12 {
		l.lines = l.lines[len(l.lines)-12:]
	}
}

func (l *eventLog) tail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type tickMsg time.Time

type demoModel struct {
	mgr     *reclaim.Manager
	log     *eventLog
	input   textinput.Model
	handles map[string][]*reclaim.Handle[*session]
}

func newDemoModel(mgr *reclaim.Manager, log *eventLog) *demoModel {
	ti := textinput.New()
	ti.Placeholder = "key name"
	ti.CharLimit = 24
	ti.Width = 24
	ti.Focus()

	return &demoModel{
		mgr:     mgr,
		log:     log,
		input:   ti,
		handles: make(map[string][]*reclaim.Handle[*session]),
	}
}

func (m *demoModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			key := strings.TrimSpace(m.input.Value())
			if key == "" {
				break
			}
			m.input.SetValue("")
			h, err := reclaim.Acquire(m.mgr, key, newLoggedSession(key, m.log))
			if err != nil {
				m.log.addf("acquire %s failed: %v", key, err)
				break
			}
			m.handles[key] = append(m.handles[key], h)

		case tea.KeyCtrlD:
			// Drop one handle of the named key.
			key := strings.TrimSpace(m.input.Value())
			hs := m.handles[key]
			if len(hs) == 0 {
				m.log.addf("no open handle for %q", key)
				break
			}
			hs[len(hs)-1].Close()
			m.handles[key] = hs[:len(hs)-1]
			m.log.addf("closed one handle for %s (%d open)", key, len(hs)-1)

		case tea.KeyCtrlS:
			remaining := m.mgr.SweepNow()
			m.log.addf("manual sweep: %d keys remain", remaining)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *demoModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("reclaim demo"))
	b.WriteString("\n\n")

	keys := make([]string, 0, len(m.handles))
	for k, hs := range m.handles {
		if len(hs) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	b.WriteString(countStyle.Render(fmt.Sprintf("tracked keys: %d", m.mgr.Len())))
	b.WriteString("\n")
	if len(keys) == 0 {
		b.WriteString(helpStyle.Render("no open handles"))
		b.WriteString("\n")
	}
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			keyStyle.Render(k),
			countStyle.Render(fmt.Sprintf("(%d open handles)", len(m.handles[k])))))
	}

	b.WriteString("\n")
	for _, line := range m.log.tail() {
		if strings.Contains(line, "failed") || strings.Contains(line, "error") {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(eventStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: acquire  ctrl+d: close one handle  ctrl+s: sweep now  esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func runInteractive(interval time.Duration) error {
	log := &eventLog{}
	mgr := reclaim.New(
		reclaim.WithSweepInterval(interval),
		reclaim.WithReleaseErrorHook(func(key any, err error) {
			log.addf("release error for %v: %v", key, err)
		}),
		reclaim.WithEmptyHook(func(rt reflect.Type) {
			log.addf("registry for %s emptied", rt)
		}),
	)
	defer mgr.Close()

	model := newDemoModel(mgr, log)
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}
