package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/subview/internal/logging"
	"github.com/mgpai22/subview/internal/playback"
	"github.com/mgpai22/subview/internal/subtitle"
)

const (
	// refresh rate of the clock readout, independent of the driver's tick
	refreshInterval = playback.TickInterval

	headerHeight = 6
	footerHeight = 2
	minListRows  = 3
)

// Options configures the display.
type Options struct {
	AutoFollow    bool
	Autostart     bool
	OffsetStepMs  int64
	OffsetLimitMs int64
	Logger        *logging.Logger
}

type activeChangedMsg playback.Transition

type refreshMsg time.Time

type startMsg struct{}

// Model renders the transcript and forwards user controls to the driver.
//
// The driver owns playback; the model owns the auto-follow flag, which keeps
// the active record in view until the user scrolls by hand.
type Model struct {
	driver  *playback.Driver
	records []subtitle.Record
	changes chan playback.Transition
	logger  *logging.Logger

	cursor int
	top    int
	follow bool

	stepMs    int64
	limitMs   int64
	autostart bool

	width  int
	height int
	err    error
}

// NewModel wires a model to driver. It subscribes to active id changes.
func NewModel(driver *playback.Driver, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	m := &Model{
		driver:    driver,
		records:   driver.Records(),
		changes:   make(chan playback.Transition, 1),
		logger:    logger,
		follow:    opts.AutoFollow,
		stepMs:    opts.OffsetStepMs,
		limitMs:   opts.OffsetLimitMs,
		autostart: opts.Autostart,
		width:     80,
		height:    24,
	}
	if idx, ok := m.activeIndex(); ok {
		m.cursor = idx
	}

	driver.Subscribe(func(tr playback.Transition) {
		// the model reads ActiveIndex() when woken, so a pending wakeup is enough
		select {
		case m.changes <- tr:
		default:
		}
	})
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.changes), refresh()}
	if m.autostart {
		cmds = append(cmds, func() tea.Msg { return startMsg{} })
	}
	return tea.Batch(cmds...)
}

func waitForChange(ch <-chan playback.Transition) tea.Cmd {
	return func() tea.Msg {
		return activeChangedMsg(<-ch)
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollTo(m.cursor)
		return m, nil

	case activeChangedMsg:
		if m.follow {
			if idx, ok := m.activeIndex(); ok {
				m.cursor = idx
				m.scrollTo(idx)
			}
		}
		return m, waitForChange(m.changes)

	case refreshMsg:
		return m, refresh()

	case startMsg:
		m.start()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case " ", "space", "s":
		m.start()
	case "x":
		m.driver.Stop()
	case "enter":
		m.seek()
	case "+", "=":
		m.adjust(m.driver.Offset() + m.stepMs)
	case "-", "_":
		m.adjust(m.driver.Offset() - m.stepMs)
	case "0":
		m.adjust(0)
	case "f":
		m.follow = true
		if idx, ok := m.activeIndex(); ok {
			m.cursor = idx
			m.scrollTo(idx)
		}
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.listRows())
	case "pgdown":
		m.moveCursor(m.listRows())
	case "home", "g":
		m.moveCursor(-len(m.records))
	case "end", "G":
		m.moveCursor(len(m.records))
	}
	return nil
}

// start restarts playback so the current trim takes effect.
func (m *Model) start() {
	if err := m.driver.Start(); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.logger.Infow("Playback started", "trim_ms", m.driver.Offset())
}

func (m *Model) seek() {
	if len(m.records) == 0 {
		return
	}
	rec := m.records[m.cursor]
	if err := m.driver.SeekIndex(m.cursor); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.follow = true
	m.logger.Infow("Seek", "record", rec.ID, "start", rec.StartTime)
}

func (m *Model) adjust(ms int64) {
	if ms > m.limitMs {
		ms = m.limitMs
	}
	if ms < -m.limitMs {
		ms = -m.limitMs
	}
	m.driver.AdjustOffset(ms)
}

// moveCursor is a manual interaction and switches auto-follow off.
func (m *Model) moveCursor(delta int) {
	if len(m.records) == 0 {
		return
	}
	m.follow = false
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.records) {
		m.cursor = len(m.records) - 1
	}
	m.scrollTo(m.cursor)
}

func (m *Model) activeIndex() (int, bool) {
	return m.driver.ActiveIndex()
}

func (m *Model) listRows() int {
	rows := m.height - headerHeight - footerHeight
	if rows < minListRows {
		rows = minListRows
	}
	return rows
}

// scrollTo adjusts the first visible row so idx is on screen.
func (m *Model) scrollTo(idx int) {
	rows := m.listRows()
	if idx < m.top {
		m.top = idx
	}
	if idx >= m.top+rows {
		m.top = idx - rows + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n\n")
	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(
		"[space] start  [x] stop  [enter] seek  [+/-] trim  [0] reset  [f] follow  [q] quit",
	))
	return b.String()
}

func (m *Model) headerView() string {
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	idx, ok := m.activeIndex()
	if !ok {
		return subtitleStyle.Width(width).Render(placeholderStyle.Render("No subtitle yet"))
	}
	return subtitleStyle.Width(width).Render(m.records[idx].Text)
}

func (m *Model) statusView() string {
	state := stoppedStyle.Render("■ " + m.driver.State().String())
	if m.driver.Running() {
		state = runningStyle.Render("▶ running")
	}

	follow := "off"
	if m.follow {
		follow = "on"
	}

	status := fmt.Sprintf("  %s  trim %+dms  follow %s  %d subtitles",
		subtitle.FormatMillis(m.driver.Elapsed()),
		m.driver.Offset(),
		follow,
		len(m.records),
	)
	line := state + statusStyle.Render(status)
	if m.err != nil {
		line += "  " + stoppedStyle.Render(m.err.Error())
	}
	return line
}

func (m *Model) listView() string {
	if len(m.records) == 0 {
		return placeholderStyle.Render("empty subtitle file")
	}

	activeIdx, hasActive := m.activeIndex()
	rows := m.listRows()
	end := m.top + rows
	if end > len(m.records) {
		end = len(m.records)
	}

	lines := make([]string, 0, rows)
	for i := m.top; i < end; i++ {
		r := m.records[i]

		marker := "  "
		if i == m.cursor {
			marker = cursorLineStyle.Render("> ")
		}

		text := r.Text
		if limit := m.width - 24; limit > 1 && len([]rune(text)) > limit {
			text = string([]rune(text)[:limit-1]) + "…"
		}

		line := fmt.Sprintf("%5d %s %s", r.ID, timeStyle.Render(r.StartTime), text)
		if hasActive && i == activeIdx {
			line = activeLineStyle.Render(fmt.Sprintf("%5d %s %s", r.ID, r.StartTime, text))
		}
		lines = append(lines, marker+line)
	}
	return strings.Join(lines, "\n")
}
