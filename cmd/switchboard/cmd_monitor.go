// Package main implements the live session monitor TUI using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"switchboard/cmd/switchboard/ui"
	"switchboard/internal/logging"
	"switchboard/internal/session"
)

// monitorCmd shows a live view of stored sessions
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live view of stored sessions",
	Long: `Shows every stored session with its active domain, confidence, age, and
handoff count, refreshing as routing decisions land. Changes are picked up
from the sessions directory via filesystem notifications, with a timed
fallback for filesystems that do not deliver them.

Keys: q quit, r refresh`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	store := sessionStore()

	watcher, err := session.NewWatcher(cfg.SessionsDir())
	if err != nil {
		logging.MonitorWarn("filesystem watch unavailable, polling only: %v", err)
		watcher = nil
	}
	if watcher != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := watcher.Start(ctx); err != nil {
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	p := tea.NewProgram(newMonitorModel(store, watcher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}
	return nil
}

// monitorModel is the bubbletea model for the live session view.
type monitorModel struct {
	styles  ui.Styles
	spinner spinner.Model
	table   table.Model
	store   *session.FileStore
	watcher *session.Watcher

	lastEvent string
	sessions  int
	err       error
	width     int
	height    int
}

// Messages for tea updates
type (
	rowsMsg struct {
		rows []table.Row
		err  error
	}
	watchMsg  session.WatchEvent
	watchGone struct{}
	tickMsg   time.Time
)

func newMonitorModel(store *session.FileStore, watcher *session.Watcher) monitorModel {
	styles := ui.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	t := table.New(
		table.WithColumns(monitorColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return monitorModel{
		styles:  styles,
		spinner: sp,
		table:   t,
		store:   store,
		watcher: watcher,
	}
}

// monitorColumns sizes the table; the session key column absorbs the slack.
func monitorColumns(width int) []table.Column {
	keyWidth := width - 46
	if keyWidth < 16 {
		keyWidth = 16
	}
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "SESSION", Width: keyWidth},
		{Title: "DOMAIN", Width: 14},
		{Title: "CONF", Width: 5},
		{Title: "AGE", Width: 8},
		{Title: "HANDOFFS", Width: 8},
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), m.waitCmd(), monitorTick())
}

// refreshCmd loads the session table off the UI goroutine.
func (m monitorModel) refreshCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		entries, err := store.Entries()
		if err != nil {
			return rowsMsg{err: err}
		}
		return rowsMsg{rows: sessionRows(entries, time.Now().UTC())}
	}
}

// sessionRows converts store entries into table rows.
func sessionRows(entries []session.Entry, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		domain, conf, age := "-", "", "-"
		handoffs := 0
		if e.State != nil {
			if e.State.ActiveDomain != "" {
				domain = e.State.ActiveDomain
				conf = fmt.Sprintf("%.2f", e.State.Confidence)
			}
			age = formatAge(e.Age(now))
			handoffs = len(e.State.Handoffs)
		}
		rows = append(rows, table.Row{
			statusIcon(e.Status), e.Key, domain, conf, age, fmt.Sprintf("%d", handoffs),
		})
	}
	return rows
}

// waitCmd blocks on the next settled filesystem event.
func (m monitorModel) waitCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchGone{}
		}
		return watchMsg(ev)
	}
}

// monitorTick is the polling fallback cadence.
func monitorTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(monitorColumns(msg.Width - 6))
		m.table.SetWidth(msg.Width - 2)
		if msg.Height > 10 {
			m.table.SetHeight(msg.Height - 7)
		}
		return m, nil

	case rowsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sessions = len(msg.rows)
		m.table.SetRows(msg.rows)
		return m, nil

	case watchMsg:
		m.lastEvent = fmt.Sprintf("%s %s", msg.Op, msg.Key)
		return m, tea.Batch(m.refreshCmd(), m.waitCmd())

	case watchGone:
		m.lastEvent = "watcher stopped; polling"
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), monitorTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m monitorModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" switchboard monitor "))
	sb.WriteString(" " + m.spinner.View())
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(m.styles.Error.Render("session listing failed: "+m.err.Error()) + "\n\n")
	}

	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	status := fmt.Sprintf("%d sessions", m.sessions)
	if m.lastEvent != "" {
		status += "  |  last change: " + m.lastEvent
	}
	sb.WriteString(m.styles.Footer.Render(status))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("[q] Quit  [r] Refresh"))

	return sb.String()
}
