package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dinoevo/internal/storage"
)

// HistoryModel is the Bubble Tea model browsing the generations of a run.
type HistoryModel struct {
	run         storage.Run
	generations []storage.Generation
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
}

// NewHistoryModel creates a history browser for a stored run.
func NewHistoryModel(run storage.Run, generations []storage.Generation, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		run:         run,
		generations: generations,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		width:       width,
		height:      height,
	}
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates a new table sized to the terminal.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 10},
		{Title: "Mean", Width: 10},
		{Title: "StdDev", Width: 8},
		{Title: "Worst", Width: 8},
		{Title: "Genome", Width: 7},
		{Title: "Ticks", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// HistoryRows formats generations as table rows.
func HistoryRows(generations []storage.Generation) []table.Row {
	rows := make([]table.Row, len(generations))
	for i, g := range generations {
		ticks := fmt.Sprintf("%d", g.Ticks)
		if g.Capped {
			ticks += "+"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%.2f", g.Best),
			fmt.Sprintf("%.2f", g.Mean),
			fmt.Sprintf("%.2f", g.StdDev),
			fmt.Sprintf("%.2f", g.Worst),
			fmt.Sprintf("%d", g.BestGenome),
			ticks,
		}
	}
	return rows
}

func (m *HistoryModel) updateTableRows() {
	m.table.SetRows(HistoryRows(m.generations))
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Top):
			m.table.GotoTop()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("RUN %d - %s - best %.2f", m.run.ID, strings.ToUpper(m.run.Status), m.run.BestFitness)
	b.WriteString(titleStyle.MarginBottom(1).Render(title))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.generations) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No generations recorded for this run.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// selected returns the generation under the cursor, if any.
func (m HistoryModel) selected() (storage.Generation, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.generations) {
		return storage.Generation{}, false
	}
	return m.generations[i], true
}

// RunHistory runs the history browser until the user quits.
func RunHistory(run storage.Run, generations []storage.Generation, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(run, generations, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
