package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"datalayout/internal/layout"
)

type exploreModel struct {
	title   string
	summary string
	table   table.Model
}

// NewExploreModel returns a Bubble Tea model that browses a struct
// layout field by field.
func NewExploreModel(title string, rows []FieldRow, sl *layout.StructLayout) tea.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "type", Width: 28},
		{Title: "offset", Width: 12},
		{Title: "size", Width: 12},
		{Title: "align", Width: 6},
	}
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row{
			strconv.Itoa(r.Index),
			r.Type,
			FormatBytes(r.Offset),
			FormatBytes(r.Size),
			strconv.Itoa(r.Align),
		}
	}

	height := len(rows)
	if height > 16 {
		height = 16
	}
	if height < 1 {
		height = 1
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("6"))
	t.SetStyles(s)

	return &exploreModel{
		title:   title,
		summary: fmt.Sprintf("total %s bytes, align %d", FormatBytes(sl.Size), sl.Align),
		table:   t,
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Height > 8 {
			maxRows := msg.Height - 6
			if maxRows > len(m.table.Rows()) {
				maxRows = len(m.table.Rows())
			}
			if maxRows < 1 {
				maxRows = 1
			}
			m.table.SetHeight(maxRows)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *exploreModel) View() string {
	return headerStyle.Render(m.title) + "\n" +
		m.table.View() + "\n" +
		summaryStyle.Render(m.summary) + "\n" +
		"  ↑/↓ move · q quit\n"
}

// Explore runs the interactive field browser.
func Explore(title string, rows []FieldRow, sl *layout.StructLayout) error {
	p := tea.NewProgram(NewExploreModel(title, rows, sl))
	_, err := p.Run()
	return err
}
