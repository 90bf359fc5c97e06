package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pagesmith/pkg/project"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TemplateListModel - Interactive template selection
// =============================================================================

// TemplateListModel is the bubbletea model for picking a starter template.
// The first row is always a blank page.
type TemplateListModel struct {
	Templates []project.Template
	Cursor    int
	Height    int
	Offset    int

	// Selected is set once the user confirms a row. Blank is true when
	// that row was the blank page; Template is nil then.
	Selected bool
	Blank    bool
	Template *project.Template
}

// NewTemplateListModel creates a new template list model.
func NewTemplateListModel(ts []project.Template) TemplateListModel {
	return TemplateListModel{Templates: ts, Height: 12}
}

// rows is the number of selectable rows, blank page included.
func (m TemplateListModel) rows() int { return len(m.Templates) + 1 }

func (m TemplateListModel) Init() tea.Cmd {
	return nil
}

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rows()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = true
			if m.Cursor == 0 {
				m.Blank = true
				return m, tea.Quit
			}
			t := m.Templates[m.Cursor-1]
			m.Template = &t
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TemplateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Start a New Page"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > m.rows() {
		end = m.rows()
	}

	var rows [][]string
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if i == 0 {
			rows = append(rows, []string{cursor, "Blank page", "—", "0", "Start from an empty canvas"})
			continue
		}
		t := m.Templates[i-1]
		rows = append(rows, []string{
			cursor, t.Name, string(t.Category), fmt.Sprint(len(t.Elements)), truncate(t.Description, 48),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Template", "Category", "Elements", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col == 2 || col == 3 || col == 4 {
				base = base.Foreground(colorDim)
			}
			if m.Offset+row == m.Cursor {
				if col == 1 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Foreground(colorGray).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.rows())))

	return b.String()
}
