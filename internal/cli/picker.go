package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/materialkit/matdump/pkg/scene"
)

// List styles
var (
	listNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// MaterialListModel - Interactive material selection
// =============================================================================

// MaterialListModel is the bubbletea model for picking materials to export.
type MaterialListModel struct {
	Materials []scene.Node
	Cursor    int
	Checked   map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewMaterialListModel creates a new material list model.
func NewMaterialListModel(materials []scene.Node) MaterialListModel {
	return MaterialListModel{
		Materials: materials,
		Checked:   make(map[int]bool),
		Height:    15,
	}
}

func (m MaterialListModel) Init() tea.Cmd {
	return nil
}

func (m MaterialListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Materials)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "a":
			for i := range m.Materials {
				m.Checked[i] = true
			}
		case "enter":
			if len(m.Materials) == 0 {
				return m, tea.Quit
			}
			if !m.anyChecked() {
				m.Checked[m.Cursor] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MaterialListModel) anyChecked() bool {
	for _, on := range m.Checked {
		if on {
			return true
		}
	}
	return false
}

// Picked returns the selected materials in library order.
func (m MaterialListModel) Picked() []scene.Node {
	if !m.Confirmed {
		return nil
	}
	var picked []scene.Node
	for i, mat := range m.Materials {
		if m.Checked[i] {
			picked = append(picked, mat)
		}
	}
	return picked
}

func (m MaterialListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Materials"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Materials) {
		end = len(m.Materials)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		mat := m.Materials[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := " "
		if m.Checked[i] {
			check = "✓"
		}

		props := "—"
		if names, err := mat.PropertyNames(); err == nil {
			props = fmt.Sprintf("%d", len(names))
		}

		rows = append(rows, []string{cursor, check, mat.Name(), mat.Class(), props})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Material", "Class", "Props").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx >= len(m.Materials) {
				return lipgloss.NewStyle()
			}
			if actualIdx == m.Cursor {
				return listNormalStyle.Bold(true)
			}
			if m.Checked[actualIdx] {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Materials))))

	return b.String()
}

// pickMaterials runs the interactive picker and returns the chosen materials.
func pickMaterials(materials []scene.Node) ([]scene.Node, error) {
	model := NewMaterialListModel(materials)
	prog := tea.NewProgram(model)
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	return final.(MaterialListModel).Picked(), nil
}
