package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ReviewModel - Interactive result review
// =============================================================================

// ReviewModel is the bubbletea model for accepting or rejecting crop
// results before they are written.
type ReviewModel struct {
	Rows     []resultRow
	Accepted []bool
	Cursor   int
	Height   int
	Offset   int

	// Confirmed is set when the user confirmed; quitting leaves it false.
	Confirmed bool
}

// NewReviewModel creates a review model with every result accepted.
func NewReviewModel(rows []resultRow) ReviewModel {
	accepted := make([]bool, len(rows))
	for i := range accepted {
		accepted[i] = true
	}
	return ReviewModel{
		Rows:     rows,
		Accepted: accepted,
		Height:   15,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Rows) > 0 {
				m.Accepted[m.Cursor] = !m.Accepted[m.Cursor]
			}
		case "a":
			all := !allTrue(m.Accepted)
			for i := range m.Accepted {
				m.Accepted[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Review Crops"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ write  q abort"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := StyleWarning.Render("[ ]")
		if m.Accepted[i] {
			mark = StyleSuccess.Render("[✓]")
		}

		line := fmt.Sprintf("%s%s %-30s %s", cursor, mark, r.Name,
			listDimStyle.Render(r.Before.String()+" "+iconArrow+" ")+r.After.String())
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case !m.Accepted[i]:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d accepted]", countTrue(m.Accepted), len(m.Rows))))
	return b.String()
}

// runReview shows the review list on out and returns which results to keep.
// Aborting the review is an error so that nothing is written.
func runReview(rows []resultRow, out io.Writer, opts ...tea.ProgramOption) ([]bool, error) {
	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	final, err := tea.NewProgram(NewReviewModel(rows), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}
	m := final.(ReviewModel)
	if !m.Confirmed {
		return nil, errReviewAborted
	}
	return m.Accepted, nil
}

// errReviewAborted is returned when the user quits the review.
var errReviewAborted = fmt.Errorf("review aborted, nothing written")

// =============================================================================
// Helpers
// =============================================================================

func allTrue(bs []bool) bool {
	return countTrue(bs) == len(bs)
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
