package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/secureview/internal/protect"
)

// pageRows is the height of the document pane
const pageRows = 12

// View renders the UI
func (m Model) View() string {
	frame := m.engine.Render()

	// Nothing of the document is drawn while the terminal is unfocused
	if frame.Covered {
		return m.renderCover()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(frame))
	b.WriteString("\n")
	b.WriteString(m.renderPage(frame))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(frame))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	content := b.String()
	if frame.Notice != "" {
		return m.place(m.renderNotice(frame.Notice))
	}
	return content
}

func (m Model) renderCover() string {
	cover := lipgloss.JoinVertical(lipgloss.Center,
		CoverStyle.Render("Security Pause"),
		HelpStyle.Render("Return to this window to continue viewing."),
	)
	return m.place(cover)
}

func (m Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderHeader(frame protect.Frame) string {
	title := HeaderStyle.Render(frame.Title)
	countdown := CountdownStyle.Render(fmt.Sprintf("EXPIRES IN %dm", frame.MinutesLeft))

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(countdown)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + countdown
}

// renderPage draws the document pane tiled with the watermark. Each row is
// shifted by one cell to suggest the diagonal.
func (m Model) renderPage(frame protect.Frame) string {
	width := frame.PageWidth
	if width <= 0 {
		return ""
	}

	// Horizontal padding of PageStyle
	inner := max(width-2, 1)

	grid := frame.Watermark.Grid()
	lines := make([]string, 0, pageRows)
	for r := 0; r < pageRows && r < len(grid); r++ {
		row := strings.Join(grid[r], "   ")
		shift := (r * 3) % (len(frame.Watermark.Label) + 3)
		lines = append(lines, clip(row, shift, inner))
	}

	return PageStyle.Width(width).Render(WatermarkStyle.Render(strings.Join(lines, "\n")))
}

func (m Model) renderStatus(frame protect.Frame) string {
	switch frame.Load.Status {
	case protect.LoadLoaded:
		pages := "pages"
		if frame.Load.PageCount == 1 {
			pages = "page"
		}
		return StatusStyle.Render(fmt.Sprintf("%d %s · view only", frame.Load.PageCount, pages))
	case protect.LoadFailed:
		return ErrorStyle.Render(frame.Load.Message)
	default:
		return StatusStyle.Render(m.spinner.View() + " Loading document...")
	}
}

func (m Model) renderNotice(notice string) string {
	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		ErrorStyle.Render(notice),
		"",
		HelpStyle.Render("enter to dismiss"),
	))
}

func (m Model) renderStatusBar() string {
	help := fmt.Sprintf("%s %s", keys.Quit.Help().Key, keys.Quit.Help().Desc)
	if m.showHelp {
		help = "printing, saving and copying are disabled · " + help
	} else {
		help += " · ? help"
	}
	return StatusBarStyle.Width(max(m.width, 1)).Render(HelpStyle.Render(help))
}

// clip returns width cells of s starting at rune offset
func clip(s string, offset, width int) string {
	r := []rune(s)
	if offset >= len(r) {
		offset = 0
	}
	r = r[offset:]
	if len(r) > width {
		r = r[:width]
	}
	return string(r)
}
