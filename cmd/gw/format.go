package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zulandar/groundwork/internal/schedule"
	"golang.org/x/term"
)

const defaultWidth = 80

// styles colours risk markers. Colour is only emitted when the renderer's
// writer is a terminal.
type styles struct {
	delayed lipgloss.Style
	stale   lipgloss.Style
	done    lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		delayed: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		stale:   r.NewStyle().Foreground(lipgloss.Color("11")),
		done:    r.NewStyle().Foreground(lipgloss.Color("10")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// riskLabel renders the flags of r, or "-" when there are none.
func (s styles) riskLabel(r schedule.Risk) string {
	var parts []string
	if r.IsDelayed {
		parts = append(parts, s.delayed.Render("DELAYED"))
	}
	if r.NeedsUpdate {
		parts = append(parts, s.stale.Render("NEEDS LOG"))
	}
	if len(parts) == 0 {
		return s.dim.Render("-")
	}
	return strings.Join(parts, " ")
}

// terminalWidth returns the column count of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultWidth
}

// nameWidth is how much of a line a task name may take once the fixed
// columns are laid out.
func nameWidth(total int) int {
	w := total - 48
	if w < 20 {
		return 20
	}
	return w
}

// progressBar draws pct as a 10-cell bar.
func progressBar(pct float64) string {
	filled := int(pct/10 + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + "]"
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

func formatDate(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func formatOptionalPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatPercent(*v)
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

// truncate shortens s to maxLen terminal columns, cutting on rune
// boundaries so accented and wide names stay valid UTF-8.
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	limit := maxLen - 3
	var (
		b     strings.Builder
		width int
	)
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if width+rw > limit {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + "..."
}
