// Package jobbar displays library scan progress at the bottom of the screen.
package jobbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/chirp/internal/library"
	"github.com/llehouerou/chirp/internal/ui/render"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

// Height is the height of the bar: one job line and its border.
const Height = 3

// Job represents a running scan.
type Job struct {
	Label   string
	Current int
	Total   int // 0 if unknown
}

// HasProgress returns true if the job has known progress (Total > 0).
func (j Job) HasProgress() bool {
	return j.Total > 0
}

// FromScan describes a scan progress report. Phases without anything to
// show return false.
func FromScan(p library.ScanProgress) (Job, bool) {
	switch p.Phase {
	case "scanning":
		return Job{Label: "Scanning sources", Current: p.Current}, true
	case "processing":
		return Job{Label: "Reading tags", Current: p.Current, Total: p.Total}, true
	case "cleaning":
		return Job{Label: "Forgetting missing files", Current: p.Current, Total: p.Total}, true
	default:
		return Job{}, false
	}
}

// Summary describes a finished scan in one line.
func Summary(stats *library.ScanStats) string {
	if stats == nil {
		return "Scan finished"
	}
	added, updated, removed := stats.Counts()
	s := fmt.Sprintf("Scan finished: %d added, %d updated, %d removed", added, updated, removed)
	if n := len(stats.Failed); n > 0 {
		s += fmt.Sprintf(", %d unreadable", n)
	}
	return s
}

// Render renders the bordered job line with the given width.
func Render(job Job, width int) string {
	inner := max(width-4, 0)
	var line string
	if job.HasProgress() {
		line = renderWithProgressBar(job, inner)
	} else {
		line = renderWithCount(job, inner)
	}
	return styles.T().S().Panel.Padding(0, 1).Width(max(width-2, 0)).Render(line)
}

// renderWithProgressBar renders: "◦ Label  [━━━━────] 42/100"
func renderWithProgressBar(job Job, width int) string {
	t := styles.T()
	countStr := fmt.Sprintf("%d/%d", job.Current, job.Total)

	// spinner(2) + brackets(2) + spacing(3) + count
	fixedWidth := 2 + 2 + 3 + lipgloss.Width(countStr)
	minBarWidth := 10
	labelWidth := max(width-fixedWidth-minBarWidth, 10)
	barWidth := max(width-labelWidth-fixedWidth, minBarWidth)

	ratio := min(float64(job.Current)/float64(job.Total), 1)
	filled := int(float64(barWidth) * ratio)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Song).Render("◦"))
	b.WriteString(" ")
	b.WriteString(t.S().Title.Render(render.TruncateAndPad(job.Label, labelWidth)))
	b.WriteString("  [")
	b.WriteString(styles.GradientBar(filled, barWidth, "━", "─", t.Song, t.Fade))
	b.WriteString("] ")
	b.WriteString(t.S().Muted.Render(countStr))
	return b.String()
}

// renderWithCount renders: "◦ Label                    123 files found"
func renderWithCount(job Job, width int) string {
	t := styles.T()
	var count string
	if job.Current > 0 {
		count = fmt.Sprintf("%d files found", job.Current)
	}
	labelWidth := max(width-2-2-lipgloss.Width(count), 10)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Song).Render("◦"))
	b.WriteString(" ")
	b.WriteString(t.S().Title.Render(render.TruncateAndPad(job.Label, labelWidth)))
	if count != "" {
		b.WriteString("  ")
		b.WriteString(t.S().Muted.Render(count))
	}
	return b.String()
}
