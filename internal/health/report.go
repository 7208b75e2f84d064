package health

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/tui/styles"
)

var categoryOrder = []string{"config", "catalog", "storage", "integrations"}

func categoryLabel(cat string) string {
	switch cat {
	case "config":
		return "Configuration"
	case "catalog":
		return "Catalogs"
	case "storage":
		return "Client Storage"
	case "integrations":
		return "Integrations"
	default:
		return cat
	}
}

// Summary is the one-line tally, e.g. "9/10 passed, 1 warning(s)".
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
	if r.Warned > 0 {
		s += fmt.Sprintf(", %d warning(s)", r.Warned)
	}
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d failed", r.Failed)
	}
	return s
}

// Verdict is HEALTHY, DEGRADED (warnings only) or UNHEALTHY.
func (r *Report) Verdict() string {
	switch {
	case r.Failed > 0:
		return "UNHEALTHY"
	case r.Warned > 0:
		return "DEGRADED"
	default:
		return "HEALTHY"
	}
}

// FormatReport renders the report for `credisur health`, grouped by
// category in display order.
func FormatReport(r *Report) string {
	var b strings.Builder

	b.WriteString("\n  " + styles.Title.Render("CrediSur Health Check") + "\n")
	b.WriteString("  " + styles.Divider(50) + "\n")

	grouped := make(map[string][]CheckResult)
	for _, res := range r.Results {
		grouped[res.Category] = append(grouped[res.Category], res)
	}

	nameStyle := lipgloss.NewStyle().Width(22).Foreground(styles.TextPrimary)
	msgStyle := lipgloss.NewStyle().Width(40).Foreground(styles.TextSecondary)
	durStyle := lipgloss.NewStyle().Width(8).Foreground(styles.TextMuted).Align(lipgloss.Right)
	catStyle := lipgloss.NewStyle().Foreground(styles.AccentSecondary).Bold(true).MarginTop(1)

	for _, cat := range categoryOrder {
		results := grouped[cat]
		if len(results) == 0 {
			continue
		}
		b.WriteString("\n  " + catStyle.Render(categoryLabel(cat)) + "\n")
		for _, res := range results {
			fmt.Fprintf(&b, "  %s %s %s %s\n",
				statusSymbol(res.Status),
				nameStyle.Render(res.Name),
				msgStyle.Render(styles.TruncateWithEllipsis(res.Message, 38)),
				durStyle.Render(formatDuration(res.Duration)),
			)
		}
	}

	b.WriteString("\n  " + styles.Divider(50) + "\n")
	b.WriteString("  " + lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(r.Summary()))
	b.WriteString("  " + verdictBadge(r) + "\n")
	b.WriteString(styles.Dim(fmt.Sprintf("  completed in %s", formatDuration(r.Duration))) + "\n")

	return b.String()
}

var statusColors = map[Status]lipgloss.Color{
	StatusPass: styles.StatusOK,
	StatusWarn: styles.StatusWarn,
	StatusFail: styles.StatusError,
}

func statusSymbol(s Status) string {
	color, ok := statusColors[s]
	if !ok {
		color = styles.TextMuted
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(s.Symbol())
}

func verdictBadge(r *Report) string {
	color := styles.StatusOK
	switch r.Verdict() {
	case "UNHEALTHY":
		color = styles.StatusError
	case "DEGRADED":
		color = styles.StatusWarn
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(r.Verdict())
}

func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1:
		return "<1ms"
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
