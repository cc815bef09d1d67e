// Package observability provides the service logger and formatted output for
// the inspect CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/profile-bff/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the width of the completion progress bar
	barWidth = 20
)

// Printer writes human-readable profile summaries.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintProfile outputs a summary of a view profile.
func (p *Printer) PrintProfile(view *types.ViewProfile) {
	if view == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User:     %s\n", view.UserID))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", view.Status))
	if pi := view.PersonalInfo; pi != nil {
		if pi.Name != "" {
			sb.WriteString(fmt.Sprintf("Name:     %s\n", pi.Name))
		}
		if pi.Email != "" {
			sb.WriteString(fmt.Sprintf("Email:    %s\n", pi.Email))
		}
		if pi.Location != "" {
			sb.WriteString(fmt.Sprintf("Location: %s\n", pi.Location))
		}
	}
	if ps := view.ProfessionalSummary; ps != nil && ps.CurrentRole != "" {
		sb.WriteString(fmt.Sprintf("Role:     %s\n", ps.CurrentRole))
	}
	sb.WriteString("\n")

	// Experience
	if len(view.Experience) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(view.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := view.Experience[i]
			end := exp.EndDate
			if end == "" || exp.IsCurrent() {
				end = "present"
			}
			sb.WriteString(fmt.Sprintf("  • %s @ %s (%s → %s)\n", exp.Title, exp.Company, exp.StartDate, end))
		}
		if len(view.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(view.Experience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	// Contact center skills
	if len(view.Skills.ContactCenter) > 0 {
		sb.WriteString("Contact Center Skills:\n")
		count := min(len(view.Skills.ContactCenter), maxItemsToShow)
		for i := 0; i < count; i++ {
			skill := view.Skills.ContactCenter[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s, %s)", skill.Skill, skill.Category, skill.Proficiency))
			if skill.AssessmentResults != nil {
				sb.WriteString(fmt.Sprintf(" %.0f", skill.AssessmentResults.Score))
			}
			sb.WriteString("\n")
		}
		if len(view.Skills.ContactCenter) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(view.Skills.ContactCenter)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	other := len(view.Skills.Technical) + len(view.Skills.Professional) + len(view.Skills.Soft)
	if other > 0 {
		sb.WriteString(fmt.Sprintf("Other skills: %d\n", other))
	}

	p.printBox("PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScore outputs the REPS score.
func (p *Printer) PrintScore(score *types.REPSScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reliability:     %3d\n", score.Reliability))
	sb.WriteString(fmt.Sprintf("Efficiency:      %3d\n", score.Efficiency))
	sb.WriteString(fmt.Sprintf("Professionalism: %3d\n", score.Professionalism))
	sb.WriteString(fmt.Sprintf("Service:         %3d", score.Service))

	p.printBox("REPS SCORE", sb.String())
}

// PrintCompletion outputs the completion status with a progress bar and a
// checklist of steps.
func (p *Printer) PrintCompletion(status *types.CompletionStatus) {
	if status == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status.Status))
	sb.WriteString(fmt.Sprintf("Progress: %s %d%%\n\n", progressBar(status.CompletionPercentage), status.CompletionPercentage))

	for _, step := range status.CompletionSteps.Steps() {
		mark := "✗"
		if step.Done {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", mark, step.Name))
	}

	title := "COMPLETION"
	if status.IsComplete {
		title = "✅ COMPLETION"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

func progressBar(percent int) string {
	filled := max(0, min(barWidth, percent*barWidth/100))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}
