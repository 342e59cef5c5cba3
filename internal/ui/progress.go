package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// Step represents a single step in a multi-step operation
type Step struct {
	Number  int        // 1-based
	Name    string     // e.g., "Submitting job"
	Status  StepStatus //
	Message string     // Optional note (e.g., "3 pages, 1.2 MB")
}

// Progress tracks the steps of a command and the pages received so far.
// The bar follows pages when the expected page count is known and steps
// otherwise.
type Progress struct {
	Label         string
	Steps         []Step
	Current       int // Current step (1-based)
	Total         int
	Pages         int   // Pages received
	ExpectedPages int   // Zero when the device did not say
	Bytes         int64 // Bytes received across all pages
	Width         int
	bar           progress.Model
}

// NewProgress creates a progress display with the given step names
func NewProgress(label string, stepNames ...string) *Progress {
	steps := make([]Step, len(stepNames))
	for i, name := range stepNames {
		steps[i] = Step{Number: i + 1, Name: name}
	}

	p := &Progress{
		Label: label,
		Steps: steps,
		Total: len(steps),
	}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width and resizes the bar to fit
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 24
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// UpdateStep updates a step's status and optional message
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	p.Steps[stepNumber-1].Status = status
	p.Steps[stepNumber-1].Message = message
	if status == StepRunning {
		p.Current = stepNumber
	}
}

// StartStep marks a step as running
func (p *Progress) StartStep(stepNumber int, message string) {
	p.UpdateStep(stepNumber, StepRunning, message)
}

// CompleteStep marks a step as complete
func (p *Progress) CompleteStep(stepNumber int, message string) {
	p.UpdateStep(stepNumber, StepComplete, message)
}

// FailStep marks a step as failed
func (p *Progress) FailStep(stepNumber int, message string) {
	p.UpdateStep(stepNumber, StepFailed, message)
}

// AddPage records one received page of n bytes
func (p *Progress) AddPage(n int) {
	p.Pages++
	p.Bytes += int64(n)
}

// Percent returns the completed fraction in [0, 1]
func (p *Progress) Percent() float64 {
	if p.ExpectedPages > 0 {
		return clamp(float64(p.Pages) / float64(p.ExpectedPages))
	}
	if p.Total == 0 {
		return 0
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			done++
		}
	}
	return clamp(float64(done) / float64(p.Total))
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// PageSummary describes the pages received, e.g. "3 pages, 1.2 MB"
func (p *Progress) PageSummary() string {
	noun := "pages"
	if p.Pages == 1 {
		noun = "page"
	}
	return fmt.Sprintf("%d %s, %s", p.Pages, noun, FormatBytes(p.Bytes))
}

// Render returns the label, bar and step list
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	b.WriteString(p.RenderBar())
	b.WriteString("\n\n")

	lines := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		lines = append(lines, p.RenderStepLine(step))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// RenderBar renders the bar with percentage and a page or step counter
func (p *Progress) RenderBar() string {
	counter := fmt.Sprintf("[%d/%d]", p.Current, p.Total)
	if p.ExpectedPages > 0 {
		counter = fmt.Sprintf("[%d/%d pages]", p.Pages, p.ExpectedPages)
	}

	percent := p.Percent()
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%  %s", p.bar.ViewAs(percent), percent*100, counter))
}

// RenderStepLine renders a single step line
func (p *Progress) RenderStepLine(step Step) string {
	var marker string
	var style lipgloss.Style

	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", step.Number, p.Total))
	b.WriteString(style.Render(step.Name))

	// Markers line up in one column
	padding := 40 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback is how an operation reports step progress to a Runner
type StepCallback func(stepNumber int, status StepStatus, message string)

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
