package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title     string  // e.g., "Scan"
	Command   string  // e.g., "escl scan --device office"
	Params    []Param // Shown in the header
	StepNames []string
	Output    io.Writer // Default: os.Stdout
}

// Runner orchestrates the UI for a multi-step command.
// It manages the header → progress → result flow and hands the operation
// a callback for reporting steps.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params...).SetWidth(width),
		progress: NewProgress("", config.StepNames...).SetWidth(width),
		output:   config.Output,
		width:    width,
	}
}

// SetWidth overrides the detected terminal width
func (r *Runner) SetWidth(width int) *Runner {
	r.width = width
	r.header.SetWidth(width)
	r.progress.SetWidth(width)
	return r
}

// Progress exposes the runner's progress tracker
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Operation is the work a Runner drives. It returns detail lines for the
// success box.
type Operation func(ctx context.Context, onStep StepCallback) ([]Param, error)

// Run prints the header, executes the operation and prints the result box.
// The operation's error is returned unchanged.
func (r *Runner) Run(ctx context.Context, operation Operation) error {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(ctx, r.step)
	duration := time.Since(r.startTime).Round(time.Millisecond).String()

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		result := NewErrorResult(r.config.Title+" failed", err).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	result.AddDetail("Duration", duration)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

// AddPage records a received page and refreshes the running step line
func (r *Runner) AddPage(n int) {
	r.progress.AddPage(n)
	if r.progress.Current > 0 {
		r.step(r.progress.Current, StepRunning, r.progress.PageSummary())
	}
}

func (r *Runner) step(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	r.progress.UpdateStep(stepNumber, status, message)

	line := r.progress.RenderStepLine(r.progress.Steps[stepNumber-1])
	if status == StepRunning {
		// Overwritten by the next update of the same step
		_, _ = fmt.Fprint(r.output, "\r"+line)
		return
	}
	_, _ = fmt.Fprintln(r.output, "\r"+line)
}
