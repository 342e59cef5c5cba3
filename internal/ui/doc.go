// Package ui provides terminal rendering for the escl command.
//
// This package uses Lipgloss and Bubble Tea to render styled output in a
// "run once and exit" pattern. The one exception is the scanner picker,
// shown when discovery finds several devices on an interactive terminal.
//
// # Components
//
//   - Header: command banner showing the operation and the device it talks to
//   - Progress: step list plus a page counter for scan downloads
//   - Result: success, warning and failure boxes; failures carry
//     troubleshooting tips derived from escl error kinds
//   - Views: device tables, capability sections and status/job tables
//   - Picker: bubbles list for choosing one of several discovered scanners
//
// Multi-step commands go through a Runner, which prints the header, reports
// steps as the operation calls back, and finishes with a result box:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Scan",
//	    Command:   "escl scan",
//	    Params:    []ui.Param{{Key: "Device", Value: baseURL}},
//	    StepNames: []string{"Submitting job", "Receiving pages"},
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ...
//	    onStep(1, ui.StepComplete, "")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// zap logging is controlled by ESCL_LOG_LEVEL and goes to stderr. When unset
// the logger is silent, so only the curated UI output is shown.
package ui
