package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/escl/internal/discovery"
	"github.com/muurk/escl/internal/escl"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			return TableCellStyle.Padding(0, 1)
		})
}

// RenderDeviceTable renders discovered scanners, one row each
func RenderDeviceTable(devices []*discovery.Device) string {
	t := newTable("#", "Name", "Instance", "URL")
	for i, d := range devices {
		t.Row(strconv.Itoa(i+1), d.Name, d.Instance, d.BaseURL())
	}
	return t.Render()
}

// RenderDeviceLine renders a single device for streaming output
func RenderDeviceLine(d *discovery.Device) string {
	return fmt.Sprintf("  %s %s  %s",
		StepCompleteStyle.Render(StepMarkerRunning),
		ResultValueStyle.Render(d.Name),
		StepNoteStyle.Render(d.BaseURL()))
}

// RenderCapabilities renders a capabilities document as detail sections
func RenderCapabilities(caps *escl.Capabilities) string {
	identity := []Param{
		{"Make and model", caps.MakeAndModel},
		{"Manufacturer", caps.Manufacturer},
		{"Serial number", caps.SerialNumber},
		{"UUID", caps.UUID},
		{"eSCL version", caps.Version},
		{"Admin page", caps.AdminURI},
	}

	var sections []string
	sections = append(sections, renderSection("Scanner", identity))

	for _, source := range caps.InputSources() {
		ic := caps.InputCaps(source)
		params := inputCapsParams(ic)
		if source == escl.InputSourceFeeder {
			params = append(params, Param{"Duplex", yesNo(caps.AdfDuplex != nil)})
		}
		sections = append(sections, renderSection(string(source), params))
	}

	if len(caps.InputSources()) == 0 {
		sections = append(sections, SectionTitleStyle.Render("No input sources advertised"))
	}

	return strings.Join(sections, "\n\n")
}

func inputCapsParams(ic *escl.InputCaps) []Param {
	modes := make([]string, 0)
	for _, m := range ic.ColorModes() {
		modes = append(modes, string(m))
	}
	resolutions := make([]string, 0)
	for _, r := range ic.Resolutions() {
		if r.X == r.Y {
			resolutions = append(resolutions, strconv.Itoa(r.X))
		} else {
			resolutions = append(resolutions, fmt.Sprintf("%dx%d", r.X, r.Y))
		}
	}
	intents := make([]string, 0)
	for _, i := range ic.SupportedIntents {
		intents = append(intents, string(i))
	}

	return []Param{
		{"Max area", fmt.Sprintf("%d x %d (%s)", ic.MaxWidth, ic.MaxHeight, inches(ic.MaxWidth, ic.MaxHeight))},
		{"Color modes", strings.Join(modes, ", ")},
		{"Resolutions", strings.Join(resolutions, ", ")},
		{"Formats", strings.Join(ic.DocumentFormats(), ", ")},
		{"Intents", strings.Join(intents, ", ")},
	}
}

// inches converts 1/300 inch units for display
func inches(w, h int) string {
	return fmt.Sprintf("%.2f\" x %.2f\"", float64(w)/300, float64(h)/300)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderSection(title string, params []Param) string {
	lines := []string{SectionTitleStyle.Render(title)}
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		lines = append(lines, ResultKeyStyle.Render("   "+p.Key+":")+" "+ResultValueStyle.Render(p.Value))
	}
	return strings.Join(lines, "\n")
}

// RenderStatus renders the scanner state and its job list
func RenderStatus(status *escl.ScannerStatus) string {
	state := string(status.State)
	lines := []string{
		ResultKeyStyle.Render("   State:") + " " + StateStyle(state).Render(state),
	}
	if status.AdfState != "" {
		lines = append(lines, ResultKeyStyle.Render("   Feeder:")+" "+ResultValueStyle.Render(status.AdfState))
	}

	out := SectionTitleStyle.Render("Scanner") + "\n" + strings.Join(lines, "\n")
	if len(status.Jobs) == 0 {
		return out + "\n\n" + SectionTitleStyle.Render("No jobs")
	}

	t := newTable("Job", "State", "Pages", "Remaining", "Age", "Reasons")
	for _, job := range status.Jobs {
		t.Row(
			job.JobURI,
			string(job.JobState),
			strconv.Itoa(job.ImagesCompleted),
			strconv.Itoa(job.ImagesToTransfer),
			strconv.Itoa(job.Age)+"s",
			strings.Join(job.JobStateReasons, ", "),
		)
	}
	return out + "\n\n" + SectionTitleStyle.Render("Jobs") + "\n" + t.Render()
}
