package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/escl/internal/discovery"
	"github.com/muurk/escl/internal/escl"
	"github.com/muurk/escl/internal/logging"
	"github.com/muurk/escl/internal/ui"
)

// Command flags
var (
	discoverTimeout int
	discoverWatch   bool
	discoverSave    bool

	statusJob string

	scanOutputDir  string
	scanPrefix     string
	scanResolution int
	scanColorMode  string
	scanFormat     string
	scanIntent     string
	scanSource     string
	scanRegion     string
	scanDuplex     bool
	scanStdout     bool
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(capsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cancelCmd)
}

// discoverCmd finds scanners on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find eSCL scanners on the network",
	Long: `Find eSCL scanners using mDNS/DNS-SD (_uscan._tcp.local).

By default one query is sent and the first answer is used. With --watch the
command keeps browsing and prints scanners as they announce themselves until
interrupted.`,
	Example: `  # One-shot discovery
  escl discover

  # Remember the scanners found so they can be used with --device
  escl discover --save

  # Keep listening for announcements
  escl discover --watch`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Discovery timeout in seconds (default from config, 5)")
	discoverCmd.Flags().BoolVar(&discoverWatch, "watch", false, "Keep browsing until interrupted")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Remember found scanners in the config file")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	scanner := discovery.NewScanner()
	scanner.Timeout = registry.Preferences.DiscoverTimeoutDuration()
	if discoverTimeout > 0 {
		scanner.Timeout = time.Duration(discoverTimeout) * time.Second
	}

	if discoverWatch {
		return watchDevices(ctx, scanner, cmd.OutOrStdout())
	}

	if outputFormat == "detailed" {
		ui.NewPrinter(cmd.OutOrStdout()).PrintHeader("Discover", commandLine(),
			ui.Param{Key: "Service", Value: scanner.Service},
			ui.Param{Key: "Timeout", Value: scanner.Timeout.String()},
		)
	}

	devices, err := scanner.Discover(ctx)
	if err != nil {
		return fail("Discovery failed", err)
	}

	if discoverSave && len(devices) > 0 {
		rememberDevices(devices)
	}

	if len(devices) == 0 && outputFormat == "detailed" {
		ui.NewPrinter(cmd.OutOrStdout()).PrintFailure("No scanners found", nil, []string{
			"Check that the scanner is powered on and on the same network",
			"Multicast (UDP 5353) may be blocked by a firewall or the Wi-Fi access point",
			"Try increasing --timeout for slow devices",
			"Use --device to give the scanner address directly",
		})
		return nil
	}

	return emit(cmd.OutOrStdout(), devices, func() string {
		var b strings.Builder
		b.WriteString(ui.RenderDeviceTable(devices))
		b.WriteString("\n\n")
		if discoverSave {
			b.WriteString(ui.StepNoteStyle.Render(fmt.Sprintf("  Saved %d scanner(s); address them with --device <name>", len(devices))))
		} else {
			b.WriteString(ui.StepNoteStyle.Render("  Use --device <url> with caps, status or scan; --save remembers these scanners"))
		}
		return b.String()
	})
}

func watchDevices(ctx context.Context, scanner *discovery.Scanner, w io.Writer) error {
	if outputFormat == "detailed" {
		ui.NewPrinter(w).PrintHeader("Discover", commandLine(),
			ui.Param{Key: "Service", Value: scanner.Service},
			ui.Param{Key: "Mode", Value: "watching (Ctrl-C to stop)"},
		)
	}

	seen := make(map[string]bool)
	var found []*discovery.Device

	err := scanner.Browse(ctx, func(d *discovery.Device) {
		key := d.Instance + "|" + d.BaseURL()
		if seen[key] {
			return
		}
		seen[key] = true
		found = append(found, d)

		if outputFormat == "detailed" {
			_, _ = fmt.Fprintln(w, ui.RenderDeviceLine(d))
			return
		}
		if err := emit(w, d, nil); err != nil {
			logging.Warn("Failed to write device", zap.Error(err))
		}
	})
	if err != nil {
		return fail("Discovery failed", err)
	}

	if discoverSave && len(found) > 0 {
		rememberDevices(found)
	}
	return nil
}

func rememberDevices(devices []*discovery.Device) {
	for _, d := range devices {
		registry.RememberDevice(d.Instance, d.BaseURL(), d.Name, d.GetMetadata("uuid"))
	}
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
		_, _ = fmt.Fprintf(os.Stderr, "Warning: could not save scanners: %v\n", err)
	}
}

// devicesCmd lists and names remembered scanners
var devicesCmd = &cobra.Command{
	Use:   "devices [name nickname]",
	Short: "List remembered scanners or set a nickname",
	Long: `List scanners remembered with 'escl discover --save'.

With two arguments, sets a nickname for a remembered scanner so it can be
used with --device.`,
	Example: `  escl devices
  escl devices "HP LaserJet MFP M28w" office`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return errors.New("expected no arguments or <name> <nickname>")
		}
		return nil
	},
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	if len(args) == 2 {
		device, ok := registry.Resolve(args[0])
		if !ok {
			return fmt.Errorf("no remembered scanner named %q", args[0])
		}
		device.Nickname = args[1]
		if err := registry.Save(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %q\n", args[0], args[1])
		return nil
	}

	names := make([]string, 0, len(registry.Devices))
	for name := range registry.Devices {
		names = append(names, name)
	}
	sort.Strings(names)

	return emit(cmd.OutOrStdout(), registry.Devices, func() string {
		if len(names) == 0 {
			return ui.StepNoteStyle.Render("  No remembered scanners; run 'escl discover --save'")
		}
		var sections []string
		for _, name := range names {
			d := registry.Devices[name]
			sections = append(sections, ui.NewSuccessResult(name,
				ui.Param{Key: "Nickname", Value: d.Nickname},
				ui.Param{Key: "URL", Value: d.BaseURL},
				ui.Param{Key: "Model", Value: d.MakeAndModel},
				ui.Param{Key: "Last seen", Value: d.LastSeen.Format(time.RFC3339)},
			).Render())
		}
		return strings.Join(sections, "\n")
	})
}

// capsCmd shows what a scanner can do
var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "Show scanner capabilities",
	Long: `Fetch and show the scanner's ScannerCapabilities document: identity,
input sources, colour modes, resolutions and document formats.`,
	Example: `  escl caps --device http://192.168.1.20/eSCL
  escl caps --device office -o json`,
	RunE: runCaps,
}

func runCaps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := openClient(ctx)
	if err != nil {
		return fail("Capabilities failed", err)
	}

	caps, err := client.GetCapabilities(ctx)
	if err != nil {
		return fail("Capabilities failed", err)
	}

	return emit(cmd.OutOrStdout(), caps, func() string {
		header := ui.NewHeader("Scanner capabilities", commandLine(),
			ui.Param{Key: "Device", Value: client.BaseURL()}).Render()
		return header + "\n\n" + ui.RenderCapabilities(caps)
	})
}

// statusCmd shows the scanner state and its jobs
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scanner status and jobs",
	Example: `  escl status --device office
  escl status --device office --job /eSCL/ScanJobs/42`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusJob, "job", "", "Show only this job (URL or path)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := openClient(ctx)
	if err != nil {
		return fail("Status failed", err)
	}

	status, err := client.GetStatus(ctx)
	if err != nil {
		return fail("Status failed", err)
	}

	if statusJob != "" {
		job, ok := status.FindJob(statusJob)
		if !ok {
			return fail("Status failed", fmt.Errorf("scanner does not list job %q", statusJob))
		}
		status.Jobs = []escl.JobInfo{*job}
	}

	return emit(cmd.OutOrStdout(), status, func() string {
		header := ui.NewHeader("Scanner status", commandLine(),
			ui.Param{Key: "Device", Value: client.BaseURL()}).Render()
		return header + "\n\n" + ui.RenderStatus(status)
	})
}

// scanCmd runs a scan job and saves its pages
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan and save every page",
	Long: `Submit a scan job and save every page the scanner delivers.

Settings not given on the command line are chosen from the scanner's
capabilities: the platen, its full area, the best colour mode and the
resolution and format from the config file. Pages are written as
scan-001.jpg, scan-002.jpg, ... in the output directory, continuing after
any pages already there.

Interrupting a scan cancels the job on the scanner.`,
	Example: `  # Scan one page from the platen at 300 DPI
  escl scan --device office

  # Duplex feeder scan to PDF in ./scans
  escl scan --device office --source Feeder --duplex --format application/pdf --output-dir scans

  # A6 area in grayscale
  escl scan --device office --region 1240x1748 --color-mode Grayscale8

  # Single page to stdout
  escl scan --device office --stdout > page.jpg`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOutputDir, "output-dir", "", "Directory for scanned pages (default from config)")
	scanCmd.Flags().StringVar(&scanPrefix, "prefix", "scan", "File name prefix for pages")
	scanCmd.Flags().IntVar(&scanResolution, "resolution", 0, "Resolution in DPI (default from config)")
	scanCmd.Flags().StringVar(&scanColorMode, "color-mode", "", "Colour mode (BlackAndWhite1, Grayscale8, RGB24, ...)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "Document format MIME type (default from config)")
	scanCmd.Flags().StringVar(&scanIntent, "intent", "", "Scan intent (Document, Photo, TextAndGraphic, Preview, ...)")
	scanCmd.Flags().StringVar(&scanSource, "source", "", "Input source (Platen, Feeder, Camera)")
	scanCmd.Flags().StringVar(&scanRegion, "region", "", "Scan area WIDTHxHEIGHT[+X+Y] in 1/300 inch")
	scanCmd.Flags().BoolVar(&scanDuplex, "duplex", false, "Scan both sides (feeder only)")
	scanCmd.Flags().BoolVar(&scanStdout, "stdout", false, "Write the first page to stdout instead of a file")
}

// scanResult summarises a finished scan for machine-readable output
type scanResult struct {
	Device string   `json:"device" yaml:"device"`
	Job    string   `json:"job" yaml:"job"`
	Pages  []string `json:"pages" yaml:"pages"`
	Bytes  int64    `json:"bytes" yaml:"bytes"`
}

func buildSettings(caps *escl.Capabilities) (*escl.ScanSettings, error) {
	prefs := registry.Preferences

	b := escl.NewSettingsBuilder(caps)

	// Config defaults only apply where the chosen source supports them;
	// explicit flags are always passed through for validation
	source := escl.InputSource(scanSource)
	if source == "" {
		if sources := caps.InputSources(); len(sources) > 0 {
			source = sources[0]
		}
	}
	ic := caps.InputCaps(source)

	switch {
	case scanResolution != 0:
		b.SetResolution(scanResolution, scanResolution)
	case prefs.DefaultResolution > 0 && ic != nil && supportsResolution(ic, prefs.DefaultResolution):
		b.SetResolution(prefs.DefaultResolution, prefs.DefaultResolution)
	}

	switch {
	case scanFormat != "":
		b.SetDocumentFormat(scanFormat)
	case prefs.DefaultFormat != "" && ic != nil && slices.Contains(ic.DocumentFormats(), prefs.DefaultFormat):
		b.SetDocumentFormat(prefs.DefaultFormat)
	}

	if scanColorMode != "" {
		b.SetColorMode(escl.ColorMode(scanColorMode))
	}
	if scanIntent != "" {
		b.SetIntent(escl.ScanIntent(scanIntent))
	}
	if scanSource != "" {
		b.SetInputSource(source)
	}
	if scanDuplex {
		b.SetDuplex(true)
	}
	if scanRegion != "" {
		w, h, x, y, err := parseRegion(scanRegion)
		if err != nil {
			return nil, escl.NewValidationError(err.Error())
		}
		b.SetRegion(w, h, x, y)
	}

	return b.Build()
}

func supportsResolution(ic *escl.InputCaps, dpi int) bool {
	res := ic.Resolutions()
	return len(res) == 0 || slices.Contains(res, escl.Resolution{X: dpi, Y: dpi})
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if scanStdout && ui.IsTerminal(os.Stdout) {
		return errors.New("refusing to write image data to a terminal; redirect stdout or drop --stdout")
	}

	client, err := openClient(ctx)
	if err != nil {
		return fail("Scan failed", err)
	}

	outputDir := scanOutputDir
	if outputDir == "" {
		outputDir = registry.Preferences.OutputDir
	}

	// Progress goes to stderr when stdout carries data
	progressOut := cmd.OutOrStdout()
	if scanStdout || outputFormat != "detailed" {
		progressOut = io.Discard
		if outputFormat == "detailed" {
			progressOut = os.Stderr
		}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Scan",
		Command: commandLine(),
		Params: []ui.Param{
			{Key: "Device", Value: client.BaseURL()},
			{Key: "Output", Value: scanDestination(outputDir)},
		},
		StepNames: []string{"Reading capabilities", "Submitting job", "Receiving pages", "Checking job"},
		Output:    progressOut,
	})

	result := &scanResult{Device: client.BaseURL(), Pages: []string{}}

	err = runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		onStep(1, ui.StepRunning, "")
		caps, err := client.GetCapabilities(ctx)
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, err
		}
		settings, err := buildSettings(caps)
		if err != nil {
			onStep(1, ui.StepFailed, "invalid settings")
			return nil, err
		}
		onStep(1, ui.StepComplete, caps.MakeAndModel)

		onStep(2, ui.StepRunning, "")
		job, err := client.SubmitScan(ctx, settings)
		if err != nil {
			onStep(2, ui.StepFailed, "")
			return nil, err
		}
		result.Job = job.URL()
		onStep(2, ui.StepComplete, job.URL())

		onStep(3, ui.StepRunning, "")
		if err := receivePages(ctx, job, settings, outputDir, runner, result); err != nil {
			onStep(3, ui.StepFailed, runner.Progress().PageSummary())
			cancelAbandoned(job, err)
			return nil, err
		}
		result.Bytes = runner.Progress().Bytes
		onStep(3, ui.StepComplete, runner.Progress().PageSummary())

		// The final state is informational; devices may already have
		// dropped the job from ScannerStatus
		onStep(4, ui.StepRunning, "")
		state := "not listed"
		if info, ok, err := job.Status(ctx); err == nil && ok {
			state = string(info.JobState)
		}
		onStep(4, ui.StepComplete, state)

		details := []ui.Param{
			{Key: "Job", Value: job.URL()},
			{Key: "Pages", Value: strconv.Itoa(len(result.Pages))},
		}
		if len(result.Pages) > 0 {
			details = append(details, ui.Param{Key: "Files", Value: strings.Join(result.Pages, ", ")})
		}
		return details, nil
	})
	if err != nil {
		if outputFormat == "detailed" {
			return &shownError{err: err}
		}
		return err
	}

	if outputFormat != "detailed" {
		return emit(cmd.OutOrStdout(), result, nil)
	}
	return nil
}

func scanDestination(outputDir string) string {
	if scanStdout {
		return "stdout"
	}
	return outputDir
}

// receivePages drains the job until the device reports no more pages
func receivePages(ctx context.Context, job *escl.Job, settings *escl.ScanSettings, outputDir string, runner *ui.Runner, result *scanResult) error {
	requested := ""
	if settings.DocumentFormatExt != nil {
		requested = *settings.DocumentFormatExt
	}

	var writer *pageWriter
	if !scanStdout {
		w, err := newPageWriter(outputDir, scanPrefix)
		if err != nil {
			return err
		}
		writer = w
	}

	for {
		doc, err := job.NextDocument(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		runner.AddPage(len(doc.Data))

		if scanStdout {
			if _, err := os.Stdout.Write(doc.Data); err != nil {
				return fmt.Errorf("failed to write page to stdout: %w", err)
			}
			result.Pages = append(result.Pages, "-")
			// Only one page fits on stdout
			return nil
		}

		path, err := writer.Write(doc, requested)
		if err != nil {
			return err
		}
		result.Pages = append(result.Pages, path)
		logging.Info("Page saved", zap.String("path", path), zap.Int("bytes", len(doc.Data)))
	}
}

// cancelAbandoned deletes a job that was left behind by an interrupted or
// failed download. It uses its own context since ctx may already be done.
func cancelAbandoned(job *escl.Job, cause error) {
	if job.Exhausted() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := job.Cancel(ctx); err != nil {
		logging.Warn("Failed to cancel job", zap.String("job", job.URL()), zap.Error(err))
		return
	}
	logging.Info("Job canceled", zap.String("job", job.URL()), zap.NamedError("cause", cause))
}

// cancelCmd cancels scan jobs on the scanner
var cancelCmd = &cobra.Command{
	Use:   "cancel [job]",
	Short: "Cancel a scan job",
	Long: `Cancel a scan job on the scanner.

The job may be given as an absolute URL or a path such as
/eSCL/ScanJobs/42. Without an argument every job the scanner lists as
Pending or Processing is canceled.`,
	Example: `  escl cancel --device office /eSCL/ScanJobs/42
  escl cancel --device office`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := openClient(ctx)
	if err != nil {
		return fail("Cancel failed", err)
	}

	var targets []string
	if len(args) == 1 {
		targets = args
	} else {
		status, err := client.GetStatus(ctx)
		if err != nil {
			return fail("Cancel failed", err)
		}
		for _, info := range status.Jobs {
			if !info.JobState.Terminal() {
				targets = append(targets, info.JobURI)
			}
		}
	}

	canceled := []string{}
	for _, target := range targets {
		job, err := client.Job(target)
		if err != nil {
			return fail("Cancel failed", err)
		}
		if err := job.Cancel(ctx); err != nil {
			return fail("Cancel failed", err)
		}
		canceled = append(canceled, job.URL())
	}

	return emit(cmd.OutOrStdout(), canceled, func() string {
		if len(canceled) == 0 {
			return ui.NewWarningResult("No active jobs", ui.Param{Key: "Device", Value: client.BaseURL()}).Render()
		}
		result := ui.NewSuccessResult("Canceled", ui.Param{Key: "Device", Value: client.BaseURL()})
		for i, u := range canceled {
			result.AddDetail("Job "+strconv.Itoa(i+1), u)
		}
		return result.Render()
	})
}
