package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/escl/internal/config"
	"github.com/muurk/escl/internal/discovery"
	"github.com/muurk/escl/internal/escl"
	"github.com/muurk/escl/internal/logging"
	"github.com/muurk/escl/internal/ui"
)

// shownError marks an error that has already been rendered to the user
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// fail renders err as a failure box in detailed mode and marks it shown
func fail(title string, err error) error {
	if outputFormat != "detailed" {
		return err
	}
	ui.NewPrinter(os.Stderr).PrintError(title, err)
	return &shownError{err: err}
}

// emit writes v as JSON or YAML, or calls detailed for the styled view
func emit(w io.Writer, v any, detailed func() string) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ui.RenderOnce(w, detailed())
	}
}

// commandLine reconstructs the invocation for headers
func commandLine() string {
	return strings.Join(append([]string{"escl"}, os.Args[1:]...), " ")
}

// resolveDevice maps a --device value to a base URL. An http(s) URL is used
// as given; anything else must name a remembered scanner.
func resolveDevice(reg *config.Registry, ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if reg != nil {
		if device, ok := reg.Resolve(ref); ok && device.BaseURL != "" {
			return device.BaseURL, nil
		}
	}
	return "", fmt.Errorf("unknown device %q: pass a base URL (e.g. http://192.168.1.20/eSCL) or run 'escl discover --save' first", ref)
}

// pickDevice returns the base URL to talk to: --device when given,
// otherwise the single scanner discovery finds
func pickDevice(ctx context.Context) (string, error) {
	if deviceRef != "" {
		return resolveDevice(registry, deviceRef)
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = registry.Preferences.DiscoverTimeoutDuration()

	logging.Info("No device given, running discovery", zap.Duration("timeout", scanner.Timeout))
	devices, err := scanner.Discover(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) > 1 && interactive() {
		chosen, err := ui.PickDevice(devices, os.Stderr)
		if err != nil {
			return "", err
		}
		return chosen.BaseURL(), nil
	}
	return singleDevice(devices)
}

// interactive reports whether a picker can be shown
func interactive() bool {
	return outputFormat == "detailed" && ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stderr)
}

func singleDevice(devices []*discovery.Device) (string, error) {
	switch len(devices) {
	case 0:
		return "", errors.New("no scanners found; use --device to give the scanner address")
	case 1:
		logging.Info("Using discovered scanner", zap.String("device", devices[0].String()))
		return devices[0].BaseURL(), nil
	default:
		names := make([]string, len(devices))
		for i, d := range devices {
			names[i] = fmt.Sprintf("%s (%s)", d.Instance, d.BaseURL())
		}
		return "", fmt.Errorf("multiple scanners found, use --device to pick one: %s", strings.Join(names, ", "))
	}
}

// openClient resolves the device and builds a client with the shared metrics
func openClient(ctx context.Context) (*escl.Client, error) {
	baseURL, err := pickDevice(ctx)
	if err != nil {
		return nil, err
	}
	return escl.NewClient(baseURL, escl.WithMetrics(metrics))
}

// parseRegion parses "WxH" or "WxH+X+Y" in 1/300 inch units
func parseRegion(s string) (width, height, x, y int, err error) {
	size, offsets, hasOffsets := strings.Cut(s, "+")

	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("invalid region %q: want WIDTHxHEIGHT[+X+Y]", s)
	}
	if width, err = strconv.Atoi(w); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid region width %q", w)
	}
	if height, err = strconv.Atoi(h); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid region height %q", h)
	}

	if hasOffsets {
		xs, ys, ok := strings.Cut(offsets, "+")
		if !ok {
			return 0, 0, 0, 0, fmt.Errorf("invalid region %q: offsets need both X and Y", s)
		}
		if x, err = strconv.Atoi(xs); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid region x offset %q", xs)
		}
		if y, err = strconv.Atoi(ys); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid region y offset %q", ys)
		}
	}
	return width, height, x, y, nil
}

var knownExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/tiff":      "tiff",
	"application/pdf": "pdf",
	"image/bmp":       "bmp",
	"image/heic":      "heic",
}

// extensionFor picks a file extension from the page's Content-Type, falling
// back to the requested format
func extensionFor(contentType, requested string) string {
	for _, candidate := range []string{contentType, requested} {
		if candidate == "" {
			continue
		}
		mediaType, _, err := mime.ParseMediaType(candidate)
		if err != nil {
			continue
		}
		if ext, ok := knownExtensions[strings.ToLower(mediaType)]; ok {
			return ext
		}
	}
	return "bin"
}

// pageWriter names and writes pages as scan-001.jpg, scan-002.jpg, ...
// starting after the highest index already in the directory
type pageWriter struct {
	dir    string
	prefix string
	next   int
}

func newPageWriter(dir, prefix string) (*pageWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.*"))
	if err != nil {
		return nil, err
	}

	highest := 0
	for _, m := range matches {
		base := strings.TrimPrefix(filepath.Base(m), prefix+"-")
		n, err := strconv.Atoi(strings.TrimSuffix(base, filepath.Ext(base)))
		if err == nil && n > highest {
			highest = n
		}
	}
	return &pageWriter{dir: dir, prefix: prefix, next: highest + 1}, nil
}

// Write stores one page and returns its path
func (w *pageWriter) Write(doc *escl.Document, requested string) (string, error) {
	name := fmt.Sprintf("%s-%03d.%s", w.prefix, w.next, extensionFor(doc.ContentType, requested))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write page: %w", err)
	}
	w.next++
	return path, nil
}
