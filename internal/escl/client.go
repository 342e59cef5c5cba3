package escl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/escl/internal/logging"
	"github.com/muurk/escl/internal/version"
)

const (
	// DefaultTimeout is the request timeout of the default HTTP client. Page
	// downloads at high resolution can take a while on slow devices.
	DefaultTimeout = 60 * time.Second

	// Resource names appended to the base URL
	capabilitiesPath = "ScannerCapabilities"
	statusPath       = "ScannerStatus"
	scanJobsPath     = "ScanJobs"
	nextDocumentPath = "NextDocument"
)

// Client talks to one scanner. The base URL is fixed at construction; the
// client holds no other state, so it is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	metrics    *Metrics
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client (timeouts, TLS, proxies)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records request metrics
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the scanner at baseURL. The base URL must
// include the eSCL root segment if the device uses one, e.g.
// "http://192.168.1.20/eSCL".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid base URL %q: %v", baseURL, err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, NewValidationError(fmt.Sprintf("base URL %q must be an absolute http(s) URL", baseURL))
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the scanner's eSCL root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resource appends a fixed path segment to the base URL
func (c *Client) resource(segment string) *url.URL {
	return c.baseURL.JoinPath(segment)
}

// GetCapabilities fetches and decodes ScannerCapabilities
func (c *Client) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	target := c.resource(capabilitiesPath).String()

	body, err := c.getDocument(ctx, opCapabilities, target)
	if err != nil {
		return nil, err
	}

	caps, err := DecodeCapabilities(body)
	if err != nil {
		return nil, withURL(err, target)
	}
	return caps, nil
}

// GetStatus fetches and decodes ScannerStatus
func (c *Client) GetStatus(ctx context.Context) (*ScannerStatus, error) {
	target := c.resource(statusPath).String()

	body, err := c.getDocument(ctx, opStatus, target)
	if err != nil {
		return nil, err
	}

	status, err := DecodeStatus(body)
	if err != nil {
		return nil, withURL(err, target)
	}
	return status, nil
}

// SubmitScan posts settings to ScanJobs. Only 201 Created is success; the
// returned Job is addressed by the Location header of that response.
func (c *Client) SubmitScan(ctx context.Context, settings *ScanSettings) (*Job, error) {
	if settings == nil {
		return nil, NewValidationError("scan settings are required")
	}

	target := c.resource(scanJobsPath)

	payload, err := EncodeSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("encode scan settings: %w", err)
	}
	logging.LogBody("ScanSettings request", payload)

	resp, _, err := c.do(ctx, opSubmit, http.MethodPost, target.String(), payload, "text/xml")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, NewUnexpectedStatusError(target.String(), resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, NewMissingLocationError(target.String(), "", nil)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, NewMissingLocationError(target.String(), location, err)
	}

	job := newJob(c, target.ResolveReference(ref))
	logging.Info("Scan job created", zap.String("job", job.URL()))
	return job, nil
}

// Job returns a handle for a job that already exists on the device, given
// its absolute URL or a path relative to the base URL
func (c *Client) Job(location string) (*Job, error) {
	if location == "" {
		return nil, NewValidationError("job location is required")
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid job location %q: %v", location, err))
	}
	if !ref.IsAbs() && !strings.HasPrefix(ref.Path, "/") {
		return newJob(c, c.baseURL.JoinPath(ref.Path)), nil
	}
	return newJob(c, c.baseURL.ResolveReference(ref)), nil
}

// getDocument performs a GET that must answer 200 with an XML body
func (c *Client) getDocument(ctx context.Context, op, target string) ([]byte, error) {
	resp, body, err := c.do(ctx, op, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewUnexpectedStatusError(target, resp.StatusCode)
	}
	logging.LogBody(op+" response", body)
	return body, nil
}

// do performs exactly one HTTP exchange and reads the whole body. There is no
// retry; every failure goes straight back to the caller.
func (c *Client) do(ctx context.Context, op, method, target string, payload []byte, contentType string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, NewTransportError(fmt.Sprintf("failed to create %s request", method), target, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logging.LogRequest(method, target)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start), 0)
		return nil, nil, NewTransportError(fmt.Sprintf("%s request failed", method), target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(op, 0, elapsed, len(body))
		return nil, nil, NewTransportError("failed to read response body", target, err)
	}

	c.metrics.observe(op, resp.StatusCode, elapsed, len(body))
	logging.LogResponse(method, target, resp.StatusCode, len(body), elapsed)

	return resp, body, nil
}

// withURL stamps the request URL on a DeviceError produced without one
func withURL(err error, target string) error {
	var devErr *DeviceError
	if errors.As(err, &devErr) && devErr.URL == "" {
		devErr.URL = target
	}
	return err
}
