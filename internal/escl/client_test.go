package escl

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeScanner is an httptest handler that answers like an eSCL device
// rooted at /eSCL and records the requests it saw
type fakeScanner struct {
	mu       sync.Mutex
	requests []recordedRequest

	capsStatus   int
	capsBody     string
	statusBody   string
	jobStatus    int
	location     string
	pages        []string
	deleteStatus int
}

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	UserAgent   string
	Body        string
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{
		capsStatus:   http.StatusOK,
		capsBody:     capabilitiesXML,
		statusBody:   statusXML,
		jobStatus:    http.StatusCreated,
		location:     "/eSCL/ScanJobs/42",
		deleteStatus: http.StatusOK,
	}
}

func (f *fakeScanner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		UserAgent:   r.Header.Get("User-Agent"),
		Body:        string(body),
	})

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/eSCL/ScannerCapabilities":
		w.WriteHeader(f.capsStatus)
		_, _ = io.WriteString(w, f.capsBody)

	case r.Method == http.MethodGet && r.URL.Path == "/eSCL/ScannerStatus":
		_, _ = io.WriteString(w, f.statusBody)

	case r.Method == http.MethodPost && r.URL.Path == "/eSCL/ScanJobs":
		if f.location != "" {
			w.Header().Set("Location", f.location)
		}
		w.WriteHeader(f.jobStatus)

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/NextDocument"):
		if len(f.pages) == 0 {
			http.NotFound(w, r)
			return
		}
		page := f.pages[0]
		f.pages = f.pages[1:]
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = io.WriteString(w, page)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/eSCL/ScanJobs/"):
		w.WriteHeader(f.deleteStatus)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeScanner) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func startScanner(t *testing.T, f *fakeScanner) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL + "/eSCL")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return server, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"http with root", "http://192.168.1.20/eSCL", false},
		{"https with port", "https://scanner.local:443/eSCL", false},
		{"no root segment", "http://192.168.1.20", false},
		{"missing scheme", "192.168.1.20/eSCL", true},
		{"wrong scheme", "ftp://192.168.1.20/eSCL", true},
		{"no host", "http:///eSCL", true},
		{"unparseable", "http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL)
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("NewClient(%q) error = %v, want validation error", tt.baseURL, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient(%q) error = %v", tt.baseURL, err)
			}
			if client.BaseURL() != tt.baseURL {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.baseURL)
			}
		})
	}
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{Timeout: 5 * time.Second}
	m := NewMetrics(nil)

	client, err := NewClient("http://192.168.1.20/eSCL",
		WithHTTPClient(hc),
		WithMetrics(m),
		WithUserAgent("test-agent/1.0"),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.httpClient != hc {
		t.Error("WithHTTPClient was not applied")
	}
	if client.metrics != m {
		t.Error("WithMetrics was not applied")
	}
	if client.userAgent != "test-agent/1.0" {
		t.Errorf("userAgent = %q", client.userAgent)
	}
}

func TestClient_GetCapabilities(t *testing.T) {
	f := newFakeScanner()
	_, client := startScanner(t, f)

	caps, err := client.GetCapabilities(context.Background())
	if err != nil {
		t.Fatalf("GetCapabilities() error = %v", err)
	}
	if caps.MakeAndModel != "HP LaserJet MFP M28w" {
		t.Errorf("MakeAndModel = %q", caps.MakeAndModel)
	}

	reqs := f.recorded()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if reqs[0].Method != http.MethodGet || reqs[0].Path != "/eSCL/ScannerCapabilities" {
		t.Errorf("request = %s %s", reqs[0].Method, reqs[0].Path)
	}
	if !strings.HasPrefix(reqs[0].UserAgent, "escl-go/") {
		t.Errorf("User-Agent = %q", reqs[0].UserAgent)
	}
}

func TestClient_GetCapabilities_TrailingSlashBase(t *testing.T) {
	f := newFakeScanner()
	server := httptest.NewServer(f)
	defer server.Close()

	client, err := NewClient(server.URL + "/eSCL/")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.GetCapabilities(context.Background()); err != nil {
		t.Fatalf("GetCapabilities() error = %v", err)
	}
	if got := f.recorded()[0].Path; got != "/eSCL/ScannerCapabilities" {
		t.Errorf("path = %q, want /eSCL/ScannerCapabilities", got)
	}
}

func TestClient_GetCapabilities_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		check      func(error) bool
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, "", IsUnexpectedStatus, 500},
		{"service unavailable", http.StatusServiceUnavailable, "busy", IsUnexpectedStatus, 503},
		{"no content", http.StatusNoContent, "", IsUnexpectedStatus, 204},
		{"html instead of xml", http.StatusOK, "<html><body>login</body></html>", IsDecodeError, 0},
		{"garbage", http.StatusOK, "\x00\x01\x02", IsDecodeError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeScanner()
			f.capsStatus = tt.status
			f.capsBody = tt.body
			_, client := startScanner(t, f)

			caps, err := client.GetCapabilities(context.Background())
			if err == nil {
				t.Fatalf("GetCapabilities() = %+v, want error", caps)
			}
			if !tt.check(err) {
				t.Errorf("GetCapabilities() error = %v (%T)", err, err)
			}
			if got := StatusCode(err); got != tt.wantStatus {
				t.Errorf("StatusCode(err) = %d, want %d", got, tt.wantStatus)
			}
			if devErr := err.(*DeviceError); !strings.HasSuffix(devErr.URL, "/eSCL/ScannerCapabilities") {
				t.Errorf("error URL = %q", devErr.URL)
			}
		})
	}
}

func TestClient_GetStatus(t *testing.T) {
	f := newFakeScanner()
	_, client := startScanner(t, f)

	status, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status.State != StateProcessing || len(status.Jobs) != 2 {
		t.Errorf("status = %+v", status)
	}
	if got := f.recorded()[0].Path; got != "/eSCL/ScannerStatus" {
		t.Errorf("path = %q", got)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL + "/eSCL"
	server.Close()

	client, err := NewClient(base, WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.GetStatus(context.Background())
	if !IsTransportError(err) {
		t.Fatalf("GetStatus() error = %v, want transport error", err)
	}
	if StatusCode(err) != 0 {
		t.Errorf("StatusCode(err) = %d, want 0", StatusCode(err))
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	f := newFakeScanner()
	_, client := startScanner(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GetCapabilities(ctx); !IsTransportError(err) {
		t.Errorf("GetCapabilities() error = %v, want transport error", err)
	}
	if n := len(f.recorded()); n != 0 {
		t.Errorf("requests = %d, want 0 for a canceled context", n)
	}
}

func TestClient_SubmitScan(t *testing.T) {
	f := newFakeScanner()
	server, client := startScanner(t, f)

	settings := &ScanSettings{Version: "2.63", XResolution: Ptr(300), YResolution: Ptr(300)}
	job, err := client.SubmitScan(context.Background(), settings)
	if err != nil {
		t.Fatalf("SubmitScan() error = %v", err)
	}

	if want := server.URL + "/eSCL/ScanJobs/42"; job.URL() != want {
		t.Errorf("job.URL() = %q, want %q", job.URL(), want)
	}
	if job.Exhausted() {
		t.Error("new job should not be exhausted")
	}

	reqs := f.recorded()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Method != http.MethodPost || req.Path != "/eSCL/ScanJobs" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if req.ContentType != "text/xml" {
		t.Errorf("Content-Type = %q, want text/xml", req.ContentType)
	}
	if !strings.Contains(req.Body, "<scan:XResolution>300</scan:XResolution>") {
		t.Errorf("body does not carry the settings:\n%s", req.Body)
	}
}

func TestClient_SubmitScan_Location(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantPath string
		absolute string
	}{
		{"absolute path", "/eSCL/ScanJobs/42", "/eSCL/ScanJobs/42", ""},
		{"relative to ScanJobs", "ScanJobs/7", "/eSCL/ScanJobs/7", ""},
		{"trailing slash", "/eSCL/ScanJobs/42/", "/eSCL/ScanJobs/42/", ""},
		{"absolute URL", "", "", "http://10.0.0.9:8080/eSCL/ScanJobs/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeScanner()
			f.location = tt.location
			if tt.absolute != "" {
				f.location = tt.absolute
			}
			server, client := startScanner(t, f)

			job, err := client.SubmitScan(context.Background(), &ScanSettings{Version: "2.0"})
			if err != nil {
				t.Fatalf("SubmitScan() error = %v", err)
			}

			want := server.URL + tt.wantPath
			if tt.absolute != "" {
				want = tt.absolute
			}
			if job.URL() != want {
				t.Errorf("job.URL() = %q, want %q", job.URL(), want)
			}
		})
	}
}

func TestClient_SubmitScan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		location string
		check    func(error) bool
	}{
		{"ok instead of created", http.StatusOK, "/eSCL/ScanJobs/1", IsUnexpectedStatus},
		{"conflict", http.StatusConflict, "", IsUnexpectedStatus},
		{"busy", http.StatusServiceUnavailable, "", IsUnexpectedStatus},
		{"created without location", http.StatusCreated, "", IsMissingLocation},
		{"created with bad location", http.StatusCreated, "http://[bad", IsMissingLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeScanner()
			f.jobStatus = tt.status
			f.location = tt.location
			_, client := startScanner(t, f)

			job, err := client.SubmitScan(context.Background(), &ScanSettings{Version: "2.0"})
			if err == nil {
				t.Fatalf("SubmitScan() = %v, want error", job.URL())
			}
			if !tt.check(err) {
				t.Errorf("SubmitScan() error = %v", err)
			}
			if got := StatusCode(err); got != tt.status {
				t.Errorf("StatusCode(err) = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestClient_SubmitScan_NilSettings(t *testing.T) {
	f := newFakeScanner()
	_, client := startScanner(t, f)

	if _, err := client.SubmitScan(context.Background(), nil); !IsValidationError(err) {
		t.Errorf("SubmitScan(nil) error = %v, want validation error", err)
	}
	if n := len(f.recorded()); n != 0 {
		t.Errorf("requests = %d, want none", n)
	}
}

func TestClient_Job(t *testing.T) {
	client, err := NewClient("http://192.168.1.20/eSCL")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	tests := []struct {
		location string
		want     string
		wantErr  bool
	}{
		{"/eSCL/ScanJobs/42", "http://192.168.1.20/eSCL/ScanJobs/42", false},
		{"ScanJobs/42", "http://192.168.1.20/eSCL/ScanJobs/42", false},
		{"http://192.168.1.21/eSCL/ScanJobs/9", "http://192.168.1.21/eSCL/ScanJobs/9", false},
		{"", "", true},
		{"http://[bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			job, err := client.Job(tt.location)
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("Job(%q) error = %v, want validation error", tt.location, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Job(%q) error = %v", tt.location, err)
			}
			if job.URL() != tt.want {
				t.Errorf("Job(%q).URL() = %q, want %q", tt.location, job.URL(), tt.want)
			}
		})
	}
}
