package escl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func opError(err error) error {
	return &url.Error{
		Op:  "Get",
		URL: "http://192.168.1.20/eSCL/ScannerStatus",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: err},
	}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want NetworkErrorSubtype
	}{
		{"nil", nil, NetworkErrorGeneral},
		{"timeout", opError(&timeoutError{}), NetworkErrorTimeout},
		{"connection refused", opError(syscall.ECONNREFUSED), NetworkErrorConnectionRefused},
		{"host unreachable", opError(syscall.EHOSTUNREACH), NetworkErrorHostUnreachable},
		{"network unreachable", opError(syscall.ENETUNREACH), NetworkErrorNetworkUnreachable},
		{"dns", &net.DNSError{Err: "no such host", Name: "scanner.local", IsNotFound: true}, NetworkErrorDNS},
		{"other", errors.New("boom"), NetworkErrorGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyNetworkError(tt.err); got != tt.want {
				t.Errorf("classifyNetworkError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTransportError(t *testing.T) {
	cause := opError(syscall.ECONNREFUSED)
	err := NewTransportError("GET request failed", "http://192.168.1.20/eSCL/ScannerStatus", cause)

	if err.Type != ErrTypeTransport {
		t.Errorf("Type = %v, want %v", err.Type, ErrTypeTransport)
	}
	if err.NetworkSubtype != NetworkErrorConnectionRefused {
		t.Errorf("NetworkSubtype = %v", err.NetworkSubtype)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Error("transport error should unwrap to the cause")
	}
	if !strings.Contains(err.Error(), "/eSCL/ScannerStatus") {
		t.Errorf("Error() = %q, want URL", err.Error())
	}
}

func TestNewDecodeError_BoundsBody(t *testing.T) {
	body := []byte(strings.Repeat("x", 1000))
	err := NewDecodeError("failed", "", body, errors.New("syntax error"))

	if len(err.Body) != maxBodySnippet {
		t.Errorf("len(Body) = %d, want %d", len(err.Body), maxBodySnippet)
	}
}

func TestNewMissingLocationError(t *testing.T) {
	missing := NewMissingLocationError("http://h/eSCL/ScanJobs", "", nil)
	if missing.StatusCode != 201 || !strings.Contains(missing.Message, "did not return") {
		t.Errorf("missing = %+v", missing)
	}

	bad := NewMissingLocationError("http://h/eSCL/ScanJobs", "http://[bad", errors.New("parse"))
	if !strings.Contains(bad.Message, "http://[bad") {
		t.Errorf("Message = %q, want offending location", bad.Message)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"transport", NewTransportError("x", "", nil), IsTransportError},
		{"decode", NewDecodeError("x", "", nil, nil), IsDecodeError},
		{"status", NewUnexpectedStatusError("", 500), IsUnexpectedStatus},
		{"location", NewMissingLocationError("", "", nil), IsMissingLocation},
		{"discovery", NewDiscoveryError("x", nil), IsDiscoveryError},
		{"validation", NewValidationError("x"), IsValidationError},
	}
	all := []func(error) bool{
		IsTransportError, IsDecodeError, IsUnexpectedStatus,
		IsMissingLocation, IsDiscoveryError, IsValidationError,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := 0
			for _, check := range all {
				if check(tt.err) {
					matches++
				}
			}
			if !tt.check(tt.err) || matches != 1 {
				t.Errorf("predicate mismatch for %v (matches = %d)", tt.err, matches)
			}

			wrapped := fmt.Errorf("scan failed: %w", tt.err)
			if !tt.check(wrapped) {
				t.Error("predicate should see through wrapping")
			}
		})
	}

	if IsTransportError(errors.New("plain")) {
		t.Error("plain error should not match")
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(NewUnexpectedStatusError("", 503)); got != 503 {
		t.Errorf("StatusCode() = %d, want 503", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewTransportError("x", "", opError(&timeoutError{})), "Scanner not responding (timeout)"},
		{NewTransportError("x", "", opError(syscall.ECONNREFUSED)), "Scanner refused connection"},
		{NewUnexpectedStatusError("", 409), "Scanner error (HTTP 409)"},
		{NewDecodeError("x", "", nil, nil), "Failed to parse scanner response"},
		{NewValidationError("resolution 1200x1200 not supported"), "resolution 1200x1200 not supported"},
		{errors.New("plain"), "plain"},
	}

	for _, tt := range tests {
		if got := ShortMessage(tt.err); got != tt.want {
			t.Errorf("ShortMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestTroubleshootingHint(t *testing.T) {
	busy := TroubleshootingHint(NewUnexpectedStatusError("", 503))
	if len(busy) == 0 || !strings.Contains(busy[0], "busy") {
		t.Errorf("hint for 503 = %v", busy)
	}

	if hints := TroubleshootingHint(NewDiscoveryError("x", nil)); len(hints) == 0 {
		t.Error("discovery errors should carry hints")
	}
	if hints := TroubleshootingHint(errors.New("plain")); hints != nil {
		t.Errorf("hints for plain error = %v, want nil", hints)
	}
}
