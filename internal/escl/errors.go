package escl

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates the underlying network call failed
	ErrTypeTransport ErrorType = iota
	// ErrTypeDecode indicates a response body that is not valid XML or does not match the schema
	ErrTypeDecode
	// ErrTypeUnexpectedStatus indicates an HTTP status code outside the contract for the operation
	ErrTypeUnexpectedStatus
	// ErrTypeMissingLocation indicates a 201 job creation without a usable Location header
	ErrTypeMissingLocation
	// ErrTypeDiscoveryTransport indicates the multicast discovery channel itself failed
	ErrTypeDiscoveryTransport
	// ErrTypeValidation indicates scan settings rejected before any request was sent
	ErrTypeValidation
)

// NetworkErrorSubtype provides more specific transport error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// maxBodySnippet bounds how much of an offending body is kept on a DeviceError
const maxBodySnippet = 256

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeDecode:
		return "Decode Error"
	case ErrTypeUnexpectedStatus:
		return "Unexpected Status"
	case ErrTypeMissingLocation:
		return "Missing Location"
	case ErrTypeDiscoveryTransport:
		return "Discovery Error"
	case ErrTypeValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a scanner
type DeviceError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (UnexpectedStatus, MissingLocation)
	URL            string              // Resource the request targeted
	Body           string              // Bounded snippet of the offending body (Decode)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific transport error type
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.URL != "" {
		b.WriteString(" [")
		b.WriteString(e.URL)
		b.WriteString("]")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// classifyNetworkError picks a subtype for a transport failure
func classifyNetworkError(err error) NetworkErrorSubtype {
	if err == nil {
		return NetworkErrorGeneral
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return NetworkErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkErrorDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return NetworkErrorConnectionRefused
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return NetworkErrorHostUnreachable
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return NetworkErrorNetworkUnreachable
		}
	}

	return NetworkErrorGeneral
}

// NewTransportError creates a transport error with automatic classification
func NewTransportError(message, resource string, err error) *DeviceError {
	return &DeviceError{
		Type:           ErrTypeTransport,
		Message:        message,
		URL:            resource,
		Err:            err,
		NetworkSubtype: classifyNetworkError(err),
	}
}

// NewDecodeError creates a decode error that keeps the parser diagnostic and
// a bounded copy of the body that failed to decode
func NewDecodeError(message, resource string, body []byte, err error) *DeviceError {
	snippet := body
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return &DeviceError{
		Type:    ErrTypeDecode,
		Message: message,
		URL:     resource,
		Body:    string(snippet),
		Err:     err,
	}
}

// NewUnexpectedStatusError creates an error for a status code outside the operation's contract
func NewUnexpectedStatusError(resource string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeUnexpectedStatus,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		URL:        resource,
	}
}

// NewMissingLocationError creates an error for a job that the device created
// but did not give a usable address for
func NewMissingLocationError(resource, location string, err error) *DeviceError {
	message := "device did not return a Location header for the new job"
	if location != "" {
		message = fmt.Sprintf("device returned an unusable Location header %q", location)
	}
	return &DeviceError{
		Type:       ErrTypeMissingLocation,
		Message:    message,
		StatusCode: 201,
		URL:        resource,
		Err:        err,
	}
}

// NewDiscoveryError creates an error for a failure of the discovery channel itself
func NewDiscoveryError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:           ErrTypeDiscoveryTransport,
		Message:        message,
		Err:            err,
		NetworkSubtype: classifyNetworkError(err),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

func isType(err error, t ErrorType) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == t
	}
	return false
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	return isType(err, ErrTypeTransport)
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool {
	return isType(err, ErrTypeDecode)
}

// IsUnexpectedStatus checks if an error is an unexpected HTTP status
func IsUnexpectedStatus(err error) bool {
	return isType(err, ErrTypeUnexpectedStatus)
}

// IsMissingLocation checks if an error reports a job without a usable Location
func IsMissingLocation(err error) bool {
	return isType(err, ErrTypeMissingLocation)
}

// IsDiscoveryError checks if an error is a discovery transport error
func IsDiscoveryError(err error) bool {
	return isType(err, ErrTypeDiscoveryTransport)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrTypeValidation)
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.StatusCode
	}
	return 0
}

// TroubleshootingHint returns user-facing advice for an error
func TroubleshootingHint(err error) []string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return nil
	}

	switch devErr.Type {
	case ErrTypeTransport:
		switch devErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return []string{
				"The scanner did not respond in time",
				"Check that the scanner is powered on and awake",
				"Increase --timeout for slow devices",
			}
		case NetworkErrorConnectionRefused:
			return []string{
				"The scanner refused the connection",
				"Verify the port and the eSCL path (often /eSCL)",
				"Some devices disable eSCL in their web admin page",
			}
		case NetworkErrorDNS:
			return []string{
				"Could not resolve the scanner hostname",
				"Use the IP address instead of the hostname",
			}
		case NetworkErrorHostUnreachable, NetworkErrorNetworkUnreachable:
			return []string{
				"The scanner is not reachable on the network",
				"Check that you are on the same network segment",
			}
		default:
			return []string{
				"Check your network connection",
				"Verify the scanner is powered on",
			}
		}

	case ErrTypeDecode:
		return []string{
			"The scanner returned a document this client could not parse",
			"Run with ESCL_LOG_LEVEL=debug to see the raw response",
			"Check that --device points at the eSCL root (e.g. http://host/eSCL)",
		}

	case ErrTypeUnexpectedStatus:
		if devErr.StatusCode == 409 || devErr.StatusCode == 503 {
			return []string{
				fmt.Sprintf("The scanner is busy (HTTP %d)", devErr.StatusCode),
				"Wait for the current job to finish or cancel it",
			}
		}
		return []string{
			fmt.Sprintf("The scanner answered HTTP %d", devErr.StatusCode),
			"Check the requested settings against 'escl caps'",
		}

	case ErrTypeMissingLocation:
		return []string{
			"The scanner accepted the job but did not say where it lives",
			"The job may still be running on the device; check 'escl status'",
		}

	case ErrTypeDiscoveryTransport:
		return []string{
			"Multicast discovery could not run on this host",
			"Check that UDP port 5353 is not blocked by a firewall",
			"Use --device to give the scanner address directly",
		}

	case ErrTypeValidation:
		return []string{"Check the requested settings against 'escl caps'"}
	}

	return nil
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTransport:
		switch devErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Scanner not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Scanner refused connection"
		case NetworkErrorDNS:
			return "Cannot resolve scanner hostname"
		default:
			return "Network error - check connection"
		}
	case ErrTypeDecode:
		return "Failed to parse scanner response"
	case ErrTypeUnexpectedStatus:
		return fmt.Sprintf("Scanner error (HTTP %d)", devErr.StatusCode)
	case ErrTypeMissingLocation:
		return "Scanner did not return a job location"
	case ErrTypeDiscoveryTransport:
		return "Discovery failed"
	default:
		return devErr.Message
	}
}
