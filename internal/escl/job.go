package escl

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/escl/internal/logging"
)

// Document is one page delivered by NextDocument
type Document struct {
	// Data is the response body exactly as the device sent it
	Data []byte
	// ContentType is the Content-Type the device declared, if any
	ContentType string
}

// Job is a handle to a scan job on the device. Its URL never changes. The
// handle is Active until NextDocument sees 404, then Exhausted; an exhausted
// handle still issues requests and keeps reporting io.EOF.
type Job struct {
	client    *Client
	url       *url.URL
	exhausted atomic.Bool
}

func newJob(c *Client, u *url.URL) *Job {
	return &Job{client: c, url: u}
}

// URL returns the job's absolute resource URL
func (j *Job) URL() string {
	return j.url.String()
}

// Exhausted reports whether any NextDocument call has seen 404. It stays
// true once set, even if the device later serves another page.
func (j *Job) Exhausted() bool {
	return j.exhausted.Load()
}

// NextDocument fetches the next page of the job.
//
//   - 200: returns the page; call again for the next one
//   - 404: the job has no more pages; returns nil, io.EOF
//   - anything else: UnexpectedStatus
//
// Every call is a fresh GET; nothing is buffered between calls.
func (j *Job) NextDocument(ctx context.Context) (*Document, error) {
	target := j.url.JoinPath(nextDocumentPath).String()

	resp, body, err := j.client.do(ctx, opNextDocument, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		j.client.metrics.page()
		if len(body) == 0 {
			logging.Warn("Scanner delivered an empty page", zap.String("job", j.URL()))
		}
		return &Document{
			Data:        body,
			ContentType: resp.Header.Get("Content-Type"),
		}, nil

	case http.StatusNotFound:
		j.exhausted.Store(true)
		return nil, io.EOF

	default:
		return nil, NewUnexpectedStatusError(target, resp.StatusCode)
	}
}

// Cancel asks the device to cancel the job with a single DELETE. Any 2xx is
// success.
func (j *Job) Cancel(ctx context.Context) error {
	target := j.URL()

	resp, _, err := j.client.do(ctx, opCancel, http.MethodDelete, target, nil, "")
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewUnexpectedStatusError(target, resp.StatusCode)
	}
	return nil
}

// Status looks the job up in a fresh ScannerStatus. The second result is
// false when the device no longer lists the job.
func (j *Job) Status(ctx context.Context) (*JobInfo, bool, error) {
	status, err := j.client.GetStatus(ctx)
	if err != nil {
		return nil, false, err
	}
	info, ok := status.FindJob(j.URL())
	return info, ok, nil
}

// jobPath reduces a job URI to its path for comparison
func jobPath(uri string) string {
	if u, err := url.Parse(uri); err == nil {
		uri = u.Path
	}
	return strings.TrimRight(uri, "/")
}
