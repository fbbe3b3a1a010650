package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrFetchTimeout        = errors.New("upstream fetch timed out")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// ResourceExceededError is returned the moment a live byte counter passes
// the configured ceiling; the message states the limit.
type ResourceExceededError struct {
	Limit int64
}

func (e *ResourceExceededError) Error() string {
	return fmt.Sprintf("resource exceeds the %d byte limit", e.Limit)
}

// UpstreamError carries a non-2xx status from the fetched site.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// Limits bound a single fetch. They are enforced against the live stream,
// not only against a Content-Length header, which may be absent or wrong.
type Limits struct {
	MaxBytes int64
	Timeout  time.Duration
}

// Response is a fully buffered upstream response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Fetcher performs size- and time-bounded GET/HEAD requests. Redirects are
// followed transparently by the underlying transport.
type Fetcher struct {
	UserAgent string
	client    *http.Client
}

func New(userAgent string) *Fetcher {
	return NewWithClient(userAgent, &http.Client{})
}

// NewWithClient lets callers supply the underlying client, e.g. a custom
// transport in tests.
func NewWithClient(userAgent string, hc *http.Client) *Fetcher {
	return &Fetcher{
		UserAgent: userAgent,
		client:    hc,
	}
}

const chunkSize = 32 * 1024

// Fetch downloads url, aborting with ResourceExceededError the instant the
// running byte counter passes lim.MaxBytes. Non-2xx statuses come back as
// UpstreamError.
func (f *Fetcher) Fetch(ctx context.Context, url string, lim Limits) (*Response, error) {
	return f.fetch(ctx, url, lim, false)
}

// FetchAny is Fetch without the status gate: a non-2xx response is returned
// as an ordinary Response, for callers that pass the upstream answer
// through verbatim.
func (f *Fetcher) FetchAny(ctx context.Context, url string, lim Limits) (*Response, error) {
	return f.fetch(ctx, url, lim, true)
}

func (f *Fetcher) fetch(ctx context.Context, url string, lim Limits, anyStatus bool) (*Response, error) {
	if lim.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lim.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if !anyStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	// Fail fast on an honest oversized declaration before streaming.
	if lim.MaxBytes > 0 && resp.ContentLength > lim.MaxBytes {
		return nil, &ResourceExceededError{Limit: lim.MaxBytes}
	}

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	var total int64
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if lim.MaxBytes > 0 && total > lim.MaxBytes {
				return nil, &ResourceExceededError{Limit: lim.MaxBytes}
			}
			buf.Write(chunk[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if errors.Is(readErr, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
				return nil, ErrFetchTimeout
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, readErr)
		}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   buf.Bytes(),
	}, nil
}

// Head issues a bounded HEAD probe and returns the response headers.
func (f *Fetcher) Head(ctx context.Context, url string, timeout time.Duration) (http.Header, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
	return resp.Header, nil
}
