// Package fetcher provides the HTTP layer of the audit pipeline: a shared
// client per audit, a retrying request primitive, and the page fetchers that
// turn a URL into HTML + markdown + internal links.
package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
)

// UserAgent identifies the auditor to the sites it probes.
const UserAgent = "ContextLint/1.0 (+https://github.com/contextlint/contextlint)"

// maxBodySize caps how much of any response body is read.
const maxBodySize = 10 * 1024 * 1024 // 10MB

// NewClient builds the shared HTTP client for one audit. Every request the
// audit issues goes through this client so the per-audit timeout and
// connection pool are applied uniformly. Redirects are followed.
func NewClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // we handle decompression ourselves (including brotli)
	}

	return &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   timeout,
	}
}

// Get issues a GET through the shared client and returns the status code
// and the (decompressed, size-capped) body. A non-nil error means the
// request never produced a response.
func Get(ctx context.Context, client *http.Client, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	setDefaultHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := ReadBody(resp)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// ReadBody reads a response body with decompression and the size cap applied.
func ReadBody(resp *http.Response) ([]byte, error) {
	reader, err := decompressReader(resp, io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("decompress body: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func setDefaultHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isTransientError reports whether a network error warrants a retry.
// Context cancellation is never transient.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) || errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
		// DNS failures surface as *net.DNSError inside the op error.
		var dnsErr *net.DNSError
		if errors.As(opErr.Err, &dnsErr) {
			return true
		}
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
