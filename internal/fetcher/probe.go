package fetcher

import (
	"context"
	"net/http"
	"time"
)

// ProbeRetryConfig is the retry policy shared by the site-wide probes
// (robots.txt, llms.txt, sitemaps). One retry keeps a flaky response from
// zeroing a pillar without slowing the audit down.
func ProbeRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  1,
		BackoffBase: 500 * time.Millisecond,
		RetryOnStatus: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// Probe fetches a URL through the retrying request primitive and returns
// the status and decompressed body. An error means no response at all was
// obtained; callers treat that the same as a non-200.
func Probe(ctx context.Context, client *http.Client, target string) (int, []byte, error) {
	resp, err := RequestWithRetry(ctx, client, http.MethodGet, target, ProbeRetryConfig())
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
