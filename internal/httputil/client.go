// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

// NewClient returns an http.Client for cfg. A zero Timeout keeps the
// net/http default of no client-side deadline.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// Status issues a GET to url and returns the response status code. The
// client follows redirects, so the code is that of the final hop. The body
// is drained and closed before returning so the connection can be reused.
func Status(ctx context.Context, client *http.Client, url, userAgent string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// IsSuccess reports whether code is in the 2xx class.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
