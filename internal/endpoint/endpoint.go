// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package endpoint chooses which remote repository serves PDFs for a run.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/pmc-pages/internal/httputil"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

// ErrNoEndpoint is returned when no configured endpoint answers the probe.
var ErrNoEndpoint = errors.New("no reachable endpoint")

// Prober reports the HTTP status a GET to url produces.
type Prober interface {
	Probe(ctx context.Context, url string) (int, error)
}

// HTTPProber probes with a real HTTP client.
type HTTPProber struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPProber builds a prober from the shared HTTP settings.
func NewHTTPProber(cfg types.HTTPConfig) *HTTPProber {
	return &HTTPProber{Client: httputil.NewClient(cfg), UserAgent: cfg.UserAgent}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, url string) (int, error) {
	return httputil.Status(ctx, p.Client, url, p.UserAgent)
}

// Select probes each endpoint with the landing URL of firstID, in order,
// and returns the first one that answers with a 2xx status. Each endpoint is
// tried exactly once. When all fail the error wraps ErrNoEndpoint.
func Select(ctx context.Context, p Prober, endpoints []types.Endpoint, firstID string, w io.Writer) (types.Endpoint, error) {
	if len(endpoints) == 0 {
		return types.Endpoint{}, fmt.Errorf("%w: none configured", ErrNoEndpoint)
	}

	fmt.Fprintln(w, "Checking PubMed Central servers...")
	for i, ep := range endpoints {
		code, err := p.Probe(ctx, ep.ProbeURL(firstID))
		if err == nil && httputil.IsSuccess(code) {
			fmt.Fprintf(w, "...using %s server.\n", ep.Name)
			return ep, nil
		}
		if ctx.Err() != nil {
			return types.Endpoint{}, ctx.Err()
		}

		reason := fmt.Sprintf("HTTP %d", code)
		if err != nil {
			reason = err.Error()
		}
		if i+1 < len(endpoints) {
			fmt.Fprintf(w, "Failed to connect to %s servers (%s). Trying %s servers...\n",
				ep.Name, reason, endpoints[i+1].Name)
		} else {
			fmt.Fprintf(w, "Failed to connect to %s servers (%s). Exiting...\n", ep.Name, reason)
		}
	}
	return types.Endpoint{}, fmt.Errorf("%w: probed %d endpoint(s) with %s", ErrNoEndpoint, len(endpoints), firstID)
}
