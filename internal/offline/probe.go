// Package offline implements the read-through cache used by every list
// screen: probe connectivity, fetch remote, mirror locally, and fall back to
// the mirror when offline or when the fetch fails.
package offline

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/localnerve/jam-build-learnhub/internal/utils"
)

// Probe reports whether the backend looks reachable. Implementations fail
// closed: any probing error reads as offline.
type Probe interface {
	Online(ctx context.Context) bool
}

// ProbeFunc adapts a check function; a nil error means online
type ProbeFunc func(ctx context.Context) error

// Online implements Probe
func (f ProbeFunc) Online(ctx context.Context) bool {
	if err := f(ctx); err != nil {
		log.Printf("Connectivity probe failed: %v", err)
		return false
	}
	return true
}

// StaticProbe always gives the same answer, for forced offline mode
type StaticProbe bool

// Online implements Probe
func (p StaticProbe) Online(context.Context) bool {
	return bool(p)
}

// DialProbe checks that a TCP connection to the URL's host can be opened
type DialProbe struct {
	URL     string
	Timeout time.Duration
}

// Online implements Probe
func (p DialProbe) Online(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if err := utils.PingService(ctx, p.URL, timeout); err != nil {
		log.Printf("Connectivity probe failed: %v", err)
		return false
	}
	return true
}

// HTTPProbe requires a 2xx answer from a health URL
type HTTPProbe struct {
	URL    string
	Client *http.Client
}

// Online implements Probe
func (p HTTPProbe) Online(ctx context.Context) bool {
	if err := p.check(ctx); err != nil {
		log.Printf("Connectivity probe failed: %v", err)
		return false
	}
	return true
}

func (p HTTPProbe) check(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health check %s returned %d", p.URL, resp.StatusCode)
	}
	return nil
}
