// Package proxy holds the read-only pool of egress proxies a run is spread across.
package proxy

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
)

// Sentinel errors for proxy parsing
var (
	ErrInvalidProxy = errors.New("invalid proxy URL")
)

// Proxy is a single egress route. A nil *Proxy means a direct connection.
type Proxy struct {
	url *url.URL
}

// Parse accepts http, https and socks5 URLs, with optional user:password credentials.
// A bare host:port is treated as http.
func Parse(raw string) (*Proxy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidProxy)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}

	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidProxy)
	}

	return &Proxy{url: u}, nil
}

// URL returns the proxy URL, or nil for a direct connection
func (p *Proxy) URL() *url.URL {
	if p == nil {
		return nil
	}
	return p.url
}

// Key identifies the proxy for caching; credentials included
func (p *Proxy) Key() string {
	if p == nil {
		return ""
	}
	return p.url.String()
}

// String is safe to log: credentials are redacted
func (p *Proxy) String() string {
	if p == nil {
		return "direct"
	}
	return p.url.Redacted()
}

// Pool is an immutable list of proxies shared by every task of a run
type Pool struct {
	proxies []*Proxy
}

// NewPool parses every line into a proxy. It fails on the first invalid entry.
func NewPool(lines []string) (*Pool, error) {
	proxies := make([]*Proxy, 0, len(lines))
	for i, line := range lines {
		p, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("proxy #%d: %w", i+1, err)
		}
		proxies = append(proxies, p)
	}
	return &Pool{proxies: proxies}, nil
}

// Len returns the pool size
func (p *Pool) Len() int {
	return len(p.proxies)
}

// At returns the proxy assigned to the task at index i: proxies[i mod len].
// An empty pool always yields nil (direct).
func (p *Pool) At(i int) *Proxy {
	if len(p.proxies) == 0 {
		return nil
	}
	return p.proxies[i%len(p.proxies)]
}

// Rotation returns every proxy exactly once, starting from a random position.
// An empty pool yields a single direct route.
func (p *Pool) Rotation() []*Proxy {
	n := len(p.proxies)
	if n == 0 {
		return []*Proxy{nil}
	}
	return p.RotationFrom(rand.IntN(n))
}

// RotationFrom returns every proxy exactly once starting at start mod len
func (p *Pool) RotationFrom(start int) []*Proxy {
	n := len(p.proxies)
	if n == 0 {
		return []*Proxy{nil}
	}
	order := make([]*Proxy, n)
	for i := range n {
		order[i] = p.proxies[(start+i)%n]
	}
	return order
}
