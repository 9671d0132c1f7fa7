package mefoundation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/screwyprof/airdrop/pkg/logger"
	"github.com/screwyprof/airdrop/pkg/proxy"
)

// Default endpoints of the service
const (
	DefaultWebURL  = "https://mefoundation.com"
	DefaultAPIURL  = "https://api-mainnet.magiceden.io"
	DefaultTimeout = 30 * time.Second

	sessionPath = "/api/trpc/auth.session"
	verifyPath  = "/auth/verifyAndCreateSession"
	linkPath    = "/api/trpc/auth.linkWallet"
	walletsPath = "/wallets"

	// walletsRouterState is the Next.js cache-busting token the web app sends
	walletsRouterState = "1vr9w"

	// MaxResponseBody caps every response; a longer body is a decode error
	MaxResponseBody = 8 << 20
)

// Option configures the Client
type Option func(*Client)

// WithWebURL overrides the web app base URL (session, link and wallets calls)
func WithWebURL(u string) Option {
	return func(c *Client) { c.webURL = strings.TrimRight(u, "/") }
}

// WithAPIURL overrides the API base URL (session verification)
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds every single call
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit caps outbound requests per second across all sessions. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, burst))
	}
}

// WithLogger sets the logger used for outbound request logging
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTransport replaces the per-proxy transports with a single fixed one (e.g., for testing)
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.fixed = rt }
}

// Client talks to the allocation service. It is safe for concurrent use;
// all per-execution state lives in the Session passed to each call.
type Client struct {
	webURL  string
	apiURL  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
	fixed   http.RoundTripper

	mu         sync.Mutex
	transports map[string]http.RoundTripper
}

// NewClient creates a client for the production endpoints unless overridden
func NewClient(opts ...Option) *Client {
	c := &Client{
		webURL:     DefaultWebURL,
		apiURL:     DefaultAPIURL,
		timeout:    DefaultTimeout,
		logger:     logger.Discard(),
		transports: make(map[string]http.RoundTripper),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession opens (or re-asserts) the web session for the session nonce.
// The only effect is the cookies it leaves in the session jar.
func (c *Client) StartSession(ctx context.Context, sess *Session) error {
	input, err := json.Marshal(newSessionInput(sess.Nonce))
	if err != nil {
		return fmt.Errorf("encoding session input: %w", err)
	}
	query := url.Values{
		"batch": {"1"},
		"input": {string(input)},
	}

	resp, err := c.do(ctx, sess, request{
		method:  http.MethodGet,
		url:     c.webURL + sessionPath,
		query:   query,
		headers: sessionHeaders(),
	})
	if err != nil {
		return err
	}

	if resp.isJSON() && len(bytes.TrimSpace(resp.body)) > 0 && !json.Valid(resp.body) {
		return fmt.Errorf("%w: session: invalid JSON", ErrDecode)
	}
	return nil
}

// VerifySession proves control of address by its signature over message.
// A false Success means the service rejected the proof.
func (c *Client) VerifySession(ctx context.Context, sess *Session, address, signature, message string) (VerifyResult, error) {
	resp, err := c.do(ctx, sess, request{
		method:  http.MethodPost,
		url:     c.apiURL + verifyPath,
		body:    newVerifyRequest(address, signature, message),
		headers: verifyHeaders(),
	})
	if err != nil {
		return VerifyResult{}, err
	}

	if resp.empty() {
		return VerifyResult{}, fmt.Errorf("%w: verify session: empty body", ErrDecode)
	}

	var result VerifyResult
	if err := resp.decode(&result); err != nil {
		return VerifyResult{}, fmt.Errorf("verify session: %w", err)
	}
	return result, nil
}

// LinkWallet links address, which signed message, to the session's wallet.
// An empty body yields a nil response, which reads as Indeterminate.
func (c *Client) LinkWallet(ctx context.Context, sess *Session, message, address, signature string) (LinkResponse, error) {
	resp, err := c.do(ctx, sess, request{
		method:  http.MethodPost,
		url:     c.webURL + linkPath,
		query:   url.Values{"batch": {"1"}},
		body:    newLinkRequest(message, address, signature),
		headers: linkHeaders(),
	})
	if err != nil {
		return nil, err
	}

	var result LinkResponse
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("link wallet: %w", err)
	}
	return result, nil
}

// FetchWallets returns the raw wallets page stream of the session
func (c *Client) FetchWallets(ctx context.Context, sess *Session) (string, error) {
	resp, err := c.do(ctx, sess, request{
		method:  http.MethodGet,
		url:     c.webURL + walletsPath,
		query:   url.Values{"_rsc": {walletsRouterState}},
		headers: walletsHeaders(),
	})
	if err != nil {
		return "", err
	}
	return string(resp.body), nil
}

type request struct {
	method  string
	url     string
	query   url.Values
	body    any
	headers http.Header
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (r response) isJSON() bool {
	return strings.Contains(r.contentType, "application/json")
}

func (r response) empty() bool {
	return len(bytes.TrimSpace(r.body)) == 0
}

// decode unmarshals a JSON body into v; an empty body leaves v untouched
func (r response) decode(v any) error {
	if r.empty() {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// do sends one request through the session's proxy and cookie jar
func (c *Client) do(ctx context.Context, sess *Session, r request) (response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return response{}, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
		}
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return response{}, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := r.url
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = r.headers

	client := &http.Client{
		Transport: c.transportFor(sess.Proxy),
		Jar:       sess.jar,
		Timeout:   c.timeout,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody+1))
	if err != nil {
		return response{}, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	if len(data) > MaxResponseBody {
		return response{}, fmt.Errorf("%w: body exceeds %d bytes", ErrDecode, MaxResponseBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	return response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// transportFor returns the cached transport for p, creating it on first use.
// Sharing one transport per proxy keeps connections pooled across sessions;
// cookies stay per session because the jar lives on the http.Client.
func (c *Client) transportFor(p *proxy.Proxy) http.RoundTripper {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := p.Key()
	if rt, ok := c.transports[key]; ok {
		return rt
	}

	next := c.fixed
	if next == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyURL(p.URL())
		next = t
	}

	rt := logger.NewTransport(c.logger, next, slog.String("proxy", p.String()))
	c.transports[key] = rt
	return rt
}
