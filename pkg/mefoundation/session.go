package mefoundation

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/screwyprof/airdrop/pkg/proxy"
)

// Session is the authentication context of one workflow execution: its own
// cookie jar, its nonce and the proxy every call of the execution goes through.
// Sessions are never shared between concurrent executions, except read-only.
type Session struct {
	Nonce string
	Proxy *proxy.Proxy
	jar   http.CookieJar
}

// NewSession creates a session with a fresh random nonce and an empty cookie jar
func NewSession(p *proxy.Proxy) (*Session, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("session cookie jar: %w", err)
	}

	return &Session{
		Nonce: nonce.String(),
		Proxy: p,
		jar:   jar,
	}, nil
}

// Cookies returns the cookies the session would send to u
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	return s.jar.Cookies(u)
}

// WithProxy returns a session sharing this one's cookies and nonce but
// sending its calls through p. The cookie jar is safe for concurrent use.
func (s *Session) WithProxy(p *proxy.Proxy) *Session {
	return &Session{Nonce: s.Nonce, Proxy: p, jar: s.jar}
}
