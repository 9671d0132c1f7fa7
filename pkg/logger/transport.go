package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport logs every outbound request made through the wrapped RoundTripper
type Transport struct {
	next   http.RoundTripper
	logger *slog.Logger
	attrs  []slog.Attr
}

// NewTransport wraps next; attrs are added to every entry (e.g. the proxy in use).
// A nil next means http.DefaultTransport.
func NewTransport(logger *slog.Logger, next http.RoundTripper, attrs ...slog.Attr) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, logger: logger, attrs: attrs}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	attrs := make([]slog.Attr, 0, len(t.attrs)+5)
	attrs = append(attrs,
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("path", req.URL.Path),
		slog.Duration("duration", time.Since(start)),
	)
	attrs = append(attrs, t.attrs...)

	// Failed and rejected calls go out at warn, the rest stays at debug
	level := slog.LevelDebug
	switch {
	case err != nil:
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", err.Error()))
	case resp.StatusCode >= http.StatusBadRequest:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Int("status", resp.StatusCode))
	default:
		attrs = append(attrs, slog.Int("status", resp.StatusCode))
	}

	t.logger.LogAttrs(req.Context(), level, "HTTP", attrs...)

	return resp, err
}
