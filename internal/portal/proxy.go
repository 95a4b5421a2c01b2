// Package portal forwards listing requests to the external property portal
// API, which owns listings, agents and bookings.
package portal

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"property-listings-api/internal/handlers"
	"property-listings-api/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Prefix is the local mount point stripped before forwarding.
const Prefix = "/portal"

// Config describes the upstream portal.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Proxy is an http.Handler that relays requests to the portal API.
type Proxy struct {
	target *url.URL
	rp     *httputil.ReverseProxy
}

// New validates cfg and builds the proxy.
func New(cfg Config) (*Proxy, error) {
	target, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse portal base url: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("portal base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if target.Host == "" {
		return nil, errors.New("portal base url has no host")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = timeout

	p := &Proxy{target: target}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path, pr.Out.URL.RawPath = joinPath(target, strings.TrimPrefix(pr.In.URL.Path, Prefix))
			pr.SetXForwarded()
			pr.Out.Host = target.Host

			pr.Out.Header.Del("Cookie")
			if cfg.APIKey != "" {
				pr.Out.Header.Set("Authorization", "Bearer "+cfg.APIKey)
			}
			if id := observability.RequestIDFromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(observability.RequestIDHeader, id)
			}
		},
		Transport: otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "portal " + r.Method
			}),
		),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			observability.LoggerWithTrace(r.Context()).Error("portal request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
				zap.String("request_id", observability.RequestIDFromContext(r.Context())),
			)
			handlers.WriteError(w, http.StatusBadGateway, "portal unavailable")
		},
	}

	return p, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

// joinPath appends the request path to the target's base path, keeping a
// single slash between them.
func joinPath(target *url.URL, reqPath string) (string, string) {
	if reqPath == "" {
		reqPath = "/"
	}
	base := strings.TrimSuffix(target.Path, "/")
	if !strings.HasPrefix(reqPath, "/") {
		reqPath = "/" + reqPath
	}
	return base + reqPath, ""
}
