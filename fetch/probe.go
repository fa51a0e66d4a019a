package fetch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PDFProbe answers whether a remote PDF exists, via a HEAD request. A miss
// is cheap and frequent (most papers have no poster, many have no talk), so
// the probe never retries and never returns an error: any transport
// failure, timeout, non-200 status or non-PDF content type is simply
// "unavailable".
type PDFProbe struct {
	client  *http.Client
	logger  *zap.Logger
	limiter interface {
		Wait(ctx context.Context) error
	}
	userAgent string
}

func NewPDFProbe(opts ...Option) *PDFProbe {
	options := defaultOptions
	options.timeout = 10 * time.Second
	for _, opt := range opts {
		opt(&options)
	}

	p := &PDFProbe{
		client:    newClient(options.timeout, options),
		logger:    options.logger,
		userAgent: options.userAgent,
	}
	if options.limiter != nil {
		p.limiter = options.limiter
	}

	return p
}

// Exists reports whether url resolves to a PDF.
func (p *PDFProbe) Exists(ctx context.Context, url string) bool {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("probe failed", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "pdf")
}
