// Package fetch is the HTTP side of the scraper: page fetching with retry
// and charset normalization, lightweight PDF existence probes, and streaming
// PDF downloads. The proceedings server is old and slow, so everything here
// carries a bounded timeout and shares one rate limiter per host.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves one page body as UTF-8 bytes.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Service is the shared transport for page fetches. Retries are handled
// here with exponential backoff; the probe and download layers reuse the
// same client configuration without retrying.
type Service struct {
	options
	client *http.Client
}

func NewService(opts ...Option) *Service {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.retries < 1 {
		options.retries = 1
	}

	s := &Service{options: options}
	s.client = newClient(options.timeout, options)

	return s
}

func newClient(timeout time.Duration, opts options) *http.Client {
	client := &http.Client{Timeout: timeout}
	if opts.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = opts.proxy
		client.Transport = transport
	}
	return client
}

// Get fetches url, retrying transient failures with 1s/2s/4s backoff. The
// body is decoded to UTF-8 whatever charset the server declares.
func (s *Service) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := s.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err
		s.logger.Warn("fetch failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("retries", s.retries),
			zap.Error(err))
	}

	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (s *Service) getOnce(ctx context.Context, url string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, s.logger)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

func (s *Service) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// DeterminEncoding sniffs the response charset from the first 1024 bytes,
// falling back to UTF-8.
func DeterminEncoding(r *bufio.Reader, logger *zap.Logger) encoding.Encoding {
	peek, err := r.Peek(1024)
	if err != nil && err != io.EOF {
		logger.Error("peek body failed", zap.Error(err))
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(peek, "")

	return e
}
