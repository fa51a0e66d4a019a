package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// minPDFSize rejects placeholder responses; the server answers some missing
// files with a tiny HTML stub instead of a 404.
const minPDFSize = 100

// Downloader streams PDFs to disk. Files already on disk are never fetched
// again, so an interrupted run can be resumed.
type Downloader struct {
	client  *http.Client
	logger  *zap.Logger
	limiter interface {
		Wait(ctx context.Context) error
	}
	userAgent string
}

func NewDownloader(opts ...Option) *Downloader {
	options := defaultOptions
	options.timeout = 60 * time.Second
	for _, opt := range opts {
		opt(&options)
	}

	d := &Downloader{
		client:    newClient(options.timeout, options),
		logger:    options.logger,
		userAgent: options.userAgent,
	}
	if options.limiter != nil {
		d.limiter = options.limiter
	}

	return d
}

// Save downloads url into path, creating parent directories as needed.
// Returns false with a nil error when the file already exists or the remote
// body is too small to be a real PDF.
func (d *Downloader) Save(ctx context.Context, url, path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		d.logger.Info("file exists, skipping", zap.String("path", path))
		return false, nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	if resp.ContentLength > 0 && resp.ContentLength < minPDFSize {
		d.logger.Warn("file too small, skipping",
			zap.String("url", url),
			zap.Int64("bytes", resp.ContentLength))
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}

	f, err := os.Create(path)
	if err != nil {
		return false, err
	}

	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	d.logger.Info("downloaded",
		zap.String("path", path),
		zap.Int64("bytes", written))

	return true, nil
}
