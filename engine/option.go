package engine

import (
	"github.com/jacow-mirror/srfcrawl/extract"
	"github.com/jacow-mirror/srfcrawl/fetch"
	"github.com/jacow-mirror/srfcrawl/output"
	"github.com/jacow-mirror/srfcrawl/sqlstorage"
	"go.uber.org/zap"
)

type Option func(opts *options)

type options struct {
	Logger       *zap.Logger
	Fetcher      fetch.Fetcher
	Extractor    *extract.Extractor
	Writer       *output.Writer
	Layout       *output.Layout
	Downloader   *fetch.Downloader
	Repository   sqlstorage.PaperRepository
	PaperWorkers int
}

var defaultOptions = options{
	Logger:       zap.NewNop(),
	Repository:   sqlstorage.EmptyRepository{},
	PaperWorkers: 1,
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher fetch.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithExtractor(e *extract.Extractor) Option {
	return func(opts *options) {
		opts.Extractor = e
	}
}

func WithWriter(w *output.Writer) Option {
	return func(opts *options) {
		opts.Writer = w
	}
}

func WithLayout(l *output.Layout) Option {
	return func(opts *options) {
		opts.Layout = l
	}
}

// WithDownloader enables PDF downloads; without it the run only records
// availability.
func WithDownloader(d *fetch.Downloader) Option {
	return func(opts *options) {
		opts.Downloader = d
	}
}

func WithRepository(r sqlstorage.PaperRepository) Option {
	return func(opts *options) {
		opts.Repository = r
	}
}

// WithPaperWorkers bounds how many papers of one session are processed at
// once. Capped at 4 so a session's fan-out (3 probes per paper) cannot
// burst the host.
func WithPaperWorkers(n int) Option {
	return func(opts *options) {
		if n < 1 {
			n = 1
		}
		if n > 4 {
			n = 4
		}
		opts.PaperWorkers = n
	}
}
