package fetch

import (
	"time"

	"github.com/jacow-mirror/srfcrawl/limiter"
	"github.com/jacow-mirror/srfcrawl/proxy"
	"go.uber.org/zap"
)

type Option func(opts *options)

type options struct {
	logger    *zap.Logger
	timeout   time.Duration
	retries   int
	userAgent string
	proxy     proxy.Func
	limiter   limiter.RateLimiter
}

var defaultOptions = options{
	logger:    zap.NewNop(),
	timeout:   30 * time.Second,
	retries:   3,
	userAgent: defaultUserAgent,
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

func WithRetries(retries int) Option {
	return func(opts *options) {
		opts.retries = retries
	}
}

func WithUserAgent(ua string) Option {
	return func(opts *options) {
		opts.userAgent = ua
	}
}

func WithProxy(p proxy.Func) Option {
	return func(opts *options) {
		opts.proxy = p
	}
}

func WithLimiter(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.limiter = l
	}
}
