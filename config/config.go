// Package config loads the scraper's config.toml. Every field has a
// default, so the binary runs without a config file at all.
package config

import (
	"fmt"
	"time"

	"github.com/jacow-mirror/srfcrawl/limiter"
	"github.com/jacow-mirror/srfcrawl/proceedings"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	Site     Site   `mapstructure:"site"`
	Fetcher  Fetch  `mapstructure:"fetcher"`
	Scrape   Scrape `mapstructure:"scrape"`
	Storage  Store  `mapstructure:"storage"`
}

type Site struct {
	BaseURL   string `mapstructure:"baseURL"`
	OutputDir string `mapstructure:"outputDir"`
}

type Fetch struct {
	TimeoutMS int           `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	Proxy     []string      `mapstructure:"proxy"`
	Limits    []LimitConfig `mapstructure:"limits"`
}

type LimitConfig struct {
	EventCount int `mapstructure:"eventCount"`
	EventDur   int `mapstructure:"eventDur"` // seconds
	Bucket     int `mapstructure:"bucket"`
}

type Scrape struct {
	TestSessions int  `mapstructure:"testSessions"`
	Download     bool `mapstructure:"download"`
	PaperWorkers int  `mapstructure:"paperWorkers"`
}

type Store struct {
	Type   string `mapstructure:"type"`
	SQLURL string `mapstructure:"sqlURL"`
}

// Load reads path if it exists and fills in defaults otherwise. A missing
// file is only an error when the caller named one explicitly.
func Load(path string, explicit bool) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if explicit {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("site.baseURL", proceedings.DefaultBaseURL)
	v.SetDefault("site.outputDir", "SRF2019_Data")
	v.SetDefault("fetcher.timeout", 30000)
	v.SetDefault("fetcher.retries", 3)
	v.SetDefault("scrape.testSessions", 3)
	v.SetDefault("scrape.download", true)
	v.SetDefault("scrape.paperWorkers", 1)
}

func (f Fetch) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// RateLimiter builds the combined limiter for the proceedings host. With no
// limits configured the default keeps roughly one request every two seconds
// with a modest per-minute cap, matching what the site tolerates.
func (f Fetch) RateLimiter() limiter.RateLimiter {
	limits := f.Limits
	if len(limits) == 0 {
		limits = []LimitConfig{
			{EventCount: 1, EventDur: 2, Bucket: 1},
			{EventCount: 30, EventDur: 60, Bucket: 15},
		}
	}

	var rl []limiter.RateLimiter
	for _, l := range limits {
		rl = append(rl, rate.NewLimiter(
			limiter.Per(l.EventCount, time.Duration(l.EventDur)*time.Second),
			l.Bucket,
		))
	}

	return limiter.Multi(rl...)
}
