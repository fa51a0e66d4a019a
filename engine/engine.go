// Package engine drives the scrape: session pages are fetched and handed to
// the extractor, finished sessions are serialized and their PDFs
// downloaded. Sessions run sequentially; within a session a small bounded
// pool may work papers in parallel.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jacow-mirror/srfcrawl/extract"
	"github.com/jacow-mirror/srfcrawl/fetch"
	"github.com/jacow-mirror/srfcrawl/proceedings"
	"go.uber.org/zap"
)

type Engine struct {
	options
}

func New(opts ...Option) (*Engine, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.Fetcher == nil {
		return nil, fmt.Errorf("engine needs a fetcher")
	}
	if options.Extractor == nil {
		return nil, fmt.Errorf("engine needs an extractor")
	}

	e := &Engine{}
	e.options = options

	return e, nil
}

// Run scrapes the given sessions in order. A session whose page cannot be
// fetched is logged and skipped; cancellation stops between sessions and
// already-finished results remain valid. The returned stats are a value
// built from per-stage counts, merged here.
func (e *Engine) Run(ctx context.Context, sessions []proceedings.Session) ([]proceedings.SessionResult, proceedings.RunStats, error) {
	var results []proceedings.SessionResult
	var stats proceedings.RunStats

	for i, session := range sessions {
		if err := ctx.Err(); err != nil {
			e.Logger.Info("run interrupted", zap.Int("completed", len(results)))
			return results, stats, err
		}

		e.Logger.Info("processing session",
			zap.Int("index", i+1),
			zap.Int("total", len(sessions)),
			zap.String("session", session.Name))

		result, sessionStats, err := e.ScrapeSession(ctx, session)
		if err != nil {
			e.Logger.Error("session failed, skipping",
				zap.String("session", session.Name),
				zap.Error(err))
			stats.Errors++
			continue
		}

		stats = stats.Merge(sessionStats)
		stats = stats.Merge(e.persistSession(ctx, &result))

		results = append(results, result)
	}

	if err := e.Repository.Flush(); err != nil {
		e.Logger.Error("flush repository failed", zap.Error(err))
		stats.Errors++
	}

	return results, stats, nil
}

// ScrapeSession fetches one session page and extracts every paper on it.
// Zero papers is a normal outcome, not an error.
func (e *Engine) ScrapeSession(ctx context.Context, session proceedings.Session) (proceedings.SessionResult, proceedings.RunStats, error) {
	var stats proceedings.RunStats

	body, err := e.Fetcher.Get(ctx, session.URL)
	if err != nil {
		return proceedings.SessionResult{}, stats, fmt.Errorf("fetch session page: %w", err)
	}

	pageText, err := fetch.PageText(body)
	if err != nil {
		return proceedings.SessionResult{}, stats, fmt.Errorf("render session page: %w", err)
	}

	if e.Writer != nil {
		if err := e.Writer.WriteDebugText(session.ID, pageText); err != nil {
			e.Logger.Warn("write debug text failed", zap.Error(err))
		}
	}

	ids := extract.PaperIDs(pageText, session.ID)
	if len(ids) == 0 {
		e.Logger.Warn("no papers found in session", zap.String("session", session.ID))
	}

	papers := e.extractPapers(ctx, pageText, ids)

	result := proceedings.SessionResult{
		Session:    session,
		Papers:     papers,
		ScrapeTime: time.Now(),
	}

	stats.SessionsProcessed = 1
	stats.TotalPapers = len(papers)

	e.Logger.Info("session extracted",
		zap.String("session", session.ID),
		zap.Int("papers", result.PaperCount()),
		zap.Int("talks", result.AvailableTalks()),
		zap.Int("papers_pdf", result.AvailablePapers()),
		zap.Int("posters", result.AvailablePosters()))

	return result, stats, nil
}

// extractPapers runs the extractor over the segmenter's IDs, preserving
// segmenter order in the result regardless of worker interleaving.
func (e *Engine) extractPapers(ctx context.Context, pageText string, ids []string) []proceedings.Paper {
	papers := make([]proceedings.Paper, len(ids))

	if e.PaperWorkers <= 1 {
		for i, id := range ids {
			if ctx.Err() != nil {
				return papers[:i]
			}
			papers[i] = e.Extractor.Paper(ctx, pageText, id)
		}
		return papers
	}

	sem := make(chan struct{}, e.PaperWorkers)
	var wg sync.WaitGroup
	launched := 0
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-sem }()
			papers[i] = e.Extractor.Paper(ctx, pageText, id)
		}(i, id)
		launched = i + 1
	}
	wg.Wait()

	// cancellation must not leave zero-value records in the result; only
	// the launched prefix is finalized, like the sequential branch
	return papers[:launched]
}

// persistSession writes the session's files, mirrors it to the repository
// and downloads whatever the probes reported available.
func (e *Engine) persistSession(ctx context.Context, result *proceedings.SessionResult) proceedings.RunStats {
	var stats proceedings.RunStats

	if e.Writer != nil {
		if err := e.Writer.WriteSession(result); err != nil {
			e.Logger.Error("save session data failed",
				zap.String("session", result.Session.Name),
				zap.Error(err))
			stats.Errors++
		}
	}

	if err := e.Repository.Save(result.Session.Name, result.Papers...); err != nil {
		e.Logger.Error("save to repository failed", zap.Error(err))
		stats.Errors++
	}

	if e.Downloader != nil && e.Layout != nil {
		for _, p := range result.Papers {
			if ctx.Err() != nil {
				break
			}
			stats = stats.Merge(e.downloadPaper(ctx, result.Session.Name, p))
		}
	}

	return stats
}

func (e *Engine) downloadPaper(ctx context.Context, sessionName string, p proceedings.Paper) proceedings.RunStats {
	var stats proceedings.RunStats

	type resource struct {
		available bool
		url       string
		folder    string
		suffix    string
		counter   *int
	}

	resources := []resource{
		{p.TalkAvailable, p.TalkURL, "Presentations", "_talk", &stats.DownloadedTalks},
		{p.PaperAvailable, p.PaperURL, "Papers", "", &stats.DownloadedPapers},
		{p.PosterAvailable, p.PosterURL, "Posters", "_poster", &stats.DownloadedPosters},
	}

	for _, r := range resources {
		if !r.available {
			continue
		}
		path := e.Layout.PDFPath(r.folder, sessionName, p, r.suffix)
		saved, err := e.Downloader.Save(ctx, r.url, path)
		if err != nil {
			e.Logger.Error("download failed",
				zap.String("url", r.url),
				zap.Error(err))
			stats.Errors++
			continue
		}
		if saved {
			*r.counter++
		}
	}

	return stats
}
