// Package proceedings holds the domain records produced by scraping the
// SRF2019 conference site: sessions, papers and per-run statistics.
package proceedings

import "time"

// Session identifies one conference session as listed on the site index.
// Discovered once, read-only afterwards.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Paper is the extracted record for a single contribution. Everything but
// the three availability flags is set once during extraction; the flags are
// filled by probing the remote PDFs.
type Paper struct {
	PaperID      string   `json:"paper_id"`
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	Institutions []string `json:"institutions"`
	Abstract     string   `json:"abstract"`
	PageNumber   string   `json:"page_number"`

	TalkURL   string `json:"presentation_url"`
	PaperURL  string `json:"paper_url"`
	PosterURL string `json:"poster_url"`
	DOI       string `json:"doi"`

	TalkAvailable   bool `json:"presentation_available"`
	PaperAvailable  bool `json:"paper_available"`
	PosterAvailable bool `json:"poster_available"`
}

// SessionResult is one session's finished scrape. Papers keep segmenter
// order (ascending numeric suffix). Counts are always recomputed from the
// slice rather than tracked alongside it.
type SessionResult struct {
	Session    Session   `json:"session_info"`
	Papers     []Paper   `json:"papers"`
	ScrapeTime time.Time `json:"-"`
}

func (r *SessionResult) PaperCount() int { return len(r.Papers) }

func (r *SessionResult) AvailableTalks() int {
	n := 0
	for _, p := range r.Papers {
		if p.TalkAvailable {
			n++
		}
	}
	return n
}

func (r *SessionResult) AvailablePapers() int {
	n := 0
	for _, p := range r.Papers {
		if p.PaperAvailable {
			n++
		}
	}
	return n
}

func (r *SessionResult) AvailablePosters() int {
	n := 0
	for _, p := range r.Papers {
		if p.PosterAvailable {
			n++
		}
	}
	return n
}

// RunStats accumulates across a whole run. It is a value: each stage returns
// its own counts and the caller merges them, so no stage ever shares a
// mutable counter with another.
type RunStats struct {
	SessionsProcessed int `json:"sessions_processed"`
	TotalPapers       int `json:"total_papers"`
	DownloadedTalks   int `json:"downloaded_presentations"`
	DownloadedPapers  int `json:"downloaded_papers"`
	DownloadedPosters int `json:"downloaded_posters"`
	Errors            int `json:"errors"`
}

func (s RunStats) Merge(other RunStats) RunStats {
	s.SessionsProcessed += other.SessionsProcessed
	s.TotalPapers += other.TotalPapers
	s.DownloadedTalks += other.DownloadedTalks
	s.DownloadedPapers += other.DownloadedPapers
	s.DownloadedPosters += other.DownloadedPosters
	s.Errors += other.Errors
	return s
}
