// Package discovery finds the conference's session list. The site keeps it
// in a frame page whose markup has changed between conference years, so a
// table walk is tried first with a plain-text fallback.
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jacow-mirror/srfcrawl/fetch"
	"github.com/jacow-mirror/srfcrawl/proceedings"
	"go.uber.org/zap"
)

// indexPage is the frame listing every session. The zero in "sessi0n1" is
// how the site actually spells it.
const indexPage = "/html/sessi0n1.htm"

type Service struct {
	base    string
	fetcher fetch.Fetcher
	logger  *zap.Logger
}

func NewService(base string, fetcher fetch.Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{base: strings.TrimSuffix(base, "/"), fetcher: fetcher, logger: logger}
}

// Sessions fetches and parses the session index.
func (s *Service) Sessions(ctx context.Context) ([]proceedings.Session, error) {
	body, err := s.fetcher.Get(ctx, s.base+indexPage)
	if err != nil {
		return nil, fmt.Errorf("load session index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse session index: %w", err)
	}

	sessions := s.fromTable(doc)
	if len(sessions) == 0 {
		sessions = s.fromText(doc.Text())
	}

	s.logger.Info("loaded sessions", zap.Int("count", len(sessions)))

	return sessions, nil
}

// fromTable reads the session table: first cell the ID, second the name.
func (s *Service) fromTable(doc *goquery.Document) []proceedings.Session {
	var sessions []proceedings.Session

	doc.Find("table").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		id := strings.TrimSpace(cols.Eq(0).Text())
		name := strings.TrimSpace(cols.Eq(1).Text())
		if id == "" || name == "" || !isUpperCode(id) {
			return
		}
		sessions = append(sessions, s.session(id, name))
	})

	return sessions
}

// fromText pairs each five-character uppercase line with its successor.
// Older proceedings pages have no table at all.
func (s *Service) fromText(text string) []proceedings.Session {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}

	var sessions []proceedings.Session
	for i := 0; i < len(lines); {
		line := lines[i]
		if len(line) == 5 && isUpperCode(line) && i+1 < len(lines) {
			sessions = append(sessions, s.session(line, lines[i+1]))
			i += 2
			continue
		}
		i++
	}

	return sessions
}

// isUpperCode reports whether s looks like a session code: at least one
// letter, none of them lowercase.
func isUpperCode(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func (s *Service) session(id, name string) proceedings.Session {
	return proceedings.Session{
		ID:   id,
		Name: fmt.Sprintf("%s - %s", id, name),
		URL:  proceedings.SessionURL(s.base, id),
	}
}
