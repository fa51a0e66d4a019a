package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jacow-mirror/srfcrawl/proceedings"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// csvHeader is the fixed per-session column order; downstream spreadsheets
// depend on it.
var csvHeader = []string{
	"session_name", "paper_id", "title", "authors", "institutions", "abstract",
	"presentation_url", "presentation_available", "paper_url", "paper_available",
	"poster_url", "poster_available", "doi", "page_number",
}

// Writer persists session results in the three formats plus the run-level
// reports.
type Writer struct {
	layout *Layout
	logger *zap.Logger
}

func NewWriter(layout *Layout, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{layout: layout, logger: logger}
}

// WriteSession emits papers_data.json, papers_data.csv and
// papers_summary.txt for one finished session.
func (w *Writer) WriteSession(result *proceedings.SessionResult) error {
	dir := w.layout.SessionDir(result.Session.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := w.writeJSON(dir, result); err != nil {
		return fmt.Errorf("session json: %w", err)
	}
	if err := w.writeCSV(dir, result); err != nil {
		return fmt.Errorf("session csv: %w", err)
	}
	if err := w.writeSummary(dir, result); err != nil {
		return fmt.Errorf("session summary: %w", err)
	}

	w.logger.Info("saved session data",
		zap.String("session", result.Session.Name),
		zap.Int("papers", result.PaperCount()))

	return nil
}

// WriteDebugText dumps the raw visible text of a session page, the input
// the extraction heuristics saw.
func (w *Writer) WriteDebugText(sessionID, pageText string) error {
	return os.WriteFile(w.layout.DebugTextFile(sessionID), []byte(pageText), 0o644)
}

func (w *Writer) writeJSON(dir string, result *proceedings.SessionResult) error {
	doc := struct {
		SessionInfo proceedings.Session `json:"session_info"`
		Papers      []proceedings.Paper `json:"papers"`
		PaperCount  int                 `json:"paper_count"`
		ScrapeTime  string              `json:"scrape_time"`
	}{
		SessionInfo: result.Session,
		Papers:      result.Papers,
		PaperCount:  result.PaperCount(),
		ScrapeTime:  result.ScrapeTime.Format(timeLayout),
	}

	return writeJSONFile(filepath.Join(dir, "papers_data.json"), doc)
}

// writeCSV always creates the file; an empty session yields a header-only
// CSV rather than no file.
func (w *Writer) writeCSV(dir string, result *proceedings.SessionResult) error {
	f, err := os.Create(filepath.Join(dir, "papers_data.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range result.Papers {
		if err := cw.Write(paperRow(result.Session.Name, p)); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

func paperRow(sessionName string, p proceedings.Paper) []string {
	return []string{
		sessionName,
		p.PaperID,
		p.Title,
		strings.Join(p.Authors, "; "),
		strings.Join(p.Institutions, "; "),
		p.Abstract,
		p.TalkURL, fmt.Sprintf("%t", p.TalkAvailable),
		p.PaperURL, fmt.Sprintf("%t", p.PaperAvailable),
		p.PosterURL, fmt.Sprintf("%t", p.PosterAvailable),
		p.DOI,
		p.PageNumber,
	}
}

func (w *Writer) writeSummary(dir string, result *proceedings.SessionResult) error {
	var b strings.Builder

	s := result.Session
	fmt.Fprintf(&b, "Session: %s\n", s.Name)
	fmt.Fprintf(&b, "Session ID: %s\n", s.ID)
	fmt.Fprintf(&b, "URL: %s\n", s.URL)
	fmt.Fprintf(&b, "Scrape time: %s\n", result.ScrapeTime.Format(timeLayout))
	fmt.Fprintf(&b, "Paper count: %d\n", result.PaperCount())
	fmt.Fprintf(&b, "Available presentations: %d/%d\n", result.AvailableTalks(), result.PaperCount())
	fmt.Fprintf(&b, "Available papers: %d/%d\n", result.AvailablePapers(), result.PaperCount())
	fmt.Fprintf(&b, "Available posters: %d/%d\n", result.AvailablePosters(), result.PaperCount())
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	for i, p := range result.Papers {
		fmt.Fprintf(&b, "%d. Paper ID: %s\n", i+1, p.PaperID)
		fmt.Fprintf(&b, "   Title: %s\n", p.Title)
		if len(p.Authors) > 0 {
			fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(p.Authors, ", "))
		}
		if len(p.Institutions) > 0 {
			fmt.Fprintf(&b, "   Institutions: %s\n", strings.Join(p.Institutions, "; "))
		}
		fmt.Fprintf(&b, "   Page: %s\n", orNA(p.PageNumber))
		fmt.Fprintf(&b, "   Presentation Status: %s\n", availability(p.TalkAvailable))
		fmt.Fprintf(&b, "   Paper Status: %s\n", availability(p.PaperAvailable))
		fmt.Fprintf(&b, "   Poster Status: %s\n", availability(p.PosterAvailable))
		fmt.Fprintf(&b, "   Presentation URL: %s\n", p.TalkURL)
		fmt.Fprintf(&b, "   Paper URL: %s\n", p.PaperURL)
		fmt.Fprintf(&b, "   Poster URL: %s\n", p.PosterURL)
		fmt.Fprintf(&b, "   DOI: %s\n", p.DOI)
		if p.Abstract != "" {
			fmt.Fprintf(&b, "   Abstract: %s\n", preview(p.Abstract, 300))
		}
		b.WriteString(strings.Repeat("-", 60) + "\n")
	}

	return os.WriteFile(filepath.Join(dir, "papers_summary.txt"), []byte(b.String()), 0o644)
}

func availability(ok bool) string {
	if ok {
		return "Available"
	}
	return "Not available"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
