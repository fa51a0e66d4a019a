package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jacow-mirror/srfcrawl/proceedings"
)

// ScrapeInfo heads the complete index; the run ID ties the files of one run
// together when the output directory accumulates several.
type ScrapeInfo struct {
	RunID                  string `json:"run_id"`
	ScrapeTime             string `json:"scrape_time"`
	SessionsProcessed      int    `json:"sessions_processed"`
	TotalPapers            int    `json:"total_papers"`
	AvailablePresentations int    `json:"available_presentations"`
	AvailablePapers        int    `json:"available_papers"`
	AvailablePosters       int    `json:"available_posters"`
	DownloadedTalks        int    `json:"downloaded_presentations"`
	DownloadedPapers       int    `json:"downloaded_papers"`
	DownloadedPosters      int    `json:"downloaded_posters"`
	Errors                 int    `json:"errors"`
}

// WriteRunReports emits the aggregate artifacts: final text report,
// complete JSON index and the all-papers CSV.
func (w *Writer) WriteRunReports(runID string, results []proceedings.SessionResult, stats proceedings.RunStats) error {
	info := buildScrapeInfo(runID, results, stats)

	if err := w.writeFinalReport(info, results); err != nil {
		return fmt.Errorf("final report: %w", err)
	}
	if err := w.writeCompleteIndex(info, results); err != nil {
		return fmt.Errorf("complete index: %w", err)
	}
	if err := w.writeAllPapersCSV(results); err != nil {
		return fmt.Errorf("all-papers csv: %w", err)
	}

	return nil
}

func buildScrapeInfo(runID string, results []proceedings.SessionResult, stats proceedings.RunStats) ScrapeInfo {
	info := ScrapeInfo{
		RunID:             runID,
		ScrapeTime:        time.Now().Format(timeLayout),
		SessionsProcessed: stats.SessionsProcessed,
		TotalPapers:       stats.TotalPapers,
		DownloadedTalks:   stats.DownloadedTalks,
		DownloadedPapers:  stats.DownloadedPapers,
		DownloadedPosters: stats.DownloadedPosters,
		Errors:            stats.Errors,
	}
	for i := range results {
		info.AvailablePresentations += results[i].AvailableTalks()
		info.AvailablePapers += results[i].AvailablePapers()
		info.AvailablePosters += results[i].AvailablePosters()
	}
	return info
}

func (w *Writer) writeFinalReport(info ScrapeInfo, results []proceedings.SessionResult) error {
	var b strings.Builder

	b.WriteString("SRF2019 Conference Complete Scraping Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Scrape completion time: %s\n", info.ScrapeTime)
	fmt.Fprintf(&b, "Run ID: %s\n", info.RunID)
	fmt.Fprintf(&b, "Sessions processed: %d\n", info.SessionsProcessed)
	fmt.Fprintf(&b, "Total papers: %d\n", info.TotalPapers)
	fmt.Fprintf(&b, "Available presentations: %d\n", info.AvailablePresentations)
	fmt.Fprintf(&b, "Available papers: %d\n", info.AvailablePapers)
	fmt.Fprintf(&b, "Available posters: %d\n", info.AvailablePosters)
	fmt.Fprintf(&b, "Successfully downloaded presentations: %d\n", info.DownloadedTalks)
	fmt.Fprintf(&b, "Successfully downloaded papers: %d\n", info.DownloadedPapers)
	fmt.Fprintf(&b, "Successfully downloaded posters: %d\n", info.DownloadedPosters)
	fmt.Fprintf(&b, "Errors: %d\n\n", info.Errors)

	b.WriteString("Session detailed statistics:\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for i := range results {
		r := &results[i]
		fmt.Fprintf(&b, "Session: %s\n", r.Session.Name)
		fmt.Fprintf(&b, "   Papers: %d\n", r.PaperCount())
		fmt.Fprintf(&b, "   Available presentations: %d\n", r.AvailableTalks())
		fmt.Fprintf(&b, "   Available papers: %d\n", r.AvailablePapers())
		fmt.Fprintf(&b, "   Available posters: %d\n", r.AvailablePosters())
		fmt.Fprintf(&b, "   URL: %s\n", r.Session.URL)
		if len(r.Papers) > 0 {
			b.WriteString("   Paper list:\n")
			for _, p := range r.Papers {
				marker := "---"
				if p.PaperAvailable {
					marker = "PDF"
				}
				fmt.Fprintf(&b, "     [%s] %s: %s\n", marker, p.PaperID, preview(p.Title, 60))
			}
		}
		b.WriteString("\n")
	}

	return os.WriteFile(w.layout.FinalReportFile(), []byte(b.String()), 0o644)
}

func (w *Writer) writeCompleteIndex(info ScrapeInfo, results []proceedings.SessionResult) error {
	type sessionDoc struct {
		SessionInfo proceedings.Session `json:"session_info"`
		Papers      []proceedings.Paper `json:"papers"`
		PaperCount  int                 `json:"paper_count"`
	}

	docs := make([]sessionDoc, 0, len(results))
	for i := range results {
		docs = append(docs, sessionDoc{
			SessionInfo: results[i].Session,
			Papers:      results[i].Papers,
			PaperCount:  results[i].PaperCount(),
		})
	}

	return writeJSONFile(w.layout.CompleteIndexFile(), struct {
		ScrapeInfo ScrapeInfo   `json:"scrape_info"`
		Sessions   []sessionDoc `json:"sessions"`
	}{info, docs})
}

func (w *Writer) writeAllPapersCSV(results []proceedings.SessionResult) error {
	f, err := os.Create(w.layout.AllPapersFile())
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]string, 0, len(csvHeader)+1)
	header = append(header, csvHeader[0], "session_id")
	header = append(header, csvHeader[1:]...)

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range results {
		r := &results[i]
		for _, p := range r.Papers {
			row := paperRow(r.Session.Name, p)
			full := make([]string, 0, len(row)+1)
			full = append(full, row[0], r.Session.ID)
			full = append(full, row[1:]...)
			if err := cw.Write(full); err != nil {
				return err
			}
		}
	}
	cw.Flush()

	return cw.Error()
}
