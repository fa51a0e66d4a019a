package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jacow-mirror/srfcrawl/proceedings"
)

// SessionStats is one row of the post-run analysis, rebuilt from the
// per-session JSON files rather than from in-memory state so the command
// works on any previous run's output directory.
type SessionStats struct {
	Name          string
	PaperCount    int
	AvailablePDFs int
	Papers        []proceedings.Paper
}

// Analyze re-reads Sessions/*/papers_data.json under the layout root,
// prints per-session statistics to out and writes Sessions_Summary.csv.
func (w *Writer) Analyze(out io.Writer) error {
	sessionsDir := filepath.Join(w.layout.Root, "Sessions")
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		return fmt.Errorf("read sessions dir: %w", err)
	}

	var stats []SessionStats
	totalPapers, totalPDFs := 0, 0

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := readSessionStats(filepath.Join(sessionsDir, e.Name(), "papers_data.json"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		stats = append(stats, s)
		totalPapers += s.PaperCount
		totalPDFs += s.AvailablePDFs
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	fmt.Fprintf(out, "Sessions processed: %d\n", len(stats))
	fmt.Fprintf(out, "Total papers: %d\n", totalPapers)
	fmt.Fprintf(out, "Available PDFs: %d\n\n", totalPDFs)

	for _, s := range stats {
		fmt.Fprintf(out, "%s\n", s.Name)
		fmt.Fprintf(out, "   Paper count: %d\n", s.PaperCount)
		fmt.Fprintf(out, "   Available PDFs: %d\n", s.AvailablePDFs)
		for _, p := range s.Papers {
			fmt.Fprintf(out, "     %s: %s\n", p.PaperID, preview(p.Title, 60))
		}
		fmt.Fprintln(out)
	}

	if err := w.writeSessionsSummary(stats); err != nil {
		return err
	}

	w.reportEmptyPDFs(out)

	return nil
}

func readSessionStats(path string) (SessionStats, error) {
	var doc struct {
		SessionInfo proceedings.Session `json:"session_info"`
		Papers      []proceedings.Paper `json:"papers"`
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SessionStats{}, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return SessionStats{}, fmt.Errorf("parse %s: %w", path, err)
	}

	s := SessionStats{
		Name:       doc.SessionInfo.Name,
		PaperCount: len(doc.Papers),
		Papers:     doc.Papers,
	}
	for _, p := range doc.Papers {
		if p.PaperAvailable {
			s.AvailablePDFs++
		}
	}

	return s, nil
}

func (w *Writer) writeSessionsSummary(stats []SessionStats) error {
	f, err := os.Create(w.layout.SessionsSummaryFile())
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Session Name", "Paper Count", "Available PDFs", "Paper ID List"}); err != nil {
		return err
	}
	for _, s := range stats {
		ids := make([]string, 0, len(s.Papers))
		for _, p := range s.Papers {
			ids = append(ids, p.PaperID)
		}
		row := []string{
			s.Name,
			strconv.Itoa(s.PaperCount),
			strconv.Itoa(s.AvailablePDFs),
			strings.Join(ids, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// reportEmptyPDFs flags zero-byte downloads, which happen when a transfer
// was interrupted mid-run.
func (w *Writer) reportEmptyPDFs(out io.Writer) {
	for _, folder := range []string{"Presentations", "Papers", "Posters"} {
		root := filepath.Join(w.layout.Root, folder)
		sessionDirs, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, d := range sessionDirs {
			if !d.IsDir() {
				continue
			}
			pdfs, _ := filepath.Glob(filepath.Join(root, d.Name(), "*.pdf"))
			empty := 0
			for _, pdf := range pdfs {
				if fi, err := os.Stat(pdf); err == nil && fi.Size() == 0 {
					empty++
				}
			}
			fmt.Fprintf(out, "%s/%s: %d PDF files", folder, d.Name(), len(pdfs))
			if empty > 0 {
				fmt.Fprintf(out, " (%d empty)", empty)
			}
			fmt.Fprintln(out)
		}
	}
}
