// Package output owns the on-disk result tree and the JSON/CSV/TXT
// serializations of scraped sessions. Nothing here touches the network.
//
// The tree mirrors what downstream tooling expects:
//
//	{out}/Sessions/{session}/papers_data.{json,csv} + papers_summary.txt
//	{out}/{Presentations,Papers,Posters}/{session}/*.pdf
//	{out}/Debug/{session}_page_text.txt
//	{out}/SRF2019_Final_Report.txt, SRF2019_Complete_Index.json,
//	      SRF2019_All_Papers.csv, Sessions_Summary.csv
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jacow-mirror/srfcrawl/proceedings"
)

// Layout resolves every path under the output directory.
type Layout struct {
	Root string
}

func NewLayout(root string) (*Layout, error) {
	l := &Layout{Root: root}
	for _, dir := range []string{
		root,
		filepath.Join(root, "Presentations"),
		filepath.Join(root, "Papers"),
		filepath.Join(root, "Posters"),
		filepath.Join(root, "Sessions"),
		filepath.Join(root, "Debug"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	return l, nil
}

func (l *Layout) SessionDir(sessionName string) string {
	return filepath.Join(l.Root, "Sessions", SafeName(sessionName))
}

func (l *Layout) DebugTextFile(sessionID string) string {
	return filepath.Join(l.Root, "Debug", sessionID+"_page_text.txt")
}

// PDFPath places a downloaded resource. folder is one of Presentations,
// Papers, Posters; suffix "_talk", "_poster" or empty, matching the remote
// naming scheme.
func (l *Layout) PDFPath(folder, sessionName string, p proceedings.Paper, suffix string) string {
	name := SafeName(fmt.Sprintf("%s%s - %s", p.PaperID, suffix, p.Title))
	if !strings.HasSuffix(name, ".pdf") {
		name += ".pdf"
	}
	return filepath.Join(l.Root, folder, SafeName(sessionName), name)
}

func (l *Layout) FinalReportFile() string {
	return filepath.Join(l.Root, "SRF2019_Final_Report.txt")
}

func (l *Layout) CompleteIndexFile() string {
	return filepath.Join(l.Root, "SRF2019_Complete_Index.json")
}

func (l *Layout) AllPapersFile() string {
	return filepath.Join(l.Root, "SRF2019_All_Papers.csv")
}

func (l *Layout) SessionsSummaryFile() string {
	return filepath.Join(l.Root, "Sessions_Summary.csv")
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\r\n]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

const maxNameLength = 60

// SafeName converts free text (session names, paper titles) to a filesystem
// safe name, capped at 60 characters. When truncating an "ID - title" name
// the ID part is kept whole and the title is cut at a word boundary.
func SafeName(name string) string {
	if name == "" {
		return "unknown"
	}

	name = invalidChars.ReplaceAllString(name, "_")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.Trim(name, " ._")

	if len(name) > maxNameLength {
		name = truncateName(name)
	}

	if name == "" {
		return "unknown"
	}
	return name
}

func truncateName(name string) string {
	idPart, titlePart, found := strings.Cut(name, " - ")
	if !found {
		cut := name[:maxNameLength]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		return cut
	}

	titleMax := maxNameLength - len(idPart) - 3
	if titleMax <= 5 {
		return idPart
	}
	if len(titlePart) > titleMax {
		cut := titlePart[:titleMax]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		titlePart = cut
	}
	return idPart + " - " + titlePart
}
