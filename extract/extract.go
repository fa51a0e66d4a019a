package extract

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/jacow-mirror/srfcrawl/proceedings"
	"go.uber.org/zap"
)

// Prober answers whether a remote PDF exists. The network implementation
// lives in the fetch package; tests substitute a deterministic fake.
type Prober interface {
	Exists(ctx context.Context, url string) bool
}

// sectionEndMarkers terminate a paper's section when no further paper ID
// follows it on the page.
var sectionEndMarkers = []string{"DOI:", "Received:", "Accepted:", "Paper:", "Cite:", "Export:"}

// Extractor assembles Paper records from session page text and reconciles
// them against the remote talk/paper/poster PDFs through the Prober.
type Extractor struct {
	Base   string
	Prober Prober
	Logger *zap.Logger
}

func NewExtractor(base string, prober Prober, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{Base: base, Prober: prober, Logger: logger}
}

// Paper extracts one paper's fields from the session page text and probes
// its three resource URLs. It never fails: an ID that cannot be located
// yields a record with derived URLs only, and probe misses yield false
// flags.
func (e *Extractor) Paper(ctx context.Context, pageText, paperID string) proceedings.Paper {
	p := proceedings.NewPaper(e.Base, paperID)

	section, ok := paperSection(pageText, paperID)
	if !ok {
		e.Logger.Warn("paper section not found", zap.String("paper", paperID))
	} else {
		e.fillFields(&p, section)
	}

	e.probeAvailability(ctx, &p)

	return p
}

// paperSection cuts the slice of page text belonging to paperID. The
// section starts right after the ID (trailing digits after optional
// whitespace are swallowed with it), and ends at the next paper-ID-shaped
// token, or failing that at the earliest known end marker, or the end of
// the text.
func paperSection(pageText, paperID string) (string, bool) {
	idRe := regexp.MustCompile(regexp.QuoteMeta(paperID) + `\s*\d*`)
	loc := idRe.FindStringIndex(pageText)
	if loc == nil {
		return "", false
	}

	rest := pageText[loc[1]:]

	if next := paperIDShape.FindStringIndex(rest); next != nil {
		return rest[:next[0]], true
	}

	end := len(rest)
	for _, marker := range sectionEndMarkers {
		if i := strings.Index(rest, marker); i != -1 && i < end {
			end = i
		}
	}

	return rest[:end], true
}

// fillFields classifies the section's lines and assembles title, page
// number, authors, institutions and abstract. The first line is always the
// title; every later line goes through the rule table.
func (e *Extractor) fillFields(p *proceedings.Paper, section string) {
	var lines []string
	for _, raw := range strings.Split(section, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return
	}

	p.Title = lines[0]

	f := fields{title: p.Title}
	var abstractParts []string

	for _, line := range lines[1:] {
		switch classifyLine(line, &f) {
		case labelPageNumber:
			// first numeric line wins, later ones are consumed silently
			if f.pageNumber == "" {
				f.pageNumber = line
			}
		case labelAuthors:
			p.Authors = append(p.Authors, splitAuthors(line)...)
		case labelInstitution:
			p.Institutions = append(p.Institutions, line)
		case labelAbstract:
			abstractParts = append(abstractParts, line)
		}
	}

	p.PageNumber = f.pageNumber
	p.Abstract = strings.Join(abstractParts, " ")
}

// probeAvailability checks the three resource URLs. The probes are
// independent and read-only, so they run concurrently; each goroutine
// writes exactly one flag.
func (e *Extractor) probeAvailability(ctx context.Context, p *proceedings.Paper) {
	if e.Prober == nil {
		return
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		p.TalkAvailable = e.Prober.Exists(ctx, p.TalkURL)
	}()
	go func() {
		defer wg.Done()
		p.PaperAvailable = e.Prober.Exists(ctx, p.PaperURL)
	}()
	go func() {
		defer wg.Done()
		p.PosterAvailable = e.Prober.Exists(ctx, p.PosterURL)
	}()
	wg.Wait()
}
