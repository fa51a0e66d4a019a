package proceedings

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the SRF2019 proceedings site root.
const DefaultBaseURL = "https://proceedings.jacow.org/srf2019"

// doiPrefix follows the JACoW citation scheme for SRF2019.
const doiPrefix = "https://doi.org/10.18429/JACoW-SRF2019-"

// The three resource URLs and the DOI are pure functions of the paper ID.
// The downloader relies on deriving byte-identical URLs to the ones the
// prober checked, so none of these may ever be stored and mutated.

func TalkURL(base, paperID string) string {
	return fmt.Sprintf("%s/talks/%s_talk.pdf", strings.TrimSuffix(base, "/"), strings.ToLower(paperID))
}

func PaperURL(base, paperID string) string {
	return fmt.Sprintf("%s/papers/%s.pdf", strings.TrimSuffix(base, "/"), strings.ToLower(paperID))
}

func PosterURL(base, paperID string) string {
	return fmt.Sprintf("%s/posters/%s_poster.pdf", strings.TrimSuffix(base, "/"), strings.ToLower(paperID))
}

// DOIURL is never probed; it is assumed valid as a citation reference.
func DOIURL(paperID string) string {
	return doiPrefix + paperID
}

// SessionURL locates a session's HTML page under the site root.
func SessionURL(base, sessionID string) string {
	return fmt.Sprintf("%s/html/%s.htm", strings.TrimSuffix(base, "/"), strings.ToLower(sessionID))
}

// NewPaper returns a Paper with the derived URLs populated and every
// textual field empty. Extraction fills the rest in.
func NewPaper(base, paperID string) Paper {
	return Paper{
		PaperID:      paperID,
		Authors:      []string{},
		Institutions: []string{},
		TalkURL:      TalkURL(base, paperID),
		PaperURL:     PaperURL(base, paperID),
		PosterURL:    PosterURL(base, paperID),
		DOI:          DOIURL(paperID),
	}
}
