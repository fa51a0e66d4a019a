package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Line classification is a handcrafted rule engine: an ordered table of
// predicate→label rules evaluated per line, first match wins. Keyword lists
// are data so they can be tuned without touching the control flow.

type lineLabel int

const (
	labelSkip lineLabel = iota
	labelPageNumber
	labelAuthors
	labelInstitution
	labelAbstract
	labelNoise
)

// fields is the in-progress record the predicates may consult. Rules see
// what earlier lines already assigned (title, page number).
type fields struct {
	title      string
	pageNumber string
}

type lineRule struct {
	name  string
	label lineLabel
	match func(line string, f *fields) bool
}

var pageNumberShape = regexp.MustCompile(`^\d{1,3}$`)

// authorExcludeWords disqualify a comma-separated line from being an author
// list. Checked case-insensitively.
var authorExcludeWords = []string{"funding", "doi", "received", "accepted"}

// institutionWords mark affiliation lines. Case-sensitive, as they appear
// on the proceedings pages.
var institutionWords = []string{
	"University", "Laboratory", "Institute", "Center", "Corporation",
	"School", "Facility", "National", "Synchrotron", "KEK", "FRIB", "LBNL",
	"DESY", "SLAC", "CERN", "Jefferson Lab", "Argonne",
}

// abstractExcludePrefixes are metadata lines that would otherwise pass the
// abstract length test.
var abstractExcludePrefixes = []string{"Funding:", "DOI:", "Received:", "Accepted:"}

// lineRules is evaluated in order. The author rule deliberately precedes the
// institution rule, preserving the original heuristic: an affiliation written
// with a comma ("Argonne National Laboratory, USA") is misread as authors.
// Known limitation, kept as-is.
var lineRules = []lineRule{
	{
		name:  "already-consumed",
		label: labelSkip,
		match: func(line string, f *fields) bool {
			return line == f.title || (f.pageNumber != "" && line == f.pageNumber)
		},
	},
	{
		name:  "page-number",
		label: labelPageNumber,
		match: func(line string, f *fields) bool {
			return pageNumberShape.MatchString(line)
		},
	},
	{
		name:  "authors",
		label: labelAuthors,
		match: func(line string, f *fields) bool {
			if !strings.Contains(line, ",") {
				return false
			}
			if len(splitAuthors(line)) < 2 {
				return false
			}
			lower := strings.ToLower(line)
			for _, w := range authorExcludeWords {
				if strings.Contains(lower, w) {
					return false
				}
			}
			return true
		},
	},
	{
		name:  "institution",
		label: labelInstitution,
		match: func(line string, f *fields) bool {
			for _, w := range institutionWords {
				if strings.Contains(line, w) {
					return true
				}
			}
			return false
		},
	},
	{
		name:  "abstract",
		label: labelAbstract,
		match: func(line string, f *fields) bool {
			if utf8.RuneCountInString(line) <= 20 {
				return false
			}
			for _, p := range abstractExcludePrefixes {
				if strings.HasPrefix(line, p) {
					return false
				}
			}
			return true
		},
	},
}

// classifyLine runs the rule table and returns the first matching label,
// or labelNoise when nothing matches.
func classifyLine(line string, f *fields) lineLabel {
	for _, r := range lineRules {
		if r.match(line, f) {
			return r.label
		}
	}
	return labelNoise
}

// splitAuthors splits a comma-separated author line into trimmed non-empty
// names, order preserved.
func splitAuthors(line string) []string {
	parts := strings.Split(line, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
