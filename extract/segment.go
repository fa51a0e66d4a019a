// Package extract turns the visible text of a session page into structured
// paper records. The site renders each session as one flat page; papers are
// located by their IDs (session code + number, e.g. MOFAA1) and the text
// between two IDs is attributed to the earlier one.
package extract

import (
	"regexp"
	"sort"
	"strconv"
)

// paperIDShape matches any paper identifier: five uppercase letters followed
// by digits. Used to find where the next paper's section begins.
var paperIDShape = regexp.MustCompile(`[A-Z]{5}\d+`)

// PaperIDs scans the page text for every occurrence of the session's paper
// identifiers and returns them fully qualified, deduplicated and ordered by
// ascending numeric suffix ("2" sorts before "10"). An empty result means
// the session page lists no papers, which is a normal outcome.
func PaperIDs(text, sessionID string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(sessionID) + `(\d+)`)

	seen := make(map[string]struct{})
	var suffixes []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		suffixes = append(suffixes, m[1])
	}

	sort.Slice(suffixes, func(i, j int) bool {
		a, _ := strconv.Atoi(suffixes[i])
		b, _ := strconv.Atoi(suffixes[j])
		if a != b {
			return a < b
		}
		return suffixes[i] < suffixes[j]
	})

	ids := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		ids = append(ids, sessionID+s)
	}

	return ids
}
