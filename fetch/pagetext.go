package fetch

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// PageText renders an HTML body to its visible text, the form the
// extraction heuristics operate on.
func PageText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}
