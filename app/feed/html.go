package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// StripHTML returns the visible text of an HTML fragment with every run of
// whitespace (including the gaps left by removed markup) collapsed to a
// single space.
func StripHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CleanText(raw)
	}

	var words []string
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				words = append(words, strings.Fields(node.Text())...)
			case "script", "style", "#comment":
			default:
				walk(node)
			}
		})
	}
	walk(doc.Selection)

	return norm.NFC.String(strings.Join(words, " "))
}

// CleanText trims s and NFC-normalizes it.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
