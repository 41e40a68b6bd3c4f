package feed

import (
	"cmp"
	"strings"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with fixed microsecond precision so that
// stored timestamps sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

type Normalizer struct {
	countries *CountryTable
	policy    FieldPolicy
	now       func() time.Time
}

func NewNormalizer(countries *CountryTable, policy FieldPolicy) *Normalizer {
	return &Normalizer{
		countries: countries,
		policy:    policy,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for scraped timestamps.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

func (n *Normalizer) Run(entry Entry, metadata Metadata, sourceURL string) Record {
	fill := n.policy.Fill

	return Record{
		Title:            fill(FieldTitle, strings.TrimSpace(entry.Title)),
		PublicationDate:  fill(FieldPublicationDate, strings.TrimSpace(entry.Published)),
		Source:           fill(FieldSource, strings.TrimSpace(metadata.Title)),
		NewsURL:          fill(FieldNewsURL, strings.TrimSpace(entry.Link)),
		Summary:          fill(FieldSummary, StripHTML(entry.Summary)),
		Country:          n.countries.Classify(sourceURL),
		Author:           fill(FieldAuthor, strings.TrimSpace(entry.Author)),
		Category:         fill(FieldCategory, joinTags(entry.Tags)),
		GUID:             fill(FieldGUID, cmp.Or(strings.TrimSpace(entry.GUID), strings.TrimSpace(entry.Link))),
		ImageURL:         fill(FieldImageURL, strings.TrimSpace(imageURL(entry))),
		Language:         fill(FieldLanguage, strings.TrimSpace(metadata.Language)),
		ScrapedTimestamp: n.now().UTC().Format(TimestampLayout),
	}
}

func joinTags(tags []string) string {
	terms := make([]string, 0, len(tags))
	for _, tag := range tags {
		if term := strings.TrimSpace(tag); term != "" {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, ", ")
}

// imageURL prefers a thumbnail, then media content, then the generic image.
func imageURL(entry Entry) string {
	if len(entry.Thumbnails) > 0 {
		return entry.Thumbnails[0]
	}
	if len(entry.MediaContents) > 0 {
		return entry.MediaContents[0]
	}
	return entry.ImageURL
}
