package feed

import (
	"sort"
)

// Deduplicator turns the collected records of one run into the set handed to
// a sink.
type Deduplicator interface {
	Run(records []Record) []Record
}

var (
	_ Deduplicator = (*CompletenessDeduplicator)(nil)
	_ Deduplicator = (*UpsertDeduplicator)(nil)
)

// Completeness counts the required fields that are present and are not their
// own "not found" sentinel.
func Completeness(r Record) int {
	required := []struct {
		field Field
		value string
	}{
		{FieldTitle, r.Title},
		{FieldPublicationDate, r.PublicationDate},
		{FieldSource, r.Source},
		{FieldNewsURL, r.NewsURL},
		{FieldSummary, r.Summary},
		{"Country", r.Country},
	}

	score := 0
	for _, f := range required {
		if f.value != "" && f.value != SentinelFor(f.field) {
			score++
		}
	}
	return score
}

// CompletenessDeduplicator ranks records by completeness (stable, highest
// first) and keeps the first record seen for each news URL. Records without a
// news URL are never merged.
type CompletenessDeduplicator struct{}

func NewCompletenessDeduplicator() *CompletenessDeduplicator {
	return &CompletenessDeduplicator{}
}

func (d *CompletenessDeduplicator) Run(records []Record) []Record {
	ranked := make([]Record, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(a, b int) bool {
		return Completeness(ranked[a]) > Completeness(ranked[b])
	})

	seen := make(map[string]bool, len(ranked))
	result := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		key := r.NewsURL
		// Empty and "URL Not Found" keys are not identities; such records all stay.
		if key != "" && key != SentinelFor(FieldNewsURL) {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result = append(result, r)
	}

	return result
}

// UpsertDeduplicator leaves duplicate resolution to a store that upserts on
// guid; the record order is preserved.
type UpsertDeduplicator struct{}

func NewUpsertDeduplicator() *UpsertDeduplicator {
	return &UpsertDeduplicator{}
}

func (d *UpsertDeduplicator) Run(records []Record) []Record {
	return records
}
