package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyCountry(t *testing.T) {
	table := DefaultCountryTable()

	tests := []struct {
		url      string
		expected string
	}{
		{"http://rss.cnn.com/rss/edition.rss", "USA"},
		{"https://feeds.bbci.co.uk/news/rss.xml", "UK"},
		{"https://WWW.CBC.CA/cmlink/rss-topstories", "Canada"},
		{"https://www.thehindu.com/news/feeder/default.rss", "India"},
		{"https://www.abc.net.au/news/feed/51120/rss.xml", "Australia"},
		{"https://www.aljazeera.com/xml/rss/all.xml", "Qatar"},
		{"https://example.org/feed", UnknownCountry},
		{"", UnknownCountry},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := table.Classify(tt.url); got != tt.expected {
				t.Errorf("Expected %s, got: %s", tt.expected, got)
			}
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	table := NewCountryTable([]CountryRule{
		{Pattern: "news", Country: "First"},
		{Pattern: "news24", Country: "Second"},
	})

	if got := table.Classify("https://www.news24.com/rss"); got != "First" {
		t.Errorf("Expected the earlier rule to win, got: %s", got)
	}
}

func TestLoadCountryTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countries.yaml")
	content := `- pattern: " LeMonde "
  country: France
- pattern: elpais
  country: Spain
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write country file: %v", err)
	}

	table, err := LoadCountryTable(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := table.Classify("https://www.lemonde.fr/rss/une.xml"); got != "France" {
		t.Errorf("Expected France, got: %s", got)
	}
	if got := table.Classify("https://feeds.elpais.com/portada"); got != "Spain" {
		t.Errorf("Expected Spain, got: %s", got)
	}
	if got := table.Classify("https://feeds.bbci.co.uk/news/rss.xml"); got != UnknownCountry {
		t.Errorf("Expected loaded table to replace defaults, got: %s", got)
	}
	if len(table.Rules()) != 2 {
		t.Errorf("Expected 2 rules, got: %d", len(table.Rules()))
	}
}

func TestLoadCountryTableErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadCountryTable(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("- pattern: bbc\n"), 0644)
	if _, err := LoadCountryTable(invalid); err == nil {
		t.Error("Expected error for rule without country")
	}

	malformed := filepath.Join(dir, "malformed.yaml")
	os.WriteFile(malformed, []byte("pattern: [unclosed"), 0644)
	if _, err := LoadCountryTable(malformed); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
