package feed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const UnknownCountry = "Unknown"

type CountryRule struct {
	Pattern string `yaml:"pattern"`
	Country string `yaml:"country"`
}

// CountryTable classifies a feed URL by the first rule whose pattern is a
// substring of the lower-cased URL.
type CountryTable struct {
	rules []CountryRule
}

// DefaultCountryRules is ordered; earlier rules win.
var DefaultCountryRules = []CountryRule{
	{Pattern: "cnn", Country: "USA"},
	{Pattern: "nytimes", Country: "USA"},
	{Pattern: "bbc", Country: "UK"},
	{Pattern: "cbc", Country: "Canada"},
	{Pattern: "timesofindia", Country: "India"},
	{Pattern: "thehindu", Country: "India"},
	{Pattern: "abc.net.au", Country: "Australia"},
	{Pattern: "dw.com", Country: "Germany"},
	{Pattern: "france24", Country: "France"},
	{Pattern: "nhk.or.jp", Country: "Japan"},
	{Pattern: "xinhuanet", Country: "China"},
	{Pattern: "straitstimes", Country: "Singapore"},
	{Pattern: "thestar.com.my", Country: "Malaysia"},
	{Pattern: "jakartapost", Country: "Indonesia"},
	{Pattern: "koreatimes", Country: "South Korea"},
	{Pattern: "rt.com", Country: "Russia"},
	{Pattern: "globo.com", Country: "Brazil"},
	{Pattern: "news24", Country: "South Africa"},
	{Pattern: "gulfnews", Country: "UAE"},
	{Pattern: "aljazeera", Country: "Qatar"},
	{Pattern: "hurriyetdailynews", Country: "Turkey"},
	{Pattern: "ansa.it", Country: "Italy"},
}

func NewCountryTable(rules []CountryRule) *CountryTable {
	normalized := make([]CountryRule, 0, len(rules))
	for _, rule := range rules {
		normalized = append(normalized, CountryRule{
			Pattern: strings.ToLower(strings.TrimSpace(rule.Pattern)),
			Country: strings.TrimSpace(rule.Country),
		})
	}
	return &CountryTable{rules: normalized}
}

func DefaultCountryTable() *CountryTable {
	return NewCountryTable(DefaultCountryRules)
}

// LoadCountryTable reads an ordered YAML list of {pattern, country} rules.
func LoadCountryTable(path string) (*CountryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read country table: %w", err)
	}

	var rules []CountryRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse country table: %w", err)
	}

	for i, rule := range rules {
		if strings.TrimSpace(rule.Pattern) == "" || strings.TrimSpace(rule.Country) == "" {
			return nil, fmt.Errorf("country rule at index %d must have a pattern and a country", i)
		}
	}

	return NewCountryTable(rules), nil
}

func (t *CountryTable) Classify(feedURL string) string {
	lower := strings.ToLower(feedURL)
	for _, rule := range t.rules {
		if strings.Contains(lower, rule.Pattern) {
			return rule.Country
		}
	}
	return UnknownCountry
}

func (t *CountryTable) Rules() []CountryRule {
	rules := make([]CountryRule, len(t.rules))
	copy(rules, t.rules)
	return rules
}
