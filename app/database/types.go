package database

// NewsItem is one stored row of news_feed. NULL columns read back as "".
type NewsItem struct {
	ID               int64
	Title            string
	PublicationDate  string
	Source           string
	NewsURL          string
	Summary          string
	Country          string
	Author           string
	Category         string
	GUID             string
	ImageURL         string
	Language         string
	ScrapedTimestamp string
}

// Query selects a page of news items. Empty filters match everything.
type Query struct {
	Category      string
	Source        string
	Country       string
	Language      string
	Author        string
	TitleContains string // case-insensitive substring
	Limit         int
	Offset        int
}

// Count is the number of rows sharing one column value.
type Count struct {
	Value string
	Count int
}

// Columns usable with CountsBy and equality filters.
const (
	ColumnCategory = "category"
	ColumnSource   = "source"
	ColumnCountry  = "country"
	ColumnLanguage = "language"
	ColumnAuthor   = "author"
)

var groupableColumns = map[string]bool{
	ColumnCategory: true,
	ColumnSource:   true,
	ColumnCountry:  true,
	ColumnLanguage: true,
	ColumnAuthor:   true,
}
