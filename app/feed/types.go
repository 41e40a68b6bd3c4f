package feed

// Feed processing types

type Metadata struct {
	Title    string
	Language string
}

// Entry is one syndication item as read from the document, before any
// cleaning or fallback is applied.
type Entry struct {
	GUID          string
	Title         string
	Link          string
	Published     string // raw text, never parsed
	Summary       string // may contain HTML
	Author        string
	Tags          []string
	Thumbnails    []string // media:thumbnail URLs
	MediaContents []string // media:content URLs
	ImageURL      string
}

// Record is the canonical news record produced by the normalizer.
type Record struct {
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

// Identity returns the upsert key and whether the record has one.
func (r Record) Identity() (string, bool) {
	if r.GUID == "" || r.GUID == SentinelFor(FieldGUID) {
		return "", false
	}
	return r.GUID, true
}

// Columns is the column order shared by every tabular output.
var Columns = []string{
	"Title",
	"Publication Date",
	"Source",
	"News URL",
	"Summary",
	"Country",
	"Author",
	"Category",
	"GUID",
	"Image URL",
	"Language",
	"Scraped Timestamp",
}

// Row returns the record values in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Title,
		r.PublicationDate,
		r.Source,
		r.NewsURL,
		r.Summary,
		r.Country,
		r.Author,
		r.Category,
		r.GUID,
		r.ImageURL,
		r.Language,
		r.ScrapedTimestamp,
	}
}
