package feed

import (
	"bytes"
	"cmp"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, Atom or JSON feed document. Malformed input yields a
// *ParseError and no entries.
func (p *Parser) Run(data []byte) (*Metadata, []Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	metadata := &Metadata{
		Title:    feed.Title,
		Language: feed.Language,
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.convertItem(item))
	}

	return metadata, entries, nil
}

func (p *Parser) convertItem(item *gofeed.Item) Entry {
	entry := Entry{
		GUID:      item.GUID,
		Title:     item.Title,
		Link:      item.Link,
		Published: item.Published,
		Summary:   cmp.Or(item.Description, item.Content),
		Author:    p.extractAuthor(item),
		Tags:      item.Categories,
	}

	if item.Image != nil {
		entry.ImageURL = item.Image.URL
	}

	if media, ok := item.Extensions["media"]; ok {
		entry.Thumbnails = mediaURLs(media, "thumbnail")
		entry.MediaContents = mediaURLs(media, "content")
	}

	return entry
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	author := item.Author
	if author == nil && len(item.Authors) > 0 {
		author = item.Authors[0]
	}
	if author == nil {
		return ""
	}
	return cmp.Or(strings.TrimSpace(author.Name), strings.TrimSpace(author.Email))
}

// mediaURLs collects url attributes of media elements, including those
// nested in media:group.
func mediaURLs(media map[string][]ext.Extension, name string) []string {
	var urls []string
	for _, e := range media[name] {
		if u := e.Attrs["url"]; u != "" {
			urls = append(urls, u)
		}
	}
	for _, group := range media["group"] {
		for _, e := range group.Children[name] {
			if u := e.Attrs["url"]; u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
