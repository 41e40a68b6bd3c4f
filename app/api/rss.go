package api

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/himanshuverma8/news-scraper/app/database"
)

// GenerateRSS renders stored records as an RSS 2.0 channel.
func GenerateRSS(items []database.NewsItem, selfLink, version string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", "News Feed", 4)
	writeElement(&buf, "link", selfLink, 4)
	writeElement(&buf, "description", "Latest scraped news records", 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	writeElement(&buf, "lastBuildDate", time.Now().UTC().Format(time.RFC1123Z), 4)
	writeElement(&buf, "generator", fmt.Sprintf("news-scraper/%s", version), 4)

	for _, item := range items {
		writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func writeItem(buf *bytes.Buffer, item database.NewsItem) {
	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", isURL(item.GUID)))
	xml.EscapeText(buf, []byte(item.GUID))
	buf.WriteString("</guid>\n")

	writeElement(buf, "title", item.Title, 6)
	writeElement(buf, "link", item.NewsURL, 6)
	writeElement(buf, "description", cmp.Or(item.Summary, "No description available"), 6)
	writeElement(buf, "pubDate", item.PublicationDate, 6)
	writeElement(buf, "author", item.Author, 6)

	for _, category := range strings.Split(item.Category, ",") {
		writeElement(buf, "category", strings.TrimSpace(category), 6)
	}

	if item.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("      <media:thumbnail url=\"%s\" />\n", html.EscapeString(item.ImageURL)))
	}

	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
