package md2site

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/alnah/go-md2site/internal/dateutil"
)

// FeedPath is the site path of the Atom feed.
const FeedPath = "/feed.xml"

const atomNamespace = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Author  *atomAuthor `xml:"author,omitempty"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Link       atomLink       `xml:"link"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Summary    string         `xml:"summary,omitempty"`
	Categories []atomCategory `xml:"category"`
}

// WriteFeed writes an Atom feed of docs, in the given order. The feed's
// updated time is the newest publish date, or fallback when docs is empty.
// Entry IDs are the document URLs joined onto info.BaseURL.
func WriteFeed(w io.Writer, info SiteInfo, docs []*Document, fallback time.Time) error {
	updated := fallback
	for i, doc := range docs {
		if i == 0 || doc.Date.After(updated) {
			updated = doc.Date
		}
	}

	feed := atomFeed{
		Xmlns:   atomNamespace,
		Title:   info.Title,
		ID:      absURL(info.BaseURL, "/"),
		Updated: dateutil.AtomDate(updated),
		Links: []atomLink{
			{Href: absURL(info.BaseURL, "/")},
			{Href: absURL(info.BaseURL, FeedPath), Rel: "self"},
		},
	}
	if info.Author != "" {
		feed.Author = &atomAuthor{Name: info.Author}
	}

	for _, doc := range docs {
		url := absURL(info.BaseURL, doc.URL)
		entry := atomEntry{
			Title:     doc.Title,
			ID:        url,
			Link:      atomLink{Href: url},
			Published: dateutil.AtomDate(doc.Date),
			Updated:   dateutil.AtomDate(doc.Date),
			Summary:   doc.Summary,
		}
		for _, tag := range doc.Tags {
			entry.Categories = append(entry.Categories, atomCategory{Term: tag})
		}
		feed.Entries = append(feed.Entries, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
