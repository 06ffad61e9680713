package jira

import (
	"encoding/xml"
	"strings"
	"time"
)

// feed is the Atom document returned by the activity stream servlet.
type feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []Entry  `xml:"entry"`
}

// Entry is a single activity-stream item.
type Entry struct {
	ID        string    `xml:"id"`
	Title     string    `xml:"title"`
	Published time.Time `xml:"published"`
	Links     []Link    `xml:"link"`
}

// Link is a hyperlink reference attached to an entry.
type Link struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

const browseMarker = "browse/"

// IssueID derives the issue key from the entry's links. The canonical link
// points at .../browse/<KEY>, possibly with a query string appended.
func (e Entry) IssueID() string {
	for _, link := range e.Links {
		idx := strings.Index(link.Href, browseMarker)
		if idx <= 0 {
			continue
		}
		id := link.Href[idx+len(browseMarker):]
		if q := strings.Index(id, "?"); q > 0 {
			id = id[:q]
		}
		return id
	}
	return "(unknown)"
}
