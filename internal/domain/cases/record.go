package cases

import (
	"errors"
	"strings"
)

// PlaceholderTitle is assigned when a scraped page carries no usable heading.
const PlaceholderTitle = "Untitled case"

var ErrMissingURL = errors.New("case record requires a url")

// Record is one scraped project entry. Immutable once produced; Text may be
// empty when extraction partially failed, such a record never matches a query.
type Record struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Collection keeps records in scraper input order. URL uniqueness is not
// enforced.
type Collection []Record

// NewRecord validates scraper output into a Record. A missing URL is a hard
// reject; a missing title degrades to the placeholder.
func NewRecord(title string, text string, url string) (Record, error) {
	trimmedURL := strings.TrimSpace(url)
	if trimmedURL == "" {
		return Record{}, ErrMissingURL
	}

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		trimmedTitle = PlaceholderTitle
	}

	return Record{
		Title: trimmedTitle,
		Text:  strings.TrimSpace(text),
		URL:   trimmedURL,
	}, nil
}
