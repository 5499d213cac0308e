package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/domain/cases"
	"casebot/internal/errs"
	"casebot/internal/ports"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; Casebot/1.0)"

// Options tune a Scraper; zero values fall back to defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Scraper extracts case records from portfolio pages. Fetching fans out one
// goroutine per URL; a failed URL is logged and omitted, never fatal for the
// batch.
type Scraper struct {
	client    *http.Client
	userAgent string
}

var _ ports.Scraper = (*Scraper)(nil)

func New(opts Options) *Scraper {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch scrapes all URLs concurrently and returns the successfully parsed
// records in input order. Only a cancelled context fails the whole call.
func (s *Scraper) Fetch(ctx context.Context, urls []string) (cases.Collection, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "scrape"))

	results := make([]*cases.Record, len(urls))
	group, groupCtx := errgroup.WithContext(ctx)

	for idx, url := range urls {
		group.Go(func() error {
			record, err := s.fetchOne(groupCtx, url)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				logging.Warn(logCtx, "case fetch failed, skipping url",
					slog.String("url", url), slog.Any("err", errs.Loggable(err)))
				return nil
			}
			results[idx] = record
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, errs.Wrap(err, "scrape cases")
	}

	collection := make(cases.Collection, 0, len(urls))
	for _, record := range results {
		if record == nil {
			continue
		}
		collection = append(collection, *record)
	}

	logging.Info(logCtx, "cases scraped",
		slog.Int("requested", len(urls)), slog.Int("parsed", len(collection)))
	return collection, nil
}

func (s *Scraper) fetchOne(ctx context.Context, url string) (*cases.Record, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build request")
	}
	request.Header.Set("User-Agent", s.userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(request)
	if err != nil {
		return nil, errs.Wrap(err, "fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errs.Wrap(err, "parse html")
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	record, err := cases.NewRecord(title, extractBody(doc, title), url)
	if err != nil {
		return nil, errs.Wrap(err, "validate record")
	}
	return &record, nil
}

// extractBody collects the content atoms of the case page, skipping chrome
// inside header/footer and the duplicated page title.
func extractBody(doc *goquery.Document, title string) string {
	content := doc.Find("div.case-content")
	if content.Length() == 0 {
		content = doc.Find("article")
	}
	if content.Length() == 0 {
		content = doc.Selection
	}

	parts := make([]string, 0, 16)
	content.Find("div.tn-atom").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered("header, footer").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" || text == title {
			return
		}
		parts = append(parts, text)
	})

	if len(parts) == 0 {
		content.Find("p").Each(func(_ int, sel *goquery.Selection) {
			if sel.ParentsFiltered("header, footer").Length() > 0 {
				return
			}
			text := strings.TrimSpace(sel.Text())
			if text == "" || text == title {
				return
			}
			parts = append(parts, text)
		})
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
