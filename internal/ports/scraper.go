package ports

import (
	"context"

	"casebot/internal/domain/cases"
)

// Scraper turns source URLs into case records. Best-effort: URLs that could
// not be processed are omitted rather than failing the whole batch, so the
// returned collection may be shorter than the input.
type Scraper interface {
	Fetch(ctx context.Context, urls []string) (cases.Collection, error)
}
