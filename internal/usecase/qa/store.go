package qa

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/domain/cases"
	"casebot/internal/errs"
	"casebot/internal/ports"
)

const casesCacheKey = "cases"

// collectionEnvelope is the serialized form stored under the "cases" key.
// The backend entry never expires; freshness is judged from StoredAt so a
// stale collection stays available for degraded reads.
type collectionEnvelope struct {
	Cases    cases.Collection `json:"cases"`
	StoredAt time.Time        `json:"stored_at"`
}

type StoreOptions struct {
	TTL           time.Duration
	ScrapeTimeout time.Duration
	SourcesFile   string
}

// Store serves the case collection from the cache, refreshing it through the
// scraper when stale. Refresh initiation is single-flight per key: concurrent
// misses share one scrape instead of each issuing their own.
type Store struct {
	cache         ports.Cache
	scraper       ports.Scraper
	sources       func() ([]string, error)
	ttl           time.Duration
	scrapeTimeout time.Duration
	sourcesFile   string

	group singleflight.Group
	now   func() time.Time
}

func NewStore(cache ports.Cache, scraper ports.Scraper, sources func() ([]string, error), opts StoreOptions) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 3 * time.Hour
	}
	scrapeTimeout := opts.ScrapeTimeout
	if scrapeTimeout <= 0 {
		scrapeTimeout = 10 * time.Second
	}

	return &Store{
		cache:         cache,
		scraper:       scraper,
		sources:       sources,
		ttl:           ttl,
		scrapeTimeout: scrapeTimeout,
		sourcesFile:   opts.SourcesFile,
		now:           time.Now,
	}
}

// Get returns the current collection and never fails: a refresh error falls
// back to the last known-good collection, or to an empty one on a cold start.
// A caller whose context expires stops waiting; an in-flight shared refresh
// keeps running and still populates the cache.
func (s *Store) Get(ctx context.Context) cases.Collection {
	if ctx == nil {
		ctx = context.Background()
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "qa.store"))

	envelope, found := s.read(logCtx)
	if found && s.fresh(envelope) {
		return envelope.Cases
	}

	collection, err := s.refreshShared(logCtx)
	if err == nil {
		return collection
	}

	if found {
		logging.Warn(logCtx, "case refresh failed, serving stale collection",
			slog.Any("err", errs.Loggable(err)),
			slog.Time("stored_at", envelope.StoredAt))
		return envelope.Cases
	}

	logging.Warn(logCtx, "case refresh failed with no cached fallback",
		slog.Any("err", errs.Loggable(err)))
	return cases.Collection{}
}

// Refresh forces a scrape regardless of freshness and reports how many
// records were stored.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	collection, err := s.refreshShared(ctx)
	if err != nil {
		return 0, err
	}
	return len(collection), nil
}

// Run is the owned background revalidation loop: one refresh up front, then
// one per TTL interval, plus an immediate refresh whenever the source list
// file changes. Failures are transient by policy; the loop only returns when
// ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	if ctx == nil {
		return
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "qa.store.revalidate"))

	s.backgroundRefresh(logCtx)

	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if s.sourcesFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logging.Warn(logCtx, "source watcher unavailable", slog.Any("err", errs.Loggable(err)))
		} else if err := watcher.Add(s.sourcesFile); err != nil {
			logging.Warn(logCtx, "cannot watch sources file",
				slog.String("path", s.sourcesFile), slog.Any("err", errs.Loggable(err)))
			_ = watcher.Close()
		} else {
			defer watcher.Close()
			watchEvents = make(chan fsnotify.Event)
			watchErrors = make(chan error)
			go forwardWatcher(ctx, watcher, watchEvents, watchErrors)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logging.Info(logCtx, "revalidation loop stopped")
			return
		case <-ticker.C:
			s.backgroundRefresh(logCtx)
		case event := <-watchEvents:
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				logging.Info(logCtx, "sources file changed, refreshing", slog.String("path", event.Name))
				s.backgroundRefresh(logCtx)
			}
		case err := <-watchErrors:
			logging.Warn(logCtx, "source watcher error", slog.Any("err", errs.Loggable(err)))
		}
	}
}

func forwardWatcher(ctx context.Context, watcher *fsnotify.Watcher, events chan<- fsnotify.Event, errors chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case errors <- err:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Store) backgroundRefresh(ctx context.Context) {
	count, err := s.Refresh(ctx)
	if err != nil {
		logging.Warn(ctx, "background case refresh failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	logging.Info(ctx, "background case refresh completed", slog.Int("cases", count))
}

// refreshShared funnels all refresh attempts for the key through one flight.
// The scrape itself runs on a detached, scrape-timeout-bounded context so a
// cancelled waiter does not abort the work other callers share.
func (s *Store) refreshShared(ctx context.Context) (cases.Collection, error) {
	ch := s.group.DoChan(casesCacheKey, func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.scrapeTimeout)
		defer cancel()
		return s.refresh(refreshCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(cases.Collection), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context) (cases.Collection, error) {
	urls, err := s.sources()
	if err != nil {
		return nil, errs.Wrap(err, "load source urls")
	}

	collection, err := s.scraper.Fetch(ctx, urls)
	if err != nil {
		return nil, errs.Wrap(err, "fetch cases")
	}

	envelope := collectionEnvelope{
		Cases:    collection,
		StoredAt: s.now().UTC(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, errs.Wrap(err, "encode case collection")
	}

	if err := s.cache.Set(ctx, casesCacheKey, string(payload), 0); err != nil {
		return nil, errs.Wrap(err, "store case collection")
	}

	return collection, nil
}

func (s *Store) read(ctx context.Context) (collectionEnvelope, bool) {
	payload, found, err := s.cache.Get(ctx, casesCacheKey)
	if err != nil {
		logging.Warn(ctx, "case cache read failed", slog.Any("err", errs.Loggable(err)))
		return collectionEnvelope{}, false
	}
	if !found {
		return collectionEnvelope{}, false
	}

	var envelope collectionEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		logging.Warn(ctx, "case cache entry unreadable, treating as miss",
			slog.Any("err", errs.Loggable(err)))
		return collectionEnvelope{}, false
	}
	return envelope, true
}

func (s *Store) fresh(envelope collectionEnvelope) bool {
	return s.now().Sub(envelope.StoredAt) < s.ttl
}
