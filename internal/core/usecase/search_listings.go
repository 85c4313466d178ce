package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/port/usecases_port"
	"github.com/jian131/agent-bds/internal/vntext"
)

// SearchListingsUseCase runs the whole retrieval pipeline for one
// query: parse intent, generate targets, crawl, extract, validate,
// filter, and hand the survivors to persistence in the background.
// Persistence failures never fail the search itself.
type SearchListingsUseCase struct {
	parser     usecases_port.ParseIntentPort
	generator  usecases_port.GenerateTargetsPort
	dispatcher usecases_port.DispatchCrawlPort
	validator  usecases_port.ValidateListingsPort
	extractor  port.ExtractorPort

	ingest    usecases_port.IngestListingsUseCase // nil when persistence is off
	queue     port.ListingQueuePort               // nil without a broker
	scrapeLog port.ScrapeLogPort                  // nil without a database
	cache     port.QueryCachePort                 // nil without a cache

	defaultLimit int
	maxLimit     int

	persistWG sync.WaitGroup
}

func NewSearchListingsUseCase(
	parser usecases_port.ParseIntentPort,
	generator usecases_port.GenerateTargetsPort,
	dispatcher usecases_port.DispatchCrawlPort,
	validator usecases_port.ValidateListingsPort,
	extractor port.ExtractorPort,
	ingest usecases_port.IngestListingsUseCase,
	queue port.ListingQueuePort,
	scrapeLog port.ScrapeLogPort,
	cache port.QueryCachePort,
	defaultLimit, maxLimit int,
) *SearchListingsUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &SearchListingsUseCase{
		parser:       parser,
		generator:    generator,
		dispatcher:   dispatcher,
		validator:    validator,
		extractor:    extractor,
		ingest:       ingest,
		queue:        queue,
		scrapeLog:    scrapeLog,
		cache:        cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Execute runs the pipeline to completion and returns one batch,
// sorted by collection time descending.
func (uc *SearchListingsUseCase) Execute(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	return uc.run(ctx, req, nil)
}

// run is shared by the batch and streaming paths. emit may be nil;
// when set, accepted listings and per-platform progress are pushed to
// it in arrival order as the crawl proceeds.
func (uc *SearchListingsUseCase) run(ctx context.Context, req domain.SearchRequest, emit domain.EventSink) (*domain.SearchResult, error) {
	start := time.Now()
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SearchListings",
		"query":    req.Query,
	})
	ucLogger.Info("Use case started", nil)

	intent := applyOverrides(uc.parser.Execute(ctx, req.Query), req)
	limit := uc.clampLimit(req.Limit)
	out := &sink{emit: emit}

	key := searchCacheKey(intent, limit)
	if uc.cache != nil {
		if cached, ok, err := uc.cache.GetResult(ctx, key); err != nil {
			ucLogger.Warn("Cache lookup failed", port.Fields{"error": err.Error()})
		} else if ok {
			cached.FromCache = true
			cached.SearchTimeMS = time.Since(start).Milliseconds()
			ucLogger.Info("Serving search from cache", port.Fields{"count": len(cached.Listings)})
			for i := range cached.Listings {
				out.send(domain.SearchEvent{Type: domain.EventResult, Listing: &cached.Listings[i]})
			}
			return cached, nil
		}
	}

	targets := uc.generator.Execute(ctx, intent)
	results, err := uc.dispatcher.Execute(ctx, targets)
	if err != nil {
		ucLogger.Error("Dispatch failed", err, nil)
		return nil, err
	}

	searched := make([]string, 0, len(targets))
	for _, t := range targets {
		searched = append(searched, t.Platform)
	}
	out.send(domain.SearchEvent{
		Type:      domain.EventStatus,
		Message:   fmt.Sprintf("searching %d platforms", len(targets)),
		Count:     len(targets),
		Platforms: searched,
	})

	seen := make(map[string]struct{})
	failures := make(map[string]domain.FetchFailure)
	var succeeded []string
	var collected []domain.Listing
	emitted := 0

	for raw := range results {
		if !raw.OK() {
			failures[raw.Platform] = raw.Failure
			out.send(domain.SearchEvent{
				Type:     domain.EventStatus,
				Platform: raw.Platform,
				Message:  "platform failed",
				Failure:  raw.Failure,
			})
			continue
		}

		succeeded = append(succeeded, raw.Platform)

		candidates := uc.extractor.Extract(raw)
		accepted, _ := uc.validator.Execute(ctx, candidates, seen)
		kept := filterByIntent(accepted, intent)

		for i := range kept {
			collected = append(collected, kept[i])
			if emitted < limit {
				out.send(domain.SearchEvent{Type: domain.EventResult, Listing: &kept[i]})
				emitted++
			}
		}
		out.send(domain.SearchEvent{
			Type:     domain.EventStatus,
			Platform: raw.Platform,
			Message:  fmt.Sprintf("platform returned %d listings", len(kept)),
			Count:    len(kept),
		})
	}

	listings := make([]domain.Listing, len(collected))
	copy(listings, collected)
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CollectedAt.After(listings[j].CollectedAt)
	})
	if len(listings) > limit {
		listings = listings[:limit]
	}

	result := &domain.SearchResult{
		Listings:           listings,
		Total:              len(collected),
		Intent:             intent,
		PlatformsSearched:  searched,
		PlatformsSucceeded: succeeded,
		Failures:           failures,
		SearchTimeMS:       time.Since(start).Milliseconds(),
	}

	run := domain.ScrapeRun{
		ID:        uuid.New(),
		Platform:  "multi",
		Query:     intent.Query,
		StartedAt: start,
		Found:     len(collected),
		Failed:    len(failures),
		Status:    domain.RunCompleted,
	}
	uc.persistAsync(ctx, run, collected)

	if uc.cache != nil && len(succeeded) > 0 {
		if err := uc.cache.SetResult(ctx, key, result); err != nil {
			ucLogger.Warn("Cache store failed", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Use case finished", port.Fields{
		"total":      result.Total,
		"succeeded":  len(succeeded),
		"failed":     len(failures),
		"elapsed_ms": result.SearchTimeMS,
	})
	return result, nil
}

// persistAsync queues or stores the collected listings and records the
// scrape run without blocking the response. The background context
// keeps the request's logger and trace but outlives its cancellation.
func (uc *SearchListingsUseCase) persistAsync(ctx context.Context, run domain.ScrapeRun, listings []domain.Listing) {
	if uc.queue == nil && uc.ingest == nil && uc.scrapeLog == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	uc.persistWG.Add(1)
	go func() {
		defer uc.persistWG.Done()
		logger := contextkeys.LoggerFromContext(bg).WithFields(port.Fields{
			"component": "search_persist",
			"run_id":    run.ID.String(),
		})

		if uc.scrapeLog != nil {
			if err := uc.scrapeLog.StartRun(bg, run); err != nil {
				logger.Error("Failed to record scrape run start", err, nil)
			}
		}

		created := 0
		if len(listings) > 0 {
			switch {
			case uc.queue != nil:
				if err := uc.queue.PublishBatch(bg, listings); err != nil {
					logger.Error("Failed to publish listings to the queue", err, nil)
				} else {
					logger.Info("Published listings to the queue", port.Fields{"count": len(listings)})
				}
			case uc.ingest != nil:
				stats, err := uc.ingest.Execute(bg, listings)
				if err != nil {
					logger.Error("Failed to persist listings", err, nil)
				} else if stats != nil {
					created = stats.Created
				}
			}
		}

		if uc.scrapeLog != nil {
			now := time.Now()
			run.FinishedAt = &now
			run.DurationMS = now.Sub(run.StartedAt).Milliseconds()
			run.New = created
			if err := uc.scrapeLog.FinishRun(bg, run); err != nil {
				logger.Error("Failed to record scrape run finish", err, nil)
			}
		}
	}()
}

// Drain blocks until all queued persistence work has finished, so a
// shutdown does not cut off writes mid-flight.
func (uc *SearchListingsUseCase) Drain() {
	uc.persistWG.Wait()
}

func (uc *SearchListingsUseCase) clampLimit(limit int) int {
	if limit <= 0 {
		return uc.defaultLimit
	}
	if limit > uc.maxLimit {
		return uc.maxLimit
	}
	return limit
}

// applyOverrides lets explicit request filters win over whatever the
// parser read out of the query text.
func applyOverrides(intent domain.SearchIntent, req domain.SearchRequest) domain.SearchIntent {
	if req.City != "" {
		intent.City = vntext.CanonicalCity(req.City)
	}
	if req.District != "" {
		intent.District = vntext.CanonicalDistrict(req.District)
	}
	if req.PriceMin != nil {
		intent.PriceMin = req.PriceMin
	}
	if req.PriceMax != nil {
		intent.PriceMax = req.PriceMax
	}
	if req.PropertyType != "" && req.PropertyType != domain.PropertyUnknown {
		intent.PropertyType = req.PropertyType
	}
	return intent
}

// filterByIntent applies the aggregator filters: district match when
// the intent names one, price intersection when both bounds are known,
// property type match when the intent's type is known. Listings with a
// negotiable price always pass the price filter.
func filterByIntent(listings []domain.Listing, intent domain.SearchIntent) []domain.Listing {
	kept := listings[:0]
	for _, l := range listings {
		if !matchesIntent(l, intent) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

func matchesIntent(l domain.Listing, intent domain.SearchIntent) bool {
	if intent.District != "" && l.District != "" {
		if vntext.Fold(l.District) != vntext.Fold(intent.District) {
			return false
		}
	}
	if intent.District != "" && l.District == "" {
		return false
	}

	if intent.PriceMin != nil && intent.PriceMax != nil && l.PriceVND != nil {
		if *l.PriceVND < *intent.PriceMin || *l.PriceVND > *intent.PriceMax {
			return false
		}
	}

	if intent.PropertyType != domain.PropertyUnknown && intent.PropertyType != "" {
		if l.PropertyType != domain.PropertyUnknown && l.PropertyType != "" && l.PropertyType != intent.PropertyType {
			return false
		}
	}

	return true
}

// searchCacheKey is stable across diacritic and spacing variation of
// the same query, so "Cầu Giấy" and "cau giay" share one cache entry.
func searchCacheKey(intent domain.SearchIntent, limit int) string {
	var b strings.Builder
	b.WriteString("search:")
	b.WriteString(strings.Join(strings.Fields(vntext.Fold(intent.Query)), " "))
	b.WriteString("|")
	b.WriteString(vntext.Fold(intent.City))
	b.WriteString("|")
	b.WriteString(vntext.Fold(intent.District))
	b.WriteString("|")
	b.WriteString(string(intent.PropertyType))
	fmt.Fprintf(&b, "|%d|%d|%d", derefInt64(intent.PriceMin), derefInt64(intent.PriceMax), limit)
	return b.String()
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// sink wraps an optional event consumer. After the consumer errors
// once (client gone), further sends become no-ops while the pipeline
// runs on for persistence.
type sink struct {
	emit domain.EventSink
	dead bool
}

func (s *sink) send(event domain.SearchEvent) {
	if s.emit == nil || s.dead {
		return
	}
	if err := s.emit(event); err != nil {
		s.dead = true
	}
}
