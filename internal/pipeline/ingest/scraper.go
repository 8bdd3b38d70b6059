package ingest

import (
	"context"
	"fmt"
	"time"

	"vigia/internal/common/logger"
	"vigia/internal/common/metrics"
	"vigia/internal/models"
	"vigia/internal/store"
)

type ScraperConfig struct {
	SiteBaseURL  string
	ListingPath  string
	MaxPages     int
	RequestDelay time.Duration
}

// Scraper walks the newest-first search results, fetches detail and print
// pages for listings not yet stored, and persists them. Known listings stop
// nothing: the walk simply skips them, so repeated cycles only pay for what
// is new.
type Scraper struct {
	config   ScraperConfig
	fetcher  PageFetcher
	listings store.ListingStore
	logger   logger.Logger
}

func NewScraper(cfg ScraperConfig, fetcher PageFetcher, listings store.ListingStore, log logger.Logger) *Scraper {
	return &Scraper{
		config:   cfg,
		fetcher:  fetcher,
		listings: listings,
		logger:   log.WithFields(map[string]interface{}{"component": "scraper"}),
	}
}

// Scrape runs one ingestion pass and returns the listings persisted during
// it. Per-listing failures are logged and skipped; only context cancellation
// aborts the pass.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.Listing, error) {
	var collected []*models.Listing

	for page := 1; page <= s.config.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		pageURL := fmt.Sprintf("%s%s&pagina=%d", s.config.SiteBaseURL, s.config.ListingPath, page)
		html, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			s.logger.Error("failed to fetch results page", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			continue
		}

		endpoints := extractEndpoints(html)
		s.logger.Info("results page scanned", map[string]interface{}{
			"page":     page,
			"listings": len(endpoints),
		})

		for _, endpoint := range endpoints {
			if err := ctx.Err(); err != nil {
				return collected, err
			}

			listing, err := s.ingestOne(ctx, endpoint)
			if err != nil {
				s.logger.Warn("listing skipped", map[string]interface{}{
					"endpoint": endpoint,
					"error":    err.Error(),
				})
				continue
			}
			if listing != nil {
				collected = append(collected, listing)
				metrics.ListingsScraped.Inc()
			}
		}
	}

	s.logger.Info("scrape pass finished", map[string]interface{}{
		"new": len(collected),
	})
	return collected, nil
}

// ingestOne fetches and stores a single listing. It returns (nil, nil) when
// the listing is already known.
func (s *Scraper) ingestOne(ctx context.Context, endpoint string) (*models.Listing, error) {
	id := listingIDFromEndpoint(endpoint)
	if id == "" {
		return nil, fmt.Errorf("no listing id in endpoint %q", endpoint)
	}

	known, err := s.listings.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if known {
		return nil, nil
	}

	// Courtesy pause between detail fetches so the site never sees a burst.
	s.pause(ctx)

	detailURL := s.config.SiteBaseURL + endpoint
	detailHTML, err := s.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("fetch detail page: %w", err)
	}

	lat, lng, hasCoords := parseCoordinates(detailHTML)
	images := parseImageURLs(detailHTML)

	s.pause(ctx)

	printURL := fmt.Sprintf("%s/imovel/impressao/%s", s.config.SiteBaseURL, id)
	printHTML, err := s.fetcher.Fetch(ctx, printURL)
	if err != nil {
		return nil, fmt.Errorf("fetch print page: %w", err)
	}

	fields := parsePrintTable(printHTML)
	if len(fields) == 0 {
		return nil, fmt.Errorf("print page for listing %s had no data table", id)
	}

	listing := buildListing(id, detailURL, fields, lat, lng, hasCoords, images)

	if err := s.listings.Insert(ctx, listing); err != nil {
		return nil, fmt.Errorf("persist listing: %w", err)
	}

	s.logger.Info("listing ingested", map[string]interface{}{
		"listingId":    listing.ID,
		"neighborhood": listing.Neighborhood,
		"rent":         listing.Rent,
	})
	return listing, nil
}

func (s *Scraper) pause(ctx context.Context) {
	if s.config.RequestDelay <= 0 {
		return
	}
	select {
	case <-time.After(s.config.RequestDelay):
	case <-ctx.Done():
	}
}
