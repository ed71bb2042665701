package product

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
	"github.com/aurelioventura/healthscan-backend/pkg/metrics"
	"github.com/aurelioventura/healthscan-backend/pkg/pagination"
)

const defaultFetchAttempts = 3

// Service exposes the product search surface.
type Service interface {
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	Generation() uint64
	Invalidate() uint64
}

// SearchInput holds the resolved search parameters. A non-empty Query
// takes precedence over Category.
type SearchInput struct {
	Query    string
	Category *enums.ProductCategory
	Page     int
}

type productStore interface {
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	List(ctx context.Context, filter SearchFilter, offset, limit int) ([]models.Product, error)
}

// service implements the product search service.
type service struct {
	store         productStore
	logg          *logger.Logger
	searchMetrics *metrics.SearchMetrics
	fetchAttempts int

	generation atomic.Uint64
}

// NewService constructs a product search service instance.
func NewService(store productStore, logg *logger.Logger, searchMetrics *metrics.SearchMetrics, fetchAttempts int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("product store required")
	}
	if fetchAttempts <= 0 {
		fetchAttempts = defaultFetchAttempts
	}
	return &service{
		store:         store,
		logg:          logg,
		searchMetrics: searchMetrics,
		fetchAttempts: fetchAttempts,
	}, nil
}

// Search resolves a (query, category, page) triple into one page of
// products plus an accurate total. The count runs first so the page can
// be clamped before any rows are fetched.
func (s *service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	started := time.Now()
	generation := s.generation.Load()
	filter := s.resolveFilter(input)

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		s.observe("count_error", started)
		return nil, pkgerrors.Classify(err, "count products")
	}

	if total == 0 {
		result := s.searchSamples(filter, input.Page, generation)
		s.incFallback()
		s.observe("fallback", started)
		if s.logg != nil {
			s.logg.Info(ctx, "search served from curated samples")
		}
		return result, nil
	}

	totalPages := pagination.TotalPages(int(total))
	page := pagination.ClampPage(input.Page, totalPages)

	rows, err := s.fetchPage(ctx, filter, page)
	if err != nil {
		s.observe("fetch_error", started)
		return nil, err
	}

	products := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		products = append(products, *NewProductDTO(&rows[i]))
	}

	s.observe("ok", started)
	return &SearchResult{
		Products:   products,
		Page:       page,
		TotalPages: totalPages,
		TotalItems: int(total),
		Generation: generation,
	}, nil
}

// Generation returns the current result generation. Results minted under
// an older generation are stale and safe to discard.
func (s *service) Generation() uint64 {
	return s.generation.Load()
}

// Invalidate bumps the generation so in-flight search results are
// recognizably stale. Returns the new generation.
func (s *service) Invalidate() uint64 {
	return s.generation.Add(1)
}

func (s *service) resolveFilter(input SearchInput) SearchFilter {
	if query := strings.TrimSpace(input.Query); query != "" {
		return SearchFilter{Query: query}
	}
	return SearchFilter{Category: input.Category}
}

// fetchPage loads one page of rows, retrying immediately on retryable
// store failures up to the attempt budget.
func (s *service) fetchPage(ctx context.Context, filter SearchFilter, page int) ([]models.Product, error) {
	offset := pagination.Offset(page)

	var lastErr *pkgerrors.Error
	for attempt := 1; attempt <= s.fetchAttempts; attempt++ {
		rows, err := s.store.List(ctx, filter, offset, pagination.PageSize)
		if err == nil {
			return rows, nil
		}

		lastErr = pkgerrors.Classify(err, fmt.Sprintf("fetch products page %d", page))
		if !pkgerrors.Retryable(lastErr) {
			return nil, lastErr
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		if attempt < s.fetchAttempts {
			s.incRetry(string(lastErr.Code()))
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("retrying product fetch (attempt %d/%d)", attempt+1, s.fetchAttempts))
			}
		}
	}
	return nil, lastErr
}

// searchSamples serves the curated dataset with live-path filter and
// pagination semantics. The sample size is reported as the total count.
func (s *service) searchSamples(filter SearchFilter, page int, generation uint64) *SearchResult {
	matched := filterSamples(filter)
	totalPages := pagination.TotalPages(len(matched))
	clamped := pagination.ClampPage(page, totalPages)
	window := pagination.Paginate(matched, clamped)

	products := make([]ProductDTO, 0, len(window))
	for i := range window {
		products = append(products, *NewProductDTO(&window[i]))
	}

	return &SearchResult{
		Products:   products,
		Page:       clamped,
		TotalPages: totalPages,
		TotalItems: len(matched),
		Fallback:   true,
		Generation: generation,
	}
}

func (s *service) observe(outcome string, started time.Time) {
	if s.searchMetrics == nil {
		return
	}
	s.searchMetrics.ObserveDuration(outcome, time.Since(started))
}

func (s *service) incRetry(reason string) {
	if s.searchMetrics == nil {
		return
	}
	s.searchMetrics.IncRetry(reason)
}

func (s *service) incFallback() {
	if s.searchMetrics == nil {
		return
	}
	s.searchMetrics.IncFallback()
}
