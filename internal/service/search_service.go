// Package service orchestrates one search: schema resolution, dialect
// execution with fallback, normalization and result caching.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/GregZOL/API-France-March--BOAMP/internal/normalize"
	"github.com/GregZOL/API-France-March--BOAMP/internal/pagination"
	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// CatalogResolver supplies the resolved field catalog (see internal/schema).
type CatalogResolver interface {
	Resolve(ctx context.Context) (port.FieldCatalog, error)
	Refresh(ctx context.Context) (port.FieldCatalog, error)
}

// Options tunes the executor.
type Options struct {
	// PreferRich selects which dialect is tried first. The other one stays
	// the fallback with the same error classification.
	PreferRich bool
	// ResultsTTL enables the results cache when positive.
	ResultsTTL time.Duration
}

type searchService struct {
	resolver   CatalogResolver
	rich       port.Dialect
	legacy     port.Dialect
	normalizer *normalize.Normalizer
	preferRich bool
	cache      *gocache.Cache
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewSearchService builds the executor over the two dialects.
func NewSearchService(resolver CatalogResolver, rich, legacy port.Dialect, normalizer *normalize.Normalizer, opts Options, logger *zap.Logger) port.SearchService {
	var cache *gocache.Cache
	if opts.ResultsTTL > 0 {
		cache = gocache.New(opts.ResultsTTL, 2*opts.ResultsTTL)
	}
	return &searchService{
		resolver:   resolver,
		rich:       rich,
		legacy:     legacy,
		normalizer: normalizer,
		preferRich: opts.PreferRich,
		cache:      cache,
		logger:     logger,
		tracer:     otel.Tracer("search-service"),
	}
}

// Search runs the fallback state machine and normalizes the winning result.
func (s *searchService) Search(ctx context.Context, filters port.FilterSet) (*port.ResultPage, error) {
	filters.Page = pagination.ClampPage(filters.Page)
	filters.PageSize = pagination.ClampPageSize(filters.PageSize)

	catalog, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := s.cacheKey(filters, catalog)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached.(*port.ResultPage), nil
		}
	}

	result, err := s.executeWithFallback(ctx, filters, catalog)
	if err != nil {
		return nil, err
	}

	page := s.normalizePage(result, catalog)
	if s.cache != nil {
		s.cache.SetDefault(cacheKey, page)
	}
	return page, nil
}

// executeWithFallback implements the state machine of the fallback executor.
// A client error (4xx) from the first dialect means this dialect/query
// combination is unsupported by the deployment and triggers the other
// dialect; transport and server errors are fatal. An empty result under the
// training preset is suspect (the rich dialect is known to silently miss the
// training whitelist on schema mismatches) and also triggers the fallback,
// but the first dialect's empty result is kept when the fallback is empty
// or fails.
func (s *searchService) executeWithFallback(ctx context.Context, filters port.FilterSet, catalog port.FieldCatalog) (*port.ProviderResult, error) {
	primary, secondary := s.rich, s.legacy
	if !s.preferRich {
		primary, secondary = s.legacy, s.rich
	}

	result, err := s.try(ctx, primary, filters, catalog)
	if err != nil {
		var provErr *port.ProviderError
		if !errors.As(err, &provErr) || !provErr.ClientError() {
			return nil, err
		}
		s.logger.Warn("dialect rejected query, falling back",
			zap.String("dialect", primary.Name()),
			zap.Int("status", provErr.StatusCode),
		)
		return s.try(ctx, secondary, filters, catalog)
	}

	if len(result.Rows) == 0 && filters.UseTraining {
		s.logger.Info("empty result under training preset, trying other dialect",
			zap.String("dialect", primary.Name()),
		)
		fallback, fbErr := s.try(ctx, secondary, filters, catalog)
		if fbErr != nil {
			s.logger.Warn("fallback dialect failed, keeping empty result",
				zap.String("dialect", secondary.Name()),
				zap.Error(fbErr),
			)
			return result, nil
		}
		if len(fallback.Rows) > 0 {
			return fallback, nil
		}
		// Both empty: the original result is authoritative enough.
	}

	return result, nil
}

func (s *searchService) try(ctx context.Context, dialect port.Dialect, filters port.FilterSet, catalog port.FieldCatalog) (*port.ProviderResult, error) {
	ctx, span := s.tracer.Start(ctx, "provider.search",
		trace.WithAttributes(attribute.String("provider.dialect", dialect.Name())))
	defer span.End()

	result, err := dialect.Search(ctx, filters, catalog)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "dialect search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("provider.rows", len(result.Rows)))
	return result, nil
}

func (s *searchService) normalizePage(result *port.ProviderResult, catalog port.FieldCatalog) *port.ResultPage {
	items := make([]port.NormalizedRecord, 0, len(result.Rows))
	for _, row := range result.Rows {
		items = append(items, s.normalizer.Record(row, catalog))
	}
	return &port.ResultPage{Items: items, Total: result.Total, URL: result.URL}
}

// Browse fetches the latest notices with no filters through the rich dialect
// (and the usual fallback classification).
func (s *searchService) Browse(ctx context.Context, limit int) (*port.ResultPage, error) {
	return s.Search(ctx, port.FilterSet{Page: 1, PageSize: limit})
}

// RefreshSchema drops the schema memo, re-resolves it and clears the results
// cache, which was keyed on the previous field mapping.
func (s *searchService) RefreshSchema(ctx context.Context) error {
	if _, err := s.resolver.Refresh(ctx); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Flush()
	}
	return nil
}

// cacheKey fingerprints everything that influences a result page. Struct and
// map marshaling is deterministic, so identical searches share an entry.
func (s *searchService) cacheKey(filters port.FilterSet, catalog port.FieldCatalog) string {
	key, err := json.Marshal(struct {
		Filters port.FilterSet    `json:"filters"`
		Catalog port.FieldCatalog `json:"catalog"`
		Prefer  bool              `json:"prefer_rich"`
	}{filters, catalog, s.preferRich})
	if err != nil {
		// FilterSet and FieldCatalog are plain data; this cannot happen.
		return fmt.Sprintf("%+v|%v", filters, catalog)
	}
	return string(key)
}
