package port

import "context"

// SearchService is the business-logic interface consumed by the adapters.
type SearchService interface {
	// Search runs one search, including dialect fallback and normalization.
	Search(ctx context.Context, filters FilterSet) (*ResultPage, error)
	// Browse fetches the latest notices without filters (explore demo).
	Browse(ctx context.Context, limit int) (*ResultPage, error)
	// RefreshSchema forces the field catalog to be re-resolved.
	RefreshSchema(ctx context.Context) error
}
