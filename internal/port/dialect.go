package port

import "context"

// Dialect is one of the provider's incompatible query protocols. Both
// dialects share this capability so the fallback state machine can select
// one without the call sites caring which answered.
type Dialect interface {
	// Name identifies the dialect in logs and spans.
	Name() string
	// Search executes the filters against the provider and decodes the
	// response into raw rows.
	Search(ctx context.Context, filters FilterSet, catalog FieldCatalog) (*ProviderResult, error)
}
