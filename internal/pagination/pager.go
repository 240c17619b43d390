package pagination

import (
	"context"
	"sync"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// Pager drives a SearchService page by page with the concurrency contract of
// the result view: only one fetch in flight at a time, later triggers are
// dropped rather than queued, and a new page-1 search supersedes an
// in-progress one. In-flight fetches are never cancelled; a stale response is
// simply ignored when it resolves after a newer search started.
type Pager struct {
	svc port.SearchService

	mu sync.Mutex
	// generation is bumped by every Reset; responses carrying an older
	// generation are dropped at fold-in time.
	generation uint64
	inFlight   bool
	filters    port.FilterSet
	state      PageState
}

// NewPager builds a Pager. Append selects infinite-scroll accumulation.
func NewPager(svc port.SearchService, appendMode bool) *Pager {
	return &Pager{svc: svc, state: PageState{Append: appendMode}}
}

// State returns a snapshot of the current page state.
func (p *Pager) State() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := p.state
	snapshot.Items = append([]port.NormalizedRecord(nil), p.state.Items...)
	return snapshot
}

// Reset starts a fresh page-1 search with new filters, superseding any fetch
// still in flight.
func (p *Pager) Reset(ctx context.Context, filters port.FilterSet) (PageState, error) {
	filters.Page = 1
	filters.PageSize = ClampPageSize(filters.PageSize)

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.inFlight = true
	p.filters = filters
	p.state = PageState{PageSize: filters.PageSize, Append: p.state.Append}
	p.mu.Unlock()

	return p.fetch(ctx, gen, filters)
}

// Next requests the following page. The request is dropped (ok=false, no
// network call) while a fetch is in flight or when the established page
// count says no further page exists.
func (p *Pager) Next(ctx context.Context) (PageState, bool, error) {
	p.mu.Lock()
	if p.inFlight {
		state := p.state
		p.mu.Unlock()
		return state, false, nil
	}
	page := p.state.Page + 1
	if !p.state.Allows(page) {
		state := p.state
		p.mu.Unlock()
		return state, false, nil
	}
	p.inFlight = true
	gen := p.generation
	filters := p.filters
	filters.Page = page
	p.mu.Unlock()

	state, err := p.fetch(ctx, gen, filters)
	return state, err == nil, err
}

func (p *Pager) fetch(ctx context.Context, gen uint64, filters port.FilterSet) (PageState, error) {
	result, err := p.svc.Search(ctx, filters)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		// A newer search superseded this one; its state owns the flag now.
		return p.state, nil
	}
	p.inFlight = false
	if err != nil {
		return p.state, err
	}
	p.state.Advance(filters.Page, result)
	return p.state, nil
}
