package port

// RawRow is an opaque provider row: a mapping from concrete field name to
// value (string, number, array or null). Its shape varies by dataset revision
// and by which dialect answered.
type RawRow struct {
	// ID is the provider's own record identifier when one was present
	// outside the field map (Explore `id`, Records v1 `recordid`).
	ID     string
	Fields map[string]interface{}
}

// Lookup returns the value stored under a concrete field name.
func (r RawRow) Lookup(name string) (interface{}, bool) {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// First walks the given field names in order and returns the first non-nil
// value, or nil when none is present.
func (r RawRow) First(names ...string) interface{} {
	for _, name := range names {
		if v, ok := r.Lookup(name); ok {
			return v
		}
	}
	return nil
}

// ProviderResult is the undecorated outcome of one dialect call: raw rows,
// the total count when the provider reported one, and the URL actually used.
type ProviderResult struct {
	Rows  []RawRow
	Total *int64
	URL   string
}

// NormalizedRecord is the canonical notice view produced by the normalizer.
// Every field except Title and Href is optional; absent data yields nulls,
// never errors. JSON keys match what the UI collaborator consumes.
type NormalizedRecord struct {
	Title        string   `json:"title"`
	Href         string   `json:"href"`
	Ref          string   `json:"ref,omitempty"`
	DateISO      *string  `json:"date_iso"`
	DeadlineISO  *string  `json:"deadline_iso"`
	Buyer        *string  `json:"buyer"`
	BuyerAddress *string  `json:"buyer_address"`
	Departments  []string `json:"dept"`
	CPV          []string `json:"cpv"`
	Description  *string  `json:"description"`
	Budget       *string  `json:"budget"`
	Procedure    *string  `json:"procedure"`
	MarketType   *string  `json:"market_type"`
	Place        *string  `json:"place"`
}

// ResultPage is one page of normalized records. Total is nil when the
// provider did not report a count. URL is the exact request that produced
// the page, exposed for diagnostics.
type ResultPage struct {
	Items []NormalizedRecord `json:"items"`
	Total *int64             `json:"total"`
	URL   string             `json:"debug_url"`
}
