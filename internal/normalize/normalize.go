// Package normalize maps arbitrarily-shaped provider rows into the canonical
// notice record. Normalization is total: missing or malformed data yields
// nulls and fallbacks, never errors.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// maxListValues caps array-valued fields (CPV codes, departments) so an
// unbounded upstream array cannot blow up rendering.
const maxListValues = 3

// Alternate field names tried when the catalog-resolved field is absent from
// a row. These are names commonly seen across dataset revisions.
var (
	titleFallbacks = []string{"objet", "titre", "title"}
	urlFallbacks   = []string{"permalink", "url_avis", "pageurl", "lien", "link", "url", "permalien"}
)

// Normalizer derives canonical records and stable detail URLs for one
// provider deployment.
type Normalizer struct {
	baseURL string
	dataset string
	// boampHost is true when the portal hostname belongs to boamp.fr,
	// enabling the canonical /avis/detail/{ref} path.
	boampHost bool
}

// New builds a Normalizer for the given portal base URL and dataset slug.
func New(baseURL, dataset string) *Normalizer {
	base := strings.TrimRight(baseURL, "/")
	host := ""
	if u, err := url.Parse(base); err == nil {
		host = u.Hostname()
	}
	return &Normalizer{
		baseURL:   base,
		dataset:   dataset,
		boampHost: strings.HasSuffix(host, "boamp.fr"),
	}
}

// Record maps one raw row into a NormalizedRecord using the resolved catalog,
// with built-in secondary fallbacks per field.
func (n *Normalizer) Record(row port.RawRow, catalog port.FieldCatalog) port.NormalizedRecord {
	lookup := func(role port.Role) interface{} {
		if v, ok := row.Lookup(catalog.Field(role)); ok {
			return v
		}
		return nil
	}

	ref := asString(lookup(port.RoleRef))
	if ref == "" {
		ref = row.ID
	}

	title := asString(lookup(port.RoleTitle))
	if title == "" {
		title = asString(row.First(titleFallbacks...))
	}
	if title == "" {
		title = fmt.Sprintf("Avis #%s", row.ID)
	}

	rawURL := asString(lookup(port.RoleURL))
	if rawURL == "" {
		rawURL = asString(row.First(urlFallbacks...))
	}

	return port.NormalizedRecord{
		Title:        title,
		Href:         n.DetailURL(rawURL, ref, row.ID),
		Ref:          ref,
		DateISO:      isoDate(lookup(port.RoleDate)),
		DeadlineISO:  isoDate(lookup(port.RoleDeadline)),
		Buyer:        asStringPtr(lookup(port.RoleBuyer)),
		BuyerAddress: asStringPtr(lookup(port.RoleBuyerAddress)),
		Departments:  asStrings(lookup(port.RoleDept)),
		CPV:          asStrings(lookup(port.RoleCPV)),
		Description:  asStringPtr(lookup(port.RoleDescription)),
		Budget:       asStringPtr(lookup(port.RoleBudget)),
		Procedure:    asStringPtr(lookup(port.RoleProcedure)),
		MarketType:   asStringPtr(lookup(port.RoleMarketType)),
		Place:        asStringPtr(lookup(port.RolePlace)),
	}
}

// DetailURL derives a stable detail-page URL. The provider's own URL field is
// not trusted when it is empty, malformed, points at the portal root, or at
// the generic landing page; in those cases the canonical boamp.fr detail path
// (when the hostname matches and a reference exists) or the dataset record
// page is used instead.
func (n *Normalizer) DetailURL(rawURL, ref, recordID string) string {
	fallback := func() string {
		if n.boampHost && ref != "" {
			return n.baseURL + "/avis/detail/" + ref
		}
		if recordID != "" {
			return fmt.Sprintf("%s/explore/dataset/%s/record/?id=%s",
				n.baseURL, n.dataset, url.QueryEscape(recordID))
		}
		return n.baseURL
	}

	if strings.TrimSpace(rawURL) == "" {
		return fallback()
	}

	base, err := url.Parse(n.baseURL + "/")
	if err != nil {
		return fallback()
	}
	rel, err := url.Parse(rawURL)
	if err != nil {
		// Malformed URL strings are treated the same as absent.
		return fallback()
	}
	href := base.ResolveReference(rel).String()

	if href == n.baseURL || href == n.baseURL+"/" || strings.Contains(href, "/pages/entreprise-accueil") {
		return fallback()
	}
	return href
}

// isoDate truncates a timestamp string to its calendar date (first 10
// characters). No timezone conversion is applied.
func isoDate(v interface{}) *string {
	s := asString(v)
	if s == "" {
		return nil
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return &s
}

// asString coerces scalar values to strings. Arrays yield their first
// element so single-valued lookups stay usable against array-typed columns.
func asString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case []interface{}:
		if len(val) == 0 {
			return ""
		}
		return asString(val[0])
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asStringPtr(v interface{}) *string {
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

// asStrings preserves array-valued fields as arrays, capped at maxListValues.
func asStrings(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]string, 0, maxListValues)
		for _, item := range val {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
			if len(out) == maxListValues {
				break
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		if s := asString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}
