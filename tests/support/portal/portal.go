// Package portal is a fake Opendatasoft portal for end-to-end tests. It
// serves the catalog endpoint and both query APIs from a fixed record set.
package portal

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
)

// Record is one dataset row served by the fake portal.
type Record struct {
	ID     string
	Fields map[string]interface{}
}

// Portal implements http.Handler over three routes: the v2 catalog, the
// Explore v2.1 records endpoint and the Records v1 search endpoint.
type Portal struct {
	// SchemaFields is the declared field list of the dataset catalog.
	SchemaFields []string
	// Records are returned verbatim by whichever dialect answers.
	Records []Record
	// ExploreStatus lets a test force the Explore endpoint to fail;
	// a zero value means 200.
	ExploreStatus int
	// RecordsStatus does the same for the legacy endpoint.
	RecordsStatus int

	exploreCalls int64
	recordsCalls int64
}

// New builds a Portal with the usual BOAMP column names declared.
func New() *Portal {
	return &Portal{
		SchemaFields: []string{
			"objet", "dateparution", "acheteur", "departement", "cpv",
			"nature", "date_limite_remise_offres",
		},
	}
}

// ExploreCalls reports how many Explore v2.1 searches were served.
func (p *Portal) ExploreCalls() int { return int(atomic.LoadInt64(&p.exploreCalls)) }

// RecordsCalls reports how many Records v1 searches were served.
func (p *Portal) RecordsCalls() int { return int(atomic.LoadInt64(&p.recordsCalls)) }

func (p *Portal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/v2/catalog/datasets/"):
		p.serveCatalog(w)
	case strings.HasPrefix(r.URL.Path, "/api/explore/v2.1/"):
		atomic.AddInt64(&p.exploreCalls, 1)
		if p.ExploreStatus != 0 && p.ExploreStatus != http.StatusOK {
			w.WriteHeader(p.ExploreStatus)
			return
		}
		p.serveExplore(w)
	case strings.HasPrefix(r.URL.Path, "/api/records/1.0/search/"):
		atomic.AddInt64(&p.recordsCalls, 1)
		if p.RecordsStatus != 0 && p.RecordsStatus != http.StatusOK {
			w.WriteHeader(p.RecordsStatus)
			return
		}
		p.serveRecords(w)
	default:
		http.NotFound(w, r)
	}
}

func (p *Portal) serveCatalog(w http.ResponseWriter) {
	fields := make([]map[string]string, 0, len(p.SchemaFields))
	for _, name := range p.SchemaFields {
		fields = append(fields, map[string]string{"name": name})
	}
	writeJSON(w, map[string]interface{}{
		"dataset": map[string]interface{}{"fields": fields},
	})
}

func (p *Portal) serveExplore(w http.ResponseWriter) {
	results := make([]map[string]interface{}, 0, len(p.Records))
	for _, rec := range p.Records {
		row := map[string]interface{}{"id": rec.ID}
		for k, v := range rec.Fields {
			row[k] = v
		}
		results = append(results, row)
	}
	writeJSON(w, map[string]interface{}{
		"total_count": len(p.Records),
		"results":     results,
	})
}

func (p *Portal) serveRecords(w http.ResponseWriter) {
	records := make([]map[string]interface{}, 0, len(p.Records))
	for _, rec := range p.Records {
		records = append(records, map[string]interface{}{
			"recordid": rec.ID,
			"fields":   rec.Fields,
		})
	}
	writeJSON(w, map[string]interface{}{
		"nhits":   len(p.Records),
		"records": records,
	})
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
