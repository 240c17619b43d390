// Package schema resolves the dataset's logical roles to concrete column
// names. The field catalog drifts between portal deployments, so each role
// carries an ordered candidate list and a hard-coded default.
package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// fieldCandidates maps each logical role to the concrete column names seen
// across dataset revisions, in preference order.
var fieldCandidates = map[port.Role][]string{
	port.RoleDate: {
		"dateparution", "date_publication", "datepublication", "date",
		"publication_date", "record_timestamp",
	},
	port.RoleTitle: {"intitule", "objet", "titre", "title", "intitulé", "objet_du_marche"},
	port.RoleURL: {
		"url", "lien", "pageurl", "url_avis", "url_detail_avis", "avis_url",
		"link", "permalink", "permalien", "permalink_avis", "permalien_avis",
	},
	port.RoleCPV: {"cpv", "cpvs", "code_cpv", "codes_cpv", "cpv_principal"},
	port.RoleDept: {
		"lieu_execution_code", "code_departement", "departement", "code_dept",
		"dept", "code_insee_departement",
	},
	port.RoleBuyer:       {"acheteur", "acheteur_nom", "acheteur_name", "organisme", "acheteur.principal"},
	port.RoleDescription: {"description", "objet", "objet_detail", "objetcomplet", "texte"},
	port.RoleRef: {
		"reference", "référence", "numero", "num_avis", "identifiant",
		"no_avis", "num_annonce", "id", "recordid",
	},
	port.RoleServiceCategory: {
		"categorie_services", "categorie_service", "categorie",
		"categorie_de_services", "category_service", "service_category",
	},
	port.RoleNature: {"nature", "nature_avis", "type_avis", "type", "etat", "etat_avis"},
	port.RoleDeadline: {
		"date_limite_remise_offres", "date_limite_de_reception_des_offres",
		"date_limite_offres", "date_reception_offres", "date_reponse",
		"date_limite", "date_depot_offre", "deadline",
	},
	port.RoleBuyerAddress: {
		"nom_et_adresse_officiels_de_l_organisme_acheteur",
		"nom_et_adresse_officiels_de_lorganisme_acheteur",
		"acheteur_adresse", "adresse_acheteur", "organisme_adresse",
		"acheteur_coordonnees", "coordonnees_acheteur", "adresse",
	},
	port.RoleBudget:    {"montant", "montant_estime", "valeur", "budget", "amount"},
	port.RoleProcedure: {"procedure", "type_procedure", "mode_de_passation", "procedure_type"},
	port.RoleMarketType: {
		"type_marche", "type_du_marche", "type",
	},
	port.RolePlace: {
		"lieu_execution", "lieu_execution_nom", "lieu_dexecution",
		"localisation", "ville", "commune",
	},
}

// Fetcher fetches a JSON document from the provider.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, out interface{}) error
}

// Resolver fetches and memoizes the dataset field catalog. Concurrent first
// callers share one in-flight resolution; a failed fetch leaves no memo
// behind so a later call retries from scratch.
type Resolver struct {
	fetch   Fetcher
	baseURL string
	dataset string
	apiKey  string
	ttl     time.Duration
	logger  *zap.Logger

	group singleflight.Group

	mu        sync.RWMutex
	catalog   port.FieldCatalog
	fetchedAt time.Time
}

// NewResolver builds a Resolver. A non-positive ttl memoizes for the process
// lifetime; otherwise the memo expires and is re-resolved lazily.
func NewResolver(fetch Fetcher, baseURL, dataset, apiKey string, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		fetch:   fetch,
		baseURL: baseURL,
		dataset: dataset,
		apiKey:  apiKey,
		ttl:     ttl,
		logger:  logger,
	}
}

// Resolve returns the memoized field catalog, fetching it on first use.
func (r *Resolver) Resolve(ctx context.Context) (port.FieldCatalog, error) {
	r.mu.RLock()
	if r.catalog != nil && (r.ttl <= 0 || time.Since(r.fetchedAt) < r.ttl) {
		catalog := r.catalog
		r.mu.RUnlock()
		return catalog, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do("catalog", func() (interface{}, error) {
		catalog, err := r.fetchCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve dataset schema: %w", err)
		}
		r.mu.Lock()
		r.catalog = catalog
		r.fetchedAt = time.Now()
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(port.FieldCatalog), nil
}

// Refresh drops the memo and resolves the catalog again.
func (r *Resolver) Refresh(ctx context.Context) (port.FieldCatalog, error) {
	r.mu.Lock()
	r.catalog = nil
	r.mu.Unlock()
	return r.Resolve(ctx)
}

// catalogResponse is the `/api/v2/catalog/datasets/{id}` wire shape.
type catalogResponse struct {
	Dataset struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	} `json:"dataset"`
}

func (r *Resolver) fetchCatalog(ctx context.Context) (port.FieldCatalog, error) {
	url := fmt.Sprintf("%s/api/v2/catalog/datasets/%s", r.baseURL, r.dataset)
	if r.apiKey != "" {
		url += "?apikey=" + r.apiKey
	}

	var resp catalogResponse
	if err := r.fetch.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(resp.Dataset.Fields))
	for _, f := range resp.Dataset.Fields {
		present[f.Name] = true
	}

	catalog := make(port.FieldCatalog, len(port.Roles))
	for _, role := range port.Roles {
		catalog[role] = pick(fieldCandidates[role], present, port.DefaultFieldName(role))
	}

	r.logger.Info("dataset schema resolved",
		zap.String("dataset", r.dataset),
		zap.Int("declared_fields", len(present)),
	)
	return catalog, nil
}

// pick walks the candidates in order and returns the first one present in
// the declared field set, else the role default.
func pick(candidates []string, present map[string]bool, fallback string) string {
	for _, c := range candidates {
		if present[c] {
			return c
		}
	}
	return fallback
}
