package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GregZOL/API-France-March--BOAMP/internal/boamp"
	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// LegacyQuery is the request descriptor for the Records v1 dialect: repeated
// refine.{field}=value pairs plus rows/start pagination. The dialect has no
// boolean-expression capability, so prefix matching, arbitrary substrings,
// nature sets, date bounds and sort modes cannot be expressed and are
// silently dropped rather than erroring.
type LegacyQuery struct {
	Q           string
	Rows        int
	Start       int
	Refinements Params
}

// CompileLegacy compiles the filters into a Records v1 descriptor. Each
// department code and each CPV whitelist code becomes its own refine pair;
// the provider ANDs independent refinement constraints together.
func CompileLegacy(f port.FilterSet, catalog port.FieldCatalog) LegacyQuery {
	q := strings.TrimSpace(f.Keywords)
	if f.UseTraining {
		training := strings.Join(boamp.TrainingTerms, " OR ")
		if q == "" {
			q = training
		} else {
			q = q + " OR " + training
		}
	}

	var refinements Params

	whitelist := f.CPVWhitelist
	if f.UseTraining {
		whitelist = boamp.TrainingCPVWhitelist
	}
	cpvKey := "refine." + catalog.Field(port.RoleCPV)
	for _, code := range whitelist {
		if strings.TrimSpace(code) == "" {
			continue
		}
		refinements = append(refinements, Param{cpvKey, code})
	}

	if f.UseTraining {
		refinements = append(refinements, Param{
			"refine." + catalog.Field(port.RoleServiceCategory),
			boamp.TrainingServiceCategory,
		})
	}

	deptKey := "refine." + catalog.Field(port.RoleDept)
	for _, code := range f.DeptCodes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		refinements = append(refinements, Param{deptKey, code})
	}

	if strings.TrimSpace(f.Buyer) != "" {
		refinements = append(refinements, Param{
			"refine." + catalog.Field(port.RoleBuyer), f.Buyer,
		})
	}

	return LegacyQuery{
		Q:           q,
		Rows:        f.PageSize,
		Start:       (f.Page - 1) * f.PageSize,
		Refinements: refinements,
	}
}

// URL renders the full Records v1 request URL.
func (q LegacyQuery) URL(base, dataset, apiKey string) string {
	params := Params{
		{"dataset", dataset},
		{"rows", strconv.Itoa(q.Rows)},
		{"start", strconv.Itoa(q.Start)},
	}
	if q.Q != "" {
		params = append(params, Param{"q", q.Q})
	}
	params = append(params, q.Refinements...)
	if apiKey != "" {
		params = append(params, Param{"apikey", apiKey})
	}
	return fmt.Sprintf("%s/api/records/1.0/search/?%s",
		strings.TrimRight(base, "/"), params.Encode())
}
