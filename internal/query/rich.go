// Package query turns a logical filter set into request descriptors for the
// provider's two query dialects. Both compilers are pure, total functions of
// (FilterSet, FieldCatalog): absent filters produce absent clauses, never
// errors.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GregZOL/API-France-March--BOAMP/internal/boamp"
	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// RichQuery is the request descriptor for the Explore v2.1 dialect: a
// boolean where-expression plus ordering and limit/offset pagination.
type RichQuery struct {
	Q       string
	Where   string
	OrderBy string
	Limit   int
	Offset  int
}

// escapeLiteral doubles embedded quote characters. This is the sole
// injection defense for the rich dialect and is applied to every
// interpolated literal, no exceptions.
func escapeLiteral(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

// likeFragment builds a substring-match clause on the stringified field.
func likeFragment(field, value string) string {
	return fmt.Sprintf("string(%s) LIKE '%%%s%%'", field, escapeLiteral(value))
}

// CompileRich compiles the filters into an Explore v2.1 descriptor.
func CompileRich(f port.FilterSet, catalog port.FieldCatalog) RichQuery {
	q := strings.TrimSpace(f.Keywords)
	if f.UseTraining {
		training := strings.Join(boamp.TrainingTerms, " OR ")
		if q == "" {
			q = training
		} else {
			q = q + " OR " + training
		}
	}

	var where []string

	// CPV: the training whitelist wins over an explicit whitelist, which in
	// turn wins over a prefix. The two CPV modes are mutually exclusive per
	// invocation.
	cpvField := catalog.Field(port.RoleCPV)
	whitelist := f.CPVWhitelist
	if f.UseTraining {
		whitelist = boamp.TrainingCPVWhitelist
	}
	if len(whitelist) > 0 {
		var parts []string
		for _, code := range whitelist {
			if strings.TrimSpace(code) == "" {
				continue
			}
			parts = append(parts, likeFragment(cpvField, code))
		}
		if len(parts) > 0 {
			where = append(where, "("+strings.Join(parts, " OR ")+")")
		}
	} else if strings.TrimSpace(f.CPVPrefix) != "" {
		prefix := escapeLiteral(f.CPVPrefix)
		where = append(where, fmt.Sprintf(
			"(string(%s) LIKE '%s%%' OR string(%s) LIKE '%%%s%%')",
			cpvField, prefix, cpvField, prefix,
		))
	}

	if len(f.DeptCodes) > 0 {
		values := make([]string, 0, len(f.DeptCodes))
		for _, code := range f.DeptCodes {
			values = append(values, "'"+escapeLiteral(code)+"'")
		}
		where = append(where, fmt.Sprintf("(%s IN (%s))",
			catalog.Field(port.RoleDept), strings.Join(values, ",")))
	}

	if strings.TrimSpace(f.Buyer) != "" {
		where = append(where, likeFragment(catalog.Field(port.RoleBuyer), f.Buyer))
	}

	// Service category equality is set only by the training preset.
	if f.UseTraining {
		where = append(where, fmt.Sprintf("%s = '%s'",
			catalog.Field(port.RoleServiceCategory),
			escapeLiteral(boamp.TrainingServiceCategory)))
	}

	if len(f.Nature) > 0 {
		values := make([]string, 0, len(f.Nature))
		for _, n := range f.Nature {
			if strings.TrimSpace(n) == "" {
				continue
			}
			values = append(values, "'"+escapeLiteral(n)+"'")
		}
		if len(values) > 0 {
			where = append(where, fmt.Sprintf("string(%s) IN (%s)",
				catalog.Field(port.RoleNature), strings.Join(values, ",")))
		}
	}

	dateField := catalog.Field(port.RoleDate)
	if f.UseDate {
		if f.DateFrom != "" {
			where = append(where, fmt.Sprintf("%s >= '%s'", dateField, escapeLiteral(f.DateFrom)))
		}
		if f.DateTo != "" {
			where = append(where, fmt.Sprintf("%s <= '%s'", dateField, escapeLiteral(f.DateTo)))
		}
	}

	orderBy := "-" + dateField
	switch {
	case f.Sort == port.SortDeadline:
		orderBy = "-" + catalog.Field(port.RoleDeadline)
	case f.Sort == port.SortRelevance && q != "":
		orderBy = "relevance"
	}

	return RichQuery{
		Q:       q,
		Where:   strings.Join(where, " AND "),
		OrderBy: orderBy,
		Limit:   f.PageSize,
		Offset:  (f.Page - 1) * f.PageSize,
	}
}

// URL renders the full Explore v2.1 request URL.
func (q RichQuery) URL(base, dataset, apiKey string) string {
	var params Params
	if q.Q != "" {
		params = append(params, Param{"q", q.Q})
	}
	if q.Where != "" {
		params = append(params, Param{"where", q.Where})
	}
	params = append(params,
		Param{"order_by", q.OrderBy},
		Param{"limit", strconv.Itoa(q.Limit)},
		Param{"offset", strconv.Itoa(q.Offset)},
	)
	if apiKey != "" {
		params = append(params, Param{"apikey", apiKey})
	}
	return fmt.Sprintf("%s/api/explore/v2.1/catalog/datasets/%s/records?%s",
		strings.TrimRight(base, "/"), dataset, params.Encode())
}
