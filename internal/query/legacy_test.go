package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

func TestCompileLegacy_Deterministic(t *testing.T) {
	filters := port.FilterSet{
		Page:         2,
		PageSize:     20,
		Keywords:     "formation continue",
		CPVWhitelist: []string{"80500000"},
		DeptCodes:    []string{"75", "92"},
		Buyer:        "mairie",
		UseTraining:  true,
	}
	catalog := testCatalog()

	assert.Equal(t, CompileLegacy(filters, catalog), CompileLegacy(filters, catalog))
}

func TestCompileLegacy_Refinements(t *testing.T) {
	filters := port.FilterSet{
		Page:         1,
		PageSize:     20,
		CPVWhitelist: []string{"80500000", "80510000"},
		DeptCodes:    []string{"75", "92"},
		Buyer:        "mairie de paris",
	}

	compiled := CompileLegacy(filters, testCatalog())

	want := Params{
		{"refine.cpv", "80500000"},
		{"refine.cpv", "80510000"},
		{"refine.departement", "75"},
		{"refine.departement", "92"},
		{"refine.acheteur", "mairie de paris"},
	}
	assert.Equal(t, want, compiled.Refinements)
}

func TestCompileLegacy_TrainingPreset(t *testing.T) {
	compiled := CompileLegacy(port.FilterSet{Page: 1, PageSize: 20, UseTraining: true}, testCatalog())

	assert.True(t, strings.HasPrefix(compiled.Q, "formation OR"))

	var cpvCodes []string
	sawCategory := false
	for _, p := range compiled.Refinements {
		switch p.Key {
		case "refine.cpv":
			cpvCodes = append(cpvCodes, p.Value)
		case "refine.categorie_services":
			sawCategory = true
			assert.Equal(t, "24", p.Value)
		}
	}
	assert.Len(t, cpvCodes, 8)
	assert.True(t, sawCategory)
}

func TestCompileLegacy_DropsInexpressibleFilters(t *testing.T) {
	filters := port.FilterSet{
		Page:      1,
		PageSize:  20,
		CPVPrefix: "805",
		Nature:    []string{"AppelOffre"},
		UseDate:   true,
		DateFrom:  "2024-01-01",
		DateTo:    "2024-12-31",
		Sort:      port.SortDeadline,
	}

	compiled := CompileLegacy(filters, testCatalog())

	assert.Empty(t, compiled.Refinements)
	assert.Empty(t, compiled.Q)
}

func TestCompileLegacy_Pagination(t *testing.T) {
	compiled := CompileLegacy(port.FilterSet{Page: 4, PageSize: 25}, testCatalog())

	assert.Equal(t, 25, compiled.Rows)
	assert.Equal(t, 75, compiled.Start)
}

func TestLegacyQueryURL(t *testing.T) {
	compiled := CompileLegacy(port.FilterSet{Page: 1, PageSize: 20}, testCatalog())

	url := compiled.URL("https://portal.example.com", "boamp", "")

	require.True(t, strings.HasPrefix(url, "https://portal.example.com/api/records/1.0/search/?"))
	assert.Contains(t, url, "dataset=boamp&rows=20&start=0")
	assert.NotContains(t, url, "apikey")
}

func TestLegacyQueryURL_EscapesValues(t *testing.T) {
	filters := port.FilterSet{Page: 1, PageSize: 20, Buyer: "conseil régional"}

	url := CompileLegacy(filters, testCatalog()).URL("https://portal.example.com", "boamp", "k")

	assert.NotContains(t, url, " ")
	assert.Contains(t, url, "refine.acheteur=")
	assert.Contains(t, url, "apikey=k")
}
