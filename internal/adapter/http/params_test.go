package http

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestParseFilterSet_Defaults(t *testing.T) {
	filters := ParseFilterSet(url.Values{}, fixedNow)

	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 20, filters.PageSize)
	assert.Empty(t, filters.Keywords)
	assert.True(t, filters.UseTraining, "training preset defaults to on when the parameter is absent")
	assert.False(t, filters.UseDate)
	assert.Empty(t, filters.DateFrom)
	assert.Empty(t, filters.DateTo)
}

func TestParseFilterSet_TrainingExplicitlyOff(t *testing.T) {
	filters := ParseFilterSet(url.Values{"useTraining": {"false"}}, fixedNow)
	assert.False(t, filters.UseTraining)

	filters = ParseFilterSet(url.Values{"useTraining": {"on"}}, fixedNow)
	assert.True(t, filters.UseTraining)
}

func TestParseFilterSet_KeywordBuckets(t *testing.T) {
	values := url.Values{
		"q":              {"accessibilité"},
		"selectedBucket": {"UX/UI"},
	}

	filters := ParseFilterSet(values, fixedNow)

	assert.Contains(t, filters.Keywords, "accessibilité OR ")
	assert.Contains(t, filters.Keywords, "Figma")
	// The training terms are appended by the compilers, never here.
	assert.NotContains(t, filters.Keywords, "formation professionnelle")
}

func TestParseFilterSet_DeptCodesRepeatedAndCSV(t *testing.T) {
	repeated := ParseFilterSet(url.Values{"deptCodes": {"75", "92"}}, fixedNow)
	assert.Equal(t, []string{"75", "92"}, repeated.DeptCodes)

	csv := ParseFilterSet(url.Values{"deptCodes": {"75,92, 93"}}, fixedNow)
	assert.Equal(t, []string{"75", "92", "93"}, csv.DeptCodes)
}

func TestParseFilterSet_DateWindowDefaults(t *testing.T) {
	t.Run("toggle without bounds fills the default window", func(t *testing.T) {
		filters := ParseFilterSet(url.Values{"useDate": {"on"}}, fixedNow)

		assert.True(t, filters.UseDate)
		assert.Equal(t, "2024-03-17", filters.DateFrom)
		assert.Equal(t, "2025-06-15", filters.DateTo)
	})

	t.Run("a bound alone implies the toggle", func(t *testing.T) {
		filters := ParseFilterSet(url.Values{"dateFrom": {"2024-01-01"}}, fixedNow)

		assert.True(t, filters.UseDate)
		assert.Equal(t, "2024-01-01", filters.DateFrom)
		assert.Equal(t, "2025-06-15", filters.DateTo)
	})

	t.Run("explicit bounds are kept verbatim", func(t *testing.T) {
		filters := ParseFilterSet(url.Values{
			"useDate":  {"1"},
			"dateFrom": {"2024-02-01"},
			"dateTo":   {"2024-03-01"},
		}, fixedNow)

		assert.Equal(t, "2024-02-01", filters.DateFrom)
		assert.Equal(t, "2024-03-01", filters.DateTo)
	})
}

func TestParseFilterSet_Pagination(t *testing.T) {
	filters := ParseFilterSet(url.Values{"page": {"3"}, "pageSize": {"500"}}, fixedNow)

	assert.Equal(t, 3, filters.Page)
	assert.Equal(t, 100, filters.PageSize)

	filters = ParseFilterSet(url.Values{"page": {"garbage"}, "pageSize": {"-2"}}, fixedNow)
	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 20, filters.PageSize)
}

func TestParseFilterSet_Sort(t *testing.T) {
	filters := ParseFilterSet(url.Values{"sort": {"deadline"}}, fixedNow)
	assert.Equal(t, port.SortDeadline, filters.Sort)
}
