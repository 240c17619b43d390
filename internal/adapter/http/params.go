package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GregZOL/API-France-March--BOAMP/internal/boamp"
	"github.com/GregZOL/API-France-March--BOAMP/internal/pagination"
	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// Default date window applied when date filtering is requested without
// explicit bounds: notices from the last 90 days up to deadlines a year out.
const (
	defaultWindowPast   = 90 * 24 * time.Hour
	defaultWindowFuture = 365 * 24 * time.Hour
)

// ParseFilterSet assembles a FilterSet from the search query string. All
// parameters are optional; the training preset defaults to on when absent.
func ParseFilterSet(values url.Values, now time.Time) port.FilterSet {
	manual := values.Get("q")
	buckets := values["selectedBucket"]

	useTraining := true
	if _, present := values["useTraining"]; present {
		useTraining = parseBool(values.Get("useTraining"))
	}

	dateFrom := values.Get("dateFrom")
	dateTo := values.Get("dateTo")
	useDate := parseBool(values.Get("useDate")) || dateFrom != "" || dateTo != ""
	if useDate {
		if dateFrom == "" {
			dateFrom = now.Add(-defaultWindowPast).Format("2006-01-02")
		}
		if dateTo == "" {
			dateTo = now.Add(defaultWindowFuture).Format("2006-01-02")
		}
	} else {
		dateFrom, dateTo = "", ""
	}

	return port.FilterSet{
		Page:        parseIntDefault(values.Get("page"), 1),
		PageSize:    pagination.ClampPageSize(parseIntDefault(values.Get("pageSize"), 20)),
		Keywords:    boamp.ComposeKeywords(manual, buckets, false),
		CPVPrefix:   values.Get("cpvPrefix"),
		DeptCodes:   parseRepeatedOrCSV(values, "deptCodes"),
		Buyer:       strings.TrimSpace(values.Get("buyer")),
		Nature:      nonEmpty(values["nature"]),
		UseDate:     useDate,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		Sort:        port.SortMode(values.Get("sort")),
		UseTraining: useTraining,
	}
}

// parseRepeatedOrCSV accepts both repeated parameters (?k=75&k=92) and a
// single comma-separated value (?k=75,92).
func parseRepeatedOrCSV(values url.Values, key string) []string {
	raw := values[key]
	if len(raw) == 1 && strings.Contains(raw[0], ",") {
		raw = strings.Split(raw[0], ",")
	}
	return nonEmpty(raw)
}

func nonEmpty(raw []string) []string {
	var out []string
	for _, v := range raw {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseBool interprets checkbox-style booleans: on/true/1/yes.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func parseIntDefault(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}
