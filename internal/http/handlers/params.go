package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/service/analytics"
	"delivery-analytics/internal/store"
)

// windowFromQuery reads start/end as Unix seconds. An absent pair yields a
// zero window; the services decide whether that is acceptable.
func windowFromQuery(q url.Values) (domain.Window, error) {
	var w domain.Window
	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"start", &w.Start},
		{"end", &w.End},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			return domain.Window{}, fmt.Errorf("invalid %s: %q", p.name, s)
		}
		*p.dst = v
	}
	return w, nil
}

// paginationFromQuery reads page/limit. Absent values stay zero and
// resolve to the defaults downstream.
func paginationFromQuery(q url.Values) (store.Pagination, error) {
	var p store.Pagination
	if s := q.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return store.Pagination{}, fmt.Errorf("invalid page: %q", s)
		}
		p.Page = v
	}
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return store.Pagination{}, fmt.Errorf("invalid limit: %q", s)
		}
		p.Limit = v
	}
	return p, nil
}

// modeFromQuery reads the lang parameter selecting output field naming.
func modeFromQuery(q url.Values) (schema.LanguageMode, error) {
	switch q.Get("lang") {
	case "", "native":
		return schema.ModeNative, nil
	case "descriptive":
		return schema.ModeDescriptive, nil
	default:
		return schema.ModeNative, fmt.Errorf("invalid lang: %q", q.Get("lang"))
	}
}

// unitFromQuery reads the trend bucketing unit, defaulting to day.
func unitFromQuery(q url.Values) (domain.TimeUnit, error) {
	s := q.Get("unit")
	if s == "" {
		return domain.UnitDay, nil
	}
	u := domain.TimeUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("invalid unit: %q", s)
	}
	return u, nil
}

func dimensionsFromQuery(q url.Values) []analytics.Dimension {
	var dims []analytics.Dimension
	for _, s := range splitCSV(q.Get("dims")) {
		dims = append(dims, analytics.Dimension(s))
	}
	return dims
}

func metricsFromQuery(q url.Values) []string {
	return splitCSV(q.Get("metrics"))
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// boolFromQuery reads a required boolean flag.
func boolFromQuery(q url.Values, name string) (bool, error) {
	s := q.Get(name)
	if s == "" {
		return false, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}

// floatFromQuery reads an optional float parameter.
func floatFromQuery(q url.Values, name string) (float64, bool, error) {
	s := q.Get(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, true, nil
}

// int64FromQuery reads an optional integer parameter.
func int64FromQuery(q url.Values, name string) (int64, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}
