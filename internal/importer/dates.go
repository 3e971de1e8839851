package importer

import (
	"strings"
	"time"
)

// Sale date layouts. Layouts with an explicit offset are tried first; the
// rest are read in the location passed to parseSaleDate.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"1/2/2006",
		"Jan 2, 2006",
		"2 Jan 2006",
	}
)

// parseSaleDate parses a sale window boundary. An empty value returns nil,
// which clears the boundary.
func parseSaleDate(field, s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}

	return nil, newRowError(CodeValidation,
		map[string]any{field: s},
		"Invalid date %q for %s.", s, field)
}

// applySaleDate sets *dst from an optional row value.
func applySaleDate(dst **time.Time, field string, v Opt[string], loc *time.Location) error {
	if !v.Valid {
		return nil
	}
	t, err := parseSaleDate(field, v.Value, loc)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}
