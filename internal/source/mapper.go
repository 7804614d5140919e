// Package source loads the denormalized revenue feed and the unit registry
// and maps them into lookup records. Upstream payloads use display-style
// column headers ("Invoice Date", "Parts Margin %"); normalization here is
// total: unparseable numbers become 0, missing strings become "".
package source

import (
	"strconv"
	"strings"
	"time"
)

// RawRecord is one upstream row as decoded from JSON or scanned from SQL.
type RawRecord map[string]any

func (r RawRecord) str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func (r RawRecord) num(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return parseNumber(n)
	}
	return 0
}

// parseNumber mirrors the feed's loose numeric formatting: surrounding
// whitespace, currency symbols, and comma grouping all appear in the wild.
// Anything that still fails to parse is 0, never an error.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// dateLayouts covers the formats the feed has shipped over time.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"2006-01-02 15:04:05",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
