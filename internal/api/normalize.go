package api

import (
	"time"

	"github.com/goodsign/monday"
)

// RenameTable corrects keys that the generic snake_case to camelCase
// conversion gets wrong for a resource. Keys are the names produced by the
// generic conversion, values the names the console models expect.
type RenameTable map[string]string

// Apply renames matching keys throughout v, descending into nested objects
// and arrays.
func (t RenameTable) Apply(v any) any {
	if len(t) == 0 {
		return v
	}
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			if corrected, ok := t[key]; ok {
				key = corrected
			}
			out[key] = t.Apply(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = t.Apply(value)
		}
		return out
	default:
		return v
	}
}

// Reverse returns the table mapping corrected names back to the generic ones
func (t RenameTable) Reverse() RenameTable {
	out := make(RenameTable, len(t))
	for from, to := range t {
		out[to] = from
	}
	return out
}

// mediumLayouts holds the medium-length date-time layout per locale. Month
// names are translated by monday.
var mediumLayouts = map[monday.Locale]string{
	monday.LocaleEnUS: "Jan 2, 2006, 3:04:05 PM",
	monday.LocaleEnGB: "2 Jan 2006, 15:04:05",
	monday.LocaleFrFR: "2 Jan 2006, 15:04:05",
	monday.LocaleDeDE: "02.01.2006, 15:04:05",
	monday.LocaleEsES: "2 Jan 2006, 15:04:05",
	monday.LocaleJaJP: "2006/01/02 15:04:05",
}

const defaultMediumLayout = "Jan 2, 2006, 3:04:05 PM"

// TimestampFormatter renders backend timestamps as medium-length localized
// display strings.
type TimestampFormatter struct {
	Locale   monday.Locale
	Location *time.Location
}

// DefaultTimestampFormatter formats in en_US, UTC
func DefaultTimestampFormatter() TimestampFormatter {
	return TimestampFormatter{Locale: monday.LocaleEnUS, Location: time.UTC}
}

// Format converts raw to its display form. Values that do not parse as a
// timestamp are returned unchanged with ok set to false.
func (f TimestampFormatter) Format(raw string) (string, bool) {
	t, err := parseTimestamp(raw)
	if err != nil {
		return raw, false
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	locale := f.Locale
	if locale == "" {
		locale = monday.LocaleEnUS
	}
	layout, ok := mediumLayouts[locale]
	if !ok {
		layout = defaultMediumLayout
	}
	return monday.Format(t.In(loc), layout, locale), true
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}

// formatResultTimestamps rewrites the given fields of every item in the
// "results" array of a normalized list body.
func (f TimestampFormatter) formatResultTimestamps(body any, fields []string) any {
	root, ok := body.(map[string]any)
	if !ok || len(fields) == 0 {
		return body
	}
	results, ok := root["results"].([]any)
	if !ok {
		return body
	}
	for _, item := range results {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range fields {
			if raw, ok := record[field].(string); ok && raw != "" {
				record[field], _ = f.Format(raw)
			}
		}
	}
	return body
}

// Resource describes the per-resource post-processing applied to responses
type Resource struct {
	Name       string
	Renames    RenameTable
	Timestamps []string
}

// The resources exposed by the backend.
var (
	Tenants = Resource{
		Name:       "tenants",
		Renames:    RenameTable{"tenantUuid": "uuid"},
		Timestamps: []string{"createdAt", "updatedAt"},
	}
	Collections = Resource{
		Name:       "collections",
		Renames:    RenameTable{"nftsCount": "nftCount"},
		Timestamps: []string{"createdAt", "updatedAt"},
	}
	NFTs = Resource{
		Name:       "nfts",
		Renames:    RenameTable{"tokenUri": "tokenURI"},
		Timestamps: []string{"createdAt", "updatedAt", "mintedAt"},
	}
	Metadata = Resource{
		Name:    "metadata",
		Renames: RenameTable{"externalUrl": "externalURL", "imageUrl": "imageURL"},
	}
	Assets = Resource{
		Name:       "assets",
		Renames:    RenameTable{"s3Key": "storageKey"},
		Timestamps: []string{"createdAt", "uploadedAt"},
	}
	Pins = Resource{
		Name:       "pins",
		Renames:    RenameTable{"ipfsHash": "cid"},
		Timestamps: []string{"pinnedAt"},
	}
)
