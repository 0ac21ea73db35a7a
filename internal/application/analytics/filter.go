package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
)

// Date range names accepted by Filter.DateRange.
const (
	RangeWeek    = "week"
	RangeMonth   = "month"
	RangeQuarter = "quarter"
	RangeYear    = "year"
	RangeAll     = "all"
)

// Filter narrows the corpus. Zero values and "all" disable a criterion.
type Filter struct {
	Field        string `json:"field,omitempty"`
	DateRange    string `json:"dateRange,omitempty"`
	Type         string `json:"type,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// IsZero reports whether f keeps every asset.
func (f Filter) IsZero() bool {
	return isWildcardField(f.Field) && isWildcard(f.DateRange) && isWildcard(f.Type) && isWildcard(f.Jurisdiction)
}

// CacheKey renders f canonically so that equivalent filters share a key.
func (f Filter) CacheKey() string {
	part := func(s string, wildcard bool) string {
		if wildcard {
			return "*"
		}
		return strings.ToLower(strings.TrimSpace(s))
	}
	return fmt.Sprintf("f=%s|d=%s|t=%s|j=%s",
		part(f.Field, isWildcardField(f.Field)),
		part(f.DateRange, isWildcard(f.DateRange) || !knownRange(f.DateRange)),
		part(f.Type, isWildcard(f.Type)),
		part(f.Jurisdiction, isWildcard(f.Jurisdiction)),
	)
}

func isWildcard(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, RangeAll)
}

func isWildcardField(s string) bool {
	return isWildcard(s) || strings.EqualFold(strings.TrimSpace(s), "All Technologies")
}

func knownRange(r string) bool {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return true
	}
	return false
}

type fieldAlias struct {
	tokens []string
	key    string
}

// fieldAliases is checked in order; the first alias whose token occurs in the
// requested field replaces it.
var fieldAliases = []fieldAlias{
	{[]string{"AI", "INTELLIGENCE"}, "ARTIFICIAL INTELLIGENCE"},
	{[]string{"BIO", "PHARMA"}, "BIOTECH & PHARMA"},
	{[]string{"5G", "WIRELESS"}, "5G & WIRELESS"},
	{[]string{"CLOUD"}, "CLOUD COMPUTING"},
	{[]string{"ELECTRIC", "VEHICLE"}, "ELECTRIC VEHICLES"},
}

// ResolveFieldKey uppercases a technology field and expands known aliases.
func ResolveFieldKey(field string) string {
	key := strings.ToUpper(field)
	for _, a := range fieldAliases {
		for _, tok := range a.tokens {
			if strings.Contains(key, tok) {
				return a.key
			}
		}
	}
	return key
}

// cutoff returns the earliest filing date kept by dateRange, or false when
// the range imposes no bound.
func cutoff(dateRange string, now time.Time) (time.Time, bool) {
	switch strings.ToLower(strings.TrimSpace(dateRange)) {
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return asset.AddMonths(now, -1), true
	case RangeQuarter:
		return asset.AddMonths(now, -3), true
	case RangeYear:
		return asset.AddMonths(now, -12), true
	default:
		return time.Time{}, false
	}
}

// Filter returns the assets matching every criterion of f. The input slice
// is not modified; the result shares asset pointers with it.
func (e *Engine) Filter(assets []*asset.Asset, f Filter) []*asset.Asset {
	var preds []func(*asset.Asset) bool

	if !isWildcardField(f.Field) {
		preds = append(preds, fieldMatcher(ResolveFieldKey(f.Field)))
	}
	if from, ok := cutoff(f.DateRange, e.now()); ok {
		day := startOfDay(from)
		preds = append(preds, func(a *asset.Asset) bool {
			return a.HasFilingDate() && !startOfDay(*a.FilingDate).Before(day)
		})
	}
	if !isWildcard(f.Type) {
		want := strings.TrimSpace(f.Type)
		preds = append(preds, func(a *asset.Asset) bool { return strings.EqualFold(a.Type, want) })
	}
	if !isWildcard(f.Jurisdiction) {
		want := strings.TrimSpace(f.Jurisdiction)
		preds = append(preds, func(a *asset.Asset) bool { return strings.EqualFold(a.Jurisdiction, want) })
	}

	out := make([]*asset.Asset, 0, len(assets))
next:
	for _, a := range assets {
		if a == nil {
			continue
		}
		for _, p := range preds {
			if !p(a) {
				continue next
			}
		}
		out = append(out, a)
	}
	return out
}

func fieldMatcher(key string) func(*asset.Asset) bool {
	return func(a *asset.Asset) bool {
		raw := strings.ToUpper(a.ClassificationCodes)
		if strings.Contains(raw, key) {
			return true
		}
		return strings.Contains(strings.ToUpper(asset.Normalize(raw).String()), key)
	}
}

// startOfDay maps t to UTC midnight of its calendar date in its own location,
// so that cutoffs compare dates rather than instants.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

//Personal.AI order the ending
