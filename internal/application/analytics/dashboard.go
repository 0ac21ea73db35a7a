package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
)

const (
	statusUnknown        = "UNKNOWN"
	globalJurisdiction   = "Global"
	activityUpdated      = "Updated"
	deadlinePatentExpiry = "Patent Expiry"
	categoryPrefix       = "Category:"
	monthLabelLayout     = "Jan 2006"
)

// Status selectors understood by AssetsByCategory.
const (
	SelectActive   = "ACTIVE"
	SelectPending  = "PENDING"
	SelectExpiring = "EXPIRING"
)

// expiringSoon reports whether a's term ends strictly between now and the
// deadline horizon.
func (e *Engine) expiringSoon(a *asset.Asset, now time.Time) bool {
	exp := a.ExpiryDate(e.patentTermYears)
	if exp == nil {
		return false
	}
	today := startOfDay(now)
	end := startOfDay(asset.AddMonths(now, e.deadlineHorizonMonths))
	day := startOfDay(*exp)
	return day.After(today) && day.Before(end)
}

// Summary counts totals, active rights, pending applications and rights
// expiring within the deadline horizon.
func (e *Engine) Summary(assets []*asset.Asset) DashboardSummary {
	now := e.now()
	s := DashboardSummary{TotalFilings: len(assets)}
	for _, a := range assets {
		if a.IsActive() {
			s.ActivePatents++
		}
		if a.IsPending() {
			s.PendingApplications++
		}
		if e.expiringSoon(a, now) {
			s.ExpiringSoon++
		}
	}
	return s
}

// StatusDistribution counts assets per uppercased status.
func (e *Engine) StatusDistribution(assets []*asset.Asset) []NameValue {
	counts := make(map[string]int)
	for _, a := range assets {
		name := strings.ToUpper(strings.TrimSpace(a.Status))
		if name == "" {
			name = statusUnknown
		}
		counts[name]++
	}
	out := make([]NameValue, 0, len(counts))
	for name, n := range counts {
		out = append(out, NameValue{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FilingsTrend buckets dated patents and trademarks by filing month in
// chronological order. An empty type counts as a patent.
func (e *Engine) FilingsTrend(assets []*asset.Asset) []MonthlyFilings {
	type bucket struct{ patents, trademarks int }
	buckets := make(map[time.Time]*bucket)
	for _, a := range assets {
		if !a.HasFilingDate() {
			continue
		}
		typ := strings.ToUpper(strings.TrimSpace(a.Type))
		if typ == "" {
			typ = asset.TypePatent
		}
		if typ != asset.TypePatent && typ != asset.TypeTrademark {
			continue
		}
		month := time.Date(a.FilingDate.Year(), a.FilingDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		if typ == asset.TypePatent {
			b.patents++
		} else {
			b.trademarks++
		}
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]MonthlyFilings, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		out = append(out, MonthlyFilings{Month: m.Format(monthLabelLayout), Patents: b.patents, Trademarks: b.trademarks})
	}
	return out
}

// JurisdictionBreakdown counts assets per jurisdiction; blanks are "Global".
func (e *Engine) JurisdictionBreakdown(assets []*asset.Asset) []JurisdictionCount {
	counts := make(map[string]int)
	for _, a := range assets {
		j := strings.TrimSpace(a.Jurisdiction)
		if j == "" {
			j = globalJurisdiction
		}
		counts[j]++
	}
	out := make([]JurisdictionCount, 0, len(counts))
	for j, n := range counts {
		out = append(out, JurisdictionCount{Jurisdiction: j, Patents: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Patents != out[j].Patents {
			return out[i].Patents > out[j].Patents
		}
		return out[i].Jurisdiction < out[j].Jurisdiction
	})
	return out
}

// StatusTimeline counts pending ("filed") and active ("granted") assets per
// filing quarter. Quarters are ordered by their "Q{n} {yyyy}" label, which
// groups by quarter number before year.
func (e *Engine) StatusTimeline(assets []*asset.Asset) []QuarterStatus {
	quarters := make(map[string]*QuarterStatus)
	for _, a := range assets {
		if !a.HasFilingDate() {
			continue
		}
		q := (int(a.FilingDate.Month())-1)/3 + 1
		key := fmt.Sprintf("Q%d %d", q, a.FilingDate.Year())
		qs, ok := quarters[key]
		if !ok {
			qs = &QuarterStatus{Quarter: key}
			quarters[key] = qs
		}
		switch {
		case a.IsActive():
			qs.Granted++
		case a.IsPending():
			qs.Filed++
		}
	}

	out := make([]QuarterStatus, 0, len(quarters))
	for _, qs := range quarters {
		out = append(out, *qs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quarter < out[j].Quarter })
	return out
}

// RecentActivity lists the most recently updated assets; undated ones last.
func (e *Engine) RecentActivity(assets []*asset.Asset) []ActivityItem {
	sorted := make([]*asset.Asset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].LastUpdated, sorted[j].LastUpdated
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	sorted = truncate(sorted, e.recentActivityLimit)
	out := make([]ActivityItem, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, ActivityItem{ID: a.ID, Title: a.Title, Type: a.Type, Date: a.LastUpdated, Action: activityUpdated})
	}
	return out
}

// UpcomingDeadlines lists assets expiring within the horizon, earliest filing first.
func (e *Engine) UpcomingDeadlines(assets []*asset.Asset) []DeadlineItem {
	now := e.now()
	var due []*asset.Asset
	for _, a := range assets {
		if e.expiringSoon(a, now) {
			due = append(due, a)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].FilingDate.Before(*due[j].FilingDate) })

	due = truncate(due, e.recentActivityLimit)
	out := make([]DeadlineItem, 0, len(due))
	for _, a := range due {
		out = append(out, DeadlineItem{
			ID:       a.ID,
			Title:    a.Title,
			Deadline: formatDate(a.ExpiryDate(e.patentTermYears)),
			Type:     deadlinePatentExpiry,
		})
	}
	return out
}

// AssetsByCategory selects assets by a status selector (ACTIVE, PENDING,
// EXPIRING) or else by a case-insensitive text search across title,
// classification, category, assignee, inventor and details. A leading
// "Category:" is ignored. Results are capped; Total is the size of the
// returned page.
func (e *Engine) AssetsByCategory(assets []*asset.Asset, category string) AssetPage {
	category = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(category), categoryPrefix))

	selected := assets
	if category != "" {
		now := e.now()
		var match func(*asset.Asset) bool
		switch strings.ToUpper(category) {
		case SelectActive:
			match = (*asset.Asset).IsActive
		case SelectPending:
			match = (*asset.Asset).IsPending
		case SelectExpiring:
			match = func(a *asset.Asset) bool { return e.expiringSoon(a, now) }
		default:
			match = textMatcher(strings.ToLower(category))
		}
		selected = make([]*asset.Asset, 0)
		for _, a := range assets {
			if match(a) {
				selected = append(selected, a)
			}
		}
	}

	selected = truncate(selected, e.categorySearchLimit)
	page := AssetPage{Data: make([]AssetSummary, 0, len(selected))}
	for _, a := range selected {
		page.Data = append(page.Data, summarize(a))
	}
	page.Total = len(page.Data)
	return page
}

func textMatcher(needle string) func(*asset.Asset) bool {
	has := func(s string) bool { return s != "" && strings.Contains(strings.ToLower(s), needle) }
	return func(a *asset.Asset) bool {
		if has(a.Title) || has(a.Assignee) || has(a.Inventor) || has(a.Details) {
			return true
		}
		if a.ClassificationCodes != "" {
			return has(a.ClassificationCodes) || has(asset.Normalize(a.ClassificationCodes).String())
		}
		return false
	}
}

func summarize(a *asset.Asset) AssetSummary {
	return AssetSummary{
		ID:           a.ID,
		AssetNumber:  a.AssetNumber,
		Title:        a.Title,
		Type:         a.Type,
		Assignee:     a.Assignee,
		Inventor:     a.Inventor,
		FilingDate:   formatDate(a.FilingDate),
		Status:       a.Status,
		Jurisdiction: a.Jurisdiction,
		Details:      a.Details,
	}
}

//Personal.AI order the ending
