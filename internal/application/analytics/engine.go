// Package analytics computes technology-landscape and dashboard aggregates
// over a snapshot of the asset corpus.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
)

const (
	// DefaultTopN applies when a caller passes topN <= 0.
	DefaultTopN = 10

	trendDescription = "Technology Field"

	strengthPerOverlap = 5
	maxStrength        = 100
	activePhaseRatio   = 0.8
	daysPerYear        = 365.0
)

// Clock returns the current time.
type Clock func() time.Time

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.now = c
		}
	}
}

// WithPatentTerm sets the number of years after filing at which an asset expires.
func WithPatentTerm(years int) EngineOption {
	return func(e *Engine) {
		if years > 0 {
			e.patentTermYears = years
		}
	}
}

// WithDeadlineHorizon sets how many months ahead an expiry counts as "soon".
func WithDeadlineHorizon(months int) EngineOption {
	return func(e *Engine) {
		if months > 0 {
			e.deadlineHorizonMonths = months
		}
	}
}

// WithListLimits caps the recent-activity feed and the category search.
func WithListLimits(recentActivity, categorySearch int) EngineOption {
	return func(e *Engine) {
		if recentActivity > 0 {
			e.recentActivityLimit = recentActivity
		}
		if categorySearch > 0 {
			e.categorySearchLimit = categorySearch
		}
	}
}

// Engine is stateless apart from its configuration; every method is a pure
// function of its arguments and the clock, and never mutates the assets it
// is given. It is safe for concurrent use.
type Engine struct {
	now                   Clock
	patentTermYears       int
	deadlineHorizonMonths int
	recentActivityLimit   int
	categorySearchLimit   int
}

// NewEngine returns an Engine with a 20-year term, a 6-month deadline horizon
// and list limits of 10 and 100.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:                   time.Now,
		patentTermYears:       20,
		deadlineHorizonMonths: 6,
		recentActivityLimit:   10,
		categorySearchLimit:   100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time {
	return e.now()
}

func effectiveTopN(topN int) int {
	if topN <= 0 {
		return DefaultTopN
	}
	return topN
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// ─────────────────────────────────────────────────────────────────────────────
// Landscape aggregates
// ─────────────────────────────────────────────────────────────────────────────

// ClassificationTrends tallies how many assets carry each canonical category.
// An asset counts once per distinct category.
func (e *Engine) ClassificationTrends(assets []*asset.Asset, topN int) []ClassificationTrend {
	counts := make(map[asset.Category]int)
	for _, a := range assets {
		for _, c := range a.Categories() {
			counts[c]++
		}
	}

	out := make([]ClassificationTrend, 0, len(counts))
	for c, n := range counts {
		out = append(out, ClassificationTrend{Code: c.String(), Count: n, Description: trendDescription})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return truncate(out, effectiveTopN(topN))
}

type pairKey struct{ a, b asset.Category }

func newPairKey(x, y asset.Category) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// Convergence finds category pairs that co-occur on the same asset. Overlap
// is the number of distinct asset IDs showing the pair.
func (e *Engine) Convergence(assets []*asset.Asset, topN int) []ConvergencePair {
	pairs := make(map[pairKey]map[int64]struct{})
	for _, a := range assets {
		cats := a.Categories()
		if len(cats) < 2 {
			continue
		}
		for i := 0; i < len(cats); i++ {
			for j := i + 1; j < len(cats); j++ {
				k := newPairKey(cats[i], cats[j])
				ids, ok := pairs[k]
				if !ok {
					ids = make(map[int64]struct{})
					pairs[k] = ids
				}
				ids[a.ID] = struct{}{}
			}
		}
	}

	out := make([]ConvergencePair, 0, len(pairs))
	for k, ids := range pairs {
		n := len(ids)
		out = append(out, ConvergencePair{
			Field1:       k.a.String(),
			Field2:       k.b.String(),
			OverlapCount: n,
			Strength:     min(maxStrength, n*strengthPerOverlap),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverlapCount != out[j].OverlapCount {
			return out[i].OverlapCount > out[j].OverlapCount
		}
		if out[i].Field1 != out[j].Field1 {
			return out[i].Field1 < out[j].Field1
		}
		return out[i].Field2 < out[j].Field2
	})
	return truncate(out, effectiveTopN(topN))
}

type competitorTally struct {
	total, active, thisYear, lastYear int
}

// Competitors ranks assignees by asset count. Growth compares filings of the
// current calendar year with the previous one.
func (e *Engine) Competitors(assets []*asset.Asset, topN int) []CompetitorProfile {
	currentYear := e.now().Year()
	groups := make(map[string]*competitorTally)
	for _, a := range assets {
		if strings.TrimSpace(a.Assignee) == "" {
			continue
		}
		t, ok := groups[a.Assignee]
		if !ok {
			t = &competitorTally{}
			groups[a.Assignee] = t
		}
		t.total++
		if a.IsActive() {
			t.active++
		}
		if a.HasFilingDate() {
			switch a.FilingDate.Year() {
			case currentYear:
				t.thisYear++
			case currentYear - 1:
				t.lastYear++
			}
		}
	}

	out := make([]CompetitorProfile, 0, len(groups))
	for name, t := range groups {
		out = append(out, CompetitorProfile{
			Assignee:    name,
			PatentCount: t.total,
			ActiveCount: t.active,
			Growth:      yearOverYear(t.thisYear, t.lastYear),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PatentCount != out[j].PatentCount {
			return out[i].PatentCount > out[j].PatentCount
		}
		return out[i].Assignee < out[j].Assignee
	})
	return truncate(out, effectiveTopN(topN))
}

// yearOverYear treats any activity after an empty year as 100% growth.
func yearOverYear(thisYear, lastYear int) float64 {
	if lastYear == 0 {
		if thisYear > 0 {
			return 100
		}
		return 0
	}
	return percentChange(thisYear, lastYear)
}

// InnovationTrends counts dated assets per filing year in ascending order.
// The series is never truncated; topN is accepted for signature symmetry.
func (e *Engine) InnovationTrends(assets []*asset.Asset, _ int) []InnovationTrend {
	perYear := make(map[int]int)
	for _, a := range assets {
		if a.HasFilingDate() {
			perYear[a.FilingDate.Year()]++
		}
	}

	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]InnovationTrend, 0, len(years))
	prev := 0
	for i, y := range years {
		cur := perYear[y]
		rate := 0.0
		if i > 0 {
			rate = percentChange(cur, prev)
		}
		out = append(out, InnovationTrend{Year: y, Innovations: cur, GrowthRate: rate})
		prev = cur
	}
	return out
}

// TopInventors ranks inventors by the number of assets naming them.
func (e *Engine) TopInventors(assets []*asset.Asset, topN int) []InventorRank {
	counts := make(map[string]int)
	for _, a := range assets {
		if strings.TrimSpace(a.Inventor) == "" {
			continue
		}
		counts[a.Inventor]++
	}

	out := make([]InventorRank, 0, len(counts))
	for name, n := range counts {
		out = append(out, InventorRank{Name: name, PatentCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PatentCount != out[j].PatentCount {
			return out[i].PatentCount > out[j].PatentCount
		}
		return out[i].Name < out[j].Name
	})
	return truncate(out, effectiveTopN(topN))
}

// Lifecycle reports the mean age of dated assets and the share of the whole
// corpus that is dated and active.
func (e *Engine) Lifecycle(assets []*asset.Asset) LifecycleStats {
	if len(assets) == 0 {
		return LifecycleStats{}
	}

	now := e.now()
	var totalYears float64
	dated, activeDated := 0, 0
	for _, a := range assets {
		if !a.HasFilingDate() {
			continue
		}
		days := daysBetween(*a.FilingDate, now)
		totalYears += float64(days) / daysPerYear
		dated++
		if a.IsActive() {
			activeDated++
		}
	}

	avg := 0.0
	if dated > 0 {
		avg = totalYears / float64(dated)
	}
	return LifecycleStats{
		AvgLifespan:  round1(avg),
		ActivePhase:  round1(avg * activePhaseRatio),
		MaturityRate: roundInt(float64(activeDated) / float64(len(assets)) * 100),
	}
}

// daysBetween counts whole calendar days from the date of from to the date
// of to.
func daysBetween(from, to time.Time) int {
	return int(startOfDay(to).Sub(startOfDay(from)).Hours() / 24)
}

//Personal.AI order the ending
