package analytics

import (
	"math"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Landscape records
// ─────────────────────────────────────────────────────────────────────────────

// ClassificationTrend is the number of assets carrying one canonical category.
type ClassificationTrend struct {
	Code        string `json:"code"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}

// ConvergencePair counts the distinct assets on which two categories co-occur.
// Field1 sorts before Field2.
type ConvergencePair struct {
	Field1       string `json:"field1"`
	Field2       string `json:"field2"`
	OverlapCount int    `json:"overlapCount"`
	Strength     int    `json:"strength"`
}

// CompetitorProfile summarises one assignee.
type CompetitorProfile struct {
	Assignee    string  `json:"assignee"`
	PatentCount int     `json:"patentCount"`
	ActiveCount int     `json:"activeCount"`
	Growth      float64 `json:"growth"`
}

// InnovationTrend is the filing count of one year with its growth over the
// previous year in the series.
type InnovationTrend struct {
	Year        int     `json:"year"`
	Innovations int     `json:"innovations"`
	GrowthRate  float64 `json:"growthRate"`
}

// InventorRank is an inventor with the number of assets naming them.
type InventorRank struct {
	Name        string `json:"name"`
	PatentCount int    `json:"patentCount"`
}

// LifecycleStats describes the age profile of a corpus.
type LifecycleStats struct {
	AvgLifespan  float64 `json:"avgLifespan"`
	ActivePhase  float64 `json:"activePhase"`
	MaturityRate int     `json:"maturityRate"`
}

// LandscapeOverview bundles every landscape aggregate of one corpus snapshot.
type LandscapeOverview struct {
	Classifications  []ClassificationTrend `json:"classifications"`
	Convergence      []ConvergencePair     `json:"convergence"`
	Competitors      []CompetitorProfile   `json:"competitors"`
	InnovationTrends []InnovationTrend     `json:"innovationTrends"`
	TopInventors     []InventorRank        `json:"topInventors"`
	Lifecycle        LifecycleStats        `json:"lifecycle"`
	CorpusSize       int                   `json:"corpusSize"`
	GeneratedAt      time.Time             `json:"generatedAt"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Dashboard records
// ─────────────────────────────────────────────────────────────────────────────

// DashboardSummary holds the headline counters of the dashboard.
type DashboardSummary struct {
	TotalFilings        int `json:"totalFilings"`
	ActivePatents       int `json:"activePatents"`
	PendingApplications int `json:"pendingApplications"`
	ExpiringSoon        int `json:"expiringSoon"`
}

// NameValue is one slice of a distribution chart.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MonthlyFilings counts patents and trademarks filed in one month.
type MonthlyFilings struct {
	Month      string `json:"month"`
	Patents    int    `json:"patents"`
	Trademarks int    `json:"trademarks"`
}

// JurisdictionCount is the number of assets filed in one jurisdiction.
type JurisdictionCount struct {
	Jurisdiction string `json:"jurisdiction"`
	Patents      int    `json:"patents"`
}

// QuarterStatus counts pending and granted assets by filing quarter.
type QuarterStatus struct {
	Quarter string `json:"quarter"`
	Filed   int    `json:"filed"`
	Granted int    `json:"granted"`
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	ID     int64      `json:"id"`
	Title  string     `json:"title"`
	Type   string     `json:"type"`
	Date   *time.Time `json:"date"`
	Action string     `json:"action"`
}

// DeadlineItem is an upcoming expiry.
type DeadlineItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Deadline string `json:"deadline"`
	Type     string `json:"type"`
}

// AssetSummary is the list representation of an asset.
type AssetSummary struct {
	ID           int64  `json:"id"`
	AssetNumber  string `json:"assetNumber"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Assignee     string `json:"assignee"`
	Inventor     string `json:"inventor"`
	FilingDate   string `json:"filingDate,omitempty"`
	Status       string `json:"status"`
	Jurisdiction string `json:"jurisdiction"`
	Details      string `json:"details"`
}

// AssetPage is the result of a category search.
type AssetPage struct {
	Data  []AssetSummary `json:"data"`
	Total int            `json:"total"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Rounding
// ─────────────────────────────────────────────────────────────────────────────

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds half away from zero to one decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// roundInt rounds to the nearest integer.
func roundInt(v float64) int {
	return int(math.Round(v))
}

// percentChange returns (cur-prev)/prev*100 rounded to two decimals; a zero
// baseline yields zero.
func percentChange(cur, prev int) float64 {
	if prev == 0 {
		return 0
	}
	return round2(float64(cur-prev) / float64(prev) * 100)
}

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

//Personal.AI order the ending
