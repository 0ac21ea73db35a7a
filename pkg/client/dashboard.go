package client

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type DashboardSummary struct {
	TotalFilings        int `json:"totalFilings"`
	ActivePatents       int `json:"activePatents"`
	PendingApplications int `json:"pendingApplications"`
	ExpiringSoon        int `json:"expiringSoon"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type MonthlyFilings struct {
	Month      string `json:"month"`
	Patents    int    `json:"patents"`
	Trademarks int    `json:"trademarks"`
}

type JurisdictionCount struct {
	Jurisdiction string `json:"jurisdiction"`
	Patents      int    `json:"patents"`
}

type QuarterStatus struct {
	Quarter string `json:"quarter"`
	Filed   int    `json:"filed"`
	Granted int    `json:"granted"`
}

type ActivityItem struct {
	ID     int64      `json:"id"`
	Title  string     `json:"title"`
	Type   string     `json:"type"`
	Date   *time.Time `json:"date"`
	Action string     `json:"action"`
}

type DeadlineItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Deadline string `json:"deadline"`
	Type     string `json:"type"`
}

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

// AssetPage is the category search reply. It is not wrapped in "data".
type AssetPage struct {
	Data  []AssetSummary `json:"data"`
	Total int            `json:"total"`
}

// ---------------------------------------------------------------------------
// DashboardClient
// ---------------------------------------------------------------------------

// DashboardClient calls the dashboard endpoints. Field in Filter is ignored
// by the server here.
type DashboardClient struct {
	client *Client
}

func (d *DashboardClient) Summary(ctx context.Context, f Filter) (*DashboardSummary, error) {
	return getData[*DashboardSummary](ctx, d.client, "/api/v1/analytics/summary", f.values())
}

func (d *DashboardClient) StatusDistribution(ctx context.Context, f Filter) ([]NameValue, error) {
	return getData[[]NameValue](ctx, d.client, "/api/v1/analytics/status-distribution", f.values())
}

func (d *DashboardClient) FilingsTrend(ctx context.Context, f Filter) ([]MonthlyFilings, error) {
	return getData[[]MonthlyFilings](ctx, d.client, "/api/v1/analytics/filings-trend", f.values())
}

func (d *DashboardClient) JurisdictionBreakdown(ctx context.Context, f Filter) ([]JurisdictionCount, error) {
	return getData[[]JurisdictionCount](ctx, d.client, "/api/v1/analytics/jurisdiction-breakdown", f.values())
}

func (d *DashboardClient) StatusTimeline(ctx context.Context, f Filter) ([]QuarterStatus, error) {
	return getData[[]QuarterStatus](ctx, d.client, "/api/v1/analytics/status-timeline", f.values())
}

func (d *DashboardClient) RecentActivity(ctx context.Context) ([]ActivityItem, error) {
	return getData[[]ActivityItem](ctx, d.client, "/api/v1/dashboard/recent-activity", nil)
}

func (d *DashboardClient) UpcomingDeadlines(ctx context.Context) ([]DeadlineItem, error) {
	return getData[[]DeadlineItem](ctx, d.client, "/api/v1/dashboard/upcoming-deadlines", nil)
}

// Assets searches by category: ACTIVE, PENDING, EXPIRING or free text.
func (d *DashboardClient) Assets(ctx context.Context, category string, f Filter) (*AssetPage, error) {
	q := f.values()
	q.Del("field")
	if category != "" {
		q.Set("category", category)
	}
	var page AssetPage
	if err := d.client.get(ctx, "/api/v1/dashboard/assets", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

//Personal.AI order the ending
