package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
)

func TestSummary(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{ID: 1, Status: "ACTIVE", FilingDate: day(2004, 9, 1)},
		{ID: 2, Status: "PENDING", FilingDate: day(2004, 6, 15)},
		{ID: 3, Status: "granted", FilingDate: day(2005, 1, 1)},
		{ID: 4},
	}

	assert.Equal(t, DashboardSummary{
		TotalFilings:        4,
		ActivePatents:       2,
		PendingApplications: 1,
		ExpiringSoon:        1,
	}, e.Summary(corpus))
	assert.Equal(t, DashboardSummary{}, e.Summary(nil))
}

func TestExpiringSoon_Boundaries(t *testing.T) {
	e := newTestEngine()
	now := fixedNow

	cases := []struct {
		name  string
		filed *time.Time
		want  bool
	}{
		{"expires today", day(2004, 6, 15), false},
		{"expires tomorrow", day(2004, 6, 16), true},
		{"last day inside horizon", day(2004, 12, 14), true},
		{"horizon end", day(2004, 12, 15), false},
		{"already expired", day(2003, 1, 1), false},
		{"undated", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.expiringSoon(&asset.Asset{FilingDate: tc.filed}, now))
		})
	}
}

func TestExpiringSoon_CustomTermAndHorizon(t *testing.T) {
	e := newTestEngine(WithPatentTerm(10), WithDeadlineHorizon(1))
	assert.True(t, e.expiringSoon(&asset.Asset{FilingDate: day(2014, 7, 1)}, fixedNow))
	assert.False(t, e.expiringSoon(&asset.Asset{FilingDate: day(2014, 8, 1)}, fixedNow))
}

func TestExpiringSoon_HorizonEndsOnClampedMonthEnd(t *testing.T) {
	now := time.Date(2025, 8, 31, 9, 0, 0, 0, time.UTC)
	e := NewEngine(WithClock(func() time.Time { return now }))

	// the horizon ends on 2026-02-28, so a 2026-03-01 expiry is outside it
	outside := &asset.Asset{Status: "ACTIVE", FilingDate: day(2006, 3, 1)}
	inside := &asset.Asset{Status: "ACTIVE", FilingDate: day(2006, 2, 27)}
	assert.False(t, e.expiringSoon(outside, now))
	assert.True(t, e.expiringSoon(inside, now))
	assert.Equal(t, 1, e.Summary([]*asset.Asset{outside, inside}).ExpiringSoon)

	deadlines := e.UpcomingDeadlines([]*asset.Asset{outside, inside})
	require.Len(t, deadlines, 1)
	assert.Equal(t, "2026-02-27", deadlines[0].Deadline)
}

func TestStatusDistribution(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{{Status: "granted"}, {Status: "GRANTED"}, {Status: " pending"}, {Status: ""}}

	assert.Equal(t, []NameValue{
		{Name: "GRANTED", Value: 2},
		{Name: "PENDING", Value: 1},
		{Name: "UNKNOWN", Value: 1},
	}, e.StatusDistribution(corpus))
}

func TestFilingsTrend(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{Type: "PATENT", FilingDate: day(2024, 1, 5)},
		{Type: "", FilingDate: day(2023, 12, 20)},
		{Type: "trademark", FilingDate: day(2023, 12, 1)},
		{Type: "DESIGN", FilingDate: day(2024, 1, 10)},
		{Type: "PATENT"},
	}

	assert.Equal(t, []MonthlyFilings{
		{Month: "Dec 2023", Patents: 1, Trademarks: 1},
		{Month: "Jan 2024", Patents: 1, Trademarks: 0},
	}, e.FilingsTrend(corpus))
}

func TestJurisdictionBreakdown(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{{Jurisdiction: "US"}, {Jurisdiction: "US"}, {Jurisdiction: ""}, {Jurisdiction: "EP"}}

	assert.Equal(t, []JurisdictionCount{
		{Jurisdiction: "US", Patents: 2},
		{Jurisdiction: "EP", Patents: 1},
		{Jurisdiction: "Global", Patents: 1},
	}, e.JurisdictionBreakdown(corpus))
}

func TestStatusTimeline_OrderedByLabel(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{Status: "ACTIVE", FilingDate: day(2023, 5, 1)},
		{Status: "PENDING", FilingDate: day(2024, 2, 1)},
		{Status: "ACTIVE", FilingDate: day(2024, 3, 1)},
		{Status: "abandoned", FilingDate: day(2024, 4, 1)},
		{Status: "ACTIVE"},
	}

	assert.Equal(t, []QuarterStatus{
		{Quarter: "Q1 2024", Filed: 1, Granted: 1},
		{Quarter: "Q2 2023", Filed: 0, Granted: 1},
		{Quarter: "Q2 2024", Filed: 0, Granted: 0},
	}, e.StatusTimeline(corpus))
}

func TestRecentActivity(t *testing.T) {
	corpus := []*asset.Asset{
		{ID: 1, Title: "undated"},
		{ID: 2, Title: "older", Type: "PATENT", LastUpdated: day(2024, 6, 1)},
		{ID: 3, Title: "newest", Type: "TRADEMARK", LastUpdated: day(2024, 6, 10)},
	}

	all := newTestEngine().RecentActivity(corpus)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID)
	assert.Equal(t, "Updated", all[0].Action)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, int64(1), all[2].ID)
	assert.Nil(t, all[2].Date)

	capped := newTestEngine(WithListLimits(2, 0)).RecentActivity(corpus)
	require.Len(t, capped, 2)
	assert.Equal(t, int64(3), capped[0].ID)
	assert.Equal(t, []int64{1, 2, 3}, ids(corpus))
}

func TestUpcomingDeadlines(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{ID: 2, Title: "later", FilingDate: day(2004, 10, 1)},
		{ID: 1, Title: "sooner", FilingDate: day(2004, 8, 1)},
		{ID: 3, Title: "far", FilingDate: day(2010, 1, 1)},
	}

	assert.Equal(t, []DeadlineItem{
		{ID: 1, Title: "sooner", Deadline: "2024-08-01", Type: "Patent Expiry"},
		{ID: 2, Title: "later", Deadline: "2024-10-01", Type: "Patent Expiry"},
	}, e.UpcomingDeadlines(corpus))
}

func TestAssetsByCategory(t *testing.T) {
	corpus := []*asset.Asset{
		{ID: 1, Title: "Robot gripper", Status: "ACTIVE", FilingDate: day(2020, 3, 1)},
		{ID: 2, Title: "Battery", Status: "PENDING", Assignee: "Robotix Inc"},
		{ID: 3, Title: "Antenna", Status: "LIVE", ClassificationCodes: "H04W"},
		{ID: 4, Title: "Old", Status: "EXPIRED", FilingDate: day(2004, 9, 1)},
	}
	e := newTestEngine()

	active := e.AssetsByCategory(corpus, "Category: active")
	assert.Equal(t, 2, active.Total)
	assert.Equal(t, "2020-03-01", active.Data[0].FilingDate)

	pending := e.AssetsByCategory(corpus, "PENDING")
	require.Len(t, pending.Data, 1)
	assert.Equal(t, int64(2), pending.Data[0].ID)

	expiring := e.AssetsByCategory(corpus, "expiring")
	require.Len(t, expiring.Data, 1)
	assert.Equal(t, int64(4), expiring.Data[0].ID)

	text := e.AssetsByCategory(corpus, "robot")
	assert.Equal(t, 2, text.Total)

	wireless := e.AssetsByCategory(corpus, "wireless")
	require.Len(t, wireless.Data, 1)
	assert.Equal(t, int64(3), wireless.Data[0].ID)

	assert.Equal(t, 4, e.AssetsByCategory(corpus, "").Total)
	assert.Equal(t, 0, e.AssetsByCategory(corpus, "nothing-matches").Total)
	assert.NotNil(t, e.AssetsByCategory(corpus, "nothing-matches").Data)

	capped := newTestEngine(WithListLimits(0, 1)).AssetsByCategory(corpus, "")
	assert.Equal(t, 1, capped.Total)
}

//Personal.AI order the ending
