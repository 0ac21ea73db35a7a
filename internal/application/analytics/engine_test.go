package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...EngineOption) *Engine {
	return NewEngine(append([]EngineOption{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClassificationTrends_ScenarioFromTwoAssets(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{ID: 1, ClassificationCodes: "G06N", Assignee: "Acme", FilingDate: day(2023, 1, 1), Status: "ACTIVE"},
		{ID: 2, ClassificationCodes: "G06N,H04W", Assignee: "Acme", FilingDate: day(2024, 1, 1), Status: "PENDING"},
	}

	trends := e.ClassificationTrends(corpus, 10)
	assert.Equal(t, []ClassificationTrend{
		{Code: "Artificial Intelligence", Count: 2, Description: "Technology Field"},
		{Code: "5G & Wireless", Count: 1, Description: "Technology Field"},
	}, trends)

	pairs := e.Convergence(corpus, 10)
	assert.Equal(t, []ConvergencePair{
		{Field1: "5G & Wireless", Field2: "Artificial Intelligence", OverlapCount: 1, Strength: 5},
	}, pairs)
}

func TestClassificationTrends_CountsAssetOncePerCategory(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{ID: 1, ClassificationCodes: "G06N, AI, MACHINE LEARNING"},
		{ID: 2, ClassificationCodes: ""},
		{ID: 3, ClassificationCodes: "ZZZ"},
	}

	trends := e.ClassificationTrends(corpus, 0)
	require.Len(t, trends, 2)
	assert.Equal(t, ClassificationTrend{Code: "Artificial Intelligence", Count: 1, Description: trendDescription}, trends[0])
	assert.Equal(t, "Other Technologies", trends[1].Code)
}

func TestClassificationTrends_TieBreakAndTruncate(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{ID: 1, ClassificationCodes: "SOLAR"},
		{ID: 2, ClassificationCodes: "ROBOT"},
		{ID: 3, ClassificationCodes: "CYBER"},
		{ID: 4, ClassificationCodes: "CYBER"},
	}

	trends := e.ClassificationTrends(corpus, 2)
	require.Len(t, trends, 2)
	assert.Equal(t, "Cybersecurity", trends[0].Code)
	assert.Equal(t, "Renewable Energy", trends[1].Code)
}

func TestConvergence_DuplicateCodesDoNotInflateOverlap(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{ID: 1, ClassificationCodes: "G06N,H04W,G06N,5G"},
		{ID: 1, ClassificationCodes: "G06N,H04W"}, // same ID seen twice
		{ID: 2, ClassificationCodes: "H04W"},
	}

	pairs := e.Convergence(corpus, 10)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].OverlapCount)
}

func TestConvergence_StrengthIsCapped(t *testing.T) {
	e := newTestEngine()
	var corpus []*asset.Asset
	for i := 0; i < 25; i++ {
		corpus = append(corpus, &asset.Asset{ID: int64(i + 1), ClassificationCodes: "ROBOT, H01L"})
	}
	for i := 0; i < 3; i++ {
		corpus = append(corpus, &asset.Asset{ID: int64(100 + i), ClassificationCodes: "SOLAR, CYBER, BIO"})
	}

	pairs := e.Convergence(corpus, 10)
	require.Len(t, pairs, 4)
	assert.Equal(t, ConvergencePair{Field1: "Robotics", Field2: "Semiconductors", OverlapCount: 25, Strength: 100}, pairs[0])
	for _, p := range pairs[1:] {
		assert.Equal(t, 3, p.OverlapCount)
		assert.Equal(t, 15, p.Strength)
		assert.Less(t, p.Field1, p.Field2)
	}
	assert.Equal(t, "Biotech & Pharma", pairs[1].Field1)
	assert.Equal(t, "Cybersecurity", pairs[1].Field2)
}

func TestCompetitors_GrowthRules(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{Assignee: "Acme", FilingDate: day(2024, 2, 1), Status: "granted"},
		{Assignee: "Acme", FilingDate: day(2024, 3, 1)},
		{Assignee: "Acme", FilingDate: day(2024, 4, 1)},
		{Assignee: "Beta", FilingDate: day(2020, 1, 1), Status: "ACTIVE"},
		{Assignee: "Gamma", FilingDate: day(2023, 1, 1)},
		{Assignee: "Gamma", FilingDate: day(2023, 2, 1)},
		{Assignee: "Gamma", FilingDate: day(2023, 3, 1)},
		{Assignee: "Gamma", FilingDate: day(2024, 1, 1), Status: " Live "},
		{Assignee: "  "},
		{Assignee: ""},
	}

	got := e.Competitors(corpus, 10)
	assert.Equal(t, []CompetitorProfile{
		{Assignee: "Gamma", PatentCount: 4, ActiveCount: 1, Growth: -66.67},
		{Assignee: "Acme", PatentCount: 3, ActiveCount: 1, Growth: 100},
		{Assignee: "Beta", PatentCount: 1, ActiveCount: 1, Growth: 0},
	}, got)
}

func TestCompetitors_TieBreakByName(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{{Assignee: "Zeta"}, {Assignee: "Alpha"}, {Assignee: "Mid"}}

	got := e.Competitors(corpus, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Assignee)
	assert.Equal(t, "Mid", got[1].Assignee)
}

func TestInnovationTrends_GrowthAgainstPreviousYearInSeries(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{FilingDate: day(2022, 5, 1)},
		{FilingDate: day(2022, 6, 1)},
		{FilingDate: day(2022, 7, 1)},
		{FilingDate: day(2020, 1, 1)},
		{FilingDate: day(2020, 2, 1)},
		{FilingDate: day(2023, 1, 1)},
		{FilingDate: nil},
	}

	got := e.InnovationTrends(corpus, 1)
	assert.Equal(t, []InnovationTrend{
		{Year: 2020, Innovations: 2, GrowthRate: 0},
		{Year: 2022, Innovations: 3, GrowthRate: 50},
		{Year: 2023, Innovations: 1, GrowthRate: -66.67},
	}, got)
}

func TestTopInventors(t *testing.T) {
	e := newTestEngine()
	corpus := []*asset.Asset{
		{Inventor: "Lee"}, {Inventor: "Kim"}, {Inventor: "Lee"}, {Inventor: ""}, {Inventor: "Ahn"},
	}

	got := e.TopInventors(corpus, 2)
	assert.Equal(t, []InventorRank{{Name: "Lee", PatentCount: 2}, {Name: "Ahn", PatentCount: 1}}, got)
}

func TestDefaultTopN(t *testing.T) {
	e := newTestEngine()
	var corpus []*asset.Asset
	for i := 0; i < 15; i++ {
		corpus = append(corpus, &asset.Asset{Inventor: fmt.Sprintf("inv-%02d", i)})
	}
	assert.Len(t, e.TopInventors(corpus, 0), DefaultTopN)
	assert.Len(t, e.TopInventors(corpus, -3), DefaultTopN)
	assert.Len(t, e.TopInventors(corpus, 12), 12)
}

func TestLifecycle(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, LifecycleStats{}, e.Lifecycle(nil))
	assert.Equal(t, LifecycleStats{}, e.Lifecycle([]*asset.Asset{}))

	corpus := []*asset.Asset{
		{FilingDate: day(2014, 6, 15), Status: "ACTIVE"},  // 3653 days
		{FilingDate: day(2022, 6, 15), Status: "PENDING"}, // 731 days
		{Status: "ACTIVE"},                                // undated, excluded from maturity
	}
	got := e.Lifecycle(corpus)
	assert.Equal(t, 6.0, got.AvgLifespan)
	assert.Equal(t, 4.8, got.ActivePhase)
	assert.Equal(t, 33, got.MaturityRate)
}

func TestLifecycle_UndatedCorpus(t *testing.T) {
	e := newTestEngine()
	got := e.Lifecycle([]*asset.Asset{{Status: "ACTIVE"}})
	assert.Equal(t, LifecycleStats{}, got)
}

func TestEngine_DoesNotMutateAssets(t *testing.T) {
	e := newTestEngine()
	a := &asset.Asset{ID: 9, ClassificationCodes: "g06n, h04w", Assignee: "Acme", Status: "active", FilingDate: day(2024, 1, 1)}
	before := *a

	corpus := []*asset.Asset{a}
	e.ClassificationTrends(corpus, 5)
	e.Convergence(corpus, 5)
	e.Competitors(corpus, 5)
	e.InnovationTrends(corpus, 5)
	e.TopInventors(corpus, 5)
	e.Lifecycle(corpus)
	e.Filter(corpus, Filter{Field: "ai", DateRange: "year"})

	assert.Equal(t, before, *a)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 66.67, round2(200.0/3))
	assert.Equal(t, 4.8, round1(4.84))
	assert.Equal(t, 3, roundInt(2.5))
	assert.Equal(t, 0.0, percentChange(5, 0))
	assert.Equal(t, 33.33, percentChange(4, 3))
}

//Personal.AI order the ending
