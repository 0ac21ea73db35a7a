package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Filter narrows the corpus. Empty fields and "all" match everything.
type Filter struct {
	Field        string // technology field, e.g. "ai" or "Cloud Computing"
	DateRange    string // week | month | quarter | year | all
	Type         string
	Jurisdiction string
}

func (f Filter) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("field", f.Field)
	set("dateRange", f.DateRange)
	set("type", f.Type)
	set("jurisdiction", f.Jurisdiction)
	return v
}

// LandscapeQuery selects a landscape aggregate. TopN 0 uses the server default.
type LandscapeQuery struct {
	Filter
	TopN int
}

func (q LandscapeQuery) values() url.Values {
	v := q.Filter.values()
	if q.TopN != 0 {
		v.Set("topN", strconv.Itoa(q.TopN))
	}
	return v
}

type ClassificationTrend struct {
	Code        string `json:"code"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}

type ConvergencePair struct {
	Field1       string `json:"field1"`
	Field2       string `json:"field2"`
	OverlapCount int    `json:"overlapCount"`
	Strength     int    `json:"strength"`
}

type CompetitorProfile struct {
	Assignee    string  `json:"assignee"`
	PatentCount int     `json:"patentCount"`
	ActiveCount int     `json:"activeCount"`
	Growth      float64 `json:"growth"`
}

type InnovationTrend struct {
	Year        int     `json:"year"`
	Innovations int     `json:"innovations"`
	GrowthRate  float64 `json:"growthRate"`
}

type InventorRank struct {
	Name        string `json:"name"`
	PatentCount int    `json:"patentCount"`
}

type LifecycleStats struct {
	AvgLifespan  float64 `json:"avgLifespan"`
	ActivePhase  float64 `json:"activePhase"`
	MaturityRate int     `json:"maturityRate"`
}

// LandscapeOverview bundles every landscape aggregate of one snapshot.
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

// ---------------------------------------------------------------------------
// LandscapeClient
// ---------------------------------------------------------------------------

// LandscapeClient calls /api/v1/analytics/landscape.
type LandscapeClient struct {
	client *Client
}

const landscapePath = "/api/v1/analytics/landscape/"

func getData[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	var env envelope[T]
	err := c.get(ctx, path, q, &env)
	return env.Data, err
}

func (l *LandscapeClient) Classifications(ctx context.Context, q LandscapeQuery) ([]ClassificationTrend, error) {
	return getData[[]ClassificationTrend](ctx, l.client, landscapePath+"classifications", q.values())
}

func (l *LandscapeClient) Convergence(ctx context.Context, q LandscapeQuery) ([]ConvergencePair, error) {
	return getData[[]ConvergencePair](ctx, l.client, landscapePath+"convergence", q.values())
}

func (l *LandscapeClient) Competitors(ctx context.Context, q LandscapeQuery) ([]CompetitorProfile, error) {
	return getData[[]CompetitorProfile](ctx, l.client, landscapePath+"competitors", q.values())
}

func (l *LandscapeClient) InnovationTrends(ctx context.Context, q LandscapeQuery) ([]InnovationTrend, error) {
	return getData[[]InnovationTrend](ctx, l.client, landscapePath+"innovation-trends", q.values())
}

func (l *LandscapeClient) TopInventors(ctx context.Context, q LandscapeQuery) ([]InventorRank, error) {
	return getData[[]InventorRank](ctx, l.client, landscapePath+"top-inventors", q.values())
}

func (l *LandscapeClient) Lifecycle(ctx context.Context, q LandscapeQuery) (*LifecycleStats, error) {
	return getData[*LifecycleStats](ctx, l.client, landscapePath+"lifecycle", q.values())
}

func (l *LandscapeClient) Overview(ctx context.Context, q LandscapeQuery) (*LandscapeOverview, error) {
	return getData[*LandscapeOverview](ctx, l.client, landscapePath+"overview", q.values())
}

//Personal.AI order the ending
