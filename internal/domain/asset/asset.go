package asset

import (
	"strings"
	"time"
)

// Asset types as recorded by upstream sync sources.
const (
	TypePatent    = "PATENT"
	TypeTrademark = "TRADEMARK"
)

// StatusPending marks an application that has been filed but not granted.
const StatusPending = "PENDING"

var activeStatuses = map[string]struct{}{
	"ACTIVE":     {},
	"GRANTED":    {},
	"REGISTERED": {},
	"LIVE":       {},
	"PUBLISHED":  {},
}

// Asset is one patent or trademark record of the corpus.
// Analytics code treats it as read-only.
type Asset struct {
	ID                  int64      `json:"id"`
	Type                string     `json:"type"`
	AssetNumber         string     `json:"assetNumber"`
	Title               string     `json:"title"`
	Assignee            string     `json:"assignee"`
	Inventor            string     `json:"inventor"`
	Jurisdiction        string     `json:"jurisdiction"`
	FilingDate          *time.Time `json:"filingDate,omitempty"`
	PublicationDate     *time.Time `json:"publicationDate,omitempty"`
	Status              string     `json:"status"`
	ClassificationCodes string     `json:"assetClass"`
	Details             string     `json:"details,omitempty"`
	APISource           string     `json:"apiSource,omitempty"`
	LastUpdated         *time.Time `json:"lastUpdated,omitempty"`
	SyncedAt            *time.Time `json:"syncedAt,omitempty"`
}

// IsActive reports whether the status denotes a live right.
func (a *Asset) IsActive() bool {
	if a == nil {
		return false
	}
	_, ok := activeStatuses[strings.ToUpper(strings.TrimSpace(a.Status))]
	return ok
}

// IsPending reports whether the asset is an application still under examination.
func (a *Asset) IsPending() bool {
	return a != nil && strings.EqualFold(strings.TrimSpace(a.Status), StatusPending)
}

// HasFilingDate reports whether a filing date is present.
func (a *Asset) HasFilingDate() bool {
	return a != nil && a.FilingDate != nil && !a.FilingDate.IsZero()
}

// Categories returns the distinct canonical categories of the asset.
func (a *Asset) Categories() []Category {
	return Categories(a.ClassificationCodes)
}

// ExpiryDate returns filing date plus the given term, or nil when undated.
func (a *Asset) ExpiryDate(termYears int) *time.Time {
	if !a.HasFilingDate() {
		return nil
	}
	t := AddMonths(*a.FilingDate, termYears*12)
	return &t
}

// AddMonths shifts t by n calendar months, clamping the day to the last day
// of the target month: Mar 31 minus one month is Feb 28 (29 in leap years).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

//Personal.AI order the ending
