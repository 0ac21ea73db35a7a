package asset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsset_IsActive(t *testing.T) {
	for _, s := range []string{"ACTIVE", "granted", " Registered ", "LIVE", "published"} {
		assert.True(t, (&Asset{Status: s}).IsActive(), s)
	}
	for _, s := range []string{"", "PENDING", "EXPIRED", "LAPSED"} {
		assert.False(t, (&Asset{Status: s}).IsActive(), s)
	}
	var nilAsset *Asset
	assert.False(t, nilAsset.IsActive())
}

func TestAsset_IsPending(t *testing.T) {
	assert.True(t, (&Asset{Status: "pending"}).IsPending())
	assert.False(t, (&Asset{Status: "GRANTED"}).IsPending())
}

func TestAsset_ExpiryDate(t *testing.T) {
	filed := time.Date(2006, 3, 15, 0, 0, 0, 0, time.UTC)
	a := &Asset{FilingDate: &filed}

	exp := a.ExpiryDate(20)
	require.NotNil(t, exp)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *exp)

	assert.Nil(t, (&Asset{}).ExpiryDate(20))
}

func TestAsset_ExpiryDateFromLeapDay(t *testing.T) {
	filed := time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)
	a := &Asset{FilingDate: &filed}
	assert.Equal(t, time.Date(2005, 2, 28, 0, 0, 0, 0, time.UTC), *a.ExpiryDate(1))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *a.ExpiryDate(20))
}

func TestAddMonths(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }
	cases := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"mid month", d(2025, 3, 15), -1, d(2025, 2, 15)},
		{"march 31 back one month", d(2025, 3, 31), -1, d(2025, 2, 28)},
		{"march 31 back one month in leap year", d(2024, 3, 31), -1, d(2024, 2, 29)},
		{"may 31 back a quarter", d(2025, 5, 31), -3, d(2025, 2, 28)},
		{"leap day back a year", d(2024, 2, 29), -12, d(2023, 2, 28)},
		{"august 31 forward six months", d(2025, 8, 31), 6, d(2026, 2, 28)},
		{"january 31 forward one month", d(2025, 1, 31), 1, d(2025, 2, 28)},
		{"across year end", d(2025, 12, 31), 2, d(2026, 2, 28)},
		{"zero", d(2025, 7, 31), 0, d(2025, 7, 31)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.from, tc.n))
		})
	}

	kst := time.FixedZone("KST", 9*3600)
	got := AddMonths(time.Date(2025, 3, 31, 23, 30, 5, 7, kst), -1)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 30, 5, 7, kst), got)
}

func TestAsset_Categories(t *testing.T) {
	a := &Asset{ClassificationCodes: "G06N, machine vision"}
	assert.Equal(t, []Category{CategoryAI}, a.Categories())
}

//Personal.AI order the ending
