package visualization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salin-system/internal/scope"
)

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(2025, 2)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), end)

	// December rolls over into the next year.
	start, end = MonthWindow(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthWindowBoundaries(t *testing.T) {
	start, end := MonthWindow(2025, 6)

	lastOfMay := time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)
	lastOfJune := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	firstOfJuly := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, lastOfMay.Before(start))
	assert.True(t, lastOfJune.After(start) && lastOfJune.Before(end))
	assert.False(t, firstOfJuly.Before(end))
}

func TestCacheKeyPerScopeAndMonth(t *testing.T) {
	svc := &Service{}

	private := svc.cacheKey(scope.Private("u1"), 2025, 3)
	team := svc.cacheKey(scope.Team("u1", "t1"), 2025, 3)
	otherMonth := svc.cacheKey(scope.Private("u1"), 2025, 4)

	assert.Equal(t, "score_summary:user:u1:2025-03", private)
	assert.Equal(t, "score_summary:team:t1:2025-03", team)
	assert.NotEqual(t, private, otherMonth)
}
