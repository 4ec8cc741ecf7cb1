package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	start, end, err := parsePeriod("2026-01-01", "2026-01-31")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	// inclusive end date widens to end-of-day
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestParsePeriodSameDay(t *testing.T) {
	// a single-day period is valid: start 00:00:00, end 23:59:59
	start, end, err := parsePeriod("2026-01-01", "2026-01-01")
	require.NoError(t, err)
	assert.True(t, start.Before(end))
}

func TestParsePeriodRejects(t *testing.T) {
	_, _, err := parsePeriod("01/01/2026", "2026-01-31")
	assert.ErrorIs(t, err, errBadPeriod)

	_, _, err = parsePeriod("2026-01-01", "31-01-2026")
	assert.ErrorIs(t, err, errBadPeriod)

	// start after end
	_, _, err = parsePeriod("2026-02-01", "2026-01-01")
	assert.ErrorIs(t, err, errBadPeriod)
}
