package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod(t *testing.T) {
	t.Run("no filters means no range", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/manager/reports/financial", nil)
		start, end, err := resolvePeriod(r)
		require.NoError(t, err)
		assert.Nil(t, start)
		assert.Nil(t, end)
	})

	t.Run("explicit dates win and end extends to end of day", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x?startDate=2026-01-01&endDate=2026-01-31&period=daily", nil)
		start, end, err := resolvePeriod(r)
		require.NoError(t, err)
		require.NotNil(t, start)
		require.NotNil(t, end)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *start)
		assert.Equal(t, 23, end.Hour())
		assert.Equal(t, 31, end.Day())
	})

	t.Run("start only", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x?startDate=2026-01-01", nil)
		start, end, err := resolvePeriod(r)
		require.NoError(t, err)
		assert.NotNil(t, start)
		assert.Nil(t, end)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x?startDate=2026-02-01&endDate=2026-01-01", nil)
		_, _, err := resolvePeriod(r)
		assert.Error(t, err)
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x?startDate=01-01-2026", nil)
		_, _, err := resolvePeriod(r)
		assert.Error(t, err)
	})

	t.Run("canned periods produce a closed range ending now", func(t *testing.T) {
		for _, period := range []string{"daily", "weekly", "monthly", "yearly"} {
			r := httptest.NewRequest("GET", "/x?period="+period, nil)
			start, end, err := resolvePeriod(r)
			require.NoError(t, err, period)
			require.NotNil(t, start, period)
			require.NotNil(t, end, period)
			assert.True(t, start.Before(*end), period)
			assert.WithinDuration(t, time.Now(), *end, time.Minute, period)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x?period=quarterly", nil)
		_, _, err := resolvePeriod(r)
		assert.Error(t, err)
	})
}
