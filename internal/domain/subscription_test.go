package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionStatusAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active subscription", func(t *testing.T) {
		sub := &Subscription{ExpiresAt: now.Add(90 * time.Second)}

		status := sub.StatusAt(now)

		assert.True(t, status.IsActive)
		assert.Equal(t, int64(90), status.RemainingSeconds)
		require.NotNil(t, status.ExpiresAt)
		assert.Equal(t, sub.ExpiresAt, *status.ExpiresAt)
	})

	t.Run("expired subscription", func(t *testing.T) {
		sub := &Subscription{ExpiresAt: now.Add(-time.Hour)}

		status := sub.StatusAt(now)

		assert.False(t, status.IsActive)
		assert.Zero(t, status.RemainingSeconds)
		require.NotNil(t, status.ExpiresAt)
	})

	t.Run("expiry exactly now is expired", func(t *testing.T) {
		sub := &Subscription{ExpiresAt: now}

		status := sub.StatusAt(now)

		assert.False(t, status.IsActive)
		assert.Zero(t, status.RemainingSeconds)
	})
}

func TestNormalizePlanTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want StringList
	}{
		{
			name: "allowed tags pass through",
			in:   []string{"most popular", "loved", "best value"},
			want: StringList{"most popular", "loved", "best value"},
		},
		{
			name: "case insensitive with canonical form",
			in:   []string{"Most Popular", "LOVED"},
			want: StringList{"most popular", "loved"},
		},
		{
			name: "unknown tags silently dropped",
			in:   []string{"premium", "most popular", "new!"},
			want: StringList{"most popular"},
		},
		{
			name: "duplicates removed",
			in:   []string{"loved", "Loved", " loved "},
			want: StringList{"loved"},
		},
		{
			name: "empty input",
			in:   nil,
			want: StringList{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlanTags(tt.in))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{1, "1 Second"},
		{45, "45 Seconds"},
		{60, "1 Minute"},
		{1800, "30 Minutes"},
		{3600, "1 Hour"},
		{7200, "2 Hours"},
		{86400, "1 Day"},
		{2592000, "30 Days"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%d", tt.seconds)
	}
}
