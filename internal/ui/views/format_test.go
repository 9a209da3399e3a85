package views_test

import (
	"testing"
	"time"

	"plank/internal/ui/views"
)

func TestClock(t *testing.T) {
	t.Parallel()
	cases := map[time.Duration]string{
		-time.Second:            "0:00",
		0:                       "0:00",
		1500 * time.Millisecond: "0:01",
		65 * time.Second:        "1:05",
		time.Hour + 2*time.Minute + 3*time.Second: "1:02:03",
	}
	for in, want := range cases {
		if got := views.Clock(in); got != want {
			t.Fatalf("Clock(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestAgo(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{44 * time.Minute, "44 minutes ago"},
		{59*time.Minute + 50*time.Second, "60 minutes ago"},
		{90 * time.Minute, "2 hours ago"},
		{23 * time.Hour, "23 hours ago"},
		{30 * time.Hour, "yesterday"},
		{4 * 24 * time.Hour, "4 days ago"},
		{-2 * time.Hour, "in 2 hours"},
	}
	for _, tc := range cases {
		if got := views.Ago(now.Add(-tc.ago), now); got != tc.want {
			t.Fatalf("Ago(-%s) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}
