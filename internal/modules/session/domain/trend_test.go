package domain_test

import (
	"testing"
	"time"

	"plank/internal/modules/session/domain"
)

func TestBuildTrendBucketsByLocalDay(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
	mk := func(day, hour int, plank, hold time.Duration) domain.Record {
		start := time.Date(2026, 3, day, hour, 0, 0, 0, loc)
		return domain.Record{StartedAt: start, EndedAt: start.Add(plank), Metrics: domain.Metrics{TotalPlank: plank, LongestHold: hold}}
	}
	records := []domain.Record{
		mk(7, 8, 60*time.Second, 40*time.Second),
		mk(7, 0, 30*time.Second, 20*time.Second),
		mk(5, 23, 90*time.Second, 60*time.Second),
	}
	stale := time.Date(2026, 2, 28, 23, 0, 0, 0, loc)
	records = append(records, domain.Record{StartedAt: stale, Metrics: domain.Metrics{TotalPlank: 500 * time.Second, LongestHold: 500 * time.Second}})
	trend := domain.BuildTrend(records, now, 7, loc)
	if len(trend.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(trend.Days))
	}
	if !trend.Days[0].Day.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("window must start 6 days before today, got %s", trend.Days[0].Day)
	}
	today := trend.Days[6]
	if today.Plank != 90*time.Second || today.Sessions != 2 {
		t.Fatalf("today: %+v", today)
	}
	if trend.Days[4].Plank != 90*time.Second {
		t.Fatalf("mar 5: %+v", trend.Days[4])
	}
	if trend.Days[0].Plank != 0 {
		t.Fatalf("records before the window must be ignored, got %+v", trend.Days[0])
	}
	if trend.Total != 180*time.Second || trend.ActiveDays != 2 || trend.MeanPerActiveDay != 90*time.Second {
		t.Fatalf("totals: %+v", trend)
	}
	if trend.LongestHoldMean != 40*time.Second {
		t.Fatalf("hold mean: %s", trend.LongestHoldMean)
	}
	if d := trend.LongestHoldStdDev - 20*time.Second; d > time.Millisecond || d < -time.Millisecond {
		t.Fatalf("hold stddev: %s", trend.LongestHoldStdDev)
	}
}

func TestBuildTrendEmpty(t *testing.T) {
	t.Parallel()
	trend := domain.BuildTrend(nil, time.Now(), 0, nil)
	if len(trend.Days) != 1 || trend.Total != 0 || trend.LongestHoldStdDev != 0 {
		t.Fatalf("unexpected empty trend: %+v", trend)
	}
}
