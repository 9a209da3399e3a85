package domain

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const dayKey = "2006-01-02"

type DayTotal struct {
	Day      time.Time
	Plank    time.Duration
	Sessions int
}

// Trend summarizes plank time per calendar day over a trailing window ending today.
type Trend struct {
	Days              []DayTotal
	Total             time.Duration
	ActiveDays        int
	MeanPerActiveDay  time.Duration
	LongestHoldMean   time.Duration
	LongestHoldStdDev time.Duration
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// BuildTrend buckets records by the local day they started on.
func BuildTrend(records []Record, now time.Time, days int, loc *time.Location) Trend {
	if days < 1 {
		days = 1
	}
	if loc == nil {
		loc = time.Local
	}
	today := startOfDay(now, loc)
	first := today.AddDate(0, 0, -(days - 1))

	trend := Trend{Days: make([]DayTotal, days)}
	index := map[string]int{}
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		trend.Days[i] = DayTotal{Day: day}
		index[day.Format(dayKey)] = i
	}

	var holds []float64
	for _, r := range records {
		i, ok := index[startOfDay(r.StartedAt, loc).Format(dayKey)]
		if !ok {
			continue
		}
		trend.Days[i].Plank += r.TotalPlank
		trend.Days[i].Sessions++
		trend.Total += r.TotalPlank
		holds = append(holds, float64(r.LongestHold))
	}

	var perDay []float64
	for _, d := range trend.Days {
		if d.Sessions > 0 {
			perDay = append(perDay, float64(d.Plank))
		}
	}
	trend.ActiveDays = len(perDay)
	if len(perDay) > 0 {
		trend.MeanPerActiveDay = time.Duration(stat.Mean(perDay, nil))
	}
	if len(holds) > 0 {
		trend.LongestHoldMean = time.Duration(stat.Mean(holds, nil))
	}
	if len(holds) > 1 {
		if sd := stat.StdDev(holds, nil); !math.IsNaN(sd) {
			trend.LongestHoldStdDev = time.Duration(sd)
		}
	}
	return trend
}
