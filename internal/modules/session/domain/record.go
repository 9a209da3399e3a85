package domain

import (
	"sort"
	"time"
)

type Metrics struct {
	TotalPlank  time.Duration
	TotalBreak  time.Duration
	LongestHold time.Duration
}

// Summarize totals closed segments by state. Open segments contribute nothing.
func Summarize(segments []Segment) Metrics {
	m := Metrics{}
	for _, seg := range segments {
		if seg.Open() {
			continue
		}
		switch seg.State {
		case StatePlank:
			m.TotalPlank += seg.Duration
			if seg.Duration > m.LongestHold {
				m.LongestHold = seg.Duration
			}
		default:
			m.TotalBreak += seg.Duration
		}
	}
	return m
}

// Record is the immutable summary of one finished session.
type Record struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Segments  []Segment
	Metrics
}

// NewRecord finalizes active at now. ok is false when nothing was recorded.
func NewRecord(active ActiveSession, now time.Time) (Record, bool) {
	segments := active.Finalize(now)
	if len(segments) == 0 {
		return Record{}, false
	}
	return Record{
		ID:        active.ID,
		StartedAt: active.StartedAt,
		EndedAt:   now,
		Segments:  segments,
		Metrics:   Summarize(segments),
	}, true
}

func (r Record) Clone() Record {
	c := r
	c.Segments = make([]Segment, len(r.Segments))
	copy(c.Segments, r.Segments)
	return c
}

// History keeps records most recent first, evicting the oldest beyond the limit.
type History struct {
	limit   int
	records []Record
}

func NewHistory(limit int) History {
	if limit < 1 {
		limit = 1
	}
	return History{limit: limit}
}

func (h *History) Push(r Record) {
	records := make([]Record, 0, len(h.records)+1)
	records = append(records, r.Clone())
	records = append(records, h.records...)
	if len(records) > h.limit {
		records = records[:h.limit]
	}
	h.records = records
}

// Replace loads records from storage, newest start first.
func (h *History) Replace(records []Record) {
	sorted := make([]Record, 0, len(records))
	for _, r := range records {
		sorted = append(sorted, r.Clone())
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.After(sorted[j].StartedAt)
	})
	if len(sorted) > h.limit {
		sorted = sorted[:h.limit]
	}
	h.records = sorted
}

func (h *History) Clear() {
	h.records = nil
}

func (h History) Len() int {
	return len(h.records)
}

// Records returns copies so callers cannot mutate stored history.
func (h History) Records() []Record {
	out := make([]Record, 0, len(h.records))
	for _, r := range h.records {
		out = append(out, r.Clone())
	}
	return out
}

func (h History) Latest() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[0].Clone(), true
}
