package service

import (
	"context"
	"fmt"
	"time"

	"plank/internal/modules/session/domain"
	sessionout "plank/internal/modules/session/port/out"
	"plank/internal/platform/clock"
	"plank/internal/platform/id"
	"plank/internal/platform/log"
)

// SessionService owns the active session, the tracking status and the in-memory history.
// It is not safe for concurrent use.
type SessionService struct {
	clock    clock.Clock
	idGen    id.Generator
	store    sessionout.RecordStore
	exporter sessionout.NoteExporter
	loc      *time.Location

	status  domain.Status
	active  *domain.ActiveSession
	history domain.History
}

func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.RecordStore, exporter sessionout.NoteExporter, historyLimit int) *SessionService {
	return &SessionService{
		clock:    clock,
		idGen:    idGen,
		store:    store,
		exporter: exporter,
		loc:      time.Local,
		status:   domain.StatusIdle,
		history:  domain.NewHistory(historyLimit),
	}
}

// Hydrate replaces the in-memory history with what the store holds.
func (s *SessionService) Hydrate(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load session records: %w", err)
	}
	s.history.Replace(records)
	log.Debugw("session history hydrated", "records", s.history.Len())
	return nil
}

// Start opens a new active session. An already active session is returned unchanged with started=false.
func (s *SessionService) Start(_ context.Context) (domain.ActiveSession, bool) {
	if s.active != nil {
		return s.active.Clone(), false
	}
	active := domain.NewActiveSession(s.idGen.New(), domain.Instant(s.clock.Now()))
	s.active = &active
	s.status = domain.StatusTracking
	log.Infow("session started", "session_id", active.ID)
	return active.Clone(), true
}

// RecordPhase applies a phase change to the active session. Without one it does nothing.
func (s *SessionService) RecordPhase(phase string, at time.Time) bool {
	if s.active == nil {
		return false
	}
	return s.active.Record(domain.Normalize(phase), domain.Instant(at), s.idGen.New)
}

// Stop finalizes the active session. The in-memory transition to idle happens even when
// persisting the record fails; that failure is returned alongside the record.
func (s *SessionService) Stop(ctx context.Context) (domain.Record, bool, error) {
	if s.active == nil {
		return domain.Record{}, false, nil
	}
	active := *s.active
	s.active = nil
	s.status = domain.StatusIdle

	record, ok := domain.NewRecord(active, domain.Instant(s.clock.Now()))
	if !ok {
		log.Infow("session discarded", "session_id", active.ID, "reason", "no segments")
		return domain.Record{}, false, nil
	}
	s.history.Push(record)
	log.Infow("session stopped",
		"session_id", record.ID,
		"segments", len(record.Segments),
		"plank_ms", record.TotalPlank.Milliseconds(),
		"break_ms", record.TotalBreak.Milliseconds(),
		"longest_hold_ms", record.LongestHold.Milliseconds(),
	)
	if s.store == nil {
		return record, true, nil
	}
	if err := s.store.Put(ctx, record); err != nil {
		log.Warnw("persist session record", "session_id", record.ID, "error", err)
		return record, true, fmt.Errorf("persist session record: %w", err)
	}
	return record, true, nil
}

// Reset clears stored and in-memory history. A store failure leaves both untouched.
func (s *SessionService) Reset(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			log.Warnw("clear session records", "error", err)
			return fmt.Errorf("clear session records: %w", err)
		}
	}
	s.history.Clear()
	log.Infow("session history reset")
	return nil
}

func (s *SessionService) Status() domain.Status {
	return s.status
}

func (s *SessionService) Active() (domain.ActiveSession, bool) {
	if s.active == nil {
		return domain.ActiveSession{}, false
	}
	return s.active.Clone(), true
}

// Live reports the running metrics of the active session at the current instant.
func (s *SessionService) Live() (domain.Live, bool) {
	if s.active == nil {
		return domain.Live{}, false
	}
	return s.active.Live(s.clock.Now()), true
}

// History returns up to limit records, most recent first. A non-positive limit returns all.
func (s *SessionService) History(limit int) []domain.Record {
	records := s.history.Records()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

func (s *SessionService) Trend(days int) domain.Trend {
	return domain.BuildTrend(s.history.Records(), s.clock.Now(), days, s.loc)
}

// Export writes one note per history record under dir.
func (s *SessionService) Export(ctx context.Context, dir string) ([]string, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("note exporter is not configured")
	}
	paths := []string{}
	for _, record := range s.history.Records() {
		path, err := s.exporter.Export(ctx, dir, record)
		if err != nil {
			return paths, fmt.Errorf("export session %s: %w", record.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
