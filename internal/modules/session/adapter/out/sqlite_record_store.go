package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"plank/internal/modules/session/domain"
	"plank/internal/platform/log"

	_ "modernc.org/sqlite"
)

// segmentBlob is the msgpack layout of the segments column.
type segmentBlob struct {
	Version  int          `msgpack:"v"`
	Segments []segmentRow `msgpack:"segments"`
}

type segmentRow struct {
	ID         string `msgpack:"id"`
	State      string `msgpack:"state"`
	StartedAt  int64  `msgpack:"started_at_ms"`
	EndedAt    int64  `msgpack:"ended_at_ms"`
	DurationMs int64  `msgpack:"duration_ms"`
	Open       bool   `msgpack:"open"`
}

type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(dbPath string) (*SQLiteRecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteRecordStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteRecordStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  started_at INTEGER NOT NULL,
  ended_at INTEGER NOT NULL,
  total_plank_ms INTEGER NOT NULL,
  total_break_ms INTEGER NOT NULL,
  longest_hold_ms INTEGER NOT NULL,
  segments BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions(started_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Put(ctx context.Context, record domain.Record) error {
	blob, err := encodeSegments(record.Segments)
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO sessions (id, started_at, ended_at, total_plank_ms, total_break_ms, longest_hold_ms, segments)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  total_plank_ms=excluded.total_plank_ms,
  total_break_ms=excluded.total_break_ms,
  longest_hold_ms=excluded.longest_hold_ms,
  segments=excluded.segments;
`
	_, err = s.db.ExecContext(ctx, stmt,
		record.ID,
		record.StartedAt.UnixMilli(),
		record.EndedAt.UnixMilli(),
		record.TotalPlank.Milliseconds(),
		record.TotalBreak.Milliseconds(),
		record.LongestHold.Milliseconds(),
		blob,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) LoadAll(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, ended_at, total_plank_ms, total_break_ms, longest_hold_ms, segments
FROM sessions
ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var (
			record                      domain.Record
			startedAt, endedAt          int64
			plankMs, breakMs, longestMs int64
			blob                        []byte
		)
		if err := rows.Scan(&record.ID, &startedAt, &endedAt, &plankMs, &breakMs, &longestMs, &blob); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		segments, err := decodeSegments(blob)
		if err != nil {
			return nil, fmt.Errorf("decode session %s: %w", record.ID, err)
		}
		record.StartedAt = time.UnixMilli(startedAt)
		record.EndedAt = time.UnixMilli(endedAt)
		record.Segments = segments
		record.Metrics = domain.Summarize(segments)
		if stored := (domain.Metrics{
			TotalPlank:  time.Duration(plankMs) * time.Millisecond,
			TotalBreak:  time.Duration(breakMs) * time.Millisecond,
			LongestHold: time.Duration(longestMs) * time.Millisecond,
		}); stored != record.Metrics {
			log.Debugw("stored session totals differ from segments", "session_id", record.ID)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

func (s *SQLiteRecordStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func encodeSegments(segments []domain.Segment) ([]byte, error) {
	blob := segmentBlob{Version: domain.SchemaVersion, Segments: make([]segmentRow, 0, len(segments))}
	for _, seg := range segments {
		row := segmentRow{
			ID:         seg.ID,
			State:      string(seg.State),
			StartedAt:  seg.StartedAt.UnixMilli(),
			DurationMs: seg.Duration.Milliseconds(),
			Open:       seg.Open(),
		}
		if !row.Open {
			row.EndedAt = seg.EndedAt.UnixMilli()
		}
		blob.Segments = append(blob.Segments, row)
	}
	raw, err := msgpack.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("encode segments: %w", err)
	}
	return raw, nil
}

func decodeSegments(raw []byte) ([]domain.Segment, error) {
	var blob segmentBlob
	if err := msgpack.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	if blob.Version > domain.SchemaVersion {
		return nil, fmt.Errorf("unsupported segments version %d", blob.Version)
	}
	segments := make([]domain.Segment, 0, len(blob.Segments))
	for _, row := range blob.Segments {
		open := row.Open
		if blob.Version < 2 {
			open = row.EndedAt == 0
		}
		seg := domain.Segment{
			ID:        row.ID,
			State:     domain.Normalize(row.State),
			StartedAt: time.UnixMilli(row.StartedAt),
		}
		if !open {
			// Duration follows the stored bounds so it always equals EndedAt minus StartedAt.
			seg.EndedAt = time.UnixMilli(row.EndedAt)
			seg.Duration = seg.EndedAt.Sub(seg.StartedAt)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
