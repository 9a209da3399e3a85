package out

import (
	"context"

	"plank/internal/modules/session/domain"
)

type RecordStore interface {
	LoadAll(ctx context.Context) ([]domain.Record, error)
	Put(ctx context.Context, record domain.Record) error
	Clear(ctx context.Context) error
}

type NoteExporter interface {
	Export(ctx context.Context, dir string, record domain.Record) (string, error)
}
