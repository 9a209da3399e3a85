package out

import (
	"context"

	"plank/internal/modules/pose/domain"
)

// LandmarkSource yields the most recent detection. found is false when no body was seen.
type LandmarkSource interface {
	Latest(ctx context.Context) (set domain.LandmarkSet, found bool, err error)
	Close() error
}

type ReplayLoader interface {
	Load(ctx context.Context, path string) ([]domain.Frame, error)
}

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type DetectorHost interface {
	Open(ctx context.Context, manifest domain.Manifest) (LandmarkSource, domain.Metadata, error)
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
}
