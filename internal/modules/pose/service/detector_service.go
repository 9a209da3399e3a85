package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"plank/internal/modules/pose/domain"
	"plank/internal/modules/pose/dto"
	poseout "plank/internal/modules/pose/port/out"
)

type DetectorService struct {
	store poseout.ManifestStore
	host  poseout.DetectorHost
}

func NewDetectorService(store poseout.ManifestStore, host poseout.DetectorHost) *DetectorService {
	return &DetectorService{store: store, host: host}
}

func (s *DetectorService) List(ctx context.Context) ([]dto.DetectorInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DetectorInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.DetectorInfo{Name: m.Name, Version: m.Version, Binary: m.Binary, Enabled: m.Enabled})
	}
	return out, nil
}

func (s *DetectorService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		if !result.ChecksumValid {
			result.Error = "checksum mismatch"
			results = append(results, result)
			continue
		}
		if m.Enabled && s.host != nil {
			meta, err := s.host.CheckLifecycle(ctx, m)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
				result.Model = meta.Model
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Open starts the named detector and returns a source bound to its process.
func (s *DetectorService) Open(ctx context.Context, name string) (poseout.LandmarkSource, domain.Metadata, error) {
	manifest, err := s.runnableManifest(ctx, name)
	if err != nil {
		return nil, domain.Metadata{}, err
	}
	if s.host == nil {
		return nil, domain.Metadata{}, fmt.Errorf("detector host is not configured")
	}
	source, meta, err := s.host.Open(ctx, manifest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.Metadata{}, fmt.Errorf("%w: %s", domain.ErrDetectorTimeout, name)
		}
		return nil, domain.Metadata{}, err
	}
	return source, meta, nil
}

func (s *DetectorService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate detector name: %s", manifest.Name)
		}
		seen[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *DetectorService) runnableManifest(ctx context.Context, name string) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, m := range manifests {
		if m.Name != name {
			continue
		}
		if !m.Enabled {
			return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrDetectorDisabled, name)
		}
		if err := checksumMatches(m.Binary, m.SHA256); err != nil {
			return domain.Manifest{}, err
		}
		return m, nil
	}
	return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrDetectorNotFound, name)
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read detector binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
