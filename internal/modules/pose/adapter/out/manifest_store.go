package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"plank/internal/modules/pose/domain"
	poseout "plank/internal/modules/pose/port/out"
)

type FileManifestStore struct {
	basePath string
	path     string
}

// NewFileManifestStore reads detector manifests from path, as JSON or, for a
// .yaml/.yml path, YAML. Relative binaries resolve against basePath.
func NewFileManifestStore(basePath, path string) poseout.ManifestStore {
	return &FileManifestStore{basePath: basePath, path: path}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read detector manifests: %w", err)
	}
	manifests, err := decodeManifests(s.path, raw)
	if err != nil {
		return nil, fmt.Errorf("decode detector manifests %s: %w", filepath.Base(s.path), err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.basePath, manifests[i].Binary))
		}
	}
	return manifests, nil
}

func decodeManifests(path string, raw []byte) ([]domain.Manifest, error) {
	manifests := []domain.Manifest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&manifests); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&manifests); err != nil {
			return nil, err
		}
	}
	return manifests, nil
}
