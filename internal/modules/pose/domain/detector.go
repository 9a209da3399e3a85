package domain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrDetectorDisabled = errors.New("detector is disabled")
	ErrDetectorNotFound = errors.New("detector not found")
	ErrChecksumMismatch = errors.New("detector checksum mismatch")
	ErrDetectorTimeout  = errors.New("detector timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest registers an out-of-process landmark detector binary.
type Manifest struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Binary  string `json:"binary" yaml:"binary"`
	SHA256  string `json:"sha256" yaml:"sha256"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("detector name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("detector version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("detector binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("detector sha256 must be lowercase 64-char hex")
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
	Model   string
}
