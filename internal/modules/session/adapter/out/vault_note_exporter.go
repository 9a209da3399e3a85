package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plank/internal/modules/session/domain"
	"plank/internal/platform/markdown"
)

// NoteMeta is the frontmatter of an exported session note.
type NoteMeta struct {
	SchemaVersion int    `yaml:"schema_version"`
	ID            string `yaml:"id"`
	Type          string `yaml:"type"`
	StartedAt     string `yaml:"started_at"`
	EndedAt       string `yaml:"ended_at"`
	TotalPlankMs  int64  `yaml:"total_plank_ms"`
	TotalBreakMs  int64  `yaml:"total_break_ms"`
	LongestHoldMs int64  `yaml:"longest_hold_ms"`
	Segments      int    `yaml:"segments"`
}

var segmentsBlock = markdown.Block{Name: "segments"}

// VaultNoteExporter writes one markdown note per session. Re-exporting a
// session regenerates its frontmatter and segment block and keeps any text
// written around them.
type VaultNoteExporter struct{}

func NewVaultNoteExporter() VaultNoteExporter {
	return VaultNoteExporter{}
}

func (VaultNoteExporter) Export(_ context.Context, dir string, record domain.Record) (string, error) {
	date := record.StartedAt
	noteDir := filepath.Join(dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(noteDir, 0o755); err != nil {
		return "", fmt.Errorf("create note dir: %w", err)
	}
	path := filepath.Join(noteDir, date.Format("150405")+"-plank.md")
	body, owner, err := existingNote(path)
	if err != nil {
		return "", err
	}
	if owner != "" && owner != record.ID {
		// Another session started in the same second owns the plain name.
		path = filepath.Join(noteDir, date.Format("150405")+"-plank-"+shortID(record.ID)+".md")
		if body, owner, err = existingNote(path); err != nil {
			return "", err
		}
		if owner != "" && owner != record.ID {
			return "", fmt.Errorf("session note %s belongs to session %s", path, owner)
		}
	}

	meta := NoteMeta{
		SchemaVersion: domain.SchemaVersion,
		ID:            record.ID,
		Type:          "plank-session",
		StartedAt:     record.StartedAt.Format(time.RFC3339),
		EndedAt:       record.EndedAt.Format(time.RFC3339),
		TotalPlankMs:  record.TotalPlank.Milliseconds(),
		TotalBreakMs:  record.TotalBreak.Milliseconds(),
		LongestHoldMs: record.LongestHold.Milliseconds(),
		Segments:      len(record.Segments),
	}
	if body == "" {
		body = fmt.Sprintf("# Plank session %s\n", record.StartedAt.Format("2006-01-02 15:04"))
	}
	rendered, err := markdown.RenderNote(meta, segmentsBlock.Replace(body, noteBody(record)))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

// existingNote returns the body of the note at path and the session id recorded in
// its frontmatter. A missing note yields empty strings. A note without an id is
// reported as owned by "?" so it is never taken over.
func existingNote(path string) (body, owner string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("read session note: %w", err)
	}
	var meta NoteMeta
	body, err = markdown.SplitNote(string(raw), &meta)
	if err != nil {
		return "", "", fmt.Errorf("parse session note %s: %w", path, err)
	}
	owner = meta.ID
	if owner == "" {
		owner = "?"
	}
	return strings.TrimPrefix(body, "\n"), owner, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func noteBody(record domain.Record) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "- Plank: %s\n- Break: %s\n- Longest hold: %s\n\n", fmtDuration(record.TotalPlank), fmtDuration(record.TotalBreak), fmtDuration(record.LongestHold))
	b.WriteString("## Segments\n\n| # | State | Start | Duration |\n| --- | --- | --- | --- |\n")
	for i, seg := range record.Segments {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, seg.State, seg.StartedAt.Format("15:04:05"), fmtDuration(seg.Duration))
	}
	return b.String()
}

func fmtDuration(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}
