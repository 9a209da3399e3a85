// Package markdown reads and writes notes made of YAML frontmatter and a body
// that may contain generated blocks.
package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// SplitNote decodes the frontmatter of content into meta and returns the body.
func SplitNote(content string, meta any) (string, error) {
	rest, ok := strings.CutPrefix(content, fence+"\n")
	if !ok {
		return content, fmt.Errorf("note has no frontmatter")
	}
	head, body, ok := strings.Cut(rest, "\n"+fence+"\n")
	if !ok {
		return "", fmt.Errorf("invalid frontmatter: missing closing fence")
	}
	if err := yaml.Unmarshal([]byte(head), meta); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return body, nil
}

// RenderNote writes meta as frontmatter followed by a blank line and body.
func RenderNote(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(fence + "\n")
	sb.Write(raw)
	sb.WriteString(fence + "\n")
	if !strings.HasPrefix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(body)
	return sb.String(), nil
}

// Block is a named region of a body that is regenerated on every write while
// the text around it is left alone.
type Block struct {
	Name string
}

func (b Block) start() string { return "<!-- plank:" + b.Name + ":start -->" }
func (b Block) end() string   { return "<!-- plank:" + b.Name + ":end -->" }

// Render returns generated wrapped in the block markers.
func (b Block) Render(generated string) string {
	return b.start() + "\n" + strings.TrimRight(generated, "\n") + "\n" + b.end()
}

// Replace swaps the block inside body for generated, appending the block when
// body has none.
func (b Block) Replace(body, generated string) string {
	block := b.Render(generated)
	start := strings.Index(body, b.start())
	end := strings.Index(body, b.end())
	if start >= 0 && end > start {
		return body[:start] + block + body[end+len(b.end()):]
	}
	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	default:
		return body + "\n\n" + block + "\n"
	}
}
