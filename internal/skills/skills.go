// Package skills loads capability descriptors from front-matter documents
// under the skills root and renders them into the system prompt.
package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarkerFile is the fixed filename of a skill description document,
// expected one directory level below the skills root.
const MarkerFile = "SKILL.md"

// Descriptor is the read-only metadata of one skill, loaded once at startup.
type Descriptor struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	AllowedTools []string       `yaml:"allowed-tools"`
	Metadata     map[string]any `yaml:"metadata"`

	// Dir is the skill directory relative to the skills root.
	Dir string `yaml:"-"`
}

// Load scans <root>/<skill>/SKILL.md one level deep and returns the parsed
// descriptors sorted by name. A missing root yields an empty registry.
// Documents that cannot be parsed are skipped with a warning on stderr.
func Load(root string) ([]Descriptor, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("skills: read root %s: %w", root, err)
	}

	var descs []Descriptor
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		marker := filepath.Join(root, e.Name(), MarkerFile)
		b, err := os.ReadFile(marker)
		if err != nil {
			continue // directory without a marker is not a skill
		}
		d, err := parseFrontMatter(b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping skill %s: %v\n", e.Name(), err)
			continue
		}
		if d.Name == "" {
			d.Name = e.Name()
		}
		d.Dir = e.Name()
		descs = append(descs, d)
	}

	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs, nil
}

// parseFrontMatter extracts the YAML block between the leading "---" fences.
func parseFrontMatter(b []byte) (Descriptor, error) {
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return Descriptor{}, fmt.Errorf("missing front matter")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return Descriptor{}, fmt.Errorf("unterminated front matter")
	}
	var d Descriptor
	if err := yaml.Unmarshal([]byte(rest[:end]), &d); err != nil {
		return Descriptor{}, fmt.Errorf("front matter: %w", err)
	}
	return d, nil
}

// BuildSystemPrompt renders the system instructions, including the skill
// listing the model uses to decide what to read or run.
func BuildSystemPrompt(root string, descs []Descriptor) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful agent with access to a set of skills and tools.\n")
	sb.WriteString("Skills live under the directory ")
	sb.WriteString(root)
	sb.WriteString("; read a skill's files to learn how to apply it, and use run_script to execute its scripts.\n")

	if len(descs) == 0 {
		sb.WriteString("\nNo skills are currently installed.\n")
		return sb.String()
	}

	sb.WriteString("\nAvailable skills:\n")
	for _, d := range descs {
		sb.WriteString("- ")
		sb.WriteString(d.Name)
		if d.Dir != "" {
			// The directory can differ from the skill name; scripts are
			// addressed by directory, so spell it out.
			sb.WriteString(" [")
			sb.WriteString(filepath.Join(root, d.Dir))
			sb.WriteString("]")
		}
		if d.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(d.Description)
		}
		if len(d.AllowedTools) > 0 {
			sb.WriteString(" (tools: ")
			sb.WriteString(strings.Join(d.AllowedTools, ", "))
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
