// Package seed holds the demonstration prompts inserted into an empty catalog.
package seed

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"promptgallery-backend/internal/models"
	"time"

	"gopkg.in/yaml.v3"
)

// MarkerName identifies the demo set in the seed_markers table.
const MarkerName = "demo_prompts_v1"

//go:embed demo_prompts.yaml
var demoPromptsYAML []byte

// Entry is one demo prompt as written in demo_prompts.yaml.
type Entry struct {
	Title      string `yaml:"title"`
	Content    string `yaml:"content"`
	Category   string `yaml:"category"`
	AuthorName string `yaml:"authorName"`
}

// Entries parses the embedded demo set.
func Entries() ([]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(demoPromptsYAML, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse demo prompts: %w", err)
	}
	return entries, nil
}

// DemoPrompts builds the rows to insert. CreatedAt values are one second
// apart and end at now, so newest-first listings follow insertion order.
func DemoPrompts(now time.Time) ([]models.Prompt, error) {
	entries, err := Entries()
	if err != nil {
		return nil, err
	}

	base := now.UTC().Truncate(time.Second).Add(-time.Duration(len(entries)) * time.Second)
	prompts := make([]models.Prompt, 0, len(entries))
	for i, e := range entries {
		createdAt := base.Add(time.Duration(i+1) * time.Second)
		prompts = append(prompts, models.Prompt{
			Title:      e.Title,
			Content:    e.Content,
			Category:   models.ParseCategory(e.Category),
			AuthorID:   models.SeedAuthorID,
			AuthorName: e.AuthorName,
			IsPublic:   true,
			Likes:      0,
			Copies:     rand.IntN(100) + 10,
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		})
	}
	return prompts, nil
}
