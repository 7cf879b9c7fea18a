package contract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules are the numeric limits a tailored resume must respect.
type Rules struct {
	WorkBullets    int `yaml:"work_bullets"`
	ProjectBullets int `yaml:"project_bullets"`
	MinWords       int `yaml:"min_words"`
	MaxWords       int `yaml:"max_words"`
	MaxSkills      int `yaml:"max_skills"`
}

// DefaultRules returns 4 work bullets, 3 project bullets, 15-25 words per
// bullet and at most 20 skills.
func DefaultRules() Rules {
	return Rules{
		WorkBullets:    4,
		ProjectBullets: 3,
		MinWords:       15,
		MaxWords:       25,
		MaxSkills:      20,
	}
}

// WithDefaults returns a copy with every unset limit replaced by its default.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.WorkBullets <= 0 {
		r.WorkBullets = d.WorkBullets
	}
	if r.ProjectBullets <= 0 {
		r.ProjectBullets = d.ProjectBullets
	}
	if r.MinWords <= 0 {
		r.MinWords = d.MinWords
	}
	if r.MaxWords <= 0 {
		r.MaxWords = d.MaxWords
	}
	if r.MaxSkills <= 0 {
		r.MaxSkills = d.MaxSkills
	}
	return r
}

// Validate rejects rule sets no resume could satisfy.
func (r Rules) Validate() error {
	if r.MinWords > r.MaxWords {
		return fmt.Errorf("min_words (%d) exceeds max_words (%d)", r.MinWords, r.MaxWords)
	}
	return nil
}

// LoadRules reads a YAML rules file. An empty path returns the defaults;
// fields left out of the file keep their default values.
func LoadRules(path string) (Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules and fills unset fields with defaults.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return r, nil
}
