package model

import (
	"encoding/json"
	"strings"
)

// Resume is the canonical structured resume record. JSON keys match the
// persisted artifact format, so the struct tags are not Go-style names.
type Resume struct {
	Details                       Details             `json:"Details"`
	Summary                       string              `json:"Summary"`
	Skills                        []string            `json:"Skills"`
	WorkExperience                []WorkExperience    `json:"Work Experience"`
	ProjectExperience             []ProjectExperience `json:"Project Experience"`
	Education                     []Education         `json:"Education"`
	AchievementsAndCertifications []string            `json:"Achievements and Certifications"`
}

// Details captures contact and identity fields.
type Details struct {
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	Phone    string `json:"Phone"`
	Location string `json:"Location"`
	LinkedIn string `json:"LinkedIn"`
	GitHub   string `json:"GitHub"`
}

// WorkExperience represents a work history entry.
type WorkExperience struct {
	CompanyName  string   `json:"Company Name"`
	Role         string   `json:"Role"`
	BulletPoints []string `json:"Bullet Points"`
	Date         string   `json:"Date"`
}

// ProjectExperience represents a notable project.
type ProjectExperience struct {
	Title        string   `json:"Title"`
	BulletPoints []string `json:"Bullet Points"`
	TechStack    string   `json:"Tech Stack"`
}

// Education represents an education entry. GPA is the only optional key.
type Education struct {
	Institution string `json:"Institution"`
	Degree      string `json:"Degree"`
	Date        string `json:"Date"`
	GPA         string `json:"GPA,omitempty"`
}

// ContactParts returns the non-empty contact fields in display order.
func (d Details) ContactParts() []string {
	parts := make([]string, 0, 5)
	for _, v := range []string{d.Email, d.Phone, d.Location, d.LinkedIn, d.GitHub} {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// Normalize returns a copy where every sequence is non-nil so the record
// always serializes with all keys present.
func (r Resume) Normalize() Resume {
	out := r.Clone()
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if out.WorkExperience == nil {
		out.WorkExperience = []WorkExperience{}
	}
	for i := range out.WorkExperience {
		if out.WorkExperience[i].BulletPoints == nil {
			out.WorkExperience[i].BulletPoints = []string{}
		}
	}
	if out.ProjectExperience == nil {
		out.ProjectExperience = []ProjectExperience{}
	}
	for i := range out.ProjectExperience {
		if out.ProjectExperience[i].BulletPoints == nil {
			out.ProjectExperience[i].BulletPoints = []string{}
		}
	}
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.AchievementsAndCertifications == nil {
		out.AchievementsAndCertifications = []string{}
	}
	return out
}

// Clone deep-copies the record.
func (r Resume) Clone() Resume {
	out := r
	out.Skills = cloneStrings(r.Skills)
	out.AchievementsAndCertifications = cloneStrings(r.AchievementsAndCertifications)
	if r.WorkExperience != nil {
		out.WorkExperience = make([]WorkExperience, len(r.WorkExperience))
		for i, w := range r.WorkExperience {
			w.BulletPoints = cloneStrings(w.BulletPoints)
			out.WorkExperience[i] = w
		}
	}
	if r.ProjectExperience != nil {
		out.ProjectExperience = make([]ProjectExperience, len(r.ProjectExperience))
		for i, p := range r.ProjectExperience {
			p.BulletPoints = cloneStrings(p.BulletPoints)
			out.ProjectExperience[i] = p
		}
	}
	if r.Education != nil {
		out.Education = append([]Education(nil), r.Education...)
	}
	return out
}

// MarshalIndent serializes the normalized record as two-space indented JSON.
func (r Resume) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r.Normalize(), "", "  ")
}

// IsEmpty reports whether the record carries no content at all.
func (r Resume) IsEmpty() bool {
	return strings.TrimSpace(r.Details.Name) == "" &&
		len(r.Details.ContactParts()) == 0 &&
		strings.TrimSpace(r.Summary) == "" &&
		len(r.Skills) == 0 &&
		len(r.WorkExperience) == 0 &&
		len(r.ProjectExperience) == 0 &&
		len(r.Education) == 0 &&
		len(r.AchievementsAndCertifications) == 0
}

var bulletGlyphs = []string{"•", "▪", "·", "–", "-", "*"}

// StripBulletGlyph removes one leading bullet glyph and the whitespace after it.
func StripBulletGlyph(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, glyph := range bulletGlyphs {
		if rest, ok := strings.CutPrefix(trimmed, glyph); ok {
			// "-" also starts negative numbers and ranges; only strip when followed by space.
			if glyph == "-" || glyph == "*" {
				if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
					return trimmed
				}
			}
			return strings.TrimSpace(rest)
		}
	}
	return trimmed
}

// HasBulletGlyph reports whether StripBulletGlyph would change the text.
func HasBulletGlyph(text string) bool {
	return StripBulletGlyph(text) != strings.TrimSpace(text)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
