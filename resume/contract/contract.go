package contract

import (
	"fmt"
	"strings"
	"unicode"

	"resume-tailor/resume/model"
)

const (
	KindWorkBulletCount    = "work_bullet_count"
	KindProjectBulletCount = "project_bullet_count"
	KindBulletWordCount    = "bullet_word_count"
	KindRepeatedVerb       = "repeated_action_verb"
	KindTooManySkills      = "too_many_skills"
	KindDetailsChanged     = "details_changed"
	KindBulletGlyph        = "bullet_glyph"
)

const (
	sectionWork     = "Work Experience"
	sectionProjects = "Project Experience"
	sectionSkills   = "Skills"
	sectionDetails  = "Details"
)

// Violation is one rule a tailored resume breaks. Entry and Bullet are
// zero-based; -1 means the violation is not tied to that level.
type Violation struct {
	Kind    string `json:"kind"`
	Section string `json:"section"`
	Entry   int    `json:"entry"`
	Bullet  int    `json:"bullet"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Check compares a tailored resume against the original and the rules.
func Check(original, tailored model.Resume, rules Rules) []Violation {
	rules = rules.WithDefaults()
	violations := make([]Violation, 0)

	if detailsChanged(original.Details, tailored.Details) {
		violations = append(violations, Violation{
			Kind: KindDetailsChanged, Section: sectionDetails, Entry: -1, Bullet: -1,
			Message: "contact details differ from the original",
		})
	}
	if n := len(tailored.Skills); n > rules.MaxSkills {
		violations = append(violations, Violation{
			Kind: KindTooManySkills, Section: sectionSkills, Entry: -1, Bullet: -1,
			Message: fmt.Sprintf("%d skills, limit is %d", n, rules.MaxSkills),
		})
	}

	work := make([][]string, len(tailored.WorkExperience))
	for i, w := range tailored.WorkExperience {
		work[i] = w.BulletPoints
		if n := len(w.BulletPoints); n != rules.WorkBullets {
			violations = append(violations, Violation{
				Kind: KindWorkBulletCount, Section: sectionWork, Entry: i, Bullet: -1,
				Message: fmt.Sprintf("%s has %d bullets, want %d", entryLabel(w.CompanyName, i), n, rules.WorkBullets),
			})
		}
	}
	violations = append(violations, checkBullets(sectionWork, work, rules)...)

	projects := make([][]string, len(tailored.ProjectExperience))
	for i, p := range tailored.ProjectExperience {
		projects[i] = p.BulletPoints
		if n := len(p.BulletPoints); n != rules.ProjectBullets {
			violations = append(violations, Violation{
				Kind: KindProjectBulletCount, Section: sectionProjects, Entry: i, Bullet: -1,
				Message: fmt.Sprintf("%s has %d bullets, want %d", entryLabel(p.Title, i), n, rules.ProjectBullets),
			})
		}
	}
	violations = append(violations, checkBullets(sectionProjects, projects, rules)...)

	return violations
}

// checkBullets covers word counts, glyphs and verb reuse across one section.
func checkBullets(section string, entries [][]string, rules Rules) []Violation {
	var out []Violation
	seenVerb := make(map[string]struct{})
	for i, bullets := range entries {
		for j, bullet := range bullets {
			if model.HasBulletGlyph(bullet) {
				out = append(out, Violation{
					Kind: KindBulletGlyph, Section: section, Entry: i, Bullet: j,
					Message: fmt.Sprintf("bullet starts with a glyph: %q", firstChars(bullet)),
				})
			}
			text := model.StripBulletGlyph(bullet)
			words := strings.Fields(text)
			if n := len(words); n < rules.MinWords || n > rules.MaxWords {
				out = append(out, Violation{
					Kind: KindBulletWordCount, Section: section, Entry: i, Bullet: j,
					Message: fmt.Sprintf("%d words, want %d-%d", n, rules.MinWords, rules.MaxWords),
				})
			}
			if len(words) == 0 {
				continue
			}
			verb := actionVerb(words[0])
			if verb == "" {
				continue
			}
			if _, ok := seenVerb[verb]; ok {
				out = append(out, Violation{
					Kind: KindRepeatedVerb, Section: section, Entry: i, Bullet: j,
					Message: fmt.Sprintf("action verb %q already used in %s", verb, section),
				})
				continue
			}
			seenVerb[verb] = struct{}{}
		}
	}
	return out
}

// Repair applies the fixes that need no model call: it restores Details,
// truncates Skills and strips bullet glyphs. It returns the repaired copy and
// the violations it resolved.
func Repair(original, tailored model.Resume, rules Rules) (model.Resume, []Violation) {
	rules = rules.WithDefaults()
	out := tailored.Clone()
	var repaired []Violation

	if detailsChanged(original.Details, out.Details) {
		out.Details = original.Details
		repaired = append(repaired, Violation{
			Kind: KindDetailsChanged, Section: sectionDetails, Entry: -1, Bullet: -1,
			Message: "restored original contact details",
		})
	}
	if n := len(out.Skills); n > rules.MaxSkills {
		out.Skills = out.Skills[:rules.MaxSkills]
		repaired = append(repaired, Violation{
			Kind: KindTooManySkills, Section: sectionSkills, Entry: -1, Bullet: -1,
			Message: fmt.Sprintf("truncated %d skills to %d", n, rules.MaxSkills),
		})
	}
	for i := range out.WorkExperience {
		repaired = append(repaired, stripGlyphs(sectionWork, i, out.WorkExperience[i].BulletPoints)...)
	}
	for i := range out.ProjectExperience {
		repaired = append(repaired, stripGlyphs(sectionProjects, i, out.ProjectExperience[i].BulletPoints)...)
	}
	return out.Normalize(), repaired
}

func stripGlyphs(section string, entry int, bullets []string) []Violation {
	var out []Violation
	for j, bullet := range bullets {
		if !model.HasBulletGlyph(bullet) {
			continue
		}
		bullets[j] = model.StripBulletGlyph(bullet)
		out = append(out, Violation{
			Kind: KindBulletGlyph, Section: section, Entry: entry, Bullet: j,
			Message: "stripped leading bullet glyph",
		})
	}
	return out
}

func detailsChanged(a, b model.Details) bool {
	return normalizeValue(a.Name) != normalizeValue(b.Name) ||
		normalizeValue(a.Email) != normalizeValue(b.Email) ||
		normalizeValue(a.Phone) != normalizeValue(b.Phone) ||
		normalizeValue(a.Location) != normalizeValue(b.Location) ||
		normalizeValue(a.LinkedIn) != normalizeValue(b.LinkedIn) ||
		normalizeValue(a.GitHub) != normalizeValue(b.GitHub)
}

func normalizeValue(value string) string {
	return strings.TrimSpace(value)
}

func actionVerb(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
}

func entryLabel(name string, index int) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("entry %d", index+1)
}

func firstChars(text string) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) > 12 {
		r = r[:12]
	}
	return string(r)
}
