package llm

import (
	_ "embed"
	"strconv"
	"strings"
)

var (
	//go:embed prompts/extract.txt
	extractPrompt string
	//go:embed prompts/tailor.txt
	tailorPrompt string
	//go:embed prompts/match_score.txt
	matchScorePrompt string
	//go:embed prompts/answer.txt
	answerPrompt string
)

// TailorLimits are the numeric rules encoded into the tailoring prompt.
type TailorLimits struct {
	WorkBullets    int
	ProjectBullets int
	MinWords       int
	MaxWords       int
	MaxSkills      int
}

// ExtractionPrompt asks the oracle to convert resume text into the fixed schema.
func ExtractionPrompt(resumeText string) string {
	return strings.NewReplacer("{{RESUME_TEXT}}", resumeText).Replace(extractPrompt)
}

// TailorPrompt asks the oracle to rewrite a resume record for a job description.
func TailorPrompt(resumeJSON, jobDescription string, limits TailorLimits) string {
	return strings.NewReplacer(
		"{{WORK_BULLETS}}", strconv.Itoa(limits.WorkBullets),
		"{{PROJECT_BULLETS}}", strconv.Itoa(limits.ProjectBullets),
		"{{MIN_WORDS}}", strconv.Itoa(limits.MinWords),
		"{{MAX_WORDS}}", strconv.Itoa(limits.MaxWords),
		"{{MAX_SKILLS}}", strconv.Itoa(limits.MaxSkills),
		"{{RESUME_JSON}}", resumeJSON,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(tailorPrompt)
}

// MatchScorePrompt asks for a strict {"score","reason"} object.
func MatchScorePrompt(resumeJSON, jobDescription string) string {
	return strings.NewReplacer(
		"{{RESUME_JSON}}", resumeJSON,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(matchScorePrompt)
}

// AnswerPrompt asks for an application-form answer grounded only in the resume.
func AnswerPrompt(resumeJSON, question string) string {
	return strings.NewReplacer(
		"{{RESUME_JSON}}", resumeJSON,
		"{{QUESTION}}", question,
	).Replace(answerPrompt)
}
