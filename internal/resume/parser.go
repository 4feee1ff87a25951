// internal/resume/parser.go
package resume

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/security"
	"nexus-talent/internal/common/validation"
	"nexus-talent/internal/llm"
	"nexus-talent/internal/matching"
	"nexus-talent/internal/models"
)

// MaxLLMChars bounds the resume text sent to the model.
const MaxLLMChars = 12000

const summaryChars = 300

const resumeSchemaJSON = `{
  "type": "object",
  "required": ["skills"],
  "properties": {
    "name": {"type": "string"},
    "email": {"type": "string"},
    "headline": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "experience_years": {"type": "integer", "minimum": 0},
    "summary": {"type": "string"}
  }
}`

var resumeSchema = validation.MustSchema(resumeSchemaJSON)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:years|yrs)`)
	roleWords    = []string{"engineer", "developer", "scientist", "manager", "analyst", "designer", "architect", "consultant", "lead", "specialist", "administrator"}
)

// Generator is the LLM surface the parser needs.
type Generator interface {
	Run(ctx context.Context, prompt, system string, priority bool) (string, error)
}

// Parser turns resume text into ResumeData, preferring the LLM and falling
// back to deterministic extraction.
type Parser struct {
	llm    Generator
	logger logger.Logger
}

// NewParser accepts a nil generator, in which case only the heuristic runs.
func NewParser(gen Generator, log logger.Logger) *Parser {
	return &Parser{llm: gen, logger: log}
}

// Parse sanitises raw text and extracts structured data. It fails only when
// nothing is left after sanitising.
func (p *Parser) Parse(ctx context.Context, raw string) (*models.ResumeData, models.ParseSource, error) {
	clean := security.SanitizeInput(raw)
	if clean == "" {
		return nil, "", apperrors.NewResumeParseFailedError("no readable text in resume")
	}

	if p.llm != nil {
		data, err := p.parseWithLLM(ctx, clean)
		if err == nil {
			if len(data.Skills) == 0 {
				data.Skills = matching.FindSkills(clean)
			}
			return data, models.ParseSourceLLM, nil
		}
		p.logger.Warn("LLM resume parsing failed, using heuristic extractor", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return Heuristic(raw), models.ParseSourceHeuristic, nil
}

func (p *Parser) parseWithLLM(ctx context.Context, clean string) (*models.ResumeData, error) {
	system := "You are a professional resume parser. Extract details accurately into JSON matching this schema: " + resumeSchemaJSON
	prompt := "Extract details from this resume: " + security.Truncate(clean, MaxLLMChars)

	text, err := p.llm.Run(ctx, prompt, system, true)
	if err != nil {
		return nil, err
	}

	raw := llm.CleanJSON(text)
	if result := resumeSchema.ValidateJSON(raw); !result.Valid {
		return nil, apperrors.NewLLMBadResponseError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var data models.ResumeData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, apperrors.NewLLMBadResponseError(err.Error())
	}
	return &data, nil
}

// Heuristic extracts resume fields without a model. It never fails.
func Heuristic(raw string) *models.ResumeData {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if s := security.SanitizeInput(line); s != "" {
			lines = append(lines, s)
		}
	}
	clean := strings.Join(lines, " ")

	data := &models.ResumeData{
		Email:   emailPattern.FindString(clean),
		Skills:  matching.FindSkills(clean),
		Summary: security.Truncate(clean, summaryChars),
	}
	if data.Skills == nil {
		data.Skills = []string{}
	}

	for _, m := range yearsPattern.FindAllStringSubmatch(clean, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > data.ExperienceYears {
			data.ExperienceYears = n
		}
	}

	for i, line := range lines {
		if data.Name == "" && i < 3 && looksLikeName(line) {
			data.Name = line
			continue
		}
		if data.Headline == "" && i < 6 && looksLikeHeadline(line) {
			data.Headline = line
		}
	}
	return data
}

func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 || strings.ContainsAny(line, "@|:/") {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsUpper(r[0]) {
			return false
		}
		for _, c := range r {
			if unicode.IsDigit(c) {
				return false
			}
		}
	}
	return !looksLikeHeadline(line)
}

func looksLikeHeadline(line string) bool {
	if len(strings.Fields(line)) > 12 || emailPattern.MatchString(line) {
		return false
	}
	lower := strings.ToLower(line)
	for _, w := range roleWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
