package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/models"
)

// ==========================
// Test Helpers
// ==========================

type fakeGenerator struct {
	text        string
	err         error
	gotPrompt   string
	gotSystem   string
	gotPriority bool
}

func (f *fakeGenerator) Run(ctx context.Context, prompt, system string, priority bool) (string, error) {
	f.gotPrompt, f.gotSystem, f.gotPriority = prompt, system, priority
	return f.text, f.err
}

const sampleResume = `Jane Doe
Senior Backend Engineer
jane.doe@example.com | +1 555 0100

Backend engineer with 7+ years of experience building Go and Python services
on AWS with Kubernetes, PostgreSQL and Redis. Strong communication skills.
Previously 3 years at a fintech startup.`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ==========================
// Extraction
// ==========================

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText(MIMEText, []byte("Go developer"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer", text)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText("image/png", []byte{0x89, 0x50})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnsupportedFileType, apperrors.AsStandardError(err).Code)
}

func TestExtractText_InvalidPDF(t *testing.T) {
	_, err := ExtractText(MIMEPDF, []byte("not a pdf"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeResumeParseFailed, apperrors.AsStandardError(err).Code)
}

func TestExtractText_Docx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Go &amp; Python</w:t></w:r></w:p>`)

	text, err := ExtractText(MIMEDocx, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo & Python", text)
}

func TestStripDocxXML(t *testing.T) {
	in := `<w:body><w:p><w:r><w:t>Line one</w:t></w:r></w:p><w:p><w:r><w:t>A</w:t><w:tab/><w:t>B</w:t></w:r></w:p></w:body>`
	assert.Equal(t, "Line one\nA B", stripDocxXML(in))
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		filename, declared, want string
	}{
		{"cv.pdf", "application/pdf", MIMEPDF},
		{"cv.pdf", "application/octet-stream", MIMEPDF},
		{"cv.docx", "", MIMEDocx},
		{"cv.txt", "text/plain; charset=utf-8", MIMEText},
		{"cv.png", "image/png", "image/png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMIME(tt.filename, tt.declared), tt.filename)
	}
}

// ==========================
// Parsing
// ==========================

func TestParser_LLMSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"name\":\"Jane Doe\",\"skills\":[\"Go\",\"AWS\"],\"experience_years\":7}\n```"}
	p := NewParser(gen, logger.NewTestLogger(t))

	data, source, err := p.Parse(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, models.ParseSourceLLM, source)
	assert.Equal(t, "Jane Doe", data.Name)
	assert.Equal(t, []string{"Go", "AWS"}, data.Skills)
	assert.Equal(t, 7, data.ExperienceYears)
	assert.True(t, gen.gotPriority)
	assert.Contains(t, gen.gotSystem, `"experience_years"`)
	assert.True(t, strings.HasPrefix(gen.gotPrompt, "Extract details from this resume: "))
}

func TestParser_LLMPromptIsTruncated(t *testing.T) {
	gen := &fakeGenerator{text: `{"skills":["Go"]}`}
	p := NewParser(gen, logger.NewTestLogger(t))

	_, _, err := p.Parse(context.Background(), strings.Repeat("a", MaxLLMChars+500))
	require.NoError(t, err)
	assert.Len(t, strings.TrimPrefix(gen.gotPrompt, "Extract details from this resume: "), MaxLLMChars)
}

func TestParser_LLMEmptySkillsFilledFromDictionary(t *testing.T) {
	p := NewParser(&fakeGenerator{text: `{"name":"Jane","skills":[]}`}, logger.NewTestLogger(t))

	data, _, err := p.Parse(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Contains(t, data.Skills, "Kubernetes")
}

func TestParser_FallsBackToHeuristic(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"llm error", &fakeGenerator{err: errors.New("unavailable")}},
		{"schema violation", &fakeGenerator{text: `{"name":"Jane"}`}},
		{"not json", &fakeGenerator{text: "Sure! Here is the resume."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.gen, logger.NewTestLogger(t))
			data, source, err := p.Parse(context.Background(), sampleResume)
			require.NoError(t, err)
			assert.Equal(t, models.ParseSourceHeuristic, source)
			assert.Equal(t, "jane.doe@example.com", data.Email)
		})
	}
}

func TestParser_EmptyResume(t *testing.T) {
	p := NewParser(nil, logger.NewTestLogger(t))
	_, _, err := p.Parse(context.Background(), " \n\t\x00 ")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeResumeParseFailed, apperrors.AsStandardError(err).Code)
}

func TestHeuristic(t *testing.T) {
	data := Heuristic(sampleResume)

	assert.Equal(t, "Jane Doe", data.Name)
	assert.Equal(t, "Senior Backend Engineer", data.Headline)
	assert.Equal(t, "jane.doe@example.com", data.Email)
	assert.Equal(t, 7, data.ExperienceYears)
	assert.Equal(t, []string{"AWS", "Communication", "Go", "Kubernetes", "PostgreSQL", "Python", "Redis"}, data.Skills)
	assert.NotEmpty(t, data.Summary)
}

func TestHeuristic_NoSignals(t *testing.T) {
	data := Heuristic("lorem ipsum dolor sit amet")
	assert.Empty(t, data.Name)
	assert.Empty(t, data.Email)
	assert.Equal(t, []string{}, data.Skills)
	assert.Zero(t, data.ExperienceYears)
}
