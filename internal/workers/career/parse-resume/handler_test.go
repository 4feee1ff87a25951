package parseresume

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/models"
	"nexus-talent/internal/resume"
)

// ==========================
// Test Helper Functions
// ==========================

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) Run(ctx context.Context, prompt, system string, priority bool) (string, error) {
	return s.text, s.err
}

func createTestConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		MaxUploadMB:    1,
		MaxResumeChars: 200,
	}
}

func createTestHandler(t *testing.T, gen resume.Generator) *Handler {
	log := logger.NewTestLogger(t)
	return NewHandler(createTestConfig(), resume.NewParser(gen, log), log)
}

const resumeText = `Sam Rivera
Data Engineer
sam@example.com
5 years building Spark and Airflow pipelines in Python on GCP.`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Text(t *testing.T) {
	h := createTestHandler(t, &stubLLM{text: `{"name":"Sam Rivera","skills":["Python","Spark"],"experience_years":5}`})

	out, err := h.Execute(context.Background(), &Input{Resume: resumeText})
	require.NoError(t, err)

	assert.Equal(t, models.ParseSourceLLM, out.ParseSource)
	assert.Equal(t, "Sam Rivera", out.ResumeData.Name)
	assert.NotContains(t, out.ResumeText, "\n")
	assert.True(t, strings.HasPrefix(out.ResumeText, "Sam Rivera Data Engineer"))
}

func TestHandler_Execute_ResolvesJobTitle(t *testing.T) {
	tests := []struct {
		name      string
		llmOutput string
		requested string
		want      string
	}{
		{"requested title wins", `{"headline":"Senior Go Engineer","skills":["Go"]}`, " SRE ", "SRE"},
		{"headline when no title", `{"headline":"Senior Go Engineer","skills":["Go"]}`, "", "Senior Go Engineer"},
		{"first skill without headline", `{"skills":["Kubernetes","Go"]}`, "", "Kubernetes"},
		{"default when nothing parsed", `{"skills":[]}`, "", models.DefaultJobTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, &stubLLM{text: tt.llmOutput})

			out, err := h.Execute(context.Background(), &Input{Resume: "Jane Doe", JobTitle: tt.requested})
			require.NoError(t, err)
			assert.Equal(t, models.ParseSourceLLM, out.ParseSource)
			assert.Equal(t, tt.want, out.JobTitle)
		})
	}
}

func TestHandler_Execute_PlainTextFile(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		File:     []byte(resumeText),
		FileName: "cv.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ParseSourceHeuristic, out.ParseSource)
	assert.Equal(t, "sam@example.com", out.ResumeData.Email)
	assert.Equal(t, 5, out.ResumeData.ExperienceYears)
	assert.Contains(t, out.ResumeData.Skills, "Airflow")
}

func TestHandler_Execute_TruncatesResumeText(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{Resume: strings.Repeat("python ", 100)})
	require.NoError(t, err)
	assert.Len(t, out.ResumeText, 200)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode errors.ErrorCode
	}{
		{"empty text", &Input{Resume: "   "}, errors.ErrCodeResumeParseFailed},
		{"unsupported file", &Input{File: []byte("GIF89a"), FileName: "cv.gif", MimeType: "image/gif"}, errors.ErrCodeUnsupportedFileType},
		{"too large", &Input{File: make([]byte, 2*1024*1024), FileName: "cv.txt"}, errors.ErrCodeResumeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, nil)
			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
		})
	}
}

func TestNewConfig(t *testing.T) {
	app := &config.Config{
		Workers:  map[string]config.WorkerConfig{TaskType: {Enabled: true, MaxJobsActive: 2, Timeout: 1500}},
		Security: config.SecurityConfig{MaxUploadMB: 3},
	}
	cfg := NewConfig(app)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, 3, cfg.MaxUploadMB)
	assert.Equal(t, 50000, cfg.MaxResumeChars)
}
