package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-talent/internal/client"
	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
)

// ==========================
// Test Doubles
// ==========================

type fakeAnalyzer struct {
	calls   []string
	results []map[string]any
	err     error
}

func (f *fakeAnalyzer) AnalyzeProfile(ctx context.Context, resume string) (map[string]any, error) {
	f.calls = append(f.calls, resume)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[len(f.calls)-1], nil
}

func postForm(t *testing.T, page *Page, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, req)
	return rec
}

// ==========================
// MatchMeter Tests
// ==========================

func TestMatchMeter_Bands(t *testing.T) {
	tests := []struct {
		score    float64
		color    string
		headline string
	}{
		{92, ColorGreen, "92%"},
		{80.5, ColorGreen, "80.5%"},
		{80, ColorYellow, "80%"},
		{51, ColorYellow, "51%"},
		{50, ColorRed, "50%"},
		{0, ColorRed, "0%"},
		{-5, ColorRed, "-5%"},
		{150, ColorGreen, "150%"},
	}
	for _, tt := range tests {
		m := MatchMeter(tt.score)
		assert.Equal(t, tt.color, m.ColorClass, "score %v", tt.score)
		assert.Equal(t, tt.headline, m.Headline)
		assert.Equal(t, "ATS Shortlist Probability", m.Caption)
	}
}

// ==========================
// Page Tests
// ==========================

func TestPage_Show_Empty(t *testing.T) {
	page := NewPage(&fakeAnalyzer{}, logger.NewTestLogger(t))

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<textarea")
	assert.Contains(t, body, ">Analyze</button>")
	assert.NotContains(t, body, "<pre")
	assert.NotContains(t, body, MeterCaption)
}

func TestPage_Run_RendersResultAndMeter(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []map[string]any{{"score": float64(72), "insights": "a < b"}}}
	page := NewPage(analyzer, logger.NewTestLogger(t))

	rec := postForm(t, page, url.Values{"resume": {"Go developer"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Go developer"}, analyzer.calls)

	body := rec.Body.String()
	assert.Contains(t, body, "Go developer</textarea>")
	assert.Contains(t, body, "72%")
	assert.Contains(t, body, ColorYellow)
	assert.Contains(t, body, MeterCaption)
	assert.Contains(t, body, "&#34;score&#34;: 72")
}

func TestPage_Run_FailureKeepsPreviousResult(t *testing.T) {
	page := NewPage(&fakeAnalyzer{err: &client.APIError{StatusCode: 503, Code: "LLM_UNAVAILABLE", Message: "service unavailable"}}, logger.NewTestLogger(t))

	prev := View{Resume: "old", Result: map[string]any{"score": float64(90)}}
	got := page.Run(context.Background(), View{Resume: "new text", Result: prev.Result})

	assert.Equal(t, "new text", got.Resume)
	assert.Equal(t, prev.Result, got.Result)
	assert.Equal(t, "Analysis failed: service unavailable", got.Error)

	rec := postForm(t, page, url.Values{"resume": {"new text"}, "previous_result": {`{"score":90}`}})
	body := rec.Body.String()
	assert.Contains(t, body, "service unavailable")
	assert.NotContains(t, body, "LLM_UNAVAILABLE")
	assert.Contains(t, body, "90%")
	assert.Contains(t, body, ColorGreen)
}

func TestPage_Run_FailureHidesInternals(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     string
		unwanted []string
	}{
		{
			name:     "standard error shows its message",
			err:      fmt.Errorf("parse node: %w", apperrors.NewResumeParseFailedError("no readable text in resume")),
			want:     "Analysis failed: Resume could not be parsed",
			unwanted: []string{"RESUME_PARSE_FAILED", "no readable text", "parse node"},
		},
		{
			name:     "raw error shows the generic message",
			err:      errors.New("dial tcp 10.0.0.7:6379: connection refused"),
			want:     "Analysis failed: " + apperrors.MsgInternal,
			unwanted: []string{"dial tcp", "6379"},
		},
		{
			name: "api error without body",
			err:  &client.APIError{StatusCode: 502},
			want: "Analysis failed: career api returned status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(&fakeAnalyzer{err: tt.err}, logger.NewTestLogger(t))
			got := page.Run(context.Background(), View{Resume: "text"})
			assert.Equal(t, tt.want, got.Error)
			for _, u := range tt.unwanted {
				assert.NotContains(t, got.Error, u)
			}
		})
	}
}

func TestPage_Run_FailureWithoutResultStaysEmpty(t *testing.T) {
	page := NewPage(&fakeAnalyzer{err: errors.New("boom")}, logger.NewTestLogger(t))

	got := page.Run(context.Background(), View{Resume: "text"})
	assert.Nil(t, got.Result)
	assert.NotEmpty(t, got.Error)
}

func TestPage_Run_ReplacesResultWholesale(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []map[string]any{{"score": float64(40)}, {"top_jobs": []any{}}}}
	page := NewPage(analyzer, logger.NewTestLogger(t))

	v := page.Run(context.Background(), View{Resume: "one"})
	v.Resume = "two"
	v = page.Run(context.Background(), v)

	assert.Equal(t, map[string]any{"top_jobs": []any{}}, v.Result)
	assert.Len(t, analyzer.calls, 2)
}

func TestPage_MethodNotAllowed(t *testing.T) {
	page := NewPage(&fakeAnalyzer{}, logger.NewTestLogger(t))
	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ==========================
// Helper Tests
// ==========================

func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON(map[string]any{"b": []any{float64(1)}, "a": "x<y"})
	assert.Equal(t, "{\n  \"a\": \"x<y\",\n  \"b\": [\n    1\n  ]\n}", got)
}

func TestScoreOf(t *testing.T) {
	s, ok := ScoreOf(map[string]any{"score": float64(64)})
	assert.True(t, ok)
	assert.Equal(t, 64.0, s)

	_, ok = ScoreOf(map[string]any{"score": "64"})
	assert.False(t, ok)

	_, ok = ScoreOf(map[string]any{})
	assert.False(t, ok)
}
