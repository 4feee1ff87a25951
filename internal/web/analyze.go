// Package web serves the server-rendered Analyze page.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
)

//go:embed templates/analyze.html
var templatesFS embed.FS

var analyzeTemplate = template.Must(template.ParseFS(templatesFS, "templates/analyze.html"))

// ProfileAnalyzer is the single outbound call the page makes.
type ProfileAnalyzer interface {
	AnalyzeProfile(ctx context.Context, resume string) (map[string]any, error)
}

// View is the page state. Result is nil until an analysis succeeds.
type View struct {
	Resume string
	Result map[string]any
	Error  string
}

// pageModel is what the template sees.
type pageModel struct {
	Resume         string
	Error          string
	Meter          *Meter
	ResultJSON     string
	PreviousResult string
}

type Page struct {
	analyzer ProfileAnalyzer
	logger   logger.Logger
}

func NewPage(analyzer ProfileAnalyzer, log logger.Logger) *Page {
	return &Page{
		analyzer: analyzer,
		logger:   log.WithFields(map[string]interface{}{"component": "analyze-page"}),
	}
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p.Show(w, View{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			p.Show(w, View{Error: "Could not read the submitted form."})
			return
		}
		prev := View{
			Resume: r.PostFormValue("resume"),
			Result: decodeResult(r.PostFormValue("previous_result")),
		}
		p.Show(w, p.Run(r.Context(), prev))
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// Run makes exactly one analyzeProfile call. On success the result is
// replaced; on failure the previous result is kept and Error is set.
func (p *Page) Run(ctx context.Context, view View) View {
	result, err := p.analyzer.AnalyzeProfile(ctx, view.Resume)
	if err != nil {
		p.logger.Warn("profile analysis failed", map[string]interface{}{"error": err.Error()})
		view.Error = "Analysis failed: " + failureMessage(err)
		return view
	}
	view.Result = result
	view.Error = ""
	return view
}

// Show renders the page for view.
func (p *Page) Show(w http.ResponseWriter, view View) {
	model := pageModel{Resume: view.Resume, Error: view.Error}
	if view.Result != nil {
		model.ResultJSON = PrettyJSON(view.Result)
		if compact, err := json.Marshal(view.Result); err == nil {
			model.PreviousResult = string(compact)
		}
		if score, ok := ScoreOf(view.Result); ok {
			m := MatchMeter(score)
			model.Meter = &m
		}
	}

	var buf bytes.Buffer
	if err := analyzeTemplate.Execute(&buf, model); err != nil {
		p.logger.Error("failed to render analyze page", map[string]interface{}{"error": err.Error()})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// PrettyJSON indents v with two spaces and leaves HTML characters unescaped.
func PrettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// ScoreOf returns the numeric "score" of a result.
func ScoreOf(result map[string]any) (float64, bool) {
	switch v := result["score"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func decodeResult(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// failureMessage keeps error codes and internal details out of the page.
func failureMessage(err error) string {
	var user interface{ UserMessage() string }
	if errors.As(err, &user) {
		return user.UserMessage()
	}
	return apperrors.AsStandardError(err).Message
}
