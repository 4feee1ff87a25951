// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/security"
	"nexus-talent/internal/common/validation"
	"nexus-talent/internal/models"
	"nexus-talent/internal/orchestration"
)

const analyzeRequestSchemaJSON = `{
  "type": "object",
  "required": ["resume"],
  "properties": {
    "resume": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "job_title": {"type": "string", "maxLength": 200},
    "location": {"type": "string", "maxLength": 200},
    "job_description": {"type": "string", "maxLength": 20000},
    "notify_email": {"type": "string", "maxLength": 254}
  }
}`

var analyzeRequestSchema = validation.MustSchema(analyzeRequestSchemaJSON)

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError hides internal details; other codes are reported as they are.
func writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	resp := ErrorResponse{Code: string(stdErr.Code), Message: stdErr.Message, Details: stdErr.Details}
	status := apperrors.HTTPStatus(stdErr.Code)
	if stdErr.Code == apperrors.ErrCodeInternal {
		resp.Message = apperrors.MsgInternal
	}
	if status >= http.StatusInternalServerError {
		resp.Details = ""
	}
	writeJSON(w, status, resp)
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.config.MaxUploadMB) * 1024 * 1024
}

// decodeAnalyzeRequest reads and validates a JSON analyze body. It writes the
// error response itself and reports false on failure.
func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*models.AnalyzeRequest, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, apperrors.NewResumeTooLargeError(tooLarge.Limit+1, s.config.MaxUploadMB))
			return nil, false
		}
		writeError(w, apperrors.NewInvalidRequestError(err.Error()))
		return nil, false
	}

	if result := analyzeRequestSchema.ValidateJSON(string(body)); !result.Valid {
		writeError(w, apperrors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; ")))
		return nil, false
	}

	var req models.AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperrors.NewInvalidRequestError(err.Error()))
		return nil, false
	}
	if req.NotifyEmail != "" && !validation.ValidateEmail(req.NotifyEmail) {
		writeError(w, apperrors.NewInvalidRequestError("notify_email: invalid e-mail address"))
		return nil, false
	}
	return &req, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	s.runAnalysis(w, r, orchestration.Request{
		Resume:         req.Resume,
		JobTitle:       req.JobTitle,
		Location:       req.Location,
		JobDescription: req.JobDescription,
		NotifyEmail:    req.NotifyEmail,
	})
}

// WorkflowVariables seed a career-analysis process instance. Names match the
// job variables the career workers read.
type WorkflowVariables struct {
	Resume         string `json:"resume"`
	JobTitle       string `json:"jobTitle,omitempty"`
	Location       string `json:"location"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// WorkflowStarted is the 202 body of the workflow endpoint.
type WorkflowStarted struct {
	ProcessID          string `json:"processId"`
	ProcessInstanceKey int64  `json:"processInstanceKey"`
}

func (s *Server) handleStartWorkflow(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflow == nil {
		writeError(w, apperrors.NewWorkflowUnavailableError("start_process", stderrors.New("workflow engine not configured")))
		return
	}
	req, ok := s.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = orchestration.DefaultLocation
	}
	vars := WorkflowVariables{
		Resume:         req.Resume,
		JobTitle:       strings.TrimSpace(req.JobTitle),
		Location:       location,
		JobDescription: req.JobDescription,
	}

	key, err := s.deps.Workflow.StartProcess(r.Context(), s.config.ProcessID, vars)
	if err != nil {
		s.requestLogger(r).Error("failed to start process", map[string]interface{}{
			"processId": s.config.ProcessID,
			"error":     err.Error(),
		})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, WorkflowStarted{ProcessID: s.config.ProcessID, ProcessInstanceKey: key})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1024*1024)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, apperrors.NewResumeTooLargeError(tooLarge.Limit, s.config.MaxUploadMB))
			return
		}
		writeError(w, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, apperrors.NewInvalidRequestError("resume: file is required"))
		return
	}
	defer file.Close()

	if err := security.ValidateFileSize(header.Size, s.config.MaxUploadMB); err != nil {
		writeError(w, err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	notify := strings.TrimSpace(r.FormValue("notify_email"))
	if notify != "" && !validation.ValidateEmail(notify) {
		writeError(w, apperrors.NewInvalidRequestError("notify_email: invalid e-mail address"))
		return
	}

	s.runAnalysis(w, r, orchestration.Request{
		File:           data,
		FileName:       header.Filename,
		MimeType:       header.Header.Get("Content-Type"),
		JobTitle:       r.FormValue("job_title"),
		Location:       r.FormValue("location"),
		JobDescription: r.FormValue("job_description"),
		NotifyEmail:    notify,
	})
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, req orchestration.Request) {
	log := s.requestLogger(r)
	log.Info("starting analysis", map[string]interface{}{
		"jobTitle": req.JobTitle,
		"location": req.Location,
	})

	state, err := s.deps.Analyzer.Run(r.Context(), req)
	if err != nil {
		log.Error("workflow failed", map[string]interface{}{"error": err.Error()})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state.Response())
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, apperrors.NewStorageNotConfiguredError())
		return
	}
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, apperrors.NewAnalysisNotFoundError(id))
		return
	}
	analysis, err := s.deps.History.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, apperrors.NewStorageNotConfiguredError())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.NewInvalidRequestError("limit: must be an integer"))
			return
		}
		limit = n
	}

	items, err := s.deps.History.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": items})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "engine": "active"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.ReadyTimeout)
	defer cancel()

	checks := make(map[string]string, len(s.deps.Ready))
	ready := true
	for name, p := range s.deps.Ready {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	body := map[string]interface{}{"status": "ready", "checks": checks}
	if !ready {
		status = http.StatusServiceUnavailable
		body["status"] = "not_ready"
	}
	writeJSON(w, status, body)
}
