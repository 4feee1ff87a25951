// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/validation"
)

// JobHandler completes or fails the job itself, as the career workers do.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker is an open job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. The caller owns the Zeebe
// client and closes it after every worker has stopped.
func NewWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) *Worker {
	l := log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	l.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &Worker{
		worker:   jobWorker,
		logger:   l,
		taskType: taskType,
	}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the worker and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

type validatingHandler struct {
	next       JobHandler
	schema     *validation.Schema
	errHandler *errors.ErrorHandler
}

// WithInputValidation rejects jobs whose variables do not match schema
// before next sees them. A nil schema returns next unchanged.
func WithInputValidation(next JobHandler, schema *validation.Schema, log logger.Logger) JobHandler {
	if schema == nil {
		return next
	}
	return &validatingHandler{
		next:       next,
		schema:     schema,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (v *validatingHandler) Handle(client worker.JobClient, job entities.Job) {
	result := v.schema.ValidateJSON(job.Variables)
	if result.Valid {
		v.next.Handle(client, job)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v.errHandler.HandleJobError(ctx, client, job,
		errors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; ")))
}
