package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	apperrors "github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/validator"
)

// maxLoggedValidationErrors caps how many field errors go into one log record
const maxLoggedValidationErrors = 5

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// outcome maps an operation error to the status label and level it is logged at
func outcome(err error) (string, slog.Level) {
	switch {
	case err == nil:
		return "success", slog.LevelInfo
	case IsValidation(err):
		return "validation_error", slog.LevelWarn
	case IsUnauthorized(err):
		return "unauthorized", slog.LevelWarn
	case IsNotFound(err):
		return "not_found", slog.LevelInfo
	case IsConflict(err):
		return "conflict", slog.LevelWarn
	case IsConfiguration(err):
		return "configuration_error", slog.LevelError
	default:
		return "error", slog.LevelError
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, actorID, resourceID, resourceType string, duration time.Duration, err error) {
	status, level := outcome(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("actor_id", actorID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if errs := validator.ToValidationErrors(err); len(errs) > 0 {
			attrs = append(attrs, slog.Int("validation_errors_count", len(errs)))
		}
	}

	if level == slog.LevelError {
		// skip LogOperation and LogResult
		if pc, file, line, ok := runtime.Caller(2); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				attrs = append(attrs,
					slog.String("caller_func", fn.Name()),
					slog.String("caller_file", file),
					slog.Int("caller_line", line),
				)
			}
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation, actorID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("actor_id", actorID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, verr := range validationErrors {
		if i == maxLoggedValidationErrors {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.String("field", verr.Field),
			slog.String("message", verr.Message),
			slog.Any("value", verr.Value),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

func (l *ServiceLogger) LogPermissionDenied(ctx context.Context, operation string, permError *PermissionError) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Permission denied",
		slog.String("operation", operation),
		slog.String("actor_id", permError.ActorID),
		slog.String("resource_id", permError.ResourceID),
		slog.String("resource_type", permError.Resource),
		slog.String("action", permError.Action),
		slog.String("reason", permError.Reason),
	)
}

// LogConfigurationDefect reports a broken questionnaire or lookup table.
// Requests cannot succeed until an operator reseeds.
func (l *ServiceLogger) LogConfigurationDefect(ctx context.Context, operation string, err error) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Bool("data_seeding_defect", true),
		slog.String("error", err.Error()),
	}

	var ce *apperrors.ConfigurationError
	if errors.As(err, &ce) {
		attrs = append(attrs, slog.String("config_component", ce.Component))
	}

	l.logger.LogAttrs(ctx, slog.LevelError, "Configuration defect", attrs...)
}

// ===== AUDIT LOGGING =====

// AuditEvent mirrors a review-trail row for the log stream
type AuditEvent struct {
	Action       models.ReviewAction
	Actor        models.Actor
	AssessmentID string
	FromState    models.ReviewState
	ToState      models.ReviewState
	Timestamp    time.Time
	Metadata     map[string]interface{}
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("action", string(event.Action)),
		slog.String("actor_id", event.Actor.ID),
		slog.String("actor_role", string(event.Actor.Role)),
		slog.String("assessment_id", event.AssessmentID),
		slog.String("to_state", string(event.ToState)),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.FromState != "" {
		attrs = append(attrs, slog.String("from_state", string(event.FromState)))
	}
	for key, value := range event.Metadata {
		attrs = append(attrs, slog.Any("meta_"+key, value))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s assessment", event.Action), attrs...)
}

// OperationLog times one service call and logs its result
type OperationLog struct {
	logger    *ServiceLogger
	operation string
	actorID   string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, actorID string) *OperationLog {
	return &OperationLog{
		logger:    l,
		operation: operation,
		actorID:   actorID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (o *OperationLog) LogResult(resourceID, resourceType string, err error) {
	o.logger.LogOperation(o.ctx, o.operation, o.actorID, resourceID, resourceType, time.Since(o.startTime), err)
	if err == nil {
		return
	}

	var permErr *PermissionError
	switch {
	case IsConfiguration(err):
		o.logger.LogConfigurationDefect(o.ctx, o.operation, err)
	case errors.As(err, &permErr):
		o.logger.LogPermissionDenied(o.ctx, o.operation, permErr)
	default:
		if errs := validator.ToValidationErrors(err); len(errs) > 0 {
			o.logger.LogValidationError(o.ctx, o.operation, o.actorID, errs)
		}
	}
}
