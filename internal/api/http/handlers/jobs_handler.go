package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/careteam-transfer/internal/api/dto"
	"github.com/spec-kit/careteam-transfer/internal/domain"
	"github.com/spec-kit/careteam-transfer/internal/observability"
	"github.com/spec-kit/careteam-transfer/internal/service"
	apperrors "github.com/spec-kit/careteam-transfer/pkg/util"
)

// TransferRunner executes one transfer run per invocation.
type TransferRunner interface {
	Run(ctx context.Context, trigger service.Trigger) (*domain.RunSummary, error)
}

// RunGuard serializes runs per scope.
type RunGuard interface {
	Acquire(ctx context.Context, scope string) (string, bool, error)
	Release(ctx context.Context, scope, token string)
}

// JobsHandler receives scheduler trigger requests.
type JobsHandler struct {
	transfers    TransferRunner
	lock         RunGuard
	metrics      *observability.Metrics
	logger       *zap.Logger
	defaultScope string
}

// NewJobsHandler returns a new handler instance. defaultScope fills in for
// triggers that arrive without a scope of their own.
func NewJobsHandler(transfers TransferRunner, lock RunGuard, metrics *observability.Metrics, logger *zap.Logger, defaultScope string) *JobsHandler {
	return &JobsHandler{transfers: transfers, lock: lock, metrics: metrics, logger: logger, defaultScope: defaultScope}
}

// RunTransfer fires one transfer run from the posted invocation record.
func (h *JobsHandler) RunTransfer(c *fiber.Ctx) error {
	var req dto.TriggerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid trigger payload", map[string]any{"error": err.Error()})
		}
	}

	fireTime := time.Now()
	if req.FireTime != nil {
		fireTime = *req.FireTime
	}
	// The lock must be keyed on the scope the run will actually use, or
	// a scopeless trigger and an explicit one would serialize on
	// different keys for the same network.
	scope := req.Scope
	if scope == "" {
		scope = h.defaultScope
	}
	trigger := service.Trigger{FireTime: fireTime, Scope: scope}
	h.logger.Info("transfer trigger received",
		zap.String("scope", trigger.Scope),
		zap.Time("fire_time", trigger.FireTime))

	ctx := c.UserContext()
	var token string
	if h.lock != nil {
		var acquired bool
		var err error
		token, acquired, err = h.lock.Acquire(ctx, trigger.Scope)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !acquired {
			return apperrors.NewConflict("a transfer run is already in progress", map[string]any{"scope": trigger.Scope})
		}
		defer h.lock.Release(ctx, trigger.Scope, token)
	}

	summary, err := h.transfers.Run(ctx, trigger)
	if summary != nil {
		h.metrics.RecordRun(string(summary.Outcome), summary.Transferred, summary.SkippedByAge, len(summary.Failures))
	}
	if err != nil {
		return err
	}

	return c.JSON(dto.FromRunSummary(summary))
}
