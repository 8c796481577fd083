package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/careteam-transfer/internal/api/http"
	"github.com/spec-kit/careteam-transfer/internal/api/http/handlers"
	"github.com/spec-kit/careteam-transfer/internal/domain"
	"github.com/spec-kit/careteam-transfer/internal/observability"
	"github.com/spec-kit/careteam-transfer/internal/service"
	apperrors "github.com/spec-kit/careteam-transfer/pkg/util"
)

type stubRunner struct {
	summary *domain.RunSummary
	err     error
	trigger service.Trigger
}

func (s *stubRunner) Run(_ context.Context, trigger service.Trigger) (*domain.RunSummary, error) {
	s.trigger = trigger
	return s.summary, s.err
}

type fakeGuard struct {
	held          bool
	acquiredScope string
	releasedScope string
	releasedToken string
}

func (g *fakeGuard) Acquire(_ context.Context, scope string) (string, bool, error) {
	g.acquiredScope = scope
	if g.held {
		return "", false, nil
	}
	return "guard-token", true, nil
}

func (g *fakeGuard) Release(_ context.Context, scope, token string) {
	g.releasedScope = scope
	g.releasedToken = token
}

func newTestApp(runner *stubRunner, guard handlers.RunGuard) *fiber.App {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	handler := handlers.NewJobsHandler(runner, guard, observability.NewMetrics(), zap.NewNop(), "mercy-health")
	app.Post("/jobs/transfer/run", handler.RunTransfer)
	return app
}

func TestRunTransferReturnsSummary(t *testing.T) {
	fireTime := time.Date(2026, time.June, 15, 3, 0, 0, 0, time.UTC)
	runner := &stubRunner{summary: &domain.RunSummary{
		RunID:       "run-1",
		Outcome:     domain.RunCompleted,
		Scope:       "mercy-health",
		FireTime:    fireTime,
		Scanned:     3,
		Transferred: 2,
	}}
	app := newTestApp(runner, nil)

	body, _ := json.Marshal(map[string]any{
		"fire_time": fireTime,
		"scope":     "mercy-health",
	})
	req := httptest.NewRequest(fiber.MethodPost, "/jobs/transfer/run", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		RunID       string `json:"run_id"`
		Outcome     string `json:"outcome"`
		Transferred int    `json:"transferred"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.RunID != "run-1" || got.Outcome != "COMPLETED" || got.Transferred != 2 {
		t.Fatalf("unexpected response: %+v", got)
	}

	if !runner.trigger.FireTime.Equal(fireTime) || runner.trigger.Scope != "mercy-health" {
		t.Fatalf("trigger not passed through: %+v", runner.trigger)
	}
}

func TestRunTransferMapsConfigurationError(t *testing.T) {
	runner := &stubRunner{
		summary: &domain.RunSummary{Outcome: domain.RunFailed},
		err:     apperrors.NewConfigurationError("there is no network associated with the scope name", nil),
	}
	app := newTestApp(runner, nil)

	req := httptest.NewRequest(fiber.MethodPost, "/jobs/transfer/run", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	var got struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Error.Code != "CONFIGURATION_ERROR" {
		t.Fatalf("error code = %s, want CONFIGURATION_ERROR", got.Error.Code)
	}
}

func TestRunTransferLocksEffectiveScope(t *testing.T) {
	runner := &stubRunner{summary: &domain.RunSummary{Outcome: domain.RunCompleted}}
	guard := &fakeGuard{}
	app := newTestApp(runner, guard)

	// A scopeless trigger must lock the same key a --once run for the
	// configured scope would, not an empty one.
	req := httptest.NewRequest(fiber.MethodPost, "/jobs/transfer/run", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if guard.acquiredScope != "mercy-health" {
		t.Fatalf("lock acquired for scope %q, want mercy-health", guard.acquiredScope)
	}
	if runner.trigger.Scope != "mercy-health" {
		t.Fatalf("trigger scope = %q, want mercy-health", runner.trigger.Scope)
	}
	if guard.releasedScope != "mercy-health" || guard.releasedToken != "guard-token" {
		t.Fatalf("release scope=%q token=%q, want mercy-health/guard-token", guard.releasedScope, guard.releasedToken)
	}
}

func TestRunTransferRefusedWhileRunInProgress(t *testing.T) {
	runner := &stubRunner{summary: &domain.RunSummary{Outcome: domain.RunCompleted}}
	guard := &fakeGuard{held: true}
	app := newTestApp(runner, guard)

	req := httptest.NewRequest(fiber.MethodPost, "/jobs/transfer/run", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	var got struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Error.Code != "CONFLICT" {
		t.Fatalf("error code = %s, want CONFLICT", got.Error.Code)
	}
	if runner.trigger.Scope != "" {
		t.Fatal("runner invoked despite held lock")
	}
}

func TestRunTransferRejectsMalformedBody(t *testing.T) {
	runner := &stubRunner{summary: &domain.RunSummary{Outcome: domain.RunCompleted}}
	app := newTestApp(runner, nil)

	req := httptest.NewRequest(fiber.MethodPost, "/jobs/transfer/run", bytes.NewReader([]byte("{not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
