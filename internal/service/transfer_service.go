package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/careteam-transfer/internal/config"
	"github.com/spec-kit/careteam-transfer/internal/domain"
	"github.com/spec-kit/careteam-transfer/internal/events"
	"github.com/spec-kit/careteam-transfer/internal/repository"
	apperrors "github.com/spec-kit/careteam-transfer/pkg/util"
)

// Trigger is the invocation record supplied by the external scheduler.
type Trigger struct {
	FireTime time.Time
	Scope    string
}

// TransferService moves patients who have turned adult off pediatric
// candidate teams and onto the matching adult candidate team.
type TransferService struct {
	networks    repository.NetworkRepository
	eligibility repository.EligibilityRepository
	careteams   repository.CareTeamRepository
	memberships repository.MembershipRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	cfg         config.JobConfig
	now         func() time.Time
}

// TransferDependencies bundles collaborators.
type TransferDependencies struct {
	NetworkRepo     repository.NetworkRepository
	EligibilityRepo repository.EligibilityRepository
	CareTeamRepo    repository.CareTeamRepository
	MembershipRepo  repository.MembershipRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	// Clock overrides the age reference time; nil means time.Now.
	Clock func() time.Time
}

// NewTransferService creates the service.
func NewTransferService(cfg config.JobConfig, deps TransferDependencies) *TransferService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		networks:    deps.NetworkRepo,
		eligibility: deps.EligibilityRepo,
		careteams:   deps.CareTeamRepo,
		memberships: deps.MembershipRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		cfg:         cfg,
		now:         now,
	}
}

// Run executes one invocation. Fatal conditions (unknown scope, failed
// scan) return an error alongside a summary with outcome FAILED; a blocked
// gate or a finished pass return a nil error. Per-patient failures are
// recorded on the summary and never abort the remaining candidates.
func (s *TransferService) Run(ctx context.Context, trigger Trigger) (*domain.RunSummary, error) {
	scope := trigger.Scope
	if scope == "" {
		scope = s.cfg.ScopeName
	}

	summary := &domain.RunSummary{
		RunID:     uuid.NewString(),
		Scope:     scope,
		FireTime:  trigger.FireTime,
		StartedAt: s.now(),
	}

	if !ShouldRun(trigger.FireTime) {
		summary.Outcome = domain.RunSkipped
		summary.FinishedAt = s.now()
		s.logger.Info("transfer run skipped: last day of the month",
			zap.String("run_id", summary.RunID),
			zap.Time("fire_time", trigger.FireTime))
		s.publish(ctx, events.EventRunSkipped, summary, events.RunSkippedPayload{
			FireTime: trigger.FireTime,
			Reason:   "last day of month",
		})
		return summary, nil
	}

	if scope == "" {
		return s.failRun(ctx, summary, apperrors.NewConfigurationError("no network scope configured", nil))
	}

	network, err := s.networks.GetByName(ctx, scope)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.failRun(ctx, summary, apperrors.NewConfigurationError(
				"there is no network associated with the scope name",
				map[string]any{"scope": scope}))
		}
		return s.failRun(ctx, summary, apperrors.NewStoreError(err))
	}
	summary.NetworkID = network.ID

	s.logger.Info("transfer run started",
		zap.String("run_id", summary.RunID),
		zap.String("network_acronym", network.Acronym),
		zap.Time("fire_time", trigger.FireTime))
	s.publish(ctx, events.EventRunStarted, summary, events.RunStartedPayload{
		NetworkID: network.ID,
		Acronym:   network.Acronym,
		FireTime:  trigger.FireTime,
	})

	candidates, err := s.eligibility.FindCandidates(ctx, network.ID)
	if err != nil {
		return s.failRun(ctx, summary, apperrors.NewStoreError(err))
	}
	summary.Scanned = len(candidates)

	for _, candidate := range candidates {
		s.processCandidate(ctx, candidate, summary)
	}

	summary.Outcome = domain.RunCompleted
	summary.FinishedAt = s.now()
	s.logger.Info("transfer run completed",
		zap.String("run_id", summary.RunID),
		zap.String("network_acronym", network.Acronym),
		zap.Int("scanned", summary.Scanned),
		zap.Int("transferred", summary.Transferred),
		zap.Int("skipped_by_age", summary.SkippedByAge),
		zap.Int("failed", len(summary.Failures)))
	s.publish(ctx, events.EventRunCompleted, summary, events.RunCompletedPayload{
		Scanned:      summary.Scanned,
		Transferred:  summary.Transferred,
		SkippedByAge: summary.SkippedByAge,
		Failed:       len(summary.Failures),
	})
	return summary, nil
}

// failRun terminates the run fatally, emitting the failure to the
// observability sink before handing the error back to the caller.
func (s *TransferService) failRun(ctx context.Context, summary *domain.RunSummary, err error) (*domain.RunSummary, error) {
	summary.Outcome = domain.RunFailed
	summary.FinishedAt = s.now()
	domainErr := apperrors.ToDomainError(err)
	s.logger.Error("transfer run failed",
		zap.String("run_id", summary.RunID),
		zap.String("scope", summary.Scope),
		zap.String("code", domainErr.Code),
		zap.Error(err))
	s.publish(ctx, events.EventRunFailed, summary, events.RunFailedPayload{
		FireTime: summary.FireTime,
		Code:     domainErr.Code,
		Message:  domainErr.Error(),
	})
	return summary, err
}

func (s *TransferService) processCandidate(ctx context.Context, candidate domain.TransferCandidate, summary *domain.RunSummary) {
	age := YearsBetween(candidate.DateOfBirth, s.now())
	if age < s.cfg.AdultAgeYears {
		summary.SkippedByAge++
		return
	}

	adultTeamID, err := s.careteams.ResolveAdultTeam(ctx, candidate.PediatricTeamID, s.cfg.ProgramTag)
	if err != nil {
		s.recordFailure(ctx, summary, candidate, "", resolutionFailure(err), err)
		return
	}

	if err := s.memberships.Transfer(ctx, candidate.PatientID, candidate.PediatricTeamID, adultTeamID); err != nil {
		if errors.Is(err, repository.ErrMembershipChanged) {
			summary.Failures = append(summary.Failures, domain.TransferFailure{
				PatientID:  candidate.PatientID,
				FromTeamID: candidate.PediatricTeamID,
				ToTeamID:   adultTeamID,
				Kind:       domain.FailureConflict,
				Message:    err.Error(),
			})
			s.logger.Info("patient already moved off pediatric team",
				zap.String("run_id", summary.RunID),
				zap.String("patient_id", candidate.PatientID))
			return
		}
		s.recordFailure(ctx, summary, candidate, adultTeamID, domain.FailureStore, err)
		return
	}

	summary.Transferred++
	s.publish(ctx, events.EventPatientTransferred, summary, events.PatientTransferredPayload{
		PatientID:  candidate.PatientID,
		ExternalID: candidate.ExternalID,
		FromTeamID: candidate.PediatricTeamID,
		ToTeamID:   adultTeamID,
		Age:        age,
	})
}

func resolutionFailure(err error) domain.FailureKind {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrAmbiguousAdultTeam) {
		return domain.FailureResolution
	}
	return domain.FailureStore
}

func (s *TransferService) recordFailure(ctx context.Context, summary *domain.RunSummary, candidate domain.TransferCandidate, toTeamID string, kind domain.FailureKind, err error) {
	failure := domain.TransferFailure{
		PatientID:  candidate.PatientID,
		FromTeamID: candidate.PediatricTeamID,
		ToTeamID:   toTeamID,
		Kind:       kind,
		Message:    err.Error(),
	}
	summary.Failures = append(summary.Failures, failure)
	s.logger.Error("patient transfer failed",
		zap.String("run_id", summary.RunID),
		zap.String("patient_id", candidate.PatientID),
		zap.String("pediatric_team_id", candidate.PediatricTeamID),
		zap.String("kind", string(kind)),
		zap.Error(err))
	s.publish(ctx, events.EventTransferFailed, summary, events.TransferFailedPayload{
		PatientID:  candidate.PatientID,
		FromTeamID: candidate.PediatricTeamID,
		ToTeamID:   toTeamID,
		Kind:       kind,
		Message:    err.Error(),
	})
}

func (s *TransferService) publish(ctx context.Context, eventType events.EventType, summary *domain.RunSummary, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     summary.RunID,
		Scope:     summary.Scope,
		Timestamp: s.now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
