package formation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/parishlabs/lifelines/internal/lifeline"
	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/platform/id"
	"github.com/parishlabs/lifelines/internal/storage"
	"github.com/parishlabs/lifelines/internal/user"
)

var tracer = otel.Tracer("github.com/parishlabs/lifelines/internal/formation")

// LeaderWelcome carries everything the welcome notification needs. The
// one-time password is empty when an existing account was reused.
type LeaderWelcome struct {
	Email           string
	DisplayName     string
	OneTimePassword string
	LifeLineTitle   string
}

// Notifier delivers leader welcome notifications. Delivery is best-effort;
// the approval transaction never waits on it and never rolls back for it.
type Notifier interface {
	SendLeaderWelcome(ctx context.Context, welcome LeaderWelcome) error
}

// EvaluationOutcome reports one evaluate-and-transition run.
type EvaluationOutcome struct {
	RequestID string
	Decision  Decision
	// Applied is true when this run committed a state transition. A lost
	// status race or a pending verdict leaves it false.
	Applied bool
}

// SweepResult reports the sweep outcome for one submitted request.
type SweepResult struct {
	RequestID string
	Outcome   string
	Reason    string
}

// Sweep outcomes.
const (
	SweepOutcomeApproved = "approved"
	SweepOutcomeRejected = "rejected"
	SweepOutcomePending  = "pending"
	SweepOutcomeError    = "error"
)

// Service orchestrates the formation workflow over the persistence boundary.
type Service struct {
	requests storage.RequestStore
	votes    storage.VoteStore
	users    storage.UserStore
	notifier Notifier

	logger *log.Logger
	clock  func() time.Time
	newID  func() (string, error)
}

// Option adjusts optional Service collaborators.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides the service ID generator.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(s *Service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds the formation service. The notifier may be nil, in which
// case welcome notifications are skipped.
func NewService(requests storage.RequestStore, votes storage.VoteStore, users storage.UserStore, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		requests: requests,
		votes:    votes,
		users:    users,
		notifier: notifier,
		logger:   log.Default(),
		clock:    time.Now,
		newID:    id.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest validates and persists a new formation request.
func (s *Service) SubmitRequest(ctx context.Context, input SubmitInput) (FormationRequest, error) {
	request, err := Create(input, s.clock, s.newID)
	if err != nil {
		return FormationRequest{}, err
	}
	if err := s.requests.PutFormationRequest(ctx, requestToRecord(request)); err != nil {
		return FormationRequest{}, fmt.Errorf("store formation request: %w", err)
	}
	return request, nil
}

// GetRequest fetches one formation request.
func (s *Service) GetRequest(ctx context.Context, requestID string) (FormationRequest, error) {
	record, err := s.requests.GetFormationRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return FormationRequest{}, apperrors.New(apperrors.CodeNotFound, "formation request not found")
		}
		return FormationRequest{}, fmt.Errorf("get formation request: %w", err)
	}
	return requestFromRecord(record)
}

// ListRequestsByStatus lists formation requests in one status, oldest first.
func (s *Service) ListRequestsByStatus(ctx context.Context, status Status) ([]FormationRequest, error) {
	records, err := s.requests.ListFormationRequestsByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("list formation requests: %w", err)
	}
	requests := make([]FormationRequest, 0, len(records))
	for _, record := range records {
		request, err := requestFromRecord(record)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// CastVote upserts one support-team vote and immediately re-evaluates the
// auto-approval policy for the request. The vote is persisted even when the
// triggered transition cannot complete; the sweep picks the request up later.
func (s *Service) CastVote(ctx context.Context, input CastVoteInput) (Vote, EvaluationOutcome, error) {
	input, value, err := NormalizeCastVoteInput(input)
	if err != nil {
		return Vote{}, EvaluationOutcome{}, err
	}

	request, err := s.GetRequest(ctx, input.RequestID)
	if err != nil {
		return Vote{}, EvaluationOutcome{}, err
	}
	if request.Status != StatusSubmitted {
		return Vote{}, EvaluationOutcome{}, ErrAlreadyResolved
	}

	now := s.clock().UTC()
	vote := Vote{
		RequestID: input.RequestID,
		VoterID:   input.VoterID,
		Value:     value,
		Comment:   input.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.votes.UpsertVote(ctx, voteToRecord(vote)); err != nil {
		return Vote{}, EvaluationOutcome{}, fmt.Errorf("store vote: %w", err)
	}

	outcome, err := s.evaluateAndTransition(ctx, input.RequestID)
	if err != nil {
		// The vote itself is committed; the request stays submitted and the
		// sweep retries the transition.
		s.logger.Printf("formation: evaluation after vote on %s failed: %v", input.RequestID, err)
		return vote, EvaluationOutcome{RequestID: input.RequestID, Decision: Decision{Verdict: VerdictPending, Reason: "evaluation deferred"}}, nil
	}
	return vote, outcome, nil
}

// ListVotes lists the current vote ledger for one request.
func (s *Service) ListVotes(ctx context.Context, requestID string) ([]Vote, error) {
	records, err := s.votes.ListVotesByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	votes := make([]Vote, 0, len(records))
	for _, record := range records {
		value, err := ParseVoteValue(record.Value)
		if err != nil {
			return nil, fmt.Errorf("vote %s/%s: %w", record.RequestID, record.VoterID, err)
		}
		votes = append(votes, Vote{
			RequestID: record.RequestID,
			VoterID:   record.VoterID,
			Value:     value,
			Comment:   record.Comment,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		})
	}
	return votes, nil
}

// Tally aggregates the current votes for one request.
func (s *Service) Tally(ctx context.Context, requestID string) (Tally, error) {
	record, err := s.votes.TallyVotes(ctx, requestID)
	if err != nil {
		return Tally{}, fmt.Errorf("tally votes: %w", err)
	}
	return Tally{
		Approve: record.Approve,
		Object:  record.Object,
		Discuss: record.Discuss,
		Pass:    record.Pass,
	}, nil
}

// OnSweepTick runs one evaluate-and-transition pass for a single request.
func (s *Service) OnSweepTick(ctx context.Context, requestID string) (EvaluationOutcome, error) {
	return s.evaluateAndTransition(ctx, requestID)
}

// SweepPending re-evaluates every submitted request. One request's failure is
// reported and never aborts the rest of the sweep.
func (s *Service) SweepPending(ctx context.Context) ([]SweepResult, error) {
	ctx, span := tracer.Start(ctx, "formation.sweep")
	defer span.End()

	records, err := s.requests.ListFormationRequestsByStatus(ctx, string(StatusSubmitted))
	if err != nil {
		return nil, fmt.Errorf("list submitted requests: %w", err)
	}

	results := make([]SweepResult, 0, len(records))
	for _, record := range records {
		outcome, err := s.evaluateAndTransition(ctx, record.ID)
		if err != nil {
			s.logger.Printf("formation: sweep evaluation of %s failed: %v", record.ID, err)
			results = append(results, SweepResult{RequestID: record.ID, Outcome: SweepOutcomeError, Reason: err.Error()})
			continue
		}
		results = append(results, sweepResultFromOutcome(outcome))
	}
	span.SetAttributes(attribute.Int("formation.sweep.requests", len(records)))
	return results, nil
}

// ArchiveRequest withdraws a submitted request. It is the only path to the
// archived status and is never reachable from vote or sweep evaluation.
func (s *Service) ArchiveRequest(ctx context.Context, requestID string, adminNote string) error {
	err := s.requests.ResolveFormationRequest(ctx, requestID, string(StatusSubmitted), string(StatusArchived), adminNote, s.clock().UTC())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.New(apperrors.CodeNotFound, "formation request not found")
	case errors.Is(err, storage.ErrConflict):
		return ErrAlreadyResolved
	case err != nil:
		return fmt.Errorf("archive formation request: %w", err)
	}
	return nil
}

// evaluateAndTransition is the single evaluation path shared by vote triggers
// and sweep ticks. The conditional status update inside storage decides the
// winner when both race on the same request.
func (s *Service) evaluateAndTransition(ctx context.Context, requestID string) (EvaluationOutcome, error) {
	ctx, span := tracer.Start(ctx, "formation.evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("formation.request_id", requestID))

	request, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return EvaluationOutcome{}, err
	}
	outcome := EvaluationOutcome{RequestID: requestID}
	if request.Status != StatusSubmitted {
		outcome.Decision = Decision{Verdict: VerdictPending, Reason: "request already resolved"}
		return outcome, nil
	}

	tally, err := s.Tally(ctx, requestID)
	if err != nil {
		return EvaluationOutcome{}, err
	}
	outcome.Decision = Evaluate(tally)

	switch outcome.Decision.Verdict {
	case VerdictReject:
		err := s.requests.ResolveFormationRequest(ctx, requestID, string(StatusSubmitted), string(StatusRejected), outcome.Decision.Reason, s.clock().UTC())
		if errors.Is(err, storage.ErrConflict) {
			// Another evaluation resolved the request first.
			return outcome, nil
		}
		if err != nil {
			return EvaluationOutcome{}, fmt.Errorf("reject formation request: %w", err)
		}
		outcome.Applied = true
	case VerdictApprove:
		applied, err := s.approve(ctx, request)
		if err != nil {
			return EvaluationOutcome{}, err
		}
		outcome.Applied = applied
	case VerdictPending:
	}
	span.SetAttributes(
		attribute.String("formation.verdict", string(outcome.Decision.Verdict)),
		attribute.Bool("formation.applied", outcome.Applied),
	)
	return outcome, nil
}

// approve runs the approval executor: resolve the leader account, then commit
// the status transition together with the new LifeLine, then notify.
func (s *Service) approve(ctx context.Context, request FormationRequest) (bool, error) {
	candidate, oneTimePassword, err := user.NewLeaderCandidate(request.LeaderEmail, request.LeaderName, s.clock, s.newID)
	if err != nil {
		return false, fmt.Errorf("build leader candidate: %w", err)
	}

	// Upserting the leader outside the approval transaction is safe: the
	// statement is atomic and idempotent per email, so a retried or racing
	// approval resolves to the same account.
	leader, created, err := s.users.UpsertLeaderByEmail(ctx, userToRecord(candidate))
	if err != nil {
		return false, fmt.Errorf("resolve leader account: %w", err)
	}

	lifeLineID, err := s.newID()
	if err != nil {
		return false, fmt.Errorf("generate lifeline id: %w", err)
	}
	now := s.clock().UTC()
	group := storage.LifeLineRecord{
		ID:                 lifeLineID,
		Title:              request.Title,
		Description:        request.Description,
		Frequency:          request.Frequency,
		MeetingDay:         request.MeetingDay,
		MeetingTime:        request.MeetingTime,
		GroupType:          request.GroupType,
		TargetStage:        request.TargetStage,
		Status:             string(lifeline.StatusDraft),
		LeaderID:           leader.ID,
		FormationRequestID: request.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.requests.ApproveFormationRequest(ctx, request.ID, group, now)
	if errors.Is(err, storage.ErrConflict) {
		// Lost the status race or the LifeLine already exists. Nothing was
		// written; the winner owns the notification.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("commit approval: %w", err)
	}

	s.sendWelcome(ctx, LeaderWelcome{
		Email:           leader.Email,
		DisplayName:     leader.DisplayName,
		OneTimePassword: welcomePassword(created, oneTimePassword),
		LifeLineTitle:   request.Title,
	})
	return true, nil
}

// sendWelcome delivers the welcome notification best-effort. Errors are
// logged and swallowed.
func (s *Service) sendWelcome(ctx context.Context, welcome LeaderWelcome) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendLeaderWelcome(ctx, welcome); err != nil {
		s.logger.Printf("formation: welcome notification to %s failed: %v", welcome.Email, err)
	}
}

func welcomePassword(created bool, oneTimePassword string) string {
	if created {
		return oneTimePassword
	}
	return ""
}

func sweepResultFromOutcome(outcome EvaluationOutcome) SweepResult {
	result := SweepResult{RequestID: outcome.RequestID, Reason: outcome.Decision.Reason}
	switch {
	case outcome.Applied && outcome.Decision.Verdict == VerdictApprove:
		result.Outcome = SweepOutcomeApproved
	case outcome.Applied && outcome.Decision.Verdict == VerdictReject:
		result.Outcome = SweepOutcomeRejected
	default:
		result.Outcome = SweepOutcomePending
	}
	return result
}

func requestToRecord(request FormationRequest) storage.FormationRequestRecord {
	return storage.FormationRequestRecord{
		ID:                    request.ID,
		Title:                 request.Title,
		LeaderName:            request.LeaderName,
		LeaderEmail:           request.LeaderEmail,
		LeaderPhone:           request.LeaderPhone,
		Description:           request.Description,
		Frequency:             request.Frequency,
		MeetingDay:            request.MeetingDay,
		MeetingTime:           request.MeetingTime,
		GroupType:             request.GroupType,
		TargetStage:           request.TargetStage,
		Status:                string(request.Status),
		LifeLineCreated:       request.LifeLineCreated,
		AdminNote:             request.AdminNote,
		AutoApprovalScheduled: request.AutoApprovalScheduled,
		CreatedAt:             request.CreatedAt,
		UpdatedAt:             request.UpdatedAt,
		ResolvedAt:            request.ResolvedAt,
	}
}

func requestFromRecord(record storage.FormationRequestRecord) (FormationRequest, error) {
	status, err := ParseStatus(record.Status)
	if err != nil {
		return FormationRequest{}, fmt.Errorf("request %s: %w", record.ID, err)
	}
	return FormationRequest{
		ID:                    record.ID,
		Title:                 record.Title,
		LeaderName:            record.LeaderName,
		LeaderEmail:           record.LeaderEmail,
		LeaderPhone:           record.LeaderPhone,
		Description:           record.Description,
		Frequency:             record.Frequency,
		MeetingDay:            record.MeetingDay,
		MeetingTime:           record.MeetingTime,
		GroupType:             record.GroupType,
		TargetStage:           record.TargetStage,
		Status:                status,
		LifeLineCreated:       record.LifeLineCreated,
		AdminNote:             record.AdminNote,
		AutoApprovalScheduled: record.AutoApprovalScheduled,
		CreatedAt:             record.CreatedAt,
		UpdatedAt:             record.UpdatedAt,
		ResolvedAt:            record.ResolvedAt,
	}, nil
}

func voteToRecord(vote Vote) storage.VoteRecord {
	return storage.VoteRecord{
		RequestID: vote.RequestID,
		VoterID:   vote.VoterID,
		Value:     string(vote.Value),
		Comment:   vote.Comment,
		CreatedAt: vote.CreatedAt,
		UpdatedAt: vote.UpdatedAt,
	}
}

func userToRecord(account user.User) storage.UserRecord {
	return storage.UserRecord{
		ID:           account.ID,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		Role:         string(account.Role),
		PasswordHash: account.PasswordHash,
		Active:       account.Active,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}
