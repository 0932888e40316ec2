// Package httpapi exposes the LifeLines HTTP surface: public submission and
// browsing, authenticated support-team review, webhook intake, and the
// internal sweep trigger.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/parishlabs/lifelines/internal/formation"
	"github.com/parishlabs/lifelines/internal/lifeline"
	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/user"
)

// maxBodyBytes caps request bodies; intake payloads are small.
const maxBodyBytes = 1 << 20

// Server wires the HTTP handlers to the domain services.
type Server struct {
	formation *formation.Service
	lifelines *lifeline.Service
	verifier  *TokenVerifier

	webhookSecret []byte
	sweepSecret   string

	logger *log.Logger
}

// NewServer builds the HTTP API server.
func NewServer(formationSvc *formation.Service, lifelineSvc *lifeline.Service, verifier *TokenVerifier, webhookSecret []byte, sweepSecret string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		formation:     formationSvc,
		lifelines:     lifelineSvc,
		verifier:      verifier,
		webhookSecret: webhookSecret,
		sweepSecret:   sweepSecret,
		logger:        logger,
	}
}

// Routes returns the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /api/formation-requests", s.handleSubmitRequest)
	mux.HandleFunc("GET /api/formation-requests/{id}", s.requireReviewer(s.handleGetRequest))
	mux.HandleFunc("POST /api/formation-requests/{id}/votes", s.requireReviewer(s.handleCastVote))
	mux.HandleFunc("POST /api/formation-requests/{id}/archive", s.requireAdmin(s.handleArchiveRequest))

	mux.HandleFunc("POST /webhooks/intake", s.handleIntakeWebhook)
	mux.HandleFunc("POST /internal/sweep", s.handleSweep)

	mux.HandleFunc("GET /api/lifelines", s.handleListLifeLines)
	mux.HandleFunc("GET /api/lifelines/{id}", s.handleGetLifeLine)
	mux.HandleFunc("POST /api/lifelines/{id}/inquiries", s.handleSubmitInquiry)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitRequestPayload struct {
	Title       string `json:"title"`
	LeaderName  string `json:"leader_name"`
	LeaderEmail string `json:"leader_email"`
	LeaderPhone string `json:"leader_phone"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	MeetingDay  string `json:"meeting_day"`
	MeetingTime string `json:"meeting_time"`
	GroupType   string `json:"group_type"`
	TargetStage string `json:"target_stage"`
}

func (p submitRequestPayload) toInput() formation.SubmitInput {
	return formation.SubmitInput{
		Title:       p.Title,
		LeaderName:  p.LeaderName,
		LeaderEmail: p.LeaderEmail,
		LeaderPhone: p.LeaderPhone,
		Description: p.Description,
		Frequency:   p.Frequency,
		MeetingDay:  p.MeetingDay,
		MeetingTime: p.MeetingTime,
		GroupType:   p.GroupType,
		TargetStage: p.TargetStage,
	}
}

type requestView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	LeaderName  string     `json:"leader_name"`
	LeaderEmail string     `json:"leader_email"`
	Status      string     `json:"status"`
	AdminNote   string     `json:"admin_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func viewFromRequest(request formation.FormationRequest) requestView {
	return requestView{
		ID:          request.ID,
		Title:       request.Title,
		LeaderName:  request.LeaderName,
		LeaderEmail: request.LeaderEmail,
		Status:      string(request.Status),
		AdminNote:   request.AdminNote,
		CreatedAt:   request.CreatedAt,
		ResolvedAt:  request.ResolvedAt,
	}
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var payload submitRequestPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	request, err := s.formation.SubmitRequest(r.Context(), payload.toInput())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, viewFromRequest(request))
}

type requestDetailView struct {
	Request requestView     `json:"request"`
	Tally   formation.Tally `json:"tally"`
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request, _ AccessClaims) {
	requestID := r.PathValue("id")
	request, err := s.formation.GetRequest(r.Context(), requestID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tally, err := s.formation.Tally(r.Context(), requestID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, requestDetailView{Request: viewFromRequest(request), Tally: tally})
}

type castVotePayload struct {
	Value   string `json:"value"`
	Comment string `json:"comment"`
}

type voteResultView struct {
	RequestID string `json:"request_id"`
	VoterID   string `json:"voter_id"`
	Value     string `json:"value"`
	Verdict   string `json:"verdict"`
	Reason    string `json:"reason"`
	Applied   bool   `json:"applied"`
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request, claims AccessClaims) {
	var payload castVotePayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	vote, outcome, err := s.formation.CastVote(r.Context(), formation.CastVoteInput{
		RequestID: r.PathValue("id"),
		VoterID:   claims.UserID,
		Value:     payload.Value,
		Comment:   payload.Comment,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, voteResultView{
		RequestID: vote.RequestID,
		VoterID:   vote.VoterID,
		Value:     string(vote.Value),
		Verdict:   string(outcome.Decision.Verdict),
		Reason:    outcome.Decision.Reason,
		Applied:   outcome.Applied,
	})
}

type archivePayload struct {
	Note string `json:"note"`
}

func (s *Server) handleArchiveRequest(w http.ResponseWriter, r *http.Request, _ AccessClaims) {
	var payload archivePayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.formation.ArchiveRequest(r.Context(), r.PathValue("id"), payload.Note); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// handleIntakeWebhook accepts signed submissions from third-party forms. The
// signature covers the raw body and is checked before anything is parsed.
func (s *Server) handleIntakeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, fmt.Errorf("read webhook body: %w", err))
		return
	}
	if err := verifySignature(s.webhookSecret, body, r.Header.Get(SignatureHeader)); err != nil {
		s.writeError(w, err)
		return
	}

	var payload submitRequestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.CodeBadRequest, "webhook payload is not valid JSON", err))
		return
	}
	request, err := s.formation.SubmitRequest(r.Context(), payload.toInput())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, viewFromRequest(request))
}

// SweepSecretHeader authenticates internal sweep triggers.
const SweepSecretHeader = "X-Sweep-Secret"

type sweepView struct {
	Results []formation.SweepResult `json:"results"`
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	provided := strings.TrimSpace(r.Header.Get(SweepSecretHeader))
	if s.sweepSecret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(s.sweepSecret)) != 1 {
		s.writeError(w, apperrors.New(apperrors.CodeSweepSecretRejected, "sweep secret rejected"))
		return
	}
	results, err := s.formation.SweepPending(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if results == nil {
		results = []formation.SweepResult{}
	}
	s.writeJSON(w, http.StatusOK, sweepView{Results: results})
}

type lifeLineView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	MeetingDay  string `json:"meeting_day,omitempty"`
	MeetingTime string `json:"meeting_time,omitempty"`
	GroupType   string `json:"group_type,omitempty"`
	TargetStage string `json:"target_stage,omitempty"`
	Status      string `json:"status"`
}

func viewFromLifeLine(group lifeline.LifeLine) lifeLineView {
	return lifeLineView{
		ID:          group.ID,
		Title:       group.Title,
		Description: group.Description,
		Frequency:   group.Frequency,
		MeetingDay:  group.MeetingDay,
		MeetingTime: group.MeetingTime,
		GroupType:   group.GroupType,
		TargetStage: group.TargetStage,
		Status:      string(group.Status),
	}
}

func (s *Server) handleListLifeLines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	groups, err := s.lifelines.ListPublished(r.Context(), lifeline.Filter{
		MeetingDay: query.Get("meeting_day"),
		Frequency:  query.Get("frequency"),
		GroupType:  query.Get("group_type"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]lifeLineView, 0, len(groups))
	for _, group := range groups {
		views = append(views, viewFromLifeLine(group))
	}
	s.writeJSON(w, http.StatusOK, map[string][]lifeLineView{"lifelines": views})
}

func (s *Server) handleGetLifeLine(w http.ResponseWriter, r *http.Request) {
	group, err := s.lifelines.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if group.Status != lifeline.StatusPublished {
		// Drafts and archived groups are not public.
		s.writeError(w, apperrors.New(apperrors.CodeNotFound, "lifeline not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, viewFromLifeLine(group))
}

type inquiryPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleSubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var payload inquiryPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	inquiry, err := s.lifelines.SubmitInquiry(r.Context(), lifeline.InquiryInput{
		LifeLineID: r.PathValue("id"),
		Name:       payload.Name,
		Email:      payload.Email,
		Message:    payload.Message,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": inquiry.ID})
}

type authedHandler func(http.ResponseWriter, *http.Request, AccessClaims)

func (s *Server) requireReviewer(next authedHandler) http.HandlerFunc {
	return s.requireRole(next, func(claims AccessClaims) bool {
		return claims.Role.CanReviewFormation()
	})
}

func (s *Server) requireAdmin(next authedHandler) http.HandlerFunc {
	return s.requireRole(next, func(claims AccessClaims) bool {
		return claims.Role == user.RoleAdmin
	})
}

func (s *Server) requireRole(next authedHandler, allowed func(AccessClaims) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.verifier == nil {
			s.writeError(w, apperrors.New(apperrors.CodeAuthUnauthorized, "authentication is not configured"))
			return
		}
		claims, err := s.verifier.VerifyRequest(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if !allowed(claims) {
			s.writeError(w, apperrors.New(apperrors.CodeAuthForbiddenRole, "role is not allowed"))
			return
		}
		next(w, r, claims)
	}
}

func (s *Server) readJSON(_ http.ResponseWriter, r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeBadRequest, "request body is not valid JSON", err)
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeUnknown
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	status := code.HTTPStatus()
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Printf("httpapi: internal error: %v", err)
		message = "internal error"
	}
	s.writeJSON(w, status, map[string]errorBody{"error": {Code: string(code), Message: message}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("httpapi: encode response: %v", err)
	}
}
