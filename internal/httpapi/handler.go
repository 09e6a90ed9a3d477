// Package httpapi is a thin JSON surface over the service layer.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

const maxBodyBytes = 1 << 20

// Service defines the operations the HTTP surface exposes.
type Service interface {
	GetEligiblePrograms(ctx context.Context, sub domain.FormSubmission) ([]domain.ProgramMatch, error)
	CalculateBenefitAmount(ctx context.Context, programID string, p domain.EligibilityParams) (decimal.Decimal, error)
	CalculateBenefitsGap(ctx context.Context, sub domain.FormSubmission) (domain.GapAnalysis, error)
	ListEnhancedPrograms(ctx context.Context) ([]domain.EnhancedProgram, error)
	SearchPrograms(ctx context.Context, query string) ([]domain.EnhancedProgram, error)
	CalculateEligibility(ctx context.Context, programID string, b domain.Beneficiary) (domain.EligibilityCalculation, error)
	AdjustBenefits(ctx context.Context, programID string, rate decimal.Decimal) (domain.BenefitAdjustment, error)
	ListAdjustments(ctx context.Context, programID string) ([]domain.BenefitAdjustment, error)
	AddProgram(ctx context.Context, p domain.Program) (domain.Program, error)
}

// Handler wires calculator endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the v1 endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(RequestCache)
		r.Post("/eligibility", h.handleEligibility)
		r.Post("/gap", h.handleGap)
		r.Get("/programs", h.handleListPrograms)
		r.Post("/programs", h.handleAddProgram)
		r.Post("/programs/{id}/benefit", h.handleBenefit)
		r.Post("/programs/{id}/eligibility", h.handleConditionEligibility)
		r.Post("/programs/{id}/cola", h.handleCOLA)
		r.Get("/programs/{id}/adjustments", h.handleAdjustments)
	})
}

// EligibilityResponse is the body of POST /v1/eligibility.
type EligibilityResponse struct {
	Matches []domain.ProgramMatch `json:"matches"`
}

// BenefitResponse is the body of POST /v1/programs/{id}/benefit.
type BenefitResponse struct {
	ProgramID      string          `json:"programId"`
	MonthlyBenefit decimal.Decimal `json:"monthlyBenefit"`
}

// ProgramsResponse is the body of GET /v1/programs.
type ProgramsResponse struct {
	Programs []domain.EnhancedProgram `json:"programs"`
}

// COLARequest is the body of POST /v1/programs/{id}/cola. Rate is a fraction.
type COLARequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	var sub domain.FormSubmission
	if !h.decode(w, r, &sub) {
		return
	}
	matches, err := h.service.GetEligiblePrograms(r.Context(), sub)
	if err != nil {
		h.fail(w, r, "eligibility failed", err)
		return
	}
	writeJSON(w, http.StatusOK, EligibilityResponse{Matches: matches})
}

func (h *Handler) handleGap(w http.ResponseWriter, r *http.Request) {
	var sub domain.FormSubmission
	if !h.decode(w, r, &sub) {
		return
	}
	gap, err := h.service.CalculateBenefitsGap(r.Context(), sub)
	if err != nil {
		h.fail(w, r, "gap analysis failed", err)
		return
	}
	writeJSON(w, http.StatusOK, gap)
}

func (h *Handler) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	var (
		programs []domain.EnhancedProgram
		err      error
	)
	if query := r.URL.Query().Get("search"); query != "" {
		programs, err = h.service.SearchPrograms(r.Context(), query)
	} else {
		programs, err = h.service.ListEnhancedPrograms(r.Context())
	}
	if err != nil {
		h.fail(w, r, "list programs failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ProgramsResponse{Programs: programs})
}

func (h *Handler) handleAddProgram(w http.ResponseWriter, r *http.Request) {
	var p domain.Program
	if !h.decode(w, r, &p) {
		return
	}
	added, err := h.service.AddProgram(r.Context(), p)
	if err != nil {
		h.fail(w, r, "add program failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handler) handleBenefit(w http.ResponseWriter, r *http.Request) {
	var params domain.EligibilityParams
	if !h.decode(w, r, &params) {
		return
	}
	id := chi.URLParam(r, "id")
	amount, err := h.service.CalculateBenefitAmount(r.Context(), id, params)
	if err != nil {
		h.fail(w, r, "benefit calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, BenefitResponse{ProgramID: id, MonthlyBenefit: amount})
}

func (h *Handler) handleConditionEligibility(w http.ResponseWriter, r *http.Request) {
	var b domain.Beneficiary
	if !h.decode(w, r, &b) {
		return
	}
	result, err := h.service.CalculateEligibility(r.Context(), chi.URLParam(r, "id"), b)
	if err != nil {
		h.fail(w, r, "eligibility calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCOLA(w http.ResponseWriter, r *http.Request) {
	var req COLARequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Rate == nil {
		writeBadRequest(w, "rate is required")
		return
	}
	adj, err := h.service.AdjustBenefits(r.Context(), chi.URLParam(r, "id"), *req.Rate)
	if err != nil {
		h.fail(w, r, "benefit adjustment failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, adj)
}

func (h *Handler) handleAdjustments(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.ListAdjustments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "list adjustments failed", err)
		return
	}
	if history == nil {
		history = []domain.BenefitAdjustment{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, err)
}

// NewRouter builds the full HTTP surface: v1 endpoints, health check and,
// when metrics is non-nil, the Prometheus endpoint.
func NewRouter(service Service, logger *slog.Logger, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	New(service, logger).Register(r)
	return r
}
