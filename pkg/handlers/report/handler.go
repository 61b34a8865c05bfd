package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/de-tools/viability/pkg/adapters"
	"github.com/de-tools/viability/pkg/models/api"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/ingest"
	"github.com/de-tools/viability/pkg/services/pipeline"
	"github.com/de-tools/viability/pkg/services/validation"
	"github.com/de-tools/viability/pkg/store/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 32 << 20

type Handler struct {
	orchestrator pipeline.Orchestrator
	validator    validation.Validator
	catalog      catalog.Store
}

// NewHandler wires the report endpoints. reports may be nil when no catalog is configured.
func NewHandler(orchestrator pipeline.Orchestrator, validator validation.Validator, reports catalog.Store) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		validator:    validator,
		catalog:      reports,
	}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	req, err := decodeAnalysisRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.orchestrator.Build(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info().
		Str("report_id", res.Report.ID).
		Str("reference", res.Artifact.Reference).
		Msg("report generated")
	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisDomainToApi(res.Report, res.Artifact))
}

func decodeAnalysisRequest(r *http.Request) (domain.AnalysisRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return domain.AnalysisRequest{}, fmt.Errorf("%w: expected multipart form: %v", domain.ErrInvalidRequest, err)
	}

	req := domain.AnalysisRequest{
		Idea:               strings.TrimSpace(r.FormValue("description")),
		ProductDescription: strings.TrimSpace(r.FormValue("product_description")),
		MarketArea:         strings.TrimSpace(r.FormValue("market_area")),
	}

	var err error
	if req.DiscountRate, err = ingest.Amount("discount_rate", r.FormValue("discount_rate")); err != nil {
		return req, err
	}
	if req.InvestmentAmount, err = ingest.Amount("investment_amount", r.FormValue("investment_amount")); err != nil {
		return req, err
	}
	if req.CashFlows, err = ingest.CashFlows(r.FormValue("cash_flows")); err != nil {
		return req, err
	}

	name, data, err := formFile(r, "competitor_data", true)
	if err != nil {
		return req, err
	}
	if req.CompetitorData, err = ingest.Text(name, data); err != nil {
		return req, err
	}

	name, data, err = formFile(r, "balance_sheet", true)
	if err != nil {
		return req, err
	}
	if req.BalanceSheet, req.BalanceSheetText, err = ingest.BalanceSheet(name, data); err != nil {
		return req, err
	}

	name, data, err = formFile(r, "market_data", false)
	if err != nil {
		return req, err
	}
	if data != nil {
		if req.MarketData, req.MarketDataText, err = ingest.MarketData(name, data, r.FormValue("target_column")); err != nil {
			return req, err
		}
	}
	return req, nil
}

func formFile(r *http.Request, field string, required bool) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return "", nil, fmt.Errorf("%w: %s file is required", domain.ErrInvalidRequest, field)
		}
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRequest, field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidRequest, field, err)
	}
	return header.Filename, data, nil
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	text := r.URL.Query().Get("input_text")
	if text == "" && r.Body != nil {
		var body api.ValidateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidRequest))
			return
		}
		text = body.InputText
	}

	res, err := h.validator.Validate(ctx, text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.ValidateResponse{IsValid: res.Valid, Feedback: res.Feedback})
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidRequest))
			return
		}
		limit = n
	}

	records, err := h.catalog.List(ctx, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := make([]api.Report, 0, len(records))
	for _, rec := range records {
		response = append(response, adapters.MapReportStoreToApi(rec))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	record, err := h.catalog.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapReportStoreToApi(record))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, r, status, api.ErrorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
