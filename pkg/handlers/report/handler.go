package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/de-tools/case-atlas/pkg/adapters"
	"github.com/de-tools/case-atlas/pkg/models/api"
	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/models/store"
	"github.com/de-tools/case-atlas/pkg/services/aging"
	"github.com/de-tools/case-atlas/pkg/services/config"
	"github.com/de-tools/case-atlas/pkg/services/subtotal"
	"github.com/de-tools/case-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/case-atlas/pkg/store/source"
)

const (
	maxUploadSize    = 64 << 20
	defaultRunsLimit = 20
)

type Handler struct {
	registry config.Registry
	archive  runs.Store
	now      func() time.Time
}

// NewHandler wires the report endpoints. registry and archive may be nil, in which case the
// profile and run listings are empty.
func NewHandler(registry config.Registry, archive runs.Store) *Handler {
	return &Handler{
		registry: registry,
		archive:  archive,
		now:      time.Now,
	}
}

func (h *Handler) BuildSubtotal(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p := domain.DefaultProfile("upload", domain.ReportKindSubtotal)
	p.Source = "request body"
	p.ReasonOrder = domain.SortOrder(lo.CoalesceOrEmpty(query.Get("reason_order"), string(p.ReasonOrder)))
	p.GroupOrder = domain.SortOrder(lo.CoalesceOrEmpty(query.Get("group_order"), string(p.GroupOrder)))
	if v := query.Get("normalize_reasons"); v != "" {
		normalize, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		p.NormalizeReasons = normalize
	}
	if err := p.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ds, err := source.Read(http.MaxBytesReader(w, r.Body, maxUploadSize), lo.CoalesceOrEmpty(query.Get("encoding"), p.Encoding))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	report, err := subtotal.NewBuilder(p.Name, subtotal.OptionsFromProfile(p)).Build(ds)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapSubtotalReportDomainToApi(report))
}

func (h *Handler) BuildAging(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p := domain.DefaultProfile("upload", domain.ReportKindAging)
	if v := query.Get("group_by_case_id"); v != "" {
		group, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		p.GroupByCaseID = group
	}

	opts, err := aging.OptionsFromProfile(p)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	opts.Now = h.now

	ds, err := source.Read(http.MaxBytesReader(w, r.Body, maxUploadSize), lo.CoalesceOrEmpty(query.Get("encoding"), p.Encoding))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	b, err := aging.NewBuilder(p.Name, opts)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	res, err := b.Build(ds)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapAgingPivotDomainToApi(res.Pivot))
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	response := make([]api.Profile, 0)
	if h.registry != nil {
		names, err := h.registry.GetProfiles(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		for _, name := range names {
			response = append(response, api.Profile{Name: name})
		}
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	response := make([]api.Run, 0)
	if h.archive != nil {
		records, err := h.archive.ListRuns(r.Context(), limit)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		response = lo.Map(records, func(rec *store.RunRecord, _ int) api.Run {
			return adapters.MapDomainRunToApi(adapters.MapStoreRunToDomain(rec))
		})
	}
	writeJSON(w, r, http.StatusOK, response)
}

func statusOf(err error) int {
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := zerolog.Ctx(r.Context())
	logger.Warn().Err(err).Int("status", status).Msg("request failed")

	body := api.Error{Message: err.Error()}
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		body.Missing = schemaErr.Missing
		body.Found = schemaErr.Found
	}
	writeJSON(w, r, status, body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
