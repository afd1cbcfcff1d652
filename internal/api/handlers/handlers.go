package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spending-reports/internal/api/middleware"
	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/dvloznov/spending-reports/internal/jobs"
	"github.com/dvloznov/spending-reports/internal/reports"
)

// StatusFor maps a report error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrInvertedRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyPeriod), errors.Is(err, domain.ErrNoMatches):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuotesUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ReportsHandler serves the report endpoints.
type ReportsHandler struct {
	svc    *reports.Service
	source domain.TableSource
	log    zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(svc *reports.Service, source domain.TableSource, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		svc:    svc,
		source: source,
		log:    log,
	}
}

// loadTable writes a 500 response and returns false when the source fails.
func (h *ReportsHandler) loadTable(w http.ResponseWriter, r *http.Request) (domain.Table, bool) {
	table, err := h.source.LoadTable(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load operations")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load operations")
		return nil, false
	}
	return table, true
}

func (h *ReportsHandler) writeReportError(w http.ResponseWriter, err error, msg string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("status", status).Msg(msg)
		if status == http.StatusBadGateway {
			middleware.WriteError(w, status, "Quote services unavailable")
			return
		}
		middleware.WriteError(w, status, msg)
		return
	}
	middleware.WriteError(w, status, err.Error())
}

// Home handles GET /api/reports/home?date=DD.MM.YYYY
func (h *ReportsHandler) Home(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}

	report, err := h.svc.HomePageOn(r.Context(), table, r.URL.Query().Get("date"))
	if err != nil {
		h.writeReportError(w, err, "Failed to build home page")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}

// Mobile handles GET /api/reports/mobile?start=DD.MM.YYYY&stop=DD.MM.YYYY
func (h *ReportsHandler) Mobile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, stop := query.Get("start"), query.Get("stop")
	if start == "" || stop == "" {
		middleware.WriteError(w, http.StatusBadRequest, "start and stop are required")
		return
	}

	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}

	found, err := h.svc.MobileTransactionsBetween(r.Context(), table, start, stop)
	if err != nil {
		h.writeReportError(w, err, "Failed to search mobile payments")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, found)
}

// Weekday handles GET /api/reports/weekday?date=DD.MM.YYYY
func (h *ReportsHandler) Weekday(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}

	report, err := h.svc.WeekdaySpendingOn(r.Context(), table, r.URL.Query().Get("date"))
	if err != nil {
		h.writeReportError(w, err, "Failed to compute weekday spending")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		log:       log,
	}
}

// EnqueueWeekdayReport handles POST /api/reports/weekday/jobs
func (h *JobsHandler) EnqueueWeekdayReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string `json:"date"`
		ReportName string `json:"report_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Date != "" {
		if _, err := domain.ParseDate(req.Date); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	job := &jobs.WeekdayReportJob{
		EndDate:    req.Date,
		ReportName: req.ReportName,
		Trigger:    "api",
	}
	if err := h.publisher.PublishWeekdayReport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue weekday report job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue weekday report job")
		return
	}

	// The worker owns the job once published; only immutable fields are read here.
	h.log.Info().Str("job_id", job.JobID).Str("end_date", job.EndDate).Msg("Weekday report job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(jobs.JobStatusPending),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status:  jobs.JobStatus(query.Get("status")),
		Trigger: query.Get("trigger"),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
