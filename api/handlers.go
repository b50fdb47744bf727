/*
handlers.go - HTTP API handlers for the overtime board

PURPOSE:
  Exposes the overtime tracker via a JSON API. Handles HTTP
  request/response, JSON serialization, and delegates to the tracker.

ENDPOINTS:
  Weeks:
    GET    /api/weeks                     Week picker (3 back, current, 3 ahead)

  Entries:
    GET    /api/entries?month=M           Month listing (all years)
    GET    /api/entries?day=YYYY-MM-DD    Enriched day view
    GET    /api/entries?week_start=...    Week overview (Sunday only)
    POST   /api/entries                   Add {login, work_date, shift}
    POST   /api/entries/delete            Remove {login, work_date, shift}
    GET    /api/entries/export.xlsx       Month listing as a workbook
    GET    /api/entries/calendar.ics      One login's shifts as iCalendar

  Summary:
    GET    /api/summary/quarter?q=&year=  Top logins per manager

  Roster:
    GET    /api/roster/{login}            Roster record (front-end login check)

  Health:
    GET    /healthz                       Store ping + roster size

QUERY PRECEDENCE:
  GET /api/entries looks at month first, then day, then week_start. The
  first parameter present decides the view; the others are ignored.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call the tracker
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown roster login
  - 409: Duplicate (login already scheduled that day)
  - 422: Login not in the roster
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The board is an internal tool behind the company network.

SEE ALSO:
  - dto.go: Request/response data structures
  - errors.go: Error to status mapping
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/overtime-board/overtime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *overtime.Tracker
	Logger  logrus.FieldLogger
}

// NewHandler creates a new handler around the tracker.
func NewHandler(tracker *overtime.Tracker, logger logrus.FieldLogger) *Handler {
	return &Handler{Tracker: tracker, Logger: logger}
}

// =============================================================================
// WEEK HANDLERS
// =============================================================================

// ListWeeks returns the week picker options.
// GET /api/weeks
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toWeekDTOs(h.Tracker.Weeks()))
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// GetEntries dispatches to the month, day or week view.
// GET /api/entries
func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("month") != "":
		h.getMonth(w, r, q.Get("month"))
	case q.Get("day") != "":
		h.getDay(w, r, q.Get("day"))
	default:
		h.getWeek(w, r, q.Get("week_start"))
	}
}

func (h *Handler) getMonth(w http.ResponseWriter, r *http.Request, raw string) {
	month, err := overtime.ParseMonth(raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.Tracker.Month(r.Context(), month)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthEntriesDTO(entries))
}

func (h *Handler) getDay(w http.ResponseWriter, r *http.Request, raw string) {
	day, err := overtime.ParseDate("day", raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.Tracker.Day(r.Context(), day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayEntriesDTO(view))
}

func (h *Handler) getWeek(w http.ResponseWriter, r *http.Request, raw string) {
	sunday, err := overtime.ParseDate("week_start", raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.Tracker.Week(r.Context(), sunday)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekEntriesDTO(view))
}

// CreateEntry records an overtime shift.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Login) == "" || strings.TrimSpace(req.WorkDate) == "" {
		writeError(w, http.StatusBadRequest, "login and work_date required", nil)
		return
	}
	if strings.TrimSpace(req.Shift) == "" {
		req.Shift = string(overtime.ShiftDay)
	}

	workDate, err := overtime.ParseDate("work_date", req.WorkDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shift, err := overtime.ParseShift(req.Shift)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.Tracker.Add(r.Context(), req.Login, workDate, shift); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteEntry removes an exact (login, work_date, shift) entry.
// Removing an entry that does not exist still returns ok.
// POST /api/entries/delete
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Login) == "" || strings.TrimSpace(req.WorkDate) == "" || strings.TrimSpace(req.Shift) == "" {
		writeError(w, http.StatusBadRequest, "missing data", nil)
		return
	}

	workDate, err := overtime.ParseDate("work_date", req.WorkDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shift, err := overtime.ParseShift(req.Shift)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.Tracker.Remove(r.Context(), req.Login, workDate, shift); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// QuarterSummary returns the top logins per manager for one quarter.
// GET /api/summary/quarter?q=1&year=2024
func (h *Handler) QuarterSummary(w http.ResponseWriter, r *http.Request) {
	q, err := overtime.ParseQuarter(r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	year := h.Tracker.Today().Year()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be an integer", err)
			return
		}
	}

	summary, err := h.Tracker.Quarter(r.Context(), q, year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuarterSummaryDTO(summary))
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportMonth streams the month listing as an .xlsx workbook.
// GET /api/entries/export.xlsx?month=3
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	month, err := overtime.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.Tracker.Month(r.Context(), month)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	buf, err := buildMonthWorkbook(month, entries)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="overtime-%02d.xlsx"`, month))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// ExportCalendar returns one login's entries as an iCalendar feed.
// GET /api/entries/calendar.ics?login=jdoe
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	login := overtime.NormalizeLogin(r.URL.Query().Get("login"))
	entries, err := h.Tracker.History(r.Context(), login)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rec, _ := h.Tracker.Employee(login)
	body := buildCalendar(login, rec.Name, entries, h.Tracker.Today())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="overtime-%s.ics"`, login))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// =============================================================================
// ROSTER / HEALTH
// =============================================================================

// GetRosterRecord returns the roster row for a login.
// GET /api/roster/{login}
func (h *Handler) GetRosterRecord(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	rec, ok := h.Tracker.Employee(login)
	if !ok {
		writeError(w, http.StatusNotFound, "Login not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRosterRecordDTO(rec))
}

// Health pings the store and reports the roster size.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.Ping(r.Context()); err != nil {
		h.Logger.WithError(err).Warn("Health check failed")
		writeError(w, http.StatusServiceUnavailable, "store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Roster: h.Tracker.RosterSize()})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail writes err with the status its kind maps to. Client errors carry
// their own message; anything else is logged and reported generically.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status < http.StatusInternalServerError {
		resp := ErrorResponse{Error: err.Error(), Code: errorCode(status)}
		var verr *overtime.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			resp.Details = map[string]string{"field": verr.Field}
		}
		writeJSON(w, status, resp)
		return
	}

	h.Logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("Request failed")
	writeError(w, status, "Internal server error", err)
}
