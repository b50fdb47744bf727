/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The overtime package
  works in time.Time and typed shifts; the wire format is ISO dates and
  plain strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

TYPES:
  Weeks:    WeekDTO
  Entries:  WeekEntriesDTO, ShiftListsDTO, DayEntriesDTO, AssigneeDTO,
            MonthEntriesDTO, MonthEntryDTO, EntryRequest
  Summary:  QuarterSummaryDTO, LoginCountDTO
  Roster:   RosterRecordDTO
  Misc:     StatusResponse, HealthResponse, ErrorResponse

VALIDATION:
  Validation is done in handlers and the tracker, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/overtime-board/overtime"
	"github.com/warp/overtime-board/roster"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WeekDTO is one option of the week picker.
type WeekDTO struct {
	Label  string `json:"label"`
	Start  string `json:"start"`
	Pretty string `json:"pretty"`
}

// ShiftListsDTO lists logins per shift for one day of the week view.
type ShiftListsDTO struct {
	DayShift   []string `json:"day_shift"`
	NightShift []string `json:"night_shift"`
}

// WeekEntriesDTO is the week overview keyed by ISO date.
type WeekEntriesDTO struct {
	WeekStart string                   `json:"week_start"`
	PerDay    map[string]ShiftListsDTO `json:"per_day"`
}

// AssigneeDTO is an entry enriched with roster data.
type AssigneeDTO struct {
	Login        string `json:"login"`
	Name         string `json:"name"`
	ShiftPattern string `json:"shift_pattern"`
}

// DayEntriesDTO is the detailed view of one date.
type DayEntriesDTO struct {
	WorkDate   string        `json:"work_date"`
	DayShift   []AssigneeDTO `json:"day_shift"`
	NightShift []AssigneeDTO `json:"night_shift"`
}

// MonthEntryDTO is one row of the month listing.
type MonthEntryDTO struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	WorkDate string `json:"work_date"`
	Shift    string `json:"shift"`
}

// MonthEntriesDTO wraps the month listing.
type MonthEntriesDTO struct {
	Entries []MonthEntryDTO `json:"entries"`
}

// EntryRequest is the body of add and delete.
type EntryRequest struct {
	Login    string `json:"login"`
	WorkDate string `json:"work_date"`
	Shift    string `json:"shift"`
}

// LoginCountDTO is one ranked row of a quarterly bucket.
type LoginCountDTO struct {
	Login string `json:"login"`
	Count int    `json:"count"`
}

// QuarterSummaryDTO is the per-manager ranking for one quarter.
type QuarterSummaryDTO struct {
	Quarter    int                        `json:"quarter"`
	Year       int                        `json:"year"`
	Months     []int                      `json:"months"`
	PerManager map[string][]LoginCountDTO `json:"per_manager"`
}

// RosterRecordDTO is one roster row.
type RosterRecordDTO struct {
	Login        string `json:"login"`
	Name         string `json:"name"`
	ShiftPattern string `json:"shift_pattern"`
	Manager      string `json:"manager"`
}

// StatusResponse acknowledges a write.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned by /healthz. Roster is -1 when unknown.
type HealthResponse struct {
	Status string `json:"status"`
	Roster int    `json:"roster"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toWeekDTOs(weeks []overtime.Week) []WeekDTO {
	dtos := make([]WeekDTO, len(weeks))
	for i, w := range weeks {
		dtos[i] = WeekDTO{
			Label:  w.Label,
			Start:  w.Start.Format(overtime.DateLayout),
			Pretty: w.Start.Format(overtime.PrettyLayout),
		}
	}
	return dtos
}

func toWeekEntriesDTO(v overtime.WeekView) WeekEntriesDTO {
	dto := WeekEntriesDTO{
		WeekStart: v.WeekStart.Format(overtime.DateLayout),
		PerDay:    make(map[string]ShiftListsDTO, len(v.Days)),
	}
	for _, d := range v.Days {
		dto.PerDay[d.Date.Format(overtime.DateLayout)] = ShiftListsDTO{
			DayShift:   d.DayShift,
			NightShift: d.NightShift,
		}
	}
	return dto
}

func toAssigneeDTOs(as []overtime.Assignee) []AssigneeDTO {
	dtos := make([]AssigneeDTO, len(as))
	for i, a := range as {
		dtos[i] = AssigneeDTO{Login: a.Login, Name: a.Name, ShiftPattern: a.ShiftPattern}
	}
	return dtos
}

func toDayEntriesDTO(v overtime.DayView) DayEntriesDTO {
	return DayEntriesDTO{
		WorkDate:   v.Date.Format(overtime.DateLayout),
		DayShift:   toAssigneeDTOs(v.DayShift),
		NightShift: toAssigneeDTOs(v.NightShift),
	}
}

func toMonthEntriesDTO(entries []overtime.MonthEntry) MonthEntriesDTO {
	dto := MonthEntriesDTO{Entries: make([]MonthEntryDTO, len(entries))}
	for i, e := range entries {
		dto.Entries[i] = MonthEntryDTO{
			Login:    e.Login,
			Name:     e.Name,
			WorkDate: e.WorkDate.Format(overtime.DateLayout),
			Shift:    e.Shift.String(),
		}
	}
	return dto
}

func toQuarterSummaryDTO(s overtime.QuarterSummary) QuarterSummaryDTO {
	dto := QuarterSummaryDTO{
		Quarter:    s.Quarter,
		Year:       s.Year,
		Months:     s.Months,
		PerManager: make(map[string][]LoginCountDTO, len(s.Buckets)),
	}
	for _, b := range s.Buckets {
		rows := make([]LoginCountDTO, len(b.Top))
		for i, c := range b.Top {
			rows[i] = LoginCountDTO{Login: c.Login, Count: c.Count}
		}
		dto.PerManager[b.Manager] = rows
	}
	return dto
}

func toRosterRecordDTO(r roster.Record) RosterRecordDTO {
	return RosterRecordDTO{
		Login:        r.Login,
		Name:         r.Name,
		ShiftPattern: r.ShiftPattern,
		Manager:      r.Manager,
	}
}
