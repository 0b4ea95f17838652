package handler

import (
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/horseshare/backend/internal/domain"
)

// UnavailableRange is the wire shape of one timeline entry.
type UnavailableRange struct {
	Kind      string             `json:"kind"`
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
	SourceID  string             `json:"source_id"`
	Label     string             `json:"label"`
}

// CheckResponse is the advisory conflict check result. A false Conflict is
// provisional — the authoritative guard re-evaluates at submit time.
type CheckResponse struct {
	Conflict  bool               `json:"conflict"`
	Conflicts []UnavailableRange `json:"conflicts"`
}

// CalendarDay is one cell of the monthly calendar projection.
type CalendarDay struct {
	Day       openapi_types.Date `json:"day"`
	Available bool               `json:"available"`
	Kind      string             `json:"kind,omitempty"`
}

// CalendarResponse is the monthly calendar view.
type CalendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// Pagination echoes the applied page parameters plus the total entry count.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// UnavailableListResponse is one page of the timeline list view.
type UnavailableListResponse struct {
	Data       []UnavailableRange `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// GetAvailability handles GET /horses/{horseID}/availability.
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	horseID, err := pathUUID(r, "horseID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid horse id"))
		return
	}

	ranges, err := s.availability.UnavailableRanges(r.Context(), horseID)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": rangesToResponse(ranges)})
}

// CheckAvailability handles GET /horses/{horseID}/availability/check.
// Query params start and end are required "2006-01-02" dates.
func (s *Server) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	horseID, err := pathUUID(r, "horseID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid horse id"))
		return
	}

	proposed, err := queryRange(r)
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody(unwrapMessage(err)))
		return
	}

	conflict, conflicts, err := s.availability.CheckRange(r.Context(), horseID, proposed)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	respondJSON(w, http.StatusOK, CheckResponse{
		Conflict:  conflict,
		Conflicts: rangesToResponse(conflicts),
	})
}

// GetCalendar handles GET /horses/{horseID}/calendar.
// Query params year and month default to the current UTC month.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	horseID, err := pathUUID(r, "horseID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid horse id"))
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid year"))
			return
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid month"))
			return
		}
		month = time.Month(m)
	}

	cal, err := s.availability.Calendar(r.Context(), horseID, year, month)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	resp := CalendarResponse{Year: cal.Year, Month: int(cal.Month), Days: make([]CalendarDay, len(cal.Days))}
	for i, d := range cal.Days {
		resp.Days[i] = CalendarDay{
			Day:       openapi_types.Date{Time: d.Day},
			Available: d.Available,
			Kind:      string(d.Kind),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListUnavailable handles GET /horses/{horseID}/unavailable.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListUnavailable(w http.ResponseWriter, r *http.Request) {
	horseID, err := pathUUID(r, "horseID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid horse id"))
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	ranges, total, err := s.availability.ListUnavailable(r.Context(), horseID, params)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	respondJSON(w, http.StatusOK, UnavailableListResponse{
		Data:       rangesToResponse(ranges),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// --- mapping helpers --------------------------------------------------------

func rangesToResponse(ranges []domain.UnavailableRange) []UnavailableRange {
	out := make([]UnavailableRange, len(ranges))
	for i, u := range ranges {
		out[i] = UnavailableRange{
			Kind:      string(u.Kind),
			StartDate: openapi_types.Date{Time: u.Range.Start},
			EndDate:   openapi_types.Date{Time: u.Range.End},
			SourceID:  u.SourceID.String(),
			Label:     u.Label,
		}
	}
	return out
}

// queryRange parses the required start/end query params into a DateRange.
func queryRange(r *http.Request) (domain.DateRange, error) {
	start, err := queryDate(r, "start")
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := queryDate(r, "end")
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.NewDateRange(start, end)
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, &missingParamError{name}
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, &badParamError{name}
	}
	return t, nil
}

func queryInt(r *http.Request, name string) *int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

type missingParamError struct{ name string }

func (e *missingParamError) Error() string { return e.name + " query parameter is required" }

type badParamError struct{ name string }

func (e *badParamError) Error() string { return e.name + " must be a 2006-01-02 date" }
