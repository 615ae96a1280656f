package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/field-telemetry-service/internal/climate"
	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// SessionHeader opts a request into in-flight tracking. A later request with
// the same session ID and bundle supersedes an earlier one still running.
const SessionHeader = "X-Session-ID"

// defaultWindowDays is the range served when the caller names no dates.
const defaultWindowDays = 30

// MaxRangeDays caps how many days a single bundle request may span.
const MaxRangeDays = 3660

type addFieldRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (s *Server) handleListFields(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.api.Fields.List())
}

func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	var body addFieldRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	f, err := s.api.Fields.Add(body.Name, body.Location, climate.DefaultLocation)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("field added", "field_id", f.ID, "name", f.Name, "location", f.Location)
	sharedobs.WriteJSON(w, http.StatusCreated, f)
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	bundle := r.PathValue("bundle")
	field, err := s.api.Fields.Get(r.PathValue("fieldID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	req := fetchRequestFrom(r, field)
	if err := checkRangeWidth(bundle, req.DateRange); err != nil {
		s.writeFetchError(w, bundle, req, err)
		return
	}

	var result any
	if sid := r.Header.Get(SessionHeader); sid != "" && s.api.Sessions != nil {
		result, err = session.Run(r.Context(), s.api.Sessions, session.Key(sid, bundle), func(ctx context.Context) (any, error) {
			return s.api.Telemetry.Fetch(ctx, bundle, req)
		})
	} else {
		result, err = s.api.Telemetry.Fetch(r.Context(), bundle, req)
	}

	if err != nil {
		s.writeFetchError(w, bundle, req, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

// fetchRequestFrom reads the selection from the query string. A missing
// location falls back to the field's own; when neither date is given the
// trailing default window ending today is used.
func fetchRequestFrom(r *http.Request, field domain.Field) domain.FetchRequest {
	q := r.URL.Query()

	location := q.Get("location")
	if location == "" {
		location = field.Location
	}

	dates := domain.DateRangeInput{StartDate: q.Get("startDate"), EndDate: q.Get("endDate")}
	if dates.StartDate == "" && dates.EndDate == "" {
		dates = domain.InputOf(domain.TrailingRange(domain.Today(), defaultWindowDays))
	}

	return domain.FetchRequest{FieldID: field.ID, Location: location, DateRange: dates}
}

// checkRangeWidth rejects ranges wider than MaxRangeDays. Ranges that do not
// parse are left for the fetch to report.
func checkRangeWidth(bundle string, in domain.DateRangeInput) error {
	r, err := in.Parse()
	if err != nil {
		return nil
	}
	if n := r.DayCount(); n > MaxRangeDays {
		return domain.NewConstructionError(bundle, fmt.Errorf("range spans %d days, limit is %d", n, MaxRangeDays))
	}
	return nil
}

func (s *Server) writeFetchError(w http.ResponseWriter, bundle string, req domain.FetchRequest, err error) {
	switch {
	case errors.Is(err, session.ErrSuperseded):
		s.api.Metrics.SupersededRequests.WithLabelValues(bundle).Inc()
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrConstructionFailure):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, climate.ErrUnknownBundle):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error("fetch failed", "bundle", bundle, "field_id", req.FieldID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
