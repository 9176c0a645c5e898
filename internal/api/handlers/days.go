package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"delivery-optimizer/internal/api/dto"
	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/platform/obs"
	"delivery-optimizer/internal/ports"
	"delivery-optimizer/internal/services"
)

type DaysHandler struct {
	Plans *services.PlansService
}

// List returns every stored delivery day, newest first.
func (h *DaysHandler) List(w http.ResponseWriter, r *http.Request) {
	days, err := h.Plans.ListDays(r.Context())
	if err != nil {
		log.Printf("req_id=%s list days failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDaysResponse{Days: make([]dto.DeliveryDayResponse, 0, len(days))}
	for _, day := range days {
		res.Days = append(res.Days, toDayResponse(day, nil))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one date's day with its routes and stops.
func (h *DaysHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	day, routes, err := h.Plans.GetDay(r.Context(), date)
	if err != nil {
		dayError(w, r, err, "get day")
		return
	}
	writeJSON(w, r, http.StatusOK, toDayResponse(day, routes))
}

// Delete removes a date's day and everything under it.
func (h *DaysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	if err := h.Plans.DeleteDay(r.Context(), date); err != nil {
		dayError(w, r, err, "delete day")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportDay streams every route of a date as one CSV sheet.
func (h *DaysHandler) ExportDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	out, err := h.Plans.DayCSV(r.Context(), date)
	if err != nil {
		dayError(w, r, err, "export day")
		return
	}
	writeCSV(w, fmt.Sprintf("routes-%s.csv", date.Format("2006-01-02")), out)
}

// RoutesForDay returns the routes stored under a delivery day id.
func (h *DaysHandler) RoutesForDay(w http.ResponseWriter, r *http.Request) {
	dayID, err := strconv.ParseInt(r.PathValue("dayID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "delivery day id must be an integer")
		return
	}

	routes, err := h.Plans.RoutesForDay(r.Context(), dayID)
	if err != nil {
		dayError(w, r, err, "list routes")
		return
	}
	out := make([]dto.RouteResponse, 0, len(routes))
	for _, route := range routes {
		out = append(out, toRouteResponse(route))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// ExportRoute streams one route as a CSV stop sheet.
func (h *DaysHandler) ExportRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "route id must be an integer")
		return
	}

	out, err := h.Plans.RouteCSV(r.Context(), id)
	if err != nil {
		dayError(w, r, err, "export route")
		return
	}
	writeCSV(w, fmt.Sprintf("route-%d.csv", id), out)
}

func pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", r.PathValue("date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func dayError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "no delivery day for that date")
		return
	}
	log.Printf("req_id=%s %s failed: %v", obs.RequestID(r.Context()), op, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(body)
}

func toDayResponse(day domain.DeliveryDay, routes []domain.Route) dto.DeliveryDayResponse {
	out := dto.DeliveryDayResponse{
		ID:                   day.ID,
		Date:                 day.Date.Format("2006-01-02"),
		DepotLatitude:        day.DepotLat,
		DepotLongitude:       day.DepotLon,
		DepotAddress:         day.DepotAddress,
		Status:               day.Status,
		TotalStops:           day.TotalStops,
		TotalDrivers:         day.TotalDrivers,
		TotalDistanceKm:      day.TotalDistanceKm,
		TotalDurationMinutes: day.TotalDurationMinutes,
	}
	for _, route := range routes {
		out.Routes = append(out.Routes, toRouteResponse(route))
	}
	return out
}
