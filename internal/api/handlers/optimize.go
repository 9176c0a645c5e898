package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"delivery-optimizer/internal/api/dto"
	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/platform/obs"
	"delivery-optimizer/internal/ports"
	"delivery-optimizer/internal/services"
)

type OptimizeHandler struct {
	Service *services.OptimizeService
}

// Optimize runs one optimization invocation for a date. Validation
// failures map to 400, routing-provider failures to 502; every solver
// condition returns 200 with status carried in the body.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	constraints := make(map[int64]domain.DriverConstraintSpec, len(req.DriverConstraints))
	for id, c := range req.DriverConstraints {
		constraints[id] = domain.DriverConstraintSpec{
			MaxStops:                c.MaxStops,
			MaxRouteDurationMinutes: c.MaxRouteDurationMinutes,
			StartTime:               c.StartTime,
			EndAtHome:               c.EndAtHome,
		}
	}

	result, err := h.Service.Optimize(r.Context(), services.OptimizeRequest{
		Date:              req.Date,
		AddressIDs:        req.AddressIDs,
		DriverIDs:         req.DriverIDs,
		DepotLat:          req.DepotLatitude,
		DepotLon:          req.DepotLongitude,
		DepotAddress:      req.DepotAddress,
		StartTime:         req.StartTime,
		DriverConstraints: constraints,
		TimeLimitSeconds:  req.TimeLimitSeconds,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Msg)
			return
		}
		var perr *ports.ProviderError
		if errors.As(err, &perr) {
			writeError(w, r, http.StatusBadGateway, "routing provider unavailable")
			return
		}
		log.Printf("req_id=%s optimize failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(result))
}

func toOptimizeResponse(res *domain.OptimizationResult) dto.OptimizeResponse {
	out := dto.OptimizeResponse{
		DeliveryDayID:         res.DeliveryDayID,
		Date:                  res.Date.Format("2006-01-02"),
		Status:                res.Status,
		TotalRoutes:           res.TotalRoutes,
		TotalStops:            res.TotalStops,
		TotalDistanceKm:       res.TotalDistanceKm,
		TotalDurationMinutes:  res.TotalDurationMinutes,
		Routes:                make([]dto.RouteResponse, 0, len(res.Routes)),
		DroppedAddresses:      res.DroppedAddresses,
		DroppedAddressDetails: make([]dto.DroppedAddress, 0, len(res.DroppedAddressDetails)),
		Message:               res.Message,
	}
	if out.DroppedAddresses == nil {
		out.DroppedAddresses = []int64{}
	}
	for _, route := range res.Routes {
		out.Routes = append(out.Routes, toRouteResponse(route))
	}
	for _, d := range res.DroppedAddressDetails {
		out.DroppedAddressDetails = append(out.DroppedAddressDetails, dto.DroppedAddress{
			AddressID:          d.AddressID,
			RecipientName:      d.RecipientName,
			Street:             d.Street,
			Reason:             d.Reason,
			TimeWindow:         d.TimeWindow,
			ServiceTimeMinutes: d.ServiceTimeMinutes,
		})
	}
	return out
}

func toRouteResponse(route domain.Route) dto.RouteResponse {
	out := dto.RouteResponse{
		ID:                   route.ID,
		DriverID:             route.DriverID,
		RouteNumber:          route.RouteNumber,
		Color:                route.Color,
		TotalStops:           route.TotalStops,
		TotalDistanceKm:      route.TotalDistanceKm,
		TotalDurationMinutes: route.TotalDurationMinutes,
		Geometry:             route.Geometry,
		StartTime:            route.StartTime,
		EndTime:              route.EndTime,
		Stops:                make([]dto.StopResponse, 0, len(route.Stops)),
	}
	for _, stop := range route.Stops {
		out.Stops = append(out.Stops, dto.StopResponse{
			AddressID:                   stop.AddressID,
			Sequence:                    stop.Sequence,
			EstimatedArrival:            stop.EstimatedArrival,
			EstimatedDeparture:          stop.EstimatedDeparture,
			DistanceFromPreviousKm:      stop.DistanceFromPreviousKm,
			DurationFromPreviousMinutes: stop.DurationFromPreviousMinutes,
		})
	}
	return out
}
