package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/deskware/hr-backend-go/internal/handler/http/response"
	leaveService "github.com/deskware/hr-backend-go/internal/service/leave"
)

// RolloverHandler exposes the scheduled balance maintenance as admin
// endpoints, for backfills and for kicking a run outside the schedule.
type RolloverHandler interface {
	RunYearRollover(w http.ResponseWriter, r *http.Request)
	AllocateBalances(w http.ResponseWriter, r *http.Request)
}

type RolloverHandlerImpl struct {
	rolloverService *leaveService.RolloverService
}

func NewRolloverHandler(rolloverService *leaveService.RolloverService) RolloverHandler {
	return &RolloverHandlerImpl{rolloverService: rolloverService}
}

// RunYearRollover implements RolloverHandler. Defaults to rolling the
// previous calendar year when no year is given.
func (h *RolloverHandlerImpl) RunYearRollover(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year() - 1
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "year must be an integer", nil)
			return
		}
		year = parsed
	}

	if err := h.rolloverService.RunYearRollover(r.Context(), year); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Year rollover completed", map[string]int{"from_year": year})
}

// AllocateBalances implements RolloverHandler. Creates missing balance rows
// for every active employee for the given year.
func (h *RolloverHandlerImpl) AllocateBalances(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "year must be an integer", nil)
			return
		}
		year = parsed
	}

	if err := h.rolloverService.AllocateForActiveEmployees(r.Context(), year); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Balance allocation completed", map[string]int{"year": year})
}
