package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/deskware/hr-backend-go/internal/handler/http/response"
	holidayService "github.com/deskware/hr-backend-go/internal/service/holiday"
	"github.com/go-chi/chi/v5"
)

type HolidayHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type HolidayHandlerImpl struct {
	holidayService *holidayService.Service
}

func NewHolidayHandler(service *holidayService.Service) HolidayHandler {
	return &HolidayHandlerImpl{holidayService: service}
}

// Create implements HolidayHandler.
func (h *HolidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req holidayService.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create holiday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.holidayService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", created)
}

// Get implements HolidayHandler.
func (h *HolidayHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	holidayID := chi.URLParam(r, "id")
	if holidayID == "" {
		response.BadRequest(w, "Holiday ID is required", nil)
		return
	}

	found, err := h.holidayService.GetHoliday(r.Context(), holidayID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, found)
}

// List implements HolidayHandler. With from/to query parameters it returns
// the holidays overlapping that range; otherwise the whole calendar.
func (h *HolidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")

	if fromRaw != "" && toRaw != "" {
		from, errFrom := time.Parse("2006-01-02", fromRaw)
		to, errTo := time.Parse("2006-01-02", toRaw)
		if errFrom != nil || errTo != nil {
			response.BadRequest(w, "from and to must be valid dates (YYYY-MM-DD)", nil)
			return
		}

		holidays, err := h.holidayService.GetHolidaysInRange(r.Context(), from, to)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, holidays)
		return
	}

	holidays, err := h.holidayService.GetHolidays(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, holidays)
}

// Delete implements HolidayHandler.
func (h *HolidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	holidayID := chi.URLParam(r, "id")
	if holidayID == "" {
		response.BadRequest(w, "Holiday ID is required", nil)
		return
	}

	if err := h.holidayService.DeleteHoliday(r.Context(), holidayID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
