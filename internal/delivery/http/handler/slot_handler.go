package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"slot-booking/internal/converter"
	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/delivery/http/middleware"
	"slot-booking/internal/domain/entity"
	"slot-booking/internal/domain/grid"
	"slot-booking/internal/usecase"
	"slot-booking/pkg/metrics"
	"slot-booking/pkg/response"

	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
)

// MaxWeeks caps the ?weeks= parameter of the slot listing.
const MaxWeeks = 12

var timeNow = time.Now

type SlotHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	template            grid.Template
	defaultWeeks        int
	loc                 *time.Location
	locale              converter.Locale
	log                 *logrus.Logger
}

func NewSlotHandler(
	availabilityUsecase usecase.AvailabilityUsecase,
	template grid.Template,
	defaultWeeks int,
	loc *time.Location,
	locale converter.Locale,
	log *logrus.Logger,
) *SlotHandler {
	return &SlotHandler{
		availabilityUsecase: availabilityUsecase,
		template:            template,
		defaultWeeks:        defaultWeeks,
		loc:                 loc,
		locale:              locale,
		log:                 log,
	}
}

// ListSlots handles the slot grid
// @Summary List bookable slots
// @Description Slots of the coming weeks that have not started yet, grouped by day
// @Tags Slots
// @Produce json
// @Param weeks query int false "Number of weeks" default(2)
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /slots [get]
func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	weeks := h.defaultWeeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxWeeks {
			response.Error(w, http.StatusBadRequest, "weeks must be a number between 1 and "+strconv.Itoa(MaxWeeks), nil)
			return
		}
		weeks = n
	}

	now := timeNow().In(h.loc)
	slots, err := h.availabilityUsecase.ListSlots(r.Context(), grid.Window{
		ReferenceDate: now,
		WeekCount:     weeks,
		Template:      h.template,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrStoreUnavailable) {
			h.log.Errorf("Failed to list slots: %+v", err)
			metrics.RecordError("availability", "store_unavailable")
			response.ServiceUnavailable(w, h.locale.ServiceBusy)
			return
		}
		h.log.Errorf("Failed to list slots: %+v", err)
		response.InternalServerError(w, "Failed to list slots")
		return
	}

	slots = notStartedBy(slots, now)

	free := 0
	for _, s := range slots {
		if s.IsFree() {
			free++
		}
	}
	metrics.RecordListing(free)

	resp := converter.SlotsToGridResponse(slots, now, h.locale)
	resp.CSRFToken = csrf.Token(r)
	w.Header().Set(middleware.CSRFHeaderName, resp.CSRFToken)

	response.Success(w, http.StatusOK, "Slots retrieved successfully", resp)
}

// notStartedBy drops the slots starting at or before now. Reservations for
// them would be refused, so they are not offered.
func notStartedBy(slots []entity.SlotAvailability, now time.Time) []entity.SlotAvailability {
	// zero-padded "YYYY-MM-DD HH:MM" keys order like the times they name
	cutoff := now.Format(entity.DateLayout + " " + entity.TimeLayout)
	out := make([]entity.SlotAvailability, 0, len(slots))
	for _, s := range slots {
		if s.Key().String() > cutoff {
			out = append(out, s)
		}
	}
	return out
}

// CSRFToken hands out a token for the booking form
// @Summary Get anti-forgery token
// @Tags Slots
// @Produce json
// @Success 200 {object} response.Response
// @Router /csrf-token [get]
func (h *SlotHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set(middleware.CSRFHeaderName, token)
	response.Success(w, http.StatusOK, "Token issued", dto.CSRFTokenResponse{Token: token})
}
