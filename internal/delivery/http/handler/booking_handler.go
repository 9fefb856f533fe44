package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"slot-booking/internal/converter"
	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/domain/entity"
	"slot-booking/internal/usecase"
	"slot-booking/pkg/metrics"
	"slot-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	locale         converter.Locale
	log            *logrus.Logger
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, locale converter.Locale, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		locale:         locale,
		log:            log,
	}
}

// Reserve handles a booking submission
// @Summary Reserve a slot
// @Description Accepts the booking form (urlencoded or multipart) or JSON
// @Tags Bookings
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	req, err := decodeReserveRequest(r)
	if err != nil {
		metrics.RecordReservation(metrics.OutcomeInvalid)
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	booking, err := h.bookingUsecase.Reserve(r.Context(), req.DateTime, entity.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		var validationErr *usecase.ValidationError
		switch {
		case errors.As(err, &validationErr):
			metrics.RecordReservation(metrics.OutcomeInvalid)
			response.Error(w, http.StatusBadRequest, h.locale.InvalidBooking, validationErr.Fields)
		case errors.Is(err, usecase.ErrSlotAlreadyBooked):
			metrics.RecordReservation(metrics.OutcomeAlreadyBooked)
			response.Conflict(w, h.locale.SlotAlreadyBooked)
		case errors.Is(err, usecase.ErrStoreUnavailable):
			h.log.Errorf("Failed to reserve %q: %+v", req.DateTime, err)
			metrics.RecordReservation(metrics.OutcomeUnavailable)
			response.ServiceUnavailable(w, h.locale.ServiceBusy)
		default:
			h.log.Errorf("Failed to reserve %q: %+v", req.DateTime, err)
			metrics.RecordReservation(metrics.OutcomeUnavailable)
			response.Error(w, http.StatusInternalServerError, h.locale.BookingFailed, nil)
		}
		return
	}

	metrics.RecordReservation(metrics.OutcomeCreated)
	response.Success(w, http.StatusCreated, h.locale.BookingConfirmed, converter.BookingToReservation(booking))
}

// decodeReserveRequest reads JSON bodies and falls back to form fields.
func decodeReserveRequest(r *http.Request) (*dto.ReserveRequest, error) {
	var req dto.ReserveRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req.DateTime = r.FormValue("date_time")
	req.Name = r.FormValue("name")
	req.Email = r.FormValue("email")
	req.Phone = r.FormValue("phone")
	return &req, nil
}
