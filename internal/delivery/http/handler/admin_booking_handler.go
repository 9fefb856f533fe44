package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/delivery/http/middleware"
	"slot-booking/internal/usecase"
	"slot-booking/pkg/response"
	"slot-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AdminBookingHandler struct {
	adminBookingUsecase usecase.AdminBookingUsecase
	validator           *validator.CustomValidator
}

func NewAdminBookingHandler(adminBookingUsecase usecase.AdminBookingUsecase, validator *validator.CustomValidator) *AdminBookingHandler {
	return &AdminBookingHandler{
		adminBookingUsecase: adminBookingUsecase,
		validator:           validator,
	}
}

// GetAll handles listing booking records
// @Summary List bookings
// @Tags Admin Bookings
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param status query string false "available, booked or completed"
// @Success 200 {object} response.Response
// @Router /admin/bookings [get]
func (h *AdminBookingHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.BookingFilterRequest{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Status: q.Get("status"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	bookings, err := h.adminBookingUsecase.GetAll(r.Context(), &req)
	if err != nil {
		var verr *usecase.ValidationError
		if errors.As(err, &verr) {
			response.ValidationError(w, verr.Fields)
			return
		}
		response.InternalServerError(w, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *AdminBookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	booking, err := h.adminBookingUsecase.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrBookingNotFound) {
			response.NotFound(w, "Booking not found")
			return
		}
		response.InternalServerError(w, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

// CreatePlaceholder handles creating an availability placeholder
// @Summary Create an "available" record for a slot
// @Tags Admin Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePlaceholderRequest true "Slot"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/bookings [post]
func (h *AdminBookingHandler) CreatePlaceholder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePlaceholderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	booking, err := h.adminBookingUsecase.CreatePlaceholder(r.Context(), actor, &req)
	if err != nil {
		var verr *usecase.ValidationError
		switch {
		case errors.As(err, &verr):
			response.ValidationError(w, verr.Fields)
		case errors.Is(err, usecase.ErrSlotAlreadyBooked):
			response.Conflict(w, "Slot is already booked")
		case errors.Is(err, usecase.ErrPlaceholderExists):
			response.Conflict(w, "Slot already has a placeholder")
		default:
			response.InternalServerError(w, "Failed to create placeholder")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Placeholder created successfully", booking)
}

// UpdateStatus handles moving a booking forward
// @Summary Update booking status
// @Description Only booked -> completed is allowed
// @Tags Admin Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/bookings/{id}/status [patch]
func (h *AdminBookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	booking, err := h.adminBookingUsecase.UpdateStatus(r.Context(), actor, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, usecase.ErrInvalidStatusTransition):
			response.Conflict(w, "Status change not allowed")
		default:
			response.InternalServerError(w, "Failed to update booking")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking updated successfully", booking)
}

// UpdateCustomer handles correcting the customer of a booking
// @Summary Update booking customer details
// @Tags Admin Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingCustomerRequest true "Customer"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/bookings/{id}/customer [put]
func (h *AdminBookingHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.UpdateBookingCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	booking, err := h.adminBookingUsecase.UpdateCustomer(r.Context(), actor, id, &req)
	if err != nil {
		var verr *usecase.ValidationError
		switch {
		case errors.As(err, &verr):
			response.ValidationError(w, verr.Fields)
		case errors.Is(err, usecase.ErrBookingNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, usecase.ErrNoCustomerOnPlaceholder):
			response.Conflict(w, "Placeholders have no customer")
		default:
			response.InternalServerError(w, "Failed to update booking")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking updated successfully", booking)
}
