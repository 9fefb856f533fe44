package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/usecase"
	"slot-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type stubAdminBookingUsecase struct {
	err         error
	gotCustomer *dto.UpdateBookingCustomerRequest
}

func (s *stubAdminBookingUsecase) GetAll(context.Context, *dto.BookingFilterRequest) (*dto.BookingListResponse, error) {
	return &dto.BookingListResponse{}, s.err
}

func (s *stubAdminBookingUsecase) GetByID(_ context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookingResponse{ID: id}, nil
}

func (s *stubAdminBookingUsecase) CreatePlaceholder(_ context.Context, _ string, req *dto.CreatePlaceholderRequest) (*dto.BookingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookingResponse{ID: uuid.New(), Date: req.Date, Time: req.Time, Status: "available"}, nil
}

func (s *stubAdminBookingUsecase) UpdateStatus(_ context.Context, _ string, id uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookingResponse{ID: id, Status: req.Status}, nil
}

func (s *stubAdminBookingUsecase) UpdateCustomer(_ context.Context, _ string, id uuid.UUID, req *dto.UpdateBookingCustomerRequest) (*dto.BookingResponse, error) {
	s.gotCustomer = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookingResponse{ID: id, CustomerName: req.Name}, nil
}

func TestAdminCreatePlaceholder(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"created", `{"date":"2024-06-04","time":"09:30"}`, nil, http.StatusCreated},
		{"off grid", `{"date":"2024-06-04","time":"09:15"}`, &usecase.ValidationError{Fields: map[string]string{"time": "time is not a slot of the weekly grid"}}, http.StatusBadRequest},
		{"placeholder exists", `{"date":"2024-06-04","time":"09:30"}`, usecase.ErrPlaceholderExists, http.StatusConflict},
		{"already booked", `{"date":"2024-06-04","time":"09:30"}`, usecase.ErrSlotAlreadyBooked, http.StatusConflict},
		{"missing time", `{"date":"2024-06-04"}`, nil, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAdminBookingHandler(&stubAdminBookingUsecase{err: tc.err}, validator.NewValidator())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/bookings", strings.NewReader(tc.body))
			h.CreatePlaceholder(rec, req)

			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestAdminUpdateCustomer(t *testing.T) {
	id := uuid.New()
	body := `{"name":"Grace Hopper","email":"grace@example.com","phone":"555 0100"}`

	cases := []struct {
		name   string
		id     string
		body   string
		err    error
		status int
	}{
		{"updated", id.String(), body, nil, http.StatusOK},
		{"bad id", "not-a-uuid", body, nil, http.StatusBadRequest},
		{"malformed body", id.String(), `{"name":`, nil, http.StatusBadRequest},
		{"invalid email", id.String(), body, &usecase.ValidationError{Fields: map[string]string{"email": "email must be a valid email address"}}, http.StatusBadRequest},
		{"not found", id.String(), body, usecase.ErrBookingNotFound, http.StatusNotFound},
		{"placeholder", id.String(), body, usecase.ErrNoCustomerOnPlaceholder, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &stubAdminBookingUsecase{err: tc.err}
			h := NewAdminBookingHandler(uc, validator.NewValidator())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/bookings/"+tc.id+"/customer", strings.NewReader(tc.body))
			req = mux.SetURLVars(req, map[string]string{"id": tc.id})
			h.UpdateCustomer(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.status != http.StatusOK {
				return
			}

			if uc.gotCustomer == nil || uc.gotCustomer.Email != "grace@example.com" {
				t.Errorf("expected the request to reach the usecase, got %+v", uc.gotCustomer)
			}
			var resp dto.BookingResponse
			if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &resp); err != nil {
				t.Fatalf("expected a booking, got %v", err)
			}
			if resp.ID != id || resp.CustomerName != "Grace Hopper" {
				t.Errorf("unexpected booking %+v", resp)
			}
		})
	}
}
