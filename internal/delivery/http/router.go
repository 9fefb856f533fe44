package http

import (
	"net/http"

	"slot-booking/internal/delivery/http/handler"
	"slot-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router              *mux.Router
	slotHandler         *handler.SlotHandler
	bookingHandler      *handler.BookingHandler
	authHandler         *handler.AuthHandler
	adminBookingHandler *handler.AdminBookingHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	csrfMiddleware      *middleware.CSRFMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(
	slotHandler *handler.SlotHandler,
	bookingHandler *handler.BookingHandler,
	authHandler *handler.AuthHandler,
	adminBookingHandler *handler.AdminBookingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	csrfMiddleware *middleware.CSRFMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		slotHandler:         slotHandler,
		bookingHandler:      bookingHandler,
		authHandler:         authHandler,
		adminBookingHandler: adminBookingHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		csrfMiddleware:      csrfMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Visitor routes (anti-forgery token)
	public := api.NewRoute().Subrouter()
	public.Use(r.csrfMiddleware.Handle)
	public.HandleFunc("/csrf-token", r.slotHandler.CSRFToken).Methods(http.MethodGet)
	public.HandleFunc("/slots", r.slotHandler.ListSlots).Methods(http.MethodGet)
	public.Handle("/bookings", r.rateLimitMiddleware.Handle(http.HandlerFunc(r.bookingHandler.Reserve))).Methods(http.MethodPost)

	// Auth routes (public)
	api.HandleFunc("/admin/auth/login", r.authHandler.Login).Methods(http.MethodPost)

	// Admin routes (protected)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Booking records (admin)
	admin.HandleFunc("/bookings", r.adminBookingHandler.GetAll).Methods(http.MethodGet)
	admin.HandleFunc("/bookings", r.adminBookingHandler.CreatePlaceholder).Methods(http.MethodPost)
	admin.HandleFunc("/bookings/{id}", r.adminBookingHandler.GetByID).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}/status", r.adminBookingHandler.UpdateStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{id}/customer", r.adminBookingHandler.UpdateCustomer).Methods(http.MethodPut)

	// Audit trail (admin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(middleware.Metrics)
	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
