package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/vanheeren/dentalcal/internal/booking"
	"github.com/vanheeren/dentalcal/internal/calendar"
	"github.com/vanheeren/dentalcal/internal/config"
	"github.com/vanheeren/dentalcal/internal/instrumentation"
	"github.com/vanheeren/dentalcal/internal/logging"
	"github.com/vanheeren/dentalcal/internal/schedule"
)

const (
	// DefaultRESTAddr is the default listen address for the REST API.
	DefaultRESTAddr = ":8080"

	restReadHeaderTimeout = 10 * time.Second
	restWriteTimeout      = 30 * time.Second
	restIdleTimeout       = 60 * time.Second
)

// requestIDHeader carries the per-request correlation ID.
const requestIDHeader = "X-Request-Id"

// RESTServer exposes the booking flows as a plain HTTP/JSON API for
// clients that do not speak MCP.
type RESTServer struct {
	svc     *booking.Service
	clinic  *config.ClinicConfig
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	httpServer *http.Server
}

// RESTServerOption customizes a RESTServer.
type RESTServerOption func(*RESTServer)

// WithRESTMetrics attaches a metrics recorder to the REST server.
func WithRESTMetrics(m *instrumentation.Metrics) RESTServerOption {
	return func(s *RESTServer) { s.metrics = m }
}

// WithRESTLogger sets the logger used for request logging.
func WithRESTLogger(logger *slog.Logger) RESTServerOption {
	return func(s *RESTServer) { s.logger = logger }
}

// NewRESTServer creates a REST server on top of a booking service.
func NewRESTServer(svc *booking.Service, clinic *config.ClinicConfig, opts ...RESTServerOption) *RESTServer {
	s := &RESTServer{
		svc:    svc,
		clinic: clinic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithTransport(s.logger, "rest")
	return s
}

// Router builds the HTTP handler. Exposed separately so tests can drive
// it with httptest without binding a port.
func (s *RESTServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	// The voice-agent frontends are served from arbitrary origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/availability", s.handleAvailability)
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", s.handleBook)
			r.Get("/", s.handleList)
			r.Get("/by-phone", s.handleFindByPhone)
			r.Get("/{id}", s.handleGet)
			r.Post("/{id}/reschedule", s.handleReschedule)
			r.Delete("/{id}", s.handleCancel)
		})
	})

	return r
}

// Start starts the REST server in a blocking manner.
func (s *RESTServer) Start(addr string) error {
	if addr == "" {
		addr = DefaultRESTAddr
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: restReadHeaderTimeout,
		WriteTimeout:      restWriteTimeout,
		IdleTimeout:       restIdleTimeout,
	}

	s.logger.Info("starting REST server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the REST server.
func (s *RESTServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down REST server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requestID assigns a correlation ID to every request, honoring one the
// caller already sent.
func (s *RESTServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

// logRequests emits one structured log line per request and records the
// HTTP metrics, labeled by route pattern to keep cardinality bounded.
func (s *RESTServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}

		requestID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Info("http request",
			"method", r.Method,
			"path", pattern,
			"status", ww.Status(),
			"request_id", requestID,
			slog.Duration(logging.KeyDuration, elapsed),
		)

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Context(), r.Method, pattern, ww.Status(), elapsed)
		}
	})
}

// --- handlers ---

func (s *RESTServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"clinic":   s.clinic.ClinicName,
		"timezone": s.clinic.Timezone,
	})
}

// slotResponse is one bookable slot.
type slotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// availabilityResponse is the slot list for one day.
type availabilityResponse struct {
	Date            string         `json:"date"`
	AppointmentType string         `json:"appointment_type"`
	DurationMinutes int            `json:"duration_minutes"`
	Slots           []slotResponse `json:"slots"`
}

func (s *RESTServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := booking.AvailabilityRequest{
		Date:      q.Get("date"),
		Type:      q.Get("appointment_type"),
		StartTime: q.Get("start_time"),
		EndTime:   q.Get("end_time"),
	}
	if d := q.Get("duration"); d != "" {
		minutes, err := strconv.Atoi(d)
		if err != nil {
			s.writeError(w, r, &booking.InvalidRequestError{Field: "duration", Reason: "must be a number of minutes"})
			return
		}
		req.DurationMinutes = minutes
	}

	result, err := s.svc.Availability(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := availabilityResponse{
		Date:            result.Day.Format("2006-01-02"),
		AppointmentType: string(result.Type),
		DurationMinutes: int(result.Duration.Minutes()),
		Slots:           make([]slotResponse, 0, len(result.Slots)),
	}
	for _, slot := range result.Slots {
		resp.Slots = append(resp.Slots, slotResponse{
			StartTime: slot.Start.Format(time.RFC3339),
			EndTime:   slot.End.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// appointmentResponse is the JSON shape of an appointment.
type appointmentResponse struct {
	ID              string `json:"id"`
	Summary         string `json:"summary,omitempty"`
	PatientName     string `json:"patient_name,omitempty"`
	PatientEmail    string `json:"patient_email,omitempty"`
	PatientPhone    string `json:"patient_phone,omitempty"`
	AppointmentType string `json:"appointment_type,omitempty"`
	Notes           string `json:"notes,omitempty"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	Status          string `json:"status,omitempty"`
}

func toAppointmentResponse(a calendar.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:              a.ID,
		Summary:         a.Summary,
		PatientName:     a.PatientName,
		PatientEmail:    a.PatientEmail,
		PatientPhone:    a.PatientPhone,
		AppointmentType: string(a.Type),
		Notes:           a.Notes,
		Status:          a.Status,
	}
	if !a.Start.IsZero() {
		resp.StartTime = a.Start.Format(time.RFC3339)
	}
	if !a.End.IsZero() {
		resp.EndTime = a.End.Format(time.RFC3339)
	}
	return resp
}

// bookRequest is the POST /appointments body.
type bookRequest struct {
	PatientName     string `json:"patient_name"`
	PatientEmail    string `json:"patient_email"`
	PatientPhone    string `json:"patient_phone"`
	DateTime        string `json:"date_time"`
	AppointmentType string `json:"appointment_type"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

func (s *RESTServer) handleBook(w http.ResponseWriter, r *http.Request) {
	var body bookRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	appointment, err := s.svc.Book(r.Context(), booking.BookRequest{
		PatientName:     body.PatientName,
		PatientEmail:    body.PatientEmail,
		PatientPhone:    body.PatientPhone,
		DateTime:        body.DateTime,
		Type:            body.AppointmentType,
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordBooking(r.Context(), instrumentation.BookingBook, string(appointment.Type))
	s.logger.Info("appointment booked",
		logging.Operation(instrumentation.BookingBook),
		logging.AppointmentID(appointment.ID),
		logging.PatientHash(appointment.PatientEmail),
	)
	writeJSON(w, http.StatusCreated, toAppointmentResponse(*appointment))
}

func (s *RESTServer) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	appointments, err := s.svc.List(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]appointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		resp = append(resp, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": resp})
}

func (s *RESTServer) handleGet(w http.ResponseWriter, r *http.Request) {
	appointment, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(*appointment))
}

// rescheduleRequest is the POST /appointments/{id}/reschedule body.
type rescheduleRequest struct {
	NewDateTime     string `json:"new_date_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *RESTServer) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var body rescheduleRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	appointment, err := s.svc.Reschedule(r.Context(), booking.RescheduleRequest{
		ID:              chi.URLParam(r, "id"),
		NewDateTime:     body.NewDateTime,
		DurationMinutes: body.DurationMinutes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordBooking(r.Context(), instrumentation.BookingReschedule, string(appointment.Type))
	s.logger.Info("appointment rescheduled",
		logging.Operation(instrumentation.BookingReschedule),
		logging.AppointmentID(appointment.ID),
	)
	writeJSON(w, http.StatusOK, toAppointmentResponse(*appointment))
}

func (s *RESTServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appointment, err := s.svc.Cancel(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordBooking(r.Context(), instrumentation.BookingCancel, string(appointment.Type))
	s.logger.Info("appointment cancelled",
		logging.Operation(instrumentation.BookingCancel),
		logging.AppointmentID(id),
		"reason", r.URL.Query().Get("reason"),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"cancelled":   true,
		"appointment": toAppointmentResponse(*appointment),
	})
}

func (s *RESTServer) handleFindByPhone(w http.ResponseWriter, r *http.Request) {
	appointments, err := s.svc.FindByPhone(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]appointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		resp = append(resp, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": resp})
}

func (s *RESTServer) recordBooking(ctx context.Context, operation, appointmentType string) {
	if s.metrics != nil {
		s.metrics.RecordBooking(ctx, operation, appointmentType, instrumentation.StatusSuccess)
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps typed booking and schedule errors onto HTTP statuses:
// malformed input is 400, policy rejections 422, conflicts 409, unknown
// IDs 404. Anything else is a 500 with the detail kept out of the body.
func (s *RESTServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid   *booking.InvalidRequestError
		parseErr  *schedule.DateParseError
		duration  *schedule.InvalidDurationError
		policyErr *schedule.OutOfPolicyError
		taken     *booking.SlotTakenError
		notFound  *booking.NotFoundError
	)

	switch {
	case errors.As(err, &invalid), errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request"})
	case errors.As(err, &duration):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_duration"})
	case errors.As(err, &policyErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: string(policyErr.Reason)})
	case errors.As(err, &taken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "slot_taken"})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			logging.Err(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &booking.InvalidRequestError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
