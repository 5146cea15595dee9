package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	h "teambooking/internal/delivery/http/helpers"
	"teambooking/internal/domain"
	"teambooking/internal/metrics"
)

// ReassignRequest is the request body for POST /bookings/{bookingID}/reassign
type ReassignRequest struct {
	NewHostID string `json:"new_host_id"`
	OrgID     string `json:"org_id"`
}

// Validate implements Validator.
func (r ReassignRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.NewHostID) == "" {
		errs = append(errs, "new_host_id is required")
	}
	if strings.TrimSpace(r.OrgID) == "" {
		errs = append(errs, "org_id is required")
	}
	return errs
}

type BookingController struct {
	Service     domain.ReassignmentService
	BookingRepo domain.BookingRepository
	Metrics     *metrics.Metrics
}

func NewBookingController(svc domain.ReassignmentService, bookingRepo domain.BookingRepository, m *metrics.Metrics) *BookingController {
	return &BookingController{Service: svc, BookingRepo: bookingRepo, Metrics: m}
}

// Get godoc
// @Summary Get a booking
// @Description Fetch a booking by ID with its attendees and calendar references.
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} helpers.APIResponse "data contains the booking"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /bookings/{bookingID} [get]
func (c *BookingController) Get(w http.ResponseWriter, r *http.Request) {
	booking, err := c.BookingRepo.GetByID(r.Context(), r.PathValue("bookingID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "booking not found")
			return
		}
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, booking)
}

// Reassign godoc
// @Summary Reassign a booking to another round-robin host
// @Description Move the booking to the given host, updating the stored booking, calendar events, references, notifications, and pending workflow reminders.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Param body body ReassignRequest true "Reassignment target"
// @Success 200 {object} helpers.APIResponse "data contains the updated booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_target"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: fixed_host"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /bookings/{bookingID}/reassign [post]
func (c *BookingController) Reassign(w http.ResponseWriter, r *http.Request) {
	var req ReassignRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	start := time.Now()
	booking, err := c.Service.Reassign(r.Context(), r.PathValue("bookingID"), req.NewHostID, req.OrgID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.Metrics.RecordReassignment("not_found", time.Since(start))
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidTarget):
			c.Metrics.RecordReassignment("invalid_target", time.Since(start))
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeInvalidTarget, err.Error())
		case errors.Is(err, domain.ErrFixedHostTarget):
			c.Metrics.RecordReassignment("fixed_host", time.Since(start))
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeFixedHost, err.Error())
		default:
			c.Metrics.RecordReassignment("error", time.Since(start))
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}
	c.Metrics.RecordReassignment("success", time.Since(start))

	h.WriteJSONSuccess(w, http.StatusOK, booking)
}
