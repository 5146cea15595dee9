package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"teambooking/internal/delivery/http/helpers"
	"teambooking/internal/domain"
	"teambooking/internal/metrics"
)

type mockReassignmentService struct {
	booking *domain.Booking
	err     error

	gotBookingID string
	gotNewHostID string
	gotOrgID     string
}

func (m *mockReassignmentService) Reassign(ctx context.Context, bookingID, newHostID, orgID string) (*domain.Booking, error) {
	m.gotBookingID = bookingID
	m.gotNewHostID = newHostID
	m.gotOrgID = orgID
	if m.err != nil {
		return nil, m.err
	}
	return m.booking, nil
}

type mockBookingRepository struct {
	booking *domain.Booking
	err     error
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.booking, nil
}

func (m *mockBookingRepository) GetByUID(ctx context.Context, uid string) (*domain.Booking, error) {
	return m.GetByID(ctx, uid)
}

func (m *mockBookingRepository) UpdateReassignment(ctx context.Context, id string, patch domain.ReassignmentPatch) (*domain.Booking, error) {
	return nil, nil
}

func reassignRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bookings/b1/reassign", strings.NewReader(body))
	req.SetPathValue("bookingID", "b1")
	return req
}

func TestBookingController_Reassign_Success(t *testing.T) {
	svc := &mockReassignmentService{booking: &domain.Booking{ID: "b1", UserID: "u2"}}
	ctrl := NewBookingController(svc, &mockBookingRepository{}, metrics.New())

	w := httptest.NewRecorder()
	ctrl.Reassign(w, reassignRequest(t, `{"new_host_id":"u2","org_id":"org1"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.gotBookingID != "b1" || svc.gotNewHostID != "u2" || svc.gotOrgID != "org1" {
		t.Errorf("service called with (%q, %q, %q)", svc.gotBookingID, svc.gotNewHostID, svc.gotOrgID)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
}

func TestBookingController_Reassign_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "invalid target", err: domain.ErrInvalidTarget, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeInvalidTarget},
		{name: "fixed host", err: domain.ErrFixedHostTarget, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeFixedHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReassignmentService{err: tt.err}
			ctrl := NewBookingController(svc, &mockBookingRepository{}, metrics.New())

			w := httptest.NewRecorder()
			ctrl.Reassign(w, reassignRequest(t, `{"new_host_id":"u2","org_id":"org1"}`))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var resp helpers.APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("expected error code %q, got %v", tt.wantCode, resp.Error)
			}
		})
	}
}

func TestBookingController_Reassign_BadRequest(t *testing.T) {
	svc := &mockReassignmentService{}
	ctrl := NewBookingController(svc, &mockBookingRepository{}, metrics.New())

	w := httptest.NewRecorder()
	ctrl.Reassign(w, reassignRequest(t, `{"new_host_id":""}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if svc.gotBookingID != "" {
		t.Error("service must not be called on validation failure")
	}
}

func TestBookingController_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &mockBookingRepository{booking: &domain.Booking{ID: "b1"}}
		ctrl := NewBookingController(&mockReassignmentService{}, repo, metrics.New())

		req := httptest.NewRequest(http.MethodGet, "/bookings/b1", nil)
		req.SetPathValue("bookingID", "b1")
		w := httptest.NewRecorder()
		ctrl.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockBookingRepository{err: domain.ErrNotFound}
		ctrl := NewBookingController(&mockReassignmentService{}, repo, metrics.New())

		req := httptest.NewRequest(http.MethodGet, "/bookings/missing", nil)
		req.SetPathValue("bookingID", "missing")
		w := httptest.NewRecorder()
		ctrl.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}
