package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/worklink/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *model.APIError
		want int
	}{
		{"authentication", model.NewAuthenticationError("Invalid email or password"), http.StatusUnauthorized},
		{"authorization", model.NewAuthorizationError("gig"), http.StatusForbidden},
		{"gig not found", model.NewGigNotFoundError("g-1"), http.StatusNotFound},
		{"machine not found", model.NewMachineNotFoundError("mc-1"), http.StatusNotFound},
		{"application not found", model.NewApplicationNotFoundError("a-1"), http.StatusNotFound},
		{"profile not found", model.NewProfileNotFoundError(), http.StatusNotFound},
		{"email taken", model.NewEmailTakenError(), http.StatusConflict},
		{"duplicate application", model.NewDuplicateApplicationError(), http.StatusConflict},
		{"machine unavailable", model.NewMachineUnavailableError(), http.StatusConflict},
		{"already decided", model.NewApplicationDecidedError(model.StatusApproved), http.StatusConflict},
		{"invalid request", model.NewInvalidRequestError("bad"), http.StatusBadRequest},
		{"unknown code", &model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_APIError(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, model.NewEmailTakenError())

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	resp := parseEnvelope(t, w)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
	if resp["message"] != "An account with this email already exists" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	// ラップされたAPIErrorもerrors.Asで検出される
	wrapped := errors.Join(errors.New("context"), model.NewGigNotFoundError("g-1"))

	w := httptest.NewRecorder()
	handleServiceError(w, wrapped)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleServiceError_UnknownError(t *testing.T) {
	// APIError以外は内部情報を漏らさず500を返す
	w := httptest.NewRecorder()
	handleServiceError(w, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	resp := parseEnvelope(t, w)
	if resp["message"] != "Internal server error" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	writeValidationError(w, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestToWorkerResponse_NilSkills(t *testing.T) {
	resp := toWorkerResponse(&model.Worker{ID: "w-1"})
	if resp.Skills == nil {
		t.Error("Skills = nil, want empty slice")
	}
}
