package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/middleware"
	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/validate"
)

// WorkerAccountService はワーカーハンドラーが必要とするアカウントサービス。
type WorkerAccountService interface {
	Signup(ctx context.Context, in auth.WorkerSignupInput) (*model.Worker, string, error)
	Signin(ctx context.Context, email, password string) (*model.Worker, string, error)
	GetProfile(ctx context.Context, id string) (*model.Worker, error)
	UpdateProfile(ctx context.Context, id string, in auth.WorkerProfileUpdateInput) (*model.Worker, error)
}

// GigApplyService はワーカー側のギグ応募操作。
type GigApplyService interface {
	Apply(ctx context.Context, workerID, gigID, message string) (*model.GigApplication, error)
	AppliedGigs(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, query.Pagination, error)
}

// MachineApplyService はワーカー側の機材利用申請操作。
type MachineApplyService interface {
	Apply(ctx context.Context, workerID, machineID, message string) (*model.MachineApplication, error)
	AppliedMachines(ctx context.Context, workerID string, params query.ListParams) ([]model.MachineApplicationWithMachine, query.Pagination, error)
}

// WorkerHandler はワーカー向けエンドポイントのHTTPハンドラー。
type WorkerHandler struct {
	accounts WorkerAccountService
	gigs     GigApplyService
	machines MachineApplyService
}

// NewWorkerHandler はWorkerHandlerを生成する。
func NewWorkerHandler(accounts WorkerAccountService, gigs GigApplyService, machines MachineApplyService) *WorkerHandler {
	return &WorkerHandler{
		accounts: accounts,
		gigs:     gigs,
		machines: machines,
	}
}

// Signup はワーカー登録を処理する。
// POST /api/worker/signup
func (h *WorkerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.WorkerSignup, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	worker, token, err := h.accounts.Signup(r.Context(), auth.WorkerSignupInput{
		Name:       res.Str("name"),
		Email:      res.Str("email"),
		Password:   res.Str("password"),
		Phone:      res.Str("phone"),
		Location:   res.Str("location"),
		Skills:     res.StrSlice("skills"),
		Experience: res.Str("experience"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Signup successful",
		"worker":  toWorkerResponse(worker),
		"token":   token,
	})
}

// Signin はワーカーのサインインを処理する。
// POST /api/worker/signin
func (h *WorkerHandler) Signin(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.Signin, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	worker, token, err := h.accounts.Signin(r.Context(), res.Str("email"), res.Str("password"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Signin successful",
		"worker":  toWorkerResponse(worker),
		"token":   token,
	})
}

// GetProfile はワーカーのプロフィールを取得する。
// GET /api/worker/profile
func (h *WorkerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	worker, err := h.accounts.GetProfile(r.Context(), ac.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"worker":  toWorkerResponse(worker),
	})
}

// UpdateProfile はワーカーのプロフィールを部分更新する。
// PUT /api/worker/profile
func (h *WorkerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.WorkerProfileUpdate, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	in := auth.WorkerProfileUpdateInput{}
	if res.Has("name") {
		v := res.Str("name")
		in.Name = &v
	}
	if res.Has("phone") {
		v := res.Str("phone")
		in.Phone = &v
	}
	if res.Has("location") {
		v := res.Str("location")
		in.Location = &v
	}
	if res.Has("skills") {
		in.Skills = res.StrSlice("skills")
	}
	if res.Has("experience") {
		v := res.Str("experience")
		in.Experience = &v
	}

	worker, err := h.accounts.UpdateProfile(r.Context(), ac.ID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Profile updated",
		"worker":  toWorkerResponse(worker),
	})
}

// ApplyGig はギグへの応募を処理する。
// POST /api/worker/apply-gig/{id}
func (h *WorkerHandler) ApplyGig(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	gigID := chi.URLParam(r, "id")

	message, apiErr := applicationMessage(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.gigs.Apply(r.Context(), ac.ID, gigID, message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success":     true,
		"message":     "Application submitted",
		"application": toGigApplicationResponse(app),
	})
}

// ApplyMachine は機材利用申請を処理する。
// POST /api/worker/apply-machine/{id}
func (h *WorkerHandler) ApplyMachine(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	machineID := chi.URLParam(r, "id")

	message, apiErr := applicationMessage(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.machines.Apply(r.Context(), ac.ID, machineID, message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success":     true,
		"message":     "Application submitted",
		"application": toMachineApplicationResponse(app),
	})
}

// AppliedGigs はワーカー自身のギグ応募一覧を返す。
// GET /api/worker/applied-gigs
func (h *WorkerHandler) AppliedGigs(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	params := query.ParseListParams(r.URL.Query())
	apps, pagination, err := h.gigs.AppliedGigs(r.Context(), ac.ID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope("applications", toAppliedGigResponses(apps), pagination))
}

// AppliedMachines はワーカー自身の機材申請一覧を返す。
// GET /api/worker/applied-machines
func (h *WorkerHandler) AppliedMachines(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	params := query.ParseListParams(r.URL.Query())
	apps, pagination, err := h.machines.AppliedMachines(r.Context(), ac.ID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope("applications", toAppliedMachineResponses(apps), pagination))
}

// applicationMessage は応募ボディからメッセージを取り出す。
// ボディなし（空）の応募はメッセージなしとして許容する。
func applicationMessage(r *http.Request) (string, *model.APIError) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}

	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		return "", apiErr
	}

	res := validate.Validate(validate.ApplicationCreate, payload)
	if !res.Valid {
		return "", model.NewInvalidRequestError(res.Errors[0].Message)
	}
	return res.Str("message"), nil
}
