package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/machine"
	"github.com/hitoshi/worklink/internal/middleware"
	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/validate"
)

// ManufacturerAccountService はメーカーハンドラーが必要とするアカウントサービス。
type ManufacturerAccountService interface {
	Signup(ctx context.Context, in auth.CompanySignupInput) (*model.Manufacturer, string, error)
	Signin(ctx context.Context, email, password string) (*model.Manufacturer, string, error)
	GetProfile(ctx context.Context, id string) (*model.Manufacturer, error)
	UpdateProfile(ctx context.Context, id string, in auth.CompanyProfileUpdateInput) (*model.Manufacturer, error)
}

// MachineServiceInterface はメーカー側の機材操作。
type MachineServiceInterface interface {
	Create(ctx context.Context, manufacturerID string, in machine.CreateInput) (*model.Machine, error)
	Update(ctx context.Context, manufacturerID, machineID string, in machine.UpdateInput) (*model.Machine, error)
	Delete(ctx context.Context, manufacturerID, machineID string) error
	ListOwned(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, query.Pagination, error)
	Applications(ctx context.Context, manufacturerID, machineID string) ([]*model.MachineApplication, error)
	Decide(ctx context.Context, manufacturerID, applicationID string, status model.ApplicationStatus) (*model.MachineApplication, error)
}

// ManufacturerHandler はメーカー向けエンドポイントのHTTPハンドラー。
type ManufacturerHandler struct {
	accounts ManufacturerAccountService
	machines MachineServiceInterface
}

// NewManufacturerHandler はManufacturerHandlerを生成する。
func NewManufacturerHandler(accounts ManufacturerAccountService, machines MachineServiceInterface) *ManufacturerHandler {
	return &ManufacturerHandler{
		accounts: accounts,
		machines: machines,
	}
}

// Signup はメーカー登録を処理する。
// POST /api/manufacturer/signup
func (h *ManufacturerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.ManufacturerSignup, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	manufacturer, token, err := h.accounts.Signup(r.Context(), companySignupInput(res))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success":      true,
		"message":      "Signup successful",
		"manufacturer": toManufacturerResponse(manufacturer),
		"token":        token,
	})
}

// Signin はメーカーのサインインを処理する。
// POST /api/manufacturer/signin
func (h *ManufacturerHandler) Signin(w http.ResponseWriter, r *http.Request) {
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

	manufacturer, token, err := h.accounts.Signin(r.Context(), res.Str("email"), res.Str("password"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      "Signin successful",
		"manufacturer": toManufacturerResponse(manufacturer),
		"token":        token,
	})
}

// GetProfile はメーカーのプロフィールを取得する。
// GET /api/manufacturer/profile
func (h *ManufacturerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	manufacturer, err := h.accounts.GetProfile(r.Context(), ac.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"manufacturer": toManufacturerResponse(manufacturer),
	})
}

// UpdateProfile はメーカーのプロフィールを部分更新する。
// PUT /api/manufacturer/profile
func (h *ManufacturerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	res := validate.Validate(validate.CompanyProfileUpdate, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	manufacturer, err := h.accounts.UpdateProfile(r.Context(), ac.ID, companyProfileUpdateInput(res))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      "Profile updated",
		"manufacturer": toManufacturerResponse(manufacturer),
	})
}

// AddMachine は機材を登録する。
// POST /api/manufacturer/add-machine
func (h *ManufacturerHandler) AddMachine(w http.ResponseWriter, r *http.Request) {
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

	res := validate.Validate(validate.MachineCreate, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	// availableを省略した機材は利用可能として登録する
	available := true
	if v, ok := res.Bool("available"); ok {
		available = v
	}

	created, err := h.machines.Create(r.Context(), ac.ID, machine.CreateInput{
		Name:        res.Str("name"),
		Type:        res.Str("type"),
		Description: res.Str("description"),
		Location:    res.Str("location"),
		DailyRate:   res.Num("dailyRate"),
		Available:   available,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Machine added",
		"machine": toMachineResponse(created),
	})
}

// YourMachines はメーカー自身の機材一覧を返す。
// GET /api/manufacturer/your-machines
func (h *ManufacturerHandler) YourMachines(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	params := query.ParseListParams(r.URL.Query())
	machines, pagination, err := h.machines.ListOwned(r.Context(), ac.ID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope("machines", toMachineResponses(machines), pagination))
}

// UpdateMachine は機材を部分更新する。所有者のみ実行できる。
// PUT /api/manufacturer/update-machine/{id}
func (h *ManufacturerHandler) UpdateMachine(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	machineID := chi.URLParam(r, "id")

	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.MachineUpdate, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	in := machine.UpdateInput{}
	if res.Has("name") {
		v := res.Str("name")
		in.Name = &v
	}
	if res.Has("type") {
		v := res.Str("type")
		in.Type = &v
	}
	if res.Has("description") {
		v := res.Str("description")
		in.Description = &v
	}
	if res.Has("location") {
		v := res.Str("location")
		in.Location = &v
	}
	if res.Has("dailyRate") {
		in.DailyRate = res.NumPtr("dailyRate")
	}
	if v, ok := res.Bool("available"); ok {
		in.Available = &v
	}

	updated, err := h.machines.Update(r.Context(), ac.ID, machineID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Machine updated",
		"machine": toMachineResponse(updated),
	})
}

// DeleteMachine は機材を削除する。所有者のみ実行できる。
// DELETE /api/manufacturer/delete-machine/{id}
func (h *ManufacturerHandler) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	machineID := chi.URLParam(r, "id")

	if err := h.machines.Delete(r.Context(), ac.ID, machineID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Machine deleted",
	})
}

// MachineApplications は指定機材への申請一覧を返す。所有者のみ閲覧できる。
// GET /api/manufacturer/machine-applications/{id}
func (h *ManufacturerHandler) MachineApplications(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	machineID := chi.URLParam(r, "id")

	apps, err := h.machines.Applications(r.Context(), ac.ID, machineID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]machineApplicationResponse, len(apps))
	for i, a := range apps {
		results[i] = toMachineApplicationResponse(a)
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"applications": results,
	})
}

// DecideApplication は機材利用申請を承認または却下する。
// PATCH /api/manufacturer/approve-reject-application/{id}
func (h *ManufacturerHandler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	applicationID := chi.URLParam(r, "id")

	status, apiErr := decisionStatus(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.machines.Decide(r.Context(), ac.ID, applicationID, status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":     true,
		"message":     "Application " + string(status),
		"application": toMachineApplicationResponse(app),
	})
}
