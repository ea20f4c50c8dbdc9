package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/gig"
	"github.com/hitoshi/worklink/internal/middleware"
	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/validate"
)

// StartupAccountService はスタートアップハンドラーが必要とするアカウントサービス。
type StartupAccountService interface {
	Signup(ctx context.Context, in auth.CompanySignupInput) (*model.Startup, string, error)
	Signin(ctx context.Context, email, password string) (*model.Startup, string, error)
	GetProfile(ctx context.Context, id string) (*model.Startup, error)
	UpdateProfile(ctx context.Context, id string, in auth.CompanyProfileUpdateInput) (*model.Startup, error)
}

// GigServiceInterface はスタートアップ側のギグ操作。
type GigServiceInterface interface {
	Create(ctx context.Context, startupID string, in gig.CreateInput) (*model.Gig, error)
	Update(ctx context.Context, startupID, gigID string, in gig.UpdateInput) (*model.Gig, error)
	Delete(ctx context.Context, startupID, gigID string) error
	ListOwned(ctx context.Context, startupID string, params query.ListParams) ([]*model.Gig, query.Pagination, error)
	Applications(ctx context.Context, startupID, gigID string) ([]*model.GigApplication, error)
	Decide(ctx context.Context, startupID, applicationID string, status model.ApplicationStatus) (*model.GigApplication, error)
}

// StartupHandler はスタートアップ向けエンドポイントのHTTPハンドラー。
type StartupHandler struct {
	accounts StartupAccountService
	gigs     GigServiceInterface
}

// NewStartupHandler はStartupHandlerを生成する。
func NewStartupHandler(accounts StartupAccountService, gigs GigServiceInterface) *StartupHandler {
	return &StartupHandler{
		accounts: accounts,
		gigs:     gigs,
	}
}

// Signup はスタートアップ登録を処理する。
// POST /api/startup/signup
func (h *StartupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.StartupSignup, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	startup, token, err := h.accounts.Signup(r.Context(), companySignupInput(res))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Signup successful",
		"startup": toStartupResponse(startup),
		"token":   token,
	})
}

// Signin はスタートアップのサインインを処理する。
// POST /api/startup/signin
func (h *StartupHandler) Signin(w http.ResponseWriter, r *http.Request) {
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

	startup, token, err := h.accounts.Signin(r.Context(), res.Str("email"), res.Str("password"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Signin successful",
		"startup": toStartupResponse(startup),
		"token":   token,
	})
}

// GetProfile はスタートアップのプロフィールを取得する。
// GET /api/startup/profile
func (h *StartupHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	startup, err := h.accounts.GetProfile(r.Context(), ac.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"startup": toStartupResponse(startup),
	})
}

// UpdateProfile はスタートアップのプロフィールを部分更新する。
// PUT /api/startup/profile
func (h *StartupHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	startup, err := h.accounts.UpdateProfile(r.Context(), ac.ID, companyProfileUpdateInput(res))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Profile updated",
		"startup": toStartupResponse(startup),
	})
}

// CreateGig はギグを作成する。
// POST /api/startup/create-gig
func (h *StartupHandler) CreateGig(w http.ResponseWriter, r *http.Request) {
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

	res := validate.Validate(validate.GigCreate, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	created, err := h.gigs.Create(r.Context(), ac.ID, gig.CreateInput{
		Title:       res.Str("title"),
		Description: res.Str("description"),
		Skills:      res.StrSlice("skills"),
		Location:    res.Str("location"),
		SalaryMin:   res.Num("salaryMin"),
		SalaryMax:   res.Num("salaryMax"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Gig created",
		"gig":     toGigResponse(created),
	})
}

// YourGigs はスタートアップ自身のギグ一覧を返す。
// GET /api/startup/your-gigs
func (h *StartupHandler) YourGigs(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	params := query.ParseListParams(r.URL.Query())
	gigs, pagination, err := h.gigs.ListOwned(r.Context(), ac.ID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope("gigs", toGigResponses(gigs), pagination))
}

// UpdateGig はギグを部分更新する。所有者のみ実行できる。
// PUT /api/startup/update-gig/{id}
func (h *StartupHandler) UpdateGig(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	gigID := chi.URLParam(r, "id")

	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	res := validate.Validate(validate.GigUpdate, payload)
	if !res.Valid {
		writeValidationError(w, res.Errors)
		return
	}

	in := gig.UpdateInput{}
	if res.Has("title") {
		v := res.Str("title")
		in.Title = &v
	}
	if res.Has("description") {
		v := res.Str("description")
		in.Description = &v
	}
	if res.Has("skills") {
		in.Skills = res.StrSlice("skills")
	}
	if res.Has("location") {
		v := res.Str("location")
		in.Location = &v
	}
	if res.Has("salaryMin") {
		in.SalaryMin = res.NumPtr("salaryMin")
	}
	if res.Has("salaryMax") {
		in.SalaryMax = res.NumPtr("salaryMax")
	}

	updated, err := h.gigs.Update(r.Context(), ac.ID, gigID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Gig updated",
		"gig":     toGigResponse(updated),
	})
}

// DeleteGig はギグを削除する。所有者のみ実行できる。
// DELETE /api/startup/delete-gig/{id}
func (h *StartupHandler) DeleteGig(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	gigID := chi.URLParam(r, "id")

	if err := h.gigs.Delete(r.Context(), ac.ID, gigID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Gig deleted",
	})
}

// GigApplications は指定ギグへの応募一覧を返す。所有者のみ閲覧できる。
// GET /api/startup/gig-applications/{id}
func (h *StartupHandler) GigApplications(w http.ResponseWriter, r *http.Request) {
	ac, err := middleware.AuthFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	gigID := chi.URLParam(r, "id")

	apps, err := h.gigs.Applications(r.Context(), ac.ID, gigID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"applications": toGigApplicationResponses(apps),
	})
}

// DecideApplication はギグ応募を承認または却下する。
// PATCH /api/startup/approve-reject-application/{id}
func (h *StartupHandler) DecideApplication(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.gigs.Decide(r.Context(), ac.ID, applicationID, status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":     true,
		"message":     "Application " + string(status),
		"application": toGigApplicationResponse(app),
	})
}

// --- 共有ヘルパー ---

// companySignupInput は検証結果からスタートアップ・メーカー共通の登録入力を構築する。
func companySignupInput(res validate.Result) auth.CompanySignupInput {
	return auth.CompanySignupInput{
		CompanyName: res.Str("companyName"),
		Email:       res.Str("email"),
		Password:    res.Str("password"),
		Phone:       res.Str("phone"),
		Location:    res.Str("location"),
		Sector:      res.Str("sector"),
		Description: res.Str("description"),
	}
}

// companyProfileUpdateInput は検証結果から共通のプロフィール更新入力を構築する。
func companyProfileUpdateInput(res validate.Result) auth.CompanyProfileUpdateInput {
	in := auth.CompanyProfileUpdateInput{}
	if res.Has("companyName") {
		v := res.Str("companyName")
		in.CompanyName = &v
	}
	if res.Has("phone") {
		v := res.Str("phone")
		in.Phone = &v
	}
	if res.Has("location") {
		v := res.Str("location")
		in.Location = &v
	}
	if res.Has("sector") {
		v := res.Str("sector")
		in.Sector = &v
	}
	if res.Has("description") {
		v := res.Str("description")
		in.Description = &v
	}
	return in
}

// decisionStatus は承認・却下リクエストからステータスを取り出す。
func decisionStatus(r *http.Request) (model.ApplicationStatus, *model.APIError) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		return "", apiErr
	}

	res := validate.Validate(validate.ApplicationDecision, payload)
	if !res.Valid {
		return "", model.NewInvalidRequestError(res.Errors[0].Message)
	}
	return model.ApplicationStatus(res.Str("status")), nil
}
