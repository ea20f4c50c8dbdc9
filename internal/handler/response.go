// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/validate"
)

// envelope は統一レスポンスフォーマットのボディ。
// 成功時: {"success":true, "message"?, "<resourceKey>":…, "pagination"?}
// 失敗時: {"success":false, "message", "details"?}
type envelope map[string]any

// writeJSON はエンベロープをJSONとして書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIError はAPIErrorを統一エンベロープで書き込む。
func writeAPIError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, envelope{
		"success": false,
		"message": apiErr.Message,
	})
}

// writeValidationError は検証エラーを400とフィールド別詳細で書き込む。
func writeValidationError(w http.ResponseWriter, fieldErrors []validate.FieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{
		"success": false,
		"message": "Validation failed",
		"details": fieldErrors,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIError(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, envelope{
		"success": false,
		"message": "Internal server error",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case model.ErrCodeNotResourceOwner:
		return http.StatusForbidden
	case model.ErrCodeGigNotFound, model.ErrCodeMachineNotFound,
		model.ErrCodeApplicationNotFound, model.ErrCodeProfileNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeDuplicateApplication,
		model.ErrCodeMachineUnavailable, model.ErrCodeApplicationDecided:
		return http.StatusConflict
	case model.ErrCodeInvalidRequest, model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody はリクエストボディをスキーマ検証用のマップに読み込む。
func decodeBody(r *http.Request) (map[string]any, *model.APIError) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, model.NewInvalidRequestError("Failed to parse request body")
	}
	return payload, nil
}

// --- APIレスポンス型 ---
// PasswordHashはレスポンス型に存在しないため、シリアライズされることはない。

// workerResponse はワーカープロフィールのAPIレスポンス。
type workerResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Location   string    `json:"location"`
	Skills     []string  `json:"skills"`
	Experience string    `json:"experience"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toWorkerResponse(w *model.Worker) workerResponse {
	skills := w.Skills
	if skills == nil {
		skills = []string{}
	}
	return workerResponse{
		ID:         w.ID,
		Name:       w.Name,
		Email:      w.Email,
		Phone:      w.Phone,
		Location:   w.Location,
		Skills:     skills,
		Experience: w.Experience,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

// companyResponse はスタートアップ・メーカー共通のプロフィールAPIレスポンス。
type companyResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	Sector      string    `json:"sector"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toStartupResponse(s *model.Startup) companyResponse {
	return companyResponse{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		Email:       s.Email,
		Phone:       s.Phone,
		Location:    s.Location,
		Sector:      s.Sector,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toManufacturerResponse(m *model.Manufacturer) companyResponse {
	return companyResponse{
		ID:          m.ID,
		CompanyName: m.CompanyName,
		Email:       m.Email,
		Phone:       m.Phone,
		Location:    m.Location,
		Sector:      m.Sector,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// gigResponse はギグのAPIレスポンス。
type gigResponse struct {
	ID          string    `json:"id"`
	StartupID   string    `json:"startupId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Location    string    `json:"location"`
	SalaryMin   int       `json:"salaryMin"`
	SalaryMax   int       `json:"salaryMax"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toGigResponse(g *model.Gig) gigResponse {
	skills := g.Skills
	if skills == nil {
		skills = []string{}
	}
	return gigResponse{
		ID:          g.ID,
		StartupID:   g.StartupID,
		Title:       g.Title,
		Description: g.Description,
		Skills:      skills,
		Location:    g.Location,
		SalaryMin:   g.SalaryMin,
		SalaryMax:   g.SalaryMax,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toGigResponses(gigs []*model.Gig) []gigResponse {
	results := make([]gigResponse, len(gigs))
	for i, g := range gigs {
		results[i] = toGigResponse(g)
	}
	return results
}

// machineResponse は機材のAPIレスポンス。
type machineResponse struct {
	ID             string    `json:"id"`
	ManufacturerID string    `json:"manufacturerId"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	DailyRate      int       `json:"dailyRate"`
	Available      bool      `json:"available"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toMachineResponse(m *model.Machine) machineResponse {
	return machineResponse{
		ID:             m.ID,
		ManufacturerID: m.ManufacturerID,
		Name:           m.Name,
		Type:           m.Type,
		Description:    m.Description,
		Location:       m.Location,
		DailyRate:      m.DailyRate,
		Available:      m.Available,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toMachineResponses(machines []*model.Machine) []machineResponse {
	results := make([]machineResponse, len(machines))
	for i, m := range machines {
		results[i] = toMachineResponse(m)
	}
	return results
}

// gigApplicationResponse はギグ応募のAPIレスポンス。
type gigApplicationResponse struct {
	ID        string    `json:"id"`
	GigID     string    `json:"gigId"`
	WorkerID  string    `json:"workerId"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toGigApplicationResponse(a *model.GigApplication) gigApplicationResponse {
	return gigApplicationResponse{
		ID:        a.ID,
		GigID:     a.GigID,
		WorkerID:  a.WorkerID,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toGigApplicationResponses(apps []*model.GigApplication) []gigApplicationResponse {
	results := make([]gigApplicationResponse, len(apps))
	for i, a := range apps {
		results[i] = toGigApplicationResponse(a)
	}
	return results
}

// machineApplicationResponse は機材利用申請のAPIレスポンス。
type machineApplicationResponse struct {
	ID        string    `json:"id"`
	MachineID string    `json:"machineId"`
	WorkerID  string    `json:"workerId"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toMachineApplicationResponse(a *model.MachineApplication) machineApplicationResponse {
	return machineApplicationResponse{
		ID:        a.ID,
		MachineID: a.MachineID,
		WorkerID:  a.WorkerID,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// appliedGigResponse はワーカーの応募一覧用、ギグ情報付きのレスポンス。
type appliedGigResponse struct {
	gigApplicationResponse
	GigTitle    string `json:"gigTitle"`
	GigLocation string `json:"gigLocation"`
	StartupID   string `json:"startupId"`
}

func toAppliedGigResponses(apps []model.GigApplicationWithGig) []appliedGigResponse {
	results := make([]appliedGigResponse, len(apps))
	for i, a := range apps {
		results[i] = appliedGigResponse{
			gigApplicationResponse: toGigApplicationResponse(&a.GigApplication),
			GigTitle:               a.GigTitle,
			GigLocation:            a.GigLocation,
			StartupID:              a.StartupID,
		}
	}
	return results
}

// appliedMachineResponse はワーカーの申請一覧用、機材情報付きのレスポンス。
type appliedMachineResponse struct {
	machineApplicationResponse
	MachineName     string `json:"machineName"`
	MachineType     string `json:"machineType"`
	MachineLocation string `json:"machineLocation"`
	ManufacturerID  string `json:"manufacturerId"`
}

func toAppliedMachineResponses(apps []model.MachineApplicationWithMachine) []appliedMachineResponse {
	results := make([]appliedMachineResponse, len(apps))
	for i, a := range apps {
		results[i] = appliedMachineResponse{
			machineApplicationResponse: toMachineApplicationResponse(&a.MachineApplication),
			MachineName:                a.MachineName,
			MachineType:                a.MachineType,
			MachineLocation:            a.MachineLocation,
			ManufacturerID:             a.ManufacturerID,
		}
	}
	return results
}

// listEnvelope は一覧レスポンスのエンベロープを構築する。
func listEnvelope(resourceKey string, data any, pagination query.Pagination) envelope {
	return envelope{
		"success":    true,
		resourceKey:  data,
		"pagination": pagination,
	}
}
