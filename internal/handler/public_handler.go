package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/repository"
)

// PublicGigService は公開ギグ一覧・詳細の取得操作。
type PublicGigService interface {
	List(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, query.Pagination, error)
	Get(ctx context.Context, gigID string) (*model.Gig, error)
}

// PublicMachineService は公開機材一覧・詳細の取得操作。
type PublicMachineService interface {
	List(ctx context.Context, filter repository.MachineFilter, params query.ListParams) ([]*model.Machine, query.Pagination, error)
	Get(ctx context.Context, machineID string) (*model.Machine, error)
}

// PublicHandler は認証不要の公開エンドポイントのHTTPハンドラー。
type PublicHandler struct {
	gigs     PublicGigService
	machines PublicMachineService
}

// NewPublicHandler はPublicHandlerを生成する。
func NewPublicHandler(gigs PublicGigService, machines PublicMachineService) *PublicHandler {
	return &PublicHandler{
		gigs:     gigs,
		machines: machines,
	}
}

// ListGigs は公開ギグ一覧を返す。
// GET /api/public/gigs
func (h *PublicHandler) ListGigs(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	params := query.ParseListParams(values)

	gigs, pagination, err := h.gigs.List(r.Context(), parseGigFilter(values), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope("gigs", toGigResponses(gigs), pagination))
}

// GetGig は公開ギグ詳細を返す。
// GET /api/public/gigs/{id}
func (h *PublicHandler) GetGig(w http.ResponseWriter, r *http.Request) {
	gig, err := h.gigs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"gig":     toGigResponse(gig),
	})
}

// ListMachines は公開機材一覧を返す。
// GET /api/public/machines
func (h *PublicHandler) ListMachines(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	params := query.ParseListParams(values)

	machines, pagination, err := h.machines.List(r.Context(), parseMachineFilter(values), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope("machines", toMachineResponses(machines), pagination))
}

// GetMachine は公開機材詳細を返す。
// GET /api/public/machines/{id}
func (h *PublicHandler) GetMachine(w http.ResponseWriter, r *http.Request) {
	machine, err := h.machines.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"machine": toMachineResponse(machine),
	})
}

// parseGigFilter はクエリ文字列からギグのリソース固有フィルタを構築する。
// skillsはカンマ区切りで複数指定できる。
func parseGigFilter(values url.Values) repository.GigFilter {
	filter := repository.GigFilter{
		Location: strings.TrimSpace(values.Get("location")),
	}

	if raw := values.Get("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Skills = append(filter.Skills, s)
			}
		}
	}
	if raw := values.Get("minSalary"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.MinSalary = &n
		}
	}
	if raw := values.Get("maxSalary"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.MaxSalary = &n
		}
	}

	return filter
}

// parseMachineFilter はクエリ文字列から機材のリソース固有フィルタを構築する。
func parseMachineFilter(values url.Values) repository.MachineFilter {
	filter := repository.MachineFilter{
		Type:     strings.TrimSpace(values.Get("type")),
		Location: strings.TrimSpace(values.Get("location")),
	}

	if raw := values.Get("available"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.Available = &b
		}
	}

	return filter
}
