package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/repository"
)

// --- モック定義 ---

type mockPublicGigService struct {
	listFn func(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, query.Pagination, error)
	getFn  func(ctx context.Context, gigID string) (*model.Gig, error)
}

func (m *mockPublicGigService) List(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, query.Pagination, error) {
	return m.listFn(ctx, filter, params)
}

func (m *mockPublicGigService) Get(ctx context.Context, gigID string) (*model.Gig, error) {
	return m.getFn(ctx, gigID)
}

type mockPublicMachineService struct {
	listFn func(ctx context.Context, filter repository.MachineFilter, params query.ListParams) ([]*model.Machine, query.Pagination, error)
	getFn  func(ctx context.Context, machineID string) (*model.Machine, error)
}

func (m *mockPublicMachineService) List(ctx context.Context, filter repository.MachineFilter, params query.ListParams) ([]*model.Machine, query.Pagination, error) {
	return m.listFn(ctx, filter, params)
}

func (m *mockPublicMachineService) Get(ctx context.Context, machineID string) (*model.Machine, error) {
	return m.getFn(ctx, machineID)
}

// --- ListGigs / GetGig ---

func TestPublicHandler_ListGigs(t *testing.T) {
	var gotFilter repository.GigFilter
	var gotParams query.ListParams
	gigs := &mockPublicGigService{
		listFn: func(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, query.Pagination, error) {
			gotFilter = filter
			gotParams = params
			return []*model.Gig{{ID: "g-1", Title: "Welding gig"}}, query.NewPagination(params.Page, params.Limit, 25), nil
		},
	}
	h := NewPublicHandler(gigs, &mockPublicMachineService{})

	r := httptest.NewRequest("GET", "/api/public/gigs?page=2&limit=10&search=weld&skills=go,%20sql&minSalary=1000&maxSalary=5000&location=Tokyo", nil)
	w := httptest.NewRecorder()
	h.ListGigs(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotParams.Page != 2 || gotParams.Limit != 10 || gotParams.Search != "weld" {
		t.Errorf("params = %+v", gotParams)
	}
	if !reflect.DeepEqual(gotFilter.Skills, []string{"go", "sql"}) {
		t.Errorf("Skills = %v, want [go sql]", gotFilter.Skills)
	}
	if gotFilter.Location != "Tokyo" {
		t.Errorf("Location = %q", gotFilter.Location)
	}
	if gotFilter.MinSalary == nil || *gotFilter.MinSalary != 1000 {
		t.Errorf("MinSalary = %v", gotFilter.MinSalary)
	}
	if gotFilter.MaxSalary == nil || *gotFilter.MaxSalary != 5000 {
		t.Errorf("MaxSalary = %v", gotFilter.MaxSalary)
	}

	resp := parseEnvelope(t, w)
	pagination := resp["pagination"].(map[string]any)
	if pagination["totalPages"] != float64(3) || pagination["hasNextPage"] != true {
		t.Errorf("pagination = %v", pagination)
	}
}

func TestPublicHandler_GetGig_NotFound(t *testing.T) {
	gigs := &mockPublicGigService{
		getFn: func(ctx context.Context, gigID string) (*model.Gig, error) {
			return nil, model.NewGigNotFoundError(gigID)
		},
	}
	h := NewPublicHandler(gigs, &mockPublicMachineService{})

	r := httptest.NewRequest("GET", "/api/public/gigs/missing", nil)
	r = withChiURLParam(r, "id", "missing")
	w := httptest.NewRecorder()
	h.GetGig(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	resp := parseEnvelope(t, w)
	if resp["message"] != "Gig not found: missing" {
		t.Errorf("message = %v", resp["message"])
	}
}

// --- ListMachines / GetMachine ---

func TestPublicHandler_ListMachines_AvailableFilter(t *testing.T) {
	var gotFilter repository.MachineFilter
	machines := &mockPublicMachineService{
		listFn: func(ctx context.Context, filter repository.MachineFilter, params query.ListParams) ([]*model.Machine, query.Pagination, error) {
			gotFilter = filter
			return nil, query.NewPagination(params.Page, params.Limit, 0), nil
		},
	}
	h := NewPublicHandler(&mockPublicGigService{}, machines)

	r := httptest.NewRequest("GET", "/api/public/machines?type=cnc&available=true", nil)
	w := httptest.NewRecorder()
	h.ListMachines(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotFilter.Type != "cnc" {
		t.Errorf("Type = %q", gotFilter.Type)
	}
	if gotFilter.Available == nil || !*gotFilter.Available {
		t.Errorf("Available = %v, want true pointer", gotFilter.Available)
	}
}

func TestPublicHandler_GetMachine(t *testing.T) {
	machines := &mockPublicMachineService{
		getFn: func(ctx context.Context, machineID string) (*model.Machine, error) {
			return &model.Machine{ID: machineID, Name: "CNC mill", Available: true}, nil
		},
	}
	h := NewPublicHandler(&mockPublicGigService{}, machines)

	r := httptest.NewRequest("GET", "/api/public/machines/mc-1", nil)
	r = withChiURLParam(r, "id", "mc-1")
	w := httptest.NewRecorder()
	h.GetMachine(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := parseEnvelope(t, w)
	machine := resp["machine"].(map[string]any)
	if machine["id"] != "mc-1" || machine["available"] != true {
		t.Errorf("machine = %v", machine)
	}
}

// --- フィルタ解析 ---

func TestParseGigFilter(t *testing.T) {
	values := url.Values{}
	values.Set("skills", " welding , , cnc ")
	values.Set("minSalary", "abc") // 不正値は無視

	filter := parseGigFilter(values)
	if !reflect.DeepEqual(filter.Skills, []string{"welding", "cnc"}) {
		t.Errorf("Skills = %v", filter.Skills)
	}
	if filter.MinSalary != nil {
		t.Errorf("MinSalary = %v, want nil for invalid input", filter.MinSalary)
	}
}

func TestParseMachineFilter_InvalidAvailable(t *testing.T) {
	values := url.Values{}
	values.Set("available", "maybe")

	filter := parseMachineFilter(values)
	if filter.Available != nil {
		t.Errorf("Available = %v, want nil for invalid input", filter.Available)
	}
}
