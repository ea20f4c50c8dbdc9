package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/machine"
	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
)

// --- モック定義 ---

type mockManufacturerAccountService struct {
	signupFn        func(ctx context.Context, in auth.CompanySignupInput) (*model.Manufacturer, string, error)
	signinFn        func(ctx context.Context, email, password string) (*model.Manufacturer, string, error)
	getProfileFn    func(ctx context.Context, id string) (*model.Manufacturer, error)
	updateProfileFn func(ctx context.Context, id string, in auth.CompanyProfileUpdateInput) (*model.Manufacturer, error)
}

func (m *mockManufacturerAccountService) Signup(ctx context.Context, in auth.CompanySignupInput) (*model.Manufacturer, string, error) {
	return m.signupFn(ctx, in)
}

func (m *mockManufacturerAccountService) Signin(ctx context.Context, email, password string) (*model.Manufacturer, string, error) {
	return m.signinFn(ctx, email, password)
}

func (m *mockManufacturerAccountService) GetProfile(ctx context.Context, id string) (*model.Manufacturer, error) {
	return m.getProfileFn(ctx, id)
}

func (m *mockManufacturerAccountService) UpdateProfile(ctx context.Context, id string, in auth.CompanyProfileUpdateInput) (*model.Manufacturer, error) {
	return m.updateProfileFn(ctx, id, in)
}

type mockMachineService struct {
	createFn       func(ctx context.Context, manufacturerID string, in machine.CreateInput) (*model.Machine, error)
	updateFn       func(ctx context.Context, manufacturerID, machineID string, in machine.UpdateInput) (*model.Machine, error)
	deleteFn       func(ctx context.Context, manufacturerID, machineID string) error
	listOwnedFn    func(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, query.Pagination, error)
	applicationsFn func(ctx context.Context, manufacturerID, machineID string) ([]*model.MachineApplication, error)
	decideFn       func(ctx context.Context, manufacturerID, applicationID string, status model.ApplicationStatus) (*model.MachineApplication, error)
}

func (m *mockMachineService) Create(ctx context.Context, manufacturerID string, in machine.CreateInput) (*model.Machine, error) {
	return m.createFn(ctx, manufacturerID, in)
}

func (m *mockMachineService) Update(ctx context.Context, manufacturerID, machineID string, in machine.UpdateInput) (*model.Machine, error) {
	return m.updateFn(ctx, manufacturerID, machineID, in)
}

func (m *mockMachineService) Delete(ctx context.Context, manufacturerID, machineID string) error {
	return m.deleteFn(ctx, manufacturerID, machineID)
}

func (m *mockMachineService) ListOwned(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, query.Pagination, error) {
	return m.listOwnedFn(ctx, manufacturerID, params)
}

func (m *mockMachineService) Applications(ctx context.Context, manufacturerID, machineID string) ([]*model.MachineApplication, error) {
	return m.applicationsFn(ctx, manufacturerID, machineID)
}

func (m *mockMachineService) Decide(ctx context.Context, manufacturerID, applicationID string, status model.ApplicationStatus) (*model.MachineApplication, error) {
	return m.decideFn(ctx, manufacturerID, applicationID, status)
}

// --- Signup ---

func TestManufacturerHandler_Signup(t *testing.T) {
	accounts := &mockManufacturerAccountService{
		signupFn: func(ctx context.Context, in auth.CompanySignupInput) (*model.Manufacturer, string, error) {
			return &model.Manufacturer{
				ID:          "m-1",
				CompanyName: in.CompanyName,
				Email:       in.Email,
			}, "signed-token", nil
		},
	}
	h := NewManufacturerHandler(accounts, &mockMachineService{})

	body := `{"companyName":"Heavy Industries","email":"info@heavy.example","password":"password123"}`
	r := httptest.NewRequest("POST", "/api/manufacturer/signup", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Signup(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	resp := parseEnvelope(t, w)
	m := resp["manufacturer"].(map[string]any)
	if m["companyName"] != "Heavy Industries" {
		t.Errorf("companyName = %v", m["companyName"])
	}
	if resp["token"] != "signed-token" {
		t.Errorf("token = %v", resp["token"])
	}
}

// --- AddMachine ---

func TestManufacturerHandler_AddMachine(t *testing.T) {
	var gotInput machine.CreateInput
	machines := &mockMachineService{
		createFn: func(ctx context.Context, manufacturerID string, in machine.CreateInput) (*model.Machine, error) {
			gotInput = in
			return &model.Machine{
				ID:             "mc-1",
				ManufacturerID: manufacturerID,
				Name:           in.Name,
				DailyRate:      in.DailyRate,
				Available:      in.Available,
			}, nil
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	body := `{"name":"CNC mill","type":"cnc","dailyRate":500,"available":false}`
	r := httptest.NewRequest("POST", "/api/manufacturer/add-machine", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.AddMachine(w, withAuth(r, "m-1", model.RoleManufacturer))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotInput.Available {
		t.Error("Available = true, want false (explicit)")
	}
	resp := parseEnvelope(t, w)
	if resp["message"] != "Machine added" {
		t.Errorf("message = %v", resp["message"])
	}
	mc := resp["machine"].(map[string]any)
	if mc["available"] != false || mc["dailyRate"] != float64(500) {
		t.Errorf("machine = %v", mc)
	}
}

func TestManufacturerHandler_AddMachine_AvailableDefaultsTrue(t *testing.T) {
	machines := &mockMachineService{
		createFn: func(ctx context.Context, manufacturerID string, in machine.CreateInput) (*model.Machine, error) {
			if !in.Available {
				t.Error("Available = false, want true when omitted")
			}
			return &model.Machine{ID: "mc-1", ManufacturerID: manufacturerID, Available: in.Available}, nil
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	body := `{"name":"Laser cutter"}`
	r := httptest.NewRequest("POST", "/api/manufacturer/add-machine", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.AddMachine(w, withAuth(r, "m-1", model.RoleManufacturer))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestManufacturerHandler_AddMachine_MissingName(t *testing.T) {
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, &mockMachineService{})

	body := `{"type":"cnc"}`
	r := httptest.NewRequest("POST", "/api/manufacturer/add-machine", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.AddMachine(w, withAuth(r, "m-1", model.RoleManufacturer))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- UpdateMachine / DeleteMachine ---

func TestManufacturerHandler_UpdateMachine_ToggleAvailability(t *testing.T) {
	var gotInput machine.UpdateInput
	machines := &mockMachineService{
		updateFn: func(ctx context.Context, manufacturerID, machineID string, in machine.UpdateInput) (*model.Machine, error) {
			gotInput = in
			return &model.Machine{ID: machineID, ManufacturerID: manufacturerID, Available: false}, nil
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	body := `{"available":false}`
	r := httptest.NewRequest("PUT", "/api/manufacturer/update-machine/mc-1", strings.NewReader(body))
	r = withAuth(r, "m-1", model.RoleManufacturer)
	r = withChiURLParam(r, "id", "mc-1")
	w := httptest.NewRecorder()
	h.UpdateMachine(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotInput.Available == nil || *gotInput.Available {
		t.Errorf("Available input = %v, want false pointer", gotInput.Available)
	}
	if gotInput.Name != nil {
		t.Error("Name should be nil when omitted")
	}
}

func TestManufacturerHandler_UpdateMachine_NotFound(t *testing.T) {
	machines := &mockMachineService{
		updateFn: func(ctx context.Context, manufacturerID, machineID string, in machine.UpdateInput) (*model.Machine, error) {
			return nil, model.NewMachineNotFoundError(machineID)
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	body := `{"name":"Renamed"}`
	r := httptest.NewRequest("PUT", "/api/manufacturer/update-machine/missing", strings.NewReader(body))
	r = withAuth(r, "m-1", model.RoleManufacturer)
	r = withChiURLParam(r, "id", "missing")
	w := httptest.NewRecorder()
	h.UpdateMachine(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestManufacturerHandler_DeleteMachine_NonOwner(t *testing.T) {
	machines := &mockMachineService{
		deleteFn: func(ctx context.Context, manufacturerID, machineID string) error {
			return model.NewAuthorizationError("machine")
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	r := httptest.NewRequest("DELETE", "/api/manufacturer/delete-machine/mc-1", nil)
	r = withAuth(r, "intruder", model.RoleManufacturer)
	r = withChiURLParam(r, "id", "mc-1")
	w := httptest.NewRecorder()
	h.DeleteMachine(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	resp := parseEnvelope(t, w)
	if resp["message"] != "You do not own this machine" {
		t.Errorf("message = %v", resp["message"])
	}
}

// --- YourMachines / Applications / Decide ---

func TestManufacturerHandler_YourMachines(t *testing.T) {
	machines := &mockMachineService{
		listOwnedFn: func(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, query.Pagination, error) {
			return []*model.Machine{
				{ID: "mc-1", ManufacturerID: manufacturerID, Name: "CNC mill", Available: true},
			}, query.NewPagination(1, 10, 1), nil
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	r := httptest.NewRequest("GET", "/api/manufacturer/your-machines", nil)
	w := httptest.NewRecorder()
	h.YourMachines(w, withAuth(r, "m-1", model.RoleManufacturer))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := parseEnvelope(t, w)
	list := resp["machines"].([]any)
	first := list[0].(map[string]any)
	if first["name"] != "CNC mill" || first["available"] != true {
		t.Errorf("machine = %v", first)
	}
}

func TestManufacturerHandler_MachineApplications(t *testing.T) {
	machines := &mockMachineService{
		applicationsFn: func(ctx context.Context, manufacturerID, machineID string) ([]*model.MachineApplication, error) {
			return []*model.MachineApplication{
				{ID: "a-1", MachineID: machineID, WorkerID: "w-1", Status: model.StatusPending},
			}, nil
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	r := httptest.NewRequest("GET", "/api/manufacturer/machine-applications/mc-1", nil)
	r = withAuth(r, "m-1", model.RoleManufacturer)
	r = withChiURLParam(r, "id", "mc-1")
	w := httptest.NewRecorder()
	h.MachineApplications(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := parseEnvelope(t, w)
	apps := resp["applications"].([]any)
	first := apps[0].(map[string]any)
	if first["machineId"] != "mc-1" {
		t.Errorf("application = %v", first)
	}
}

func TestManufacturerHandler_DecideApplication_Reject(t *testing.T) {
	machines := &mockMachineService{
		decideFn: func(ctx context.Context, manufacturerID, applicationID string, status model.ApplicationStatus) (*model.MachineApplication, error) {
			return &model.MachineApplication{ID: applicationID, MachineID: "mc-1", Status: status}, nil
		},
	}
	h := NewManufacturerHandler(&mockManufacturerAccountService{}, machines)

	body := `{"status":"rejected"}`
	r := httptest.NewRequest("PATCH", "/api/manufacturer/approve-reject-application/a-1", strings.NewReader(body))
	r = withAuth(r, "m-1", model.RoleManufacturer)
	r = withChiURLParam(r, "id", "a-1")
	w := httptest.NewRecorder()
	h.DecideApplication(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := parseEnvelope(t, w)
	if resp["message"] != "Application rejected" {
		t.Errorf("message = %v", resp["message"])
	}
}
