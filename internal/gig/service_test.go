package gig

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/repository"
)

// --- モック定義 ---

type mockGigRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.Gig, error)
	createFn        func(ctx context.Context, gig *model.Gig) error
	updateFn        func(ctx context.Context, gig *model.Gig) error
	deleteFn        func(ctx context.Context, id string) error
	listFn          func(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, int, error)
	listByStartupFn func(ctx context.Context, startupID string, params query.ListParams) ([]*model.Gig, int, error)
}

func (m *mockGigRepo) FindByID(ctx context.Context, id string) (*model.Gig, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockGigRepo) Create(ctx context.Context, gig *model.Gig) error {
	if m.createFn != nil {
		return m.createFn(ctx, gig)
	}
	return nil
}

func (m *mockGigRepo) Update(ctx context.Context, gig *model.Gig) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, gig)
	}
	return nil
}

func (m *mockGigRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockGigRepo) List(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, params)
	}
	return nil, 0, nil
}

func (m *mockGigRepo) ListByStartup(ctx context.Context, startupID string, params query.ListParams) ([]*model.Gig, int, error) {
	if m.listByStartupFn != nil {
		return m.listByStartupFn(ctx, startupID, params)
	}
	return nil, 0, nil
}

type mockGigAppRepo struct {
	findByIDFn           func(ctx context.Context, id string) (*model.GigApplication, error)
	findByGigAndWorkerFn func(ctx context.Context, gigID, workerID string) (*model.GigApplication, error)
	createFn             func(ctx context.Context, app *model.GigApplication) error
	decideFromPendingFn  func(ctx context.Context, id string, status model.ApplicationStatus) (bool, error)
	listByGigFn          func(ctx context.Context, gigID string) ([]*model.GigApplication, error)
	listByWorkerFn       func(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, int, error)
}

func (m *mockGigAppRepo) FindByID(ctx context.Context, id string) (*model.GigApplication, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockGigAppRepo) FindByGigAndWorker(ctx context.Context, gigID, workerID string) (*model.GigApplication, error) {
	if m.findByGigAndWorkerFn != nil {
		return m.findByGigAndWorkerFn(ctx, gigID, workerID)
	}
	return nil, nil
}

func (m *mockGigAppRepo) Create(ctx context.Context, app *model.GigApplication) error {
	if m.createFn != nil {
		return m.createFn(ctx, app)
	}
	return nil
}

func (m *mockGigAppRepo) DecideFromPending(ctx context.Context, id string, status model.ApplicationStatus) (bool, error) {
	if m.decideFromPendingFn != nil {
		return m.decideFromPendingFn(ctx, id, status)
	}
	return true, nil
}

func (m *mockGigAppRepo) ListByGig(ctx context.Context, gigID string) ([]*model.GigApplication, error) {
	if m.listByGigFn != nil {
		return m.listByGigFn(ctx, gigID)
	}
	return nil, nil
}

func (m *mockGigAppRepo) ListByWorker(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, int, error) {
	if m.listByWorkerFn != nil {
		return m.listByWorkerFn(ctx, workerID, params)
	}
	return nil, 0, nil
}

type stubSanitizer struct{}

func (stubSanitizer) Sanitize(s string) string { return "sanitized:" + s }

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, wantCode)
	}
}

// --- Create / Update / Delete ---

func TestService_Create_SanitizesDescription(t *testing.T) {
	var created *model.Gig
	repo := &mockGigRepo{
		createFn: func(ctx context.Context, gig *model.Gig) error {
			created = gig
			return nil
		},
	}
	svc := NewService(repo, &mockGigAppRepo{}, stubSanitizer{})

	gig, err := svc.Create(context.Background(), "s-1", CreateInput{
		Title:       "Welding gig",
		Description: "<script>alert(1)</script>",
		SalaryMin:   1000,
		SalaryMax:   2000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if gig.ID == "" {
		t.Error("gig ID not assigned")
	}
	if gig.StartupID != "s-1" {
		t.Errorf("StartupID = %q, want s-1", gig.StartupID)
	}
	if gig.Description != "sanitized:<script>alert(1)</script>" {
		t.Errorf("Description = %q, sanitizer not applied", gig.Description)
	}
	if created == nil {
		t.Fatal("Create was not called on repository")
	}
}

func TestService_Update_NonOwner(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "owner"}, nil
		},
	}
	svc := NewService(repo, &mockGigAppRepo{}, stubSanitizer{})

	title := "Hijacked"
	_, err := svc.Update(context.Background(), "intruder", "g-1", UpdateInput{Title: &title})
	assertAPIErrorCode(t, err, model.ErrCodeNotResourceOwner)
}

func TestService_Update_Partial(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{
				ID:        id,
				StartupID: "s-1",
				Title:     "Old title",
				Location:  "Osaka",
				SalaryMin: 100,
			}, nil
		},
	}
	svc := NewService(repo, &mockGigAppRepo{}, stubSanitizer{})

	title := "New title"
	gig, err := svc.Update(context.Background(), "s-1", "g-1", UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gig.Title != "New title" {
		t.Errorf("Title = %q", gig.Title)
	}
	if gig.Location != "Osaka" || gig.SalaryMin != 100 {
		t.Errorf("unspecified fields changed: %+v", gig)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	svc := NewService(&mockGigRepo{}, &mockGigAppRepo{}, stubSanitizer{})

	err := svc.Delete(context.Background(), "s-1", "missing")
	assertAPIErrorCode(t, err, model.ErrCodeGigNotFound)
}

func TestService_Delete_NonOwner(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "owner"}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			t.Error("Delete should not be called for non-owner")
			return nil
		},
	}
	svc := NewService(repo, &mockGigAppRepo{}, stubSanitizer{})

	err := svc.Delete(context.Background(), "intruder", "g-1")
	assertAPIErrorCode(t, err, model.ErrCodeNotResourceOwner)
}

// --- List ---

func TestService_List_Pagination(t *testing.T) {
	repo := &mockGigRepo{
		listFn: func(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, int, error) {
			return []*model.Gig{{ID: "g-1"}, {ID: "g-2"}}, 25, nil
		},
	}
	svc := NewService(repo, &mockGigAppRepo{}, stubSanitizer{})

	gigs, pagination, err := svc.List(context.Background(), repository.GigFilter{}, query.ListParams{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(gigs) != 2 {
		t.Errorf("len(gigs) = %d, want 2", len(gigs))
	}
	if pagination.TotalPages != 3 || pagination.TotalItems != 25 {
		t.Errorf("pagination = %+v", pagination)
	}
	if !pagination.HasNextPage || !pagination.HasPrevPage {
		t.Errorf("pagination flags = %+v", pagination)
	}
}

// --- Apply ---

func TestService_Apply(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "s-1"}, nil
		},
	}
	var created *model.GigApplication
	apps := &mockGigAppRepo{
		createFn: func(ctx context.Context, app *model.GigApplication) error {
			created = app
			return nil
		},
	}
	svc := NewService(repo, apps, stubSanitizer{})

	app, err := svc.Apply(context.Background(), "w-1", "g-1", "I can start next week")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", app.Status)
	}
	if app.WorkerID != "w-1" || app.GigID != "g-1" {
		t.Errorf("application = %+v", app)
	}
	if created == nil {
		t.Fatal("Create was not called")
	}
}

func TestService_Apply_GigNotFound(t *testing.T) {
	svc := NewService(&mockGigRepo{}, &mockGigAppRepo{}, stubSanitizer{})

	_, err := svc.Apply(context.Background(), "w-1", "missing", "")
	assertAPIErrorCode(t, err, model.ErrCodeGigNotFound)
}

func TestService_Apply_Duplicate(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id}, nil
		},
	}
	apps := &mockGigAppRepo{
		findByGigAndWorkerFn: func(ctx context.Context, gigID, workerID string) (*model.GigApplication, error) {
			return &model.GigApplication{ID: "a-1", GigID: gigID, WorkerID: workerID}, nil
		},
	}
	svc := NewService(repo, apps, stubSanitizer{})

	_, err := svc.Apply(context.Background(), "w-1", "g-1", "")
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateApplication)
}

func TestService_Apply_DuplicateRace(t *testing.T) {
	// 事前チェック後に同時作成された場合もユニーク制約の違反を409相当に変換する
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id}, nil
		},
	}
	apps := &mockGigAppRepo{
		createFn: func(ctx context.Context, app *model.GigApplication) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewService(repo, apps, stubSanitizer{})

	_, err := svc.Apply(context.Background(), "w-1", "g-1", "")
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateApplication)
}

// --- Applications / Decide ---

func TestService_Applications_NonOwner(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "owner"}, nil
		},
	}
	svc := NewService(repo, &mockGigAppRepo{}, stubSanitizer{})

	_, err := svc.Applications(context.Background(), "intruder", "g-1")
	assertAPIErrorCode(t, err, model.ErrCodeNotResourceOwner)
}

func TestService_Decide_Approve(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "s-1"}, nil
		},
	}
	apps := &mockGigAppRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.GigApplication, error) {
			return &model.GigApplication{ID: id, GigID: "g-1", Status: model.StatusPending}, nil
		},
	}
	svc := NewService(repo, apps, stubSanitizer{})

	app, err := svc.Decide(context.Background(), "s-1", "a-1", model.StatusApproved)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if app.Status != model.StatusApproved {
		t.Errorf("Status = %q, want approved", app.Status)
	}
}

func TestService_Decide_NonOwner(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "owner"}, nil
		},
	}
	apps := &mockGigAppRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.GigApplication, error) {
			return &model.GigApplication{ID: id, GigID: "g-1", Status: model.StatusPending}, nil
		},
	}
	svc := NewService(repo, apps, stubSanitizer{})

	_, err := svc.Decide(context.Background(), "intruder", "a-1", model.StatusApproved)
	assertAPIErrorCode(t, err, model.ErrCodeNotResourceOwner)
}

func TestService_Decide_AlreadyDecided(t *testing.T) {
	repo := &mockGigRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Gig, error) {
			return &model.Gig{ID: id, StartupID: "s-1"}, nil
		},
	}
	apps := &mockGigAppRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.GigApplication, error) {
			return &model.GigApplication{ID: id, GigID: "g-1", Status: model.StatusRejected}, nil
		},
		decideFromPendingFn: func(ctx context.Context, id string, status model.ApplicationStatus) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(repo, apps, stubSanitizer{})

	_, err := svc.Decide(context.Background(), "s-1", "a-1", model.StatusApproved)
	assertAPIErrorCode(t, err, model.ErrCodeApplicationDecided)
}

func TestService_Decide_ApplicationNotFound(t *testing.T) {
	svc := NewService(&mockGigRepo{}, &mockGigAppRepo{}, stubSanitizer{})

	_, err := svc.Decide(context.Background(), "s-1", "missing", model.StatusApproved)
	assertAPIErrorCode(t, err, model.ErrCodeApplicationNotFound)
}

// --- AppliedGigs ---

func TestService_AppliedGigs(t *testing.T) {
	apps := &mockGigAppRepo{
		listByWorkerFn: func(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, int, error) {
			return []model.GigApplicationWithGig{
				{
					GigApplication: model.GigApplication{ID: "a-1", WorkerID: workerID},
					GigTitle:       "Welding gig",
				},
			}, 1, nil
		},
	}
	svc := NewService(&mockGigRepo{}, apps, stubSanitizer{})

	list, pagination, err := svc.AppliedGigs(context.Background(), "w-1", query.ListParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("AppliedGigs: %v", err)
	}
	if len(list) != 1 || list[0].GigTitle != "Welding gig" {
		t.Errorf("list = %+v", list)
	}
	if pagination.TotalItems != 1 || pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v", pagination)
	}
}
