// Package machine は機材リスティングと利用申請ワークフローのビジネスロジックを提供する。
package machine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
	"github.com/hitoshi/worklink/internal/repository"
	"github.com/hitoshi/worklink/internal/security"
)

// Service は機材と利用申請に関するビジネスロジックを提供する。
type Service struct {
	machines  repository.MachineRepository
	apps      repository.MachineApplicationRepository
	sanitizer security.DescriptionSanitizer
}

// NewService はServiceを生成する。
func NewService(
	machines repository.MachineRepository,
	apps repository.MachineApplicationRepository,
	sanitizer security.DescriptionSanitizer,
) *Service {
	return &Service{
		machines:  machines,
		apps:      apps,
		sanitizer: sanitizer,
	}
}

// CreateInput は機材作成の検証済み入力。
type CreateInput struct {
	Name        string
	Type        string
	Description string
	Location    string
	DailyRate   int
	Available   bool
}

// Create はメーカー所有の機材を作成する。
// 説明文は保存前にサニタイズする。
func (s *Service) Create(ctx context.Context, manufacturerID string, in CreateInput) (*model.Machine, error) {
	now := time.Now()
	m := &model.Machine{
		ID:             uuid.New().String(),
		ManufacturerID: manufacturerID,
		Name:           in.Name,
		Type:           in.Type,
		Description:    s.sanitizer.Sanitize(in.Description),
		Location:       in.Location,
		DailyRate:      in.DailyRate,
		Available:      in.Available,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.machines.Create(ctx, m); err != nil {
		return nil, err
	}

	slog.Info("machine created",
		slog.String("machine_id", m.ID),
		slog.String("manufacturer_id", manufacturerID),
	)
	return m, nil
}

// UpdateInput は機材更新の検証済み入力。nilフィールドは変更しない。
type UpdateInput struct {
	Name        *string
	Type        *string
	Description *string
	Location    *string
	DailyRate   *int
	Available   *bool
}

// Update は機材を部分更新する。所有者以外の更新は拒否する。
func (s *Service) Update(ctx context.Context, manufacturerID, machineID string, in UpdateInput) (*model.Machine, error) {
	m, err := s.findOwned(ctx, manufacturerID, machineID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Type != nil {
		m.Type = *in.Type
	}
	if in.Description != nil {
		m.Description = s.sanitizer.Sanitize(*in.Description)
	}
	if in.Location != nil {
		m.Location = *in.Location
	}
	if in.DailyRate != nil {
		m.DailyRate = *in.DailyRate
	}
	if in.Available != nil {
		m.Available = *in.Available
	}
	m.UpdatedAt = time.Now()

	if err := s.machines.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete は機材を削除する。所有者以外の削除は拒否する。
func (s *Service) Delete(ctx context.Context, manufacturerID, machineID string) error {
	if _, err := s.findOwned(ctx, manufacturerID, machineID); err != nil {
		return err
	}
	return s.machines.Delete(ctx, machineID)
}

// Get は指定IDの機材を取得する。
func (s *Service) Get(ctx context.Context, machineID string) (*model.Machine, error) {
	m, err := s.machines.FindByID(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find machine: %w", err)
	}
	if m == nil {
		return nil, model.NewMachineNotFoundError(machineID)
	}
	return m, nil
}

// List は公開機材一覧をフィルタ・ページネーション付きで返す。
func (s *Service) List(ctx context.Context, filter repository.MachineFilter, params query.ListParams) ([]*model.Machine, query.Pagination, error) {
	machines, total, err := s.machines.List(ctx, filter, params)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return machines, query.NewPagination(params.Page, params.Limit, total), nil
}

// ListOwned はメーカー自身の機材一覧を返す。
func (s *Service) ListOwned(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, query.Pagination, error) {
	machines, total, err := s.machines.ListByManufacturer(ctx, manufacturerID, params)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return machines, query.NewPagination(params.Page, params.Limit, total), nil
}

// Apply はワーカーの機材利用申請を作成する。
// 利用不可の機材への申請と重複申請は拒否する（重複はDBのユニーク制約がレースも防ぐ）。
func (s *Service) Apply(ctx context.Context, workerID, machineID, message string) (*model.MachineApplication, error) {
	m, err := s.machines.FindByID(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find machine: %w", err)
	}
	if m == nil {
		return nil, model.NewMachineNotFoundError(machineID)
	}
	if !m.Available {
		return nil, model.NewMachineUnavailableError()
	}

	existing, err := s.apps.FindByMachineAndWorker(ctx, machineID, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateApplicationError()
	}

	now := time.Now()
	app := &model.MachineApplication{
		ID:        uuid.New().String(),
		MachineID: machineID,
		WorkerID:  workerID,
		Message:   message,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateApplicationError()
		}
		return nil, err
	}

	slog.Info("machine application created",
		slog.String("application_id", app.ID),
		slog.String("machine_id", machineID),
		slog.String("worker_id", workerID),
	)
	return app, nil
}

// Applications は指定機材への申請一覧を返す。機材の所有者のみ閲覧できる。
func (s *Service) Applications(ctx context.Context, manufacturerID, machineID string) ([]*model.MachineApplication, error) {
	if _, err := s.findOwned(ctx, manufacturerID, machineID); err != nil {
		return nil, err
	}
	return s.apps.ListByMachine(ctx, machineID)
}

// Decide は申請を承認または却下する。
// 対象機材の所有者のみが実行でき、pending以外からの遷移は拒否する。
func (s *Service) Decide(ctx context.Context, manufacturerID, applicationID string, status model.ApplicationStatus) (*model.MachineApplication, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(applicationID)
	}

	// 所有者チェックは申請ではなく機材の所有者に対して行う
	m, err := s.machines.FindByID(ctx, app.MachineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find machine: %w", err)
	}
	if m == nil {
		return nil, model.NewMachineNotFoundError(app.MachineID)
	}
	if m.ManufacturerID != manufacturerID {
		return nil, model.NewAuthorizationError("machine")
	}

	transitioned, err := s.apps.DecideFromPending(ctx, applicationID, status)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, model.NewApplicationDecidedError(app.Status)
	}

	app.Status = status
	app.UpdatedAt = time.Now()

	slog.Info("machine application decided",
		slog.String("application_id", applicationID),
		slog.String("status", string(status)),
	)
	return app, nil
}

// AppliedMachines はワーカーの申請一覧を機材情報付きで返す。
func (s *Service) AppliedMachines(ctx context.Context, workerID string, params query.ListParams) ([]model.MachineApplicationWithMachine, query.Pagination, error) {
	apps, total, err := s.apps.ListByWorker(ctx, workerID, params)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return apps, query.NewPagination(params.Page, params.Limit, total), nil
}

// findOwned は機材を取得し、所有者を確認する。
func (s *Service) findOwned(ctx context.Context, manufacturerID, machineID string) (*model.Machine, error) {
	m, err := s.machines.FindByID(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find machine: %w", err)
	}
	if m == nil {
		return nil, model.NewMachineNotFoundError(machineID)
	}
	if m.ManufacturerID != manufacturerID {
		return nil, model.NewAuthorizationError("machine")
	}
	return m, nil
}
