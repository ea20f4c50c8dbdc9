// Package gig はギグ掲載と応募ワークフローのビジネスロジックを提供する。
package gig

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

// Service はギグと応募に関するビジネスロジックを提供する。
type Service struct {
	gigs      repository.GigRepository
	apps      repository.GigApplicationRepository
	sanitizer security.DescriptionSanitizer
}

// NewService はServiceを生成する。
func NewService(
	gigs repository.GigRepository,
	apps repository.GigApplicationRepository,
	sanitizer security.DescriptionSanitizer,
) *Service {
	return &Service{
		gigs:      gigs,
		apps:      apps,
		sanitizer: sanitizer,
	}
}

// CreateInput はギグ作成の検証済み入力。
type CreateInput struct {
	Title       string
	Description string
	Skills      []string
	Location    string
	SalaryMin   int
	SalaryMax   int
}

// Create はスタートアップ所有のギグを作成する。
// 説明文は保存前にサニタイズする。
func (s *Service) Create(ctx context.Context, startupID string, in CreateInput) (*model.Gig, error) {
	now := time.Now()
	gig := &model.Gig{
		ID:          uuid.New().String(),
		StartupID:   startupID,
		Title:       in.Title,
		Description: s.sanitizer.Sanitize(in.Description),
		Skills:      in.Skills,
		Location:    in.Location,
		SalaryMin:   in.SalaryMin,
		SalaryMax:   in.SalaryMax,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.gigs.Create(ctx, gig); err != nil {
		return nil, err
	}

	slog.Info("gig created",
		slog.String("gig_id", gig.ID),
		slog.String("startup_id", startupID),
	)
	return gig, nil
}

// UpdateInput はギグ更新の検証済み入力。nilフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Skills      []string
	Location    *string
	SalaryMin   *int
	SalaryMax   *int
}

// Update はギグを部分更新する。所有者以外の更新は拒否する。
func (s *Service) Update(ctx context.Context, startupID, gigID string, in UpdateInput) (*model.Gig, error) {
	gig, err := s.findOwned(ctx, startupID, gigID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		gig.Title = *in.Title
	}
	if in.Description != nil {
		gig.Description = s.sanitizer.Sanitize(*in.Description)
	}
	if in.Skills != nil {
		gig.Skills = in.Skills
	}
	if in.Location != nil {
		gig.Location = *in.Location
	}
	if in.SalaryMin != nil {
		gig.SalaryMin = *in.SalaryMin
	}
	if in.SalaryMax != nil {
		gig.SalaryMax = *in.SalaryMax
	}
	gig.UpdatedAt = time.Now()

	if err := s.gigs.Update(ctx, gig); err != nil {
		return nil, err
	}
	return gig, nil
}

// Delete はギグを削除する。所有者以外の削除は拒否する。
func (s *Service) Delete(ctx context.Context, startupID, gigID string) error {
	if _, err := s.findOwned(ctx, startupID, gigID); err != nil {
		return err
	}
	return s.gigs.Delete(ctx, gigID)
}

// Get は指定IDのギグを取得する。
func (s *Service) Get(ctx context.Context, gigID string) (*model.Gig, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to find gig: %w", err)
	}
	if gig == nil {
		return nil, model.NewGigNotFoundError(gigID)
	}
	return gig, nil
}

// List は公開ギグ一覧をフィルタ・ページネーション付きで返す。
func (s *Service) List(ctx context.Context, filter repository.GigFilter, params query.ListParams) ([]*model.Gig, query.Pagination, error) {
	gigs, total, err := s.gigs.List(ctx, filter, params)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return gigs, query.NewPagination(params.Page, params.Limit, total), nil
}

// ListOwned はスタートアップ自身のギグ一覧を返す。
func (s *Service) ListOwned(ctx context.Context, startupID string, params query.ListParams) ([]*model.Gig, query.Pagination, error) {
	gigs, total, err := s.gigs.ListByStartup(ctx, startupID, params)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return gigs, query.NewPagination(params.Page, params.Limit, total), nil
}

// Apply はワーカーのギグへの応募を作成する。
// 同一ワーカーの重複応募は拒否する（DBのユニーク制約がレースも防ぐ）。
func (s *Service) Apply(ctx context.Context, workerID, gigID, message string) (*model.GigApplication, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to find gig: %w", err)
	}
	if gig == nil {
		return nil, model.NewGigNotFoundError(gigID)
	}

	existing, err := s.apps.FindByGigAndWorker(ctx, gigID, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateApplicationError()
	}

	now := time.Now()
	app := &model.GigApplication{
		ID:        uuid.New().String(),
		GigID:     gigID,
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

	slog.Info("gig application created",
		slog.String("application_id", app.ID),
		slog.String("gig_id", gigID),
		slog.String("worker_id", workerID),
	)
	return app, nil
}

// Applications は指定ギグへの応募一覧を返す。ギグの所有者のみ閲覧できる。
func (s *Service) Applications(ctx context.Context, startupID, gigID string) ([]*model.GigApplication, error) {
	if _, err := s.findOwned(ctx, startupID, gigID); err != nil {
		return nil, err
	}
	return s.apps.ListByGig(ctx, gigID)
}

// Decide は応募を承認または却下する。
// 対象ギグの所有者のみが実行でき、pending以外からの遷移は拒否する。
func (s *Service) Decide(ctx context.Context, startupID, applicationID string, status model.ApplicationStatus) (*model.GigApplication, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(applicationID)
	}

	// 所有者チェックは応募ではなくギグの所有者に対して行う
	gig, err := s.gigs.FindByID(ctx, app.GigID)
	if err != nil {
		return nil, fmt.Errorf("failed to find gig: %w", err)
	}
	if gig == nil {
		return nil, model.NewGigNotFoundError(app.GigID)
	}
	if gig.StartupID != startupID {
		return nil, model.NewAuthorizationError("gig")
	}

	transitioned, err := s.apps.DecideFromPending(ctx, applicationID, status)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// pendingでなかった場合は現在の終端状態をエラーに含める
		return nil, model.NewApplicationDecidedError(app.Status)
	}

	app.Status = status
	app.UpdatedAt = time.Now()

	slog.Info("gig application decided",
		slog.String("application_id", applicationID),
		slog.String("status", string(status)),
	)
	return app, nil
}

// AppliedGigs はワーカーの応募一覧をギグ情報付きで返す。
func (s *Service) AppliedGigs(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, query.Pagination, error) {
	apps, total, err := s.apps.ListByWorker(ctx, workerID, params)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return apps, query.NewPagination(params.Page, params.Limit, total), nil
}

// findOwned はギグを取得し、所有者を確認する。
// ギグが存在しない場合はNotFound、所有者不一致の場合はAuthorizationErrorを返す。
func (s *Service) findOwned(ctx context.Context, startupID, gigID string) (*model.Gig, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to find gig: %w", err)
	}
	if gig == nil {
		return nil, model.NewGigNotFoundError(gigID)
	}
	if gig.StartupID != startupID {
		return nil, model.NewAuthorizationError("gig")
	}
	return gig, nil
}
