package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/repository"
)

// invalidCredentialsMessage はサインイン失敗時の共通メッセージ。
// 未登録メールとパスワード不一致で同一のメッセージを返し、
// アカウントの存在有無を漏らさない。
const invalidCredentialsMessage = "Invalid email or password"

// WorkerService はワーカーアカウントのビジネスロジックを提供する。
type WorkerService struct {
	repo   repository.WorkerRepository
	tokens *TokenManager
}

// NewWorkerService はWorkerServiceを生成する。
func NewWorkerService(repo repository.WorkerRepository, tokens *TokenManager) *WorkerService {
	return &WorkerService{repo: repo, tokens: tokens}
}

// WorkerSignupInput はワーカー登録の検証済み入力。
type WorkerSignupInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	Location   string
	Skills     []string
	Experience string
}

// Signup はワーカーを登録し、プロフィールとトークンを返す。
// メールアドレスが既に使われている場合はEMAIL_TAKENエラーを返す。
func (s *WorkerService) Signup(ctx context.Context, in WorkerSignupInput) (*model.Worker, string, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewEmailTakenError()
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	worker := &model.Worker{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Location:     in.Location,
		Skills:       in.Skills,
		Experience:   in.Experience,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, worker); err != nil {
		// 事前チェックと作成の間のレースはDBのユニーク制約が防ぐ
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", model.NewEmailTakenError()
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(Claim{ID: worker.ID, Role: model.RoleWorker, Email: worker.Email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("worker signed up", slog.String("worker_id", worker.ID))
	return worker, token, nil
}

// Signin はメールとパスワードでワーカーを認証し、プロフィールとトークンを返す。
// 未登録メールとパスワード不一致は同一のエラーになる。
func (s *WorkerService) Signin(ctx context.Context, email, password string) (*model.Worker, string, error) {
	worker, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find worker: %w", err)
	}
	if worker == nil || !VerifyPassword(worker.PasswordHash, password) {
		return nil, "", model.NewAuthenticationError(invalidCredentialsMessage)
	}

	token, err := s.tokens.Issue(Claim{ID: worker.ID, Role: model.RoleWorker, Email: worker.Email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("worker signed in", slog.String("worker_id", worker.ID))
	return worker, token, nil
}

// GetProfile はワーカーのプロフィールを取得する。
func (s *WorkerService) GetProfile(ctx context.Context, id string) (*model.Worker, error) {
	worker, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find worker: %w", err)
	}
	if worker == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return worker, nil
}

// WorkerProfileUpdateInput はプロフィール更新の検証済み入力。
// nilフィールドは変更しない部分更新を行う。
type WorkerProfileUpdateInput struct {
	Name       *string
	Phone      *string
	Location   *string
	Skills     []string
	Experience *string
}

// UpdateProfile はワーカーのプロフィールを部分更新する。
func (s *WorkerService) UpdateProfile(ctx context.Context, id string, in WorkerProfileUpdateInput) (*model.Worker, error) {
	worker, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		worker.Name = *in.Name
	}
	if in.Phone != nil {
		worker.Phone = *in.Phone
	}
	if in.Location != nil {
		worker.Location = *in.Location
	}
	if in.Skills != nil {
		worker.Skills = in.Skills
	}
	if in.Experience != nil {
		worker.Experience = *in.Experience
	}
	worker.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}
