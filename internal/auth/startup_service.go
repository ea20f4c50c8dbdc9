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

// StartupService はスタートアップアカウントのビジネスロジックを提供する。
type StartupService struct {
	repo   repository.StartupRepository
	tokens *TokenManager
}

// NewStartupService はStartupServiceを生成する。
func NewStartupService(repo repository.StartupRepository, tokens *TokenManager) *StartupService {
	return &StartupService{repo: repo, tokens: tokens}
}

// CompanySignupInput はスタートアップ・メーカー共通の登録入力。
type CompanySignupInput struct {
	CompanyName string
	Email       string
	Password    string
	Phone       string
	Location    string
	Sector      string
	Description string
}

// Signup はスタートアップを登録し、プロフィールとトークンを返す。
func (s *StartupService) Signup(ctx context.Context, in CompanySignupInput) (*model.Startup, string, error) {
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
	startup := &model.Startup{
		ID:           uuid.New().String(),
		CompanyName:  in.CompanyName,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Location:     in.Location,
		Sector:       in.Sector,
		Description:  in.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, startup); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", model.NewEmailTakenError()
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(Claim{ID: startup.ID, Role: model.RoleStartup, Email: startup.Email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("startup signed up", slog.String("startup_id", startup.ID))
	return startup, token, nil
}

// Signin はメールとパスワードでスタートアップを認証する。
func (s *StartupService) Signin(ctx context.Context, email, password string) (*model.Startup, string, error) {
	startup, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find startup: %w", err)
	}
	if startup == nil || !VerifyPassword(startup.PasswordHash, password) {
		return nil, "", model.NewAuthenticationError(invalidCredentialsMessage)
	}

	token, err := s.tokens.Issue(Claim{ID: startup.ID, Role: model.RoleStartup, Email: startup.Email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("startup signed in", slog.String("startup_id", startup.ID))
	return startup, token, nil
}

// GetProfile はスタートアップのプロフィールを取得する。
func (s *StartupService) GetProfile(ctx context.Context, id string) (*model.Startup, error) {
	startup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find startup: %w", err)
	}
	if startup == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return startup, nil
}

// CompanyProfileUpdateInput はスタートアップ・メーカー共通のプロフィール更新入力。
// nilフィールドは変更しない部分更新を行う。
type CompanyProfileUpdateInput struct {
	CompanyName *string
	Phone       *string
	Location    *string
	Sector      *string
	Description *string
}

// UpdateProfile はスタートアップのプロフィールを部分更新する。
func (s *StartupService) UpdateProfile(ctx context.Context, id string, in CompanyProfileUpdateInput) (*model.Startup, error) {
	startup, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CompanyName != nil {
		startup.CompanyName = *in.CompanyName
	}
	if in.Phone != nil {
		startup.Phone = *in.Phone
	}
	if in.Location != nil {
		startup.Location = *in.Location
	}
	if in.Sector != nil {
		startup.Sector = *in.Sector
	}
	if in.Description != nil {
		startup.Description = *in.Description
	}
	startup.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, startup); err != nil {
		return nil, err
	}
	return startup, nil
}
