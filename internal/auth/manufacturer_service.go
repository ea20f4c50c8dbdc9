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

// ManufacturerService はメーカーアカウントのビジネスロジックを提供する。
type ManufacturerService struct {
	repo   repository.ManufacturerRepository
	tokens *TokenManager
}

// NewManufacturerService はManufacturerServiceを生成する。
func NewManufacturerService(repo repository.ManufacturerRepository, tokens *TokenManager) *ManufacturerService {
	return &ManufacturerService{repo: repo, tokens: tokens}
}

// Signup はメーカーを登録し、プロフィールとトークンを返す。
func (s *ManufacturerService) Signup(ctx context.Context, in CompanySignupInput) (*model.Manufacturer, string, error) {
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
	m := &model.Manufacturer{
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

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", model.NewEmailTakenError()
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(Claim{ID: m.ID, Role: model.RoleManufacturer, Email: m.Email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("manufacturer signed up", slog.String("manufacturer_id", m.ID))
	return m, token, nil
}

// Signin はメールとパスワードでメーカーを認証する。
func (s *ManufacturerService) Signin(ctx context.Context, email, password string) (*model.Manufacturer, string, error) {
	m, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find manufacturer: %w", err)
	}
	if m == nil || !VerifyPassword(m.PasswordHash, password) {
		return nil, "", model.NewAuthenticationError(invalidCredentialsMessage)
	}

	token, err := s.tokens.Issue(Claim{ID: m.ID, Role: model.RoleManufacturer, Email: m.Email})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("manufacturer signed in", slog.String("manufacturer_id", m.ID))
	return m, token, nil
}

// GetProfile はメーカーのプロフィールを取得する。
func (s *ManufacturerService) GetProfile(ctx context.Context, id string) (*model.Manufacturer, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find manufacturer: %w", err)
	}
	if m == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return m, nil
}

// UpdateProfile はメーカーのプロフィールを部分更新する。
func (s *ManufacturerService) UpdateProfile(ctx context.Context, id string, in CompanyProfileUpdateInput) (*model.Manufacturer, error) {
	m, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CompanyName != nil {
		m.CompanyName = *in.CompanyName
	}
	if in.Phone != nil {
		m.Phone = *in.Phone
	}
	if in.Location != nil {
		m.Location = *in.Location
	}
	if in.Sector != nil {
		m.Sector = *in.Sector
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	m.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
