package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/worklink/internal/model"
)

// PostgresStartupRepo はPostgreSQLを使用したスタートアップリポジトリ。
type PostgresStartupRepo struct {
	db *sql.DB
}

// NewPostgresStartupRepo はPostgresStartupRepoを生成する。
func NewPostgresStartupRepo(db *sql.DB) *PostgresStartupRepo {
	return &PostgresStartupRepo{db: db}
}

// FindByID は指定IDのスタートアップを取得する。見つからない場合はnilを返す。
func (r *PostgresStartupRepo) FindByID(ctx context.Context, id string) (*model.Startup, error) {
	return r.findBy(ctx, "id", id)
}

// FindByEmail はメールアドレスでスタートアップを検索する。見つからない場合はnilを返す。
func (r *PostgresStartupRepo) FindByEmail(ctx context.Context, email string) (*model.Startup, error) {
	return r.findBy(ctx, "email", email)
}

func (r *PostgresStartupRepo) findBy(ctx context.Context, column, value string) (*model.Startup, error) {
	startup := &model.Startup{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_name, email, password_hash, phone, location, sector, description, created_at, updated_at
		 FROM startups WHERE `+column+` = $1`,
		value,
	).Scan(
		&startup.ID, &startup.CompanyName, &startup.Email, &startup.PasswordHash,
		&startup.Phone, &startup.Location, &startup.Sector, &startup.Description,
		&startup.CreatedAt, &startup.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find startup by %s: %w", column, err)
	}

	return startup, nil
}

// Create はスタートアップを作成する。メール重複時はErrDuplicateを返す。
func (r *PostgresStartupRepo) Create(ctx context.Context, startup *model.Startup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO startups (id, company_name, email, password_hash, phone, location, sector, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		startup.ID, startup.CompanyName, startup.Email, startup.PasswordHash,
		startup.Phone, startup.Location, startup.Sector, startup.Description,
		startup.CreatedAt, startup.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert startup: %w", err)
	}
	return nil
}

// Update はプロフィールを更新する。
func (r *PostgresStartupRepo) Update(ctx context.Context, startup *model.Startup) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE startups
		 SET company_name = $2, phone = $3, location = $4, sector = $5, description = $6, updated_at = $7
		 WHERE id = $1`,
		startup.ID, startup.CompanyName, startup.Phone, startup.Location,
		startup.Sector, startup.Description, startup.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update startup: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("startup not found: %s", startup.ID)
	}
	return nil
}

// compile-time interface check
var _ StartupRepository = (*PostgresStartupRepo)(nil)
