package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/worklink/internal/model"
)

// PostgresManufacturerRepo はPostgreSQLを使用したメーカーリポジトリ。
type PostgresManufacturerRepo struct {
	db *sql.DB
}

// NewPostgresManufacturerRepo はPostgresManufacturerRepoを生成する。
func NewPostgresManufacturerRepo(db *sql.DB) *PostgresManufacturerRepo {
	return &PostgresManufacturerRepo{db: db}
}

// FindByID は指定IDのメーカーを取得する。見つからない場合はnilを返す。
func (r *PostgresManufacturerRepo) FindByID(ctx context.Context, id string) (*model.Manufacturer, error) {
	return r.findBy(ctx, "id", id)
}

// FindByEmail はメールアドレスでメーカーを検索する。見つからない場合はnilを返す。
func (r *PostgresManufacturerRepo) FindByEmail(ctx context.Context, email string) (*model.Manufacturer, error) {
	return r.findBy(ctx, "email", email)
}

func (r *PostgresManufacturerRepo) findBy(ctx context.Context, column, value string) (*model.Manufacturer, error) {
	m := &model.Manufacturer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_name, email, password_hash, phone, location, sector, description, created_at, updated_at
		 FROM manufacturers WHERE `+column+` = $1`,
		value,
	).Scan(
		&m.ID, &m.CompanyName, &m.Email, &m.PasswordHash,
		&m.Phone, &m.Location, &m.Sector, &m.Description,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find manufacturer by %s: %w", column, err)
	}

	return m, nil
}

// Create はメーカーを作成する。メール重複時はErrDuplicateを返す。
func (r *PostgresManufacturerRepo) Create(ctx context.Context, m *model.Manufacturer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO manufacturers (id, company_name, email, password_hash, phone, location, sector, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.CompanyName, m.Email, m.PasswordHash,
		m.Phone, m.Location, m.Sector, m.Description,
		m.CreatedAt, m.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert manufacturer: %w", err)
	}
	return nil
}

// Update はプロフィールを更新する。
func (r *PostgresManufacturerRepo) Update(ctx context.Context, m *model.Manufacturer) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE manufacturers
		 SET company_name = $2, phone = $3, location = $4, sector = $5, description = $6, updated_at = $7
		 WHERE id = $1`,
		m.ID, m.CompanyName, m.Phone, m.Location,
		m.Sector, m.Description, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update manufacturer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("manufacturer not found: %s", m.ID)
	}
	return nil
}

// compile-time interface check
var _ ManufacturerRepository = (*PostgresManufacturerRepo)(nil)
