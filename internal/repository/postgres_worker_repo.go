package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/worklink/internal/model"
)

// PostgresWorkerRepo はPostgreSQLを使用したワーカーリポジトリ。
type PostgresWorkerRepo struct {
	db *sql.DB
}

// NewPostgresWorkerRepo はPostgresWorkerRepoを生成する。
func NewPostgresWorkerRepo(db *sql.DB) *PostgresWorkerRepo {
	return &PostgresWorkerRepo{db: db}
}

// FindByID は指定IDのワーカーを取得する。見つからない場合はnilを返す。
func (r *PostgresWorkerRepo) FindByID(ctx context.Context, id string) (*model.Worker, error) {
	return r.findBy(ctx, "id", id)
}

// FindByEmail はメールアドレスでワーカーを検索する。見つからない場合はnilを返す。
func (r *PostgresWorkerRepo) FindByEmail(ctx context.Context, email string) (*model.Worker, error) {
	return r.findBy(ctx, "email", email)
}

func (r *PostgresWorkerRepo) findBy(ctx context.Context, column, value string) (*model.Worker, error) {
	worker := &model.Worker{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, phone, location, skills, experience, created_at, updated_at
		 FROM workers WHERE `+column+` = $1`,
		value,
	).Scan(
		&worker.ID, &worker.Name, &worker.Email, &worker.PasswordHash,
		&worker.Phone, &worker.Location, pq.Array(&worker.Skills),
		&worker.Experience, &worker.CreatedAt, &worker.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find worker by %s: %w", column, err)
	}

	return worker, nil
}

// Create はワーカーを作成する。メール重複時はErrDuplicateを返す。
func (r *PostgresWorkerRepo) Create(ctx context.Context, worker *model.Worker) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workers (id, name, email, password_hash, phone, location, skills, experience, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		worker.ID, worker.Name, worker.Email, worker.PasswordHash,
		worker.Phone, worker.Location, pq.Array(worker.Skills),
		worker.Experience, worker.CreatedAt, worker.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert worker: %w", err)
	}
	return nil
}

// Update はプロフィールを更新する。
func (r *PostgresWorkerRepo) Update(ctx context.Context, worker *model.Worker) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workers
		 SET name = $2, phone = $3, location = $4, skills = $5, experience = $6, updated_at = $7
		 WHERE id = $1`,
		worker.ID, worker.Name, worker.Phone, worker.Location,
		pq.Array(worker.Skills), worker.Experience, worker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update worker: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("worker not found: %s", worker.ID)
	}
	return nil
}

// compile-time interface check
var _ WorkerRepository = (*PostgresWorkerRepo)(nil)
