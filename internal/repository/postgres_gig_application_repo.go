package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
)

// PostgresGigApplicationRepo はPostgreSQLを使用したギグ応募リポジトリ。
type PostgresGigApplicationRepo struct {
	db *sql.DB
}

// NewPostgresGigApplicationRepo はPostgresGigApplicationRepoを生成する。
func NewPostgresGigApplicationRepo(db *sql.DB) *PostgresGigApplicationRepo {
	return &PostgresGigApplicationRepo{db: db}
}

const gigAppColumns = `id, gig_id, worker_id, message, status, created_at, updated_at`

func scanGigApplication(row interface{ Scan(...any) error }) (*model.GigApplication, error) {
	app := &model.GigApplication{}
	err := row.Scan(
		&app.ID, &app.GigID, &app.WorkerID, &app.Message,
		&app.Status, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
func (r *PostgresGigApplicationRepo) FindByID(ctx context.Context, id string) (*model.GigApplication, error) {
	app, err := scanGigApplication(r.db.QueryRowContext(ctx,
		`SELECT `+gigAppColumns+` FROM gig_applications WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find gig application by ID: %w", err)
	}
	return app, nil
}

// FindByGigAndWorker はギグIDとワーカーIDで応募を検索する。見つからない場合はnilを返す。
func (r *PostgresGigApplicationRepo) FindByGigAndWorker(ctx context.Context, gigID, workerID string) (*model.GigApplication, error) {
	app, err := scanGigApplication(r.db.QueryRowContext(ctx,
		`SELECT `+gigAppColumns+` FROM gig_applications WHERE gig_id = $1 AND worker_id = $2`,
		gigID, workerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find gig application: %w", err)
	}
	return app, nil
}

// Create は応募を作成する。(gig_id, worker_id)の重複時はErrDuplicateを返す。
func (r *PostgresGigApplicationRepo) Create(ctx context.Context, app *model.GigApplication) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gig_applications (id, gig_id, worker_id, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		app.ID, app.GigID, app.WorkerID, app.Message, app.Status,
		app.CreatedAt, app.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert gig application: %w", err)
	}
	return nil
}

// DecideFromPending はステータスをpendingからのみ遷移させる。
// 現在ステータスの確認と更新を1回のUPDATEで原子的に行う。
func (r *PostgresGigApplicationRepo) DecideFromPending(ctx context.Context, id string, status model.ApplicationStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE gig_applications SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, status, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update gig application status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByGig は指定ギグへの応募一覧を作成日時の降順で返す。
func (r *PostgresGigApplicationRepo) ListByGig(ctx context.Context, gigID string) ([]*model.GigApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gigAppColumns+` FROM gig_applications WHERE gig_id = $1 ORDER BY created_at DESC`,
		gigID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list gig applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.GigApplication
	for rows.Next() {
		app, err := scanGigApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gig application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gig applications: %w", err)
	}
	return apps, nil
}

// ListByWorker はワーカーの応募一覧をギグ情報付きで返す。
func (r *PostgresGigApplicationRepo) ListByWorker(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gig_applications WHERE worker_id = $1`, workerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count gig applications: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.gig_id, a.worker_id, a.message, a.status, a.created_at, a.updated_at,
		        g.title, g.location, g.startup_id
		 FROM gig_applications a
		 JOIN gigs g ON g.id = a.gig_id
		 WHERE a.worker_id = $1
		 ORDER BY a.created_at DESC
		 LIMIT $2 OFFSET $3`,
		workerID, params.Limit, params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gig applications by worker: %w", err)
	}
	defer rows.Close()

	var results []model.GigApplicationWithGig
	for rows.Next() {
		var a model.GigApplicationWithGig
		if err := rows.Scan(
			&a.ID, &a.GigID, &a.WorkerID, &a.Message, &a.Status,
			&a.CreatedAt, &a.UpdatedAt,
			&a.GigTitle, &a.GigLocation, &a.StartupID,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan gig application row: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate gig application rows: %w", err)
	}

	return results, total, nil
}

// compile-time interface check
var _ GigApplicationRepository = (*PostgresGigApplicationRepo)(nil)
