package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
)

// PostgresMachineApplicationRepo はPostgreSQLを使用した機材申請リポジトリ。
type PostgresMachineApplicationRepo struct {
	db *sql.DB
}

// NewPostgresMachineApplicationRepo はPostgresMachineApplicationRepoを生成する。
func NewPostgresMachineApplicationRepo(db *sql.DB) *PostgresMachineApplicationRepo {
	return &PostgresMachineApplicationRepo{db: db}
}

const machineAppColumns = `id, machine_id, worker_id, message, status, created_at, updated_at`

func scanMachineApplication(row interface{ Scan(...any) error }) (*model.MachineApplication, error) {
	app := &model.MachineApplication{}
	err := row.Scan(
		&app.ID, &app.MachineID, &app.WorkerID, &app.Message,
		&app.Status, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// FindByID は指定IDの申請を取得する。見つからない場合はnilを返す。
func (r *PostgresMachineApplicationRepo) FindByID(ctx context.Context, id string) (*model.MachineApplication, error) {
	app, err := scanMachineApplication(r.db.QueryRowContext(ctx,
		`SELECT `+machineAppColumns+` FROM machine_applications WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find machine application by ID: %w", err)
	}
	return app, nil
}

// FindByMachineAndWorker は機材IDとワーカーIDで申請を検索する。見つからない場合はnilを返す。
func (r *PostgresMachineApplicationRepo) FindByMachineAndWorker(ctx context.Context, machineID, workerID string) (*model.MachineApplication, error) {
	app, err := scanMachineApplication(r.db.QueryRowContext(ctx,
		`SELECT `+machineAppColumns+` FROM machine_applications WHERE machine_id = $1 AND worker_id = $2`,
		machineID, workerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find machine application: %w", err)
	}
	return app, nil
}

// Create は申請を作成する。(machine_id, worker_id)の重複時はErrDuplicateを返す。
func (r *PostgresMachineApplicationRepo) Create(ctx context.Context, app *model.MachineApplication) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO machine_applications (id, machine_id, worker_id, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		app.ID, app.MachineID, app.WorkerID, app.Message, app.Status,
		app.CreatedAt, app.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert machine application: %w", err)
	}
	return nil
}

// DecideFromPending はステータスをpendingからのみ遷移させる。
// 現在ステータスの確認と更新を1回のUPDATEで原子的に行う。
func (r *PostgresMachineApplicationRepo) DecideFromPending(ctx context.Context, id string, status model.ApplicationStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE machine_applications SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, status, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update machine application status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByMachine は指定機材への申請一覧を作成日時の降順で返す。
func (r *PostgresMachineApplicationRepo) ListByMachine(ctx context.Context, machineID string) ([]*model.MachineApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+machineAppColumns+` FROM machine_applications WHERE machine_id = $1 ORDER BY created_at DESC`,
		machineID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list machine applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.MachineApplication
	for rows.Next() {
		app, err := scanMachineApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate machine applications: %w", err)
	}
	return apps, nil
}

// ListByWorker はワーカーの申請一覧を機材情報付きで返す。
func (r *PostgresMachineApplicationRepo) ListByWorker(ctx context.Context, workerID string, params query.ListParams) ([]model.MachineApplicationWithMachine, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM machine_applications WHERE worker_id = $1`, workerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count machine applications: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.machine_id, a.worker_id, a.message, a.status, a.created_at, a.updated_at,
		        m.name, m.type, m.location, m.manufacturer_id
		 FROM machine_applications a
		 JOIN machines m ON m.id = a.machine_id
		 WHERE a.worker_id = $1
		 ORDER BY a.created_at DESC
		 LIMIT $2 OFFSET $3`,
		workerID, params.Limit, params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list machine applications by worker: %w", err)
	}
	defer rows.Close()

	var results []model.MachineApplicationWithMachine
	for rows.Next() {
		var a model.MachineApplicationWithMachine
		if err := rows.Scan(
			&a.ID, &a.MachineID, &a.WorkerID, &a.Message, &a.Status,
			&a.CreatedAt, &a.UpdatedAt,
			&a.MachineName, &a.MachineType, &a.MachineLocation, &a.ManufacturerID,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan machine application row: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate machine application rows: %w", err)
	}

	return results, total, nil
}

// compile-time interface check
var _ MachineApplicationRepository = (*PostgresMachineApplicationRepo)(nil)
