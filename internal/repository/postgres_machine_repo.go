package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
)

// machineSortColumns はAPI上のソートキーからSQLカラム名への許可リスト。
var machineSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"name":       "name",
	"type":       "type",
	"daily_rate": "daily_rate",
	"location":   "location",
}

// machineSearchColumns は全文検索の対象カラム。
var machineSearchColumns = []string{"name", "type", "description", "location"}

// PostgresMachineRepo はPostgreSQLを使用した機材リポジトリ。
type PostgresMachineRepo struct {
	db *sql.DB
}

// NewPostgresMachineRepo はPostgresMachineRepoを生成する。
func NewPostgresMachineRepo(db *sql.DB) *PostgresMachineRepo {
	return &PostgresMachineRepo{db: db}
}

const machineColumns = `id, manufacturer_id, name, type, description, location, daily_rate, available, created_at, updated_at`

func scanMachine(row interface{ Scan(...any) error }) (*model.Machine, error) {
	m := &model.Machine{}
	err := row.Scan(
		&m.ID, &m.ManufacturerID, &m.Name, &m.Type, &m.Description,
		&m.Location, &m.DailyRate, &m.Available, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindByID は指定IDの機材を取得する。見つからない場合はnilを返す。
func (r *PostgresMachineRepo) FindByID(ctx context.Context, id string) (*model.Machine, error) {
	m, err := scanMachine(r.db.QueryRowContext(ctx,
		`SELECT `+machineColumns+` FROM machines WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find machine by ID: %w", err)
	}
	return m, nil
}

// Create は機材を作成する。
func (r *PostgresMachineRepo) Create(ctx context.Context, m *model.Machine) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO machines (id, manufacturer_id, name, type, description, location, daily_rate, available, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.ManufacturerID, m.Name, m.Type, m.Description,
		m.Location, m.DailyRate, m.Available, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert machine: %w", err)
	}
	return nil
}

// Update は機材を更新する。
func (r *PostgresMachineRepo) Update(ctx context.Context, m *model.Machine) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE machines
		 SET name = $2, type = $3, description = $4, location = $5, daily_rate = $6, available = $7, updated_at = $8
		 WHERE id = $1`,
		m.ID, m.Name, m.Type, m.Description, m.Location,
		m.DailyRate, m.Available, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update machine: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("machine not found: %s", m.ID)
	}
	return nil
}

// Delete は指定IDの機材を削除する。申請はCASCADE削除される。
func (r *PostgresMachineRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM machines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete machine: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("machine not found: %s", id)
	}
	return nil
}

// List はフィルタ・検索・ソート・ページネーション付きの一覧と総件数を返す。
func (r *PostgresMachineRepo) List(ctx context.Context, filter MachineFilter, params query.ListParams) ([]*model.Machine, int, error) {
	var conds []string
	var args []any

	if filter.Type != "" {
		args = append(args, "%"+filter.Type+"%")
		conds = append(conds, fmt.Sprintf("type ILIKE $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		conds = append(conds, fmt.Sprintf("available = $%d", len(args)))
	}
	if cond, searchArgs := query.SearchCondition(params.Search, machineSearchColumns, len(args)+1); cond != "" {
		args = append(args, searchArgs...)
		conds = append(conds, cond)
	}

	return r.list(ctx, conds, args, params)
}

// ListByManufacturer は指定メーカーが所有する機材一覧と総件数を返す。
func (r *PostgresMachineRepo) ListByManufacturer(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, int, error) {
	conds := []string{"manufacturer_id = $1"}
	args := []any{manufacturerID}

	if cond, searchArgs := query.SearchCondition(params.Search, machineSearchColumns, len(args)+1); cond != "" {
		args = append(args, searchArgs...)
		conds = append(conds, cond)
	}

	return r.list(ctx, conds, args, params)
}

func (r *PostgresMachineRepo) list(ctx context.Context, conds []string, args []any, params query.ListParams) ([]*model.Machine, int, error) {
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM machines`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count machines: %w", err)
	}

	orderBy := query.SortClause(params.Sort, machineSortColumns, "created_at")
	sqlQuery := fmt.Sprintf(
		`SELECT %s FROM machines%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		machineColumns, where, orderBy, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list machines: %w", err)
	}
	defer rows.Close()

	var machines []*model.Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan machine: %w", err)
		}
		machines = append(machines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate machines: %w", err)
	}

	return machines, total, nil
}

// compile-time interface check
var _ MachineRepository = (*PostgresMachineRepo)(nil)
