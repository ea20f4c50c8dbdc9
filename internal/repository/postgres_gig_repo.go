package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
)

// gigSortColumns はAPI上のソートキーからSQLカラム名への許可リスト。
var gigSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"title":      "title",
	"salary_min": "salary_min",
	"salary_max": "salary_max",
	"location":   "location",
}

// gigSearchColumns は全文検索の対象カラム。
var gigSearchColumns = []string{"title", "description", "location"}

// PostgresGigRepo はPostgreSQLを使用したギグリポジトリ。
type PostgresGigRepo struct {
	db *sql.DB
}

// NewPostgresGigRepo はPostgresGigRepoを生成する。
func NewPostgresGigRepo(db *sql.DB) *PostgresGigRepo {
	return &PostgresGigRepo{db: db}
}

const gigColumns = `id, startup_id, title, description, skills, location, salary_min, salary_max, created_at, updated_at`

func scanGig(row interface{ Scan(...any) error }) (*model.Gig, error) {
	gig := &model.Gig{}
	err := row.Scan(
		&gig.ID, &gig.StartupID, &gig.Title, &gig.Description,
		pq.Array(&gig.Skills), &gig.Location, &gig.SalaryMin, &gig.SalaryMax,
		&gig.CreatedAt, &gig.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return gig, nil
}

// FindByID は指定IDのギグを取得する。見つからない場合はnilを返す。
func (r *PostgresGigRepo) FindByID(ctx context.Context, id string) (*model.Gig, error) {
	gig, err := scanGig(r.db.QueryRowContext(ctx,
		`SELECT `+gigColumns+` FROM gigs WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find gig by ID: %w", err)
	}
	return gig, nil
}

// Create はギグを作成する。
func (r *PostgresGigRepo) Create(ctx context.Context, gig *model.Gig) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gigs (id, startup_id, title, description, skills, location, salary_min, salary_max, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		gig.ID, gig.StartupID, gig.Title, gig.Description,
		pq.Array(gig.Skills), gig.Location, gig.SalaryMin, gig.SalaryMax,
		gig.CreatedAt, gig.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gig: %w", err)
	}
	return nil
}

// Update はギグを更新する。
func (r *PostgresGigRepo) Update(ctx context.Context, gig *model.Gig) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE gigs
		 SET title = $2, description = $3, skills = $4, location = $5, salary_min = $6, salary_max = $7, updated_at = $8
		 WHERE id = $1`,
		gig.ID, gig.Title, gig.Description, pq.Array(gig.Skills),
		gig.Location, gig.SalaryMin, gig.SalaryMax, gig.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update gig: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("gig not found: %s", gig.ID)
	}
	return nil
}

// Delete は指定IDのギグを削除する。応募はCASCADE削除される。
func (r *PostgresGigRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gigs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gig: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("gig not found: %s", id)
	}
	return nil
}

// List はフィルタ・検索・ソート・ページネーション付きの一覧と総件数を返す。
func (r *PostgresGigRepo) List(ctx context.Context, filter GigFilter, params query.ListParams) ([]*model.Gig, int, error) {
	var conds []string
	var args []any

	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if len(filter.Skills) > 0 {
		args = append(args, pq.Array(filter.Skills))
		conds = append(conds, fmt.Sprintf("skills && $%d", len(args)))
	}
	if filter.MinSalary != nil {
		args = append(args, *filter.MinSalary)
		conds = append(conds, fmt.Sprintf("salary_max >= $%d", len(args)))
	}
	if filter.MaxSalary != nil {
		args = append(args, *filter.MaxSalary)
		conds = append(conds, fmt.Sprintf("salary_min <= $%d", len(args)))
	}
	if cond, searchArgs := query.SearchCondition(params.Search, gigSearchColumns, len(args)+1); cond != "" {
		args = append(args, searchArgs...)
		conds = append(conds, cond)
	}

	return r.list(ctx, conds, args, params)
}

// ListByStartup は指定スタートアップが所有するギグ一覧と総件数を返す。
func (r *PostgresGigRepo) ListByStartup(ctx context.Context, startupID string, params query.ListParams) ([]*model.Gig, int, error) {
	conds := []string{"startup_id = $1"}
	args := []any{startupID}

	if cond, searchArgs := query.SearchCondition(params.Search, gigSearchColumns, len(args)+1); cond != "" {
		args = append(args, searchArgs...)
		conds = append(conds, cond)
	}

	return r.list(ctx, conds, args, params)
}

func (r *PostgresGigRepo) list(ctx context.Context, conds []string, args []any, params query.ListParams) ([]*model.Gig, int, error) {
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gigs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count gigs: %w", err)
	}

	orderBy := query.SortClause(params.Sort, gigSortColumns, "created_at")
	sqlQuery := fmt.Sprintf(
		`SELECT %s FROM gigs%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		gigColumns, where, orderBy, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gigs: %w", err)
	}
	defer rows.Close()

	var gigs []*model.Gig
	for rows.Next() {
		gig, err := scanGig(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan gig: %w", err)
		}
		gigs = append(gigs, gig)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate gigs: %w", err)
	}

	return gigs, total, nil
}

// compile-time interface check
var _ GigRepository = (*PostgresGigRepo)(nil)
