// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/worklink/internal/model"
	"github.com/hitoshi/worklink/internal/query"
)

// ErrDuplicate はユニーク制約違反を表す。
// チェック後INSERTのレースはDBの制約で防ぎ、このエラーに正規化する。
var ErrDuplicate = errors.New("duplicate record")

// WorkerRepository はワーカーデータの永続化インターフェース。
type WorkerRepository interface {
	// FindByID は指定IDのワーカーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Worker, error)

	// FindByEmail はメールアドレスでワーカーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Worker, error)

	// Create はワーカーを作成する。メール重複時はErrDuplicateを返す。
	Create(ctx context.Context, worker *model.Worker) error

	// Update はプロフィールを更新する。
	Update(ctx context.Context, worker *model.Worker) error
}

// StartupRepository はスタートアップデータの永続化インターフェース。
type StartupRepository interface {
	// FindByID は指定IDのスタートアップを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Startup, error)

	// FindByEmail はメールアドレスでスタートアップを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Startup, error)

	// Create はスタートアップを作成する。メール重複時はErrDuplicateを返す。
	Create(ctx context.Context, startup *model.Startup) error

	// Update はプロフィールを更新する。
	Update(ctx context.Context, startup *model.Startup) error
}

// ManufacturerRepository はメーカーデータの永続化インターフェース。
type ManufacturerRepository interface {
	// FindByID は指定IDのメーカーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Manufacturer, error)

	// FindByEmail はメールアドレスでメーカーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Manufacturer, error)

	// Create はメーカーを作成する。メール重複時はErrDuplicateを返す。
	Create(ctx context.Context, manufacturer *model.Manufacturer) error

	// Update はプロフィールを更新する。
	Update(ctx context.Context, manufacturer *model.Manufacturer) error
}

// GigFilter はギグ一覧のリソース固有フィルタ。
type GigFilter struct {
	Skills    []string
	Location  string
	MinSalary *int
	MaxSalary *int
}

// MachineFilter は機材一覧のリソース固有フィルタ。
type MachineFilter struct {
	Type      string
	Location  string
	Available *bool
}

// GigRepository はギグデータの永続化インターフェース。
type GigRepository interface {
	// FindByID は指定IDのギグを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Gig, error)

	// Create はギグを作成する。
	Create(ctx context.Context, gig *model.Gig) error

	// Update はギグを更新する。
	Update(ctx context.Context, gig *model.Gig) error

	// Delete は指定IDのギグを削除する。応募はCASCADE削除される。
	Delete(ctx context.Context, id string) error

	// List はフィルタ・検索・ソート・ページネーション付きの一覧と総件数を返す。
	List(ctx context.Context, filter GigFilter, params query.ListParams) ([]*model.Gig, int, error)

	// ListByStartup は指定スタートアップが所有するギグ一覧と総件数を返す。
	ListByStartup(ctx context.Context, startupID string, params query.ListParams) ([]*model.Gig, int, error)
}

// MachineRepository は機材データの永続化インターフェース。
type MachineRepository interface {
	// FindByID は指定IDの機材を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Machine, error)

	// Create は機材を作成する。
	Create(ctx context.Context, machine *model.Machine) error

	// Update は機材を更新する。
	Update(ctx context.Context, machine *model.Machine) error

	// Delete は指定IDの機材を削除する。申請はCASCADE削除される。
	Delete(ctx context.Context, id string) error

	// List はフィルタ・検索・ソート・ページネーション付きの一覧と総件数を返す。
	List(ctx context.Context, filter MachineFilter, params query.ListParams) ([]*model.Machine, int, error)

	// ListByManufacturer は指定メーカーが所有する機材一覧と総件数を返す。
	ListByManufacturer(ctx context.Context, manufacturerID string, params query.ListParams) ([]*model.Machine, int, error)
}

// GigApplicationRepository はギグ応募データの永続化インターフェース。
type GigApplicationRepository interface {
	// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.GigApplication, error)

	// FindByGigAndWorker はギグIDとワーカーIDで応募を検索する。見つからない場合はnilを返す。
	FindByGigAndWorker(ctx context.Context, gigID, workerID string) (*model.GigApplication, error)

	// Create は応募を作成する。(gig_id, worker_id)の重複時はErrDuplicateを返す。
	Create(ctx context.Context, app *model.GigApplication) error

	// DecideFromPending はステータスをpendingからのみ遷移させる。
	// 1回のUPDATEで現在ステータスの確認と更新を原子的に行い、
	// 遷移できた場合にtrueを返す。
	DecideFromPending(ctx context.Context, id string, status model.ApplicationStatus) (bool, error)

	// ListByGig は指定ギグへの応募一覧を返す。
	ListByGig(ctx context.Context, gigID string) ([]*model.GigApplication, error)

	// ListByWorker はワーカーの応募一覧をギグ情報付きで返す。
	ListByWorker(ctx context.Context, workerID string, params query.ListParams) ([]model.GigApplicationWithGig, int, error)
}

// MachineApplicationRepository は機材申請データの永続化インターフェース。
type MachineApplicationRepository interface {
	// FindByID は指定IDの申請を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.MachineApplication, error)

	// FindByMachineAndWorker は機材IDとワーカーIDで申請を検索する。見つからない場合はnilを返す。
	FindByMachineAndWorker(ctx context.Context, machineID, workerID string) (*model.MachineApplication, error)

	// Create は申請を作成する。(machine_id, worker_id)の重複時はErrDuplicateを返す。
	Create(ctx context.Context, app *model.MachineApplication) error

	// DecideFromPending はステータスをpendingからのみ遷移させる。
	// 遷移できた場合にtrueを返す。
	DecideFromPending(ctx context.Context, id string, status model.ApplicationStatus) (bool, error)

	// ListByMachine は指定機材への申請一覧を返す。
	ListByMachine(ctx context.Context, machineID string) ([]*model.MachineApplication, error)

	// ListByWorker はワーカーの申請一覧を機材情報付きで返す。
	ListByWorker(ctx context.Context, workerID string, params query.ListParams) ([]model.MachineApplicationWithMachine, int, error)
}
