package model

import "time"

// ApplicationStatus は応募のステータスを表す。
// pendingが初期状態で、approvedとrejectedは終端状態。
// 終端状態からの遷移は許可されない。
type ApplicationStatus string

const (
	// StatusPending は審査待ちを示す。
	StatusPending ApplicationStatus = "pending"
	// StatusApproved は承認済みを示す。
	StatusApproved ApplicationStatus = "approved"
	// StatusRejected は却下済みを示す。
	StatusRejected ApplicationStatus = "rejected"
)

// IsDecision はステータスが終端状態（approved/rejected）であるかを返す。
func (s ApplicationStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// GigApplication はワーカーからギグへの応募を表す。
// (GigID, WorkerID)の組はDBのユニーク制約で一意に保たれる。
type GigApplication struct {
	ID        string
	GigID     string
	WorkerID  string
	Message   string
	Status    ApplicationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MachineApplication はワーカーから機材への利用申請を表す。
// (MachineID, WorkerID)の組はDBのユニーク制約で一意に保たれる。
type MachineApplication struct {
	ID        string
	MachineID string
	WorkerID  string
	Message   string
	Status    ApplicationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GigApplicationWithGig は応募とギグ情報を結合した構造体。
// ワーカーの応募一覧表示で使用する。
type GigApplicationWithGig struct {
	GigApplication
	GigTitle    string
	GigLocation string
	StartupID   string
}

// MachineApplicationWithMachine は申請と機材情報を結合した構造体。
type MachineApplicationWithMachine struct {
	MachineApplication
	MachineName     string
	MachineType     string
	MachineLocation string
	ManufacturerID  string
}
