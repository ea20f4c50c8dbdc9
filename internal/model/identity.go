// Package model はドメインモデルを定義する。
package model

import "time"

// Role は利用者の役割を表す。
type Role string

const (
	// RoleWorker は求職者（ワーカー）を示す。
	RoleWorker Role = "worker"
	// RoleStartup は求人を出すスタートアップを示す。
	RoleStartup Role = "startup"
	// RoleManufacturer は機材を貸し出すメーカーを示す。
	RoleManufacturer Role = "manufacturer"
)

// IsValid はRoleが既知の3種のいずれかであるかを返す。
func (r Role) IsValid() bool {
	switch r {
	case RoleWorker, RoleStartup, RoleManufacturer:
		return true
	}
	return false
}

// Worker はワーカーのプロフィールを表す。
// PasswordHashはAPIレスポンスには含めない（Sanitize参照）。
type Worker struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Location     string
	Skills       []string
	Experience   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Startup はスタートアップのプロフィールを表す。
type Startup struct {
	ID           string
	CompanyName  string
	Email        string
	PasswordHash string
	Phone        string
	Location     string
	Sector       string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Manufacturer はメーカーのプロフィールを表す。
type Manufacturer struct {
	ID           string
	CompanyName  string
	Email        string
	PasswordHash string
	Phone        string
	Location     string
	Sector       string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
