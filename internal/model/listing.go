package model

import "time"

// Gig はスタートアップが掲載する求人（ギグ）を表す。
// StartupIDの所有者のみが更新・削除できる。
type Gig struct {
	ID          string
	StartupID   string
	Title       string
	Description string
	Skills      []string
	Location    string
	SalaryMin   int
	SalaryMax   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Machine はメーカーが掲載する機材リスティングを表す。
// ManufacturerIDの所有者のみが更新・削除できる。
// Availableがfalseの機材には応募できない。
type Machine struct {
	ID             string
	ManufacturerID string
	Name           string
	Type           string
	Description    string
	Location       string
	DailyRate      int
	Available      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
