package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// エラーコードはHTTPステータスへのマッピングに使用される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, resource, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeNotResourceOwner     = "NOT_RESOURCE_OWNER"
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodeGigNotFound          = "GIG_NOT_FOUND"
	ErrCodeMachineNotFound      = "MACHINE_NOT_FOUND"
	ErrCodeApplicationNotFound  = "APPLICATION_NOT_FOUND"
	ErrCodeProfileNotFound      = "PROFILE_NOT_FOUND"
	ErrCodeDuplicateApplication = "DUPLICATE_APPLICATION"
	ErrCodeMachineUnavailable   = "MACHINE_UNAVAILABLE"
	ErrCodeApplicationDecided   = "APPLICATION_ALREADY_DECIDED"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
)

// NewAuthenticationError は認証エラーを生成する。
// トークン欠落・失効・ロール不一致のいずれもこのエラーで表す。
func NewAuthenticationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  message,
		Category: "auth",
	}
}

// NewAuthorizationError はリソース所有者不一致のエラーを生成する。
// ロールは正しいが対象リソースの所有者ではない場合に使用する。
func NewAuthorizationError(resource string) *APIError {
	return &APIError{
		Code:     ErrCodeNotResourceOwner,
		Message:  fmt.Sprintf("You do not own this %s", resource),
		Category: "auth",
	}
}

// NewEmailTakenError はメールアドレス重複のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "An account with this email already exists",
		Category: "conflict",
	}
}

// NewGigNotFoundError はギグ未検出エラーを生成する。
func NewGigNotFoundError(gigID string) *APIError {
	return &APIError{
		Code:     ErrCodeGigNotFound,
		Message:  fmt.Sprintf("Gig not found: %s", gigID),
		Category: "resource",
	}
}

// NewMachineNotFoundError は機材未検出エラーを生成する。
func NewMachineNotFoundError(machineID string) *APIError {
	return &APIError{
		Code:     ErrCodeMachineNotFound,
		Message:  fmt.Sprintf("Machine not found: %s", machineID),
		Category: "resource",
	}
}

// NewApplicationNotFoundError は応募未検出エラーを生成する。
func NewApplicationNotFoundError(applicationID string) *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  fmt.Sprintf("Application not found: %s", applicationID),
		Category: "resource",
	}
}

// NewProfileNotFoundError はプロフィール未検出エラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "Profile not found",
		Category: "resource",
	}
}

// NewDuplicateApplicationError は重複応募エラーを生成する。
func NewDuplicateApplicationError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateApplication,
		Message:  "You have already applied to this listing",
		Category: "conflict",
	}
}

// NewMachineUnavailableError は利用不可の機材への申請エラーを生成する。
func NewMachineUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeMachineUnavailable,
		Message:  "This machine is not available",
		Category: "conflict",
	}
}

// NewApplicationDecidedError は既に終端状態の応募への再遷移エラーを生成する。
func NewApplicationDecidedError(status ApplicationStatus) *APIError {
	return &APIError{
		Code:     ErrCodeApplicationDecided,
		Message:  fmt.Sprintf("Application has already been %s", status),
		Category: "conflict",
	}
}

// NewInvalidRequestError はリクエスト解析エラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
	}
}
