// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError はクライアントに返すエラーを表す。
// Messageは攻撃者に手がかりを与えない固定文言とする。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation    = "VALIDATION_FAILED"
	ErrCodeAccountExists = "ACCOUNT_EXISTS"
	ErrCodeAuthFailed    = "AUTH_FAILED"
	ErrCodeUserNotFound  = "USER_NOT_FOUND"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewMissingCredentialsError はemailまたはpasswordが未指定の場合のエラーを生成する。
func NewMissingCredentialsError() *APIError {
	return NewValidationError("Email and password are required")
}

// NewConflictError はemailが登録済みの場合のエラーを生成する。
// 存在以上の情報は含めない。
func NewConflictError() *APIError {
	return &APIError{
		Code:    ErrCodeAccountExists,
		Message: "User with this email already exists",
	}
}

// NewAuthError は認証失敗エラーを生成する。
// ログイン失敗とトークン検証失敗で同一の内容を返す。
func NewAuthError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthFailed,
		Message: "Invalid email or password",
	}
}

// NewUserNotFoundError は有効なトークンの主体が存在しない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Internal server error",
	}
}

// HasCode はerrがAPIErrorであり、指定コードを持つかを判定する。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
