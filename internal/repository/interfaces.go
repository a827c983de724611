// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/pwauth/internal/model"
)

// ErrDuplicateEmail は同じemailのユーザーが既に存在する場合にCreateが返すエラー。
// 永続化層の一意制約違反を表し、その他の失敗とは区別する。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
// トークンについては関知しない。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDを返す。
	// emailが既に存在する場合はErrDuplicateEmailを返す。
	// 一意性の確認と挿入はアトミックに行われる。
	Create(ctx context.Context, email, passwordDigest string) (int64, error)

	// FindByEmail はemailの完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Pinger は永続化層の疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}
