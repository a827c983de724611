// Package model はドメインモデルを定義する。
package model

import "time"

// User は登録済みユーザーを表す。
// PasswordDigestは平文パスワードではなく、一方向変換後の文字列を保持する。
type User struct {
	ID             int64
	Email          string
	PasswordDigest string
	CreatedAt      time.Time
}

// PublicUser はAPIレスポンスで公開してよいユーザー情報。
// password_digestは含めない。
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Public はユーザーの公開プロジェクションを返す。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Email: u.Email,
	}
}
