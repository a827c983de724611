// Package password はパスワードの一方向変換（bcrypt）を提供する。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes はbcryptが受け付ける入力の最大バイト数。
const maxPasswordBytes = 72

var (
	// ErrEmpty は空のパスワードをハッシュしようとした場合に返される。
	ErrEmpty = errors.New("password cannot be empty")
	// ErrTooLong はbcryptの入力上限を超えるパスワードの場合に返される。
	ErrTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher はbcryptによるパスワードのハッシュ化と検証を行う。
// 設定後はイミュータブルで、並行利用できる。
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher は指定コストのHasherを生成する。
// costがbcryptの許容範囲外の場合はエラーを返す。
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// 存在しないユーザーのログインでも同じコストの比較を行うためのダミーダイジェスト
	dummy, err := bcrypt.GenerateFromPassword([]byte("pwauth-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Cost は設定されたbcryptコストを返す。
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash は平文パスワードからソルト付きダイジェストを生成する。
// 同じ平文でも呼び出しごとに異なるダイジェストになる。
func (h *Hasher) Hash(plaintext string) (string, error) {
	if err := Validate(plaintext); err != nil {
		return "", err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文がダイジェストと一致するかを判定する。
// ダイジェストが不正な形式の場合はfalseを返す。
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyDummy はダミーダイジェストとの比較を行い、常にfalseを返す。
// ユーザー不在時の応答時間をパスワード不一致時と揃えるために使う。
func (h *Hasher) VerifyDummy(plaintext string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
	return false
}

// Validate はパスワードがハッシュ可能かを検証する。
func Validate(plaintext string) error {
	if plaintext == "" {
		return ErrEmpty
	}
	if len(plaintext) > maxPasswordBytes {
		return ErrTooLong
	}
	return nil
}
