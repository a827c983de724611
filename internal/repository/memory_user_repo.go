package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/pwauth/internal/model"
)

// MemoryUserRepo はプロセス内メモリを使用したユーザーリポジトリ。
// テストおよびローカル実行用。プロセス終了でデータは失われる。
type MemoryUserRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*model.User
	byEmail map[string]int64
	now     func() time.Time
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[int64]*model.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

// Create はユーザーを作成し、採番されたIDを返す。
// 一意性の確認と挿入は同一ロック内で行う。
func (r *MemoryUserRepo) Create(_ context.Context, email, passwordDigest string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return 0, ErrDuplicateEmail
	}

	r.nextID++
	user := &model.User{
		ID:             r.nextID,
		Email:          email,
		PasswordDigest: passwordDigest,
		CreatedAt:      r.now(),
	}
	r.byID[user.ID] = user
	r.byEmail[email] = user.ID

	return user.ID, nil
}

// FindByEmail はemailの完全一致でユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := *r.byID[id]
	return &u, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

// PingContext は常に成功する。
func (r *MemoryUserRepo) PingContext(_ context.Context) error {
	return nil
}

// compile-time interface check
var (
	_ UserRepository = (*MemoryUserRepo)(nil)
	_ Pinger         = (*MemoryUserRepo)(nil)
)
