// Package auth はサインアップ、ログイン、トークンによる本人確認のフローを提供する。
// リクエストごとに独立しており、永続化層以外の共有状態を持たない。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/pwauth/internal/metrics"
	"github.com/hitoshi/pwauth/internal/model"
	"github.com/hitoshi/pwauth/internal/password"
	"github.com/hitoshi/pwauth/internal/repository"
	"github.com/hitoshi/pwauth/internal/token"
)

// maxEmailBytes はusers.emailカラム(VARCHAR(120))の上限。
const maxEmailBytes = 120

// PasswordHasher はパスワードの一方向変換のインターフェース。
type PasswordHasher interface {
	// Hash は平文からソルト付きダイジェストを生成する。
	Hash(plaintext string) (string, error)
	// Verify は平文がダイジェストと一致するかを判定する。不正なダイジェストはfalse。
	Verify(plaintext, digest string) bool
	// VerifyDummy はユーザー不在時に同等のコストで比較を行い、常にfalseを返す。
	VerifyDummy(plaintext string) bool
}

// TokenCodec はセッショントークンの発行と検証のインターフェース。
type TokenCodec interface {
	Issue(subject int64) (string, token.Claims, error)
	Parse(tokenString string) (token.Claims, error)
}

// LoginResult はログイン成功時に返される情報。
type LoginResult struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	tokens  TokenCodec
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenCodec,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: collector,
	}
}

// Signup はユーザーを登録し、採番されたIDを返す。
// emailが登録済みの場合は、並行登録に負けた場合も含めConflictErrorを返す。
func (s *Service) Signup(ctx context.Context, email, plaintext string) (int64, error) {
	if email == "" || plaintext == "" {
		s.metrics.RecordSignup(metrics.OutcomeValidationError)
		return 0, model.NewMissingCredentialsError()
	}
	if len(email) > maxEmailBytes {
		s.metrics.RecordSignup(metrics.OutcomeValidationError)
		return 0, model.NewValidationError("Email must be at most 120 bytes")
	}
	if err := password.Validate(plaintext); errors.Is(err, password.ErrTooLong) {
		s.metrics.RecordSignup(metrics.OutcomeValidationError)
		return 0, model.NewValidationError("Password must be at most 72 bytes")
	}

	// 1. 既存ユーザーの確認
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordSignup(metrics.OutcomeError)
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		s.metrics.RecordSignup(metrics.OutcomeConflict)
		return 0, model.NewConflictError()
	}

	// 2. パスワードのハッシュ化
	start := time.Now()
	digest, err := s.hasher.Hash(plaintext)
	s.metrics.RecordHashLatency(time.Since(start))
	if err != nil {
		s.metrics.RecordSignup(metrics.OutcomeError)
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. 作成（一意制約が並行登録を排他する）
	id, err := s.users.Create(ctx, email, digest)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.metrics.RecordSignup(metrics.OutcomeConflict)
		return 0, model.NewConflictError()
	}
	if err != nil {
		s.metrics.RecordSignup(metrics.OutcomeError)
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordSignup(metrics.OutcomeSuccess)
	slog.Info("user signed up", slog.Int64("user_id", id))
	return id, nil
}

// Login は資格情報を検証し、署名付きトークンを発行する。
// email不在とパスワード不一致は同一のAuthErrorを返す。
func (s *Service) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if email == "" || plaintext == "" {
		s.metrics.RecordLogin(metrics.OutcomeValidationError)
		return nil, model.NewMissingCredentialsError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		s.hasher.VerifyDummy(plaintext)
		s.metrics.RecordLogin(metrics.OutcomeInvalidCredentials)
		slog.Info("login rejected", slog.String("reason", "unknown_email"))
		return nil, model.NewAuthError()
	}

	if !s.hasher.Verify(plaintext, user.PasswordDigest) {
		s.metrics.RecordLogin(metrics.OutcomeInvalidCredentials)
		slog.Info("login rejected",
			slog.String("reason", "password_mismatch"),
			slog.Int64("user_id", user.ID),
		)
		return nil, model.NewAuthError()
	}

	signed, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return &LoginResult{
		Token:     signed,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Authenticate はトークンを検証し、主体のユーザーIDを返す。
// 署名不正・期限切れ・形式不正はいずれも同一のAuthErrorを返す。
func (s *Service) Authenticate(tokenString string) (int64, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		s.metrics.RecordTokenVerification(metrics.OutcomeInvalidToken)
		return 0, model.NewAuthError()
	}

	s.metrics.RecordTokenVerification(metrics.OutcomeSuccess)
	return claims.Subject, nil
}

// Profile は認証済みユーザーの公開情報を返す。
// ユーザーが既に存在しない場合はNotFoundErrorを返す。
func (s *Service) Profile(ctx context.Context, userID int64) (*model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	public := user.Public()
	return &public, nil
}
