// Package token はステートレスな署名付きセッショントークン（HS256 JWT）の発行と検証を提供する。
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength はHS256署名鍵の最小バイト数。
const MinSecretLength = 32

// ErrInvalid はトークンが検証できない場合に返される。
// 改ざん・切り詰め・期限切れ・アルゴリズム不一致を区別しない。
var ErrInvalid = errors.New("invalid token")

// Config はCodecの設定。
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now は現在時刻を返す。nilの場合はtime.Nowを使用する。
	Now func() time.Time
}

// Claims はトークンに埋め込まれる主張。
type Claims struct {
	Subject   int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Codec はトークンの署名と検証を行う。
// 状態を持たず、並行利用できる。
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewCodec はCodecを生成する。
// 秘密鍵が短すぎる場合やTTLが正でない場合はエラーを返す。
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", cfg.TTL)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		secret: secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    now,
	}, nil
}

// TTL はトークンの有効期間を返す。
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue は指定ユーザーIDを主体とする署名付きトークンを発行する。
func (c *Codec) Issue(subject int64) (string, Claims, error) {
	if subject <= 0 {
		return "", Claims{}, fmt.Errorf("invalid subject: %d", subject)
	}

	issuedAt := c.now().Truncate(time.Second)
	claims := Claims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(c.ttl),
		ID:        uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(claims.Subject, 10),
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		NotBefore: jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		ID:        claims.ID,
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse はトークンの署名・アルゴリズム・発行者・有効期限を検証し、主張を返す。
// いずれの失敗もErrInvalidとして返す。
func (c *Codec) Parse(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	registered := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tokenString, registered, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !t.Valid {
		return Claims{}, ErrInvalid
	}

	subject, err := strconv.ParseInt(registered.Subject, 10, 64)
	if err != nil || subject <= 0 {
		return Claims{}, ErrInvalid
	}

	claims := Claims{
		Subject: subject,
		ID:      registered.ID,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
