package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialConnectBackoff は接続リトライの初回遅延。
	initialConnectBackoff = 500 * time.Millisecond
	// maxConnectBackoff は接続リトライの最大遅延。
	maxConnectBackoff = 8 * time.Second
)

// CalculateBackoff は失敗回数に基づいて指数バックオフ遅延を計算する。
// 初回500ms、2倍ずつ増加、最大8秒。
func CalculateBackoff(failures int) time.Duration {
	delay := initialConnectBackoff
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > maxConnectBackoff {
			return maxConnectBackoff
		}
	}
	return delay
}

// ConnectWithRetry はデータベースが疎通するまで最大attempts回接続を試みる。
// コンテナ起動直後などDBの準備が遅れる場合に使用する。
func ConnectWithRetry(ctx context.Context, databaseURL string, attempts int, perAttempt time.Duration) (*sql.DB, error) {
	return connectWithRetry(ctx, attempts, CalculateBackoff, func(ctx context.Context) (*sql.DB, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		defer cancel()
		return Connect(attemptCtx, databaseURL)
	})
}

func connectWithRetry(
	ctx context.Context,
	attempts int,
	backoff func(int) time.Duration,
	connect func(ctx context.Context) (*sql.DB, error),
) (*sql.DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := connect(ctx)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}

		delay := backoff(i)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("database connection aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}
