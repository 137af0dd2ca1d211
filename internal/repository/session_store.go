package repository

import "context"

// セッションIDとカートIDの結びつけ。境界（handler）で1回だけ引く。
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (int64, error)
	Set(ctx context.Context, sessionID string, cartID int64) error
	Clear(ctx context.Context, sessionID string) error
}
