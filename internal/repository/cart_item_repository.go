package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
)

var ErrDuplicate = errors.New("duplicate")

type CartItemRepository interface {
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	CountByCartID(ctx context.Context, cartID int64) (int64, error)
	// 同じ(cart_id, product_id)がすでにあればErrDuplicate。加算はしない。
	// nowは呼び出し側のclock由来。同一トランザクション内のcartのtouchと時刻を揃える
	Create(ctx context.Context, cartID int64, productID int64, quantity int64, now time.Time) (model.CartItem, error)
	// 加算後の数量が0以下になる場合は失敗
	IncrementQuantity(ctx context.Context, cartItemID int64, delta int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
}
