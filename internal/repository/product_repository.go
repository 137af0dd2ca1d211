package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// カタログの読み取り口。このサービスは商品を書き換えない。
type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
}
