package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartRepository interface {
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	// トランザクション内で行ロックを取って取得する
	FindByIDForUpdate(ctx context.Context, cartID int64) (model.Cart, error)
	Create(ctx context.Context, now time.Time) (model.Cart, error)
	UpdateTotalPrice(ctx context.Context, cartID int64, total decimal.Decimal) error
	Touch(ctx context.Context, cartID int64, at time.Time) error
	// すでにABANDONEDでも何も起きない（冪等）
	MarkAbandoned(ctx context.Context, cartID int64) error
	// スイープのマークパス用。1回のUPDATEでまとめて遷移させる。
	// 抽出からUPDATEまでの間に触られたカートを巻き込まないよう、
	// UPDATE側でもcutoffの述語を掛け直す
	MarkAllAbandoned(ctx context.Context, cartIDs []int64, cutoff time.Time) (int64, error)
	// ABANDONEDのときだけ削除（明細も道連れ）。それ以外は何もしない
	DeleteIfAbandoned(ctx context.Context, cartID int64) (bool, error)
	Delete(ctx context.Context, cartID int64) error
	ListInactiveActive(ctx context.Context, cutoff time.Time) ([]model.Cart, error)
	ListExpiredAbandoned(ctx context.Context, cutoff time.Time) ([]model.Cart, error)
}
