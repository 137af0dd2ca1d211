package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/domain/pricing"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// CartUsecase は /cart の業務ロジックです。
// カートIDはhandlerがセッションから解決して渡してくる（ここではセッションを知らない）。
// 明細の変更・last_interaction_atのtouch・合計再計算は必ず1トランザクションで行う。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	clock        Clock
	logger       *zap.Logger
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	clock Clock,
	logger *zap.Logger,
) *CartUsecase {
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		clock:        clock,
		logger:       logger,
	}
}

type CartItemResponse struct {
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CartResponse struct {
	ID         int64              `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

type CreateCartInput struct {
	ProductID int64
	Quantity  int64
}

type AddItemInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得。無ければ404（勝手に作らない）。
func (u *CartUsecase) GetCart(ctx context.Context, cartID int64) (CartResponse, error) {
	if cartID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, u.productRepo, cart, items)
}

// CreateCart は最初の商品追加（カートが無ければ作る）。
// カート作成と明細作成は同一トランザクション：どちらも残るか、どちらも残らないか。
func (u *CartUsecase) CreateCart(ctx context.Context, cartID int64, in CreateCartInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()

		cart, err := u.resolveOrCreateCart(ctx, r, cartID, now)
		if err != nil {
			return err
		}

		// 商品チェック（公開のみ）
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusBadRequest, "product not found")
		}

		// 二重追加チェック
		_, err = r.CartItems().FindByCartAndProduct(ctx, cart.ID, in.ProductID)
		if err == nil {
			return NewHTTPError(http.StatusConflict, "product already in cart")
		}
		if err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 明細作成。同時リクエストがチェックをすり抜けてもユニーク制約が拒否する
		if _, err := r.CartItems().Create(ctx, cart.ID, in.ProductID, in.Quantity, now); err != nil {
			if err == repo.ErrDuplicate {
				return NewHTTPError(http.StatusConflict, "product already in cart")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return u.commitCartMutation(ctx, r, cart, now, &out)
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// AddItem は既存明細の数量加算。明細が無い商品は対象外（新規追加はCreateCart）。
func (u *CartUsecase) AddItem(ctx context.Context, cartID int64, in AddItemInput) (CartResponse, error) {
	if in.Quantity <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnprocessableEntity, "quantity must be positive")
	}
	if cartID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()

		cart, err := r.Carts().FindByIDForUpdate(ctx, cartID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		item, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found in cart")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.CartItems().IncrementQuantity(ctx, item.ID, in.Quantity); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "product not found in cart")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return u.commitCartMutation(ctx, r, cart, now, &out)
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// RemoveItem は明細削除。最後の1件を消したらカートごと削除してremoved=trueを返す。
func (u *CartUsecase) RemoveItem(ctx context.Context, cartID int64, productID int64) (CartResponse, bool, error) {
	if cartID <= 0 {
		return CartResponse{}, false, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	var out CartResponse
	removed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()

		cart, err := r.Carts().FindByIDForUpdate(ctx, cartID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		item, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found in cart")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		count, err := r.CartItems().CountByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 空になったらカートごと消す
		if count == 0 {
			if err := r.Carts().Delete(ctx, cart.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			removed = true
			return nil
		}

		return u.commitCartMutation(ctx, r, cart, now, &out)
	})

	if err != nil {
		return CartResponse{}, false, err
	}
	return out, removed, nil
}

// セッションの指すカートを引く。消えていた/無かったら新規作成
func (u *CartUsecase) resolveOrCreateCart(ctx context.Context, r repo.TxRepos, cartID int64, now time.Time) (model.Cart, error) {
	if cartID > 0 {
		cart, err := r.Carts().FindByIDForUpdate(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if err != repo.ErrNotFound {
			return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	cart, err := r.Carts().Create(ctx, now)
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, nil
}

// 明細の変更と同じトランザクションで行うtouch＋合計再計算。
// ここを通らずに明細を書き換える経路を作らないこと。
func (u *CartUsecase) commitCartMutation(ctx context.Context, r repo.TxRepos, cart model.Cart, now time.Time, out *CartResponse) error {
	if err := r.Carts().Touch(ctx, cart.ID, now); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp, total, err := u.aggregate(ctx, r.Products(), cart.ID, items)
	if err != nil {
		return err
	}

	if err := r.Carts().UpdateTotalPrice(ctx, cart.ID, total); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	*out = resp
	return nil
}

// cartの明細をまとめてCartResponseを作る（読み取り専用パス用）。
func (u *CartUsecase) buildCartResponse(ctx context.Context, products repo.ProductRepository, cart model.Cart, items []model.CartItem) (CartResponse, error) {
	resp, _, err := u.aggregate(ctx, products, cart.ID, items)
	if err != nil {
		return CartResponse{}, err
	}
	return resp, nil
}

// 明細と単価からレスポンスと合計を組み立てる。
// 単価の引けない明細はカタログの参照整合性が壊れている。利用者起因ではないので詳細は返さない
func (u *CartUsecase) aggregate(ctx context.Context, products repo.ProductRepository, cartID int64, items []model.CartItem) (CartResponse, decimal.Decimal, error) {
	catalog := make(map[int64]model.Product, len(items))

	for _, it := range items {
		p, err := products.FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			u.logger.Error("cart item references missing product",
				zap.Int64("cart_id", cartID),
				zap.Int64("product_id", it.ProductID))
			return CartResponse{}, decimal.Zero, NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if err != nil {
			return CartResponse{}, decimal.Zero, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		catalog[it.ProductID] = p
	}

	total, err := pricing.Total(items, func(productID int64) (decimal.Decimal, bool) {
		p, ok := catalog[productID]
		return p.Price, ok
	})
	if err != nil {
		u.logger.Error("total price aggregation failed",
			zap.Int64("cart_id", cartID),
			zap.Error(err))
		return CartResponse{}, decimal.Zero, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		p := catalog[it.ProductID]
		respItems = append(respItems, CartItemResponse{
			ProductID:  it.ProductID,
			Name:       p.Name,
			Quantity:   it.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: p.Price.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}

	return CartResponse{ID: cartID, Items: respItems, TotalPrice: total}, total, nil
}
