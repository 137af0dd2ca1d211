package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// カートを取得
func (r *CartGormRepository) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where("id = ?", cartID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カートを行ロック付きで取得。トランザクション内で使う前提。
// カート配下の変更はこのロックで直列化される
func (r *CartGormRepository) FindByIDForUpdate(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", cartID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 空のACTIVEカートを作成
func (r *CartGormRepository) Create(ctx context.Context, now time.Time) (model.Cart, error) {
	cart := model.Cart{
		Status:            model.CartStatusActive,
		LastInteractionAt: now,
		TotalPrice:        decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// carts.total_priceを更新
func (r *CartGormRepository) UpdateTotalPrice(ctx context.Context, cartID int64, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("total_price", total)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// carts.last_interaction_atを更新
func (r *CartGormRepository) Touch(ctx context.Context, cartID int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("last_interaction_at", at)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ABANDONEDへ遷移。すでにABANDONEDでも結果は変わらない
func (r *CartGormRepository) MarkAbandoned(ctx context.Context, cartID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", model.CartStatusAbandoned)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// スイープのマークパス。ACTIVEのものだけまとめてABANDONEDへ。
// 抽出後に触られたカートはlast_interaction_atの掛け直しで除外される
func (r *CartGormRepository) MarkAllAbandoned(ctx context.Context, cartIDs []int64, cutoff time.Time) (int64, error) {
	if len(cartIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id IN ? AND status = ? AND last_interaction_at < ?", cartIDs, model.CartStatusActive, cutoff).
		Update("status", model.CartStatusAbandoned)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ABANDONEDのときだけカートを削除（明細も道連れ）。それ以外は何もしない
func (r *CartGormRepository) DeleteIfAbandoned(ctx context.Context, cartID int64) (bool, error) {
	deleted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart

		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", cartID, model.CartStatusAbandoned).
			First(&cart).Error

		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if findErr != nil {
			return findErr
		}

		//cart_itemsを先に消す
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", cartID).Delete(&model.Cart{}).Error; err != nil {
			return err
		}

		deleted = true
		return nil
	})

	if err != nil {
		return false, err
	}
	return deleted, nil
}

// カートを削除（空になったカートの即時削除用）
func (r *CartGormRepository) Delete(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", cartID).Delete(&model.Cart{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// 放置されたACTIVEカートを抽出
func (r *CartGormRepository) ListInactiveActive(ctx context.Context, cutoff time.Time) ([]model.Cart, error) {
	var carts []model.Cart

	if err := r.db.WithContext(ctx).
		Where("status = ? AND last_interaction_at < ?", model.CartStatusActive, cutoff).
		Order("id asc").
		Find(&carts).Error; err != nil {
		return []model.Cart{}, err
	}

	return carts, nil
}

// 保持期限の切れたABANDONEDカートを抽出
func (r *CartGormRepository) ListExpiredAbandoned(ctx context.Context, cutoff time.Time) ([]model.Cart, error) {
	var carts []model.Cart

	if err := r.db.WithContext(ctx).
		Where("status = ? AND last_interaction_at < ?", model.CartStatusAbandoned, cutoff).
		Order("id asc").
		Find(&carts).Error; err != nil {
		return []model.Cart{}, err
	}

	return carts, nil
}
