package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "ACTIVE"
	CartStatusAbandoned CartStatus = "ABANDONED"
)

// 1セッションにつきカートは1つ。明細はカート削除で道連れ。
// total_priceは非正規化。明細の変更と同じトランザクションで必ず再計算する。
type Cart struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Status            CartStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	LastInteractionAt time.Time       `gorm:"not null;index" json:"last_interaction_at"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	Items             []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
