package pricing

import (
	"fmt"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 商品IDから単価を引く
type UnitPriceFunc func(productID int64) (decimal.Decimal, bool)

// Totalは明細の合計金額（数量×単価の総和）。副作用なし。
// 単価の引けない商品が混ざっていたらデータ不整合なのでエラーを返す。
func Total(items []model.CartItem, unitPrice UnitPriceFunc) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, it := range items {
		price, ok := unitPrice(it.ProductID)
		if !ok {
			return decimal.Zero, fmt.Errorf("unit price not found for product %d", it.ProductID)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	return total, nil
}
