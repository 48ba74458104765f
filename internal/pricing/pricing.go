// Package pricing はカート行から注文明細と合計を計算する。
// 副作用は持たない。
package pricing

import (
	"bakery/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 計算結果
// ItemsのOrderIDは未設定（保存時にsagaが入れる）。
type Quote struct {
	Total decimal.Decimal
	Items []model.OrderItem
}

// 明細1行の小計
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// total = Σ quantity × unitPrice
// 空のカートは合計0・明細0件（エラーではない）。
func Price(lines []model.CartLineView) Quote {
	q := Quote{
		Total: decimal.Zero,
		Items: make([]model.OrderItem, 0, len(lines)),
	}

	for _, l := range lines {
		q.Items = append(q.Items, model.OrderItem{
			ProductID:           l.ProductID,
			Quantity:            l.Quantity,
			UnitPriceAtPurchase: l.UnitPrice,
		})
		q.Total = q.Total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}

	return q
}
