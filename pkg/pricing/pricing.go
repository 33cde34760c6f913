// Package pricing computes the monetary figures stored on an order.
//
// All four figures are rounded to cents independently and the total is the
// sum of the already rounded parts. That can differ by a cent from rounding
// the unrounded sum; stored totals depend on it, so keep it that way.
package pricing

import (
	"github.com/example/storefront/pkg/apperr"
	"github.com/shopspring/decimal"
)

var (
	FreeShippingOver = decimal.NewFromInt(100)
	FlatShipping     = decimal.NewFromInt(10)
	TaxRate          = decimal.RequireFromString("0.15")
)

type LineItem struct {
	Price    decimal.Decimal
	Quantity int
}

// Prices holds the figures as strings with exactly two fraction digits.
type Prices struct {
	ItemsPrice    string `json:"itemsPrice" bson:"itemsPrice"`
	ShippingPrice string `json:"shippingPrice" bson:"shippingPrice"`
	TaxPrice      string `json:"taxPrice" bson:"taxPrice"`
	TotalPrice    string `json:"totalPrice" bson:"totalPrice"`
}

// Round2 rounds to cents, halves away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func Format(d decimal.Decimal) string {
	return Round2(d).StringFixed(2)
}

// Calculate prices a list of line items. An empty list is valid and only
// carries the flat shipping fee.
func Calculate(items []LineItem) (Prices, error) {
	sum := decimal.Zero
	for i, item := range items {
		if item.Price.IsNegative() {
			return Prices{}, apperr.Validation("item %d: price must not be negative", i)
		}
		if item.Quantity <= 0 {
			return Prices{}, apperr.Validation("item %d: quantity must be positive", i)
		}
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	itemsPrice := Round2(sum)

	shippingPrice := FlatShipping
	if itemsPrice.GreaterThan(FreeShippingOver) {
		shippingPrice = decimal.Zero
	}
	shippingPrice = Round2(shippingPrice)

	taxPrice := Round2(TaxRate.Mul(itemsPrice))

	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice)

	return Prices{
		ItemsPrice:    itemsPrice.StringFixed(2),
		ShippingPrice: shippingPrice.StringFixed(2),
		TaxPrice:      taxPrice.StringFixed(2),
		TotalPrice:    totalPrice.StringFixed(2),
	}, nil
}
