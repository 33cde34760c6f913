// Package cart holds a shopper's pending order between requests.
package cart

import (
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/pricing"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPaymentMethod = "PayPal"

type Item struct {
	Product      primitive.ObjectID `json:"product"`
	Name         string             `json:"name"`
	Image        string             `json:"image"`
	Price        float64            `json:"price"`
	CountInStock int                `json:"countInStock"`
	Qty          int                `json:"qty"`
}

type Cart struct {
	Items           []Item                  `json:"cartItems"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   string                  `json:"paymentMethod"`
	pricing.Prices
}

func New() *Cart {
	c := &Cart{Items: []Item{}, PaymentMethod: DefaultPaymentMethod}
	_ = c.recalculate()
	return c
}

// AddItem puts item in the cart, replacing any line for the same product.
func (c *Cart) AddItem(item Item) error {
	replaced := false
	for i := range c.Items {
		if c.Items[i].Product == item.Product {
			c.Items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		c.Items = append(c.Items, item)
	}
	return c.recalculate()
}

func (c *Cart) RemoveItem(productID primitive.ObjectID) error {
	items := c.Items[:0]
	for _, it := range c.Items {
		if it.Product != productID {
			items = append(items, it)
		}
	}
	c.Items = items
	return c.recalculate()
}

func (c *Cart) ClearItems() error {
	c.Items = []Item{}
	return c.recalculate()
}

func (c *Cart) SetShippingAddress(addr models.ShippingAddress) {
	c.ShippingAddress = &addr
}

func (c *Cart) SetPaymentMethod(method string) {
	c.PaymentMethod = method
}

// LineItems converts the cart lines for the price calculator.
func (c *Cart) LineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, pricing.LineItem{
			Price:    decimal.NewFromFloat(it.Price),
			Quantity: it.Qty,
		})
	}
	return items
}

func (c *Cart) recalculate() error {
	prices, err := pricing.Calculate(c.LineItems())
	if err != nil {
		return err
	}
	c.Prices = prices
	return nil
}
