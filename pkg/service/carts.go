package service

import (
	"context"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/models"
)

type CartItemInput struct {
	Product string `json:"product" binding:"required,objectid"`
	Qty     int    `json:"qty" binding:"required,min=1"`
}

type PaymentMethodInput struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// CartService edits the saved cart of a signed-in user.
type CartService struct {
	store    cart.Store
	products ProductLookup
}

func NewCartService(store cart.Store, products ProductLookup) *CartService {
	return &CartService{store: store, products: products}
}

func (s *CartService) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	return s.store.Load(ctx, userID)
}

// AddItem sets the quantity of a product in the cart from the current
// catalog entry.
func (s *CartService) AddItem(ctx context.Context, userID string, in CartItemInput) (*cart.Cart, error) {
	product, err := s.products.GetProduct(ctx, in.Product)
	if err != nil {
		return nil, err
	}
	if in.Qty > product.CountInStock {
		return nil, apperr.Validation("Only %d of %s in stock", product.CountInStock, product.Name)
	}

	return s.update(ctx, userID, func(c *cart.Cart) error {
		return c.AddItem(cart.Item{
			Product:      product.ID,
			Name:         product.Name,
			Image:        product.Image,
			Price:        product.Price,
			CountInStock: product.CountInStock,
			Qty:          in.Qty,
		})
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	oid, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, func(c *cart.Cart) error {
		return c.RemoveItem(oid)
	})
}

func (s *CartService) SetShippingAddress(ctx context.Context, userID string, addr models.ShippingAddress) (*cart.Cart, error) {
	return s.update(ctx, userID, func(c *cart.Cart) error {
		c.SetShippingAddress(addr)
		return nil
	})
}

func (s *CartService) SetPaymentMethod(ctx context.Context, userID, method string) (*cart.Cart, error) {
	return s.update(ctx, userID, func(c *cart.Cart) error {
		c.SetPaymentMethod(method)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}

func (s *CartService) update(ctx context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}
