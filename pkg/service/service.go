// Package service implements the storefront's business rules on top of the
// stores in package repository. Stores are taken as interfaces so the
// services can be exercised without a database.
package service

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/payment"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context, keyword string, skip, limit int64) ([]models.Product, int64, error)
	TopProducts(ctx context.Context, limit int64) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	UpdateReviews(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

type ProductCache interface {
	CacheProduct(ctx context.Context, product *models.Product) error
	GetProductCache(ctx context.Context, id string) (*models.Product, error)
	InvalidateProduct(ctx context.Context, id string) error
}

// ProductLookup resolves catalog entries for orders and carts.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	MarkOrderPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult, paidAt time.Time) (*models.Order, error)
	MarkOrderDelivered(ctx context.Context, id primitive.ObjectID, deliveredAt time.Time) (*models.Order, error)
}

type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]models.AuditLog, error)
}

// PaymentVerifier accepts or rejects a provider transaction as payment of
// an order total.
type PaymentVerifier interface {
	Check(ctx context.Context, txID, totalPrice string) (*payment.Verification, error)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Invalid ObjectId of: %s", id)
	}
	return oid, nil
}
