package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := m.orders().InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := m.orders().FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	return &order, nil
}

func (m *MongoRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	return m.findOrders(ctx, bson.M{})
}

func (m *MongoRepository) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return m.findOrders(ctx, bson.M{"user": userID})
}

func (m *MongoRepository) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.orders().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// TransactionUsed reports whether any stored order already carries txID as
// its payment transaction. This is a plain read; two requests racing with
// the same id can both see false.
func (m *MongoRepository) TransactionUsed(ctx context.Context, txID string) (bool, error) {
	n, err := m.orders().CountDocuments(ctx, bson.M{"paymentResult.id": txID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up transaction: %w", err)
	}
	return n > 0, nil
}

// MarkOrderPaid flips an unpaid order to paid and returns the stored result.
func (m *MongoRepository) MarkOrderPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult, paidAt time.Time) (*models.Order, error) {
	filter := bson.M{"_id": id, "isPaid": false}
	update := bson.M{"$set": bson.M{
		"isPaid":        true,
		"paidAt":        paidAt,
		"paymentResult": result,
		"updatedAt":     paidAt,
	}}

	order, err := m.updateOrder(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Validation("Order already paid")
	}
	return order, err
}

// MarkOrderDelivered flips a paid, undelivered order to delivered.
func (m *MongoRepository) MarkOrderDelivered(ctx context.Context, id primitive.ObjectID, deliveredAt time.Time) (*models.Order, error) {
	filter := bson.M{"_id": id, "isPaid": true, "isDelivered": false}
	update := bson.M{"$set": bson.M{
		"isDelivered": true,
		"deliveredAt": deliveredAt,
		"updatedAt":   deliveredAt,
	}}

	order, err := m.updateOrder(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Validation("Order is not paid or already delivered")
	}
	return order, err
}

func (m *MongoRepository) updateOrder(ctx context.Context, filter, update bson.M) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	if err := m.orders().FindOneAndUpdate(ctx, filter, update, opts).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &order, nil
}
