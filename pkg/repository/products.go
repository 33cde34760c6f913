package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func keywordFilter(keyword string) bson.M {
	if keyword == "" {
		return bson.M{}
	}
	return bson.M{"name": bson.M{
		"$regex":   regexp.QuoteMeta(keyword),
		"$options": "i",
	}}
}

func (m *MongoRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}

	if _, err := m.products().InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := m.products().FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	return &product, nil
}

// ListProducts returns one page of products whose name matches keyword,
// plus the total number of matches.
func (m *MongoRepository) ListProducts(ctx context.Context, keyword string, skip, limit int64) ([]models.Product, int64, error) {
	filter := keywordFilter(keyword)

	total, err := m.products().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := m.products().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, total, nil
}

func (m *MongoRepository) TopProducts(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}}).SetLimit(limit)

	cursor, err := m.products().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list top products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (m *MongoRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"name":         product.Name,
		"price":        product.Price,
		"description":  product.Description,
		"image":        product.Image,
		"brand":        product.Brand,
		"category":     product.Category,
		"countInStock": product.CountInStock,
		"updatedAt":    product.UpdatedAt,
	}}
	res, err := m.products().UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

// UpdateReviews persists the embedded reviews and their aggregates.
func (m *MongoRepository) UpdateReviews(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"reviews":    product.Reviews,
		"rating":     product.Rating,
		"numReviews": product.NumReviews,
		"updatedAt":  product.UpdatedAt,
	}}
	res, err := m.products().UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

func (m *MongoRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

// InsertProducts bulk inserts seed products, assigning ids.
func (m *MongoRepository) InsertProducts(ctx context.Context, products []models.Product) error {
	docs := make([]interface{}, len(products))
	now := time.Now()
	for i := range products {
		products[i].ID = primitive.NewObjectID()
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
		if products[i].Reviews == nil {
			products[i].Reviews = []models.Review{}
		}
		docs[i] = products[i]
	}
	_, err := m.products().InsertMany(ctx, docs)
	return err
}
