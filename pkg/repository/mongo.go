package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

// MongoRepository stores users, products (with embedded reviews), orders
// and audit logs in one database.
type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	audit    string
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	repo := NewMongoRepositoryFromDatabase(client.Database(cfg.Database), cfg.AuditCollection)
	repo.client = client
	return repo, nil
}

// NewMongoRepositoryFromDatabase wraps an already connected database.
func NewMongoRepositoryFromDatabase(db *mongo.Database, auditCollection string) *MongoRepository {
	if auditCollection == "" {
		auditCollection = "audit_logs"
	}
	return &MongoRepository{
		client:   db.Client(),
		database: db,
		audit:    auditCollection,
	}
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the queries rely on. Transaction ids
// are indexed but deliberately not unique.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := m.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	if _, err := m.orders().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "paymentResult.id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create orders indexes: %w", err)
	}

	if _, err := m.products().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "rating", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to create products index: %w", err)
	}
	return nil
}

// DropAll removes every storefront collection. Used by the seeder.
func (m *MongoRepository) DropAll(ctx context.Context) error {
	for _, name := range []string{ordersCollection, productsCollection, usersCollection} {
		if err := m.database.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	return nil
}

func (m *MongoRepository) users() *mongo.Collection {
	return m.database.Collection(usersCollection)
}

func (m *MongoRepository) products() *mongo.Collection {
	return m.database.Collection(productsCollection)
}

func (m *MongoRepository) orders() *mongo.Collection {
	return m.database.Collection(ordersCollection)
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("%s", msg)
	}
	return err
}
