package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/logger"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func main() {
	destroy := flag.Bool("d", false, "destroy all data instead of importing")
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	if err := run(cfg, *destroy, log); err != nil {
		log.Fatal("Seeder failed", zap.Error(err))
	}
}

func run(cfg *config.Config, destroy bool, log *zap.Logger) error {
	mongo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	defer mongo.Close(ctx)

	if destroy {
		if err := mongo.DropAll(ctx); err != nil {
			return fmt.Errorf("failed to destroy data: %w", err)
		}
		log.Info("Data destroyed")
		return nil
	}

	users, products, err := importData(ctx, mongo)
	if err != nil {
		return fmt.Errorf("failed to import data: %w", err)
	}
	log.Info("Data imported", zap.Int("users", users), zap.Int("products", products))
	return nil
}

// importData replaces every collection with the sample users and products.
// The first user is the admin and owns the products.
func importData(ctx context.Context, mongo *repository.MongoRepository) (int, int, error) {
	if err := mongo.DropAll(ctx); err != nil {
		return 0, 0, err
	}

	users, err := seedUsers()
	if err != nil {
		return 0, 0, err
	}
	if err := mongo.InsertUsers(ctx, users); err != nil {
		return 0, 0, fmt.Errorf("failed to insert users: %w", err)
	}

	products := seedProducts(users[0].ID)
	if err := mongo.InsertProducts(ctx, products); err != nil {
		return 0, 0, fmt.Errorf("failed to insert products: %w", err)
	}

	if err := mongo.EnsureIndexes(ctx); err != nil {
		return 0, 0, err
	}
	return len(users), len(products), nil
}

// seedUsers copies the sample users with hashed passwords.
func seedUsers() ([]models.User, error) {
	users := make([]models.User, len(sampleUsers))
	copy(users, sampleUsers)
	for i := range users {
		hash, err := auth.HashPassword(users[i].Password)
		if err != nil {
			return nil, err
		}
		users[i].Password = hash
	}
	return users, nil
}

func seedProducts(owner primitive.ObjectID) []models.Product {
	products := make([]models.Product, len(sampleProducts))
	copy(products, sampleProducts)
	for i := range products {
		products[i].User = owner
	}
	return products
}
