package service

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	ProductPageSize = 8
	TopProductCount = 3
)

type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ProductInput carries the editable catalog fields.
type ProductInput struct {
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"gte=0"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	CountInStock int     `json:"countInStock" binding:"gte=0"`
}

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type ProductService struct {
	store  ProductStore
	cache  ProductCache
	logger *zap.Logger
}

// NewProductService wires the catalog. cache may be nil.
func NewProductService(store ProductStore, cache ProductCache, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{store: store, cache: cache, logger: logger.Named("products")}
}

func (s *ProductService) ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	skip := int64((page - 1) * ProductPageSize)

	products, total, err := s.store.ListProducts(ctx, keyword, skip, ProductPageSize)
	if err != nil {
		return nil, err
	}

	pages := int((total + ProductPageSize - 1) / ProductPageSize)
	return &ProductPage{Products: products, Page: page, Pages: pages}, nil
}

func (s *ProductService) TopProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.TopProducts(ctx, TopProductCount)
}

// GetProduct serves from the cache when it can and fills it on a miss.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if product, err := s.cache.GetProductCache(ctx, id); err == nil {
			return product, nil
		}
	}

	product, err := s.store.GetProduct(ctx, oid)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

// CreateSampleProduct inserts a placeholder product for an admin to edit.
func (s *ProductService) CreateSampleProduct(ctx context.Context, userID primitive.ObjectID) (*models.Product, error) {
	product := &models.Product{
		User:         userID,
		Name:         "Sample name",
		Price:        0,
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample category",
		CountInStock: 0,
		NumReviews:   0,
		Description:  "Sample description",
		Reviews:      []models.Review{},
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, oid)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Price = in.Price
	product.Description = in.Description
	product.Image = in.Image
	product.Brand = in.Brand
	product.Category = in.Category
	product.CountInStock = in.CountInStock

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, oid); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// AddReview records user's review of the product. Each user can review a
// product once.
func (s *ProductService) AddReview(ctx context.Context, id string, user *models.User, in ReviewInput) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	product, err := s.store.GetProduct(ctx, oid)
	if err != nil {
		return err
	}

	now := time.Now()
	review := models.Review{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		User:      user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := product.AddReview(review); err != nil {
		return err
	}

	if err := s.store.UpdateReviews(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
	}
}
