// Package gateway is the storefront's HTTP API.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/metrics"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	_ "github.com/example/storefront/docs"
)

type ProductService interface {
	ListProducts(ctx context.Context, keyword string, page int) (*service.ProductPage, error)
	TopProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateSampleProduct(ctx context.Context, userID primitive.ObjectID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in service.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddReview(ctx context.Context, id string, user *models.User, in service.ReviewInput) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, user *models.User, in service.CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id string, requester *models.User) (*models.Order, error)
	MyOrders(ctx context.Context, user *models.User) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	PayOrder(ctx context.Context, id string, requester *models.User, in service.PaymentInput) (*models.Order, error)
	DeliverOrder(ctx context.Context, id string) (*models.Order, error)
	OrderHistory(ctx context.Context, id string) ([]models.AuditLog, error)
}

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in service.LoginInput) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, in service.ProfileInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, in service.UserUpdateInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type CartService interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID string, in service.CartItemInput) (*cart.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*cart.Cart, error)
	SetShippingAddress(ctx context.Context, userID string, addr models.ShippingAddress) (*cart.Cart, error)
	SetPaymentMethod(ctx context.Context, userID, method string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Products ProductService
	Orders   OrderService
	Users    UserService
	Carts    CartService
	Auth     *auth.Manager
	// Checks are run by GET /health, keyed by component name.
	Checks map[string]Pinger
}

type Gateway struct {
	config   *config.Config
	services Services
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, services Services) *Gateway {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.Use(metrics.PrometheusMiddleware())

	return &Gateway{
		config:   cfg,
		services: services,
		logger:   logger,
		router:   router,
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.health)
	g.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := g.router.Group("/api")
	{
		products := api.Group("/products")
		{
			products.GET("", g.listProducts)
			products.POST("", g.protect(), g.admin(), g.createProduct)
			products.GET("/top", g.topProducts)
			products.GET("/:id", checkObjectID("id"), g.getProduct)
			products.PUT("/:id", g.protect(), g.admin(), checkObjectID("id"), g.updateProduct)
			products.DELETE("/:id", g.protect(), g.admin(), checkObjectID("id"), g.deleteProduct)
			products.POST("/:id/reviews", g.protect(), checkObjectID("id"), g.createReview)
		}

		users := api.Group("/users")
		{
			users.POST("", g.registerUser)
			users.GET("", g.protect(), g.admin(), g.listUsers)
			users.POST("/auth", g.authUser)
			users.POST("/logout", g.logoutUser)
			users.GET("/profile", g.protect(), g.getProfile)
			users.PUT("/profile", g.protect(), g.updateProfile)
			users.GET("/:id", g.protect(), g.admin(), checkObjectID("id"), g.getUser)
			users.PUT("/:id", g.protect(), g.admin(), checkObjectID("id"), g.updateUser)
			users.DELETE("/:id", g.protect(), g.admin(), checkObjectID("id"), g.deleteUser)
		}

		orders := api.Group("/orders", g.protect())
		{
			orders.POST("", g.createOrder)
			orders.GET("", g.admin(), g.listOrders)
			orders.GET("/mine", g.myOrders)
			orders.GET("/:id", checkObjectID("id"), g.getOrder)
			orders.PUT("/:id/pay", checkObjectID("id"), g.payOrder)
			orders.PUT("/:id/deliver", g.admin(), checkObjectID("id"), g.deliverOrder)
			orders.GET("/:id/audit", g.admin(), checkObjectID("id"), g.orderHistory)
		}

		carts := api.Group("/cart", g.protect())
		{
			carts.GET("", g.getCart)
			carts.DELETE("", g.clearCart)
			carts.POST("/items", g.addCartItem)
			carts.DELETE("/items/:productId", checkObjectID("productId"), g.removeCartItem)
			carts.PUT("/shipping", g.saveShippingAddress)
			carts.PUT("/payment", g.savePaymentMethod)
		}

		api.GET("/config/paypal", g.paypalConfig)
	}

	g.router.NoRoute(notFound)
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := g.config.Server.Addr()
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, p := range g.services.Checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

func (g *Gateway) paypalConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clientId": g.config.PayPal.ClientID})
}
