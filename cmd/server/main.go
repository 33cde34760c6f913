package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/gateway"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/grpc"
	"github.com/example/storefront/pkg/logger"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/service"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront",
		zap.String("name", cfg.Server.Name),
		zap.String("address", cfg.Server.Addr()))

	ctx := context.Background()

	// Storage
	mongo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to create indexes", zap.Error(err))
	}

	redis := repository.NewRedisRepository(&cfg.Redis)
	if err := redis.Ping(ctx); err != nil {
		log.Warn("Redis connection failed", zap.Error(err))
	} else {
		log.Info("Redis connected successfully")
	}

	// Order events
	var broker events.Broker
	var amqpBroker *events.AMQPBroker
	if cfg.AMQP.URL != "" {
		amqpBroker, err = events.NewAMQPBroker(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Warn("Failed to connect to AMQP, order events are audited only", zap.Error(err))
		} else {
			broker = amqpBroker
		}
	}

	dispatcher, err := events.NewDispatcher(mongo, broker, log)
	if err != nil {
		log.Fatal("Failed to start event dispatcher", zap.Error(err))
	}

	// Services
	paypal := payment.NewPayPalClient(cfg.PayPal, redis, log)
	products := service.NewProductService(mongo, redis, log)
	users := service.NewUserService(mongo, log)
	carts := cart.NewRedisStore(redis, cfg.Redis.CartTTL)
	orders := service.NewOrderService(service.OrderDeps{
		Orders:   mongo,
		Products: products,
		Users:    mongo,
		Payments: payment.NewVerifier(paypal, mongo, log),
		Audit:    mongo,
		Carts:    carts,
		Events:   dispatcher,
		Logger:   log,
	})

	gw := gateway.NewGateway(cfg, log, gateway.Services{
		Products: products,
		Orders:   orders,
		Users:    users,
		Carts:    service.NewCartService(carts, products),
		Auth:     auth.NewManager(cfg.Auth),
		Checks: map[string]gateway.Pinger{
			"mongodb": mongo,
			"redis":   redis,
		},
	})
	gw.SetupRoutes()

	health := grpc.NewHealthServer(&cfg.GRPC, cfg.Server.Name, map[string]grpc.Pinger{
		"mongodb": mongo,
		"redis":   redis,
	}, log)

	serverErr := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- err
		}
	}()
	go func() {
		if err := health.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Register in etcd when endpoints are configured
	var sd *discovery.ServiceDiscovery
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		Metadata: map[string]string{
			"grpc": cfg.GRPC.Addr(),
		},
	}
	if len(cfg.Etcd.Endpoints) > 0 {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, log)
		if err != nil {
			log.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := sd.Register(ctx, instance); err != nil {
			log.Warn("Failed to register service", zap.Error(err))
		} else {
			log.Info("Service registered in etcd", zap.String("address", instance.Addr()))
		}
	}

	log.Info("Storefront started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gw.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	health.Stop()
	dispatcher.Stop()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			log.Warn("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}
	if amqpBroker != nil {
		amqpBroker.Close()
	}
	redis.Close()
	if err := mongo.Close(shutdownCtx); err != nil {
		log.Warn("Failed to disconnect MongoDB", zap.Error(err))
	}

	log.Info("Storefront stopped")
}
