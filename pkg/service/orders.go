package service

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/metrics"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/pricing"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const auditHistoryLimit = 50

type OrderItemInput struct {
	Product string `json:"product" binding:"required,objectid"`
	Qty     int    `json:"qty" binding:"required,min=1"`
}

// CreateOrderInput lists what to buy. Prices are always taken from the
// catalog, never from the request.
type CreateOrderInput struct {
	OrderItems      []OrderItemInput       `json:"orderItems" binding:"dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

// PaymentInput is the capture summary the client received from the
// payment provider.
type PaymentInput struct {
	ID         string `json:"id" binding:"required"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

type OrderDeps struct {
	Orders   OrderStore
	Products ProductLookup
	Users    UserStore
	Payments PaymentVerifier
	Audit    AuditReader
	Carts    cart.Store
	Events   events.Emitter
	Logger   *zap.Logger
}

type OrderService struct {
	orders   OrderStore
	products ProductLookup
	users    UserStore
	payments PaymentVerifier
	audit    AuditReader
	carts    cart.Store
	events   events.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(deps OrderDeps) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:   deps.Orders,
		products: deps.Products,
		users:    deps.Users,
		payments: deps.Payments,
		audit:    deps.Audit,
		carts:    deps.Carts,
		events:   deps.Events,
		logger:   logger.Named("orders"),
		now:      time.Now,
	}
}

// CreateOrder snapshots the requested catalog items, prices them and stores
// an unpaid order for user.
func (s *OrderService) CreateOrder(ctx context.Context, user *models.User, in CreateOrderInput) (order *models.Order, err error) {
	defer func() { metrics.RecordOrderOperation("create", err == nil) }()

	if len(in.OrderItems) == 0 {
		return nil, apperr.Validation("No order items")
	}

	items := make([]models.OrderItem, 0, len(in.OrderItems))
	lines := make([]pricing.LineItem, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		product, err := s.products.GetProduct(ctx, it.Product)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			Name:    product.Name,
			Qty:     it.Qty,
			Image:   product.Image,
			Price:   product.Price,
			Product: product.ID,
		})
		lines = append(lines, pricing.LineItem{
			Price:    decimal.NewFromFloat(product.Price),
			Quantity: it.Qty,
		})
	}

	prices, err := pricing.Calculate(lines)
	if err != nil {
		return nil, err
	}

	order = &models.Order{
		User:            user.ID,
		OrderItems:      items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      prices.ItemsPrice,
		TaxPrice:        prices.TaxPrice,
		ShippingPrice:   prices.ShippingPrice,
		TotalPrice:      prices.TotalPrice,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.clearCart(ctx, user.ID.Hex())
	s.emit(events.ActionCreated, order)
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
		zap.String("total", order.TotalPrice),
	)
	return order, nil
}

// GetOrder returns the order with its buyer's name and email. Only the
// buyer and admins can see it.
func (s *OrderService) GetOrder(ctx context.Context, id string, requester *models.User) (*models.Order, error) {
	order, err := s.loadOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if s.users != nil {
		buyer, err := s.users.GetUser(ctx, order.User)
		switch {
		case err == nil:
			order.UserInfo = buyer.Summary()
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, user *models.User) ([]models.Order, error) {
	return s.orders.ListOrdersByUser(ctx, user.ID)
}

// ListOrders returns every order with the buyer's id and name attached.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if s.users == nil {
		return orders, nil
	}

	names := map[primitive.ObjectID]*models.UserSummary{}
	for i := range orders {
		uid := orders[i].User
		summary, ok := names[uid]
		if !ok {
			buyer, err := s.users.GetUser(ctx, uid)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			if buyer != nil {
				summary = &models.UserSummary{ID: buyer.ID, Name: buyer.Name}
			}
			names[uid] = summary
		}
		orders[i].UserInfo = summary
	}
	return orders, nil
}

// PayOrder marks the order paid once the payment provider confirms the
// transaction. The transaction must be completed, unused by any other
// order, and for exactly the order total.
func (s *OrderService) PayOrder(ctx context.Context, id string, requester *models.User, in PaymentInput) (order *models.Order, err error) {
	defer func() { metrics.RecordOrderOperation("pay", err == nil) }()

	order, err = s.loadOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, apperr.Validation("Order already paid")
	}

	verified, err := s.payments.Check(ctx, in.ID, order.TotalPrice)
	if err != nil {
		s.logger.Warn("Payment rejected",
			zap.String("order_id", id),
			zap.String("transaction_id", in.ID),
			zap.Error(err),
		)
		return nil, err
	}

	order, err = s.orders.MarkOrderPaid(ctx, order.ID, paymentResult(in, verified), s.now())
	if err != nil {
		return nil, err
	}

	s.emit(events.ActionPaid, order)
	s.logger.Info("Order paid", zap.String("order_id", id), zap.String("transaction_id", in.ID))
	return order, nil
}

// DeliverOrder marks a paid order as delivered.
func (s *OrderService) DeliverOrder(ctx context.Context, id string) (order *models.Order, err error) {
	defer func() { metrics.RecordOrderOperation("deliver", err == nil) }()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err = s.orders.GetOrder(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid {
		return nil, apperr.Validation("Order is not paid")
	}
	if order.IsDelivered {
		return nil, apperr.Validation("Order already delivered")
	}

	order, err = s.orders.MarkOrderDelivered(ctx, oid, s.now())
	if err != nil {
		return nil, err
	}

	s.emit(events.ActionDelivered, order)
	return order, nil
}

// OrderHistory returns the audit trail recorded for the order, newest first.
func (s *OrderService) OrderHistory(ctx context.Context, id string) ([]models.AuditLog, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []models.AuditLog{}, nil
	}
	return s.audit.GetAuditLogs(ctx, id, auditHistoryLimit)
}

func (s *OrderService) loadOwned(ctx context.Context, id string, requester *models.User) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin && !order.OwnedBy(requester.ID) {
		return nil, apperr.Unauthorized("Not authorized to access this order")
	}
	return order, nil
}

func (s *OrderService) clearCart(ctx context.Context, userID string) {
	if s.carts == nil {
		return
	}
	c, err := s.carts.Load(ctx, userID)
	if err == nil {
		if err = c.ClearItems(); err == nil {
			err = s.carts.Save(ctx, userID, c)
		}
	}
	if err != nil {
		s.logger.Warn("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *OrderService) emit(action string, order *models.Order) {
	if s.events == nil {
		return
	}
	s.events.Emit(events.NewOrderEvent(action, order))
}

// paymentResult records the provider's view of the capture. Fields the
// provider left empty fall back to the client's copy.
func paymentResult(in PaymentInput, v *payment.Verification) models.PaymentResult {
	result := models.PaymentResult{
		ID:           in.ID,
		Status:       in.Status,
		UpdateTime:   in.UpdateTime,
		EmailAddress: in.Payer.EmailAddress,
	}
	if v == nil {
		return result
	}
	if v.Status != "" {
		result.Status = v.Status
	}
	if v.UpdateTime != "" {
		result.UpdateTime = v.UpdateTime
	}
	if v.PayerEmail != "" {
		result.EmailAddress = v.PayerEmail
	}
	return result
}
