package gateway

import (
	"net/http"

	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
)

// createOrder godoc
// @Summary  Place an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body  body  service.CreateOrderInput  true  "Items, address and payment method"
// @Success  201  {object}  models.Order
// @Failure  400  {object}  map[string]string
// @Router   /api/orders [post]
func (g *Gateway) createOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if !g.bindJSON(c, &req) {
		return
	}

	order, err := g.services.Orders.CreateOrder(c.Request.Context(), currentUser(c), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.services.Orders.GetOrder(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) myOrders(c *gin.Context) {
	orders, err := g.services.Orders.MyOrders(c.Request.Context(), currentUser(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (g *Gateway) listOrders(c *gin.Context) {
	orders, err := g.services.Orders.ListOrders(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// payOrder godoc
// @Summary  Mark an order paid after checking the provider transaction
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id    path  string                true  "Order id"
// @Param    body  body  service.PaymentInput  true  "Provider capture details"
// @Success  200  {object}  models.Order
// @Failure  400  {object}  map[string]string
// @Router   /api/orders/{id}/pay [put]
func (g *Gateway) payOrder(c *gin.Context) {
	var req service.PaymentInput
	if !g.bindJSON(c, &req) {
		return
	}

	order, err := g.services.Orders.PayOrder(c.Request.Context(), c.Param("id"), currentUser(c), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) deliverOrder(c *gin.Context) {
	order, err := g.services.Orders.DeliverOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) orderHistory(c *gin.Context) {
	logs, err := g.services.Orders.OrderHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
