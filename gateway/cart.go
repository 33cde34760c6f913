package gateway

import (
	"net/http"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) getCart(c *gin.Context) {
	cart, err := g.services.Carts.Get(c.Request.Context(), currentUser(c).ID.Hex())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (g *Gateway) addCartItem(c *gin.Context) {
	var req service.CartItemInput
	if !g.bindJSON(c, &req) {
		return
	}

	cart, err := g.services.Carts.AddItem(c.Request.Context(), currentUser(c).ID.Hex(), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (g *Gateway) removeCartItem(c *gin.Context) {
	cart, err := g.services.Carts.RemoveItem(c.Request.Context(), currentUser(c).ID.Hex(), c.Param("productId"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (g *Gateway) saveShippingAddress(c *gin.Context) {
	var req models.ShippingAddress
	if !g.bindJSON(c, &req) {
		return
	}

	cart, err := g.services.Carts.SetShippingAddress(c.Request.Context(), currentUser(c).ID.Hex(), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (g *Gateway) savePaymentMethod(c *gin.Context) {
	var req service.PaymentMethodInput
	if !g.bindJSON(c, &req) {
		return
	}

	cart, err := g.services.Carts.SetPaymentMethod(c.Request.Context(), currentUser(c).ID.Hex(), req.PaymentMethod)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (g *Gateway) clearCart(c *gin.Context) {
	if err := g.services.Carts.Clear(c.Request.Context(), currentUser(c).ID.Hex()); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
