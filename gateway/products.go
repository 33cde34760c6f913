package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
)

// listProducts godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    keyword    query  string  false  "Name filter"
// @Param    pageNumber query  int     false  "Page, starting at 1"
// @Success  200  {object}  service.ProductPage
// @Router   /api/products [get]
func (g *Gateway) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("pageNumber", "1"))

	result, err := g.services.Products.ListProducts(c.Request.Context(), c.Query("keyword"), page)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (g *Gateway) topProducts(c *gin.Context) {
	products, err := g.services.Products.TopProducts(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id  path  string  true  "Product id"
// @Success  200  {object}  models.Product
// @Failure  404  {object}  map[string]string
// @Router   /api/products/{id} [get]
func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.services.Products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) createProduct(c *gin.Context) {
	product, err := g.services.Products.CreateSampleProduct(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (g *Gateway) updateProduct(c *gin.Context) {
	var req service.ProductInput
	if !g.bindJSON(c, &req) {
		return
	}

	product, err := g.services.Products.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) deleteProduct(c *gin.Context) {
	if err := g.services.Products.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}

func (g *Gateway) createReview(c *gin.Context) {
	var req service.ReviewInput
	if !g.bindJSON(c, &req) {
		return
	}

	if err := g.services.Products.AddReview(c.Request.Context(), c.Param("id"), currentUser(c), req); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added"})
}
