package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	productdomain "github.com/promoforge/promoforge/internal/product/domain"
)

type createProductRequest struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	MarginPrice float64 `json:"margin_price"`
	SKU         string  `json:"sku"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateProductRequest{
		Name:        req.Name,
		Value:       req.Value,
		MarginPrice: req.MarginPrice,
		SKU:         req.SKU,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Value       *float64 `json:"value"`
	MarginPrice *float64 `json:"margin_price"`
	SKU         *string  `json:"sku"`
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateProductRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Value:       req.Value,
		MarginPrice: req.MarginPrice,
		SKU:         req.SKU,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.productSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.productSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
