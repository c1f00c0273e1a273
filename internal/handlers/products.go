package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salin-system/internal/services/products"
)

type ProductHandler struct {
	products *products.Service
}

func NewProductHandler(productService *products.Service) *ProductHandler {
	return &ProductHandler{products: productService}
}

type ListProductsQuery struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Search   string `form:"search"`
}

func (h *ProductHandler) List(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query: "+err.Error()))
		return
	}

	rows, total, err := h.products.List(c.Request.Context(), query.Search, query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved", rows, PageMeta{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}))
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Product retrieved", product))
}
