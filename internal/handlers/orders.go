package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"salin-system/internal/middleware"
	"salin-system/internal/services/orders"
)

type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(orderService *orders.Service) *OrderHandler {
	return &OrderHandler{orders: orderService}
}

type OrderItemRequest struct {
	ProductCode  string          `json:"product_code,omitempty"`
	ProductName  string          `json:"product_name" binding:"required"`
	ProductSize  string          `json:"product_size,omitempty"`
	ProductColor string          `json:"product_color,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity     int32           `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID      string             `json:"customer_id" binding:"required,uuid"`
	RecommenderID   string             `json:"recommender_id,omitempty"`
	AssistantID     string             `json:"assistant_id,omitempty"`
	OrderDate       *time.Time         `json:"order_date,omitempty"`
	OrderType       string             `json:"order_type,omitempty"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ListOrdersQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	in := orders.CreateInput{
		CustomerID:      req.CustomerID,
		RecommenderID:   req.RecommenderID,
		AssistantID:     req.AssistantID,
		OrderType:       req.OrderType,
		ShippingAddress: req.ShippingAddress,
	}
	if req.OrderDate != nil {
		in.OrderDate = *req.OrderDate
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, orders.ItemInput{
			ProductCode:  item.ProductCode,
			ProductName:  item.ProductName,
			ProductSize:  item.ProductSize,
			ProductColor: item.ProductColor,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
		})
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Order created", order))
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Order retrieved", order))
}

func (h *OrderHandler) List(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query: "+err.Error()))
		return
	}

	rows, total, err := h.orders.List(c.Request.Context(), middleware.ScopeFrom(c), query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved", rows, PageMeta{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}))
}

func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Order deleted", nil))
}
