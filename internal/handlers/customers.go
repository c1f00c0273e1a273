package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salin-system/internal/middleware"
	"salin-system/internal/services/customers"
)

type CustomerHandler struct {
	customers *customers.Service
}

func NewCustomerHandler(customerService *customers.Service) *CustomerHandler {
	return &CustomerHandler{customers: customerService}
}

type CreateCustomerRequest struct {
	CitizenID     string `json:"citizen_id" binding:"required"`
	FnameTH       string `json:"fname_th,omitempty"`
	LnameTH       string `json:"lname_th,omitempty"`
	FnameEN       string `json:"fname_en,omitempty"`
	LnameEN       string `json:"lname_en,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	Birthdate     string `json:"birthdate,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address1      string `json:"address1,omitempty"`
	Address2      string `json:"address2,omitempty"`
	Zipcode       string `json:"zipcode,omitempty"`
	Position      string `json:"position,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	RegisterDate  string `json:"register_date,omitempty"`
	ConsentStatus *bool  `json:"consent_status,omitempty"`
	RecommenderID string `json:"recommender_id,omitempty"`
}

type UpdateCustomerRequest struct {
	FnameTH       *string `json:"fname_th,omitempty"`
	LnameTH       *string `json:"lname_th,omitempty"`
	FnameEN       *string `json:"fname_en,omitempty"`
	LnameEN       *string `json:"lname_en,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	Nationality   *string `json:"nationality,omitempty"`
	Birthdate     *string `json:"birthdate,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address1      *string `json:"address1,omitempty"`
	Address2      *string `json:"address2,omitempty"`
	Zipcode       *string `json:"zipcode,omitempty"`
	Position      *string `json:"position,omitempty"`
	TaxID         *string `json:"tax_id,omitempty"`
	ConsentStatus *bool   `json:"consent_status,omitempty"`
	RecommenderID *string `json:"recommender_id,omitempty"`
}

type ListCustomersQuery struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Search   string `form:"search"`
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), middleware.ScopeFrom(c), customers.CreateInput{
		CitizenID:     req.CitizenID,
		FnameTH:       req.FnameTH,
		LnameTH:       req.LnameTH,
		FnameEN:       req.FnameEN,
		LnameEN:       req.LnameEN,
		Gender:        req.Gender,
		Nationality:   req.Nationality,
		Birthdate:     req.Birthdate,
		Phone:         req.Phone,
		Address1:      req.Address1,
		Address2:      req.Address2,
		Zipcode:       req.Zipcode,
		Position:      req.Position,
		TaxID:         req.TaxID,
		RegisterDate:  req.RegisterDate,
		ConsentStatus: req.ConsentStatus,
		RecommenderID: req.RecommenderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Customer created", customer))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customers.GetByID(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customer retrieved", customer))
}

func (h *CustomerHandler) GetByCitizenID(c *gin.Context) {
	customer, err := h.customers.GetByCitizenID(c.Request.Context(), middleware.ScopeFrom(c), c.Param("citizenId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customer retrieved", customer))
}

func (h *CustomerHandler) List(c *gin.Context) {
	var query ListCustomersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query: "+err.Error()))
		return
	}

	rows, total, err := h.customers.List(c.Request.Context(), middleware.ScopeFrom(c), query.Search, query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Customers retrieved", rows, PageMeta{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}))
}

func (h *CustomerHandler) Search(c *gin.Context) {
	rows, err := h.customers.Search(c.Request.Context(), middleware.ScopeFrom(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customers found", rows))
}

func (h *CustomerHandler) Update(c *gin.Context) {
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"), customers.UpdateInput{
		FnameTH:       req.FnameTH,
		LnameTH:       req.LnameTH,
		FnameEN:       req.FnameEN,
		LnameEN:       req.LnameEN,
		Gender:        req.Gender,
		Nationality:   req.Nationality,
		Birthdate:     req.Birthdate,
		Phone:         req.Phone,
		Address1:      req.Address1,
		Address2:      req.Address2,
		Zipcode:       req.Zipcode,
		Position:      req.Position,
		TaxID:         req.TaxID,
		ConsentStatus: req.ConsentStatus,
		RecommenderID: req.RecommenderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customer updated", customer))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customer deleted", nil))
}
