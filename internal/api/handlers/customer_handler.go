package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// ============================================
// Customer Handler
// ============================================

const customerNotFound = "Customer not found"

type CustomerHandler struct {
	customerService service.CustomerService
}

func (h *CustomerHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	customers, err := h.customerService.List(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err, customerNotFound)
		return
	}

	c.JSON(http.StatusOK, toCustomerList(customers))
}

func (h *CustomerHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, customerNotFound)
		return
	}

	logger.LogAction(c, "customer.create", "customer", customer.Customer.ID.Hex())
	c.JSON(http.StatusCreated, toCustomerResponse(customer))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	customer, err := h.customerService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, customerNotFound)
		return
	}

	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.CustomerPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	customer, err := h.customerService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err, customerNotFound)
		return
	}

	logger.LogAction(c, "customer.update", "customer", id)
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) AddInteraction(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.InteractionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	customer, err := h.customerService.AddInteraction(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err, customerNotFound)
		return
	}

	logger.LogAction(c, "customer.add_interaction", "customer", id)
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.customerService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, customerNotFound)
		return
	}

	logger.LogAction(c, "customer.delete", "customer", id)
	c.Status(http.StatusNoContent)
}
