package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// ============================================
// Lead Handler
// ============================================

const leadNotFound = "Lead not found"

type LeadHandler struct {
	leadService service.LeadService
}

func (h *LeadHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var q service.LeadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	leads, err := h.leadService.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err, leadNotFound)
		return
	}

	c.JSON(http.StatusOK, toLeadList(leads))
}

func (h *LeadHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, leadNotFound)
		return
	}

	logger.LogAction(c, "lead.create", "lead", lead.Lead.ID.Hex())
	c.JSON(http.StatusCreated, toLeadResponse(lead))
}

func (h *LeadHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	lead, err := h.leadService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, leadNotFound)
		return
	}

	c.JSON(http.StatusOK, toLeadResponse(lead))
}

func (h *LeadHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.LeadPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	lead, err := h.leadService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err, leadNotFound)
		return
	}

	logger.LogAction(c, "lead.update", "lead", id)
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

func (h *LeadHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.leadService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, leadNotFound)
		return
	}

	logger.LogAction(c, "lead.delete", "lead", id)
	c.Status(http.StatusNoContent)
}
