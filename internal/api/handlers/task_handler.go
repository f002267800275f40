package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// ============================================
// Task Handler
// ============================================

const taskNotFound = "Task not found"

type TaskHandler struct {
	taskService service.TaskService
}

func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var q service.TaskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusOK, toTaskList(tasks))
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	logger.LogAction(c, "task.create", "task", task.Task.ID.Hex())
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req service.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	task, err := h.taskService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	logger.LogAction(c, "task.update", "task", id)
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.taskService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	logger.LogAction(c, "task.delete", "task", id)
	c.Status(http.StatusNoContent)
}
