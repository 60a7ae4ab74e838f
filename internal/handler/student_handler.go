package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/enhc-tech/career-guide-api/internal/middleware"
	"github.com/enhc-tech/career-guide-api/internal/models"
	"github.com/enhc-tech/career-guide-api/internal/service"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
	"github.com/enhc-tech/career-guide-api/pkg/response"
)

// StudentHandler exposes the admin student listing.
type StudentHandler struct {
	delivery *service.DeliveryService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(delivery *service.DeliveryService) *StudentHandler {
	return &StudentHandler{delivery: delivery}
}

// ListStudents godoc
// @Summary List all students with assessment status (admin)
// @Tags Students
// @Produce json
// @Param search query string false "Name or school search"
// @Param status query string false "Assessment status filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.StudentFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AssessmentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := c.Query("pageSize"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			filter.PageSize = size
		}
	}

	items, pagination, err := h.delivery.ListStudents(c.Request.Context(), claims, middleware.AdminCleared(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
