package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enhc-tech/career-guide-api/internal/dto"
	"github.com/enhc-tech/career-guide-api/internal/service"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
	"github.com/enhc-tech/career-guide-api/pkg/response"
)

// MarksHandler exposes the marks submission and status polling endpoints.
type MarksHandler struct {
	assessments *service.AssessmentService
}

// NewMarksHandler constructs handler.
func NewMarksHandler(assessments *service.AssessmentService) *MarksHandler {
	return &MarksHandler{assessments: assessments}
}

// SubmitMarks godoc
// @Summary Submit subject marks and start analysis
// @Tags Assessment
// @Accept json
// @Produce json
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /marks [post]
func (h *MarksHandler) SubmitMarks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid marks payload"))
		return
	}

	scores, err := service.ValidateScores(req.Subjects)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.assessments.Submit(c.Request.Context(), claims.UserID, scores)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// ReportStatus godoc
// @Summary Poll the current assessment status
// @Tags Assessment
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /questionnaire/report-status [get]
func (h *MarksHandler) ReportStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resp, err := h.assessments.GetStatus(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
