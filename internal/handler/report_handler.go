package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enhc-tech/career-guide-api/internal/middleware"
	"github.com/enhc-tech/career-guide-api/internal/service"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
	"github.com/enhc-tech/career-guide-api/pkg/response"
)

// ReportHandler streams generated report artifacts.
type ReportHandler struct {
	delivery *service.DeliveryService
}

// NewReportHandler constructs handler.
func NewReportHandler(delivery *service.DeliveryService) *ReportHandler {
	return &ReportHandler{delivery: delivery}
}

// DownloadOwn godoc
// @Summary Download the caller's own report
// @Tags Reports
// @Produce application/pdf
// @Param handle path string true "Report handle"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /download-report/{handle} [get]
func (h *ReportHandler) DownloadOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	download, err := h.delivery.FetchReport(c.Request.Context(), claims, claims.UserID, c.Param("handle"), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, download)
}

// DownloadForAdmin godoc
// @Summary Download any student's report (admin)
// @Tags Reports
// @Produce application/pdf
// @Param handle path string true "Report handle"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /auth/download-report/{handle} [get]
func (h *ReportHandler) DownloadForAdmin(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	download, err := h.delivery.FetchReportByHandle(c.Request.Context(), claims, c.Param("handle"), middleware.AdminCleared(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, download)
}

// DownloadSigned godoc
// @Summary Download a report via a signed listing token
// @Tags Reports
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/export/{token} [get]
func (h *ReportHandler) DownloadSigned(c *gin.Context) {
	download, err := h.delivery.ResolveSignedDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, download)
}

func (h *ReportHandler) stream(c *gin.Context, download *service.ReportDownload) {
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", download.File, nil)
}
