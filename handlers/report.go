package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/services"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler struct {
	Reports  *services.ReportService
	Location *time.Location
}

// GetMonthlySummary returns the chart payload plus derived metrics
func (h *ReportHandler) GetMonthlySummary(c *gin.Context) {
	p, err := periodFromQuery(c, h.Location, time.Now())
	if err != nil {
		respondError(c, err, "")
		return
	}

	report, err := h.Reports.MonthlyReport(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondError(c, err, "Failed to build monthly summary")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) DownloadPDF(c *gin.Context) {
	h.download(c, "pdf", contentTypePDF, h.Reports.PDF)
}

func (h *ReportHandler) DownloadCSV(c *gin.Context) {
	h.download(c, "csv", contentTypeCSV, h.Reports.CSV)
}

func (h *ReportHandler) DownloadXLSX(c *gin.Context) {
	h.download(c, "xlsx", contentTypeXLSX, h.Reports.XLSX)
}

type exportFunc func(ctx context.Context, userID string, p models.Period) ([]byte, error)

func (h *ReportHandler) download(c *gin.Context, ext, contentType string, export exportFunc) {
	p, err := periodFromQuery(c, h.Location, time.Now())
	if err != nil {
		respondError(c, err, "")
		return
	}

	data, err := export(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ReportFilename(p, ext)))
	c.Data(http.StatusOK, contentType, data)
}
