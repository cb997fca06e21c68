package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/dto"
)

// reportHandler handles HTTP requests for statutory reports.
type reportHandler struct {
	reportService portssvc.ReportSvcFacade
}

// newReportHandler creates a new reportHandler.
func newReportHandler(reportService portssvc.ReportSvcFacade) *reportHandler {
	return &reportHandler{
		reportService: reportService,
	}
}

func (h *reportHandler) getPfReport(c *gin.Context) {
	month, monthOK := intQuery(c, "month")
	year, yearOK := intQuery(c, "year")
	if !monthOK || !yearOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month and year query parameters are required"})
		return
	}

	report, err := h.reportService.GeneratePfReport(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPfReportResponse(report))
}

// registerReportRoutes registers report routes.
func registerReportRoutes(group *gin.RouterGroup, reportService portssvc.ReportSvcFacade) {
	h := newReportHandler(reportService)

	reports := group.Group("/reports")
	{
		reports.GET("/pf", h.getPfReport)
	}
}
