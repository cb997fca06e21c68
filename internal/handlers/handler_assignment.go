package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/dto"
)

// assignmentHandler exposes the eligible-assignment listing backing the
// attachment wizard.
type assignmentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newAssignmentHandler creates a new assignmentHandler.
func newAssignmentHandler(paymentService portssvc.PaymentSvcFacade) *assignmentHandler {
	return &assignmentHandler{
		paymentService: paymentService,
	}
}

func (h *assignmentHandler) listEligible(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required (YYYY-MM-DD)"})
		return
	}
	from, err := time.Parse(time.DateOnly, fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(time.DateOnly, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	summaries, err := h.paymentService.ListEligibleAssignments(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": dto.ToAssignmentSummaryResponses(summaries)})
}

// registerAssignmentRoutes registers assignment listing routes.
func registerAssignmentRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newAssignmentHandler(paymentService)

	assignments := group.Group("/assignments")
	{
		assignments.GET("/eligible", h.listEligible)
	}
}
