package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/dto"
	"github.com/finwage/payroll_backend/internal/middleware"
)

// paymentHandler handles HTTP requests for the payment lifecycle, its
// line-item ledger and attached documents.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(paymentService portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: paymentService,
	}
}

func (h *paymentHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.CreateDraft(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) getPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("paymentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var filter portsrepo.ListPaymentsFilter
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.PaymentStatus(statusStr)
		switch status {
		case domain.PaymentDraft, domain.PaymentPendingApproval, domain.PaymentApproved, domain.PaymentPaid, domain.PaymentCancelled:
			filter.Status = &status
		default:
			logger.Warn("Unknown status filter", slog.String("status", statusStr))
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter: " + statusStr})
			return
		}
	}
	if month, ok := intQuery(c, "month"); ok {
		filter.Month = &month
	}
	if year, ok := intQuery(c, "year"); ok {
		filter.Year = &year
	}
	if limit, ok := intQuery(c, "limit"); ok {
		filter.Limit = limit
	}
	if offset, ok := intQuery(c, "offset"); ok {
		filter.Offset = offset
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": dto.ToPaymentResponses(payments)})
}

func (h *paymentHandler) deleteDraft(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.paymentService.DeleteDraft(c.Request.Context(), c.Param("paymentID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *paymentHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addLineItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.AddLineItem(c.Request.Context(), c.Param("paymentID"), req.AssignmentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) removeLineItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.RemoveLineItem(c.Request.Context(), c.Param("paymentID"), c.Param("lineItemID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) submitForApproval(c *gin.Context) {
	h.transition(c, func(paymentID, remarks, userID string) (*domain.Payment, error) {
		return h.paymentService.SubmitForApproval(c.Request.Context(), paymentID, remarks, userID)
	})
}

func (h *paymentHandler) approve(c *gin.Context) {
	h.transition(c, func(paymentID, remarks, userID string) (*domain.Payment, error) {
		return h.paymentService.Approve(c.Request.Context(), paymentID, remarks, userID)
	})
}

// transition handles the shared shape of submit and approve: an optional
// remarks body, the actor from context, one service call.
func (h *paymentHandler) transition(c *gin.Context, op func(paymentID, remarks, userID string) (*domain.Payment, error)) {
	var req dto.RemarksRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := op(c.Param("paymentID"), req.Remarks, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), c.Param("paymentID"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) cancel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for cancel", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.Cancel(c.Request.Context(), c.Param("paymentID"), req.Reason, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *paymentHandler) getHistory(c *gin.Context) {
	entries, err := h.paymentService.GetHistory(c.Request.Context(), c.Param("paymentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": dto.ToHistoryEntryResponses(entries)})
}

func (h *paymentHandler) addDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Missing file in document upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	docType := domain.DocumentType(c.PostForm("documentType"))
	switch docType {
	case domain.DocumentReceipt, domain.DocumentChallan, domain.DocumentOther:
	case "":
		docType = domain.DocumentOther
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown document type"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	upload := dto.DocumentUpload{
		FileName:     fileHeader.Filename,
		FileSize:     fileHeader.Size,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		DocumentType: docType,
		Description:  c.PostForm("description"),
		Content:      file,
	}

	doc, err := h.paymentService.AddDocument(c.Request.Context(), c.Param("paymentID"), upload, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

func (h *paymentHandler) downloadDocument(c *gin.Context) {
	doc, content, err := h.paymentService.OpenDocument(c.Request.Context(), c.Param("paymentID"), c.Param("documentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, doc.FileSize, contentType, content, nil)
}

func (h *paymentHandler) removeDocument(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.paymentService.RemoveDocument(c.Request.Context(), c.Param("paymentID"), c.Param("documentID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intQuery parses an integer query parameter, reporting presence.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// registerPaymentRoutes registers payment lifecycle routes.
func registerPaymentRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := group.Group("/payments")
	{
		payments.POST("", h.createDraft)
		payments.GET("", h.listPayments)
		payments.GET("/:paymentID", h.getPayment)
		payments.DELETE("/:paymentID", h.deleteDraft)
		payments.POST("/:paymentID/line-items", h.addLineItem)
		payments.DELETE("/:paymentID/line-items/:lineItemID", h.removeLineItem)
		payments.POST("/:paymentID/submit", h.submitForApproval)
		payments.POST("/:paymentID/approve", h.approve)
		payments.POST("/:paymentID/record-payment", h.recordPayment)
		payments.POST("/:paymentID/cancel", h.cancel)
		payments.GET("/:paymentID/history", h.getHistory)
		payments.POST("/:paymentID/documents", h.addDocument)
		payments.GET("/:paymentID/documents/:documentID", h.downloadDocument)
		payments.DELETE("/:paymentID/documents/:documentID", h.removeDocument)
	}
}
