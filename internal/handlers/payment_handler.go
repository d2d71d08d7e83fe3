package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/middleware"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	exportService  *services.ExportService
}

func NewPaymentHandler(paymentService *services.PaymentService, exportService *services.ExportService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, exportService: exportService}
}

type CreatePaymentRequest struct {
	StudentID      uint    `json:"student_id" binding:"required"`
	FeeStructureID uint    `json:"fee_structure_id" binding:"required"`
	Amount         float64 `json:"amount"`
	PaymentMethod  string  `json:"payment_method" binding:"required"`
	PaymentDate    *string `json:"payment_date"`
	DueDate        *string `json:"due_date"`
	TransactionID  *string `json:"transaction_id"`
	AccountName    *string `json:"account_name"`
	Remarks        *string `json:"remarks"`
}

type UpdatePaymentRequest struct {
	Amount        *float64 `json:"amount"`
	PaymentMethod *string  `json:"payment_method"`
	PaymentDate   *string  `json:"payment_date"`
	DueDate       *string  `json:"due_date"`
	TransactionID *string  `json:"transaction_id"`
	AccountName   *string  `json:"account_name"`
	Remarks       *string  `json:"remarks"`
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// @Summary List Payments
// @Description Get a paginated list of fee payments
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = strings.ToUpper(c.Query("status"))
	query.Filters["payment_method"] = strings.ToUpper(c.Query("payment_method"))
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")

	if search := c.Query("search"); search != "" {
		query.Filters["search_term"] = search
	}

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.FeePaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.FeePaymentResponse
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Record Payment
// @Description Records a fee payment; status is derived and a receipt is issued when fully paid
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment body CreatePaymentRequest true "Payment data"
// @Success 201 {object} models.FeePaymentResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentDate, err := parseDatePtr(req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_date must be YYYY-MM-DD"})
		return
	}
	dueDate, err := parseDatePtr(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), services.CreatePaymentInput{
		StudentID:      req.StudentID,
		FeeStructureID: req.FeeStructureID,
		Amount:         req.Amount,
		PaymentMethod:  strings.ToUpper(req.PaymentMethod),
		PaymentDate:    paymentDate,
		DueDate:        dueDate,
		TransactionID:  req.TransactionID,
		AccountName:    req.AccountName,
		Remarks:        req.Remarks,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse()})
}

// @Summary Update Payment
// @Description Edits a payment and re-derives its status
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param payment body UpdatePaymentRequest true "Fields to change"
// @Success 200 {object} models.FeePaymentResponse
// @Security BearerAuth
// @Router /payments/{payment_id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentDate, err := parseDatePtr(req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_date must be YYYY-MM-DD"})
		return
	}
	dueDate, err := parseDatePtr(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
		return
	}

	var method *string
	if req.PaymentMethod != nil {
		upper := strings.ToUpper(*req.PaymentMethod)
		method = &upper
	}

	payment, err := h.paymentService.Update(c.Request.Context(), uint(id), services.UpdatePaymentInput{
		Amount:        req.Amount,
		PaymentMethod: method,
		PaymentDate:   paymentDate,
		DueDate:       dueDate,
		TransactionID: req.TransactionID,
		AccountName:   req.AccountName,
		Remarks:       req.Remarks,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Delete Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err := h.paymentService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary Recompute Payment Status
// @Description Re-derives one payment's status against today's date
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.FeePaymentResponse
// @Security BearerAuth
// @Router /payments/{payment_id}/recompute [post]
func (h *PaymentHandler) Recompute(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.RecomputeStatus(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Collection Summary
// @Description Totals collected between two dates plus counts by status
// @Tags Payments
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} services.CollectionSummary
// @Security BearerAuth
// @Router /payments/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	from, to, err := h.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	summary, err := h.paymentService.Summary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Export Collections
// @Description Downloads the collection report as CSV or XLSX
// @Tags Payments
// @Produce octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	from, to, err := h.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	query := repository.NewListQuery()
	query.PerPage = 10000
	query.Filters["start_date"] = from.Format("2006-01-02")
	query.Filters["end_date"] = to.Format("2006-01-02")

	payments, _, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.paymentService.Summary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var data []byte
	var filename, contentType string
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, filename, err = h.exportService.ExportXLSX(c.Request.Context(), payments, summary)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		data, filename, err = h.exportService.ExportCSV(c.Request.Context(), payments, summary)
		contentType = "text/csv"
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *PaymentHandler) parseRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if s := c.Query("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, err
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	return from, to, nil
}
