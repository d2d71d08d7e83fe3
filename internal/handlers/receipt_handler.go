package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
	"github.com/schooldesk/fees-api/internal/storage"
)

type ReceiptHandler struct {
	receiptService *services.ReceiptService
	storage        *storage.LocalStorage
}

func NewReceiptHandler(receiptService *services.ReceiptService, store *storage.LocalStorage) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, storage: store}
}

// @Summary List Receipts
// @Tags Receipts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /receipts [get]
func (h *ReceiptHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	receipts, total, err := h.receiptService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		responses = append(responses, receipts[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"receipts": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Resolve Receipt
// @Description Looks up a receipt by number and returns its target payment or group
// @Tags Receipts
// @Produce json
// @Param receipt_number path string true "Receipt number"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /receipts/{receipt_number} [get]
func (h *ReceiptHandler) Show(c *gin.Context) {
	number := c.Param("receipt_number")

	receipt, payment, group, err := h.receiptService.Resolve(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"receipt": receipt.ToResponse()}
	if payment != nil {
		resp["payment"] = payment.ToResponse()
	}
	if group != nil {
		resp["group_payment"] = group.ToResponse()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Download Receipt PDF
// @Description Streams the rendered receipt, generating it on demand
// @Tags Receipts
// @Produce application/pdf
// @Param receipt_number path string true "Receipt number"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /receipts/{receipt_number}/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	number := c.Param("receipt_number")

	receipt, err := h.receiptService.FindByNumber(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	if receipt.PDFFilePath == nil || !h.storage.Exists(*receipt.PDFFilePath) {
		if err := h.receiptService.Render(c.Request.Context(), number); err != nil {
			respondError(c, err)
			return
		}
		receipt, err = h.receiptService.FindByNumber(c.Request.Context(), number)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if receipt.PDFFilePath == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "receipt PDF is not available"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+number+".pdf")
	c.File(h.storage.GetFullPath(*receipt.PDFFilePath))
}
