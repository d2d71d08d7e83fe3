package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/middleware"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
)

type GroupPaymentHandler struct {
	groupService *services.GroupPaymentService
}

func NewGroupPaymentHandler(groupService *services.GroupPaymentService) *GroupPaymentHandler {
	return &GroupPaymentHandler{groupService: groupService}
}

type CreateGroupPaymentRequest struct {
	FamilyID      uint    `json:"family_id" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	PaymentDate   *string `json:"payment_date"`
	TransactionID *string `json:"transaction_id"`
	AccountName   *string `json:"account_name"`
	FeePaymentIDs []uint  `json:"fee_payment_ids"`
}

// @Summary List Group Payments
// @Tags GroupPayments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /group-payments [get]
func (h *GroupPaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["family_id"] = c.Query("family_id")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")

	groups, total, err := h.groupService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.GroupPaymentResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"group_payments": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Group Payment
// @Tags GroupPayments
// @Produce json
// @Param group_id path int true "Group payment ID"
// @Success 200 {object} models.GroupPaymentResponse
// @Security BearerAuth
// @Router /group-payments/{group_id} [get]
func (h *GroupPaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	group, err := h.groupService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_payment": group.ToResponse()})
}

// @Summary Record Group Payment
// @Description Bundles a family's payments under one group with a single receipt
// @Tags GroupPayments
// @Accept json
// @Produce json
// @Param group body CreateGroupPaymentRequest true "Group payment data"
// @Success 201 {object} models.GroupPaymentResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /group-payments [post]
func (h *GroupPaymentHandler) Create(c *gin.Context) {
	var req CreateGroupPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentDate, err := parseDatePtr(req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_date must be YYYY-MM-DD"})
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), services.CreateGroupPaymentInput{
		FamilyID:      req.FamilyID,
		PaymentMethod: strings.ToUpper(req.PaymentMethod),
		PaymentDate:   paymentDate,
		TransactionID: req.TransactionID,
		AccountName:   req.AccountName,
		FeePaymentIDs: req.FeePaymentIDs,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group_payment": group.ToResponse()})
}

type GroupEntryRequest struct {
	FeePaymentID uint `json:"fee_payment_id" binding:"required"`
}

// @Summary Add Group Entry
// @Description Attaches an ungrouped payment to a group and refreshes totals
// @Tags GroupPayments
// @Accept json
// @Produce json
// @Param group_id path int true "Group payment ID"
// @Param entry body GroupEntryRequest true "Member payment"
// @Success 200 {object} models.GroupPaymentResponse
// @Security BearerAuth
// @Router /group-payments/{group_id}/entries [post]
func (h *GroupPaymentHandler) AddEntry(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)

	var req GroupEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.AddEntry(c.Request.Context(), uint(id), req.FeePaymentID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_payment": group.ToResponse()})
}

// @Summary Remove Group Entry
// @Description Detaches a member payment and refreshes totals
// @Tags GroupPayments
// @Produce json
// @Param group_id path int true "Group payment ID"
// @Param payment_id path int true "Member payment ID"
// @Success 200 {object} models.GroupPaymentResponse
// @Security BearerAuth
// @Router /group-payments/{group_id}/entries/{payment_id} [delete]
func (h *GroupPaymentHandler) RemoveEntry(c *gin.Context) {
	groupID, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	paymentID, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	group, err := h.groupService.RemoveEntry(c.Request.Context(), uint(groupID), uint(paymentID), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_payment": group.ToResponse()})
}

// @Summary Recompute Group Totals
// @Tags GroupPayments
// @Produce json
// @Param group_id path int true "Group payment ID"
// @Success 200 {object} models.GroupPaymentResponse
// @Security BearerAuth
// @Router /group-payments/{group_id}/recompute [post]
func (h *GroupPaymentHandler) Recompute(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	group, err := h.groupService.Recompute(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_payment": group.ToResponse()})
}

// @Summary Delete Group Payment
// @Description Removes a group; member payments survive ungrouped
// @Tags GroupPayments
// @Produce json
// @Param group_id path int true "Group payment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /group-payments/{group_id} [delete]
func (h *GroupPaymentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err := h.groupService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
