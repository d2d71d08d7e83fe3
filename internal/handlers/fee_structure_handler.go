package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
)

type FeeStructureHandler struct {
	feeService *services.FeeStructureService
}

func NewFeeStructureHandler(feeService *services.FeeStructureService) *FeeStructureHandler {
	return &FeeStructureHandler{feeService: feeService}
}

type FeeStructureRequest struct {
	FeeType        string `json:"fee_type" binding:"required"`
	FeeName        string `json:"fee_name" binding:"required"`
	Amount         float64 `json:"amount"`
	AcademicYearID uint    `json:"academic_year_id" binding:"required"`
	DueDateOffset  *int    `json:"due_date_offset"`
	IsRecurring    *bool   `json:"is_recurring"`
	IsActive       *bool   `json:"is_active"`
	ClassGradeIDs  []uint  `json:"class_grade_ids"`
}

func (r *FeeStructureRequest) toInput() services.FeeStructureInput {
	return services.FeeStructureInput{
		FeeType:        strings.ToUpper(r.FeeType),
		FeeName:        r.FeeName,
		Amount:         r.Amount,
		AcademicYearID: r.AcademicYearID,
		DueDateOffset:  r.DueDateOffset,
		IsRecurring:    r.IsRecurring,
		IsActive:       r.IsActive,
		ClassGradeIDs:  r.ClassGradeIDs,
	}
}

// @Summary List Fee Structures
// @Tags Fees
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param fee_type query string false "Filter by fee type"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /fee-structures [get]
func (h *FeeStructureHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["fee_type"] = c.Query("fee_type")
	query.Filters["academic_year_id"] = c.Query("academic_year_id")
	query.Filters["is_active"] = c.Query("is_active")

	fees, total, err := h.feeService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.FeeStructureResponse, 0, len(fees))
	for i := range fees {
		responses = append(responses, fees[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"fee_structures": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Fee Structure
// @Tags Fees
// @Produce json
// @Param fee_id path int true "Fee structure ID"
// @Success 200 {object} models.FeeStructureResponse
// @Security BearerAuth
// @Router /fee-structures/{fee_id} [get]
func (h *FeeStructureHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("fee_id"), 10, 32)
	fee, err := h.feeService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_structure": fee.ToResponse()})
}

// @Summary Fee Structures by Class
// @Description Lists the structures applicable to a class in an academic year
// @Tags Fees
// @Produce json
// @Param class_grade_id query int true "Class grade ID"
// @Param academic_year_id query int true "Academic year ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /fee-structures/by-class [get]
func (h *FeeStructureHandler) ByClass(c *gin.Context) {
	classID, _ := strconv.ParseUint(c.Query("class_grade_id"), 10, 32)
	yearID, _ := strconv.ParseUint(c.Query("academic_year_id"), 10, 32)
	if classID == 0 || yearID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "class_grade_id and academic_year_id are required"})
		return
	}

	fees, err := h.feeService.FindByClass(c.Request.Context(), uint(classID), uint(yearID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.FeeStructureResponse, 0, len(fees))
	for i := range fees {
		responses = append(responses, fees[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"fee_structures": responses})
}

// @Summary Create Fee Structure
// @Tags Fees
// @Accept json
// @Produce json
// @Param fee body FeeStructureRequest true "Fee structure data"
// @Success 201 {object} models.FeeStructureResponse
// @Security BearerAuth
// @Router /fee-structures [post]
func (h *FeeStructureHandler) Create(c *gin.Context) {
	var req FeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fee, err := h.feeService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"fee_structure": fee.ToResponse()})
}

// @Summary Update Fee Structure
// @Tags Fees
// @Accept json
// @Produce json
// @Param fee_id path int true "Fee structure ID"
// @Param fee body FeeStructureRequest true "Fee structure data"
// @Success 200 {object} models.FeeStructureResponse
// @Security BearerAuth
// @Router /fee-structures/{fee_id} [put]
func (h *FeeStructureHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("fee_id"), 10, 32)

	var req FeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fee, err := h.feeService.Update(c.Request.Context(), uint(id), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_structure": fee.ToResponse()})
}

// @Summary Delete Fee Structure
// @Description Refused when payments reference the structure
// @Tags Fees
// @Produce json
// @Param fee_id path int true "Fee structure ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /fee-structures/{fee_id} [delete]
func (h *FeeStructureHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("fee_id"), 10, 32)
	if err := h.feeService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
