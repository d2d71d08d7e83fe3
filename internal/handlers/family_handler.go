package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
)

type FamilyHandler struct {
	familyService  *services.FamilyService
	studentService *services.StudentService
	groupService   *services.GroupPaymentService
}

func NewFamilyHandler(familyService *services.FamilyService, studentService *services.StudentService, groupService *services.GroupPaymentService) *FamilyHandler {
	return &FamilyHandler{
		familyService:  familyService,
		studentService: studentService,
		groupService:   groupService,
	}
}

type FamilyRequest struct {
	FatherName    string  `json:"father_name" binding:"required"`
	FatherCNIC    *string `json:"father_cnic"`
	FatherContact string  `json:"father_contact" binding:"required"`
	MotherName    *string `json:"mother_name"`
	Address       *string `json:"address"`
}

// @Summary List Families
// @Tags Families
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /families [get]
func (h *FamilyHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if search := c.Query("search"); search != "" {
		query.Filters["search_term"] = search
	}

	families, total, err := h.familyService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.FamilyResponse, 0, len(families))
	for i := range families {
		responses = append(responses, families[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"families": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Family
// @Tags Families
// @Produce json
// @Param family_id path int true "Family ID"
// @Success 200 {object} models.FamilyResponse
// @Security BearerAuth
// @Router /families/{family_id} [get]
func (h *FamilyHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("family_id"), 10, 32)
	family, err := h.familyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"family": family.ToResponse()})
}

// @Summary Create Family
// @Description Registers a family; the family code is generated
// @Tags Families
// @Accept json
// @Produce json
// @Param family body FamilyRequest true "Family data"
// @Success 201 {object} models.FamilyResponse
// @Security BearerAuth
// @Router /families [post]
func (h *FamilyHandler) Create(c *gin.Context) {
	var req FamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := h.familyService.Create(c.Request.Context(), services.FamilyInput{
		FatherName:    req.FatherName,
		FatherCNIC:    req.FatherCNIC,
		FatherContact: req.FatherContact,
		MotherName:    req.MotherName,
		Address:       req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"family": family.ToResponse()})
}

// @Summary Update Family
// @Tags Families
// @Accept json
// @Produce json
// @Param family_id path int true "Family ID"
// @Param family body FamilyRequest true "Family data"
// @Success 200 {object} models.FamilyResponse
// @Security BearerAuth
// @Router /families/{family_id} [put]
func (h *FamilyHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("family_id"), 10, 32)

	var req FamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := h.familyService.Update(c.Request.Context(), uint(id), services.FamilyInput{
		FatherName:    req.FatherName,
		FatherCNIC:    req.FatherCNIC,
		FatherContact: req.FatherContact,
		MotherName:    req.MotherName,
		Address:       req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"family": family.ToResponse()})
}

// @Summary Delete Family
// @Description Removes a family; students are detached, group payments removed
// @Tags Families
// @Produce json
// @Param family_id path int true "Family ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /families/{family_id} [delete]
func (h *FamilyHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("family_id"), 10, 32)
	if err := h.familyService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary Family Students
// @Tags Families
// @Produce json
// @Param family_id path int true "Family ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /families/{family_id}/students [get]
func (h *FamilyHandler) Students(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("family_id"), 10, 32)

	students, err := h.studentService.FindByFamily(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.StudentResponse, 0, len(students))
	for i := range students {
		responses = append(responses, students[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"students": responses})
}

// @Summary Family Group Payments
// @Tags Families
// @Produce json
// @Param family_id path int true "Family ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /families/{family_id}/group-payments [get]
func (h *FamilyHandler) GroupPayments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("family_id"), 10, 32)

	groups, err := h.groupService.FindByFamily(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.GroupPaymentResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"group_payments": responses})
}
