package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/services"
)

// Handlers for the small catalogue resources: academic years and class grades.

type AcademicYearHandler struct {
	yearService *services.AcademicYearService
}

func NewAcademicYearHandler(yearService *services.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{yearService: yearService}
}

type AcademicYearRequest struct {
	YearName  string `json:"year_name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	IsCurrent bool   `json:"is_current"`
}

// @Summary List Academic Years
// @Tags Catalogue
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /academic-years [get]
func (h *AcademicYearHandler) Index(c *gin.Context) {
	years, err := h.yearService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"academic_years": years})
}

// @Summary Current Academic Year
// @Tags Catalogue
// @Produce json
// @Success 200 {object} models.AcademicYear
// @Security BearerAuth
// @Router /academic-years/current [get]
func (h *AcademicYearHandler) Current(c *gin.Context) {
	year, err := h.yearService.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"academic_year": year})
}

// @Summary Create Academic Year
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param year body AcademicYearRequest true "Academic year data"
// @Success 201 {object} models.AcademicYear
// @Security BearerAuth
// @Router /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req AcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	year, err := h.yearService.Create(c.Request.Context(), services.AcademicYearInput{
		YearName:  req.YearName,
		StartDate: start,
		EndDate:   end,
		IsCurrent: req.IsCurrent,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"academic_year": year})
}

// @Summary Set Current Academic Year
// @Tags Catalogue
// @Produce json
// @Param year_id path int true "Academic year ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /academic-years/{year_id}/current [put]
func (h *AcademicYearHandler) SetCurrent(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("year_id"), 10, 32)
	if err := h.yearService.SetCurrent(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ClassGradeHandler struct {
	gradeService *services.ClassGradeService
}

func NewClassGradeHandler(gradeService *services.ClassGradeService) *ClassGradeHandler {
	return &ClassGradeHandler{gradeService: gradeService}
}

type ClassGradeRequest struct {
	ClassName string `json:"class_name" binding:"required"`
	ClassCode string `json:"class_code" binding:"required"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

// @Summary List Class Grades
// @Tags Catalogue
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /class-grades [get]
func (h *ClassGradeHandler) Index(c *gin.Context) {
	grades, err := h.gradeService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"class_grades": grades})
}

// @Summary Create Class Grade
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param grade body ClassGradeRequest true "Class grade data"
// @Success 201 {object} models.ClassGrade
// @Security BearerAuth
// @Router /class-grades [post]
func (h *ClassGradeHandler) Create(c *gin.Context) {
	var req ClassGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade, err := h.gradeService.Create(c.Request.Context(), services.ClassGradeInput{
		ClassName: req.ClassName,
		ClassCode: req.ClassCode,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"class_grade": grade})
}

// @Summary Update Class Grade
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param grade_id path int true "Class grade ID"
// @Param grade body ClassGradeRequest true "Class grade data"
// @Success 200 {object} models.ClassGrade
// @Security BearerAuth
// @Router /class-grades/{grade_id} [put]
func (h *ClassGradeHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("grade_id"), 10, 32)

	var req ClassGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade, err := h.gradeService.Update(c.Request.Context(), uint(id), services.ClassGradeInput{
		ClassName: req.ClassName,
		ClassCode: req.ClassCode,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"class_grade": grade})
}
