package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
)

type StudentHandler struct {
	studentService *services.StudentService
	paymentService *services.PaymentService
}

func NewStudentHandler(studentService *services.StudentService, paymentService *services.PaymentService) *StudentHandler {
	return &StudentHandler{studentService: studentService, paymentService: paymentService}
}

type StudentRequest struct {
	FirstName       string  `json:"first_name" binding:"required"`
	LastName        string  `json:"last_name"`
	FatherName      string  `json:"father_name"`
	DateOfBirth     string  `json:"date_of_birth" binding:"required"`
	Gender          string  `json:"gender" binding:"required"`
	ClassGradeID    *uint   `json:"class_grade_id"`
	AdmissionDate   *string `json:"admission_date"`
	GuardianName    string  `json:"guardian_name"`
	GuardianContact string  `json:"guardian_contact"`
	Address         *string `json:"address"`
	FamilyID        *uint   `json:"family_id"`
	IsActive        *bool   `json:"is_active"`
}

func (r *StudentRequest) toInput() (services.StudentInput, error) {
	dob, err := time.Parse("2006-01-02", r.DateOfBirth)
	if err != nil {
		return services.StudentInput{}, err
	}
	input := services.StudentInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		FatherName:      r.FatherName,
		DateOfBirth:     dob,
		Gender:          strings.ToUpper(r.Gender),
		ClassGradeID:    r.ClassGradeID,
		GuardianName:    r.GuardianName,
		GuardianContact: r.GuardianContact,
		Address:         r.Address,
		FamilyID:        r.FamilyID,
		IsActive:        r.IsActive,
	}
	if r.AdmissionDate != nil {
		adm, err := time.Parse("2006-01-02", *r.AdmissionDate)
		if err != nil {
			return services.StudentInput{}, err
		}
		input.AdmissionDate = &adm
	}
	return input, nil
}

// @Summary List Students
// @Description Get a paginated list of students
// @Tags Students
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name or code"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["class_grade_id"] = c.Query("class_grade_id")
	query.Filters["family_id"] = c.Query("family_id")
	query.Filters["is_active"] = c.Query("is_active")

	if search := c.Query("search"); search != "" {
		query.Filters["search_term"] = search
	}

	students, total, err := h.studentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.StudentResponse, 0, len(students))
	for i := range students {
		responses = append(responses, students[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"students": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Student
// @Tags Students
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} models.StudentResponse
// @Security BearerAuth
// @Router /students/{student_id} [get]
func (h *StudentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("student_id"), 10, 32)
	student, err := h.studentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student.ToResponse()})
}

// @Summary Create Student
// @Description Registers a student; the student code and admission number are generated
// @Tags Students
// @Accept json
// @Produce json
// @Param student body StudentRequest true "Student data"
// @Success 201 {object} models.StudentResponse
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": student.ToResponse()})
}

// @Summary Update Student
// @Tags Students
// @Accept json
// @Produce json
// @Param student_id path int true "Student ID"
// @Param student body StudentRequest true "Student data"
// @Success 200 {object} models.StudentResponse
// @Security BearerAuth
// @Router /students/{student_id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("student_id"), 10, 32)

	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), uint(id), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student.ToResponse()})
}

// @Summary Delete Student
// @Description Removes a student and their payment history
// @Tags Students
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /students/{student_id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("student_id"), 10, 32)
	if err := h.studentService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary Student Payments
// @Description Lists all fee payments of a student
// @Tags Students
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /students/{student_id}/payments [get]
func (h *StudentHandler) Payments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("student_id"), 10, 32)

	payments, err := h.paymentService.FindByStudent(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.FeePaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
