package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooldesk/fees-api/internal/services"
	"github.com/schooldesk/fees-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	AcademicYear *AcademicYearHandler
	ClassGrade   *ClassGradeHandler
	Family       *FamilyHandler
	Student      *StudentHandler
	FeeStructure *FeeStructureHandler
	Payment      *PaymentHandler
	GroupPayment *GroupPaymentHandler
	Receipt      *ReceiptHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, store *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		AcademicYear: NewAcademicYearHandler(svcs.AcademicYear),
		ClassGrade:   NewClassGradeHandler(svcs.ClassGrade),
		Family:       NewFamilyHandler(svcs.Family, svcs.Student, svcs.GroupPayment),
		Student:      NewStudentHandler(svcs.Student, svcs.Payment),
		FeeStructure: NewFeeStructureHandler(svcs.FeeStructure),
		Payment:      NewPaymentHandler(svcs.Payment, svcs.Export),
		GroupPayment: NewGroupPaymentHandler(svcs.GroupPayment),
		Receipt:      NewReceiptHandler(svcs.Receipt, store),
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var referentialErr *services.ReferentialError
	var invariantErr *services.InvariantViolation

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "field": conflictErr.Field})
	case errors.As(err, &referentialErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": referentialErr.Error(), "entity": referentialErr.Entity})
	case errors.As(err, &invariantErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": invariantErr.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
