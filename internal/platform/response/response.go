// Package response maps domain errors onto the HTTP surface in one place so
// every handler reports failures identically.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pet-platform/service-registry/internal/domain"
)

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent writes a 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error resolves a domain error to its HTTP status. Anything unmapped
// becomes a 500 without detail.
func Error(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		body := gin.H{"error": validationErr.Message}
		if len(validationErr.Fields) > 0 {
			body["fields"] = validationErr.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var forbiddenErr *domain.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Error()})
		return
	}

	var integrationErr *domain.IntegrationError
	if errors.As(err, &integrationErr) && !integrationErr.Critical {
		c.JSON(http.StatusBadGateway, gin.H{"error": integrationErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
