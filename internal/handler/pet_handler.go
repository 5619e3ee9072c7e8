package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pet-platform/service-registry/internal/application"
	"github.com/pet-platform/service-registry/internal/platform/middleware"
	"github.com/pet-platform/service-registry/internal/platform/response"
)

// Paging bounds for the pet listing.
const (
	defaultPageNumber = 0
	defaultPageSize   = 25
	maxPageSize       = 100
)

// PetHandler handles HTTP requests for pet registry operations.
type PetHandler struct {
	service *application.PetService
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(service *application.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// RegisterRoutes registers all pet routes behind api-key auth.
func (h *PetHandler) RegisterRoutes(r *gin.RouterGroup, apiKey string) {
	pets := r.Group("/api/v1/pets")
	pets.Use(middleware.APIKeyAuth(apiKey))
	{
		pets.POST("", h.CreatePet)
		pets.GET("", h.ListPets)
		pets.GET("/:id", h.GetPet)
		pets.PUT("/:id", h.UpdatePet)
		pets.DELETE("/:id", h.DeletePet)
		pets.PUT("/:id/photo", h.UploadPhoto)
		pets.GET("/:id/photo", h.DownloadPhoto)
	}
}

// CreatePet registers a new pet and returns its id.
func (h *PetHandler) CreatePet(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"id": result.ID})
}

// ListPets returns one page of the client's pets, newest first.
func (h *PetHandler) ListPets(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pageNumber, pageSize, err := parsePaging(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.service.FindAllByClient(c.Request.Context(), clientID, pageNumber, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, page)
}

// GetPet returns a single pet with its owner.
func (h *PetHandler) GetPet(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}

	result, err := h.service.FindByID(c.Request.Context(), petID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePet replaces the pet's name and type.
func (h *PetHandler) UpdatePet(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}

	var req application.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.UpdateByID(c.Request.Context(), petID, clientID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// DeletePet removes the pet record.
func (h *PetHandler) DeletePet(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}

	if err := h.service.DeleteByID(c.Request.Context(), petID, clientID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// UploadPhoto attaches a photo to the pet from a multipart form.
func (h *PetHandler) UploadPhoto(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "file part is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.UploadPhoto(c.Request.Context(), petID, clientID, fileBytes, fileHeader.Filename); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// DownloadPhoto streams the pet's current photo.
func (h *PetHandler) DownloadPhoto(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}

	file, err := h.service.DownloadPhoto(c.Request.Context(), petID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.MediaType, file.Bytes)
}

// parsePaging extracts pageNumber and pageSize, rejecting malformed or
// out-of-range values.
func parsePaging(c *gin.Context) (int, int, error) {
	pageNumber := defaultPageNumber
	if raw := c.Query("pageNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("pageNumber must be a non-negative integer")
		}
		pageNumber = n
	}

	pageSize := defaultPageSize
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}
		pageSize = n
	}

	return pageNumber, pageSize, nil
}
