package documents

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler exposes file upload and contract rendering over HTTP
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("/upload", h.Upload)
		docs.POST("/contracts", h.GenerateContract)
	}
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	folder := c.DefaultPostForm("folder", "uploads")

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	contentType := file.Header.Get("Content-Type")
	url, err := h.service.UploadFile(c.Request.Context(), f, folder, file.Filename, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h *Handler) GenerateContract(c *gin.Context) {
	var req struct {
		ContractType   string `json:"contract_type" binding:"required"`
		ConsultantName string `json:"consultant_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.service.GenerateContractDocument(c.Request.Context(), req.ContractType, req.ConsultantName, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
