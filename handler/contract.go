package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dzikrimr/tugasmk/middleware"
	"github.com/dzikrimr/tugasmk/model"
	"github.com/dzikrimr/tugasmk/pkg/logger"
	"github.com/dzikrimr/tugasmk/service"
)

// TextExtractor turns PDF bytes into per-page text.
type TextExtractor interface {
	Extract(ctx context.Context, pdfBytes []byte) ([]string, error)
}

// EntityRecognizer extracts categorized entities from one page of text.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) (model.EntitySet, error)
}

// DocumentRenderer converts filled HTML into PDF bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// DraftStorage persists uploaded PDFs and rendered drafts.
type DraftStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	UploadDraft(ctx context.Context, objectName string, pdfBytes []byte) (string, error)
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

type ContractHandler struct {
	storage      DraftStorage
	extractor    TextExtractor
	recognizer   EntityRecognizer
	mapper       *service.Mapper
	filler       *service.Filler
	renderer     DocumentRenderer
	store        *service.ContractStore
	templatePath string
}

func NewContractHandler(
	storage DraftStorage,
	extractor TextExtractor,
	recognizer EntityRecognizer,
	mapper *service.Mapper,
	filler *service.Filler,
	renderer DocumentRenderer,
	store *service.ContractStore,
	templatePath string,
) *ContractHandler {
	return &ContractHandler{
		storage:      storage,
		extractor:    extractor,
		recognizer:   recognizer,
		mapper:       mapper,
		filler:       filler,
		renderer:     renderer,
		store:        store,
		templatePath: templatePath,
	}
}

// Analyze accepts a scanned contract PDF and starts the extraction pipeline.
func (h *ContractHandler) Analyze(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	contractID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", tenant, contractID, header.Filename)

	if err := h.storage.UploadFile(c.Request.Context(), objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file: " + err.Error()})
		return
	}

	pdfURL, err := h.storage.GetPresignedURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	contract := &model.Contract{
		ID:        contractID,
		Filename:  header.Filename,
		Tenant:    tenant,
		PDFURL:    pdfURL,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	h.store.Save(contract)

	go h.runPipeline(contract.ID, pdfBytes)

	c.JSON(http.StatusOK, gin.H{
		"id":       contractID,
		"filename": header.Filename,
		"pdf_url":  pdfURL,
		"status":   model.StatusPending,
	})
}

// runPipeline performs extract, recognize, aggregate, and map for one
// contract, updating its status as it goes. Runs detached from the request.
func (h *ContractHandler) runPipeline(contractID string, pdfBytes []byte) {
	ctx := logger.WithContractID(context.Background(), contractID)

	h.store.UpdateStatus(contractID, model.StatusProcessing, "")

	pages, err := h.extractor.Extract(ctx, pdfBytes)
	if err != nil {
		logger.Error(ctx, "text extraction failed", "error", err)
		h.store.UpdateStatus(contractID, model.StatusFailed, "Text extraction failed: "+err.Error())
		return
	}
	logger.Info(ctx, "text extracted", "pages", len(pages))

	pageEntities := make([]model.EntitySet, 0, len(pages))
	for i, page := range pages {
		entities, err := h.recognizer.Recognize(ctx, page)
		if err != nil {
			logger.Error(ctx, "entity recognition failed", "page", i+1, "error", err)
			h.store.UpdateStatus(contractID, model.StatusFailed, "Entity recognition failed: "+err.Error())
			return
		}
		pageEntities = append(pageEntities, entities)
	}

	merged := service.Aggregate(pageEntities)
	fields := h.mapper.MapEntities(merged)

	h.store.UpdateAnalysis(contractID, len(pages), merged, fields)
	logger.Info(ctx, "contract analyzed",
		"organizations", len(merged[model.CategoryOrg]),
		"persons", len(merged[model.CategoryPer]),
		"dates", len(merged[model.CategoryDate]),
	)
}

// GenerateRequest optionally overrides mapped field values before filling.
type GenerateRequest struct {
	Fields map[string]string `json:"fields"`
}

// Generate fills the contract template with the mapped fields, renders it to
// PDF, and returns a link to the draft.
func (h *ContractHandler) Generate(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract := h.store.Get(id)
	if contract == nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	if contract.Status != model.StatusCompleted || contract.Fields == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Contract analysis is not completed"})
		return
	}

	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	fields := make(model.FieldMapping, len(contract.Fields))
	for key, value := range contract.Fields {
		fields[key] = value
	}
	// Manual corrections: only known schema keys may be overridden.
	for key, value := range req.Fields {
		if _, ok := fields[key]; ok {
			fields[key] = value
		}
	}

	templateBytes, err := os.ReadFile(h.templatePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load template: " + err.Error()})
		return
	}

	filled := h.filler.Fill(c.Request.Context(), string(templateBytes), fields)

	pdfBytes, err := h.renderer.Render(c.Request.Context(), filled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF: " + err.Error()})
		return
	}

	objectName := fmt.Sprintf("%s/%s/draft.pdf", tenant, id)
	draftURL, err := h.storage.UploadDraft(c.Request.Context(), objectName, pdfBytes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store draft: " + err.Error()})
		return
	}

	h.store.UpdateDraft(id, objectName, draftURL)

	c.JSON(http.StatusOK, gin.H{
		"id":        id,
		"draft_url": draftURL,
		"fields":    fields,
	})
}

// List returns all contracts for the current tenant
func (h *ContractHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	contracts := h.store.GetByTenant(tenant)

	// Entities and fields are omitted in the list view.
	result := make([]gin.H, len(contracts))
	for i, contract := range contracts {
		result[i] = gin.H{
			"id":         contract.ID,
			"filename":   contract.Filename,
			"status":     contract.Status,
			"pdf_url":    contract.PDFURL,
			"draft_url":  contract.DraftURL,
			"created_at": contract.CreatedAt.Format(time.RFC3339),
			"updated_at": contract.UpdatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

// Get returns a single contract with its entities and field mapping
func (h *ContractHandler) Get(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract := h.store.Get(id)
	if contract == nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	c.JSON(http.StatusOK, contract)
}

// GetStatus returns the processing status of a contract
func (h *ContractHandler) GetStatus(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract := h.store.Get(id)
	if contract == nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        contract.ID,
		"status":    contract.Status,
		"error_msg": contract.ErrorMsg,
	})
}

// Delete removes a contract and its stored draft
func (h *ContractHandler) Delete(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract := h.store.Get(id)
	if contract == nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	if contract.DraftObject != "" {
		if err := h.storage.DeleteFile(c.Request.Context(), contract.DraftObject); err != nil {
			logger.Warn(c.Request.Context(), "failed to delete draft object", "error", err)
		}
	}

	h.store.Delete(id)

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}
