package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"docchat-backend/internal/config"
	"docchat-backend/internal/logger"
	"docchat-backend/models"
	"docchat-backend/services"
	"docchat-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetupDocumentRoutes registers upload, listing and deletion endpoints.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, docService *services.DocumentService, sessions *services.SessionManager) {
	router.POST("/upload", func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file provided")
			return
		}
		defer file.Close()

		userID := userOrDefault(c.PostForm("user_id"))
		filename := filepath.Base(header.Filename)
		if filename == "" || filename == "." {
			utils.RespondWithBadRequest(c, "No file provided")
			return
		}
		if !services.IsAllowedFile(filename) {
			utils.RespondWithBadRequest(c, "File type not allowed")
			return
		}
		if header.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File too large")
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize+1))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read file")
			return
		}
		if int64(len(data)) > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File too large")
			return
		}

		// Keep a copy on disk; it is removed again if processing fails.
		savedPath := ""
		if err := os.MkdirAll(cfg.UploadFolder, 0o755); err == nil {
			savedPath = filepath.Join(cfg.UploadFolder, uuid.NewString()[:8]+"_"+filename)
			if err := os.WriteFile(savedPath, data, 0o644); err != nil {
				logger.Warn("failed to persist upload", "filename", filename, "error", err)
				savedPath = ""
			}
		}

		doc, chunks, err := docService.Ingest(c.Request.Context(), userID, filename, data)
		if err != nil {
			if savedPath != "" {
				os.Remove(savedPath)
			}
			if errors.Is(err, services.ErrUnsupportedFormat) || errors.Is(err, services.ErrExtractionFailed) {
				utils.RespondWithBadRequest(c, "Could not extract text from file")
				return
			}
			logger.Error("upload processing failed", "user_id", userID, "operation", "upload", "filename", filename, "error", err)
			utils.RespondWithInternalError(c, "Failed to process file")
			return
		}

		preview := doc.Text
		if len(preview) > 200 {
			preview = strings.TrimSpace(preview[:200]) + "..."
		}

		c.JSON(http.StatusOK, models.UploadResponse{
			Message:       "File uploaded and processed successfully",
			DocumentID:    doc.ID,
			Filename:      doc.Filename,
			ContentLength: doc.ContentLength,
			ChunkCount:    len(chunks),
			Preview:       preview,
		})
	})

	router.GET("/documents", func(c *gin.Context) {
		userID := userOrDefault(c.Query("user_id"))
		c.JSON(http.StatusOK, gin.H{"documents": sessions.DocumentSummaries(userID)})
	})

	router.DELETE("/delete-document", func(c *gin.Context) {
		var req models.DeleteDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Document ID is required")
			return
		}
		if strings.TrimSpace(req.DocumentID) == "" {
			utils.RespondWithBadRequest(c, "Document ID is required")
			return
		}
		userID := userOrDefault(req.UserID)

		if err := sessions.DeleteDocument(userID, req.DocumentID); err != nil {
			if errors.Is(err, services.ErrDocumentNotFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to delete document")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Document %s deleted successfully", req.DocumentID)})
	})
}
