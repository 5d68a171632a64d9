package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"docchat-backend/internal/logger"
	"docchat-backend/models"
	"docchat-backend/services"
	"docchat-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes registers the chat, search and debug endpoints.
func SetupChatRoutes(router *gin.Engine, chatService *services.ChatService, sessions *services.SessionManager) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Message is required")
			return
		}
		userID := userOrDefault(req.UserID)

		reply, err := chatService.Chat(c.Request.Context(), userID, req.Message, req.UseDocuments)
		if err != nil {
			if errors.Is(err, services.ErrEmptyMessage) {
				utils.RespondWithBadRequest(c, "Message is required")
				return
			}
			utils.RespondWithInternalError(c, "Failed to generate response")
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{Response: reply})
	})

	router.POST("/chat-stream", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Message is required")
			return
		}
		userID := userOrDefault(req.UserID)

		events, err := chatService.ChatStream(c.Request.Context(), userID, req.Message, req.UseDocuments)
		if err != nil {
			if errors.Is(err, services.ErrEmptyMessage) {
				utils.RespondWithBadRequest(c, "Message is required")
				return
			}
			utils.RespondWithInternalError(c, "Failed to generate response")
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			utils.RespondWithInternalError(c, "Streaming not supported")
			return
		}

		for event := range events {
			switch {
			case event.Err != nil:
				writeSSE(c, flusher, gin.H{"error": "Failed to generate response"})
				return
			case event.Done:
				if _, err := c.Writer.WriteString("data: [DONE]\n\n"); err == nil {
					flusher.Flush()
				}
				return
			default:
				if !writeSSE(c, flusher, gin.H{"response": event.Response}) {
					// Client is gone; cancelling happens via the request
					// context, just stop reading.
					return
				}
			}
		}
	})

	router.POST("/search", func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Query is required")
			return
		}
		query := strings.TrimSpace(req.Query)
		if query == "" {
			utils.RespondWithBadRequest(c, "Query is required")
			return
		}
		userID := userOrDefault(req.UserID)

		contextText := chatService.BuildQueryContext(c.Request.Context(), userID, query)
		c.JSON(http.StatusOK, models.SearchResponse{
			Query:         query,
			ContextLength: len(contextText),
			Context:       contextText,
			HasResults:    contextText != "",
		})
	})

	router.GET("/debug/user-state", func(c *gin.Context) {
		userID := userOrDefault(c.Query("user_id"))
		c.JSON(http.StatusOK, sessions.UserState(userID))
	})
}

// writeSSE writes one data event and reports whether the write reached the
// client.
func writeSSE(c *gin.Context, flusher http.Flusher, payload gin.H) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal SSE payload", "error", err)
		return false
	}
	if _, err := c.Writer.WriteString("data: " + string(data) + "\n\n"); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
