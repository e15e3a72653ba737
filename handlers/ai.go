package handlers

import (
	"net/http"

	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/services"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	Suggester services.CategorySuggester
	Assistant *services.AssistantService
}

// SuggestDetails pre-fills category and tags. It answers 200 with an empty
// suggestion when nothing can be inferred.
func (h *AIHandler) SuggestDetails(c *gin.Context) {
	var req models.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, h.Suggester.SuggestCategoryAndTags(c.Request.Context(), req.Description))
}

func (h *AIHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	chat, err := h.Assistant.Chat(c.Request.Context(), middleware.GetUserID(c), req.Query)
	if err != nil {
		respondError(c, err, "AI assistant failed to respond")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": chat.Reply})
}

func (h *AIHandler) History(c *gin.Context) {
	history, err := h.Assistant.History(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch chat history")
		return
	}
	c.JSON(http.StatusOK, history)
}
