package models

import "time"

// Suggestion pre-fills a transaction form. Category is nil when nothing fits.
type Suggestion struct {
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
	Source   string   `json:"source,omitempty"`
}

func EmptySuggestion() Suggestion {
	return Suggestion{Category: nil, Tags: []string{}}
}

// SuggestionCategories is the closed list offered to the model.
var SuggestionCategories = []string{
	"Food & Dining",
	"Groceries",
	"Transport",
	"Shopping",
	"Entertainment",
	"Travel",
	"Bills & Utilities",
	"Health & Wellness",
	"Personal Care",
	"Education",
	"Gifts",
	"Other",
}

type SuggestRequest struct {
	Description string `json:"description" binding:"required"`
}

// ============================================================================
// AI CHAT
// ============================================================================

type AIChat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}
