package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"
)

const (
	chatLookbackMonths  = 6
	chatMaxTransactions = 200
	chatHistoryLimit    = 20
)

// AssistantService answers questions about a user's recent spending.
type AssistantService struct {
	ai           TextGenerator
	transactions TransactionStore
	chats        ChatStore
	timeout      time.Duration
	now          func() time.Time
}

func NewAssistantService(ai TextGenerator, transactions TransactionStore, chats ChatStore, timeout time.Duration) *AssistantService {
	if ai == nil {
		ai = DisabledGenerator{}
	}
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &AssistantService{
		ai:           ai,
		transactions: transactions,
		chats:        chats,
		timeout:      timeout,
		now:          time.Now,
	}
}

// chatTransaction is the slice of a transaction the model gets to see.
type chatTransaction struct {
	Type     models.TransactionKind `json:"type"`
	Amount   string                 `json:"amount"`
	Category string                 `json:"category"`
	Merchant string                 `json:"merchant"`
	Date     string                 `json:"date"`
}

// Chat answers query and stores the exchange. Model failures are returned
// as ErrUpstreamUnavailable and nothing is stored.
func (s *AssistantService) Chat(ctx context.Context, userID, query string) (*models.AIChat, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("query", "is required")
	}

	from := s.now().AddDate(0, -chatLookbackMonths, 0)
	txns, err := s.transactions.Find(ctx, userID, &models.DateRange{From: from})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txns) > chatMaxTransactions {
		txns = txns[:chatMaxTransactions]
	}

	prompt, err := chatPrompt(txns, query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		utils.LogAIAction("chat failed", "chat", err)
		return nil, err
	}

	chat := &models.AIChat{
		UserID:    userID,
		Query:     query,
		Reply:     strings.TrimSpace(reply),
		CreatedAt: s.now(),
	}
	if err := s.chats.Create(context.WithoutCancel(ctx), chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	utils.LogAIAction("chat answered", "chat", nil)
	return chat, nil
}

// History returns the latest exchanges, newest first.
func (s *AssistantService) History(ctx context.Context, userID string) ([]models.AIChat, error) {
	return s.chats.Recent(ctx, userID, chatHistoryLimit)
}

func chatPrompt(txns []models.Transaction, query string) (string, error) {
	rows := make([]chatTransaction, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, chatTransaction{
			Type:     t.Kind,
			Amount:   t.Amount.StringFixed(2),
			Category: t.Category,
			Merchant: t.Merchant,
			Date:     t.Date.Format("2006-01-02"),
		})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode chat context: %w", err)
	}

	return fmt.Sprintf(`You are an AI financial assistant for a personal expense tracker app.
Use the following transaction data to answer the user's question about their finances.
Respond in a friendly, helpful tone in under 5 sentences.

Examples:
- "You spent 12,000 on Food last month, mostly with Swiggy."
- "Your top 3 categories this month are Shopping, Food, and Transport."

Here is the user's data (latest %d entries):
%s

Question: %q`, chatMaxTransactions, data, query), nil
}
