package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Chart clients expect numeric amounts, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const (
	DefaultMerchant = "N/A"
	DefaultCategory = "Other"
)

func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ============================================================================
// TRANSACTION MODEL
// ============================================================================

type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Kind          TransactionKind `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	Merchant      string          `json:"merchant"`
	PaymentMethod string          `json:"payment_method"`
	Tags          []string        `json:"tags"`
	Notes         string          `json:"notes,omitempty"`
	Attachment    string          `json:"attachment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (t *Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// TransactionInput carries the user-editable fields. Edits replace every field.
type TransactionInput struct {
	Kind          TransactionKind
	Amount        decimal.Decimal
	Date          time.Time
	Category      string
	Merchant      string
	PaymentMethod string
	Tags          []string
	Notes         string
	Attachment    string
}

// Validate checks every field. A blank Category passes, it may still be inferred.
func (in *TransactionInput) Validate() error {
	if !in.Kind.Valid() {
		return NewValidationError("type", "must be income or expense")
	}
	if !in.Amount.IsPositive() {
		return NewValidationError("amount", "must be greater than zero")
	}
	if err := ValidateMoney("amount", in.Amount); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return NewValidationError("date", "is required")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return NewValidationError("payment_method", "is required")
	}
	if err := ValidateLength("payment_method", in.PaymentMethod, MaxPaymentMethodLength); err != nil {
		return err
	}
	if err := ValidateLength("merchant", in.Merchant, MaxMerchantLength); err != nil {
		return err
	}
	return ValidateLength("category", in.Category, MaxNameLength)
}

// Normalize trims text fields and applies defaults.
func (in *TransactionInput) Normalize() {
	in.Category = CleanCategoryName(in.Category)
	in.Merchant = strings.TrimSpace(in.Merchant)
	if in.Merchant == "" {
		in.Merchant = DefaultMerchant
	}
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Tags = CleanTags(in.Tags)
}

// Apply copies the input onto t.
func (in *TransactionInput) Apply(t *Transaction) {
	t.Kind = in.Kind
	t.Amount = in.Amount
	t.Date = in.Date
	t.Category = in.Category
	t.Merchant = in.Merchant
	t.PaymentMethod = in.PaymentMethod
	t.Tags = in.Tags
	t.Notes = in.Notes
	if in.Attachment != "" {
		t.Attachment = in.Attachment
	}
}

// SplitTags parses a comma separated tag list.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return CleanTags(strings.Split(raw, ","))
}

func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// TagList accepts either a JSON array or a comma separated string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = CleanTags(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewValidationError("tags", "must be a list or a comma separated string")
	}
	*t = SplitTags(raw)
	return nil
}

// TransactionRequest is the wire form of a create or edit.
type TransactionRequest struct {
	Type          string          `json:"type" form:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date" form:"date"`
	Category      string          `json:"category" form:"category"`
	Merchant      string          `json:"merchant" form:"merchant"`
	PaymentMethod string          `json:"payment_method" form:"payment_method"`
	Tags          TagList         `json:"tags"`
	Notes         string          `json:"notes" form:"notes"`
}

// Input converts the request, reading dates as YYYY-MM-DD or RFC 3339 in loc.
func (r *TransactionRequest) Input(loc *time.Location) (TransactionInput, error) {
	in := TransactionInput{
		Kind:          TransactionKind(strings.ToLower(strings.TrimSpace(r.Type))),
		Amount:        r.Amount,
		Category:      r.Category,
		Merchant:      r.Merchant,
		PaymentMethod: r.PaymentMethod,
		Tags:          []string(r.Tags),
		Notes:         r.Notes,
	}
	if loc == nil {
		loc = time.UTC
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	raw := strings.TrimSpace(r.Date)
	if raw == "" {
		return in, NewValidationError("date", "is required")
	}
	date, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		date, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return in, NewValidationError("date", "must be YYYY-MM-DD or RFC 3339")
		}
	}
	in.Date = date
	return in, nil
}
