package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/dgraph-io/ristretto"
)

// CategorySuggester pre-fills transaction forms. It never fails: when nothing
// can be suggested it returns models.EmptySuggestion().
type CategorySuggester interface {
	SuggestCategoryAndTags(ctx context.Context, text string) models.Suggestion
}

// NoopSuggester never suggests anything.
type NoopSuggester struct{}

func (NoopSuggester) SuggestCategoryAndTags(context.Context, string) models.Suggestion {
	return models.EmptySuggestion()
}

const (
	minSuggestionInput = 3
	maxSuggestedTags   = 5
)

type staticRule struct {
	keyword  string
	category string
	tags     []string
}

// Well known merchants resolve without calling the model.
var staticRules = sortRules([]staticRule{
	{"swiggy", "Food & Dining", []string{"delivery", "food"}},
	{"zomato", "Food & Dining", []string{"delivery", "food"}},
	{"uber eats", "Food & Dining", []string{"delivery", "food"}},
	{"starbucks", "Food & Dining", []string{"coffee", "cafe"}},
	{"mcdonald", "Food & Dining", []string{"fast food", "food"}},
	{"walmart", "Groceries", []string{"essentials", "household"}},
	{"bigbasket", "Groceries", []string{"essentials", "household"}},
	{"grocery", "Groceries", []string{"essentials", "food"}},
	{"uber", "Transport", []string{"ride", "commute"}},
	{"ola", "Transport", []string{"ride", "commute"}},
	{"metro", "Transport", []string{"commute", "public transport"}},
	{"fuel", "Transport", []string{"fuel", "car"}},
	{"amazon", "Shopping", []string{"online", "shopping"}},
	{"flipkart", "Shopping", []string{"online", "shopping"}},
	{"netflix", "Entertainment", []string{"streaming", "subscription"}},
	{"spotify", "Entertainment", []string{"music", "subscription"}},
	{"movie", "Entertainment", []string{"movies", "leisure"}},
	{"flight", "Travel", []string{"flights", "travel"}},
	{"hotel", "Travel", []string{"stay", "travel"}},
	{"electricity", "Bills & Utilities", []string{"utilities", "monthly"}},
	{"internet", "Bills & Utilities", []string{"utilities", "monthly"}},
	{"rent", "Bills & Utilities", []string{"housing", "monthly"}},
	{"pharmacy", "Health & Wellness", []string{"medicine", "health"}},
	{"gym", "Health & Wellness", []string{"fitness", "health"}},
	{"salon", "Personal Care", []string{"grooming", "self care"}},
	{"tuition", "Education", []string{"learning", "fees"}},
	{"udemy", "Education", []string{"courses", "learning"}},
	{"gift", "Gifts", []string{"gift", "family"}},
})

// sortRules puts longer keywords first so "uber eats" wins over "uber".
func sortRules(rules []staticRule) []staticRule {
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].keyword) > len(rules[j].keyword)
	})
	return rules
}

// SuggestionService resolves a suggestion from static rules, then the cache,
// then the model.
type SuggestionService struct {
	ai      TextGenerator
	cache   *ristretto.Cache
	ttl     time.Duration
	timeout time.Duration
}

func NewSuggestionService(ai TextGenerator, ttl, timeout time.Duration) (*SuggestionService, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10000,
		MaxCost:            10000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create suggestion cache: %w", err)
	}
	if ai == nil {
		ai = DisabledGenerator{}
	}
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &SuggestionService{ai: ai, cache: cache, ttl: ttl, timeout: timeout}, nil
}

func (s *SuggestionService) Close() {
	s.cache.Close()
}

func (s *SuggestionService) SuggestCategoryAndTags(ctx context.Context, text string) models.Suggestion {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if len(normalized) < minSuggestionInput {
		return models.EmptySuggestion()
	}

	if suggestion, ok := matchStaticRule(normalized); ok {
		return suggestion
	}

	if cached, ok := s.cache.Get(normalized); ok {
		if suggestion, ok := cached.(models.Suggestion); ok {
			suggestion.Source = "cache"
			return suggestion
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.ai.Generate(ctx, suggestionPrompt(text))
	if err != nil {
		utils.LogAIAction("suggestion fallback", "suggest-details", err)
		return models.EmptySuggestion()
	}

	suggestion, err := parseSuggestion(raw)
	if err != nil {
		utils.LogAIAction("unparseable suggestion", "suggest-details", err)
		return models.EmptySuggestion()
	}

	s.cache.SetWithTTL(normalized, suggestion, 1, s.ttl)
	s.cache.Wait()
	suggestion.Source = "ai"
	return suggestion
}

// matchStaticRule matches whole words only, so "ola" does not match "chocolate".
func matchStaticRule(normalized string) (models.Suggestion, bool) {
	words := " " + strings.Join(strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ") + " "
	for _, rule := range staticRules {
		if strings.Contains(words, " "+rule.keyword+" ") {
			category := rule.category
			return models.Suggestion{
				Category: &category,
				Tags:     append([]string{}, rule.tags...),
				Source:   "rules",
			}, true
		}
	}
	return models.Suggestion{}, false
}

func suggestionPrompt(description string) string {
	categories, _ := json.Marshal(models.SuggestionCategories)
	return fmt.Sprintf(`You are an expert financial assistant. Analyze a transaction description and suggest a category and tags.

Transaction Description: %q

Instructions:
1. Choose the single best category from this list: %s.
2. Generate 3 to 5 short, relevant tags describing the item, the purpose or the people involved.
3. Examples:
   - "Weekly shopping at Walmart" -> {"category": "Groceries", "tags": ["essentials", "food", "household"]}
   - "Flight ticket to New York" -> {"category": "Travel", "tags": ["flights", "vacation", "transport"]}
4. Respond ONLY with a JSON object: {"category": "ChosenCategory", "tags": ["tag1", "tag2", "tag3"]}`,
		description, categories)
}

// parseSuggestion maps the model reply onto the closed category list.
// Unknown categories become "Other".
func parseSuggestion(raw string) (models.Suggestion, error) {
	var reply struct {
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &reply); err != nil {
		return models.Suggestion{}, fmt.Errorf("decode suggestion: %w", err)
	}

	category := canonicalCategory(reply.Category)
	tags := make([]string, 0, maxSuggestedTags)
	for _, tag := range models.CleanTags(reply.Tags) {
		if len(tags) == maxSuggestedTags {
			break
		}
		tags = append(tags, strings.ToLower(tag))
	}
	return models.Suggestion{Category: &category, Tags: tags}, nil
}

func canonicalCategory(name string) string {
	for _, c := range models.SuggestionCategories {
		if models.SameCategory(c, name) {
			return c
		}
	}
	return models.DefaultCategory
}
