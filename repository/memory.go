package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory stores back DATA_BACKEND=memory and the test suites.

// ============================================================================
// TRANSACTIONS
// ============================================================================

type MemoryTransactionRepository struct {
	mu    sync.RWMutex
	items map[string]models.Transaction
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{items: make(map[string]models.Transaction)}
}

func (r *MemoryTransactionRepository) Find(ctx context.Context, userID string, dr *models.DateRange) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Transaction{}
	for _, t := range r.items {
		if t.UserID != userID {
			continue
		}
		if dr != nil && !dr.Contains(t.Date) {
			continue
		}
		out = append(out, cloneTransaction(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryTransactionRepository) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	c := cloneTransaction(t)
	return &c, nil
}

func (r *MemoryTransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.items[t.ID] = cloneTransaction(*t)
	return nil
}

func (r *MemoryTransactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[t.ID]
	if !ok || existing.UserID != t.UserID {
		return models.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	r.items[t.ID] = cloneTransaction(*t)
	return nil
}

func (r *MemoryTransactionRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryTransactionRepository) BulkUpdateCategory(ctx context.Context, userID, oldName, newName string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldKey := models.CategoryKey(oldName)
	var n int64
	for id, t := range r.items {
		if t.UserID == userID && models.CategoryKey(t.Category) == oldKey {
			t.Category = newName
			t.UpdatedAt = time.Now()
			r.items[id] = t
			n++
		}
	}
	return n, nil
}

func cloneTransaction(t models.Transaction) models.Transaction {
	t.Tags = append([]string{}, t.Tags...)
	return t
}

// ============================================================================
// BUDGETS
// ============================================================================

type MemoryBudgetRepository struct {
	mu    sync.Mutex
	items []models.Budget
}

func NewMemoryBudgetRepository() *MemoryBudgetRepository {
	return &MemoryBudgetRepository{}
}

func (r *MemoryBudgetRepository) FindAll(ctx context.Context, userID string) ([]models.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Budget{}
	for _, b := range r.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBudgetRepository) indexOf(userID, category string) int {
	key := models.CategoryKey(category)
	for i, b := range r.items {
		if b.UserID == userID && models.CategoryKey(b.Category) == key {
			return i
		}
	}
	return -1
}

func (r *MemoryBudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(b.UserID, b.Category) >= 0 {
		return models.ErrDuplicateName
	}
	r.insert(b)
	return nil
}

func (r *MemoryBudgetRepository) insert(b *models.Budget) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.items = append(r.items, *b)
}

func (r *MemoryBudgetRepository) FindOneOrCreate(ctx context.Context, userID, category string, defaultLimit decimal.Decimal) (*models.Budget, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(userID, category); i >= 0 {
		b := r.items[i]
		return &b, false, nil
	}
	b := &models.Budget{UserID: userID, Category: category, Limit: defaultLimit}
	r.insert(b)
	return b, true, nil
}

func (r *MemoryBudgetRepository) UpdateLimit(ctx context.Context, userID, id string, limit decimal.Decimal) (*models.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.items {
		if b.ID == id && b.UserID == userID {
			r.items[i].Limit = limit
			r.items[i].UpdatedAt = time.Now()
			updated := r.items[i]
			return &updated, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryBudgetRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.items {
		if b.ID == id && b.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// ============================================================================
// CATEGORIES
// ============================================================================

type MemoryCategoryRepository struct {
	mu    sync.Mutex
	items []models.Category
}

func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{}
}

func (r *MemoryCategoryRepository) FindAll(ctx context.Context, userID string) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Category{}
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryCategoryRepository) FindByName(ctx context.Context, userID, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.CategoryKey(name)
	for _, c := range r.items {
		if c.UserID == userID && models.CategoryKey(c.Name) == key {
			found := c
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.CategoryKey(c.Name)
	for _, existing := range r.items {
		if existing.UserID == c.UserID && models.CategoryKey(existing.Name) == key {
			return models.ErrDuplicateName
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()
	r.items = append(r.items, *c)
	return nil
}

func (r *MemoryCategoryRepository) Rename(ctx context.Context, userID, id, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.CategoryKey(newName)
	target := -1
	for i, c := range r.items {
		if c.UserID != userID {
			continue
		}
		if c.ID == id {
			target = i
			continue
		}
		if models.CategoryKey(c.Name) == key {
			return models.ErrDuplicateName
		}
	}
	if target < 0 {
		return models.ErrNotFound
	}
	r.items[target].Name = newName
	return nil
}

func (r *MemoryCategoryRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.items {
		if c.ID == id && c.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// ============================================================================
// USERS
// ============================================================================

type MemoryUserRepository struct {
	mu    sync.RWMutex
	items map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{items: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.FinancialProfile.UserType == "" {
		u.FinancialProfile.UserType = models.UserUnspecified
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.items[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryUserRepository) update(id string, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return models.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.items[id] = u
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, id, name, avatar string) error {
	return r.update(id, func(u *models.User) {
		u.Name = name
		u.Avatar = avatar
	})
}

func (r *MemoryUserRepository) UpdateFinancialProfile(ctx context.Context, id string, p models.FinancialProfile) error {
	return r.update(id, func(u *models.User) { u.FinancialProfile = p })
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *MemoryUserRepository) SetTOTP(ctx context.Context, id, secret string, enabled bool) error {
	return r.update(id, func(u *models.User) {
		u.TOTPSecret = secret
		u.TOTPEnabled = enabled
	})
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// ============================================================================
// AI CHATS
// ============================================================================

type MemoryChatRepository struct {
	mu    sync.Mutex
	items []models.AIChat
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{}
}

func (r *MemoryChatRepository) Create(ctx context.Context, chat *models.AIChat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	r.items = append(r.items, *chat)
	return nil
}

func (r *MemoryChatRepository) Recent(ctx context.Context, userID string, limit int) ([]models.AIChat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.AIChat{}
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}
