package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, user_id, category, amount_limit, created_at, updated_at`

func scanBudget(row scanner) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) FindAll(ctx context.Context, userID string) ([]models.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = $1
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category, category_key, amount_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.ID, b.UserID, b.Category, models.CategoryKey(b.Category), b.Limit, b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("insert budget: %w", inputError(err))
	}
	return nil
}

// FindOneOrCreate relies on the (user_id, category_key) unique index: a
// concurrent loser's insert becomes a no-op and it reads the winner's row.
func (r *BudgetRepository) FindOneOrCreate(ctx context.Context, userID, category string, defaultLimit decimal.Decimal) (*models.Budget, bool, error) {
	key := models.CategoryKey(category)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (id, user_id, category, category_key, amount_limit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category_key) DO NOTHING
		RETURNING `+budgetColumns,
		uuid.New().String(), userID, category, key, defaultLimit)

	b, err := scanBudget(row)
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("upsert budget: %w", err)
	}

	row = r.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = $1 AND category_key = $2
	`, userID, key)
	b, err = scanBudget(row)
	if err != nil {
		return nil, false, fmt.Errorf("load existing budget: %w", notFound(err))
	}
	return b, false, nil
}

func (r *BudgetRepository) UpdateLimit(ctx context.Context, userID, id string, limit decimal.Decimal) (*models.Budget, error) {
	if !isUUID(id) {
		return nil, models.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE budgets
		SET amount_limit = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+budgetColumns,
		id, userID, limit)
	b, err := scanBudget(row)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return models.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	return affectedOrNotFound(res, err)
}
