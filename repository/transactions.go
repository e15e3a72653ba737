package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, kind, amount, occurred_at, category, merchant,
	payment_method, tags, notes, attachment, created_at, updated_at`

func scanTransaction(row scanner) (*models.Transaction, error) {
	var t models.Transaction
	var kind string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&kind,
		&t.Amount,
		&t.Date,
		&t.Category,
		&t.Merchant,
		&t.PaymentMethod,
		pq.Array(&t.Tags),
		&t.Notes,
		&t.Attachment,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Kind = models.TransactionKind(kind)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func (r *TransactionRepository) Find(ctx context.Context, userID string, dr *models.DateRange) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if dr != nil {
		args = append(args, dr.From)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
		if !dr.To.IsZero() {
			args = append(args, dr.To)
			query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
		}
	}
	query += " ORDER BY occurred_at DESC, created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if !isUUID(id) {
		return nil, models.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, kind, amount, occurred_at, category, category_key,
			merchant, payment_method, tags, notes, attachment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, t.ID, t.UserID, string(t.Kind), t.Amount, t.Date, t.Category, models.CategoryKey(t.Category),
		t.Merchant, t.PaymentMethod, pq.Array(t.Tags), t.Notes, t.Attachment, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", inputError(err))
	}
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	if !isUUID(t.ID) {
		return models.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET kind = $3, amount = $4, occurred_at = $5, category = $6, category_key = $7,
			merchant = $8, payment_method = $9, tags = $10, notes = $11, attachment = $12, updated_at = $13
		WHERE id = $1 AND user_id = $2
	`, t.ID, t.UserID, string(t.Kind), t.Amount, t.Date, t.Category, models.CategoryKey(t.Category),
		t.Merchant, t.PaymentMethod, pq.Array(t.Tags), t.Notes, t.Attachment, t.UpdatedAt)
	return affectedOrNotFound(res, inputError(err))
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return models.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	return affectedOrNotFound(res, err)
}

func (r *TransactionRepository) BulkUpdateCategory(ctx context.Context, userID, oldName, newName string) (int64, error) {
	return bulkUpdateCategory(ctx, r.db, userID, oldName, newName)
}

func bulkUpdateCategory(ctx context.Context, db execer, userID, oldName, newName string) (int64, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE transactions
		SET category = $3, category_key = $4, updated_at = NOW()
		WHERE user_id = $1 AND category_key = $2
	`, userID, models.CategoryKey(oldName), newName, models.CategoryKey(newName))
	if err != nil {
		return 0, fmt.Errorf("bulk update category: %w", err)
	}
	return res.RowsAffected()
}
