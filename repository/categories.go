package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/google/uuid"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindAll(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) FindByName(ctx context.Context, userID, name string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1 AND name_key = $2
	`, userID, models.CategoryKey(name)).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, name_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.UserID, c.Name, models.CategoryKey(c.Name), c.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Rename(ctx context.Context, userID, id, newName string) error {
	if !isUUID(id) {
		return models.ErrNotFound
	}
	return WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := renameCategory(ctx, tx, userID, id, newName)
		return err
	})
}

// RenameCascade renames the category and moves its transactions in one
// database transaction, so either both tables change or neither does.
func (r *CategoryRepository) RenameCascade(ctx context.Context, userID, id, newName string) (int64, error) {
	if !isUUID(id) {
		return 0, models.ErrNotFound
	}
	var moved int64
	err := WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		current, err := renameCategory(ctx, tx, userID, id, newName)
		if err != nil {
			return err
		}
		moved, err = bulkUpdateCategory(ctx, tx, userID, current, newName)
		return err
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// renameCategory locks the row, renames it and returns the previous name.
func renameCategory(ctx context.Context, tx *sql.Tx, userID, id, newName string) (string, error) {
	var current string
	err := tx.QueryRowContext(ctx,
		`SELECT name FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID).Scan(&current)
	if err != nil {
		return "", notFound(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE categories SET name = $3, name_key = $4
		WHERE id = $1 AND user_id = $2
	`, id, userID, newName, models.CategoryKey(newName))
	if isUniqueViolation(err) {
		return "", models.ErrDuplicateName
	}
	if err != nil {
		return "", fmt.Errorf("rename category: %w", err)
	}
	return current, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return models.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	return affectedOrNotFound(res, err)
}
