package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/google/uuid"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, COALESCE(avatar, ''), password_hash, COALESCE(totp_secret, ''),
	totp_enabled, user_type, company_name, salary_day, college_name, monthly_income, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var userType string
	var salaryDay sql.NullInt32
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Avatar,
		&u.PasswordHash,
		&u.TOTPSecret,
		&u.TOTPEnabled,
		&userType,
		&u.FinancialProfile.CompanyName,
		&salaryDay,
		&u.FinancialProfile.CollegeName,
		&u.FinancialProfile.MonthlyIncome,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.FinancialProfile.UserType = models.UserType(userType)
	if salaryDay.Valid {
		u.FinancialProfile.SalaryDay = int(salaryDay.Int32)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.FinancialProfile.UserType == "" {
		u.FinancialProfile.UserType = models.UserUnspecified
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.PasswordHash, u.Name, string(u.FinancialProfile.UserType), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, avatar string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, avatar = $2, updated_at = NOW()
		WHERE id = $3
	`, name, avatar, id)
	return affectedOrNotFound(res, err)
}

func (r *UserRepository) UpdateFinancialProfile(ctx context.Context, id string, p models.FinancialProfile) error {
	salaryDay := sql.NullInt32{Int32: int32(p.SalaryDay), Valid: p.SalaryDay > 0}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET user_type = $2, company_name = $3, salary_day = $4, college_name = $5,
			monthly_income = $6, updated_at = NOW()
		WHERE id = $1
	`, id, string(p.UserType), p.CompanyName, salaryDay, p.CollegeName, p.MonthlyIncome)
	return affectedOrNotFound(res, err)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`, hash, id)
	return affectedOrNotFound(res, err)
}

func (r *UserRepository) SetTOTP(ctx context.Context, id, secret string, enabled bool) error {
	stored := sql.NullString{String: secret, Valid: secret != ""}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET totp_secret = $1, totp_enabled = $2, updated_at = NOW()
		WHERE id = $3
	`, stored, enabled, id)
	return affectedOrNotFound(res, err)
}

// Delete removes the user; owned rows go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affectedOrNotFound(res, err)
}

// ============================================================================
// AI CHAT HISTORY
// ============================================================================

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.AIChat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_chats (id, user_id, query, reply, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, chat.ID, chat.UserID, chat.Query, chat.Reply, chat.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) Recent(ctx context.Context, userID string, limit int) ([]models.AIChat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, query, reply, created_at
		FROM ai_chats
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer rows.Close()

	out := []models.AIChat{}
	for rows.Next() {
		var c models.AIChat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Query, &c.Reply, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
