package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/YasNanNan2/FutariNote/internal/models"
)

type InviteRepository interface {
	Create(ctx context.Context, code models.InviteCode) error
	FindByCode(ctx context.Context, code string) (models.InviteCode, error)
	FindByIssuer(ctx context.Context, issuerUserID string) ([]models.InviteCode, error)
	Delete(ctx context.Context, code string) error
}

// ErrCodeTaken signals a collision on the invite code primary key.
var ErrCodeTaken = fmt.Errorf("invite code already exists")

type SQLiteInviteRepository struct {
	database *sql.DB
}

func NewInviteRepository(database *sql.DB) *SQLiteInviteRepository {
	return &SQLiteInviteRepository{database: database}
}

// Create persists a new invite code. The primary key on code makes this a
// conditional insert: a colliding code returns ErrCodeTaken so the caller
// can regenerate.
func (repository *SQLiteInviteRepository) Create(ctx context.Context, code models.InviteCode) error {
	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO invite_codes (code, issuer_user_id, group_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		code.Code, code.IssuerUserID, code.GroupID, code.ExpiresAt, code.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "constraint failed") {
			return ErrCodeTaken
		}
		return fmt.Errorf("creating invite code: %w", err)
	}
	return nil
}

func (repository *SQLiteInviteRepository) FindByCode(ctx context.Context, code string) (models.InviteCode, error) {
	var invite models.InviteCode
	err := repository.database.QueryRowContext(ctx,
		"SELECT code, issuer_user_id, group_id, expires_at, created_at FROM invite_codes WHERE code = ?",
		code,
	).Scan(&invite.Code, &invite.IssuerUserID, &invite.GroupID, &invite.ExpiresAt, &invite.CreatedAt)
	if err != nil {
		return models.InviteCode{}, fmt.Errorf("finding invite code: %w", err)
	}
	return invite, nil
}

func (repository *SQLiteInviteRepository) FindByIssuer(ctx context.Context, issuerUserID string) ([]models.InviteCode, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT code, issuer_user_id, group_id, expires_at, created_at FROM invite_codes WHERE issuer_user_id = ? ORDER BY created_at",
		issuerUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding invite codes by issuer: %w", err)
	}
	defer rows.Close()

	var codes []models.InviteCode
	for rows.Next() {
		var invite models.InviteCode
		if err := rows.Scan(&invite.Code, &invite.IssuerUserID, &invite.GroupID, &invite.ExpiresAt, &invite.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning invite code: %w", err)
		}
		codes = append(codes, invite)
	}
	return codes, rows.Err()
}

func (repository *SQLiteInviteRepository) Delete(ctx context.Context, code string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM invite_codes WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("deleting invite code: %w", err)
	}
	return nil
}
