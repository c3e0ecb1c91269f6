package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
)

// ContactRepositoryInterface defines methods used by service
type ContactRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.Contact, error)
	GetByEmail(ctx context.Context, email string) (*model.Contact, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// GetByID fetches a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id int) (*model.Contact, error) {
	query := `
        SELECT id, email, name, kind
        FROM contacts
        WHERE id = $1
    `
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// GetByEmail matches case-insensitively
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*model.Contact, error) {
	query := `
        SELECT id, email, name, kind
        FROM contacts
        WHERE LOWER(email) = $1
        ORDER BY id
        LIMIT 1
    `
	return r.scanOne(r.DB.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *ContactRepository) scanOne(row *sql.Row) (*model.Contact, error) {
	var c model.Contact
	if err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
