package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/unclebandit/purchase-mailchimp-sync/internal/errors"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
)

// MaxResyncRecords caps one bulk run.
const MaxResyncRecords = 1000

// PurchaseQuery selects purchases for a bulk resync. Bounds are inclusive.
type PurchaseQuery struct {
	ContactID *int
	From      *time.Time
	To        *time.Time
	Limit     int
	// None forces an empty result (e.g. the email filter matched no contact).
	None bool
}

// String is the human readable selector shown in resync reports.
func (q PurchaseQuery) String() string {
	if q.None {
		return "none (no contact matches email)"
	}
	parts := []string{}
	if q.ContactID != nil {
		parts = append(parts, fmt.Sprintf("contact_id=%d", *q.ContactID))
	}
	if q.From != nil {
		parts = append(parts, "purchased_at>="+q.From.UTC().Format(time.RFC3339))
	}
	if q.To != nil {
		parts = append(parts, "purchased_at<="+q.To.UTC().Format(time.RFC3339))
	}
	parts = append(parts, "sort=purchased_at", fmt.Sprintf("limit=%d", q.limit()))
	return strings.Join(parts, ", ")
}

func (q PurchaseQuery) limit() int {
	if q.Limit <= 0 || q.Limit > MaxResyncRecords {
		return MaxResyncRecords
	}
	return q.Limit
}

type PurchaseRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.Purchase, error)
	Find(ctx context.Context, q PurchaseQuery) ([]*model.Purchase, error)
	MarkSynced(ctx context.Context, id int, at time.Time) error
}

type PurchaseRepository struct {
	DB *sql.DB
}

const purchaseColumns = `id, contact_id, purchased_at, session_meta, line_items_text, mc_synced_at`

func (r *PurchaseRepository) GetByID(ctx context.Context, id int) (*model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id=$1`
	p, err := scanPurchase(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewPurchaseNotFound(id)
		}
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepository) Find(ctx context.Context, q PurchaseQuery) ([]*model.Purchase, error) {
	purchases := []*model.Purchase{}
	if q.None {
		return purchases, nil
	}

	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if q.ContactID != nil {
		query += fmt.Sprintf(" AND contact_id=$%d", argPos)
		args = append(args, *q.ContactID)
		argPos++
	}
	if q.From != nil {
		query += fmt.Sprintf(" AND purchased_at>=$%d", argPos)
		args = append(args, *q.From)
		argPos++
	}
	if q.To != nil {
		query += fmt.Sprintf(" AND purchased_at<=$%d", argPos)
		args = append(args, *q.To)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY purchased_at, id LIMIT $%d", argPos)
	args = append(args, q.limit())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// MarkSynced writes only the sync marker so no other column (and no save hook) is touched.
func (r *PurchaseRepository) MarkSynced(ctx context.Context, id int, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE purchases SET mc_synced_at=$1 WHERE id=$2`, at, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*model.Purchase, error) {
	var (
		p    model.Purchase
		meta []byte
		text sql.NullString
	)
	if err := row.Scan(&p.ID, &p.ContactID, &p.PurchasedAt, &meta, &text, &p.SyncedAt); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		p.SessionMeta = meta
	}
	p.LineItemsText = text.String
	return &p, nil
}

var _ PurchaseRepositoryInterface = (*PurchaseRepository)(nil)
