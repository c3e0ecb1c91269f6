// internal/model/purchase.go
package model

import (
	"encoding/json"
	"time"
)

// Owned is implemented by records that belong to a contact.
type Owned interface {
	OwnerID() (int, bool)
}

type Purchase struct {
	ID            int             `db:"id" json:"id"`
	ContactID     *int            `db:"contact_id" json:"contact_id,omitempty"`
	PurchasedAt   time.Time       `db:"purchased_at" json:"purchased_at"`
	SessionMeta   json.RawMessage `db:"session_meta" json:"session_meta,omitempty"`
	LineItemsText string          `db:"line_items_text" json:"line_items_text"` // "id • qty • title • total" per line
	SyncedAt      *time.Time      `db:"mc_synced_at" json:"mc_synced_at,omitempty"`
}

func (p *Purchase) OwnerID() (int, bool) {
	if p.ContactID == nil {
		return 0, false
	}
	return *p.ContactID, true
}

func (p *Purchase) Synced() bool {
	return p.SyncedAt != nil
}

var _ Owned = (*Purchase)(nil)

// RecordSavedEvent is emitted by the payment-links side whenever a record is saved.
type RecordSavedEvent struct {
	Template string `json:"template"`
	ID       int    `json:"id"`
}
