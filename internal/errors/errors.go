// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig means the Mailchimp API key or audience id is unusable.
	ErrInvalidConfig = errors.New("mailchimp config invalid")
	// ErrTransport wraps connection and timeout failures talking to Mailchimp.
	ErrTransport = errors.New("mailchimp transport error")
	// ErrInvalidSettings means a submitted settings value has the wrong type.
	ErrInvalidSettings = errors.New("invalid settings value")
)

// ErrPurchaseNotFound is returned when a purchase id has no row
type ErrPurchaseNotFound struct {
	PurchaseID int
}

func (e *ErrPurchaseNotFound) Error() string {
	return fmt.Sprintf("purchase with ID %d not found", e.PurchaseID)
}

// Helper constructor
func NewPurchaseNotFound(id int) error {
	return &ErrPurchaseNotFound{PurchaseID: id}
}
