// internal/model/contact.go
package model

// ContactKindBuyer is the only contact kind purchases are synced for.
const ContactKindBuyer = "buyer"

type Contact struct {
	ID    int    `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Kind  string `db:"kind" json:"kind"`
}
