package account

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient       = "patient"
	RoleDoctor        = "doctor"
	RolePharmacist    = "pharmacist"
	RoleLabTechnician = "lab_technician"
	RoleReceptionist  = "receptionist"
	RoleAdmin         = "admin"
)

var validRoles = map[string]bool{
	RolePatient:       true,
	RoleDoctor:        true,
	RolePharmacist:    true,
	RoleLabTechnician: true,
	RoleReceptionist:  true,
	RoleAdmin:         true,
}

// User is an account for any of the application roles. Email
// uniqueness is enforced by a unique index, not application logic.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         string    `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
