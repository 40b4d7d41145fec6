package models

import (
	"encoding/json"
	"time"
)

// Role codes for portal users. Resident-class roles see the public portal;
// admin-class roles see the back-office.
const (
	RoleResident  = "resident"
	RoleOfficial  = "official"
	RoleSecretary = "secretary"
	RoleTreasurer = "treasurer"
	RoleCaptain   = "captain"
	RoleSuperUser = "superadmin"
)

// Verification states for a resident's PSA document review.
const (
	VerificationNone     = ""
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// IsAdminRole reports whether a role code belongs to the privileged admin set.
func IsAdminRole(role string) bool {
	switch role {
	case RoleOfficial, RoleSecretary, RoleTreasurer, RoleCaptain, RoleSuperUser:
		return true
	}
	return false
}

// IsResidentRole reports whether a role code is the resident class.
func IsResidentRole(role string) bool {
	return role == RoleResident
}

// User represents a registered portal user: a barangay resident or an
// official with back-office access.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // bcrypt hash, never exposed in API responses
	Role         string `json:"role"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`

	// PSA profile completion. A resident must complete the Philippine
	// Statistics Authority document step before the deadline.
	ProfileComplete bool       `json:"profileComplete"`
	PSADeadline     *time.Time `json:"psaDeadline,omitempty"`
	// PSADaysLeft is supplied by the records sync, not derived locally, so
	// the portal and the registry agree on the countdown shown to residents.
	PSADaysLeft        *float64 `json:"psaDaysLeft,omitempty"`
	VerificationStatus string   `json:"verificationStatus"`
	RejectionReason    string   `json:"rejectionReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds an admin-class role.
func (u User) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// MarshalJSON guarantees the password hash never leaks through an alias type.
func (u User) MarshalJSON() ([]byte, error) {
	type UserAlias User // prevent recursion
	return json.Marshal(&struct {
		UserAlias
	}{
		UserAlias: UserAlias(u),
	})
}

// UserStorage is the persistence representation. Unlike User it carries the
// password hash.
type UserStorage struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	PasswordHash       string     `json:"passwordHash"`
	Role               string     `json:"role"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	ProfileComplete    bool       `json:"profileComplete"`
	PSADeadline        *time.Time `json:"psaDeadline,omitempty"`
	PSADaysLeft        *float64   `json:"psaDaysLeft,omitempty"`
	VerificationStatus string     `json:"verificationStatus"`
	RejectionReason    string     `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ToStorage converts a User to its persistence form.
func (u User) ToStorage() UserStorage {
	return UserStorage{
		ID:                 u.ID,
		Username:           u.Username,
		PasswordHash:       u.PasswordHash,
		Role:               u.Role,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		ProfileComplete:    u.ProfileComplete,
		PSADeadline:        u.PSADeadline,
		PSADaysLeft:        u.PSADaysLeft,
		VerificationStatus: u.VerificationStatus,
		RejectionReason:    u.RejectionReason,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// ToUser converts a stored record back to a User.
func (us UserStorage) ToUser() User {
	return User{
		ID:                 us.ID,
		Username:           us.Username,
		PasswordHash:       us.PasswordHash,
		Role:               us.Role,
		FirstName:          us.FirstName,
		LastName:           us.LastName,
		ProfileComplete:    us.ProfileComplete,
		PSADeadline:        us.PSADeadline,
		PSADaysLeft:        us.PSADaysLeft,
		VerificationStatus: us.VerificationStatus,
		RejectionReason:    us.RejectionReason,
		CreatedAt:          us.CreatedAt,
		UpdatedAt:          us.UpdatedAt,
	}
}
