package models

const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// GuestRecord is the persisted guest identity used to pre-fill forms and
// to establish booking/guestbook ownership. Keyed by a client device ID.
type GuestRecord struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Identity is the resolved caller context passed into operations that need
// authorization decisions. Role is admin iff the phone has an admins row.
type Identity struct {
	Role  string
	Guest *GuestRecord
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Owns reports whether the identity's phone matches the given phone after
// normalization.
func (i Identity) Owns(phone string) bool {
	if i.Guest == nil || i.Guest.Phone == "" {
		return false
	}
	return NormalizePhone(i.Guest.Phone) == NormalizePhone(phone)
}
