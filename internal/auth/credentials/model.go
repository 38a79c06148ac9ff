package credentials

import "time"

// Credential is one row of the local password store. HashVersion records
// the scheme tag so future migrations can re-hash lazily on login.
type Credential struct {
	ID           string
	UserID       string
	PasswordHash string
	HashVersion  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
