package academy

import (
	"time"
)

// Academy represents an isolated customer organization. All tenant-owned
// data in the system hangs off an academy id.
type Academy struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status constants. An academy is never hard-deleted; suspension is the
// only administrative off switch.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Active reports whether the academy may be accessed by non-global roles.
func (a *Academy) Active() bool {
	return a.Status == StatusActive
}
