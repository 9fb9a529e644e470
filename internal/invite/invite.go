package invite

import (
	"context"
	"errors"
	"time"

	"github.com/academykit/academykit/internal/rbac"
)

// Domain errors
var (
	ErrInviteNotFound = errors.New("invite not found")

	// ErrInviteUsed means the invite reached its terminal used state.
	// Not retryable: a second redemption can never succeed.
	ErrInviteUsed = errors.New("invite already used")

	// ErrInviteExpired means the invite's expiry passed before redemption.
	// Distinct from ErrInviteUsed so clients can tell the two apart.
	ErrInviteExpired = errors.New("invite expired")

	ErrRoleNotInvitable = errors.New("role cannot be granted by invite")
)

// Invite is a single-use, time-boxed token granting a role within one
// academy. Like sessions, only a fingerprint of the raw token is stored.
type Invite struct {
	ID          string     `json:"id"`
	AcademyID   *string    `json:"academy_id"`
	Role        rbac.Role  `json:"role"`
	Fingerprint string     `json:"-"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AcademyRef implements scope.Owned.
func (i *Invite) AcademyRef() *string { return i.AcademyID }

// BindAcademy implements scope.Owned.
func (i *Invite) BindAcademy(id string) { i.AcademyID = &id }

// Used reports whether the invite reached its terminal state.
func (i *Invite) Used() bool {
	return i.UsedAt != nil
}

// Expired reports whether the invite's expiry passed. Computed, not stored.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Repository defines the interface for invite persistence.
type Repository interface {
	Create(ctx context.Context, i *Invite) error
	GetByFingerprint(ctx context.Context, fingerprint string) (*Invite, error)
	List(ctx context.Context, limit, offset int) ([]*Invite, error)

	// Redeem atomically sets used_at, succeeding only if the invite is
	// unused and unexpired at the time of the update. The compare-and-set
	// lives in the store, not in application code, so exactly one of any
	// number of concurrent redemption attempts can win.
	Redeem(ctx context.Context, id string, at time.Time) error

	// DeleteExpired removes invites that expired unused before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
