package academy

import (
	"context"
	"errors"
)

var (
	ErrAcademyNotFound = errors.New("academy not found")
	ErrCodeTaken       = errors.New("academy code already in use")
)

// Repository defines the interface for academy storage. Academies carry no
// academy_id themselves and are therefore outside the scoped facade; access
// is controlled purely by role at the route guard.
type Repository interface {
	Create(ctx context.Context, a *Academy) error
	GetByID(ctx context.Context, id string) (*Academy, error)
	GetByCode(ctx context.Context, code string) (*Academy, error)
	SetStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, limit, offset int) ([]*Academy, error)
}
