package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned when an update loses the optimistic
// concurrency check. Callers reload the document and retry.
var ErrVersionConflict = errors.New("document version conflict")

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// Update persists d only if the stored version_id still equals
	// d.VersionID; on success d.VersionID is incremented. Returns
	// ErrVersionConflict when another writer got there first.
	Update(ctx context.Context, d *Document) error
	List(ctx context.Context, status MatchStatus, limit, offset int) ([]*Document, int, error)
}
