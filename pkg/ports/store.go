package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

// StatStore persists statistic rows. A row is identified by (UUID, StatType).
type StatStore interface {
	// Load returns the row of one stat of a user.
	// Returns domain.ErrStatNotFound if it was never saved.
	Load(ctx context.Context, id uuid.UUID, statType string) (domain.StatRow, error)

	// Save upserts the rows and writes their assigned ID back.
	Save(ctx context.Context, rows ...*domain.StatRow) error

	// ListByUser returns every row of a user ordered by stat type.
	ListByUser(ctx context.Context, id uuid.UUID) ([]domain.StatRow, error)

	// Top returns the highest rows of one stat type, best first.
	Top(ctx context.Context, statType string, limit int) ([]domain.StatRow, error)

	// Delete removes one row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id uuid.UUID, statType string) error
}
